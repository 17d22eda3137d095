package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"schoolscheduler/internal/orchestrate"
	"schoolscheduler/internal/pkg/logger"
	"schoolscheduler/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testOrchestrator(t *testing.T) *orchestrate.Orchestrator {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger.New failed: %v", err)
	}
	return orchestrate.New(log, orchestrate.Defaults{
		Timeout:               5 * time.Second,
		GeneticPopulationSize: 2,
		GeneticGenerations:    1,
		GeneticMutationRate:   0.5,
	})
}

func testRepo(t *testing.T) *storage.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open failed: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate failed: %v", err)
	}
	return storage.NewRepository(db)
}

const validSolveBody = `{
	"teachers": [{"id": "t1", "name": "Jane", "subjects": ["math"]}],
	"subjects": [{"id": "math", "name": "Math"}],
	"classes": [{"id": "c1", "name": "5-A"}],
	"plan": [{"class_id": "c1", "subject_id": "math", "teacher_id": "t1", "hours_per_week": 3}],
	"strategy": "cp"
}`

func TestSolveHandlerReturnsScheduleForValidRequest(t *testing.T) {
	h := NewHandlers(testOrchestrator(t), testRepo(t))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(validSolveBody))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Solve(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Success bool      `json:"success"`
		Data    ResultDTO `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v (%s)", err, w.Body.String())
	}
	if !body.Success || body.Data.Status != "success" {
		t.Fatalf("unexpected response body: %+v", body)
	}
	if len(body.Data.Schedule) != 3 {
		t.Errorf("expected 3 lessons, got %d", len(body.Data.Schedule))
	}
}

func TestSolveHandlerRejectsMalformedJSON(t *testing.T) {
	h := NewHandlers(testOrchestrator(t), testRepo(t))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/schedules", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Solve(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSolveHandlerPersistsWhenRequested(t *testing.T) {
	repo := testRepo(t)
	h := NewHandlers(testOrchestrator(t), repo)
	body := strings.Replace(validSolveBody, `"strategy": "cp"`, `"strategy": "cp", "persist": true`, 1)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Solve(c)

	var resp struct {
		Data ResultDTO `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ScheduleID == "" {
		t.Fatalf("expected a schedule_id when persist=true, got %+v", resp.Data)
	}
}

func TestGetHandlerReturnsStoredSchedule(t *testing.T) {
	repo := testRepo(t)
	h := NewHandlers(testOrchestrator(t), repo)

	body := strings.Replace(validSolveBody, `"strategy": "cp"`, `"strategy": "cp", "persist": true`, 1)
	w1 := httptest.NewRecorder()
	c1, _ := gin.CreateTestContext(w1)
	c1.Request = httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(body))
	c1.Request.Header.Set("Content-Type", "application/json")
	h.Solve(c1)

	var saved struct {
		Data ResultDTO `json:"data"`
	}
	if err := json.Unmarshal(w1.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to decode solve response: %v", err)
	}

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/api/v1/schedules/"+saved.Data.ScheduleID, nil)
	c2.Params = gin.Params{{Key: "id", Value: saved.Data.ScheduleID}}
	h.Get(c2)

	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
}

func TestGetHandlerReturns404ForUnknownID(t *testing.T) {
	h := NewHandlers(testOrchestrator(t), testRepo(t))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/schedules/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Get(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetHandlerReturns500WhenPersistenceDisabled(t *testing.T) {
	h := NewHandlers(testOrchestrator(t), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/schedules/any", nil)
	c.Params = gin.Params{{Key: "id", Value: "any"}}

	h.Get(c)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when no repository is configured, got %d", w.Code)
	}
}
