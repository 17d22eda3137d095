package storage

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"schoolscheduler/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open failed: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return db
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	repo := NewRepository(testDB(t))
	req := &domain.ScheduleRequest{RequestID: "r1", Strategy: domain.StrategyCP}
	result := domain.Result{
		Status: domain.StatusSuccess,
		Schedule: []domain.Lesson{
			{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Wed, Period: 3},
		},
	}

	id, err := repo.Save(context.Background(), req, result)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a non-empty id")
	}

	got, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != domain.StatusSuccess {
		t.Errorf("Status = %v, want success", got.Status)
	}
	if len(got.Schedule) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(got.Schedule))
	}
	l := got.Schedule[0]
	if l.ClassID != "c1" || l.SubjectID != "math" || l.TeacherID != "t1" || l.Day != domain.Wed || l.Period != 3 {
		t.Errorf("unexpected round-tripped lesson: %+v", l)
	}
}

func TestGetUnknownIDFails(t *testing.T) {
	repo := NewRepository(testDB(t))
	if _, err := repo.Get(context.Background(), "does-not-exist"); err == nil {
		t.Errorf("expected an error looking up an unknown id")
	}
}
