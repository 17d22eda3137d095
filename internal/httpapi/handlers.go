package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"schoolscheduler/internal/domain"
	"schoolscheduler/internal/orchestrate"
	apperrors "schoolscheduler/internal/pkg/errors"
	"schoolscheduler/internal/pkg/response"
	"schoolscheduler/internal/solver/genetic"
	"schoolscheduler/internal/storage"
)

// Handlers bundles the orchestrator and optional persistence repository
// the scheduling routes depend on. repo may be nil when persistence is
// disabled (no database configured).
type Handlers struct {
	orchestrator *orchestrate.Orchestrator
	repo         *storage.Repository
}

// NewHandlers builds a Handlers instance.
func NewHandlers(orchestrator *orchestrate.Orchestrator, repo *storage.Repository) *Handlers {
	return &Handlers{orchestrator: orchestrator, repo: repo}
}

// Solve handles POST /api/v1/schedules. When the request asks for the
// genetic strategy, progress updates stream as newline-delimited JSON
// before the final result line.
func (h *Handlers) Solve(c *gin.Context) {
	var in SolveRequestDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		apperrors.AbortBadRequest(c, err.Error())
		return
	}

	requestID := uuid.NewString()
	req := in.toDomain(requestID)

	if req.Strategy == domain.StrategyGenetic {
		h.streamGenetic(c, req, in.Persist)
		return
	}

	result := h.orchestrator.Solve(c.Request.Context(), req, nil)
	out := fromDomain(result)
	if h.repo != nil && in.Persist {
		if id, err := h.repo.Save(c.Request.Context(), req, result); err == nil {
			out.ScheduleID = id
		}
	}
	response.OK(c, out)
}

// streamGenetic solves through the same orchestrator as Solve, but
// flushes each generation's progress event to the client as NDJSON
// before the final result line.
func (h *Handlers) streamGenetic(c *gin.Context, req *domain.ScheduleRequest, persist bool) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/x-ndjson")

	flusher, canFlush := c.Writer.(http.Flusher)
	enc := json.NewEncoder(c.Writer)

	progress := func(pct int, msg string) {
		_ = enc.Encode(gin.H{"pct": pct, "message": msg})
		if canFlush {
			flusher.Flush()
		}
	}

	result := h.orchestrator.Solve(c.Request.Context(), req, genetic.ProgressFunc(progress))
	out := fromDomain(result)
	if h.repo != nil && persist {
		if id, err := h.repo.Save(c.Request.Context(), req, result); err == nil {
			out.ScheduleID = id
		}
	}
	_ = enc.Encode(out)
}

// Get handles GET /api/v1/schedules/:id.
func (h *Handlers) Get(c *gin.Context) {
	if h.repo == nil {
		apperrors.AbortInternalError(c)
		return
	}
	id := c.Param("id")
	result, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		apperrors.AbortNotFound(c, "schedule")
		return
	}
	response.OK(c, fromDomain(result))
}
