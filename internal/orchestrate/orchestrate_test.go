package orchestrate

import (
	"context"
	"testing"
	"time"

	"schoolscheduler/internal/domain"
	"schoolscheduler/internal/model"
	"schoolscheduler/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger.New failed: %v", err)
	}
	return log
}

func testDefaults() Defaults {
	return Defaults{
		Timeout:               5 * time.Second,
		GeneticPopulationSize: 2,
		GeneticGenerations:    1,
		GeneticMutationRate:   0.5,
	}
}

func smallScheduleRequest() *domain.ScheduleRequest {
	return &domain.ScheduleRequest{
		RequestID: "r1",
		Teachers:  []domain.Teacher{{ID: "t1", Subjects: map[string]struct{}{"math": {}}}},
		Subjects:  []domain.Subject{{ID: "math", Name: "Math"}},
		Classes:   []domain.Class{{ID: "c1", Name: "5-A"}},
		Plan:      []domain.PlanItem{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", HoursPerWeek: 3}},
	}
}

func TestApplyDefaultsFillsZeroFields(t *testing.T) {
	o := New(testLogger(t), testDefaults())
	req := &domain.ScheduleRequest{}
	o.applyDefaults(req)
	if req.Timeout != 5 {
		t.Errorf("Timeout = %d, want 5", req.Timeout)
	}
	if req.GeneticPopulationSize != 2 {
		t.Errorf("GeneticPopulationSize = %d, want 2", req.GeneticPopulationSize)
	}
	if req.GeneticGenerations != 1 {
		t.Errorf("GeneticGenerations = %d, want 1", req.GeneticGenerations)
	}
	if req.GeneticMutationRate != 0.5 {
		t.Errorf("GeneticMutationRate = %v, want 0.5", req.GeneticMutationRate)
	}
}

func TestApplyDefaultsLeavesExplicitValuesAlone(t *testing.T) {
	o := New(testLogger(t), testDefaults())
	req := &domain.ScheduleRequest{Timeout: 99, GeneticPopulationSize: 7, GeneticGenerations: 4, GeneticMutationRate: 0.9}
	o.applyDefaults(req)
	if req.Timeout != 99 || req.GeneticPopulationSize != 7 || req.GeneticGenerations != 4 || req.GeneticMutationRate != 0.9 {
		t.Errorf("applyDefaults overwrote explicit values: %+v", req)
	}
}

func TestSolveRejectsInvalidPlan(t *testing.T) {
	o := New(testLogger(t), testDefaults())
	req := &domain.ScheduleRequest{} // empty plan
	result := o.Solve(context.Background(), req, nil)
	if result.Status != domain.StatusError {
		t.Fatalf("expected StatusError for an invalid plan, got %v", result.Status)
	}
	if len(result.Violations) == 0 {
		t.Errorf("expected validation violations to be reported")
	}
}

func TestSolveSucceedsForFeasibleRequest(t *testing.T) {
	o := New(testLogger(t), testDefaults())
	req := smallScheduleRequest()
	result := o.Solve(context.Background(), req, nil)
	if result.Status != domain.StatusSuccess {
		t.Fatalf("expected StatusSuccess, got %v (%s) violations=%v", result.Status, result.Message, result.Violations)
	}
	if len(result.Schedule) != 3 {
		t.Errorf("expected 3 placed lessons, got %d", len(result.Schedule))
	}
}

func TestSolveDispatchesExactStrategy(t *testing.T) {
	o := New(testLogger(t), testDefaults())
	req := smallScheduleRequest()
	req.Strategy = domain.StrategyCP
	result := o.Solve(context.Background(), req, nil)
	if result.Status != domain.StatusSuccess {
		t.Fatalf("expected StatusSuccess for cp strategy, got %v (%s)", result.Status, result.Message)
	}
}

func TestCascadeHandlesExplicitCPAndUnsetStrategyIdentically(t *testing.T) {
	o := New(testLogger(t), testDefaults())

	explicit := smallScheduleRequest()
	explicit.Strategy = domain.StrategyCP
	explicitResult := o.dispatch(context.Background(), explicit, model.Build(explicit), 5*time.Second, nil)

	unset := smallScheduleRequest()
	unset.Strategy = ""
	unsetResult := o.dispatch(context.Background(), unset, model.Build(unset), 5*time.Second, nil)

	if explicitResult.Status != domain.StatusSuccess || unsetResult.Status != domain.StatusSuccess {
		t.Fatalf("expected both dispatches to succeed: explicit=%v unset=%v", explicitResult.Status, unsetResult.Status)
	}
	if len(explicitResult.Schedule) != len(unsetResult.Schedule) {
		t.Errorf("expected StrategyCP and an unset strategy to run the same cascade: got %d vs %d lessons",
			len(explicitResult.Schedule), len(unsetResult.Schedule))
	}
}

func TestSolveDispatchesMIPStrategy(t *testing.T) {
	o := New(testLogger(t), testDefaults())
	req := smallScheduleRequest()
	req.Strategy = domain.StrategyMIP
	result := o.Solve(context.Background(), req, nil)
	if result.Status != domain.StatusSuccess {
		t.Fatalf("expected StatusSuccess for mip strategy, got %v (%s)", result.Status, result.Message)
	}
}

func TestSolveDispatchesGeneticStrategy(t *testing.T) {
	o := New(testLogger(t), testDefaults())
	req := smallScheduleRequest()
	req.Strategy = domain.StrategyGenetic
	var progressCalls int
	result := o.Solve(context.Background(), req, func(pct int, msg string) { progressCalls++ })
	if result.Status != domain.StatusSuccess {
		t.Fatalf("expected StatusSuccess for genetic strategy, got %v (%s)", result.Status, result.Message)
	}
	if progressCalls == 0 {
		t.Errorf("expected at least one progress callback for the genetic strategy")
	}
}
