package genetic

import (
	"context"
	"runtime"
	"testing"
	"time"

	"schoolscheduler/internal/domain"
)

func TestWorkerCapNeverExceedsSix(t *testing.T) {
	if c := workerCap(); c > 6 || c < 1 {
		t.Fatalf("workerCap() = %d, want in [1,6]", c)
	}
	if runtime.NumCPU() < 6 && workerCap() != runtime.NumCPU() {
		t.Errorf("workerCap() = %d, want %d on a host with fewer than 6 cores", workerCap(), runtime.NumCPU())
	}
}

func TestWithoutZeroDropsPeriodZero(t *testing.T) {
	out := withoutZero([]int{0, 1, 2, 3})
	want := []int{1, 2, 3}
	if len(out) != len(want) {
		t.Fatalf("withoutZero(0,1,2,3) = %v, want %v", out, want)
	}
	for i, v := range want {
		if out[i] != v {
			t.Fatalf("withoutZero(0,1,2,3) = %v, want %v", out, want)
		}
	}
}

func TestWithoutZeroFallsBackWhenAllZero(t *testing.T) {
	out := withoutZero([]int{0})
	if len(out) != 1 || out[0] != 0 {
		t.Errorf("withoutZero(0) should fall back to the original slice, got %v", out)
	}
}

func TestFitnessPenalizesGapsAndPeriodZero(t *testing.T) {
	req := &domain.ScheduleRequest{Teachers: []domain.Teacher{{ID: "t1"}}}
	compact := []domain.Lesson{
		{TeacherID: "t1", Day: domain.Mon, Period: 1},
		{TeacherID: "t1", Day: domain.Mon, Period: 2},
	}
	gappyAtZero := []domain.Lesson{
		{TeacherID: "t1", Day: domain.Mon, Period: 0},
		{TeacherID: "t1", Day: domain.Mon, Period: 4},
	}
	if fitness(req, compact) <= fitness(req, gappyAtZero) {
		t.Errorf("expected the compact schedule to score higher than the gappy, period-zero one")
	}
}

func TestFitnessEmptyScheduleIsWorstCase(t *testing.T) {
	req := &domain.ScheduleRequest{}
	if fitness(req, nil) >= fitness(req, []domain.Lesson{{TeacherID: "t1", Day: domain.Mon, Period: 1}}) {
		t.Errorf("expected an empty schedule to score far below a non-empty one")
	}
}

func smallGeneticRequest() (*domain.ScheduleRequest, []domain.Request) {
	req := &domain.ScheduleRequest{
		Teachers: []domain.Teacher{{ID: "t1"}},
		Subjects: []domain.Subject{{ID: "math"}},
		Classes:  []domain.Class{{ID: "c1"}},
	}
	requests := []domain.Request{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 3}}
	return req, requests
}

func TestCascadeProducesAFeasibleSchedule(t *testing.T) {
	req, requests := smallGeneticRequest()
	schedule := cascade(context.Background(), req, requests, []int{0, 1, 2, 3, 4, 5, 6, 7}, nil, time.Second, 1)
	if schedule == nil {
		t.Fatalf("expected cascade to find a feasible schedule")
	}
	if len(schedule) != 3 {
		t.Fatalf("expected 3 placed lessons, got %d", len(schedule))
	}
}

func TestMutateFallsBackToParentOnCascadeFailure(t *testing.T) {
	req, requests := smallGeneticRequest()
	cfg := Config{Periods: []int{0, 1, 2, 3, 4, 5, 6, 7}, PerMemberTimeout: time.Second}
	parent := []domain.Lesson{}
	if out := mutate(context.Background(), req, requests, parent, cfg); len(out) != 0 {
		t.Errorf("expected mutate to return the (empty) parent unchanged, got %v", out)
	}
}

func TestSolveReturnsBestSchedule(t *testing.T) {
	req, requests := smallGeneticRequest()
	cfg := Config{
		PopulationSize:   2,
		Generations:      1,
		MutationRate:     0.5,
		Periods:          []int{0, 1, 2, 3, 4, 5, 6, 7},
		PerMemberTimeout: 2 * time.Second,
	}
	var progressCalls []int
	progress := func(pct int, msg string) { progressCalls = append(progressCalls, pct) }

	schedule, err := Solve(context.Background(), req, requests, cfg, progress)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(schedule) != 3 {
		t.Fatalf("expected 3 placed lessons, got %d", len(schedule))
	}
	if len(progressCalls) == 0 {
		t.Errorf("expected at least one progress callback invocation")
	}
	if progressCalls[len(progressCalls)-1] != 100 {
		t.Errorf("expected the final progress callback to report 100, got %d", progressCalls[len(progressCalls)-1])
	}
}
