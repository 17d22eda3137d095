package shared

import (
	"math/rand"
	"testing"
	"time"

	"schoolscheduler/internal/domain"
)

func smallRequest() (*domain.ScheduleRequest, []domain.Request) {
	req := &domain.ScheduleRequest{
		Teachers: []domain.Teacher{{ID: "t1", Name: "Jane"}},
		Subjects: []domain.Subject{{ID: "math", Name: "Math"}},
		Classes:  []domain.Class{{ID: "c1", Name: "5-A"}},
	}
	requests := []domain.Request{
		{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 3},
	}
	return req, requests
}

func TestSolvePlacesEveryUnit(t *testing.T) {
	req, requests := smallRequest()
	params := Params{
		Periods: []int{1, 2, 3, 4, 5, 6, 7},
		Timeout: time.Second,
		Rand:    rand.New(rand.NewSource(1)),
	}
	schedule, reason := Solve(req, requests, params)
	if reason != "" {
		t.Fatalf("Solve failed: %s", reason)
	}
	if len(schedule) != 3 {
		t.Fatalf("expected 3 placed lessons, got %d", len(schedule))
	}
}

func TestSolveIsDeterministicForFixedSeed(t *testing.T) {
	req, requests := smallRequest()
	run := func() []domain.Lesson {
		params := Params{
			Periods: []int{1, 2, 3, 4, 5, 6, 7},
			Timeout: time.Second,
			Rand:    rand.New(rand.NewSource(42)),
		}
		schedule, reason := Solve(req, requests, params)
		if reason != "" {
			t.Fatalf("Solve failed: %s", reason)
		}
		return schedule
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("schedules diverge at index %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSolveHonorsTeacherAvailability(t *testing.T) {
	req, requests := smallRequest()
	req.Teachers[0].Availability = map[domain.Day]map[int]struct{}{
		domain.Mon: {1: {}, 2: {}, 3: {}, 4: {}, 5: {}, 6: {}, 7: {}},
		domain.Tue: {1: {}, 2: {}, 3: {}, 4: {}, 5: {}, 6: {}, 7: {}},
		domain.Wed: {1: {}, 2: {}, 3: {}, 4: {}, 5: {}, 6: {}, 7: {}},
		domain.Thu: {1: {}, 2: {}, 3: {}, 4: {}, 5: {}, 6: {}, 7: {}},
		// Friday left open; 3 lessons must all land there.
	}
	params := Params{
		Periods: []int{1, 2, 3, 4, 5, 6, 7},
		Timeout: time.Second,
		Rand:    rand.New(rand.NewSource(7)),
	}
	schedule, reason := Solve(req, requests, params)
	if reason != "" {
		t.Fatalf("Solve failed: %s", reason)
	}
	for _, l := range schedule {
		if l.Day != domain.Fri {
			t.Errorf("lesson placed on blocked day: %+v", l)
		}
	}
}

func TestSolveFixedLessonsArePinned(t *testing.T) {
	req, requests := smallRequest()
	fixed := []domain.Lesson{
		{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Wed, Period: 5},
	}
	params := Params{
		Periods: []int{1, 2, 3, 4, 5, 6, 7},
		Fixed:   fixed,
		Timeout: time.Second,
		Rand:    rand.New(rand.NewSource(3)),
	}
	schedule, reason := Solve(req, requests, params)
	if reason != "" {
		t.Fatalf("Solve failed: %s", reason)
	}
	found := false
	for _, l := range schedule {
		if l.Day == domain.Wed && l.Period == 5 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the fixed lesson to appear in the output schedule: %+v", schedule)
	}
}

func TestSolveReportsUnmatchedFixed(t *testing.T) {
	req, requests := smallRequest()
	var unmatchedCount int
	fixed := []domain.Lesson{
		{ClassID: "c1", SubjectID: "unknown-subject", TeacherID: "t1", Day: domain.Wed, Period: 5},
	}
	params := Params{
		Periods:          []int{1, 2, 3, 4, 5, 6, 7},
		Fixed:            fixed,
		Timeout:          time.Second,
		Rand:             rand.New(rand.NewSource(3)),
		OnUnmatchedFixed: func(count int) { unmatchedCount = count },
	}
	_, reason := Solve(req, requests, params)
	if reason != "" {
		t.Fatalf("Solve failed: %s", reason)
	}
	if unmatchedCount != 1 {
		t.Errorf("expected OnUnmatchedFixed(1), got %d", unmatchedCount)
	}
}

func TestSolveStrictProducesContiguousSchedule(t *testing.T) {
	req, requests := smallRequest()
	params := Params{
		Periods: []int{1, 2, 3, 4, 5, 6, 7},
		Strict:  true,
		Timeout: 2 * time.Second,
		Rand:    rand.New(rand.NewSource(5)),
	}
	schedule, reason := Solve(req, requests, params)
	if reason != "" {
		t.Fatalf("strict Solve failed: %s", reason)
	}
	byDay := map[domain.Day][]int{}
	for _, l := range schedule {
		byDay[l.Day] = append(byDay[l.Day], l.Period)
	}
	for day, periods := range byDay {
		if !isContiguousFrom(periods, 1) {
			t.Errorf("class day %v is not contiguous from period 1: %v", day, periods)
		}
	}
}

func TestSolveInfeasibleWhenOverbooked(t *testing.T) {
	req := &domain.ScheduleRequest{
		Teachers: []domain.Teacher{{ID: "t1", Name: "Jane"}},
		Subjects: []domain.Subject{{ID: "math", Name: "Math"}},
		Classes:  []domain.Class{{ID: "c1", Name: "5-A"}},
	}
	requests := []domain.Request{
		{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 11},
	}
	params := Params{
		Periods: []int{1, 2}, // only 2 periods * 5 days = 10 slots for 11 lessons
		Strict:  true,
		Timeout: 500 * time.Millisecond,
		Rand:    rand.New(rand.NewSource(1)),
	}
	_, reason := Solve(req, requests, params)
	if reason == "" {
		t.Fatalf("expected infeasibility (11 lessons cannot fit in 2 periods/day * 5 days = 10 slots)")
	}
}
