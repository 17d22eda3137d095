package cpsat

import (
	"testing"
	"time"

	"schoolscheduler/internal/domain"
)

func TestSpanInfoNoGaps(t *testing.T) {
	gaps, start, end := spanInfo([]int{1, 2, 3})
	if gaps != 0 || start != 1 || end != 3 {
		t.Errorf("spanInfo(1,2,3) = (%d,%d,%d), want (0,1,3)", gaps, start, end)
	}
}

func TestSpanInfoWithGap(t *testing.T) {
	gaps, start, end := spanInfo([]int{1, 4})
	if gaps != 2 || start != 1 || end != 4 {
		t.Errorf("spanInfo(1,4) = (%d,%d,%d), want (2,1,4)", gaps, start, end)
	}
}

func TestSpanInfoEmpty(t *testing.T) {
	gaps, start, end := spanInfo(nil)
	if gaps != 0 || start != 0 || end != 0 {
		t.Errorf("spanInfo(nil) = (%d,%d,%d), want (0,0,0)", gaps, start, end)
	}
}

func TestObjectivePenalizesGapsOverCompact(t *testing.T) {
	req := &domain.ScheduleRequest{
		Teachers: []domain.Teacher{{ID: "t1"}},
	}
	requests := []domain.Request{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 2}}
	periods := []int{1, 2, 3, 4}

	compact := []domain.Lesson{
		{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Mon, Period: 1},
		{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Mon, Period: 2},
	}
	gappy := []domain.Lesson{
		{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Mon, Period: 1},
		{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Mon, Period: 4},
	}
	if objective(req, requests, compact, periods) >= objective(req, requests, gappy, periods) {
		t.Errorf("expected the compact schedule to score lower (better) than the gappy one")
	}
}

func TestObjectivePenalizesPeriodZeroForUnwillingTeacher(t *testing.T) {
	req := &domain.ScheduleRequest{
		Teachers: []domain.Teacher{{ID: "t1", PrefersPeriodZero: false}},
	}
	requests := []domain.Request{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 1}}
	periods := []int{0, 1, 2, 3}

	atZero := []domain.Lesson{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Mon, Period: 0}}
	atOne := []domain.Lesson{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Mon, Period: 1}}
	if objective(req, requests, atZero, periods) <= objective(req, requests, atOne, periods) {
		t.Errorf("expected period-zero placement to score worse for an unwilling teacher")
	}
}

func TestSolveUsesDefaultTimeoutWhenUnset(t *testing.T) {
	req := &domain.ScheduleRequest{
		Teachers: []domain.Teacher{{ID: "t1"}},
		Subjects: []domain.Subject{{ID: "math"}},
		Classes:  []domain.Class{{ID: "c1"}},
	}
	requests := []domain.Request{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 2}}
	schedule, reason := Solve(req, requests, []int{1, 2, 3, 4, 5, 6, 7}, false, nil, 0, 1)
	if reason != "" {
		t.Fatalf("Solve failed: %s", reason)
	}
	if len(schedule) != 2 {
		t.Fatalf("expected 2 placed lessons, got %d", len(schedule))
	}
}

func TestSolveReportsUnmatchedFixedThroughPackageHook(t *testing.T) {
	prev := OnUnmatchedFixed
	defer func() { OnUnmatchedFixed = prev }()

	var reported int
	OnUnmatchedFixed = func(count int) { reported = count }

	req := &domain.ScheduleRequest{
		Teachers: []domain.Teacher{{ID: "t1"}},
		Subjects: []domain.Subject{{ID: "math"}},
		Classes:  []domain.Class{{ID: "c1"}},
	}
	requests := []domain.Request{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 1}}
	fixed := []domain.Lesson{{ClassID: "c1", SubjectID: "unknown", TeacherID: "t1", Day: domain.Wed, Period: 5}}
	_, reason := Solve(req, requests, []int{1, 2, 3, 4, 5, 6, 7}, false, fixed, time.Second, 2)
	if reason != "" {
		t.Fatalf("Solve failed: %s", reason)
	}
	if reported != 1 {
		t.Errorf("expected the package-level hook to report 1 unmatched fixed lesson, got %d", reported)
	}
}
