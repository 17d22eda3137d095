package mip

import (
	"testing"
	"time"

	"schoolscheduler/internal/domain"
	"schoolscheduler/internal/model"
)

func TestInsertionSortOrders(t *testing.T) {
	xs := []int{5, 3, 4, 1, 2}
	insertionSort(xs)
	want := []int{1, 2, 3, 4, 5}
	for i, v := range want {
		if xs[i] != v {
			t.Fatalf("insertionSort(5,3,4,1,2) = %v, want %v", xs, want)
		}
	}
}

func TestConsecutiveSameSubjectPenaltyRequiresThreeInARow(t *testing.T) {
	two := []domain.Lesson{
		{SubjectID: "math", Period: 1},
		{SubjectID: "math", Period: 2},
	}
	if p := consecutiveSameSubjectPenalty(two); p != 0 {
		t.Errorf("expected no penalty for only two consecutive periods, got %v", p)
	}

	three := []domain.Lesson{
		{SubjectID: "math", Period: 1},
		{SubjectID: "math", Period: 2},
		{SubjectID: "math", Period: 3},
	}
	if p := consecutiveSameSubjectPenalty(three); p <= 0 {
		t.Errorf("expected a positive penalty for three consecutive periods, got %v", p)
	}
}

func TestDistributionDeviationPenaltyZeroWhenPerfectlySpread(t *testing.T) {
	lessons := map[classDayKey][]domain.Lesson{}
	for _, d := range domain.Days {
		lessons[classDayKey{"c1", d}] = []domain.Lesson{{ClassID: "c1", Day: d, Period: 1}}
	}
	if p := distributionDeviationPenalty(lessons); p > 1e-9 {
		t.Errorf("expected ~0 penalty for an evenly spread week, got %v", p)
	}
}

func TestDistributionDeviationPenaltyPositiveWhenLopsided(t *testing.T) {
	lessons := map[classDayKey][]domain.Lesson{
		{"c1", domain.Mon}: {
			{ClassID: "c1", Day: domain.Mon, Period: 1},
			{ClassID: "c1", Day: domain.Mon, Period: 2},
			{ClassID: "c1", Day: domain.Mon, Period: 3},
			{ClassID: "c1", Day: domain.Mon, Period: 4},
			{ClassID: "c1", Day: domain.Mon, Period: 5},
		},
	}
	if p := distributionDeviationPenalty(lessons); p <= 0 {
		t.Errorf("expected a positive penalty when all lessons land on one day, got %v", p)
	}
}

func lessonsAtPeriods(classID, day string, n int) []domain.Lesson {
	d, _ := domain.ParseDay(day)
	lessons := make([]domain.Lesson, n)
	for i := 0; i < n; i++ {
		lessons[i] = domain.Lesson{ClassID: classID, SubjectID: "math", TeacherID: "t1", Day: d, Period: i + 1}
	}
	return lessons
}

func TestObjectiveClassDayOverloadIsExcessScaled(t *testing.T) {
	req := &domain.ScheduleRequest{Teachers: []domain.Teacher{{ID: "t1"}}}
	requests := []domain.Request{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 9}}
	periods := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}

	schedule := lessonsAtPeriods("c1", "Mon", 9)
	got := objective(req, requests, schedule, periods)

	// Isolate the overload contribution by zeroing out the other additive
	// terms this small fixture also triggers (late start, earlier-period,
	// consecutive-same-subject, distribution deviation): compute them
	// independently and subtract.
	gaps, start, _ := spanInfo([]int{1, 2, 3, 4, 5, 6, 7, 8, 9})
	lateStart := float64(start-1) * float64(model.WeightLateStart)
	gapTerm := float64(gaps) * float64(model.WeightClassGap)
	earlier := 0.0
	for p := 1; p <= 9; p++ {
		earlier += float64(p) * model.WeightEarlierPeriod
	}
	consecutive := consecutiveSameSubjectPenalty(schedule)
	distribution := distributionDeviationPenalty(map[classDayKey][]domain.Lesson{{"c1", schedule[0].Day}: schedule})
	daysOffBonus := -float64(model.WeightDaysOffBonus) // teacherWeeklyLoad(9) < 30

	wantOverload := 4.0*model.WeightClassDayOverload + 2.0*model.WeightClassDayOverloadHigh // (9-5)*50 + (9-7)*300
	gotOverload := got - lateStart - gapTerm - earlier - consecutive - distribution - daysOffBonus
	if gotOverload != wantOverload {
		t.Errorf("day_load=9 overload contribution = %v, want %v (isolated from total %v)", gotOverload, wantOverload, got)
	}
}

func TestObjectiveClassDayOverloadZeroAtOrBelowFive(t *testing.T) {
	req := &domain.ScheduleRequest{Teachers: []domain.Teacher{{ID: "t1"}}}
	requests := []domain.Request{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 5}}
	periods := []int{1, 2, 3, 4, 5}
	schedule := lessonsAtPeriods("c1", "Mon", 5)

	excess := len(schedule) - 5
	if excess > 0 {
		t.Fatalf("test setup invariant violated: excess should be 0 at day_load=5")
	}
	got := objective(req, requests, schedule, periods)

	// Subtract every other additive term this fixture triggers; what is
	// left is the overload contribution.
	earlier := 0.0
	for p := 1; p <= 5; p++ {
		earlier += float64(p) * model.WeightEarlierPeriod
	}
	consecutive := consecutiveSameSubjectPenalty(schedule)
	distribution := distributionDeviationPenalty(map[classDayKey][]domain.Lesson{{"c1", schedule[0].Day}: schedule})
	daysOffBonus := -float64(model.WeightDaysOffBonus) // teacherWeeklyLoad(5) < 30
	if gotOverload := got - earlier - consecutive - distribution - daysOffBonus; gotOverload != 0 {
		t.Errorf("day_load=5 overload contribution = %v, want 0 (isolated from total %v)", gotOverload, got)
	}
}

func TestObjectivePrefersHardSubjectPreferredPeriod(t *testing.T) {
	req := &domain.ScheduleRequest{
		Teachers: []domain.Teacher{{ID: "t1"}},
		Subjects: []domain.Subject{{ID: "math", Name: "Algebra"}},
	}
	requests := []domain.Request{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Count: 1}}
	periods := []int{1, 2, 3, 4, 5, 6, 7}

	preferred := []domain.Lesson{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Mon, Period: 3}}
	discouraged := []domain.Lesson{{ClassID: "c1", SubjectID: "math", TeacherID: "t1", Day: domain.Mon, Period: 6}}
	if objective(req, requests, preferred, periods) >= objective(req, requests, discouraged, periods) {
		t.Errorf("expected a hard subject to score better in a preferred period than a discouraged one")
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
