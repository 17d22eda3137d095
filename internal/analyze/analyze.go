// Package analyze implements the violation analyzer: the final check run
// against every schedule produced by any back-end before it is reported
// as a success. Covers coverage, double-booking, class-window, class-day
// concurrency, and daily-overload checks.
package analyze

import (
	"fmt"
	"sort"

	"schoolscheduler/internal/domain"
	"schoolscheduler/internal/model"
)

// Result is the analyzer's verdict: Violations is ordered, most
// consequential first, matching the eight checks in sequence.
type Result struct {
	Violations []string
	Summary    string
}

// OK reports whether the schedule has zero violations.
func (r Result) OK() bool {
	return len(r.Violations) == 0
}

// MaxDailyLoad is the per-class-day lesson count above which a day is
// flagged as overloaded (check 7).
const MaxDailyLoad = 8

// Schedule runs all eight checks against schedule and returns their
// combined result. requests is the flattened, schedulable plan (the
// output of model.Build); it is what "missing lesson" coverage is
// measured against.
func Schedule(req *domain.ScheduleRequest, requests []domain.Request, schedule []domain.Lesson, periods []int) Result {
	lookups := domain.BuildLookups(req)
	validPeriods := make(map[int]struct{}, len(periods))
	for _, p := range periods {
		validPeriods[p] = struct{}{}
	}

	var violations []string

	// 1. Valid day/period and known references.
	for _, l := range schedule {
		if l.Day < domain.Mon || l.Day > domain.Fri {
			violations = append(violations, fmt.Sprintf("Lesson for class %s uses an out-of-range day %d", domain.Name(lookups.ClassNames, l.ClassID), int(l.Day)))
		}
		if _, ok := validPeriods[l.Period]; !ok {
			violations = append(violations, fmt.Sprintf("Lesson for class %s uses an out-of-range period %d", domain.Name(lookups.ClassNames, l.ClassID), l.Period))
		}
		if _, ok := lookups.Classes[l.ClassID]; !ok {
			violations = append(violations, fmt.Sprintf("Lesson references unknown class (id %s)", l.ClassID))
		}
		if _, ok := lookups.Subjects[l.SubjectID]; !ok {
			violations = append(violations, fmt.Sprintf("Lesson references unknown subject (id %s)", l.SubjectID))
		}
		if _, ok := lookups.Teachers[l.TeacherID]; !ok {
			violations = append(violations, fmt.Sprintf("Lesson references unknown teacher (id %s)", l.TeacherID))
		}
	}

	// 2. Missing/extra coverage, sorted by magnitude descending, plus a summary.
	violations = append(violations, coverageChecks(requests, schedule, lookups)...)

	// 3. Teacher mismatch: the scheduled teacher differs from the plan's.
	planMap := model.PlanMap(req)
	for _, l := range schedule {
		info, ok := planMap[model.PlanKey{ClassID: l.ClassID, SubjectID: l.SubjectID}]
		if ok && info.TeacherID != "" && info.TeacherID != l.TeacherID {
			violations = append(violations, fmt.Sprintf("Class %s, subject %s: taught by %s instead of the planned %s",
				domain.Name(lookups.ClassNames, l.ClassID), domain.Name(lookups.SubjectNames, l.SubjectID),
				domain.Name(lookups.TeacherNames, l.TeacherID), domain.Name(lookups.TeacherNames, info.TeacherID)))
		}
	}

	// 4. Late-start / gap windows per (class, day).
	violations = append(violations, classWindowChecks(schedule, lookups)...)

	// 5. Teacher double-booking.
	violations = append(violations, doubleBookingChecks(schedule, lookups, true)...)

	// 6. Class double-booking.
	violations = append(violations, doubleBookingChecks(schedule, lookups, false)...)

	// 7. Daily overload (> MaxDailyLoad lessons for one class on one day).
	violations = append(violations, overloadChecks(schedule, lookups)...)

	// 8. Missing-lessons advisory is folded into the coverage summary above.

	return Result{
		Violations: violations,
		Summary:    coverageSummary(requests, schedule),
	}
}

func coverageChecks(requests []domain.Request, schedule []domain.Lesson, lookups domain.Lookups) []string {
	planned := map[model.PlanKey]int{}
	for _, r := range requests {
		planned[model.PlanKey{ClassID: r.ClassID, SubjectID: r.SubjectID}] += r.Count
	}
	actual := map[model.PlanKey]int{}
	for _, l := range schedule {
		actual[model.PlanKey{ClassID: l.ClassID, SubjectID: l.SubjectID}]++
	}

	type diff struct {
		key   model.PlanKey
		delta int // planned - actual; positive = missing, negative = extra
	}
	var diffs []diff
	seen := map[model.PlanKey]struct{}{}
	for k, p := range planned {
		a := actual[k]
		if p != a {
			diffs = append(diffs, diff{k, p - a})
		}
		seen[k] = struct{}{}
	}
	for k, a := range actual {
		if _, ok := seen[k]; ok {
			continue
		}
		diffs = append(diffs, diff{k, -a})
	}

	sort.Slice(diffs, func(i, j int) bool {
		ai, aj := diffs[i].delta, diffs[j].delta
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		return ai > aj
	})

	out := make([]string, 0, len(diffs))
	for _, d := range diffs {
		className := domain.Name(lookups.ClassNames, d.key.ClassID)
		subjectName := domain.Name(lookups.SubjectNames, d.key.SubjectID)
		if d.delta > 0 {
			out = append(out, fmt.Sprintf("Class %s, subject %s: %d lesson(s) not placed", className, subjectName, d.delta))
		} else {
			out = append(out, fmt.Sprintf("Class %s, subject %s: %d extra lesson(s) placed beyond the plan", className, subjectName, -d.delta))
		}
	}
	return out
}

func coverageSummary(requests []domain.Request, schedule []domain.Lesson) string {
	planned := 0
	for _, r := range requests {
		planned += r.Count
	}
	if planned == 0 {
		return ""
	}
	actual := map[model.PlanKey]int{}
	for _, l := range schedule {
		actual[model.PlanKey{ClassID: l.ClassID, SubjectID: l.SubjectID}]++
	}
	plannedMap := map[model.PlanKey]int{}
	for _, r := range requests {
		plannedMap[model.PlanKey{ClassID: r.ClassID, SubjectID: r.SubjectID}] += r.Count
	}
	missing := 0
	for k, p := range plannedMap {
		a := actual[k]
		if a < p {
			missing += p - a
		}
	}
	if missing == 0 {
		return ""
	}
	return fmt.Sprintf("Total unplaced: %d lesson(s) out of %d planned", missing, planned)
}

func classWindowChecks(schedule []domain.Lesson, lookups domain.Lookups) []string {
	type key struct {
		classID string
		day     domain.Day
	}
	byDay := map[key][]int{}
	for _, l := range schedule {
		k := key{l.ClassID, l.Day}
		byDay[k] = append(byDay[k], l.Period)
	}
	var out []string
	for k, ps := range byDay {
		sort.Ints(ps)
		if len(ps) > 0 && ps[0] > 1 {
			out = append(out, fmt.Sprintf("Class %s on %s: first lesson is period %d, not period 1", domain.Name(lookups.ClassNames, k.classID), k.day, ps[0]))
		}
		for i := 1; i < len(ps); i++ {
			if ps[i] != ps[i-1]+1 {
				out = append(out, fmt.Sprintf("Class %s on %s: gap between period %d and period %d", domain.Name(lookups.ClassNames, k.classID), k.day, ps[i-1], ps[i]))
			}
		}
	}
	return out
}

func doubleBookingChecks(schedule []domain.Lesson, lookups domain.Lookups, byTeacher bool) []string {
	type key struct {
		id  string
		day domain.Day
		per int
	}
	seen := map[key][]domain.Lesson{}
	for _, l := range schedule {
		id := l.ClassID
		if byTeacher {
			id = l.TeacherID
		}
		k := key{id, l.Day, l.Period}
		seen[k] = append(seen[k], l)
	}
	var out []string
	for k, ls := range seen {
		if len(ls) <= 1 {
			continue
		}
		name := k.id
		if byTeacher {
			name = domain.Name(lookups.TeacherNames, k.id)
			out = append(out, fmt.Sprintf("Teacher %s is double-booked on %s period %d (%d lessons)", name, k.day, k.per, len(ls)))
		} else {
			name = domain.Name(lookups.ClassNames, k.id)
			out = append(out, fmt.Sprintf("Class %s is double-booked on %s period %d (%d lessons)", name, k.day, k.per, len(ls)))
		}
	}
	return out
}

func overloadChecks(schedule []domain.Lesson, lookups domain.Lookups) []string {
	type key struct {
		classID string
		day     domain.Day
	}
	counts := map[key]int{}
	for _, l := range schedule {
		counts[key{l.ClassID, l.Day}]++
	}
	var out []string
	for k, n := range counts {
		if n > MaxDailyLoad {
			out = append(out, fmt.Sprintf("Class %s on %s: %d lessons exceeds the daily maximum of %d", domain.Name(lookups.ClassNames, k.classID), k.day, n, MaxDailyLoad))
		}
	}
	return out
}
