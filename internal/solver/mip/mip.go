// Package mip is exact back-end B: the same constructive-plus-local-
// search engine as cpsat, but minimizing a richer soft-objective catalog
// (consecutive-same-subject, daily overload, hard-subject placement,
// distribution deviation, a days-off bonus), on top of the base catalog
// every back-end shares.
package mip

import (
	"math/rand"
	"time"

	"schoolscheduler/internal/domain"
	"schoolscheduler/internal/model"
	"schoolscheduler/internal/solver/shared"
)

// DefaultStrictTimeout and DefaultRelaxedTimeout mirror back-end A's
// budget; these are just sane defaults when none is given.
const (
	DefaultStrictTimeout  = 15 * time.Second
	DefaultRelaxedTimeout = 30 * time.Second
)

// OnUnmatchedFixed mirrors cpsat.OnUnmatchedFixed for back-end B.
var OnUnmatchedFixed func(count int)

// Solve has the same contract as cpsat.Solve, with the extended
// objective. See cpsat.Solve for parameter semantics.
func Solve(req *domain.ScheduleRequest, requests []domain.Request, periods []int, strict bool, fixed []domain.Lesson, timeout time.Duration, seed int64) ([]domain.Lesson, string) {
	if timeout <= 0 {
		if strict {
			timeout = DefaultStrictTimeout
		} else {
			timeout = DefaultRelaxedTimeout
		}
	}
	params := shared.Params{
		Periods:          periods,
		Strict:           strict,
		Fixed:            fixed,
		Timeout:          timeout,
		Objective:        objective,
		Rand:             rand.New(rand.NewSource(seed)),
		AnnealSteps:      6000,
		OnUnmatchedFixed: OnUnmatchedFixed,
	}
	return shared.Solve(req, requests, params)
}

func objective(req *domain.ScheduleRequest, requests []domain.Request, schedule []domain.Lesson, periods []int) float64 {
	lookups := domain.BuildLookups(req)

	score := 0.0

	classDayLessons := map[classDayKey][]domain.Lesson{}
	teacherDayPeriods := map[classDayKey][]int{}
	teacherWeeklyLoad := map[string]int{}

	for _, l := range schedule {
		score += float64(l.Period) * model.WeightEarlierPeriod
		classDayLessons[classDayKey{l.ClassID, l.Day}] = append(classDayLessons[classDayKey{l.ClassID, l.Day}], l)
		teacherDayPeriods[classDayKey{l.TeacherID, l.Day}] = append(teacherDayPeriods[classDayKey{l.TeacherID, l.Day}], l.Period)
		teacherWeeklyLoad[l.TeacherID]++

		if l.Period == 0 {
			if t, ok := lookups.Teachers[l.TeacherID]; ok && t.PrefersPeriodZero {
				score += model.WeightPeriodZeroLiked
			} else {
				score += model.WeightPeriodZeroAvoid
			}
		}

		subjName := domain.Name(lookups.SubjectNames, l.SubjectID)
		if model.IsHardSubject(subjName) {
			if _, ok := model.HardSubjectPreferredPeriods[l.Period]; ok {
				score += model.WeightHardSubjectPreferred
			}
			if _, ok := model.HardSubjectDiscouragedPeriods[l.Period]; ok {
				score += model.WeightHardSubjectDiscouraged
			}
		}
	}

	for k, lessons := range classDayLessons {
		periodsHere := make([]int, len(lessons))
		for i, l := range lessons {
			periodsHere[i] = l.Period
		}
		gaps, start, _ := spanInfo(periodsHere)
		score += float64(gaps) * model.WeightClassGap
		score += float64(start-1) * model.WeightLateStart
		excess := len(lessons) - 5
		if excess > 0 {
			score += float64(excess) * model.WeightClassDayOverload
		}
		excessHigh := len(lessons) - 7
		if excessHigh > 0 {
			score += float64(excessHigh) * model.WeightClassDayOverloadHigh
		}
		score += consecutiveSameSubjectPenalty(lessons)
		_ = k
	}

	for _, ps := range teacherDayPeriods {
		gaps, _, _ := spanInfo(ps)
		score += float64(gaps) * model.WeightTeacherGap
	}

	for teacherID, load := range teacherWeeklyLoad {
		if load < 30 {
			score -= model.WeightDaysOffBonus
		}
		_ = teacherID
	}

	score += distributionDeviationPenalty(classDayLessons)

	return score
}

// classDayKey identifies either a (class, day) or (teacher, day) pair,
// depending on which map it indexes.
type classDayKey struct {
	id  string
	day domain.Day
}

// consecutiveSameSubjectPenalty penalizes three-or-more consecutive
// periods of the same subject for one class on one day.
func consecutiveSameSubjectPenalty(lessons []domain.Lesson) float64 {
	bySubjectPeriod := map[string][]int{}
	for _, l := range lessons {
		bySubjectPeriod[l.SubjectID] = append(bySubjectPeriod[l.SubjectID], l.Period)
	}
	penalty := 0.0
	for _, ps := range bySubjectPeriod {
		run := 1
		sorted := append([]int(nil), ps...)
		insertionSort(sorted)
		for i := 1; i < len(sorted); i++ {
			if sorted[i] == sorted[i-1]+1 {
				run++
				if run >= 3 {
					penalty += model.WeightConsecutiveSameSubject
				}
			} else {
				run = 1
			}
		}
	}
	return penalty
}

// distributionDeviationPenalty rewards classes whose lessons spread
// evenly across the week, penalizing each day's absolute deviation from
// the ideal per-day share.
func distributionDeviationPenalty(classDayLessons map[classDayKey][]domain.Lesson) float64 {
	totals := map[string]int{}
	perDay := map[string]map[domain.Day]int{}
	for k, lessons := range classDayLessons {
		totals[k.id] += len(lessons)
		if perDay[k.id] == nil {
			perDay[k.id] = map[domain.Day]int{}
		}
		perDay[k.id][k.day] = len(lessons)
	}
	penalty := 0.0
	for classID, total := range totals {
		ideal := float64(total) / 5.0
		for _, d := range domain.Days {
			count := float64(perDay[classID][d])
			if dev := count - ideal; dev > 0 {
				penalty += dev * model.WeightDistributionDeviation / 5.0
			} else {
				penalty += -dev * model.WeightDistributionDeviation / 5.0
			}
		}
	}
	return penalty
}

func insertionSort(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func spanInfo(periods []int) (gaps, start, end int) {
	if len(periods) == 0 {
		return 0, 0, 0
	}
	start, end = periods[0], periods[0]
	for _, p := range periods {
		if p < start {
			start = p
		}
		if p > end {
			end = p
		}
	}
	occupied := map[int]struct{}{}
	for _, p := range periods {
		occupied[p] = struct{}{}
	}
	for p := start; p <= end; p++ {
		if _, ok := occupied[p]; !ok {
			gaps++
		}
	}
	return gaps, start, end
}
