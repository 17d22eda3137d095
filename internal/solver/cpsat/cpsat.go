// Package cpsat is exact back-end A: the randomized greedy constructive
// solver with bounded local search from internal/solver/shared. It honors the same hard constraints
// a CP-SAT model would (coverage, single-booking, availability, fixed
// assignments, strict compactness) and minimizes the base soft-objective
// catalog from internal/model.
package cpsat

import (
	"math/rand"
	"time"

	"schoolscheduler/internal/domain"
	"schoolscheduler/internal/model"
	"schoolscheduler/internal/solver/shared"
)

// DefaultStrictTimeout and DefaultRelaxedTimeout bound how long each
// cascade pass searches before giving up (15s strict, 30s relaxed).
const (
	DefaultStrictTimeout  = 15 * time.Second
	DefaultRelaxedTimeout = 30 * time.Second
)

// OnUnmatchedFixed, if set, is notified whenever a Solve call could not
// pin every fixed lesson it was given. The orchestrator wires this to
// its logger; left nil in tests and standalone use.
var OnUnmatchedFixed func(count int)

// Solve places requests onto periods, honoring strict compactness when
// strict is true. fixed pre-seeds specific (class, subject, teacher)
// lessons at specific slots, as the genetic back-end's repair step does.
// Returns (nil, reason) when no feasible schedule was found in time.
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
		AnnealSteps:      4000,
		OnUnmatchedFixed: OnUnmatchedFixed,
	}
	return shared.Solve(req, requests, params)
}

// objective scores a schedule using the base weight catalog:
// class gaps, late start, per-class-day overload, teacher gaps, earlier
// period, and period-zero preference.
func objective(req *domain.ScheduleRequest, requests []domain.Request, schedule []domain.Lesson, periods []int) float64 {
	lookups := domain.BuildLookups(req)

	score := 0.0

	type classDay struct {
		class string
		day   domain.Day
	}
	classDayPeriods := map[classDay][]int{}
	teacherDayPeriods := map[classDay][]int{}

	for _, l := range schedule {
		score += float64(l.Period) * model.WeightEarlierPeriod
		cd := classDay{l.ClassID, l.Day}
		classDayPeriods[cd] = append(classDayPeriods[cd], l.Period)
		td := classDay{l.TeacherID, l.Day}
		teacherDayPeriods[td] = append(teacherDayPeriods[td], l.Period)

		if l.Period == 0 {
			if t, ok := lookups.Teachers[l.TeacherID]; ok && t.PrefersPeriodZero {
				score += model.WeightPeriodZeroLiked
			} else {
				score += model.WeightPeriodZeroAvoid
			}
		}
	}

	for _, ps := range classDayPeriods {
		gaps, start, _ := spanInfo(ps)
		score += float64(gaps) * model.WeightClassGap
		score += float64(start-1) * model.WeightLateStart
		excess := len(ps) - 5
		if excess > 0 {
			score += float64(excess) * model.WeightClassDayOverload
		}
	}
	for _, ps := range teacherDayPeriods {
		gaps, _, _ := spanInfo(ps)
		score += float64(gaps) * model.WeightTeacherGap
	}

	return score
}

// spanInfo returns the number of gap slots between the first and last
// period in periods, plus the start and end period.
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
