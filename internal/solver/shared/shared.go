// Package shared implements the constructive-plus-local-search engine
// common to both exact back-ends (cpsat and mip). Each back-end supplies
// its own soft-objective function and weight catalog; this package owns
// the hard-constraint bookkeeping (coverage, single-booking, availability,
// fixed assignments, strict compactness) both back-ends must honor
// identically.
package shared

import (
	"math/rand"
	"time"

	"schoolscheduler/internal/domain"
)

// Unit is a single hour of a Request awaiting placement.
type Unit struct {
	ReqIdx int
}

// Objective scores a complete schedule; lower is better. Implementations
// supply the weight catalog appropriate to their back-end (base catalog
// for cpsat, extended catalog for mip).
type Objective func(req *domain.ScheduleRequest, requests []domain.Request, schedule []domain.Lesson, periods []int) float64

// Params configures one Solve call.
type Params struct {
	Periods     []int
	Strict      bool
	Fixed       []domain.Lesson
	Timeout     time.Duration
	Objective   Objective
	Rand        *rand.Rand
	AnnealSteps int // local-search steps to attempt once a feasible schedule exists

	// OnUnmatchedFixed, if set, is called with the number of Fixed
	// lessons that had no matching free unit to pin to. Those lessons
	// are skipped and do not appear in the result; every request unit
	// is still placed by the constructive pass.
	OnUnmatchedFixed func(count int)
}

type slot struct {
	day    domain.Day
	period int
}

// Solve builds a schedule satisfying requests under params' hard
// constraints, or returns (nil, message) if no feasible assignment is
// found within the timeout. Produces a deterministic lesson list for a
// fixed rand seed, so the same request and seed reproduce the same schedule.
func Solve(req *domain.ScheduleRequest, requests []domain.Request, params Params) ([]domain.Lesson, string) {
	deadline := time.Now().Add(params.Timeout)
	rng := params.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	// Busy grids, pre-seeded with teacher availability blocks.
	teacherBusy := map[string]map[slot]int{} // value = unit index + 1, or -1 for "blocked"
	classBusy := map[string]map[slot]int{}

	for _, t := range req.Teachers {
		teacherBusy[t.ID] = map[slot]int{}
		for d, ps := range t.Availability {
			for p := range ps {
				teacherBusy[t.ID][slot{d, p}] = -1
			}
		}
	}
	for _, c := range req.Classes {
		classBusy[c.ID] = map[slot]int{}
	}

	// Expand requests into units.
	units := make([]Unit, 0)
	for i, r := range requests {
		for k := 0; k < r.Count; k++ {
			units = append(units, Unit{ReqIdx: i})
		}
	}

	assigned := make([]*slot, len(units)) // nil = unplaced

	if unmatched := matchFixed(requests, units, assigned, params.Fixed, teacherBusy, classBusy); unmatched > 0 && params.OnUnmatchedFixed != nil {
		params.OnUnmatchedFixed(unmatched)
	}

	periods := params.Periods
	minPeriod, maxPeriod := periods[0], periods[0]
	for _, p := range periods {
		if p < minPeriod {
			minPeriod = p
		}
		if p > maxPeriod {
			maxPeriod = p
		}
	}

	// Randomized order for the remaining free units, deterministic under seed.
	order := make([]int, 0, len(units))
	for i, u := range units {
		if assigned[i] == nil {
			order = append(order, i)
			_ = u
		}
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, idx := range order {
		if time.Now().After(deadline) {
			return nil, "solver timed out during construction"
		}
		u := units[idx]
		r := requests[u.ReqIdx]
		best, ok := pickSlot(r, periods, teacherBusy[r.TeacherID], classBusy[r.ClassID], rng)
		if !ok {
			return nil, "no feasible slot for request (class/teacher conflict or insufficient availability)"
		}
		assigned[idx] = &best
		teacherBusy[r.TeacherID][best] = idx + 1
		classBusy[r.ClassID][best] = idx + 1
	}

	if params.Strict {
		if !compact(requests, units, assigned, classBusy, minPeriod) {
			if !repairCompactness(requests, units, assigned, classBusy, teacherBusy, minPeriod, maxPeriod, deadline) {
				return nil, "could not produce a gap-free schedule starting at period 1"
			}
		}
	}

	schedule := extract(req, requests, units, assigned)

	if params.Objective != nil && params.AnnealSteps > 0 {
		schedule = anneal(req, requests, units, assigned, teacherBusy, classBusy, schedule, params, deadline, minPeriod, maxPeriod)
	}

	return schedule, ""
}

// matchFixed greedily matches fixed lessons to free units of the same
// (class, subject, teacher). A fixed lesson with no matching free unit
// is skipped and left out of the schedule, and the count is reported to
// Params.OnUnmatchedFixed.
func matchFixed(requests []domain.Request, units []Unit, assigned []*slot, fixed []domain.Lesson, teacherBusy, classBusy map[string]map[slot]int) (unmatched int) {
	for _, f := range fixed {
		s := slot{f.Day, f.Period}
		found := false
		for i, u := range units {
			if assigned[i] != nil {
				continue
			}
			r := requests[u.ReqIdx]
			if r.ClassID == f.ClassID && r.SubjectID == f.SubjectID && r.TeacherID == f.TeacherID {
				assigned[i] = &s
				teacherBusy[r.TeacherID][s] = i + 1
				classBusy[r.ClassID][s] = i + 1
				found = true
				break
			}
		}
		if !found {
			unmatched++
		}
	}
	return unmatched
}

func pickSlot(r domain.Request, periods []int, teacherBusy, classBusy map[slot]int, rng *rand.Rand) (slot, bool) {
	candidates := make([]slot, 0, 5*len(periods))
	for _, d := range domain.Days {
		for _, p := range periods {
			s := slot{d, p}
			if teacherBusy[s] != 0 {
				continue
			}
			if classBusy[s] != 0 {
				continue
			}
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return slot{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// compact reports whether every (class, day) with lessons forms a
// contiguous run starting at minPeriod (when minPeriod is schedulable).
func compact(requests []domain.Request, units []Unit, assigned []*slot, classBusy map[string]map[slot]int, minPeriod int) bool {
	byClassDay := map[[2]any][]int{}
	for i, u := range units {
		s := assigned[i]
		if s == nil {
			continue
		}
		r := requests[u.ReqIdx]
		key := [2]any{r.ClassID, s.day}
		byClassDay[key] = append(byClassDay[key], s.period)
	}
	for _, ps := range byClassDay {
		if !isContiguousFrom(ps, minPeriod) {
			return false
		}
	}
	return true
}

func isContiguousFrom(periods []int, start int) bool {
	seen := map[int]struct{}{}
	lo, hi := periods[0], periods[0]
	for _, p := range periods {
		seen[p] = struct{}{}
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if lo != start {
		return false
	}
	for p := lo; p <= hi; p++ {
		if _, ok := seen[p]; !ok {
			return false
		}
	}
	return true
}

// repairCompactness attempts, via bounded randomized local moves, to
// compact every (class, day) run to start at minPeriod with no gaps.
// Moves only swap a lesson into a currently-free (teacher, class) slot,
// so hard constraints other than compactness are preserved throughout.
func repairCompactness(requests []domain.Request, units []Unit, assigned []*slot, classBusy, teacherBusy map[string]map[slot]int, minPeriod, maxPeriod int, deadline time.Time) bool {
	const maxAttempts = 2000
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if time.Now().After(deadline) {
			return false
		}
		if compact(requests, units, assigned, classBusy, minPeriod) {
			return true
		}
		// Find one class/day pair with a gap and try to pull a later
		// lesson down into the first open slot from minPeriod.
		progressed := false
		byClassDay := map[[2]any][]int{}
		idxByClassDay := map[[2]any][]int{}
		for i, u := range units {
			s := assigned[i]
			if s == nil {
				continue
			}
			r := requests[u.ReqIdx]
			key := [2]any{r.ClassID, s.day}
			byClassDay[key] = append(byClassDay[key], s.period)
			idxByClassDay[key] = append(idxByClassDay[key], i)
		}
		for key, periods := range byClassDay {
			if isContiguousFrom(periods, minPeriod) {
				continue
			}
			classID := key[0].(string)
			day := key[1].(domain.Day)
			used := map[int]struct{}{}
			for _, p := range periods {
				used[p] = struct{}{}
			}
			for target := minPeriod; target <= maxPeriod; target++ {
				if _, occupied := used[target]; occupied {
					continue
				}
				if classBusy[classID][slot{day, target}] != 0 {
					continue
				}
				idxs := idxByClassDay[key]
				for _, i := range idxs {
					r := requests[units[i].ReqIdx]
					old := *assigned[i]
					if old.period <= target {
						continue
					}
					if teacherBusy[r.TeacherID][slot{day, target}] != 0 {
						continue
					}
					delete(classBusy[classID], old)
					delete(teacherBusy[r.TeacherID], old)
					ns := slot{day, target}
					assigned[i] = &ns
					classBusy[classID][ns] = i + 1
					teacherBusy[r.TeacherID][ns] = i + 1
					progressed = true
					break
				}
				if progressed {
					break
				}
			}
			if progressed {
				break
			}
		}
		if !progressed {
			return compact(requests, units, assigned, classBusy, minPeriod)
		}
	}
	return compact(requests, units, assigned, classBusy, minPeriod)
}

func extract(req *domain.ScheduleRequest, requests []domain.Request, units []Unit, assigned []*slot) []domain.Lesson {
	out := make([]domain.Lesson, 0, len(units))
	for i, u := range units {
		s := assigned[i]
		if s == nil {
			continue
		}
		r := requests[u.ReqIdx]
		out = append(out, domain.Lesson{
			ClassID:   r.ClassID,
			SubjectID: r.SubjectID,
			TeacherID: r.TeacherID,
			Day:       s.day,
			Period:    s.period,
		})
	}
	return out
}

// anneal runs bounded randomized swaps between two placed units to
// reduce the soft objective, accepting only moves that preserve every
// hard constraint (and, in strict mode, compactness).
func anneal(req *domain.ScheduleRequest, requests []domain.Request, units []Unit, assigned []*slot, teacherBusy, classBusy map[string]map[slot]int, schedule []domain.Lesson, params Params, deadline time.Time, minPeriod, maxPeriod int) []domain.Lesson {
	best := schedule
	bestScore := params.Objective(req, requests, best, params.Periods)

	for step := 0; step < params.AnnealSteps; step++ {
		if time.Now().After(deadline) {
			break
		}
		if len(units) < 2 {
			break
		}
		i := params.Rand.Intn(len(units))
		j := params.Rand.Intn(len(units))
		if i == j || assigned[i] == nil || assigned[j] == nil {
			continue
		}
		ri, rj := requests[units[i].ReqIdx], requests[units[j].ReqIdx]
		si, sj := *assigned[i], *assigned[j]
		if si == sj {
			continue
		}
		// Swap is only legal if each request can occupy the other's slot.
		if teacherBusy[ri.TeacherID][sj] != 0 && teacherBusy[ri.TeacherID][sj] != j+1 {
			continue
		}
		if classBusy[ri.ClassID][sj] != 0 && classBusy[ri.ClassID][sj] != j+1 {
			continue
		}
		if teacherBusy[rj.TeacherID][si] != 0 && teacherBusy[rj.TeacherID][si] != i+1 {
			continue
		}
		if classBusy[rj.ClassID][si] != 0 && classBusy[rj.ClassID][si] != i+1 {
			continue
		}

		delete(teacherBusy[ri.TeacherID], si)
		delete(classBusy[ri.ClassID], si)
		delete(teacherBusy[rj.TeacherID], sj)
		delete(classBusy[rj.ClassID], sj)

		assigned[i], assigned[j] = &sj, &si
		teacherBusy[ri.TeacherID][sj] = i + 1
		classBusy[ri.ClassID][sj] = i + 1
		teacherBusy[rj.TeacherID][si] = j + 1
		classBusy[rj.ClassID][si] = j + 1

		if params.Strict && !compact(requests, units, assigned, classBusy, minPeriod) {
			// revert
			assigned[i], assigned[j] = &si, &sj
			delete(teacherBusy[ri.TeacherID], sj)
			delete(classBusy[ri.ClassID], sj)
			delete(teacherBusy[rj.TeacherID], si)
			delete(classBusy[rj.ClassID], si)
			teacherBusy[ri.TeacherID][si] = i + 1
			classBusy[ri.ClassID][si] = i + 1
			teacherBusy[rj.TeacherID][sj] = j + 1
			classBusy[rj.ClassID][sj] = j + 1
			continue
		}

		candidate := extract(req, requests, units, assigned)
		score := params.Objective(req, requests, candidate, params.Periods)
		if score <= bestScore {
			bestScore = score
			best = candidate
		} else {
			// revert
			assigned[i], assigned[j] = &si, &sj
			delete(teacherBusy[ri.TeacherID], sj)
			delete(classBusy[ri.ClassID], sj)
			delete(teacherBusy[rj.TeacherID], si)
			delete(classBusy[rj.ClassID], si)
			teacherBusy[ri.TeacherID][si] = i + 1
			classBusy[ri.ClassID][si] = i + 1
			teacherBusy[rj.TeacherID][sj] = j + 1
			classBusy[rj.ClassID][sj] = j + 1
		}
	}
	return best
}
