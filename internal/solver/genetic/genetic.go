// Package genetic is the metaheuristic back-end: a population-based
// evolutionary large-neighborhood search. Each population member is
// produced (and repaired) by re-running the cp-sat back-end's cascade,
// so the genetic layer only ever works with hard-constraint-clean
// schedules; it searches for soft-objective quality, not feasibility.
package genetic

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"schoolscheduler/internal/domain"
	"schoolscheduler/internal/solver/cpsat"
)

// ProgressFunc reports generation progress as a percentage [0,100] and a
// short status message, fed to the HTTP boundary's streaming response.
type ProgressFunc func(pct int, msg string)

const (
	defaultPopulationSize = 6
	defaultGenerations    = 3
	defaultMutationRate   = 0.5

	teacherGapWeight   = 50
	teacherOneOffDay    = 10
	periodZeroWeight   = 200
)

// Config bundles the tunables a caller's wire request can override.
type Config struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	Periods        []int
	PerMemberTimeout time.Duration
}

// workerCap bounds concurrent solver workers: never more than the host's
// core count, and never more than 6 regardless.
func workerCap() int {
	if n := runtime.NumCPU(); n < 6 {
		if n < 1 {
			return 1
		}
		return n
	}
	return 6
}

// Solve runs the evolutionary search and returns the best schedule found,
// or an error if not even one cascade attempt produced a feasible seed.
func Solve(ctx context.Context, req *domain.ScheduleRequest, requests []domain.Request, cfg Config, progress ProgressFunc) ([]domain.Lesson, error) {
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = defaultPopulationSize
	}
	if cfg.Generations <= 0 {
		cfg.Generations = defaultGenerations
	}
	if cfg.MutationRate <= 0 {
		cfg.MutationRate = defaultMutationRate
	}
	if cfg.PerMemberTimeout <= 0 {
		cfg.PerMemberTimeout = 10 * time.Second
	}

	report := func(pct int, msg string) {
		if progress != nil {
			progress(pct, msg)
		}
	}

	report(0, "seeding initial population")
	population, err := seedPopulation(ctx, req, requests, cfg)
	if err != nil {
		return nil, err
	}
	if len(population) == 0 {
		return nil, fmt.Errorf("genetic solver: no cascade attempt produced a feasible schedule")
	}

	bestEver := population[0]
	bestScore := fitness(req, bestEver)
	for _, m := range population {
		if s := fitness(req, m); s > bestScore {
			bestScore = s
			bestEver = m
		}
	}

	for gen := 0; gen < cfg.Generations; gen++ {
		report(10+gen*80/cfg.Generations, fmt.Sprintf("generation %d/%d", gen+1, cfg.Generations))

		sort.Slice(population, func(i, j int) bool {
			return fitness(req, population[i]) > fitness(req, population[j])
		})

		elite := append([][]domain.Lesson(nil), population[:min(2, len(population))]...)
		parentCount := max(1, len(population)/2)
		parents := population[:min(parentCount, len(population))]

		next := append([][]domain.Lesson(nil), elite...)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workerCap())
		results := make([][]domain.Lesson, cfg.PopulationSize-len(next))
		for i := range results {
			i := i
			g.Go(func() error {
				parent := parents[rand.Intn(len(parents))]
				results[i] = mutate(gctx, req, requests, parent, cfg)
				return nil
			})
		}
		_ = g.Wait()
		population = append(next, results...)

		for _, m := range population {
			if s := fitness(req, m); s > bestScore {
				bestScore = s
				bestEver = m
			}
		}
	}

	report(100, "done")
	return bestEver, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// seedPopulation builds cfg.PopulationSize independent schedules by
// running back-end A's cascade concurrently, capped at workerCap().
func seedPopulation(ctx context.Context, req *domain.ScheduleRequest, requests []domain.Request, cfg Config) ([][]domain.Lesson, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCap())
	results := make([][]domain.Lesson, cfg.PopulationSize)
	for i := 0; i < cfg.PopulationSize; i++ {
		i := i
		g.Go(func() error {
			seed := int64(i + 1)
			results[i] = cascade(gctx, req, requests, cfg.Periods, nil, cfg.PerMemberTimeout, seed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([][]domain.Lesson, 0, cfg.PopulationSize)
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// cascade tries strict(1..7), then relaxed(1..7), then relaxed(0..7), in
// that order, returning the first feasible schedule, or nil.
func cascade(ctx context.Context, req *domain.ScheduleRequest, requests []domain.Request, periods []int, fixed []domain.Lesson, timeout time.Duration, seed int64) []domain.Lesson {
	periods1to7 := withoutZero(periods)

	if s, reason := cpsat.Solve(req, requests, periods1to7, true, fixed, timeout, seed); reason == "" {
		return s
	}
	if s, reason := cpsat.Solve(req, requests, periods1to7, false, fixed, timeout, seed+1); reason == "" {
		return s
	}
	if s, reason := cpsat.Solve(req, requests, periods, false, fixed, timeout, seed+2); reason == "" {
		return s
	}
	return nil
}

func withoutZero(periods []int) []int {
	out := make([]int, 0, len(periods))
	for _, p := range periods {
		if p != 0 {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return periods
	}
	return out
}

// mutate fixes a random subset of the parent's lessons and re-solves the
// cascade around them; on total cascade failure, the parent is returned
// unchanged.
func mutate(ctx context.Context, req *domain.ScheduleRequest, requests []domain.Request, parent []domain.Lesson, cfg Config) []domain.Lesson {
	if len(parent) == 0 {
		return parent
	}
	strength := 0.1 + rand.Float64()*0.3
	keep := int(float64(len(parent)) * (1 - strength))
	shuffled := append([]domain.Lesson(nil), parent...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	fixed := shuffled[:min(keep, len(shuffled))]

	child := cascade(ctx, req, requests, cfg.Periods, fixed, cfg.PerMemberTimeout, rand.Int63())
	if child == nil {
		return parent
	}
	return child
}

// fitness scores a schedule; higher is better (negated-penalty form).
func fitness(req *domain.ScheduleRequest, schedule []domain.Lesson) float64 {
	if len(schedule) == 0 {
		return -1e18
	}
	lookups := domain.BuildLookups(req)

	type key struct {
		teacherID string
		day       domain.Day
	}
	byTeacherDay := map[key][]int{}
	periodZeroCount := 0
	for _, l := range schedule {
		byTeacherDay[key{l.TeacherID, l.Day}] = append(byTeacherDay[key{l.TeacherID, l.Day}], l.Period)
		if l.Period == 0 {
			periodZeroCount++
		}
	}

	score := 0.0
	for _, ps := range byTeacherDay {
		sort.Ints(ps)
		for i := 1; i < len(ps); i++ {
			gap := ps[i] - ps[i-1] - 1
			if gap > 0 {
				score -= float64(gap) * teacherGapWeight
			}
		}
		if len(ps) == 1 {
			score -= teacherOneOffDay
		}
	}
	score -= float64(periodZeroCount) * periodZeroWeight
	_ = lookups
	return score
}
