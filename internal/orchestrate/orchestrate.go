// Package orchestrate drives one solve end to end: validate, dispatch to
// a back-end (direct strategy or the strict->relaxed->relaxed cascade),
// post-process, and analyze, never reporting success without re-checking
// the result.
package orchestrate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"schoolscheduler/internal/analyze"
	"schoolscheduler/internal/domain"
	"schoolscheduler/internal/metrics"
	"schoolscheduler/internal/model"
	"schoolscheduler/internal/pkg/logger"
	"schoolscheduler/internal/postprocess"
	"schoolscheduler/internal/solver/cpsat"
	"schoolscheduler/internal/solver/genetic"
	"schoolscheduler/internal/solver/mip"
	"schoolscheduler/internal/validate"
)

// FullPeriods and WorkingPeriods are the two period sets the cascade
// tries in order: the normal 1..7 school day, then 0..7 including the
// early "zero" lesson.
var (
	WorkingPeriods = []int{1, 2, 3, 4, 5, 6, 7}
	FullPeriods    = []int{0, 1, 2, 3, 4, 5, 6, 7}
)

// admission rate-limits the start of Solve calls: at most 4 per second,
// with bursts of up to 4. It paces how often solves start; it does not
// cap how many run at once, since a running solve holds no token. A
// package-level limiter is deliberate: it throttles the whole process,
// not one orchestrator instance.
var admission = rate.NewLimiter(rate.Limit(4), 4)

// Defaults fills in request fields a caller left at their zero value,
// sourced from internal/pkg/config's SolverConfig so a bare-bones
// request still gets a sane timeout and genetic population.
type Defaults struct {
	Timeout               time.Duration
	GeneticPopulationSize int
	GeneticGenerations    int
	GeneticMutationRate   float64
}

// Orchestrator wires the solve pipeline to the ambient logger and the
// configured solver defaults.
type Orchestrator struct {
	log      *logger.Logger
	defaults Defaults
}

// New builds an Orchestrator that logs through log and falls back to
// defaults for any unset request field.
func New(log *logger.Logger, defaults Defaults) *Orchestrator {
	cpsat.OnUnmatchedFixed = func(count int) {
		log.Warn("fixed lessons left unmatched during re-solve, skipped", zap.Int("count", count))
	}
	mip.OnUnmatchedFixed = cpsat.OnUnmatchedFixed
	return &Orchestrator{log: log, defaults: defaults}
}

// Solve validates req, runs the selected strategy, post-processes, and
// analyzes the result before returning. progress is optional and only
// consulted by the genetic strategy.
func (o *Orchestrator) Solve(ctx context.Context, req *domain.ScheduleRequest, progress genetic.ProgressFunc) domain.Result {
	start := time.Now()
	o.applyDefaults(req)

	if errs := validate.Plan(req); len(errs) > 0 {
		o.log.Warn("solve rejected at validation", zap.String("request_id", req.RequestID), zap.Int("violation_count", len(errs)))
		return domain.Result{Status: domain.StatusError, Violations: errs, Message: "plan failed validation"}
	}

	if err := admission.Wait(ctx); err != nil {
		return domain.Result{Status: domain.StatusError, Message: "solver is at capacity, try again shortly"}
	}

	requests := model.Build(req)

	timeout := time.Duration(req.Timeout) * time.Second
	result := o.dispatch(ctx, req, requests, timeout, progress)

	result.Schedule = postprocess.OptimizePeriodZero(req, result.Schedule, FullPeriods)

	analysis := analyze.Schedule(req, requests, result.Schedule, FullPeriods)
	if !analysis.OK() {
		result.Status = domain.StatusConflict
		result.Violations = analysis.Violations
		if analysis.Summary != "" {
			result.Message = analysis.Summary
		}
	}

	strategyLabel := string(req.Strategy)
	if strategyLabel == "" {
		strategyLabel = "cascade"
	}
	metrics.SolveDuration.WithLabelValues(strategyLabel, string(result.Status)).Observe(time.Since(start).Seconds())
	metrics.ViolationCount.WithLabelValues(strategyLabel).Set(float64(len(result.Violations)))

	o.log.Info("solve complete",
		zap.String("request_id", req.RequestID),
		zap.String("strategy", strategyLabel),
		zap.String("status", string(result.Status)),
		zap.Int("lessons", len(result.Schedule)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return result
}

// applyDefaults fills any zero-valued timeout/genetic field on req from
// o.defaults, leaving explicit caller-supplied values untouched.
func (o *Orchestrator) applyDefaults(req *domain.ScheduleRequest) {
	if req.Timeout <= 0 {
		req.Timeout = int(o.defaults.Timeout / time.Second)
	}
	if req.GeneticPopulationSize <= 0 {
		req.GeneticPopulationSize = o.defaults.GeneticPopulationSize
	}
	if req.GeneticGenerations <= 0 {
		req.GeneticGenerations = o.defaults.GeneticGenerations
	}
	if req.GeneticMutationRate <= 0 {
		req.GeneticMutationRate = o.defaults.GeneticMutationRate
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, req *domain.ScheduleRequest, requests []domain.Request, timeout time.Duration, progress genetic.ProgressFunc) domain.Result {
	switch req.Strategy {
	case domain.StrategyMIP:
		return o.solveExact(mip.Solve, req, requests, timeout)
	case domain.StrategyGenetic:
		return o.solveGenetic(ctx, req, requests, progress)
	default:
		// StrategyCP (the documented default) and an unset strategy both
		// run the same strict->relaxed->relaxed cascade.
		return o.cascade(req, requests, timeout)
	}
}

type exactSolve func(req *domain.ScheduleRequest, requests []domain.Request, periods []int, strict bool, fixed []domain.Lesson, timeout time.Duration, seed int64) ([]domain.Lesson, string)

// cascade tries strict(1..7) -> relaxed(1..7) -> relaxed(0..7), using
// back-end A (cpsat) for each pass.
func (o *Orchestrator) cascade(req *domain.ScheduleRequest, requests []domain.Request, timeout time.Duration) domain.Result {
	passes := []struct {
		periods []int
		strict  bool
	}{
		{WorkingPeriods, true},
		{WorkingPeriods, false},
		{FullPeriods, false},
	}
	for i, p := range passes {
		schedule, reason := cpsat.Solve(req, requests, p.periods, p.strict, nil, timeout, int64(i+1))
		o.log.Debug("cascade pass", zap.String("request_id", req.RequestID), zap.Int("pass", i+1), zap.Bool("strict", p.strict), zap.String("reason", reason))
		outcome := "success"
		if reason != "" {
			outcome = "failed"
		}
		metrics.SolvePasses.WithLabelValues(fmt.Sprintf("%d", i+1), outcome).Inc()
		if reason == "" {
			return domain.Result{Status: domain.StatusSuccess, Schedule: schedule}
		}
	}
	return domain.Result{Status: domain.StatusError, Message: "no pass in the cascade produced a feasible schedule"}
}

func (o *Orchestrator) solveExact(solve exactSolve, req *domain.ScheduleRequest, requests []domain.Request, timeout time.Duration) domain.Result {
	schedule, reason := solve(req, requests, WorkingPeriods, true, nil, timeout, 1)
	if reason != "" {
		schedule, reason = solve(req, requests, FullPeriods, false, nil, timeout, 2)
	}
	if reason != "" {
		return domain.Result{Status: domain.StatusError, Message: reason}
	}
	return domain.Result{Status: domain.StatusSuccess, Schedule: schedule}
}

func (o *Orchestrator) solveGenetic(ctx context.Context, req *domain.ScheduleRequest, requests []domain.Request, progress genetic.ProgressFunc) domain.Result {
	cfg := genetic.Config{
		PopulationSize: req.GeneticPopulationSize,
		Generations:    req.GeneticGenerations,
		MutationRate:   req.GeneticMutationRate,
		Periods:        FullPeriods,
	}
	schedule, err := genetic.Solve(ctx, req, requests, cfg, progress)
	if err != nil {
		return domain.Result{Status: domain.StatusError, Message: fmt.Sprintf("genetic solver: %v", err)}
	}
	return domain.Result{Status: domain.StatusSuccess, Schedule: schedule}
}
