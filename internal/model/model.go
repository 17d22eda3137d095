// Package model lowers a validated teaching plan into the flattened
// request list and weight catalog the solver back-ends consume. It holds
// no solver-specific state; cpsat and mip each pass the output of Build to
// internal/solver/shared with their own objective, and genetic re-solves
// through cpsat.
package model

import (
	"strings"

	"schoolscheduler/internal/domain"
)

// Weight catalog for the base soft objective, shared by
// both exact back-ends. Values span four orders of magnitude by design:
// H-level infeasibility > class-gap > late-start > teacher-gap > earlier-
// period tiebreaker. Any rescaling must preserve these ratios.
const (
	WeightClassGap        = 5000
	WeightLateStart       = 1000
	WeightClassDayOverload = 50
	WeightTeacherGap      = 10
	WeightEarlierPeriod   = 1
	WeightPeriodZeroLiked = -5000
	WeightPeriodZeroAvoid = 10000
)

// Extended soft-objective catalog used only by back-end B (MIP style).
const (
	WeightConsecutiveSameSubject = 200
	WeightClassDayOverloadHigh   = 300 // daily_total > 7
	WeightHardSubjectPreferred   = -20 // periods 2..4
	WeightHardSubjectDiscouraged = 50  // periods 1, 6, 7
	WeightDistributionDeviation  = 100
	WeightDaysOffBonus           = 500 // teacher weekly load < 30
)

// HardSubjectKeywords identifies subjects that benefit from mid-morning
// placement, by name keyword (english equivalents of the source's
// Ukrainian list: Математика, Фізика, Хімія, Біологія, Алгебра, Геометрія).
var HardSubjectKeywords = []string{
	"Math", "Mathematics", "Algebra", "Geometry",
	"Physics", "Chemistry", "Biology",
}

// IsHardSubject reports whether subjectName matches a hard-subject keyword.
func IsHardSubject(subjectName string) bool {
	for _, kw := range HardSubjectKeywords {
		if strings.Contains(subjectName, kw) {
			return true
		}
	}
	return false
}

// HardSubjectPreferredPeriods are the periods a hard subject is rewarded
// for landing on (mid-morning, good concentration).
var HardSubjectPreferredPeriods = map[int]struct{}{2: {}, 3: {}, 4: {}}

// HardSubjectDiscouragedPeriods are the periods a hard subject is
// penalized for landing on (too early or too late in the day).
var HardSubjectDiscouragedPeriods = map[int]struct{}{1: {}, 6: {}, 7: {}}

// Build flattens a validated plan into the schedulable request list:
// items with hours_per_week = 0 and items whose class is primary
// (grade 1-4) are dropped — primary classes are externally scheduled.
func Build(req *domain.ScheduleRequest) []domain.Request {
	lookups := domain.BuildLookups(req)
	out := make([]domain.Request, 0, len(req.Plan))
	for _, p := range req.Plan {
		if p.HoursPerWeek <= 0 {
			continue
		}
		className := domain.Name(lookups.ClassNames, p.ClassID)
		if domain.IsPrimary(className) {
			continue
		}
		out = append(out, domain.Request{
			ClassID:   p.ClassID,
			SubjectID: p.SubjectID,
			TeacherID: p.TeacherID,
			Count:     p.HoursPerWeek,
		})
	}
	return out
}

// PlanKey identifies a (class, subject) pair in the teaching plan.
type PlanKey struct {
	ClassID   string
	SubjectID string
}

// PlanInfo is the expected hours and assigned teacher for a plan key.
type PlanInfo struct {
	Hours     int
	TeacherID string
}

// PlanMap indexes active (hours_per_week > 0) plan items by (class, subject).
func PlanMap(req *domain.ScheduleRequest) map[PlanKey]PlanInfo {
	m := make(map[PlanKey]PlanInfo, len(req.Plan))
	for _, p := range req.Plan {
		if p.HoursPerWeek <= 0 {
			continue
		}
		m[PlanKey{p.ClassID, p.SubjectID}] = PlanInfo{Hours: p.HoursPerWeek, TeacherID: p.TeacherID}
	}
	return m
}
