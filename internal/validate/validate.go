// Package validate implements the preprocessor: it rejects ill-formed
// teaching plans before any solving is attempted, checking referential
// integrity, qualification, and weekly-hour budgets.
package validate

import (
	"fmt"

	"schoolscheduler/internal/domain"
)

// MaxWeeklySlots is the absolute per-teacher and per-class weekly budget.
const MaxWeeklySlots = 40

// Plan validates req against invariants 1-6 and returns one human-readable
// message per violation, substituting class/subject/teacher display names
// from lookup maps. An empty plan yields a single message. A nil/empty
// result means the plan is valid.
func Plan(req *domain.ScheduleRequest) []string {
	var errs []string

	lookups := domain.BuildLookups(req)
	teacherIsPrimary := make(map[string]bool, len(req.Teachers))
	for _, t := range req.Teachers {
		teacherIsPrimary[t.ID] = t.IsPrimary
	}

	active := make([]domain.PlanItem, 0, len(req.Plan))
	for _, p := range req.Plan {
		if p.HoursPerWeek != 0 {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return []string{"Plan is empty: there is nothing to schedule"}
	}

	seen := make(map[planKey]struct{})
	teacherLoads := make(map[string]int)
	classLoads := make(map[string]int)

	for _, p := range req.Plan {
		className := lookupOr(lookups.ClassNames, p.ClassID)
		subjectName := lookupOr(lookups.SubjectNames, p.SubjectID)

		if p.HoursPerWeek < 0 {
			errs = append(errs, fmt.Sprintf("Class %q, subject %q: negative hours (%d)", className, subjectName, p.HoursPerWeek))
			continue
		}
		if p.HoursPerWeek == 0 {
			continue
		}
		if _, ok := lookups.Subjects[p.SubjectID]; !ok {
			errs = append(errs, fmt.Sprintf("Class %q: unknown subject (id %s)", className, p.SubjectID))
			continue
		}
		if _, ok := lookups.Classes[p.ClassID]; !ok {
			errs = append(errs, fmt.Sprintf("Subject %q: unknown class (id %s)", subjectName, p.ClassID))
			continue
		}
		teacher, ok := lookups.Teachers[p.TeacherID]
		if !ok {
			if p.TeacherID == "" {
				errs = append(errs, fmt.Sprintf("Class %q, subject %q: no teacher assigned", className, subjectName))
			} else {
				errs = append(errs, fmt.Sprintf("Class %q, subject %q: unknown teacher (id %s)", className, subjectName, p.TeacherID))
			}
			continue
		}

		isPrimaryClass := domain.IsPrimary(className)
		canTeach := teacher.TeachesSubject(p.SubjectID) || (teacherIsPrimary[p.TeacherID] && isPrimaryClass)
		if !canTeach {
			errs = append(errs, fmt.Sprintf("Class %q, subject %q: teacher %s does not teach this subject", className, subjectName, teacher.Name))
			continue
		}

		key := planKey{p.ClassID, p.SubjectID}
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Sprintf("Class %q, subject %q: duplicate plan entry", className, subjectName))
			continue
		}
		seen[key] = struct{}{}

		teacherLoads[p.TeacherID] += p.HoursPerWeek
		classLoads[p.ClassID] += p.HoursPerWeek
	}

	for _, t := range req.Teachers {
		load := teacherLoads[t.ID]
		available := MaxWeeklySlots - t.BlockedCount()
		switch {
		case load > available:
			errs = append(errs, fmt.Sprintf("Teacher %s has %d hours/week, but only %d slots are available given their schedule", t.Name, load, available))
		case load > MaxWeeklySlots:
			errs = append(errs, fmt.Sprintf("Teacher %s has %d hours/week (absolute maximum %d)", t.Name, load, MaxWeeklySlots))
		}
	}

	for classID, load := range classLoads {
		if load > MaxWeeklySlots {
			errs = append(errs, fmt.Sprintf("Class %s has %d lessons/week (maximum %d)", lookupOr(lookups.ClassNames, classID), load, MaxWeeklySlots))
		}
	}

	return errs
}

type planKey struct {
	ClassID   string
	SubjectID string
}

func lookupOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("id:%s", id)
}
