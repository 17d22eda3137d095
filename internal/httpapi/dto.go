// Package httpapi is the HTTP boundary: DTOs, handlers, and router
// wiring for the scheduling engine, following cmd/api/main.go's
// setupRouter shape and internal/pkg/validator for inbound validation.
package httpapi

import "schoolscheduler/internal/domain"

// TeacherDTO is the wire shape of a teacher.
type TeacherDTO struct {
	ID                string           `json:"id" binding:"required"`
	Name              string           `json:"name" binding:"required"`
	Subjects          []string         `json:"subjects"`
	IsPrimary         bool             `json:"is_primary"`
	PrefersPeriodZero bool             `json:"prefers_period_zero"`
	Availability      map[string][]int `json:"availability"` // day name -> blocked periods
}

// ClassDTO is the wire shape of a class.
type ClassDTO struct {
	ID               string   `json:"id" binding:"required"`
	Name             string   `json:"name" binding:"required"`
	ExcludedSubjects []string `json:"excluded_subjects"`
}

// SubjectDTO is the wire shape of a subject.
type SubjectDTO struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// PlanItemDTO is the wire shape of one teaching-plan entry.
type PlanItemDTO struct {
	ClassID      string `json:"class_id" binding:"required"`
	SubjectID    string `json:"subject_id" binding:"required"`
	TeacherID    string `json:"teacher_id"`
	HoursPerWeek int    `json:"hours_per_week"`
}

// SolveRequestDTO is the POST /api/v1/schedules request body.
type SolveRequestDTO struct {
	Teachers []TeacherDTO  `json:"teachers" binding:"required,dive"`
	Subjects []SubjectDTO  `json:"subjects" binding:"required,dive"`
	Classes  []ClassDTO    `json:"classes" binding:"required,dive"`
	Plan     []PlanItemDTO `json:"plan" binding:"required,dive"`

	Strategy              string  `json:"strategy"`
	TimeoutSeconds        int     `json:"timeout_seconds"`
	GeneticPopulationSize int     `json:"genetic_population_size"`
	GeneticGenerations    int     `json:"genetic_generations"`
	GeneticMutationRate   float64 `json:"genetic_mutation_rate"`
	Persist               bool    `json:"persist"`
}

// LessonDTO is the wire shape of one scheduled lesson.
type LessonDTO struct {
	ClassID   string `json:"class_id"`
	SubjectID string `json:"subject_id"`
	TeacherID string `json:"teacher_id"`
	Day       string `json:"day"`
	Period    int    `json:"period"`
}

// ResultDTO is the POST /api/v1/schedules response body.
type ResultDTO struct {
	ScheduleID string      `json:"schedule_id,omitempty"`
	Status     string      `json:"status"`
	Schedule   []LessonDTO `json:"schedule"`
	Violations []string    `json:"violations,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// toDomain converts the wire request into the domain's ScheduleRequest.
func (in SolveRequestDTO) toDomain(requestID string) *domain.ScheduleRequest {
	req := &domain.ScheduleRequest{
		RequestID:             requestID,
		Strategy:              domain.Strategy(in.Strategy),
		Timeout:               in.TimeoutSeconds,
		GeneticPopulationSize: in.GeneticPopulationSize,
		GeneticGenerations:    in.GeneticGenerations,
		GeneticMutationRate:   in.GeneticMutationRate,
	}

	for _, t := range in.Teachers {
		subjects := make(map[string]struct{}, len(t.Subjects))
		for _, s := range t.Subjects {
			subjects[s] = struct{}{}
		}
		availability := make(map[domain.Day]map[int]struct{}, len(t.Availability))
		for dayName, periods := range t.Availability {
			day, ok := domain.ParseDay(dayName)
			if !ok {
				continue
			}
			slots := make(map[int]struct{}, len(periods))
			for _, p := range periods {
				slots[p] = struct{}{}
			}
			availability[day] = slots
		}
		req.Teachers = append(req.Teachers, domain.Teacher{
			ID:                t.ID,
			Name:              t.Name,
			Subjects:          subjects,
			IsPrimary:         t.IsPrimary,
			PrefersPeriodZero: t.PrefersPeriodZero,
			Availability:      availability,
		})
	}

	for _, s := range in.Subjects {
		req.Subjects = append(req.Subjects, domain.Subject{ID: s.ID, Name: s.Name})
	}

	for _, c := range in.Classes {
		excluded := make(map[string]struct{}, len(c.ExcludedSubjects))
		for _, s := range c.ExcludedSubjects {
			excluded[s] = struct{}{}
		}
		req.Classes = append(req.Classes, domain.Class{ID: c.ID, Name: c.Name, ExcludedSubjects: excluded})
	}

	for _, p := range in.Plan {
		req.Plan = append(req.Plan, domain.PlanItem{
			ClassID:      p.ClassID,
			SubjectID:    p.SubjectID,
			TeacherID:    p.TeacherID,
			HoursPerWeek: p.HoursPerWeek,
		})
	}

	return req
}

func fromDomain(result domain.Result) ResultDTO {
	out := ResultDTO{
		Status:     string(result.Status),
		Violations: result.Violations,
		Message:    result.Message,
	}
	out.Schedule = make([]LessonDTO, 0, len(result.Schedule))
	for _, l := range result.Schedule {
		out.Schedule = append(out.Schedule, LessonDTO{
			ClassID:   l.ClassID,
			SubjectID: l.SubjectID,
			TeacherID: l.TeacherID,
			Day:       l.Day.String(),
			Period:    l.Period,
		})
	}
	return out
}
