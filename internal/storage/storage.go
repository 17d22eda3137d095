// Package storage is the persistence boundary for a solved schedule:
// a place for it to land once computed. Uses the same GORM-backed
// repository shape as internal/pkg/database, with string primary keys
// generated in Go by uuid.NewString() (random v4 UUIDs).
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolscheduler/internal/domain"
)

// SavedSchedule is a persisted solve result.
type SavedSchedule struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	RequestID string `gorm:"index"`
	Strategy  string
	Status    string
	Message   string
	CreatedAt time.Time
	Lessons   []SavedLesson `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE"`
}

// SavedLesson is one lesson placement belonging to a SavedSchedule.
type SavedLesson struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	ScheduleID string `gorm:"type:uuid;index"`
	ClassID    string
	SubjectID  string
	TeacherID  string
	Day        string
	Period     int
}

// Migrate creates the storage schema. Safe to call repeatedly.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&SavedSchedule{}, &SavedLesson{})
}

// Repository persists and retrieves solve results.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a Repository backed by db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save persists result as a new SavedSchedule and returns its id.
func (r *Repository) Save(ctx context.Context, req *domain.ScheduleRequest, result domain.Result) (string, error) {
	id := uuid.NewString()
	rec := SavedSchedule{
		ID:        id,
		RequestID: req.RequestID,
		Strategy:  string(req.Strategy),
		Status:    string(result.Status),
		Message:   result.Message,
	}
	for _, l := range result.Schedule {
		rec.Lessons = append(rec.Lessons, SavedLesson{
			ID:         uuid.NewString(),
			ScheduleID: id,
			ClassID:    l.ClassID,
			SubjectID:  l.SubjectID,
			TeacherID:  l.TeacherID,
			Day:        l.Day.String(),
			Period:     l.Period,
		})
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", err
	}
	return id, nil
}

// Get loads a saved schedule by id, translating it back into a domain.Result.
func (r *Repository) Get(ctx context.Context, id string) (domain.Result, error) {
	var rec SavedSchedule
	if err := r.db.WithContext(ctx).Preload("Lessons").First(&rec, "id = ?", id).Error; err != nil {
		return domain.Result{}, err
	}
	lessons := make([]domain.Lesson, 0, len(rec.Lessons))
	for _, l := range rec.Lessons {
		day, _ := domain.ParseDay(l.Day)
		lessons = append(lessons, domain.Lesson{
			ClassID:   l.ClassID,
			SubjectID: l.SubjectID,
			TeacherID: l.TeacherID,
			Day:       day,
			Period:    l.Period,
		})
	}
	return domain.Result{
		Status:   domain.Status(rec.Status),
		Schedule: lessons,
		Message:  rec.Message,
	}, nil
}
