// Package postprocess lifts lessons out of period zero after a solve.
// It never relaxes a hard constraint already satisfied by the input
// schedule.
package postprocess

import "schoolscheduler/internal/domain"

// OptimizePeriodZero moves every period-zero lesson taught by a teacher
// who does not prefer period zero to the first later period (ascending)
// that leaves neither the teacher nor the class double-booked and is not
// blocked in the teacher's availability. Lessons
// that cannot be moved stay in place. The input schedule is not mutated;
// a new slice is returned.
func OptimizePeriodZero(req *domain.ScheduleRequest, schedule []domain.Lesson, periods []int) []domain.Lesson {
	prefersZero := make(map[string]bool, len(req.Teachers))
	teachers := make(map[string]domain.Teacher, len(req.Teachers))
	for _, t := range req.Teachers {
		prefersZero[t.ID] = t.PrefersPeriodZero
		teachers[t.ID] = t
	}

	out := make([]domain.Lesson, len(schedule))
	copy(out, schedule)

	candidatePeriods := make([]int, 0, len(periods))
	for _, p := range periods {
		if p != 0 {
			candidatePeriods = append(candidatePeriods, p)
		}
	}
	sortInts(candidatePeriods)

	for i, l := range out {
		if l.Period != 0 || prefersZero[l.TeacherID] {
			continue
		}
		for _, p := range candidatePeriods {
			if teachers[l.TeacherID].Blocked(l.Day, p) {
				continue
			}
			if CanMoveLesson(out, i, l.Day, p) {
				out[i].Period = p
				break
			}
		}
	}
	return out
}

// CanMoveLesson reports whether the lesson at index i may move to
// (day, period) without colliding with any other lesson's teacher or
// class at that slot.
func CanMoveLesson(schedule []domain.Lesson, i int, day domain.Day, period int) bool {
	moving := schedule[i]
	for j, other := range schedule {
		if j == i {
			continue
		}
		if other.Day != day || other.Period != period {
			continue
		}
		if other.TeacherID == moving.TeacherID || other.ClassID == moving.ClassID {
			return false
		}
	}
	return true
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
