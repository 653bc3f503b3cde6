package scheduler

import (
	"math"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

var priorityWeight = map[model.Priority]float64{
	model.PriorityHigh:   10,
	model.PriorityMedium: 5,
	model.PriorityLow:    1,
}

// CalculateUrgency combines priority weight with a deadline bonus of
// 10/daysToDeadline, where daysToDeadline is at least 1.
func (s *Scheduler) CalculateUrgency(task model.Task) float64 {
	urgency := priorityWeight[task.Priority]
	if days, ok := daysToDeadline(task, s.now()); ok {
		urgency += 10 / math.Max(1, days)
	}
	return urgency
}

// daysToDeadline is the ceiling of the remaining days; it may be zero or
// negative for overdue tasks.
func daysToDeadline(task model.Task, now time.Time) (float64, bool) {
	if task.Deadline == nil || task.Deadline.IsZero() {
		return 0, false
	}
	return math.Ceil(float64(task.Deadline.Sub(now)) / float64(24*time.Hour)), true
}
