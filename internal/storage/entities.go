package storage

import (
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// OptimizationRecord is one run of the optimizer. UserRating is nil until the
// user rates the run.
type OptimizationRecord struct {
	ID             string    `json:"id"`
	Mode           string    `json:"mode"`
	RanAt          time.Time `json:"date"`
	TasksOptimized int       `json:"tasksOptimized"`
	Efficiency     int       `json:"efficiency"`
	UserRating     *int      `json:"userRating,omitempty"`
}

type TaskListFilter struct {
	Category  model.Category
	Priority  model.Priority
	Completed *bool
	Scheduled *bool
	// ScheduledOn matches the calendar date of the placement.
	ScheduledOn *time.Time
	Limit       int
	Offset      int
}

type OptimizationListFilter struct {
	Mode   string
	Limit  int
	Offset int
}
