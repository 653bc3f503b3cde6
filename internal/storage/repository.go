package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrInvalidRating = errors.New("storage: rating must be between 1 and 5")
)

type Repository interface {
	CreateTask(ctx context.Context, in model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)
	// TodayTasks returns tasks placed on today plus scheduled tasks without a date.
	TodayTasks(ctx context.Context, today time.Time) ([]model.Task, error)
	// ApplyPlacements persists the scheduling fields of every task atomically.
	ApplyPlacements(ctx context.Context, tasks []model.Task) error

	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, in model.Settings, at time.Time) error

	RecordOptimization(ctx context.Context, in OptimizationRecord) error
	RateOptimization(ctx context.Context, id string, rating int) error
	ListOptimizations(ctx context.Context, filter OptimizationListFilter) ([]OptimizationRecord, error)
}
