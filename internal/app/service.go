// Package app is the application layer: it owns the explicit state the
// engine needs (repository, scheduler, clock, logger) and exposes the
// operations the CLI and TUI drive.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
	"github.com/sandeepkv93/taskwise/internal/storage"
	"github.com/sandeepkv93/taskwise/internal/transfer"
)

type Service struct {
	repo      storage.Repository
	sched     *scheduler.Scheduler
	transfer  *transfer.Store
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
	delay     time.Duration
	startDate *time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithIDGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

// WithOptimizeDelay sets the pause before the optimizer runs.
func WithOptimizeDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithStartDate pins the first day of scheduling instead of today.
func WithStartDate(d time.Time) Option {
	return func(s *Service) {
		day := model.DateOf(d)
		s.startDate = &day
	}
}

func WithFS(fs afero.Fs) Option {
	return func(s *Service) {
		s.transfer = transfer.NewStore(fs)
	}
}

func New(repo storage.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transfer == nil {
		s.transfer = transfer.NewStore(nil)
	}
	s.sched = scheduler.New(
		scheduler.WithClock(s.now),
		scheduler.WithLogger(s.logger.Named("scheduler")),
	)
	return s
}

func (s *Service) Scheduler() *scheduler.Scheduler { return s.sched }

// Now is the service clock.
func (s *Service) Now() time.Time { return s.now() }

func (s *Service) today() time.Time { return model.DateOf(s.now()) }

func (s *Service) start() time.Time {
	if s.startDate != nil {
		return *s.startDate
	}
	return s.today()
}

// NewTask is the user input for a task. Category is normalized before
// validation; Priority and EnergyLevel default to Medium.
type NewTask struct {
	Title       string
	Description string
	Category    string
	Priority    model.Priority
	Duration    int
	Deadline    *time.Time
	EnergyLevel model.EnergyLevel
}

func (s *Service) AddTask(ctx context.Context, in NewTask) (model.Task, error) {
	now := s.now()
	task := model.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    model.NormalizeCategory(in.Category),
		Priority:    in.Priority,
		Duration:    in.Duration,
		Deadline:    in.Deadline,
		EnergyLevel: in.EnergyLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.EnergyLevel == "" {
		task.EnergyLevel = model.EnergyMedium
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.logger.Debug("task added", zap.String("id", task.ID), zap.String("title", task.Title))
	return task, nil
}

func (s *Service) CompleteTask(ctx context.Context, id string) (model.Task, error) {
	return s.mutateTask(ctx, id, func(t *model.Task) { t.Complete(s.now()) })
}

func (s *Service) UncompleteTask(ctx context.Context, id string) (model.Task, error) {
	return s.mutateTask(ctx, id, func(t *model.Task) { t.Uncomplete(s.now()) })
}

func (s *Service) mutateTask(ctx context.Context, id string, fn func(*model.Task)) (model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	fn(&task)
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func (s *Service) Tasks(ctx context.Context, filter storage.TaskListFilter) ([]model.Task, error) {
	return s.repo.ListTasks(ctx, filter)
}

func (s *Service) allTasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// PendingTasks are incomplete tasks that have no placement yet.
func (s *Service) PendingTasks(ctx context.Context) ([]model.Task, error) {
	no := false
	return s.repo.ListTasks(ctx, storage.TaskListFilter{Completed: &no, Scheduled: &no})
}

func (s *Service) TodayTasks(ctx context.Context) ([]model.Task, error) {
	return s.repo.TodayTasks(ctx, s.today())
}

// Settings falls back to the defaults until settings are first saved.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (s *Service) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.repo.SaveSettings(ctx, settings, s.now()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Service) ExportSettings(ctx context.Context, path string) error {
	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	if err := s.transfer.Export(path, settings, s.now()); err != nil {
		return err
	}
	s.logger.Info("settings exported", zap.String("path", path))
	return nil
}

// ImportSettings saves the imported settings only when the file was
// accepted. A rejected file is reported through the result, not as an error.
func (s *Service) ImportSettings(ctx context.Context, path string) (transfer.Result, error) {
	res := s.transfer.Import(path)
	if !res.OK {
		s.logger.Warn("settings import rejected", zap.String("path", path), zap.String("reason", res.Reason))
		return res, nil
	}
	if err := s.SaveSettings(ctx, res.Settings); err != nil {
		return transfer.Result{}, err
	}
	return res, nil
}
