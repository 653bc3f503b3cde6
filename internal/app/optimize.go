package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
	"github.com/sandeepkv93/taskwise/internal/storage"
)

// progressSteps is how many progress callbacks the optimize delay emits.
const progressSteps = 10

type ScheduleOptions struct {
	Start  *time.Time
	Breaks bool
}

// Preview is a scheduling pass that has not been persisted.
type Preview struct {
	Start    time.Time                  `json:"start"`
	Result   scheduler.SchedulingResult `json:"result"`
	Timeline []scheduler.ScheduledTask  `json:"timeline"`
}

// Schedule runs the week scheduler over pending tasks without saving.
func (s *Service) Schedule(ctx context.Context, opts ScheduleOptions) (Preview, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return Preview{}, err
	}
	pending, err := s.PendingTasks(ctx)
	if err != nil {
		return Preview{}, fmt.Errorf("list pending tasks: %w", err)
	}
	start := s.start()
	if opts.Start != nil {
		start = model.DateOf(*opts.Start)
	}
	prefs := settings.Preferences()
	result := s.sched.ScheduleWeek(pending, prefs, start)
	timeline := sortByStart(result.ScheduledTasks)
	if opts.Breaks {
		timeline = s.withBreaks(timeline, prefs)
	}
	return Preview{Start: start, Result: result, Timeline: timeline}, nil
}

type OptimizeOptions struct {
	// Apply persists the placements and records the run in history.
	Apply bool
	// Progress receives values in (0, 1] while the optimizer is pending.
	Progress func(float64)
}

type Outcome struct {
	Mode   scheduler.OptimizationMode  `json:"mode"`
	Result scheduler.SchedulingResult  `json:"result"`
	Record *storage.OptimizationRecord `json:"record,omitempty"`
}

// Optimize waits out the configured delay, then schedules the pending tasks
// for mode. Cancelling ctx during the delay aborts without side effects. With
// Apply set, placements are saved in one transaction and a history entry is
// recorded; a failed save records a zero entry.
func (s *Service) Optimize(ctx context.Context, mode scheduler.OptimizationMode, opts OptimizeOptions) (Outcome, error) {
	if !mode.IsValid() {
		return Outcome{}, &model.InvalidInputError{Field: "mode", Reason: fmt.Sprintf("unknown optimization mode %q", mode)}
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return Outcome{}, err
	}
	pending, err := s.PendingTasks(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("list pending tasks: %w", err)
	}
	if err := s.wait(ctx, opts.Progress); err != nil {
		return Outcome{}, err
	}

	result := s.sched.OptimizeFrom(pending, settings.Preferences(), mode, s.start())
	out := Outcome{Mode: mode, Result: result}
	if !opts.Apply {
		return out, nil
	}

	now := s.now()
	placed := make([]model.Task, 0, len(result.ScheduledTasks))
	for _, st := range result.ScheduledTasks {
		t := st.Task.Clone()
		t.UpdatedAt = now
		placed = append(placed, t)
	}
	rec := storage.OptimizationRecord{
		ID:             s.newID(),
		Mode:           string(mode),
		RanAt:          now,
		TasksOptimized: len(placed),
		Efficiency:     meanConfidence(result.ScheduledTasks),
	}

	if applyErr := s.repo.ApplyPlacements(ctx, placed); applyErr != nil {
		s.logger.Warn("persist placements failed", zap.String("mode", string(mode)), zap.Error(applyErr))
		rec.TasksOptimized, rec.Efficiency = 0, 0
		if err := s.repo.RecordOptimization(ctx, rec); err != nil {
			s.logger.Warn("record failed optimization", zap.Error(err))
		}
		return Outcome{}, fmt.Errorf("apply placements: %w", applyErr)
	}
	if err := s.repo.RecordOptimization(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("record optimization: %w", err)
	}
	s.logger.Info("optimization applied",
		zap.String("mode", string(mode)),
		zap.Int("placed", rec.TasksOptimized),
		zap.Int("unscheduled", len(result.UnscheduledTasks)),
		zap.Int("efficiency", rec.Efficiency),
	)
	out.Record = &rec
	return out, nil
}

func (s *Service) wait(ctx context.Context, progress func(float64)) error {
	if s.delay <= 0 {
		if progress != nil {
			progress(1)
		}
		return ctx.Err()
	}
	step := s.delay / progressSteps
	if step <= 0 {
		step = s.delay
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	for i := 1; i <= progressSteps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if progress != nil {
				progress(float64(i) / progressSteps)
			}
		}
	}
	return nil
}

func meanConfidence(tasks []scheduler.ScheduledTask) int {
	if len(tasks) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tasks {
		sum += t.Confidence
	}
	return int(math.Round(sum / float64(len(tasks))))
}

func (s *Service) RateOptimization(ctx context.Context, id string, rating int) error {
	if err := s.repo.RateOptimization(ctx, id, rating); err != nil {
		return fmt.Errorf("rate optimization %s: %w", id, err)
	}
	return nil
}

func (s *Service) History(ctx context.Context, filter storage.OptimizationListFilter) ([]storage.OptimizationRecord, error) {
	return s.repo.ListOptimizations(ctx, filter)
}

type OptimizationStats struct {
	TotalOptimizations int     `json:"totalOptimizations"`
	AverageEfficiency  int     `json:"averageEfficiency"`
	AverageRating      float64 `json:"averageRating"`
}

// Stats averages efficiency over all runs and rating over rated runs only.
func (s *Service) Stats(ctx context.Context) (OptimizationStats, error) {
	history, err := s.repo.ListOptimizations(ctx, storage.OptimizationListFilter{})
	if err != nil {
		return OptimizationStats{}, fmt.Errorf("list optimizations: %w", err)
	}
	return summarizeHistory(history), nil
}

func summarizeHistory(history []storage.OptimizationRecord) OptimizationStats {
	if len(history) == 0 {
		return OptimizationStats{}
	}
	effSum, ratingSum, rated := 0, 0, 0
	for _, rec := range history {
		effSum += rec.Efficiency
		if rec.UserRating != nil {
			ratingSum += *rec.UserRating
			rated++
		}
	}
	stats := OptimizationStats{
		TotalOptimizations: len(history),
		AverageEfficiency:  int(math.Round(float64(effSum) / float64(len(history)))),
	}
	if rated > 0 {
		stats.AverageRating = math.Round(float64(ratingSum)/float64(rated)*10) / 10
	}
	return stats
}

func sortByStart(tasks []scheduler.ScheduledTask) []scheduler.ScheduledTask {
	out := append([]scheduler.ScheduledTask(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].StartsAt(nil)
		b, _ := out[j].StartsAt(nil)
		return a.Before(b)
	})
	return out
}

// withBreaks inserts breaks one day at a time so no break spans midnight.
func (s *Service) withBreaks(timeline []scheduler.ScheduledTask, prefs model.Preferences) []scheduler.ScheduledTask {
	out := make([]scheduler.ScheduledTask, 0, len(timeline))
	for i := 0; i < len(timeline); {
		j := i
		for j < len(timeline) && timeline[j].Date().Equal(timeline[i].Date()) {
			j++
		}
		out = append(out, s.sched.InsertBreaks(timeline[i:j], prefs)...)
		i = j
	}
	return out
}
