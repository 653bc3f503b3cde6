// Package scheduler places tasks into hourly slots across a week.
//
// Every entry point is synchronous and deterministic for a fixed clock: the
// slot grid is rebuilt on each call and discarded afterwards.
package scheduler

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// HorizonDays is the number of calendar days ScheduleWeek considers.
const HorizonDays = 7

// AcceptConfidence is the confidence a slot must strictly exceed to be used.
const AcceptConfidence = 50

type Scheduler struct {
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Scheduler)

// WithClock fixes the reference time used for deadlines and defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the calendar date of the scheduler clock.
func (s *Scheduler) Today() time.Time {
	return model.DateOf(s.now())
}

type ScheduledTask struct {
	model.Task
	Confidence float64  `json:"confidence"`
	Conflicts  []string `json:"conflicts"`
}

// Date and Time dereference the placement; they are always set for a
// ScheduledTask produced by this package.
func (t ScheduledTask) Date() time.Time {
	if t.ScheduledDate == nil {
		return time.Time{}
	}
	return *t.ScheduledDate
}

func (t ScheduledTask) Time() model.Clock {
	if t.ScheduledTime == nil {
		return 0
	}
	return *t.ScheduledTime
}

type SchedulingResult struct {
	ScheduledTasks   []ScheduledTask `json:"scheduledTasks"`
	UnscheduledTasks []model.Task    `json:"unscheduledTasks"`
	Suggestions      []string        `json:"suggestions"`
	Conflicts        []string        `json:"conflicts"`
}

func newResult() SchedulingResult {
	return SchedulingResult{
		ScheduledTasks:   []ScheduledTask{},
		UnscheduledTasks: []model.Task{},
		Suggestions:      []string{},
		Conflicts:        []string{},
	}
}

// SortByUrgency returns a copy of tasks ordered by descending urgency.
// Equal urgencies keep their input order.
func (s *Scheduler) SortByUrgency(tasks []model.Task) []model.Task {
	type scored struct {
		task    model.Task
		urgency float64
	}
	items := make([]scored, len(tasks))
	for i, t := range tasks {
		items[i] = scored{task: t, urgency: s.CalculateUrgency(t)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].urgency > items[j].urgency
	})
	out := make([]model.Task, len(items))
	for i, it := range items {
		out[i] = it.task
	}
	return out
}

// ScheduleWeek greedily places tasks in urgency order over seven days from
// startDate. Each task takes the first day whose best slot clears
// AcceptConfidence; placed slots are consumed for later tasks. There is no
// backtracking.
func (s *Scheduler) ScheduleWeek(tasks []model.Task, prefs model.Preferences, startDate time.Time) SchedulingResult {
	result := newResult()
	start := model.DateOf(startDate)

	days := make([]time.Time, HorizonDays)
	grid := make([][]TimeSlot, HorizonDays)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
		grid[i] = GenerateTimeSlots(days[i], prefs)
	}

	for _, task := range s.SortByUrgency(tasks) {
		placed := false
		for i, day := range days {
			match, ok := s.FindBestSlot(task, grid[i], prefs)
			if !ok || match.Confidence <= AcceptConfidence {
				continue
			}
			grid[i][match.Index].Available = false

			st := ScheduledTask{Task: task.Clone(), Confidence: match.Confidence, Conflicts: []string{}}
			st.Place(day, match.Slot.Start)
			result.ScheduledTasks = append(result.ScheduledTasks, st)

			s.logger.Debug("task placed",
				zap.String("task_id", task.ID),
				zap.String("date", model.DateKey(day)),
				zap.String("time", match.Slot.Start.String()),
				zap.Float64("confidence", match.Confidence),
			)
			placed = true
			break
		}
		if !placed {
			result.UnscheduledTasks = append(result.UnscheduledTasks, task.Clone())
			s.logger.Debug("task left unscheduled", zap.String("task_id", task.ID), zap.Int("duration", task.Duration))
		}
	}

	result.Suggestions = GenerateSuggestions(result, prefs)
	return result
}
