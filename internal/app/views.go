package app

import (
	"context"
	"time"

	"github.com/sandeepkv93/taskwise/internal/analytics"
	"github.com/sandeepkv93/taskwise/internal/dayplan"
	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/reminder"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
)

func (s *Service) Analytics(ctx context.Context) (analytics.Report, error) {
	tasks, err := s.allTasks(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.NewCalculator(tasks, s.now()).Report(), nil
}

func (s *Service) DayPlan(ctx context.Context, date time.Time) (dayplan.Plan, error) {
	b, err := s.dayBuilder(ctx)
	if err != nil {
		return dayplan.Plan{}, err
	}
	return b.Plan(date), nil
}

func (s *Service) WeekOverview(ctx context.Context) ([]dayplan.DaySummary, error) {
	b, err := s.dayBuilder(ctx)
	if err != nil {
		return nil, err
	}
	return b.WeeklySchedule(), nil
}

func (s *Service) dayBuilder(ctx context.Context) (*dayplan.Builder, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.allTasks(ctx)
	if err != nil {
		return nil, err
	}
	return dayplan.NewBuilder(tasks, settings.WorkSchedule, s.now()), nil
}

// Timeline is the persisted plan from today on, in start order, with breaks
// when break reminders are enabled.
func (s *Service) Timeline(ctx context.Context) ([]scheduler.ScheduledTask, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.allTasks(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today()
	plan := make([]scheduler.ScheduledTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed || !t.Scheduled || t.ScheduledDate == nil || t.ScheduledTime == nil {
			continue
		}
		if t.ScheduledDate.Before(today) {
			continue
		}
		plan = append(plan, scheduler.ScheduledTask{Task: t, Confidence: 100, Conflicts: []string{}})
	}
	plan = sortByStart(plan)
	if settings.Notifications.BreakReminders {
		plan = s.withBreaks(plan, settings.Preferences())
	}
	return plan, nil
}

// Reminders lists the upcoming reminder events for the persisted plan.
func (s *Service) Reminders(ctx context.Context) ([]reminder.Event, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := s.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	return reminder.EventsForPlan(plan, settings, s.now()), nil
}

// Snapshot is everything a dashboard renders after a change.
type Snapshot struct {
	Today     dayplan.Plan         `json:"today"`
	Week      []dayplan.DaySummary `json:"week"`
	Report    analytics.Report     `json:"report"`
	Reminders []reminder.Event     `json:"reminders"`
	Stats     OptimizationStats    `json:"stats"`
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tasks, err := s.allTasks(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	events, err := s.Reminders(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	now := s.now()
	b := dayplan.NewBuilder(tasks, settings.WorkSchedule, now)
	return Snapshot{
		Today:     b.Plan(model.DateOf(now)),
		Week:      b.WeeklySchedule(),
		Report:    analytics.NewCalculator(tasks, now).Report(),
		Reminders: events,
		Stats:     stats,
	}, nil
}
