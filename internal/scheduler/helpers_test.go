package scheduler

import (
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// monday is 2026-03-02, a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func fixedScheduler(now time.Time) *Scheduler {
	return New(WithClock(func() time.Time { return now }))
}

func newTask(id string, p model.Priority, e model.EnergyLevel, duration int) model.Task {
	created := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	return model.Task{
		ID:          id,
		Title:       "task " + id,
		Category:    model.CategoryWork,
		Priority:    p,
		Duration:    duration,
		EnergyLevel: e,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func withDeadline(t model.Task, d time.Time) model.Task {
	dd := model.DateOf(d)
	t.Deadline = &dd
	return t
}

func prefsFor(energy model.EnergyType, start, end string, lunch bool) model.Preferences {
	p := model.DefaultPreferences()
	p.EnergyType = energy
	p.WorkStartTime = model.MustClock(start)
	p.WorkEndTime = model.MustClock(end)
	p.LunchBreak = lunch
	return p
}
