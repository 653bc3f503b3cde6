// Package dayplan lays out a single day in half-hour slots and summarises the
// surrounding week for planning views.
package dayplan

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// SlotMinutes is the granularity of the day view.
const SlotMinutes = 30

type SlotType string

const (
	SlotWork  SlotType = "work"
	SlotLunch SlotType = "lunch"
	SlotFree  SlotType = "free"
)

type Slot struct {
	Time      model.Clock `json:"time"`
	Duration  int         `json:"duration"`
	Task      *model.Task `json:"task,omitempty"`
	Type      SlotType    `json:"type"`
	Available bool        `json:"available"`
}

type Workload string

const (
	WorkloadLight      Workload = "light"
	WorkloadModerate   Workload = "moderate"
	WorkloadHeavy      Workload = "heavy"
	WorkloadOverloaded Workload = "overloaded"
)

type DaySummary struct {
	Day            string       `json:"day"`
	Date           string       `json:"date"`
	Tasks          int          `json:"tasks"`
	Hours          float64      `json:"hours"`
	ScheduledTasks []model.Task `json:"scheduledTasks"`
	CompletionRate int          `json:"completionRate"`
}

type Builder struct {
	tasks    []model.Task
	schedule model.WorkSchedule
	now      time.Time
}

func NewBuilder(tasks []model.Task, schedule model.WorkSchedule, now time.Time) *Builder {
	return &Builder{tasks: tasks, schedule: schedule, now: now}
}

func (b *Builder) today() time.Time {
	return model.DateOf(b.now)
}

// WeekDates returns Monday through Sunday of the week containing today.
func (b *Builder) WeekDates() []time.Time {
	today := b.today()
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = monday.AddDate(0, 0, i)
	}
	return out
}

// WeeklySchedule summarises each day of the current week. Scheduled tasks
// without a date are counted on today.
func (b *Builder) WeeklySchedule() []DaySummary {
	todayKey := model.DateKey(b.today())
	out := make([]DaySummary, 0, 7)
	for _, date := range b.WeekDates() {
		key := model.DateKey(date)
		var day []model.Task
		for _, t := range b.tasks {
			if !t.Scheduled {
				continue
			}
			switch {
			case t.ScheduledDate != nil && model.DateKey(*t.ScheduledDate) == key:
				day = append(day, t)
			case t.ScheduledDate == nil && key == todayKey:
				day = append(day, t)
			}
		}
		out = append(out, summarize(date, day))
	}
	return out
}

func summarize(date time.Time, tasks []model.Task) DaySummary {
	minutes, completed := 0, 0
	for _, t := range tasks {
		minutes += t.Duration
		if t.Completed {
			completed++
		}
	}
	rate := 0
	if len(tasks) > 0 {
		rate = int(math.Round(float64(completed) / float64(len(tasks)) * 100))
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return DaySummary{
		Day:            date.Format("Mon"),
		Date:           date.Format("Jan 2"),
		Tasks:          len(tasks),
		Hours:          math.Round(float64(minutes)/60*10) / 10,
		ScheduledTasks: tasks,
		CompletionRate: rate,
	}
}

// tasksOn returns the scheduled tasks dated on date, ordered by start time.
func (b *Builder) tasksOn(date time.Time) []model.Task {
	key := model.DateKey(date)
	var out []model.Task
	for _, t := range b.tasks {
		if t.Scheduled && t.ScheduledDate != nil && model.DateKey(*t.ScheduledDate) == key {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return clockOrZero(out[i]) < clockOrZero(out[j])
	})
	return out
}

func clockOrZero(t model.Task) model.Clock {
	if t.ScheduledTime == nil {
		return 0
	}
	return *t.ScheduledTime
}

func within(at, start model.Clock, minutes int) bool {
	return int(at) >= int(start) && int(at) < int(start)+minutes
}

// DailySlots splits the working hours of date into half-hour slots. A slot
// covered by a task is work; otherwise a slot inside the lunch window is
// lunch; the rest are free.
func (b *Builder) DailySlots(date time.Time) []Slot {
	day := b.tasksOn(date)
	startHour := b.schedule.StartTime.Hour()
	endHour := b.schedule.EndTime.Hour()

	var slots []Slot
	for hour := startHour; hour < endHour; hour++ {
		for minute := 0; minute < 60; minute += SlotMinutes {
			at := model.NewClock(hour, minute)
			slot := Slot{Time: at, Duration: SlotMinutes, Type: SlotFree, Available: true}
			for i := range day {
				if day[i].ScheduledTime != nil && within(at, *day[i].ScheduledTime, day[i].Duration) {
					task := day[i].Clone()
					slot.Task = &task
					slot.Type = SlotWork
					slot.Available = false
					break
				}
			}
			if slot.Task == nil && b.schedule.LunchBreak && within(at, b.schedule.LunchStart, b.schedule.LunchDuration) {
				slot.Type = SlotLunch
				slot.Available = false
			}
			slots = append(slots, slot)
		}
	}
	if slots == nil {
		return []Slot{}
	}
	return slots
}

// AvailableSlots returns the start of each non-overlapping run of free slots
// long enough to hold duration minutes, scanning from the start of the day.
func (b *Builder) AvailableSlots(duration int, date time.Time) []Slot {
	all := b.DailySlots(date)
	need := max(1, int(math.Ceil(float64(duration)/SlotMinutes)))
	out := []Slot{}
	for i := 0; i+need <= len(all); i++ {
		fits := true
		for j := 0; j < need; j++ {
			if !all[i+j].Available {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}
		slot := all[i]
		slot.Duration = duration
		out = append(out, slot)
		i += need - 1
	}
	return out
}

func (b *Builder) Workload(date time.Time) Workload {
	total := 0
	for _, t := range b.tasksOn(date) {
		total += t.Duration
	}
	capacity := b.schedule.WorkDayMinutes()
	if capacity <= 0 {
		if total > 0 {
			return WorkloadOverloaded
		}
		return WorkloadLight
	}
	switch u := float64(total) / float64(capacity); {
	case u >= 1.0:
		return WorkloadOverloaded
	case u >= 0.8:
		return WorkloadHeavy
	case u >= 0.5:
		return WorkloadModerate
	default:
		return WorkloadLight
	}
}

// MaxSuggestions caps Suggestions.
const MaxSuggestions = 3

func (b *Builder) Suggestions(date time.Time) []string {
	var suggestions []string
	var unscheduled []model.Task
	for _, t := range b.tasks {
		if !t.Scheduled {
			unscheduled = append(unscheduled, t)
		}
	}
	free := b.AvailableSlots(60, date)

	switch b.Workload(date) {
	case WorkloadOverloaded:
		suggestions = append(suggestions,
			"Consider rescheduling some tasks to reduce workload",
			"Take regular breaks to maintain productivity")
	case WorkloadHeavy:
		suggestions = append(suggestions,
			"High workload day - prioritize most important tasks",
			"Consider shorter breaks between tasks")
	case WorkloadLight:
		if len(unscheduled) > 0 {
			suggestions = append(suggestions,
				fmt.Sprintf("%d available slots for new tasks", len(free)),
				"Good opportunity to tackle pending tasks")
		}
	case WorkloadModerate:
		suggestions = append(suggestions, "Well-balanced schedule")
		if len(free) > 2 {
			suggestions = append(suggestions, "Room for additional tasks if needed")
		}
	}

	high := 0
	for _, t := range unscheduled {
		if t.Priority == model.PriorityHigh {
			high++
		}
	}
	if high > 0 {
		suggestions = append(suggestions, fmt.Sprintf("%d high-priority tasks need scheduling", high))
	}

	switch h := b.now.Hour(); {
	case h >= 9 && h <= 11:
		suggestions = append(suggestions, "Peak energy time - good for challenging tasks")
	case h >= 14 && h <= 16:
		suggestions = append(suggestions, "Afternoon focus time - ideal for deep work")
	}

	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	if suggestions == nil {
		return []string{}
	}
	return suggestions
}

// Efficiency blends completion (60%) with how many tasks sit in hours that
// suit their energy (40%), as a 0-100 score.
func (b *Builder) Efficiency(date time.Time) int {
	day := b.tasksOn(date)
	if len(day) == 0 {
		return 0
	}
	completed, matched := 0, 0
	for _, t := range day {
		if t.Completed {
			completed++
		}
		if energyMatches(t) {
			matched++
		}
	}
	n := float64(len(day))
	return int(math.Round((float64(completed)/n*0.6 + float64(matched)/n*0.4) * 100))
}

func energyMatches(t model.Task) bool {
	if t.ScheduledTime == nil {
		return false
	}
	h := t.ScheduledTime.Hour()
	switch t.EnergyLevel {
	case model.EnergyHigh:
		return (h >= 8 && h <= 11) || (h >= 14 && h <= 16)
	case model.EnergyLow:
		return h < 8 || h > 17
	default:
		return false
	}
}

type AlertType string

const (
	AlertWorkloadWarning AlertType = "workload_warning"
	AlertTimeSlot        AlertType = "time_slot"
	AlertBreakReminder   AlertType = "break_reminder"
)

type Alert struct {
	Type        AlertType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
}

// Alerts flags a day with more than eight scheduled hours, more than three
// free hour-long gaps, or more than four busy half-hour slots.
func (b *Builder) Alerts(date time.Time) []Alert {
	alerts := []Alert{}
	if s := summarize(date, b.tasksOn(date)); s.Hours > 8 {
		alerts = append(alerts, Alert{
			Type:        AlertWorkloadWarning,
			Title:       "Heavy Workload",
			Description: fmt.Sprintf("%s hours scheduled today. Consider rescheduling some tasks.", strconv.FormatFloat(s.Hours, 'f', -1, 64)),
			Priority:    1,
		})
	}
	if free := b.AvailableSlots(60, date); len(free) > 3 {
		alerts = append(alerts, Alert{
			Type:        AlertTimeSlot,
			Title:       "Available Time Slots",
			Description: fmt.Sprintf("%d free hours available for new tasks.", len(free)),
			Priority:    2,
		})
	}
	work := 0
	for _, s := range b.DailySlots(date) {
		if s.Type == SlotWork {
			work++
		}
	}
	if work > 4 {
		alerts = append(alerts, Alert{
			Type:        AlertBreakReminder,
			Title:       "Break Reminder",
			Description: "Consider scheduling breaks between long work sessions.",
			Priority:    2,
		})
	}
	return alerts
}

// Plan is the full day view for one date.
type Plan struct {
	Date        time.Time `json:"date"`
	Slots       []Slot    `json:"slots"`
	FreeSlots   []Slot    `json:"freeSlots"`
	Workload    Workload  `json:"workload"`
	Efficiency  int       `json:"efficiency"`
	Suggestions []string  `json:"suggestions"`
	Alerts      []Alert   `json:"alerts"`
}

func (b *Builder) Plan(date time.Time) Plan {
	d := model.DateOf(date)
	return Plan{
		Date:        d,
		Slots:       b.DailySlots(d),
		FreeSlots:   b.AvailableSlots(60, d),
		Workload:    b.Workload(d),
		Efficiency:  b.Efficiency(d),
		Suggestions: b.Suggestions(d),
		Alerts:      b.Alerts(d),
	}
}
