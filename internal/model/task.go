package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrInvalidEnergy   = errors.New("model: invalid task energy")
	ErrInvalidDuration = errors.New("model: task duration must be positive")
	ErrInvalidSchedule = errors.New("model: scheduled task requires scheduled time and date")
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "High"
	EnergyMedium EnergyLevel = "Medium"
	EnergyLow    EnergyLevel = "Low"
)

func (e EnergyLevel) IsValid() bool {
	switch e {
	case EnergyHigh, EnergyMedium, EnergyLow:
		return true
	default:
		return false
	}
}

// Category is open to user extension; the built-in ones are listed below.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryHealth   Category = "Health"
	CategoryLearning Category = "Learning"
)

var BuiltinCategories = []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryLearning}

var categoryCaser = cases.Title(language.English)

// NormalizeCategory trims and title-cases a user supplied category name so
// "work" and "WORK" both map to the built-in Work category.
func NormalizeCategory(raw string) Category {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return ""
	}
	return Category(categoryCaser.String(name))
}

type Task struct {
	ID            string      `json:"id" yaml:"id" validate:"required"`
	Title         string      `json:"title" yaml:"title" validate:"required"`
	Description   string      `json:"description,omitempty" yaml:"description,omitempty"`
	Category      Category    `json:"category" yaml:"category" validate:"required"`
	Priority      Priority    `json:"priority" yaml:"priority" validate:"required,oneof=High Medium Low"`
	Duration      int         `json:"duration" yaml:"duration" validate:"gt=0"`
	Deadline      *time.Time  `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	EnergyLevel   EnergyLevel `json:"energyLevel" yaml:"energyLevel" validate:"required,oneof=High Medium Low"`
	Scheduled     bool        `json:"scheduled" yaml:"scheduled"`
	ScheduledTime *Clock      `json:"scheduledTime,omitempty" yaml:"scheduledTime,omitempty"`
	ScheduledDate *time.Time  `json:"scheduledDate,omitempty" yaml:"scheduledDate,omitempty"`
	Completed     bool        `json:"completed" yaml:"completed"`
	CompletedAt   *time.Time  `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" yaml:"updatedAt"`
}

// Validate checks the task at the input boundary. Every failure is an
// *InvalidInputError.
func (t Task) Validate() error {
	if err := validateStruct(t); err != nil {
		return err
	}
	if t.Scheduled && (t.ScheduledTime == nil || t.ScheduledDate == nil) {
		return &InvalidInputError{Field: "Scheduled", Reason: "scheduled time and date must both be set", Err: ErrInvalidSchedule}
	}
	if t.ScheduledTime != nil && !t.ScheduledTime.IsValid() {
		return &InvalidInputError{Field: "ScheduledTime", Reason: fmt.Sprintf("%d minutes is outside a day", int(*t.ScheduledTime)), Err: ErrInvalidClock}
	}
	return nil
}

// Place sets the scheduling fields without touching timestamps.
func (t *Task) Place(date time.Time, at Clock) {
	d := DateOf(date)
	c := at
	t.Scheduled = true
	t.ScheduledDate = &d
	t.ScheduledTime = &c
}

// ScheduleAt marks the task as placed on the given calendar date and time.
func (t *Task) ScheduleAt(date time.Time, at Clock, now time.Time) {
	t.Place(date, at)
	t.UpdatedAt = now
}

// Complete keeps scheduling fields so history survives completion.
func (t *Task) Complete(at time.Time) {
	ts := at
	t.Completed = true
	t.CompletedAt = &ts
	t.UpdatedAt = at
}

func (t *Task) Uncomplete(at time.Time) {
	t.Completed = false
	t.CompletedAt = nil
	t.UpdatedAt = at
}

// StartsAt returns the scheduled start as a wall clock in loc, if the task
// is scheduled.
func (t Task) StartsAt(loc *time.Location) (time.Time, bool) {
	if t.ScheduledDate == nil || t.ScheduledTime == nil {
		return time.Time{}, false
	}
	return t.ScheduledTime.In(*t.ScheduledDate, loc), true
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	out := t
	out.Deadline = cloneTime(t.Deadline)
	out.ScheduledDate = cloneTime(t.ScheduledDate)
	out.CompletedAt = cloneTime(t.CompletedAt)
	if t.ScheduledTime != nil {
		c := *t.ScheduledTime
		out.ScheduledTime = &c
	}
	return out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
