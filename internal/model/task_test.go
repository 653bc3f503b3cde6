package model

import (
	"errors"
	"testing"
	"time"
)

func validTask(now time.Time) Task {
	return Task{
		ID:          "task-1",
		Title:       "Write quarterly report",
		Category:    CategoryWork,
		Priority:    PriorityHigh,
		Duration:    60,
		EnergyLevel: EnergyHigh,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	if err := validTask(now).Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateRejectsNonPositiveDuration(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	for _, d := range []int{0, -15} {
		task := validTask(now)
		task.Duration = d
		err := task.Validate()
		if !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("duration %d: expected ErrInvalidDuration, got %v", d, err)
		}
		if !IsInvalidInput(err) {
			t.Fatalf("duration %d: expected InvalidInputError, got %T", d, err)
		}
	}
}

func TestTaskValidateInvalidEnums(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := validTask(now)
	task.Priority = Priority("Urgent")
	if err := task.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}

	task.Priority = PriorityLow
	task.EnergyLevel = EnergyLevel("Deep")
	if err := task.Validate(); !errors.Is(err, ErrInvalidEnergy) {
		t.Fatalf("expected ErrInvalidEnergy, got: %v", err)
	}
}

func TestTaskValidateScheduledRequiresTimeAndDate(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := validTask(now)
	task.Scheduled = true
	if err := task.Validate(); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}

	task.ScheduleAt(now, NewClock(10, 0), now)
	if err := task.Validate(); err != nil {
		t.Fatalf("expected scheduled task to validate, got %v", err)
	}
}

func TestTaskCompleteKeepsSchedulingFields(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := validTask(now)
	task.ScheduleAt(now, NewClock(9, 0), now)

	done := now.Add(2 * time.Hour)
	task.Complete(done)
	if !task.Completed || task.CompletedAt == nil || !task.CompletedAt.Equal(done) {
		t.Fatalf("unexpected completion state: %+v", task)
	}
	if !task.Scheduled || task.ScheduledTime == nil || *task.ScheduledTime != NewClock(9, 0) {
		t.Fatalf("scheduling fields lost on completion: %+v", task)
	}

	task.Uncomplete(done.Add(time.Minute))
	if task.Completed || task.CompletedAt != nil {
		t.Fatalf("expected uncompleted task, got %+v", task)
	}
}

func TestTaskCloneIsIndependent(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := validTask(now)
	task.ScheduleAt(now, NewClock(9, 0), now)

	clone := task.Clone()
	*clone.ScheduledTime = NewClock(15, 0)
	if *task.ScheduledTime != NewClock(9, 0) {
		t.Fatalf("clone shares scheduled time with original")
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]Category{
		"work":          CategoryWork,
		"  HEALTH ":     CategoryHealth,
		"side  project": Category("Side Project"),
		"":              "",
	}
	for in, want := range cases {
		if got := NormalizeCategory(in); got != want {
			t.Fatalf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}
