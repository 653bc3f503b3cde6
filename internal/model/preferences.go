package model

import (
	"errors"
)

var (
	ErrInvalidEnergyType      = errors.New("model: invalid energy type")
	ErrInvalidSchedulingStyle = errors.New("model: invalid scheduling style")
)

type EnergyType string

const (
	EnergyTypeMorning   EnergyType = "morning"
	EnergyTypeAfternoon EnergyType = "afternoon"
	EnergyTypeEvening   EnergyType = "evening"
	EnergyTypeFlexible  EnergyType = "flexible"
)

func (e EnergyType) IsValid() bool {
	switch e {
	case EnergyTypeMorning, EnergyTypeAfternoon, EnergyTypeEvening, EnergyTypeFlexible:
		return true
	default:
		return false
	}
}

// SchedulingStyle is carried through the engine but does not change placement.
type SchedulingStyle string

const (
	StyleAggressive SchedulingStyle = "aggressive"
	StyleBalanced   SchedulingStyle = "balanced"
	StyleRelaxed    SchedulingStyle = "relaxed"
	StyleCustom     SchedulingStyle = "custom"
)

func (s SchedulingStyle) IsValid() bool {
	switch s {
	case StyleAggressive, StyleBalanced, StyleRelaxed, StyleCustom:
		return true
	default:
		return false
	}
}

// Preferences is the per-run scheduling configuration. It is treated as a
// value and never mutated by the engine.
type Preferences struct {
	EnergyType      EnergyType      `json:"energyType" yaml:"energyType" validate:"required,oneof=morning afternoon evening flexible"`
	WorkStartTime   Clock           `json:"workStartTime" yaml:"workStartTime"`
	WorkEndTime     Clock           `json:"workEndTime" yaml:"workEndTime"`
	BreakDuration   int             `json:"breakDuration" yaml:"breakDuration" validate:"gte=0"`
	LunchBreak      bool            `json:"lunchBreak" yaml:"lunchBreak"`
	LunchStart      Clock           `json:"lunchStart" yaml:"lunchStart"`
	LunchDuration   int             `json:"lunchDuration" yaml:"lunchDuration" validate:"gte=0"`
	SchedulingStyle SchedulingStyle `json:"schedulingStyle" yaml:"schedulingStyle" validate:"required,oneof=aggressive balanced relaxed custom"`
	BreakFrequency  int             `json:"breakFrequency" yaml:"breakFrequency" validate:"gte=0"`
}

// Validate rejects unparseable input only. A work window that is empty or
// fully consumed by lunch is legal and simply yields no usable slots.
func (p Preferences) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	clocks := []struct {
		name string
		v    Clock
	}{
		{"WorkStartTime", p.WorkStartTime},
		{"WorkEndTime", p.WorkEndTime},
		{"LunchStart", p.LunchStart},
	}
	for _, c := range clocks {
		if !c.v.IsValid() {
			return &InvalidInputError{Field: c.name, Reason: "time of day out of range", Err: ErrInvalidClock}
		}
	}
	return nil
}

type WorkSchedule struct {
	StartTime     Clock `json:"startTime" yaml:"startTime"`
	EndTime       Clock `json:"endTime" yaml:"endTime"`
	BreakDuration int   `json:"breakDuration" yaml:"breakDuration"`
	LunchBreak    bool  `json:"lunchBreak" yaml:"lunchBreak"`
	LunchStart    Clock `json:"lunchStart" yaml:"lunchStart"`
	LunchDuration int   `json:"lunchDuration" yaml:"lunchDuration"`
}

// WorkDayMinutes is the length of the work window minus lunch.
func (w WorkSchedule) WorkDayMinutes() int {
	total := int(w.EndTime) - int(w.StartTime)
	if w.LunchBreak {
		total -= w.LunchDuration
	}
	return total
}

type AIPreferences struct {
	EnergyPattern   EnergyType      `json:"energyPattern" yaml:"energyPattern"`
	SchedulingStyle SchedulingStyle `json:"schedulingStyle" yaml:"schedulingStyle"`
	BreakFrequency  int             `json:"breakFrequency" yaml:"breakFrequency"`
}

func DefaultWorkSchedule() WorkSchedule {
	return WorkSchedule{
		StartTime:     NewClock(9, 0),
		EndTime:       NewClock(17, 0),
		BreakDuration: 15,
		LunchBreak:    true,
		LunchStart:    NewClock(12, 0),
		LunchDuration: 60,
	}
}

func DefaultAIPreferences() AIPreferences {
	return AIPreferences{
		EnergyPattern:   EnergyTypeMorning,
		SchedulingStyle: StyleBalanced,
		BreakFrequency:  90,
	}
}

// NewPreferences flattens the two settings groups into scheduling preferences.
func NewPreferences(ws WorkSchedule, ai AIPreferences) Preferences {
	return Preferences{
		EnergyType:      ai.EnergyPattern,
		WorkStartTime:   ws.StartTime,
		WorkEndTime:     ws.EndTime,
		BreakDuration:   ws.BreakDuration,
		LunchBreak:      ws.LunchBreak,
		LunchStart:      ws.LunchStart,
		LunchDuration:   ws.LunchDuration,
		SchedulingStyle: ai.SchedulingStyle,
		BreakFrequency:  ai.BreakFrequency,
	}
}

func DefaultPreferences() Preferences {
	return NewPreferences(DefaultWorkSchedule(), DefaultAIPreferences())
}

// WorkSchedule returns the work-window half of the preferences.
func (p Preferences) WorkSchedule() WorkSchedule {
	return WorkSchedule{
		StartTime:     p.WorkStartTime,
		EndTime:       p.WorkEndTime,
		BreakDuration: p.BreakDuration,
		LunchBreak:    p.LunchBreak,
		LunchStart:    p.LunchStart,
		LunchDuration: p.LunchDuration,
	}
}
