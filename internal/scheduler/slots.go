package scheduler

import (
	"slices"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// SlotMinutes is the nominal length of one bookable slot.
const SlotMinutes = 60

type SlotType string

const (
	SlotWork  SlotType = "work"
	SlotBreak SlotType = "break"
	SlotLunch SlotType = "lunch"
)

type TimeSlot struct {
	Start       model.Clock       `json:"start"`
	End         model.Clock       `json:"end"`
	Available   bool              `json:"available"`
	EnergyLevel model.EnergyLevel `json:"energyLevel"`
	Type        SlotType          `json:"type"`
}

type energyPattern struct {
	peak   int
	good   []int
	medium []int
}

var energyPatterns = map[model.EnergyType]energyPattern{
	model.EnergyTypeMorning:   {peak: 9, good: []int{8, 10, 11}, medium: []int{7, 12, 13}},
	model.EnergyTypeAfternoon: {peak: 14, good: []int{13, 15, 16}, medium: []int{11, 12, 17}},
	model.EnergyTypeEvening:   {peak: 19, good: []int{18, 20}, medium: []int{17, 21}},
	model.EnergyTypeFlexible:  {peak: 10, good: []int{9, 11, 14, 15}, medium: []int{8, 12, 13, 16, 17}},
}

// EnergyAt labels an hour of the day for the given archetype. Unknown
// archetypes fall back to flexible.
func EnergyAt(energyType model.EnergyType, hour int) model.EnergyLevel {
	p, ok := energyPatterns[energyType]
	if !ok {
		p = energyPatterns[model.EnergyTypeFlexible]
	}
	switch {
	case hour == p.peak, slices.Contains(p.good, hour):
		return model.EnergyHigh
	case slices.Contains(p.medium, hour):
		return model.EnergyMedium
	default:
		return model.EnergyLow
	}
}

// GenerateTimeSlots returns one hourly slot per hour in [start hour, end hour).
// The date does not influence the grid; it is accepted so callers can build
// one grid per calendar day.
func GenerateTimeSlots(_ time.Time, prefs model.Preferences) []TimeSlot {
	startHour := prefs.WorkStartTime.Hour()
	endHour := prefs.WorkEndTime.Hour()
	if endHour <= startHour {
		return []TimeSlot{}
	}

	lunchFrom := prefs.LunchStart.Hour()
	lunchTo := lunchFrom + ceilDiv(prefs.LunchDuration, 60)

	slots := make([]TimeSlot, 0, endHour-startHour)
	for hour := startHour; hour < endHour; hour++ {
		start := model.NewClock(hour, 0)
		end := start.Add(SlotMinutes)
		if prefs.LunchBreak && hour >= lunchFrom && hour < lunchTo {
			slots = append(slots, TimeSlot{
				Start:       start,
				End:         end,
				Available:   false,
				EnergyLevel: model.EnergyLow,
				Type:        SlotLunch,
			})
			continue
		}
		slots = append(slots, TimeSlot{
			Start:       start,
			End:         end,
			Available:   true,
			EnergyLevel: EnergyAt(prefs.EnergyType, hour),
			Type:        SlotWork,
		})
	}
	return slots
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
