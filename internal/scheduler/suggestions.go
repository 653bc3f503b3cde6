package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

const (
	overloadTaskCount      = 6
	morningShareThreshold  = 0.7
	longBreakFrequencyMins = 120
)

// GenerateSuggestions derives advice from a scheduling result. It depends
// only on its arguments.
func GenerateSuggestions(result SchedulingResult, prefs model.Preferences) []string {
	suggestions := []string{}

	perDay := map[string]int{}
	dates := map[string]time.Time{}
	for _, t := range result.ScheduledTasks {
		key := model.DateKey(t.Date())
		perDay[key]++
		dates[key] = t.Date()
	}
	keys := make([]string, 0, len(perDay))
	for k := range perDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if count := perDay[k]; count > overloadTaskCount {
			suggestions = append(suggestions, fmt.Sprintf("%s is overloaded with %d tasks. Consider redistributing some tasks.", dates[k].Weekday(), count))
		}
	}

	highUnscheduled := 0
	for _, t := range result.UnscheduledTasks {
		if t.Priority == model.PriorityHigh {
			highUnscheduled++
		}
	}
	if highUnscheduled > 0 {
		suggestions = append(suggestions, fmt.Sprintf("%d high-priority tasks couldn't be scheduled. Consider extending work hours or reducing task load.", highUnscheduled))
	}

	highEnergy, morning := 0, 0
	for _, t := range result.ScheduledTasks {
		if t.EnergyLevel != model.EnergyHigh {
			continue
		}
		highEnergy++
		if h := t.Time().Hour(); h >= 8 && h <= 11 {
			morning++
		}
	}
	if prefs.EnergyType == model.EnergyTypeMorning && float64(morning) < float64(highEnergy)*morningShareThreshold {
		suggestions = append(suggestions, "Consider scheduling more high-energy tasks in the morning when you're most productive.")
	}

	if prefs.BreakFrequency > longBreakFrequencyMins {
		suggestions = append(suggestions, "Your break frequency is quite long. Consider shorter, more frequent breaks for better focus.")
	}
	return suggestions
}
