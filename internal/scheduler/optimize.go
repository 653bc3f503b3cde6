package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskwise/internal/model"
)

type OptimizationMode string

const (
	OptimizeProductivity OptimizationMode = "productivity"
	OptimizeBalance      OptimizationMode = "balance"
	OptimizeFrontload    OptimizationMode = "frontload"
)

// balanceBreakFrequencyCap bounds break frequency in balance mode.
const balanceBreakFrequencyCap = 90

func (m OptimizationMode) IsValid() bool {
	switch m {
	case OptimizeProductivity, OptimizeBalance, OptimizeFrontload:
		return true
	default:
		return false
	}
}

func ParseOptimizationMode(raw string) (OptimizationMode, error) {
	m := OptimizationMode(strings.ToLower(strings.TrimSpace(raw)))
	if !m.IsValid() {
		return "", &model.InvalidInputError{
			Field:  "mode",
			Reason: fmt.Sprintf("unknown optimization mode %q (want productivity, balance or frontload)", raw),
		}
	}
	return m, nil
}

// Optimize schedules from today with preferences adjusted for mode.
func (s *Scheduler) Optimize(tasks []model.Task, prefs model.Preferences, mode OptimizationMode) SchedulingResult {
	return s.OptimizeFrom(tasks, prefs, mode, s.Today())
}

func (s *Scheduler) OptimizeFrom(tasks []model.Task, prefs model.Preferences, mode OptimizationMode, startDate time.Time) SchedulingResult {
	adjusted := prefs
	switch mode {
	case OptimizeProductivity:
		adjusted.SchedulingStyle = model.StyleAggressive
	case OptimizeBalance:
		adjusted.SchedulingStyle = model.StyleBalanced
		adjusted.BreakFrequency = min(prefs.BreakFrequency, balanceBreakFrequencyCap)
	case OptimizeFrontload:
		return s.ScheduleWeek(s.SortByUrgency(tasks), adjusted, startDate)
	}
	return s.ScheduleWeek(tasks, adjusted, startDate)
}
