package scheduler

import (
	"math"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// MaxScore is the score that maps to full confidence.
const MaxScore = 20

type Match struct {
	Slot       TimeSlot `json:"slot"`
	Index      int      `json:"index"`
	Score      int      `json:"score"`
	Confidence float64  `json:"confidence"`
}

// FindBestSlot scores every available work slot long enough for the task and
// returns the highest scoring one. Ties go to the earliest slot. Tasks longer
// than one slot never match.
func (s *Scheduler) FindBestSlot(task model.Task, slots []TimeSlot, _ model.Preferences) (Match, bool) {
	if task.Duration > SlotMinutes {
		return Match{}, false
	}
	best := Match{Index: -1, Score: math.MinInt}
	for i, slot := range slots {
		if !slot.Available || slot.Type != SlotWork {
			continue
		}
		score := s.scoreSlot(task, slot)
		if score > best.Score {
			best = Match{Slot: slot, Index: i, Score: score}
		}
	}
	if best.Index < 0 {
		return Match{}, false
	}
	best.Confidence = confidence(best.Score)
	return best, true
}

func (s *Scheduler) scoreSlot(task model.Task, slot TimeSlot) int {
	score := 0
	switch {
	case task.EnergyLevel == slot.EnergyLevel:
		score += 10
	case task.EnergyLevel == model.EnergyHigh && slot.EnergyLevel == model.EnergyMedium,
		task.EnergyLevel == model.EnergyMedium && slot.EnergyLevel == model.EnergyHigh:
		score += 7
	case task.EnergyLevel == model.EnergyLow:
		score += 5
	}

	if task.Priority == model.PriorityHigh && slot.EnergyLevel == model.EnergyHigh {
		score += 5
	}

	if days, ok := daysToDeadline(task, s.now()); ok {
		switch {
		case days <= 1:
			score += 8
		case days <= 3:
			score += 5
		case days <= 7:
			score += 2
		}
	}
	return score
}

func confidence(score int) float64 {
	c := float64(score) / MaxScore * 100
	return math.Max(0, math.Min(100, c))
}
