package risk

import (
	"math"
	"time"

	"github.com/sefindigital/signing-engine/internal/domain/entity"
)

// Risk level constants
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// accountabilityWindowDays is the statutory window for rendering accounts on
// an expense advance, measured from process creation.
const accountabilityWindowDays = 90

// Factors breaks the composite score into its four capped components.
type Factors struct {
	ValueDeviation int `json:"value_deviation"` // max 40
	SLAUrgency     int `json:"sla_urgency"`     // max 30
	TimePending    int `json:"time_pending"`    // max 20
	HistoricalRisk int `json:"historical_risk"` // max 10
}

// Assessment is the result of scoring a single task.
type Assessment struct {
	Score   int     `json:"score"`
	Level   string  `json:"level"`
	Factors Factors `json:"factors"`
}

// Score computes the composite risk assessment for a task. populationAvg is
// the average monetary value of the population the task is listed with, and
// now is the caller's clock reading. Score is pure: it performs no I/O and is
// deterministic for fixed inputs. Assessments are recomputed on every
// listing, never persisted, because the time-pending factor decays in real
// time.
func Score(task *entity.SigningTask, populationAvg float64, now time.Time) Assessment {
	f := Factors{
		ValueDeviation: valueDeviation(task.Value, populationAvg),
		SLAUrgency:     slaUrgency(task.ProcessCreatedAt, now),
		TimePending:    timePending(task.CreatedAt, now),
		HistoricalRisk: historicalRisk(task.Value),
	}

	total := f.ValueDeviation + f.SLAUrgency + f.TimePending + f.HistoricalRisk
	if total > 100 {
		total = 100
	}

	return Assessment{
		Score:   total,
		Level:   levelFor(total),
		Factors: f,
	}
}

// valueDeviation scores how far the task value strays from the population
// average, capped at 40.
func valueDeviation(value, avg float64) int {
	if avg <= 0 || value <= 0 {
		return 0
	}
	deviation := int(math.Round(math.Abs(value-avg) / avg * 40))
	if deviation > 40 {
		return 40
	}
	return deviation
}

// slaUrgency scores proximity to the end of the 90-day accountability window,
// measured from the process creation date.
func slaUrgency(processCreatedAt, now time.Time) int {
	daysElapsed := int(now.Sub(processCreatedAt).Hours() / 24)
	daysRemaining := accountabilityWindowDays - daysElapsed

	switch {
	case daysRemaining < 7:
		return 30
	case daysRemaining < 15:
		return 20
	case daysRemaining < 30:
		return 10
	default:
		return 0
	}
}

// timePending scores how long the task itself has sat unsigned.
func timePending(taskCreatedAt, now time.Time) int {
	hours := now.Sub(taskCreatedAt).Hours()

	switch {
	case hours > 72:
		return 20
	case hours > 48:
		return 15
	case hours > 24:
		return 10
	case hours > 8:
		return 5
	default:
		return 0
	}
}

// historicalRisk adds a flat bonus for high monetary values. The thresholds
// are absolute, independent of the population average.
func historicalRisk(value float64) int {
	score := 0
	if value > 10000 {
		score += 5
	}
	if value > 14000 {
		score += 5
	}
	return score
}

func levelFor(score int) string {
	switch {
	case score > 75:
		return LevelCritical
	case score > 50:
		return LevelHigh
	case score > 25:
		return LevelMedium
	default:
		return LevelLow
	}
}
