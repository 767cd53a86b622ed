package weather

import "math"

// Heat wave thresholds in degrees Celsius.
const (
	// HeatWaveThreshold is the daily mean that counts as a heat wave day.
	HeatWaveThreshold = 38.0
	// RoadBucklingTemp is where asphalt starts failing.
	RoadBucklingTemp = 43.0
	// extremeRunEscalation: this many consecutive days at or above the
	// buckling temperature escalates severity one extra level.
	extremeRunEscalation = 3
)

// HeatWaveSeverity classifies an ongoing heat wave.
type HeatWaveSeverity uint8

const (
	HeatNone HeatWaveSeverity = iota
	HeatModerate
	HeatSevere
	HeatExtreme
)

// Name returns the display name.
func (s HeatWaveSeverity) Name() string {
	switch s {
	case HeatModerate:
		return "moderate"
	case HeatSevere:
		return "severe"
	case HeatExtreme:
		return "extreme"
	}
	return "none"
}

// EnergyDemandMultiplier is the cooling-driven electricity surge.
func (s HeatWaveSeverity) EnergyDemandMultiplier() float32 {
	switch s {
	case HeatModerate:
		return 1.4
	case HeatSevere:
		return 1.6
	case HeatExtreme:
		return 1.8
	}
	return 1.0
}

// WaterDemandMultiplier is the consumption surge.
func (s HeatWaveSeverity) WaterDemandMultiplier() float32 {
	switch s {
	case HeatModerate:
		return 1.3
	case HeatSevere:
		return 1.45
	case HeatExtreme:
		return 1.6
	}
	return 1.0
}

// BlackoutProbability is the daily chance of a rolling blackout.
func (s HeatWaveSeverity) BlackoutProbability() float64 {
	switch s {
	case HeatModerate:
		return 0.05
	case HeatSevere:
		return 0.15
	case HeatExtreme:
		return 0.35
	}
	return 0
}

// HeatWave tracks consecutive hot days and derives severity.
type HeatWave struct {
	// ConsecutiveDays at or above the heat wave threshold.
	ConsecutiveDays int `json:"consecutive_days"`
	// ConsecutiveExtremeDays at or above the road buckling temperature.
	ConsecutiveExtremeDays int              `json:"consecutive_extreme_days"`
	Severity               HeatWaveSeverity `json:"severity"`
}

// ObserveDay feeds one day's mean temperature into the tracker. A single
// day below the threshold ends the wave.
func (h *HeatWave) ObserveDay(baseTemp float64) {
	if baseTemp < HeatWaveThreshold {
		h.ConsecutiveDays = 0
		h.ConsecutiveExtremeDays = 0
		h.Severity = HeatNone
		return
	}
	h.ConsecutiveDays++
	if baseTemp >= RoadBucklingTemp {
		h.ConsecutiveExtremeDays++
	} else {
		h.ConsecutiveExtremeDays = 0
	}

	switch {
	case h.ConsecutiveDays >= 10:
		h.Severity = HeatExtreme
	case h.ConsecutiveDays >= 6:
		h.Severity = HeatSevere
	case h.ConsecutiveDays >= 3:
		h.Severity = HeatModerate
	default:
		h.Severity = HeatNone
	}

	// Sustained buckling-grade heat escalates one extra level: three days
	// of 43C is already a severe emergency, not a moderate advisory.
	if h.ConsecutiveExtremeDays >= extremeRunEscalation && h.Severity != HeatNone && h.Severity < HeatExtreme {
		h.Severity++
	}
}

// Active reports whether a heat wave is in progress.
func (h *HeatWave) Active() bool {
	return h.Severity > HeatNone
}

// ExcessMortality is the extra daily death probability per elderly citizen
// given the current temperature, growing exponentially past the threshold.
func (h *HeatWave) ExcessMortality(temp float64) float64 {
	if !h.Active() || temp <= HeatWaveThreshold {
		return 0
	}
	p := 0.005 * math.Exp(0.15*(temp-HeatWaveThreshold))
	if p > 0.5 {
		p = 0.5
	}
	return p
}

// RoadBucklingChance is the per-day probability that any given road cell
// buckles at the current temperature.
func RoadBucklingChance(temp float64) float64 {
	if temp < RoadBucklingTemp {
		return 0
	}
	return 0.002 * (temp - RoadBucklingTemp + 1)
}
