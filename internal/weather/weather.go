package weather

import "math"

// ClimateZone sets the seasonal temperature envelope and precipitation odds.
type ClimateZone uint8

const (
	ClimateTemperate ClimateZone = iota
	ClimateContinental
	ClimateMediterranean
	ClimateDesert
	ClimateTropical
	ClimateOceanic
	ClimateSubarctic
)

// seasonalBase returns the mean daily temperature for the zone and season,
// in degrees Celsius.
func (z ClimateZone) seasonalBase(s Season) float64 {
	table := [7][4]float64{
		ClimateTemperate:     {12, 24, 13, 2},
		ClimateContinental:   {10, 26, 9, -8},
		ClimateMediterranean: {16, 30, 19, 9},
		ClimateDesert:        {24, 39, 26, 12},
		ClimateTropical:      {28, 30, 28, 26},
		ClimateOceanic:       {11, 18, 12, 5},
		ClimateSubarctic:     {2, 14, 1, -18},
	}
	return table[z][s]
}

// rainChance is the daily precipitation probability per zone and season.
func (z ClimateZone) rainChance(s Season) float64 {
	table := [7][4]float64{
		ClimateTemperate:     {0.35, 0.25, 0.35, 0.30},
		ClimateContinental:   {0.30, 0.28, 0.28, 0.25},
		ClimateMediterranean: {0.20, 0.05, 0.25, 0.35},
		ClimateDesert:        {0.05, 0.02, 0.04, 0.08},
		ClimateTropical:      {0.45, 0.60, 0.50, 0.30},
		ClimateOceanic:       {0.45, 0.35, 0.50, 0.55},
		ClimateSubarctic:     {0.25, 0.30, 0.30, 0.35},
	}
	return table[z][s]
}

// Condition is the sky state for the current day.
type Condition uint8

const (
	CondSunny Condition = iota
	CondPartlyCloudy
	CondOvercast
	CondRain
	CondHeavyRain
	CondSnow
	CondStorm
)

// Name returns the display name.
func (c Condition) Name() string {
	switch c {
	case CondSunny:
		return "sunny"
	case CondPartlyCloudy:
		return "partly cloudy"
	case CondOvercast:
		return "overcast"
	case CondRain:
		return "rain"
	case CondHeavyRain:
		return "heavy rain"
	case CondSnow:
		return "snow"
	case CondStorm:
		return "storm"
	}
	return "sunny"
}

// MovementModifier slows citizen movement in bad weather.
func (c Condition) MovementModifier() float32 {
	switch c {
	case CondRain:
		return 0.85
	case CondHeavyRain:
		return 0.70
	case CondSnow:
		return 0.65
	case CondStorm:
		return 0.55
	}
	return 1.0
}

// ConstructionModifier slows building construction; storms halt it.
func (c Condition) ConstructionModifier() float32 {
	switch c {
	case CondRain:
		return 0.6
	case CondHeavyRain, CondSnow:
		return 0.4
	case CondStorm:
		return 0
	}
	return 1.0
}

// HappinessModifier is the per-condition mood adjustment.
func (c Condition) HappinessModifier() float32 {
	switch c {
	case CondSunny:
		return 2
	case CondRain:
		return -2
	case CondHeavyRain:
		return -3
	case CondSnow:
		return -1
	case CondStorm:
		return -5
	}
	return 0
}

// RainfallHistoryDays is the rolling precipitation window.
const RainfallHistoryDays = 30

// ColdSnapThreshold is the daily mean that counts as a cold snap day.
const ColdSnapThreshold = -10.0

// tempSmoothing is the hourly fraction closed toward the diurnal target, so
// the felt temperature lags the curve instead of jumping.
const tempSmoothing = 0.3

// Weather is the daily weather resource, re-rolled at each day boundary.
type Weather struct {
	Zone      ClimateZone `json:"zone"`
	Seed      uint64      `json:"seed"`
	Condition Condition   `json:"condition"`
	// BaseTemp is today's mean; Temperature is the current diurnal value.
	BaseTemp    float64 `json:"base_temp"`
	Temperature float64 `json:"temperature"`

	// Rainfall holds the last 30 days of precipitation in millimeters,
	// most recent last.
	Rainfall [RainfallHistoryDays]float64 `json:"rainfall"`

	HeatWave HeatWave `json:"heat_wave"`
	// ColdSnap flags a day whose mean sits at or below the snap threshold.
	ColdSnap bool `json:"cold_snap"`
}

// New creates a weather resource for a zone; the first day must be rolled
// before use.
func New(zone ClimateZone, seed uint64) *Weather {
	return &Weather{Zone: zone, Seed: seed}
}

// dayHash is a deterministic per-day roll in [0, 100).
func (w *Weather) dayHash(day int, salt uint64) uint64 {
	h := uint64(day)*2654435761 + w.Seed*11400714819323198485 + salt*0x9e3779b97f4a7c15
	h ^= h >> 33
	return h % 100
}

// RollDay computes the day's condition and base temperature and updates the
// rainfall history and heat wave tracker. Deterministic for a given seed,
// zone, and day.
func (w *Weather) RollDay(day int, season Season) {
	base := w.Zone.seasonalBase(season)
	// Day-to-day variation: slow sine drift plus a hashed offset.
	drift := 3.0 * math.Sin(float64(day)*0.35)
	jitter := (float64(w.dayHash(day, 1)) - 50.0) / 50.0 * 4.0
	w.BaseTemp = base + drift + jitter

	roll := float64(w.dayHash(day, 2)) / 100.0
	rain := w.Zone.rainChance(season)
	switch {
	case roll < rain*0.15:
		w.Condition = CondStorm
	case roll < rain*0.40:
		if w.BaseTemp < 1 {
			w.Condition = CondSnow
		} else {
			w.Condition = CondHeavyRain
		}
	case roll < rain:
		if w.BaseTemp < 1 {
			w.Condition = CondSnow
		} else {
			w.Condition = CondRain
		}
	case roll < rain+0.30:
		w.Condition = CondPartlyCloudy
	case roll < rain+0.45:
		w.Condition = CondOvercast
	default:
		w.Condition = CondSunny
	}

	copy(w.Rainfall[:], w.Rainfall[1:])
	switch w.Condition {
	case CondStorm:
		w.Rainfall[RainfallHistoryDays-1] = 20 + float64(w.dayHash(day, 3))*0.3
	case CondHeavyRain:
		w.Rainfall[RainfallHistoryDays-1] = 8 + float64(w.dayHash(day, 3))*0.2
	case CondRain, CondSnow:
		w.Rainfall[RainfallHistoryDays-1] = 2 + float64(w.dayHash(day, 3))*0.1
	default:
		w.Rainfall[RainfallHistoryDays-1] = 0
	}

	w.HeatWave.ObserveDay(w.BaseTemp)
	w.ColdSnap = w.BaseTemp <= ColdSnapThreshold
	if day == 0 {
		w.Temperature = w.diurnalTarget(0)
	} else {
		w.Temperature += (w.diurnalTarget(0) - w.Temperature) * tempSmoothing
	}
}

// UpdateTemperature moves the felt temperature a smoothing step toward the
// diurnal target for the tick of day. Called once per sim-hour.
func (w *Weather) UpdateTemperature(tickOfDay int) {
	w.Temperature += (w.diurnalTarget(tickOfDay) - w.Temperature) * tempSmoothing
}

// diurnalTarget is a piecewise cosine with the trough at 06:00 and the peak
// at 15:00. Cloud cover damps the swing.
func (w *Weather) diurnalTarget(tickOfDay int) float64 {
	hour := float64(tickOfDay) / TicksPerHour
	amplitude := 5.0
	switch w.Condition {
	case CondOvercast, CondRain, CondHeavyRain, CondStorm:
		amplitude = 3.0
	}
	switch {
	case hour < 6:
		// Falling limb from yesterday's 15:00 peak.
		return w.BaseTemp + amplitude*math.Cos((hour+9)/15*math.Pi)
	case hour < 15:
		// Rising limb, 9 hours trough to peak.
		return w.BaseTemp - amplitude*math.Cos((hour-6)/9*math.Pi)
	default:
		// Falling limb toward tomorrow's 06:00 trough.
		return w.BaseTemp + amplitude*math.Cos((hour-15)/15*math.Pi)
	}
}

// RecentRainfall sums the trailing n days of precipitation.
func (w *Weather) RecentRainfall(n int) float64 {
	if n > RainfallHistoryDays {
		n = RainfallHistoryDays
	}
	var sum float64
	for i := RainfallHistoryDays - n; i < RainfallHistoryDays; i++ {
		sum += w.Rainfall[i]
	}
	return sum
}

// SeasonHappiness is the seasonal mood adjustment.
func SeasonHappiness(s Season) float32 {
	switch s {
	case SeasonSpring:
		return 2
	case SeasonSummer:
		return 1
	case SeasonAutumn:
		return 0
	}
	return -3
}
