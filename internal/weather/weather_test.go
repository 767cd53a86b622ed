package weather

import (
	"math"
	"testing"
)

func TestDiurnalExtremesAtSixAndFifteen(t *testing.T) {
	w := New(ClimateTemperate, 1)
	w.BaseTemp = 20
	w.Condition = CondSunny

	minHour, maxHour := 0, 0
	minTemp, maxTemp := math.Inf(1), math.Inf(-1)
	for hour := 0; hour < HoursPerDay; hour++ {
		temp := w.diurnalTarget(hour * TicksPerHour)
		if temp < minTemp {
			minTemp, minHour = temp, hour
		}
		if temp > maxTemp {
			maxTemp, maxHour = temp, hour
		}
	}
	if minHour != 6 {
		t.Fatalf("coldest hour = %d, want 6", minHour)
	}
	if maxHour != 15 {
		t.Fatalf("warmest hour = %d, want 15", maxHour)
	}
	if math.Abs(minTemp-15) > 1e-9 || math.Abs(maxTemp-25) > 1e-9 {
		t.Fatalf("extremes = %v/%v, want 15/25", minTemp, maxTemp)
	}
}

func TestTemperatureSmoothsTowardTarget(t *testing.T) {
	w := New(ClimateTemperate, 1)
	w.RollDay(0, SeasonSummer)

	target := w.diurnalTarget(12 * TicksPerHour)
	w.Temperature = target + 10
	w.UpdateTemperature(12 * TicksPerHour)
	if math.Abs(w.Temperature-(target+7)) > 1e-9 {
		t.Fatalf("temperature = %v after one hour, want %v (30%% of the gap closed)",
			w.Temperature, target+7)
	}
}

func TestColdSnapFlag(t *testing.T) {
	w := New(ClimateSubarctic, 7)
	for day := 1; day <= 30; day++ {
		w.RollDay(day, SeasonWinter)
		if !w.ColdSnap {
			t.Fatalf("day %d: subarctic winter mean %v did not flag a cold snap", day, w.BaseTemp)
		}
	}

	h := New(ClimateDesert, 7)
	for day := 1; day <= 30; day++ {
		h.RollDay(day, SeasonSummer)
		if h.ColdSnap {
			t.Fatalf("day %d: desert summer mean %v flagged a cold snap", day, h.BaseTemp)
		}
	}
}

func TestConditionNames(t *testing.T) {
	conds := map[Condition]string{
		CondSunny:        "sunny",
		CondPartlyCloudy: "partly cloudy",
		CondOvercast:     "overcast",
		CondRain:         "rain",
		CondHeavyRain:    "heavy rain",
		CondSnow:         "snow",
		CondStorm:        "storm",
	}
	for c, want := range conds {
		if got := c.Name(); got != want {
			t.Errorf("condition %d name = %q, want %q", c, got, want)
		}
	}
}
