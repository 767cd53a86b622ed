package weather

import (
	"math"
	"testing"
)

func TestHeatWaveEscalatesOnBucklingHeat(t *testing.T) {
	var hw HeatWave

	hw.ObserveDay(44)
	hw.ObserveDay(44)
	if hw.Active() {
		t.Fatal("two hot days already count as a wave")
	}

	// Third consecutive day at buckling temperature: the run escalates the
	// moderate wave one extra level.
	hw.ObserveDay(44)
	if hw.Severity != HeatSevere {
		t.Fatalf("severity = %v after three 44C days, want severe", hw.Severity)
	}
	if m := hw.Severity.EnergyDemandMultiplier(); m != 1.6 && m != 1.8 {
		t.Fatalf("energy multiplier = %v, want 1.6 or 1.8", m)
	}
	if m := hw.Severity.WaterDemandMultiplier(); m != 1.45 {
		t.Fatalf("water multiplier = %v, want 1.45", m)
	}

	// A single cool day ends the wave outright.
	hw.ObserveDay(30)
	if hw.Active() || hw.Severity.EnergyDemandMultiplier() != 1.0 {
		t.Fatal("wave survived a cool day")
	}
}

func TestHeatWaveSeverityLadder(t *testing.T) {
	var hw HeatWave
	steps := []struct {
		day  int
		want HeatWaveSeverity
	}{
		{1, HeatNone}, {2, HeatNone}, {3, HeatModerate},
		{6, HeatSevere}, {10, HeatExtreme},
	}
	day := 0
	for _, s := range steps {
		for day < s.day {
			hw.ObserveDay(39) // hot but below buckling
			day++
		}
		if hw.Severity != s.want {
			t.Fatalf("day %d severity = %v, want %v", day, hw.Severity, s.want)
		}
	}
}

func TestRoadBucklingChance(t *testing.T) {
	if c := RoadBucklingChance(42); c != 0 {
		t.Fatalf("chance below threshold = %v, want 0", c)
	}
	if c := RoadBucklingChance(43); math.Abs(c-0.002) > 1e-9 {
		t.Fatalf("chance at threshold = %v, want 0.002", c)
	}
	if RoadBucklingChance(44) <= RoadBucklingChance(43) {
		t.Fatal("chance does not grow with temperature")
	}
}

func TestExcessMortality(t *testing.T) {
	var hw HeatWave
	if hw.ExcessMortality(44) != 0 {
		t.Fatal("inactive wave produced excess mortality")
	}
	for i := 0; i < 3; i++ {
		hw.ObserveDay(44)
	}
	if p := hw.ExcessMortality(44); p <= 0 {
		t.Fatalf("active wave mortality = %v, want > 0", p)
	}
	if p := hw.ExcessMortality(100); p != 0.5 {
		t.Fatalf("mortality cap = %v, want 0.5", p)
	}
}

func TestRollDayDeterministic(t *testing.T) {
	a := New(ClimateDesert, 99)
	b := New(ClimateDesert, 99)
	for day := 0; day < 30; day++ {
		a.RollDay(day, SeasonSummer)
		b.RollDay(day, SeasonSummer)
		if a.Condition != b.Condition || a.BaseTemp != b.BaseTemp {
			t.Fatalf("day %d diverged: %v/%v vs %v/%v",
				day, a.Condition, a.BaseTemp, b.Condition, b.BaseTemp)
		}
	}
	if a.RecentRainfall(30) != b.RecentRainfall(30) {
		t.Fatal("rainfall histories diverged")
	}
}

func TestDiurnalCycle(t *testing.T) {
	w := New(ClimateTemperate, 1)
	w.RollDay(0, SeasonSummer)

	w.UpdateTemperature(6 * TicksPerHour)
	dawn := w.Temperature
	w.UpdateTemperature(15 * TicksPerHour)
	afternoon := w.Temperature
	if afternoon <= dawn {
		t.Fatalf("afternoon %v not warmer than dawn %v", afternoon, dawn)
	}
}
