package civic

import (
	"math"
	"testing"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/weather"
)

func TestExtremeHeatOverridesSeason(t *testing.T) {
	// A sunny summer day at 40C: the season pulls visitors in, the heat
	// keeps them away.
	mult := SeasonModifier(weather.SeasonSummer) * WeatherModifier(weather.CondSunny, 40)
	if math.Abs(mult-0.15) > 1e-9 {
		t.Fatalf("summer heat multiplier = %v, want 0.15", mult)
	}

	// The same sky at a comfortable temperature.
	mult = SeasonModifier(weather.SeasonSummer) * WeatherModifier(weather.CondSunny, 25)
	if math.Abs(mult-1.8) > 1e-9 {
		t.Fatalf("pleasant summer multiplier = %v, want 1.8", mult)
	}

	// Deep cold hits the same cutoff.
	if m := WeatherModifier(weather.CondOvercast, -10); m != 0.1 {
		t.Fatalf("cold cutoff multiplier = %v, want 0.1", m)
	}
}

func TestWeatherModifierTable(t *testing.T) {
	cases := []struct {
		cond weather.Condition
		want float64
	}{
		{weather.CondSunny, 1.2},
		{weather.CondPartlyCloudy, 1.0},
		{weather.CondOvercast, 0.8},
		{weather.CondRain, 0.5},
		{weather.CondHeavyRain, 0.5},
		{weather.CondSnow, 0.7},
		{weather.CondStorm, 0.2},
	}
	for _, c := range cases {
		if got := WeatherModifier(c.cond, 15); got != c.want {
			t.Errorf("%s modifier = %v, want %v", c.cond.Name(), got, c.want)
		}
	}
}

func TestSeasonModifiers(t *testing.T) {
	if SeasonModifier(weather.SeasonSummer) != 1.5 {
		t.Fatal("summer modifier")
	}
	if SeasonModifier(weather.SeasonWinter) != 0.6 {
		t.Fatal("winter modifier")
	}
	if SeasonModifier(weather.SeasonSpring) <= SeasonModifier(weather.SeasonAutumn) {
		t.Fatal("spring should outdraw autumn")
	}
}

func TestCloseMonth(t *testing.T) {
	tr := Tourism{Attractiveness: 10}

	tr.CloseMonth(weather.SeasonSummer, weather.CondSunny, 40)
	if tr.MonthlyVisitors != 75 {
		t.Fatalf("heat-wave visitors = %d, want 75", tr.MonthlyVisitors)
	}
	if math.Abs(tr.MonthlyIncome-900) > 1e-6 {
		t.Fatalf("heat-wave income = %v, want 900", tr.MonthlyIncome)
	}

	tr.CloseMonth(weather.SeasonSummer, weather.CondPartlyCloudy, 25)
	if tr.MonthlyVisitors != 750 {
		t.Fatalf("pleasant visitors = %d, want 750", tr.MonthlyVisitors)
	}

	tr.HasAirport = true
	tr.CloseMonth(weather.SeasonSummer, weather.CondPartlyCloudy, 25)
	if tr.MonthlyVisitors != 1125 {
		t.Fatalf("airport visitors = %d, want 1125", tr.MonthlyVisitors)
	}
}

func TestUpdateAttractiveness(t *testing.T) {
	g := grid.New(64, 64)
	svcs := buildings.NewServiceStore()
	svcs.Place(g, buildings.SvcSmallPark, 10, 10) // +1
	svcs.Place(g, buildings.SvcStadium, 20, 20)   // +10
	svcs.Place(g, buildings.SvcAirport, 30, 30)   // +5

	var tr Tourism
	tr.UpdateAttractiveness(svcs, 10) // pollution knocks off 2
	if math.Abs(tr.Attractiveness-14) > 1e-9 {
		t.Fatalf("attractiveness = %v, want 14", tr.Attractiveness)
	}
	if !tr.HasAirport {
		t.Fatal("airport not detected")
	}

	// Pollution can zero the score but never push it negative.
	tr.UpdateAttractiveness(svcs, 1000)
	if tr.Attractiveness != 0 {
		t.Fatalf("attractiveness = %v under heavy pollution, want 0", tr.Attractiveness)
	}
}
