package civic

import (
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/weather"
)

// Tourist-weather extremes: beyond these the city is effectively closed to
// visitors regardless of conditions.
const (
	tourismHeatCutoff = 35.0
	tourismColdCutoff = -5.0
	extremeTempFactor = 0.1
)

// visitorsPerAttractivenessPoint converts the attractiveness score to a
// monthly visitor count.
const visitorsPerAttractivenessPoint = 50

// spendPerVisitor is tourism income per visitor per month.
const spendPerVisitor = 12.0

// Tourism is the monthly visitor model.
type Tourism struct {
	Attractiveness  float64 `json:"attractiveness"`
	MonthlyVisitors int     `json:"monthly_visitors"`
	MonthlyIncome   float64 `json:"monthly_income"`
	HasAirport      bool    `json:"has_airport"`
}

// SeasonModifier is the seasonal visitor multiplier.
func SeasonModifier(s weather.Season) float64 {
	switch s {
	case weather.SeasonSpring:
		return 1.2
	case weather.SeasonSummer:
		return 1.5
	case weather.SeasonAutumn:
		return 1.1
	}
	return 0.6
}

// WeatherModifier is the per-condition visitor multiplier. Extreme
// temperatures override the condition entirely.
func WeatherModifier(c weather.Condition, temp float64) float64 {
	if temp > tourismHeatCutoff || temp < tourismColdCutoff {
		return extremeTempFactor
	}
	switch c {
	case weather.CondSunny:
		return 1.2
	case weather.CondPartlyCloudy:
		return 1.0
	case weather.CondOvercast:
		return 0.8
	case weather.CondRain, weather.CondHeavyRain:
		return 0.5
	case weather.CondSnow:
		return 0.7
	case weather.CondStorm:
		return 0.2
	}
	return 1.0
}

// UpdateAttractiveness rescores the city from its draws: parks, stadiums,
// plazas, the airport, and low pollution. Runs daily.
func (t *Tourism) UpdateAttractiveness(svcs *buildings.ServiceStore, avgPollution float64) {
	score := 0.0
	t.HasAirport = false
	svcs.ForEach(func(s *buildings.Service) {
		switch s.Type {
		case buildings.SvcSmallPark, buildings.SvcPlayground:
			score += 1
		case buildings.SvcLargePark:
			score += 3
		case buildings.SvcPlaza:
			score += 2
		case buildings.SvcStadium:
			score += 10
		case buildings.SvcAirport:
			score += 5
			t.HasAirport = true
		}
	})
	score -= avgPollution * 0.2
	if score < 0 {
		score = 0
	}
	t.Attractiveness = score
}

// CloseMonth converts attractiveness into visitors and income using the
// month's dominant season and weather. An airport adds half again.
func (t *Tourism) CloseMonth(season weather.Season, cond weather.Condition, temp float64) {
	mult := SeasonModifier(season) * WeatherModifier(cond, temp)
	visitors := t.Attractiveness * visitorsPerAttractivenessPoint * mult
	if t.HasAirport {
		visitors *= 1.5
	}
	t.MonthlyVisitors = int(visitors)
	t.MonthlyIncome = visitors * spendPerVisitor
}
