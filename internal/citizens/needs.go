package citizens

import (
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/services"
)

// DecayNeeds runs at slow-tick frequency. Working citizens burn energy
// faster; sociable citizens burn the social need faster.
func DecayNeeds(c *Citizen) {
	c.Needs.Hunger -= 1.5
	c.Needs.Energy -= 1.0
	c.Needs.Social -= 0.6 * (0.5 + c.Personality.Sociability)
	c.Needs.Fun -= 0.8
	c.Needs.Comfort -= 0.4

	if c.State == StateWorking {
		c.Needs.Energy -= 1.0
	}
	if c.State == StateAtHome {
		c.Needs.Hunger += 4
		c.Needs.Energy += 3
		c.Needs.Comfort += 1.5
	}
	if c.State == StateShopping {
		c.Needs.Hunger += 6
		c.Needs.Fun += 2
	}
	if c.State == StateAtLeisure {
		c.Needs.Fun += 6
		c.Needs.Social += 4
	}

	clampNeed(&c.Needs.Hunger)
	clampNeed(&c.Needs.Energy)
	clampNeed(&c.Needs.Social)
	clampNeed(&c.Needs.Fun)
	clampNeed(&c.Needs.Comfort)
}

func clampNeed(v *float32) {
	if *v < 0 {
		*v = 0
	}
	if *v > 100 {
		*v = 100
	}
}

// HappinessInputs carries the city-level modifiers assembled by the engine
// each slow tick.
type HappinessInputs struct {
	SeasonModifier  float32 // e.g. +2 in spring, -3 in winter
	WeatherModifier float32 // condition-based adjustment
	CivicPrideBonus float32 // city hall centrality bonus, 0..5
	PostalModifier  float32 // -2..+5 depending on postal coverage at home
	WastePenalty    float32 // accumulated uncollected waste at home cell
}

// ComputeHappiness recomputes a citizen's happiness from home-cell coverage,
// environment, employment, and city modifiers. Returns the clamped value.
func ComputeHappiness(g *grid.Grid, c *Citizen, in HappinessInputs) float32 {
	idx := g.Idx(c.HomeX, c.HomeY)
	h := float32(50)

	// Employment.
	if c.Work != nil {
		h += 10
	} else if c.Details.Age >= 18 && c.Details.Age < 65 {
		h -= 10
	}

	// Service coverage at home (legacy bitflag fast path).
	cov := g.Coverage[idx]
	if cov&services.CoverHealth != 0 {
		h += 5
	}
	if cov&services.CoverEducation != 0 {
		h += 4
	}
	if cov&services.CoverPolice != 0 {
		h += 3
	}
	if cov&services.CoverFire != 0 {
		h += 3
	}
	if cov&services.CoverPark != 0 {
		h += 4
	}
	if cov&services.CoverEntertainment != 0 {
		h += 4
	}
	if cov&services.CoverTelecom != 0 {
		h += 2
	}
	if cov&services.CoverTransport != 0 {
		h += 3
	}

	// Utilities.
	if !g.HasPower[idx] {
		h -= 15
	}
	if !g.HasWater[idx] {
		h -= 20
	}
	// Heating matters to citizens who have climbed past Basic.
	if c.Tier >= TierComfort && g.Heated[idx] {
		h += 3
	}

	// Environmental quality at home.
	h -= g.Pollution[idx] * 0.15
	h -= g.Noise[idx] * 0.10

	// Needs satisfaction contributes up to ±10.
	avgNeeds := (c.Needs.Hunger + c.Needs.Energy + c.Needs.Social + c.Needs.Fun + c.Needs.Comfort) / 5
	h += (avgNeeds - 50) * 0.2

	h += in.SeasonModifier
	h += in.WeatherModifier
	h += in.CivicPrideBonus
	h += in.PostalModifier
	h -= in.WastePenalty

	if h < 0 {
		h = 0
	}
	if h > 100 {
		h = 100
	}
	c.Details.Happiness = h
	return h
}

// UpdateHealth decays health with pollution and inadequate healthcare, and
// recovers it with medical access. Runs at slow tick.
func UpdateHealth(g *grid.Grid, c *Citizen, healthCoverage float32) {
	idx := g.Idx(c.HomeX, c.HomeY)
	c.Details.Health -= g.Pollution[idx] * 0.02
	if healthCoverage > 0 {
		c.Details.Health += 0.5 * healthCoverage
	} else {
		c.Details.Health -= 0.2
	}
	if c.Details.Health < 0 {
		c.Details.Health = 0
	}
	if c.Details.Health > 100 {
		c.Details.Health = 100
	}
}
