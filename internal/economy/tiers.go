package economy

import (
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/services"
)

// Tier thresholds. Each tier requires everything below it.
const (
	tierHungerFloor        = 30
	tierHappinessFloor     = 20
	aspirationalHappiness  = 70
	aspirationalLandValue  = 150
	aspirationalEducation  = 3
)

// EvaluateTier recomputes a citizen's population tier from their living
// conditions. Promotion moves at most one tier per call; demotion drops
// straight to the highest tier whose requirements still hold.
func EvaluateTier(g *grid.Grid, cov *services.HybridGrid, c *citizens.Citizen) {
	earned := earnedTier(g, cov, c)
	if earned > c.Tier {
		c.Tier++
	} else if earned < c.Tier {
		c.Tier = earned
	}
}

func earnedTier(g *grid.Grid, cov *services.HybridGrid, c *citizens.Citizen) citizens.PopulationTier {
	idx := g.Idx(c.HomeX, c.HomeY)

	// Comfort: fed, not miserable, running water.
	if c.Needs.Hunger < tierHungerFloor ||
		c.Details.Happiness < tierHappinessFloor ||
		!g.HasWater[idx] {
		return citizens.TierBasic
	}

	// Community: powered and heated home.
	if !g.HasPower[idx] || !g.Heated[idx] {
		return citizens.TierComfort
	}

	// Cultural: education, healthcare, and park access.
	if cov.GetClamped(c.HomeX, c.HomeY, services.CatEducation) <= 0 ||
		cov.GetClamped(c.HomeX, c.HomeY, services.CatHealth) <= 0 ||
		cov.GetClamped(c.HomeX, c.HomeY, services.CatPark) <= 0 {
		return citizens.TierCommunity
	}

	// Aspirational: entertainment access, top education, prime land, thriving.
	if cov.GetClamped(c.HomeX, c.HomeY, services.CatEntertainment) <= 0 ||
		c.Details.Education < aspirationalEducation ||
		g.LandValue[idx] < aspirationalLandValue ||
		c.Details.Happiness < aspirationalHappiness {
		return citizens.TierCultural
	}

	return citizens.TierAspirational
}

// TierStats aggregates the tier ladder for the statistics panel and the
// economic output figure.
type TierStats struct {
	Counts         [5]int  `json:"counts"`
	EconomicOutput float64 `json:"economic_output"`
}

// ComputeTierStats tallies citizens per tier. Economic output is the sum of
// per-citizen multipliers, the headline "productivity" number.
func ComputeTierStats(cstore *citizens.Store) TierStats {
	var st TierStats
	cstore.ForEach(func(c *citizens.Citizen) {
		st.Counts[c.Tier]++
		st.EconomicOutput += float64(c.Tier.EconomicMultiplier())
	})
	return st
}
