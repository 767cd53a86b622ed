// Package civic hosts the administrative subsystems: city hall, tourism,
// postal service, and the education pipeline.
package civic

import (
	"math"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// CityHallTier scales administrative reach with city size.
type CityHallTier uint8

const (
	HallVillage CityHallTier = iota
	HallTown
	HallCity
	HallMetropolis
)

// TierForPopulation maps population to the hall tier.
func TierForPopulation(pop int) CityHallTier {
	switch {
	case pop >= 50000:
		return HallMetropolis
	case pop >= 10000:
		return HallCity
	case pop >= 2000:
		return HallTown
	}
	return HallVillage
}

// staffPer100k is the administrative headcount per 100k residents needed for
// full efficiency. Larger tiers run leaner per resident.
func (t CityHallTier) staffPer100k() float64 {
	switch t {
	case HallVillage:
		return 500
	case HallTown:
		return 400
	case HallCity:
		return 320
	case HallMetropolis:
		return 250
	}
	return 500
}

// RequiredStaff is the headcount for full efficiency at the given population,
// never below one.
func (t CityHallTier) RequiredStaff(pop int) int {
	n := int(math.Ceil(float64(pop) / 100000 * t.staffPer100k()))
	if n < 1 {
		n = 1
	}
	return n
}

// CityHall is the administration resource. Without a hall building the city
// runs at baseline with no bonuses and no penalties.
type CityHall struct {
	Placed bool         `json:"placed"`
	X      int          `json:"x"`
	Y      int          `json:"y"`
	Tier   CityHallTier `json:"tier"`
	Staff  int          `json:"staff"`
	// Efficiency is staffing adequacy clamped to [0, 2].
	Efficiency float64 `json:"efficiency"`
	// CivicPride is the happiness bonus from a central, well-run hall, 0..5.
	CivicPride float32 `json:"civic_pride"`
}

// Update recomputes efficiency and pride. Staff is drawn from employed
// citizens with office-grade education near the hall; the caller passes the
// count it assigned.
func (ch *CityHall) Update(g *grid.Grid, pop, staff int) {
	if !ch.Placed {
		ch.Efficiency = 1.0
		ch.CivicPride = 0
		return
	}
	ch.Tier = TierForPopulation(pop)
	ch.Staff = staff

	required := ch.Tier.RequiredStaff(pop)
	eff := float64(staff) / float64(required)
	if eff > 2 {
		eff = 2
	}
	if eff < 0 {
		eff = 0
	}
	ch.Efficiency = eff

	// Pride scales with how central the hall sits: distance from the map
	// center as a fraction of the half-diagonal.
	cx, cy := float64(g.Width)/2, float64(g.Height)/2
	dx, dy := float64(ch.X)-cx, float64(ch.Y)-cy
	dist := math.Sqrt(dx*dx + dy*dy)
	halfDiag := math.Sqrt(cx*cx + cy*cy)
	centrality := 1.0 - dist/halfDiag
	if centrality < 0 {
		centrality = 0
	}
	pride := float32(centrality) * 5 * float32(math.Min(eff, 1))
	ch.CivicPride = pride
}

// ConstructionMultiplier speeds or slows building construction with
// administrative efficiency: 0.75 when unstaffed up to 1.05 when overstaffed.
func (ch *CityHall) ConstructionMultiplier() float64 {
	if !ch.Placed {
		return 1.0
	}
	return 0.75 + 0.15*math.Min(ch.Efficiency, 2)
}

// TaxMultiplier adjusts collection efficiency: 0.90 unstaffed up to 1.05.
func (ch *CityHall) TaxMultiplier() float64 {
	if !ch.Placed {
		return 1.0
	}
	return 0.90 + 0.075*math.Min(ch.Efficiency, 2)
}

// SyncFromStore locates the hall building, if any.
func (ch *CityHall) SyncFromStore(svcs *buildings.ServiceStore) {
	ch.Placed = false
	svcs.ForEach(func(s *buildings.Service) {
		if s.Type == buildings.SvcCityHall && !ch.Placed {
			ch.Placed = true
			ch.X, ch.Y = s.X, s.Y
		}
	})
}
