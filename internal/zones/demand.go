// Package zones computes RCI demand and grows buildings on zoned cells.
package zones

import (
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// DefaultDamping smooths demand updates: new = old + (target-old)*damping.
const DefaultDamping = 0.25

// vacancyBand is the healthy vacancy range for a zone category. Below Low,
// demand rises; above High, it falls.
type vacancyBand struct {
	Low  float32
	High float32
}

var vacancyBands = [grid.NumZoneCategories]vacancyBand{
	grid.CatResidential: {0.03, 0.08},
	grid.CatCommercial:  {0.05, 0.08},
	grid.CatIndustrial:  {0.05, 0.08},
	grid.CatOffice:      {0.08, 0.12},
}

// Demand holds the smoothed per-category demand signal in [-1, 1].
type Demand struct {
	Values  [grid.NumZoneCategories]float32 `json:"values"`
	Damping float32                         `json:"damping"`
}

// NewDemand returns a zeroed demand vector with default damping.
func NewDemand() *Demand {
	return &Demand{Damping: DefaultDamping}
}

// Inputs are the aggregates the demand model consumes, assembled by the
// engine once per slow tick.
type Inputs struct {
	// Per-category capacity and occupancy across operational buildings.
	Capacity  [grid.NumZoneCategories]int
	Occupancy [grid.NumZoneCategories]int

	Population int
	Unemployed int
	OpenJobs   int

	AvgHappiness float32
	TaxRate      [grid.NumZoneCategories]float32 // 0..1
}

// Update recomputes target demand from vacancy, employment balance, and
// happiness, then damps toward it. A city with no stock at all gets a
// bootstrap residential pull so growth can start.
func (d *Demand) Update(in Inputs) {
	for cat := 0; cat < int(grid.NumZoneCategories); cat++ {
		target := d.target(grid.ZoneCategory(cat), in)
		d.Values[cat] += (target - d.Values[cat]) * d.Damping
		d.Values[cat] = clip(d.Values[cat])
	}
}

func (d *Demand) target(cat grid.ZoneCategory, in Inputs) float32 {
	capTotal := in.Capacity[cat]
	band := vacancyBands[cat]

	// Bootstrap: an empty city wants residents first, then workplaces once
	// anyone lives there.
	if capTotal == 0 {
		if cat == grid.CatResidential {
			return 1.0
		}
		if in.Population > 0 {
			return 0.6
		}
		return 0.2
	}

	vacancy := float32(capTotal-in.Occupancy[cat]) / float32(capTotal)

	var target float32
	switch {
	case vacancy < band.Low:
		// Tight market: scale up to +1 as vacancy approaches zero.
		target = (band.Low - vacancy) / band.Low
	case vacancy > band.High:
		// Oversupply: scale down to -1 as vacancy approaches 100%.
		target = -(vacancy - band.High) / (1.0 - band.High)
	default:
		target = 0
	}

	// Employment balance shifts residential vs. workplace pull.
	if in.Population > 0 {
		if cat == grid.CatResidential {
			// Open jobs attract residents.
			target += 0.5 * float32(in.OpenJobs) / float32(in.Population)
		} else {
			// Unemployed residents attract workplaces.
			target += 0.5 * float32(in.Unemployed) / float32(in.Population)
		}
	}

	// Happiness and taxes apply mild global pressure.
	target += (in.AvgHappiness - 50) / 200
	target -= in.TaxRate[cat] * 0.5

	return clip(target)
}

func clip(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Aggregate tallies the per-category capacity and occupancy inputs from the
// building store, skipping buildings under construction.
func Aggregate(bstore *buildings.Store) (capacity, occupancy [grid.NumZoneCategories]int) {
	bstore.ForEach(func(b *buildings.Building) {
		if b.UnderConstruction() {
			return
		}
		cat := b.Zone.Category()
		capacity[cat] += b.Capacity
		if b.IsWorkplace() {
			for i := range b.Jobs {
				if b.Jobs[i].Filled {
					occupancy[cat]++
				}
			}
		} else {
			occupancy[cat] += b.Occupants
		}
	})
	return
}
