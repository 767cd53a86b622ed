// Package sanitation covers garbage collection, hazardous waste, and death
// care.
package sanitation

import (
	"math"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Waste tuning.
const (
	// AccumulationCap bounds uncollected waste per building so penalties
	// saturate instead of growing without limit.
	AccumulationCap = 10000.0
	// collectionRadiusCells is how far a facility's trucks reach.
	collectionRadiusCells = 35
	// Per-slow-tick generation per occupied unit by zone category.
	wasteResidential = 0.8
	wasteCommercial  = 1.2
	wasteIndustrial  = 2.5
	wasteOffice      = 0.6
)

// facilityThroughput is tonnes processed per slow tick by facility type.
func facilityThroughput(t buildings.ServiceType) float64 {
	switch t {
	case buildings.SvcLandfill:
		return 120
	case buildings.SvcRecyclingCenter:
		return 80
	case buildings.SvcIncinerator:
		return 150
	case buildings.SvcTransferStation:
		return 60
	}
	return 0
}

// Waste tracks uncollected garbage per building.
type Waste struct {
	// Accumulated is keyed by zone building ID.
	Accumulated map[buildings.ID]float64 `json:"accumulated"`
	// TotalGenerated and TotalCollected are lifetime counters.
	TotalGenerated float64 `json:"total_generated"`
	TotalCollected float64 `json:"total_collected"`
}

// NewWaste returns an empty tracker.
func NewWaste() *Waste {
	return &Waste{Accumulated: make(map[buildings.ID]float64)}
}

// Generate adds each building's per-tick waste output, capped per building.
func (w *Waste) Generate(bstore *buildings.Store) {
	bstore.ForEach(func(b *buildings.Building) {
		if b.UnderConstruction() {
			return
		}
		occ := b.Occupants
		if b.IsWorkplace() {
			occ = 0
			for i := range b.Jobs {
				if b.Jobs[i].Filled {
					occ++
				}
			}
		}
		if occ == 0 {
			return
		}

		var rate float64
		switch b.Zone.Category() {
		case grid.CatResidential:
			rate = wasteResidential
		case grid.CatCommercial:
			rate = wasteCommercial
		case grid.CatIndustrial:
			rate = wasteIndustrial
		case grid.CatOffice:
			rate = wasteOffice
		}

		amount := rate * float64(occ)
		w.TotalGenerated += amount
		acc := w.Accumulated[b.ID] + amount
		if acc > AccumulationCap {
			acc = AccumulationCap
		}
		w.Accumulated[b.ID] = acc
	})
}

// Collect runs each facility's trucks over buildings in range, nearest
// first, until the facility's throughput is spent. Facility Load reflects
// the tonnage handled for the effectiveness model.
func (w *Waste) Collect(bstore *buildings.Store, svcs *buildings.ServiceStore) {
	svcs.ForEach(func(s *buildings.Service) {
		budget := facilityThroughput(s.Type)
		if budget <= 0 {
			return
		}
		collected := 0.0

		bstore.ForEach(func(b *buildings.Building) {
			if budget <= 0 {
				return
			}
			acc := w.Accumulated[b.ID]
			if acc <= 0 {
				return
			}
			dx, dy := float64(b.X-s.X), float64(b.Y-s.Y)
			if math.Sqrt(dx*dx+dy*dy) > collectionRadiusCells {
				return
			}
			take := acc
			if take > budget {
				take = budget
			}
			w.Accumulated[b.ID] = acc - take
			budget -= take
			collected += take
		})

		w.TotalCollected += collected
		s.Load = int(collected)
	})
}

// PenaltyAt is the happiness penalty for a building's accumulated waste,
// up to 10 points at the cap.
func (w *Waste) PenaltyAt(id buildings.ID) float32 {
	acc := w.Accumulated[id]
	return float32(acc / AccumulationCap * 10)
}

// Uncollected sums outstanding waste across the city.
func (w *Waste) Uncollected() float64 {
	var sum float64
	for _, v := range w.Accumulated {
		sum += v
	}
	return sum
}

// Forget drops tracking for a demolished building.
func (w *Waste) Forget(id buildings.ID) {
	delete(w.Accumulated, id)
}
