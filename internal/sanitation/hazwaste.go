package sanitation

import (
	"math"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Hazardous waste tuning. Only industry produces it, scaled by level.
const (
	hazPerIndustrialLevel = 0.4
	hazTreatmentRadius    = 40
	hazTreatmentRate      = 30
	// hazFinePerTonne is charged monthly for untreated stock.
	hazFinePerTonne = 25.0
	// hazContaminationThreshold is untreated tonnage at a site before the
	// surrounding cells start absorbing pollution.
	hazContaminationThreshold = 50.0
	hazContaminationRadius    = 4
	hazContaminationRate      = 2.0
)

// HazWaste tracks untreated hazardous stock per industrial building.
type HazWaste struct {
	Stock        map[buildings.ID]float64 `json:"stock"`
	MonthlyFines float64                  `json:"monthly_fines"`
	TotalTreated float64                  `json:"total_treated"`
}

// NewHazWaste returns an empty tracker.
func NewHazWaste() *HazWaste {
	return &HazWaste{Stock: make(map[buildings.ID]float64)}
}

// Generate accrues hazardous output from operating industry.
func (h *HazWaste) Generate(bstore *buildings.Store) {
	bstore.ForEach(func(b *buildings.Building) {
		if b.Zone != grid.ZoneIndustrial || b.UnderConstruction() {
			return
		}
		h.Stock[b.ID] += hazPerIndustrialLevel * float64(b.Level)
	})
}

// Treat runs treatment plants against stock in range.
func (h *HazWaste) Treat(bstore *buildings.Store, svcs *buildings.ServiceStore) {
	svcs.ForEach(func(s *buildings.Service) {
		if s.Type != buildings.SvcHazWasteTreatment {
			return
		}
		budget := float64(hazTreatmentRate)
		treated := 0.0
		bstore.ForEach(func(b *buildings.Building) {
			if budget <= 0 {
				return
			}
			stock := h.Stock[b.ID]
			if stock <= 0 {
				return
			}
			dx, dy := float64(b.X-s.X), float64(b.Y-s.Y)
			if math.Sqrt(dx*dx+dy*dy) > hazTreatmentRadius {
				return
			}
			take := stock
			if take > budget {
				take = budget
			}
			h.Stock[b.ID] = stock - take
			budget -= take
			treated += take
		})
		h.TotalTreated += treated
		s.Load = int(treated)
	})
}

// Contaminate leaks pollution around sites holding untreated stock past the
// threshold. Runs at slow tick.
func (h *HazWaste) Contaminate(g *grid.Grid, bstore *buildings.Store) {
	for id, stock := range h.Stock {
		if stock < hazContaminationThreshold {
			continue
		}
		b := bstore.Get(id)
		if b == nil {
			delete(h.Stock, id)
			continue
		}
		for dy := -hazContaminationRadius; dy <= hazContaminationRadius; dy++ {
			for dx := -hazContaminationRadius; dx <= hazContaminationRadius; dx++ {
				x, y := b.X+dx, b.Y+dy
				if !g.InBounds(x, y) {
					continue
				}
				g.Pollution[g.Idx(x, y)] += hazContaminationRate
			}
		}
	}
}

// AssessFines charges for untreated stock; the caller credits the treasury
// income as fines. Runs monthly.
func (h *HazWaste) AssessFines() float64 {
	var total float64
	for _, stock := range h.Stock {
		total += stock * hazFinePerTonne
	}
	h.MonthlyFines = total
	return total
}

// Forget drops tracking for a demolished building.
func (h *HazWaste) Forget(id buildings.ID) {
	delete(h.Stock, id)
}
