// Package services computes the two service-coverage models: the legacy
// bitflag grid (Euclidean radius, used by happiness fast paths) and the
// hybrid grid (road-network BFS with distance decay and quality factors).
package services

import (
	"math"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Category groups service types for coverage tracking.
type Category uint8

const (
	CatHealth Category = iota
	CatEducation
	CatPolice
	CatFire
	CatPark
	CatEntertainment
	CatTelecom
	CatTransport
	NumCategories
)

// Coverage bitflags for the legacy grid, one bit per category.
const (
	CoverHealth        uint16 = 1 << CatHealth
	CoverEducation     uint16 = 1 << CatEducation
	CoverPolice        uint16 = 1 << CatPolice
	CoverFire          uint16 = 1 << CatFire
	CoverPark          uint16 = 1 << CatPark
	CoverEntertainment uint16 = 1 << CatEntertainment
	CoverTelecom       uint16 = 1 << CatTelecom
	CoverTransport     uint16 = 1 << CatTransport
)

// CategoryOf maps a service type to its coverage category. Waste, postal,
// death-care and administrative buildings are tracked by their own
// subsystems and return false.
// Stadium/Plaza count as entertainment, not park; the happiness model keys
// on that distinction.
func CategoryOf(t buildings.ServiceType) (Category, bool) {
	switch t {
	case buildings.SvcHospital, buildings.SvcClinic:
		return CatHealth, true
	case buildings.SvcElementarySchool, buildings.SvcHighSchool, buildings.SvcUniversity:
		return CatEducation, true
	case buildings.SvcPoliceStation:
		return CatPolice, true
	case buildings.SvcFireStation:
		return CatFire, true
	case buildings.SvcSmallPark, buildings.SvcLargePark, buildings.SvcPlayground:
		return CatPark, true
	case buildings.SvcStadium, buildings.SvcPlaza:
		return CatEntertainment, true
	case buildings.SvcTelecomTower:
		return CatTelecom, true
	case buildings.SvcBusDepot, buildings.SvcAirport:
		return CatTransport, true
	}
	return 0, false
}

// Funding holds per-category budget levels set by the player (1.0 = fully
// funded). Radius and quality scale with funding.
type Funding struct {
	Levels [NumCategories]float32
}

// DefaultFunding returns full funding for every category.
func DefaultFunding() Funding {
	var f Funding
	for i := range f.Levels {
		f.Levels[i] = 1.0
	}
	return f
}

// BudgetQuality maps a funding ratio to a coverage quality factor in
// [0.5, 1.5].
func BudgetQuality(fundingRatio float32) float32 {
	q := 0.5 + fundingRatio*0.5
	if q < 0.5 {
		q = 0.5
	}
	if q > 1.5 {
		q = 1.5
	}
	return q
}

// RebuildBitflags recomputes the legacy coverage grid: each category's bit
// is set on every cell within the (budget-scaled) Euclidean radius of any
// service building of that category. Education level 0-3 is derived from
// the best school tier covering the cell.
func RebuildBitflags(g *grid.Grid, svcs *buildings.ServiceStore, funding Funding) {
	for i := range g.Coverage {
		g.Coverage[i] = 0
		g.EducationLevel[i] = 0
	}

	svcs.ForEach(func(s *buildings.Service) {
		cat, ok := CategoryOf(s.Type)
		if !ok {
			return
		}
		radius := float64(s.Radius) * float64(funding.Levels[cat]) / grid.CellSize
		bit := uint16(1) << cat
		eduLevel := schoolTier(s.Type)

		r := int(math.Ceil(radius))
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				x, y := s.X+dx, s.Y+dy
				if !g.InBounds(x, y) {
					continue
				}
				if float64(dx*dx+dy*dy) > radius*radius {
					continue
				}
				idx := g.Idx(x, y)
				g.Coverage[idx] |= bit
				if eduLevel > g.EducationLevel[idx] {
					g.EducationLevel[idx] = eduLevel
				}
			}
		}
	})
}

// schoolTier returns the education grid level granted by a school type.
func schoolTier(t buildings.ServiceType) uint8 {
	switch t {
	case buildings.SvcElementarySchool:
		return 1
	case buildings.SvcHighSchool:
		return 2
	case buildings.SvcUniversity:
		return 3
	}
	return 0
}
