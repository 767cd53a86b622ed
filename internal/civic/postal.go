package civic

import (
	"math"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Postal coverage effects.
const (
	// PostalCommerceBonus boosts commercial productivity in covered cells.
	PostalCommerceBonus = 1.15
	// Happiness adjustments for covered and uncovered homes.
	PostalHappinessBonus   = 5
	PostalHappinessPenalty = -2
)

// Postal tracks per-cell mail coverage. Coverage is 0 (none), 1 (post
// office), or 2 (post office amplified by a sorting center).
type Postal struct {
	Coverage []uint8 `json:"-"`
	Dirty    bool    `json:"-"`
}

// NewPostal allocates coverage for the grid.
func NewPostal(g *grid.Grid) *Postal {
	return &Postal{Coverage: make([]uint8, g.Width*g.Height), Dirty: true}
}

// Rebuild recomputes coverage. Post offices cover their radius; a sorting
// center doubles the effective radius of post offices inside its own.
func (p *Postal) Rebuild(g *grid.Grid, svcs *buildings.ServiceStore) {
	for i := range p.Coverage {
		p.Coverage[i] = 0
	}
	p.Dirty = false

	type center struct {
		x, y   int
		radius float64
	}
	var sorters []center
	svcs.ForEach(func(s *buildings.Service) {
		if s.Type == buildings.SvcMailSortingCenter {
			sorters = append(sorters, center{s.X, s.Y, float64(s.Radius) / grid.CellSize})
		}
	})

	svcs.ForEach(func(s *buildings.Service) {
		if s.Type != buildings.SvcPostOffice {
			return
		}
		radius := float64(s.Radius) / grid.CellSize
		level := uint8(1)
		for _, sc := range sorters {
			dx, dy := float64(s.X-sc.x), float64(s.Y-sc.y)
			if math.Sqrt(dx*dx+dy*dy) <= sc.radius {
				radius *= 2
				level = 2
				break
			}
		}
		p.stamp(g, s.X, s.Y, radius, level)
	})
}

func (p *Postal) stamp(g *grid.Grid, cx, cy int, radius float64, level uint8) {
	r := int(math.Ceil(radius))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			x, y := cx+dx, cy+dy
			if !g.InBounds(x, y) {
				continue
			}
			if float64(dx*dx+dy*dy) > radius*radius {
				continue
			}
			idx := g.Idx(x, y)
			if level > p.Coverage[idx] {
				p.Coverage[idx] = level
			}
		}
	}
}

// At returns the coverage level at a cell.
func (p *Postal) At(g *grid.Grid, x, y int) uint8 {
	return p.Coverage[g.Idx(x, y)]
}

// HappinessModifier for a home cell.
func (p *Postal) HappinessModifier(g *grid.Grid, x, y int) float32 {
	if p.At(g, x, y) > 0 {
		return PostalHappinessBonus
	}
	return PostalHappinessPenalty
}

// CommerceMultiplier for a workplace cell.
func (p *Postal) CommerceMultiplier(g *grid.Grid, x, y int) float64 {
	if p.At(g, x, y) > 0 {
		return PostalCommerceBonus
	}
	return 1.0
}
