package zones

import (
	"math/rand"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Growth tuning.
const (
	// spawnThreshold is the minimum demand before new buildings appear.
	spawnThreshold = 0.1
	// maxSpawnSamples bounds the eligible cells examined per slow tick.
	maxSpawnSamples = 50
	// demotionOccupancy is the occupancy ratio below which a building
	// accumulates low-occupancy slow ticks.
	demotionOccupancy = 0.30
	// demotionSlowTicks is how many consecutive low-occupancy slow ticks
	// trigger a level-down.
	demotionSlowTicks = 10
)

// Eligible caches the zoned, buildable cells per category. Rebuilt when
// zoning, roads, or utilities change.
type Eligible struct {
	Cells [grid.NumZoneCategories][]int // grid indices
	Dirty bool
}

// NewEligible returns an empty cache marked dirty.
func NewEligible() *Eligible {
	return &Eligible{Dirty: true}
}

// Rebuild scans the grid for cells that can receive a building: zoned, on
// grass, unoccupied, powered, watered, and adjacent to a road.
func (e *Eligible) Rebuild(g *grid.Grid) {
	for cat := range e.Cells {
		e.Cells[cat] = e.Cells[cat][:0]
	}
	e.Dirty = false

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			idx := g.Idx(x, y)
			zone := grid.ZoneType(g.Zone[idx])
			if zone == grid.ZoneNone {
				continue
			}
			if g.Cells[idx] != grid.CellGrass || g.BuildingID[idx] != 0 {
				continue
			}
			if !g.HasPower[idx] || !g.HasWater[idx] {
				continue
			}
			if !g.AdjacentToRoad(x, y) {
				continue
			}
			cat := zone.Category()
			e.Cells[cat] = append(e.Cells[cat], idx)
		}
	}
}

// Spawner grows buildings where demand warrants. Runs every few ticks.
type Spawner struct {
	rng *rand.Rand
}

// NewSpawner seeds the growth RNG.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{rng: rand.New(rand.NewSource(seed))}
}

// Step samples eligible cells for each category whose demand exceeds the
// threshold and spawns a building per sample with the demand value as the
// probability. Returns the buildings spawned this pass.
func (sp *Spawner) Step(g *grid.Grid, e *Eligible, d *Demand, bstore *buildings.Store) []*buildings.Building {
	if e.Dirty {
		e.Rebuild(g)
	}

	var spawned []*buildings.Building
	for cat := 0; cat < int(grid.NumZoneCategories); cat++ {
		demand := d.Values[cat]
		if demand < spawnThreshold {
			continue
		}
		cells := e.Cells[cat]
		if len(cells) == 0 {
			continue
		}

		samples := maxSpawnSamples
		if samples > len(cells) {
			samples = len(cells)
		}
		for i := 0; i < samples; i++ {
			idx := cells[sp.rng.Intn(len(cells))]
			if g.BuildingID[idx] != 0 {
				continue // grew earlier this tick
			}
			if sp.rng.Float32() >= demand {
				continue
			}
			x := idx % g.Width
			y := idx / g.Width
			zone := grid.ZoneType(g.Zone[idx])
			spawned = append(spawned, bstore.Spawn(g, zone, x, y))
		}
	}
	return spawned
}

// Construct advances construction countdowns. The weather modifier slows
// work in rain and stops it entirely in storms (modifier 0).
func Construct(bstore *buildings.Store, ticks float32, weatherModifier float32) {
	bstore.ForEach(func(b *buildings.Building) {
		if !b.UnderConstruction() {
			return
		}
		b.ConstructionRemaining -= ticks * weatherModifier
		if b.ConstructionRemaining < 0 {
			b.ConstructionRemaining = 0
		}
	})
}

// Level adjusts building levels each slow tick. Buildings at high occupancy
// with positive category demand level up, capped by the district's maximum.
// Buildings below 30% occupancy for more than 10 consecutive slow ticks
// level down, shedding capacity rather than being abandoned outright.
func Level(g *grid.Grid, dist *grid.Districts, d *Demand, bstore *buildings.Store) {
	bstore.ForEach(func(b *buildings.Building) {
		if b.UnderConstruction() || b.Capacity == 0 {
			return
		}

		occ := occupancyRatio(b)
		if occ < demotionOccupancy {
			b.LowOccupancySlowTicks++
			if b.LowOccupancySlowTicks > demotionSlowTicks {
				b.LowOccupancySlowTicks = 0
				if b.Level > 1 {
					b.SetLevel(b.Level - 1)
				}
			}
			return
		}
		b.LowOccupancySlowTicks = 0

		cat := b.Zone.Category()
		if occ >= 0.90 && d.Values[cat] > 0 && b.Level < buildings.MaxLevel {
			policy := dist.PolicyAt(b.X, b.Y)
			if b.Level < policy.MaxBuildingLevel {
				b.SetLevel(b.Level + 1)
			}
		}
	})
}

func occupancyRatio(b *buildings.Building) float32 {
	if b.IsWorkplace() {
		filled := 0
		for i := range b.Jobs {
			if b.Jobs[i].Filled {
				filled++
			}
		}
		if len(b.Jobs) == 0 {
			return 1
		}
		return float32(filled) / float32(len(b.Jobs))
	}
	return float32(b.Occupants) / float32(b.Capacity)
}
