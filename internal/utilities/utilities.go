// Package utilities propagates power, water, and district heating from
// source buildings along the road network.
package utilities

import (
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Network tracks propagation state and rebuilds lazily.
type Network struct {
	Dirty bool
}

// NewNetwork returns a network marked for rebuild.
func NewNetwork() *Network {
	return &Network{Dirty: true}
}

// Rebuild floods each utility kind from its sources through road cells,
// marking road cells and their 4-neighbors as supplied. Each source has its
// own range; a cell is supplied if any source reaches it. Heat wave demand
// surges shrink effective ranges via the supplied multipliers (1.0 nominal).
func (n *Network) Rebuild(g *grid.Grid, ustore *buildings.UtilityStore, powerDemand, waterDemand float32) {
	n.Dirty = false

	clear(g.HasPower)
	clear(g.HasWater)
	clear(g.Heated)

	ustore.ForEach(func(u *buildings.Utility) {
		rangeCells := u.Range
		switch u.Type.Kind() {
		case buildings.UtilityPower:
			if powerDemand > 1 {
				rangeCells = int(float32(rangeCells) / powerDemand)
			}
			flood(g, u.X, u.Y, rangeCells, g.HasPower)
		case buildings.UtilityWater:
			if waterDemand > 1 {
				rangeCells = int(float32(rangeCells) / waterDemand)
			}
			flood(g, u.X, u.Y, rangeCells, g.HasWater)
		case buildings.UtilityHeating:
			flood(g, u.X, u.Y, rangeCells, g.Heated)
		}
	})
}

// flood runs a bounded BFS from the source through road cells. The source
// cell itself and every reached road cell plus its non-road neighbors are
// marked supplied.
func flood(g *grid.Grid, sx, sy, maxDist int, supplied []bool) {
	if maxDist <= 0 {
		return
	}

	const unvisited = int32(1) << 30
	dist := make([]int32, g.Width*g.Height)
	for i := range dist {
		dist[i] = unvisited
	}

	type cell struct{ x, y int }
	queue := make([]cell, 0, 256)

	supplied[g.Idx(sx, sy)] = true
	if g.IsRoad(sx, sy) {
		dist[g.Idx(sx, sy)] = 0
		queue = append(queue, cell{sx, sy})
	} else {
		var buf [][2]int
		for _, nb := range g.Neighbors4(sx, sy, buf) {
			if g.IsRoad(nb[0], nb[1]) {
				ni := g.Idx(nb[0], nb[1])
				if dist[ni] == unvisited {
					dist[ni] = 1
					queue = append(queue, cell{nb[0], nb[1]})
				}
			}
		}
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		ci := g.Idx(c.x, c.y)
		d := dist[ci]
		supplied[ci] = true

		var buf [][2]int
		for _, nb := range g.Neighbors4(c.x, c.y, buf) {
			nx, ny := nb[0], nb[1]
			ni := g.Idx(nx, ny)
			if g.Cells[ni] == grid.CellRoad {
				if d+1 <= int32(maxDist) && d+1 < dist[ni] {
					dist[ni] = d + 1
					queue = append(queue, cell{nx, ny})
				}
			} else {
				// Buildings draw from the adjacent road.
				supplied[ni] = true
			}
		}
	}
}

// Stats summarizes supply reach.
type Stats struct {
	PoweredCells int `json:"powered_cells"`
	WateredCells int `json:"watered_cells"`
	HeatedCells  int `json:"heated_cells"`
}

// ComputeStats counts supplied cells.
func ComputeStats(g *grid.Grid) Stats {
	var st Stats
	for i := range g.HasPower {
		if g.HasPower[i] {
			st.PoweredCells++
		}
		if g.HasWater[i] {
			st.WateredCells++
		}
		if g.Heated[i] {
			st.HeatedCells++
		}
	}
	return st
}
