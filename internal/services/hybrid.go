package services

import (
	"math"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// maxBFSDistance caps road-network coverage in grid cells.
const maxBFSDistance = 60

// offRoadFactor is the share of road-cell quality inherited by non-road
// cells adjacent to the BFS frontier.
const offRoadFactor = 0.95

// HybridGrid is the per-cell, per-category f32 coverage quality computed by
// road-network BFS from each service building. A station across a river
// without a bridge contributes zero: distance is road distance, not
// crow-flies.
type HybridGrid struct {
	Width  int
	Height int
	// Data is category-major: Data[cat*W*H + y*W + x].
	Data []float32
	// Dirty forces a rebuild on the next update regardless of cadence.
	Dirty bool
}

// NewHybridGrid allocates a zeroed coverage grid.
func NewHybridGrid(w, h int) *HybridGrid {
	return &HybridGrid{
		Width:  w,
		Height: h,
		Data:   make([]float32, int(NumCategories)*w*h),
		Dirty:  true,
	}
}

// Get returns the coverage quality for a category at (x, y).
func (h *HybridGrid) Get(x, y int, cat Category) float32 {
	return h.Data[int(cat)*h.Width*h.Height+y*h.Width+x]
}

// GetClamped returns coverage clamped into [0, 1].
func (h *HybridGrid) GetClamped(x, y int, cat Category) float32 {
	v := h.Get(x, y, cat)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (h *HybridGrid) setMax(x, y int, cat Category, v float32) {
	idx := int(cat)*h.Width*h.Height + y*h.Width + x
	if v > h.Data[idx] {
		h.Data[idx] = v
	}
}

// Rebuild recomputes all categories from scratch. Multiple stations take the
// max per cell.
func (h *HybridGrid) Rebuild(g *grid.Grid, svcs *buildings.ServiceStore, funding Funding) {
	for i := range h.Data {
		h.Data[i] = 0
	}
	h.Dirty = false

	svcs.ForEach(func(s *buildings.Service) {
		cat, ok := CategoryOf(s.Type)
		if !ok {
			return
		}
		fundingRatio := funding.Levels[cat]
		effectiveQuality := s.Effectiveness() * BudgetQuality(fundingRatio)
		effectiveRadius := float64(s.Radius) * float64(fundingRatio)
		maxRoadCells := int(math.Ceil(effectiveRadius / grid.CellSize))

		h.bfsRoadCoverage(g, s.X, s.Y, maxRoadCells, cat, effectiveQuality)
	})
}

// bfsRoadCoverage floods quality outward from one station through road
// cells. Quality at road distance d of max D is (1-d/D)*effectiveQuality;
// non-road neighbors of the frontier inherit 95% of the road value.
func (h *HybridGrid) bfsRoadCoverage(g *grid.Grid, sx, sy, maxDist int, cat Category, effectiveQuality float32) {
	if maxDist > maxBFSDistance {
		maxDist = maxBFSDistance
	}
	if maxDist <= 0 {
		return
	}

	const unvisited = math.MaxInt32
	dist := make([]int32, g.Width*g.Height)
	for i := range dist {
		dist[i] = unvisited
	}

	type cell struct{ x, y int }
	queue := make([]cell, 0, 256)

	// Seed: the station cell if it sits on a road, otherwise its adjacent
	// road cells at distance 1.
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

	// The station cell itself is always covered at full quality.
	h.setMax(sx, sy, cat, effectiveQuality)

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		d := dist[g.Idx(c.x, c.y)]
		if int(d) >= maxDist {
			continue
		}

		proximity := 1.0 - float32(d)/float32(maxDist)
		h.setMax(c.x, c.y, cat, proximity*effectiveQuality)

		var buf [][2]int
		for _, nb := range g.Neighbors4(c.x, c.y, buf) {
			nx, ny := nb[0], nb[1]
			ni := g.Idx(nx, ny)
			if g.Cells[ni] == grid.CellRoad {
				if d+1 < dist[ni] {
					dist[ni] = d + 1
					queue = append(queue, cell{nx, ny})
				}
			} else {
				// Buildings sit next to roads: off-road neighbors inherit
				// a slightly reduced value.
				h.setMax(nx, ny, cat, proximity*effectiveQuality*offRoadFactor)
			}
		}
	}
}

// Stats summarizes coverage per category; the full grid is recomputed on
// load rather than saved.
type Stats struct {
	CategoryAverages  [NumCategories]float32 `json:"category_averages"`
	CoveredCellCounts [NumCategories]uint32  `json:"covered_cell_counts"`
}

// ComputeStats aggregates the hybrid grid.
func (h *HybridGrid) ComputeStats() Stats {
	var st Stats
	cells := h.Width * h.Height
	for cat := 0; cat < int(NumCategories); cat++ {
		base := cat * cells
		var sum float32
		var count uint32
		for _, v := range h.Data[base : base+cells] {
			if v > 0 {
				if v > 1 {
					v = 1
				}
				sum += v
				count++
			}
		}
		if count > 0 {
			st.CategoryAverages[cat] = sum / float32(count)
		}
		st.CoveredCellCounts[cat] = count
	}
	return st
}
