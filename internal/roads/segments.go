// Package roads provides the road segment store (cubic Bezier segments
// between intersection nodes), the cell rasterizer, and the CSR adjacency
// graph rebuilt from the road raster.
package roads

import (
	"math"

	"github.com/dzautner/megacity/internal/grid"
)

// SegmentID identifies a road segment in the store.
type SegmentID uint32

// NodeID identifies an intersection node.
type NodeID uint32

// Vec2 is a world-space position.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a cubic Bezier road between two intersection nodes.
type Segment struct {
	ID        SegmentID     `json:"id"`
	Start     NodeID        `json:"start"`
	End       NodeID        `json:"end"`
	Type      grid.RoadType `json:"type"`
	Control   [4]Vec2       `json:"control"` // P0..P3
	ArcLength float64       `json:"arc_length"`
	Cells     []int         `json:"cells"` // grid cell indices this segment rasterized
}

// nodeSnapEpsilon is the world-space distance within which two endpoint
// positions are treated as the same intersection node.
const nodeSnapEpsilon = grid.CellSize * 0.5

// Store holds all road segments and intersection nodes, and tracks which
// segments claim each rasterized cell.
type Store struct {
	Segments map[SegmentID]*Segment
	Nodes    map[NodeID]Vec2

	nextSegment SegmentID
	nextNode    NodeID

	// claims maps a cell index to the segments that rasterized it. A cell
	// reverts to grass only when no remaining segment claims it.
	claims map[int][]SegmentID

	// Dirty is set whenever the rasterized cell set changes; the CSR graph
	// is rebuilt lazily when dirty.
	Dirty bool
}

// NewStore creates an empty segment store.
func NewStore() *Store {
	return &Store{
		Segments:    make(map[SegmentID]*Segment),
		Nodes:       make(map[NodeID]Vec2),
		nextSegment: 1,
		nextNode:    1,
		claims:      make(map[int][]SegmentID),
		Dirty:       true,
	}
}

// nodeAt returns an existing node within the snap epsilon of pos, or
// allocates a new one.
func (s *Store) nodeAt(pos Vec2) NodeID {
	for id, p := range s.Nodes {
		dx := p.X - pos.X
		dy := p.Y - pos.Y
		if dx*dx+dy*dy <= nodeSnapEpsilon*nodeSnapEpsilon {
			return id
		}
	}
	id := s.nextNode
	s.nextNode++
	s.Nodes[id] = pos
	return id
}

// AddSegment inserts a segment from start to end with the given control
// points and road type. It rasterizes the curve into grid cells, marking
// each as a road of the winning (highest-tier) type, and returns the new
// segment ID plus the cells whose raster state changed.
func (s *Store) AddSegment(g *grid.Grid, start, end, ctrl1, ctrl2 Vec2, rt grid.RoadType) (SegmentID, []int) {
	seg := &Segment{
		ID:      s.nextSegment,
		Start:   s.nodeAt(start),
		End:     s.nodeAt(end),
		Type:    rt,
		Control: [4]Vec2{start, ctrl1, ctrl2, end},
	}
	s.nextSegment++

	seg.Cells, seg.ArcLength = rasterize(g, seg.Control)

	var changed []int
	for _, idx := range seg.Cells {
		s.claims[idx] = append(s.claims[idx], seg.ID)
		if g.Cells[idx] != grid.CellRoad {
			g.Cells[idx] = grid.CellRoad
			changed = append(changed, idx)
		}
		// Highest tier wins on overlap.
		if rt > g.Road[idx] {
			g.Road[idx] = rt
			if g.Cells[idx] == grid.CellRoad && !contains(changed, idx) {
				changed = append(changed, idx)
			}
		}
	}

	s.Segments[seg.ID] = seg
	if len(changed) > 0 {
		s.Dirty = true
	}
	return seg.ID, changed
}

// RemoveSegment deletes a segment and un-rasterizes exactly the cells no
// other segment claims. Returns the cells reverted to grass.
func (s *Store) RemoveSegment(g *grid.Grid, id SegmentID) []int {
	seg, ok := s.Segments[id]
	if !ok {
		return nil
	}
	delete(s.Segments, id)

	var reverted []int
	for _, idx := range seg.Cells {
		remaining := removeClaim(s.claims[idx], id)
		if len(remaining) == 0 {
			delete(s.claims, idx)
			g.Cells[idx] = grid.CellGrass
			g.Road[idx] = grid.RoadNone
			g.RoadDamaged[idx] = false
			reverted = append(reverted, idx)
		} else {
			s.claims[idx] = remaining
			// Recompute winning road type from remaining claimants.
			best := grid.RoadNone
			for _, other := range remaining {
				if o := s.Segments[other]; o != nil && o.Type > best {
					best = o.Type
				}
			}
			g.Road[idx] = best
		}
	}

	if len(reverted) > 0 {
		s.Dirty = true
	}
	return reverted
}

// LOSGrade returns the segment's level-of-service letter, A (free flow)
// through F (gridlock), from the mean volume-to-capacity ratio over its
// rasterized cells.
func (seg *Segment) LOSGrade(g *grid.Grid) byte {
	if len(seg.Cells) == 0 {
		return 'A'
	}
	var sum float32
	for _, idx := range seg.Cells {
		sum += g.Traffic[idx]
	}
	ratio := sum / float32(len(seg.Cells)) / seg.Type.Capacity()
	switch {
	case ratio < 0.35:
		return 'A'
	case ratio < 0.55:
		return 'B'
	case ratio < 0.75:
		return 'C'
	case ratio < 0.90:
		return 'D'
	case ratio < 1.0:
		return 'E'
	}
	return 'F'
}

// SegmentClaiming returns one segment ID claiming the cell, or 0.
func (s *Store) SegmentClaiming(cellIdx int) SegmentID {
	if c := s.claims[cellIdx]; len(c) > 0 {
		return c[0]
	}
	return 0
}

// rasterize samples the cubic Bezier and collects the unique grid cells it
// passes through, in order. Also returns the approximate arc length.
func rasterize(g *grid.Grid, p [4]Vec2) ([]int, float64) {
	// Chord-length estimate picks a sample count fine enough that no cell
	// is skipped.
	approx := dist(p[0], p[1]) + dist(p[1], p[2]) + dist(p[2], p[3])
	steps := int(approx/(grid.CellSize*0.25)) + 2

	var cells []int
	seen := make(map[int]bool)
	arc := 0.0
	prev := p[0]

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pt := bezierPoint(p, t)
		arc += dist(prev, pt)
		prev = pt

		cx, cy := grid.WorldToCell(float32(pt.X), float32(pt.Y))
		if !g.InBounds(cx, cy) {
			continue
		}
		if g.Cells[g.Idx(cx, cy)] == grid.CellWater {
			continue // roads do not rasterize over water without a bridge
		}
		idx := g.Idx(cx, cy)
		if !seen[idx] {
			seen[idx] = true
			cells = append(cells, idx)
		}
	}

	return cells, arc
}

// bezierPoint evaluates the cubic Bezier at parameter t.
func bezierPoint(p [4]Vec2, t float64) Vec2 {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Vec2{
		X: b0*p[0].X + b1*p[1].X + b2*p[2].X + b3*p[3].X,
		Y: b0*p[0].Y + b1*p[1].Y + b2*p[2].Y + b3*p[3].Y,
	}
}

// StraightControls returns control points for a straight segment, placed at
// one-third and two-thirds along the chord.
func StraightControls(start, end Vec2) (Vec2, Vec2) {
	return Vec2{X: start.X + (end.X-start.X)/3, Y: start.Y + (end.Y-start.Y)/3},
		Vec2{X: start.X + 2*(end.X-start.X)/3, Y: start.Y + 2*(end.Y-start.Y)/3}
}

func dist(a, b Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func removeClaim(s []SegmentID, id SegmentID) []SegmentID {
	out := s[:0]
	for _, x := range s {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
