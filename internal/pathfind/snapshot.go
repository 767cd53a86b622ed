// Package pathfind runs A* over an immutable snapshot of the road graph and
// traffic field. Snapshots are rebuilt each tick and shared read-only across
// async pathfinding workers.
package pathfind

import (
	"container/heap"

	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/roads"
)

// trafficAlpha scales the congestion penalty on edge costs.
const trafficAlpha = 1.0

// Snapshot bundles the CSR topology with a copy of the traffic-density grid
// so A* can run without touching live simulation state. Once built it is
// never mutated; share by pointer.
type Snapshot struct {
	Nodes       []grid.Coord
	NodeOffsets []uint32
	Edges       []uint32
	Weights     []uint32

	Traffic      []float32
	TrafficWidth int
}

// NewSnapshot copies the graph references and clones the traffic grid.
// The CSR slices are not copied: the graph is replaced wholesale on rebuild,
// never mutated in place, so aliasing is safe.
func NewSnapshot(csr *roads.CSRGraph, traffic []float32, width int) *Snapshot {
	t := make([]float32, len(traffic))
	copy(t, traffic)
	return &Snapshot{
		Nodes:       csr.Nodes,
		NodeOffsets: csr.NodeOffsets,
		Edges:       csr.Edges,
		Weights:     csr.Weights,
		Traffic:     t,
		TrafficWidth: width,
	}
}

func (s *Snapshot) findNodeIndex(c grid.Coord) (uint32, bool) {
	lo, hi := 0, len(s.Nodes)
	for lo < hi {
		mid := (lo + hi) / 2
		n := s.Nodes[mid]
		if n.Y < c.Y || (n.Y == c.Y && n.X < c.X) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.Nodes) && s.Nodes[lo] == c {
		return uint32(lo), true
	}
	return 0, false
}

func (s *Snapshot) trafficAt(c grid.Coord) float32 {
	if len(s.Traffic) == 0 {
		return 0
	}
	return s.Traffic[int(c.Y)*s.TrafficWidth+int(c.X)]
}

// edgeCost is base road-type cost scaled by congestion at the target cell.
func (s *Snapshot) edgeCost(edgePos int) float64 {
	base := float64(s.Weights[edgePos])
	target := s.Nodes[s.Edges[edgePos]]
	return base * (1 + trafficAlpha*float64(s.trafficAt(target)))
}

func manhattan(a, b grid.Coord) float64 {
	dx := int(a.X) - int(b.X)
	dy := int(a.Y) - int(b.Y)
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return float64(dx + dy)
}

// pqItem is an open-set entry for A*.
type pqItem struct {
	node     uint32
	priority float64
}

type priorityQueue []pqItem

func (p priorityQueue) Len() int            { return len(p) }
func (p priorityQueue) Less(i, j int) bool  { return p[i].priority < p[j].priority }
func (p priorityQueue) Swap(i, j int)       { p[i], p[j] = p[j], p[i] }
func (p *priorityQueue) Push(x interface{}) { *p = append(*p, x.(pqItem)) }
func (p *priorityQueue) Pop() interface{} {
	old := *p
	n := len(old)
	item := old[n-1]
	*p = old[:n-1]
	return item
}

// FindPath runs A* from start to goal (both must be road cells present in
// the snapshot). Returns nil when unreachable.
func (s *Snapshot) FindPath(start, goal grid.Coord) []grid.Coord {
	startIdx, ok := s.findNodeIndex(start)
	if !ok {
		return nil
	}
	goalIdx, ok := s.findNodeIndex(goal)
	if !ok {
		return nil
	}
	if startIdx == goalIdx {
		return []grid.Coord{start}
	}

	n := len(s.Nodes)
	gScore := make([]float64, n)
	cameFrom := make([]int32, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = -1
		cameFrom[i] = -1
	}
	gScore[startIdx] = 0

	open := &priorityQueue{{node: startIdx, priority: manhattan(start, goal)}}
	heap.Init(open)

	for open.Len() > 0 {
		cur := heap.Pop(open).(pqItem).node
		if cur == goalIdx {
			return s.reconstruct(cameFrom, goalIdx)
		}
		if closed[cur] {
			continue
		}
		closed[cur] = true

		from := s.NodeOffsets[cur]
		to := s.NodeOffsets[cur+1]
		for e := from; e < to; e++ {
			next := s.Edges[e]
			if closed[next] {
				continue
			}
			tentative := gScore[cur] + s.edgeCost(int(e))
			if gScore[next] < 0 || tentative < gScore[next] {
				gScore[next] = tentative
				cameFrom[next] = int32(cur)
				heap.Push(open, pqItem{
					node:     next,
					priority: tentative + manhattan(s.Nodes[next], s.Nodes[goalIdx]),
				})
			}
		}
	}
	return nil
}

func (s *Snapshot) reconstruct(cameFrom []int32, goal uint32) []grid.Coord {
	var rev []grid.Coord
	cur := int32(goal)
	for cur >= 0 {
		rev = append(rev, s.Nodes[cur])
		cur = cameFrom[cur]
	}
	// Reverse in place.
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// NearestRoadCell searches outward in rings from (x, y) for the closest road
// cell, up to maxRadius. Returns false when none is found.
func NearestRoadCell(g *grid.Grid, x, y, maxRadius int) (grid.Coord, bool) {
	if g.IsRoad(x, y) {
		return grid.Coord{X: uint16(x), Y: uint16(y)}, true
	}
	for r := 1; r <= maxRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue // ring perimeter only
				}
				if g.IsRoad(x+dx, y+dy) {
					return grid.Coord{X: uint16(x + dx), Y: uint16(y + dy)}, true
				}
			}
		}
	}
	return grid.Coord{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
