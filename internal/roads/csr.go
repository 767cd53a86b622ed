package roads

import (
	"sort"

	"github.com/dzautner/megacity/internal/grid"
)

// CSRGraph is a compressed sparse row adjacency over road cells.
// Nodes are sorted by (y, x) so lookups can binary search.
type CSRGraph struct {
	Nodes       []grid.Coord
	NodeOffsets []uint32 // len = len(Nodes)+1
	Edges       []uint32 // neighbor indices into Nodes
	Weights     []uint32 // base traversal cost per edge
}

// damagedCostMultiplier raises edge cost into heat-buckled road cells.
const damagedCostMultiplier = 3

// BuildCSR constructs the graph from the current road raster. Edges connect
// 4-adjacent road cells; weight is the base cost of the target cell's road
// type, tripled for damaged cells.
func BuildCSR(g *grid.Grid) *CSRGraph {
	var nodes []grid.Coord
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.Cells[g.Idx(x, y)] == grid.CellRoad {
				nodes = append(nodes, grid.Coord{X: uint16(x), Y: uint16(y)})
			}
		}
	}
	// Row-major scan already yields (y, x) order; keep the sort to make the
	// invariant explicit for FindNodeIndex.
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Y != nodes[j].Y {
			return nodes[i].Y < nodes[j].Y
		}
		return nodes[i].X < nodes[j].X
	})

	index := make(map[grid.Coord]uint32, len(nodes))
	for i, n := range nodes {
		index[n] = uint32(i)
	}

	csr := &CSRGraph{
		Nodes:       nodes,
		NodeOffsets: make([]uint32, 0, len(nodes)+1),
	}

	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for _, n := range nodes {
		csr.NodeOffsets = append(csr.NodeOffsets, uint32(len(csr.Edges)))
		for _, d := range dirs {
			nx, ny := int(n.X)+d[0], int(n.Y)+d[1]
			if !g.IsRoad(nx, ny) {
				continue
			}
			ni, ok := index[grid.Coord{X: uint16(nx), Y: uint16(ny)}]
			if !ok {
				continue
			}
			w := g.Road[g.Idx(nx, ny)].BaseCost()
			if g.RoadDamaged[g.Idx(nx, ny)] {
				w *= damagedCostMultiplier
			}
			csr.Edges = append(csr.Edges, ni)
			csr.Weights = append(csr.Weights, w)
		}
	}
	csr.NodeOffsets = append(csr.NodeOffsets, uint32(len(csr.Edges)))

	return csr
}

// NodeCount returns the number of road-cell nodes.
func (c *CSRGraph) NodeCount() int { return len(c.Nodes) }

// EdgeCount returns the number of directed edges.
func (c *CSRGraph) EdgeCount() int { return len(c.Edges) }

// Neighbors returns the neighbor slice of a node.
func (c *CSRGraph) Neighbors(idx uint32) []uint32 {
	return c.Edges[c.NodeOffsets[idx]:c.NodeOffsets[idx+1]]
}

// FindNodeIndex locates a road cell in the node list by binary search.
func (c *CSRGraph) FindNodeIndex(coord grid.Coord) (uint32, bool) {
	i := sort.Search(len(c.Nodes), func(i int) bool {
		n := c.Nodes[i]
		if n.Y != coord.Y {
			return n.Y >= coord.Y
		}
		return n.X >= coord.X
	})
	if i < len(c.Nodes) && c.Nodes[i] == coord {
		return uint32(i), true
	}
	return 0, false
}
