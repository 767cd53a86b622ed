package roads

import (
	"testing"

	"github.com/dzautner/megacity/internal/grid"
)

func cellCenter(x, y int) Vec2 {
	return Vec2{X: (float64(x) + 0.5) * grid.CellSize, Y: (float64(y) + 0.5) * grid.CellSize}
}

func addStraight(s *Store, g *grid.Grid, x0, y0, x1, y1 int, rt grid.RoadType) (SegmentID, []int) {
	start, end := cellCenter(x0, y0), cellCenter(x1, y1)
	c1, c2 := StraightControls(start, end)
	return s.AddSegment(g, start, end, c1, c2, rt)
}

func countRoadCells(g *grid.Grid) int {
	n := 0
	for _, c := range g.Cells {
		if c == grid.CellRoad {
			n++
		}
	}
	return n
}

func TestAddSegmentRasterizesCells(t *testing.T) {
	g := grid.New(64, 64)
	s := NewStore()

	id, changed := addStraight(s, g, 5, 10, 20, 10, grid.RoadLocal)
	if id == 0 {
		t.Fatal("segment id 0")
	}
	if len(changed) != 16 {
		t.Fatalf("changed %d cells, want 16", len(changed))
	}
	for x := 5; x <= 20; x++ {
		if !g.IsRoad(x, 10) {
			t.Fatalf("cell (%d, 10) not rasterized", x)
		}
		if g.RoadTypeAt(x, 10) != grid.RoadLocal {
			t.Fatalf("cell (%d, 10) road type %v, want local", x, g.RoadTypeAt(x, 10))
		}
	}

	csr := BuildCSR(g)
	if csr.NodeCount() != 16 {
		t.Fatalf("CSR nodes = %d, want 16", csr.NodeCount())
	}
	// Interior road cells have exactly two neighbors on a straight run.
	idx, ok := csr.FindNodeIndex(grid.Coord{X: 10, Y: 10})
	if !ok {
		t.Fatal("road cell missing from CSR")
	}
	if n := len(csr.Neighbors(idx)); n != 2 {
		t.Fatalf("interior node degree = %d, want 2", n)
	}
}

func TestRemoveSegmentRevertsOnlyItsCells(t *testing.T) {
	g := grid.New(64, 64)
	s := NewStore()

	idA, _ := addStraight(s, g, 5, 10, 20, 10, grid.RoadLocal)
	idB, _ := addStraight(s, g, 12, 5, 12, 15, grid.RoadLocal)

	if n := countRoadCells(g); n != 26 { // 16 + 11 - 1 shared
		t.Fatalf("road cells after crossing = %d, want 26", n)
	}

	reverted := s.RemoveSegment(g, idB)
	if len(reverted) != 10 {
		t.Fatalf("reverted %d cells, want 10 (shared cell stays)", len(reverted))
	}
	for _, idx := range reverted {
		if g.Cells[idx] != grid.CellGrass || g.Road[idx] != grid.RoadNone {
			t.Fatalf("reverted cell %d not restored to grass", idx)
		}
	}
	if !g.IsRoad(12, 10) {
		t.Fatal("shared intersection cell lost its road")
	}
	if csr := BuildCSR(g); csr.NodeCount() != 16 {
		t.Fatalf("CSR nodes after removal = %d, want 16", csr.NodeCount())
	}

	reverted = s.RemoveSegment(g, idA)
	if len(reverted) != 16 {
		t.Fatalf("reverted %d cells, want 16", len(reverted))
	}
	if n := countRoadCells(g); n != 0 {
		t.Fatalf("%d road cells left after removing every segment", n)
	}
	if csr := BuildCSR(g); csr.NodeCount() != 0 {
		t.Fatal("CSR not empty after removing every segment")
	}
}

func TestOverlapKeepsHighestTier(t *testing.T) {
	g := grid.New(64, 64)
	s := NewStore()

	addStraight(s, g, 5, 10, 20, 10, grid.RoadLocal)
	idAve, _ := addStraight(s, g, 10, 10, 15, 10, grid.RoadAvenue)

	for x := 10; x <= 15; x++ {
		if g.RoadTypeAt(x, 10) != grid.RoadAvenue {
			t.Fatalf("overlapped cell (%d, 10) type %v, want avenue", x, g.RoadTypeAt(x, 10))
		}
	}

	// Removing the avenue reverts the overlap to the surviving local road.
	if reverted := s.RemoveSegment(g, idAve); len(reverted) != 0 {
		t.Fatalf("reverted %d cells still claimed by the local road", len(reverted))
	}
	for x := 5; x <= 20; x++ {
		if g.RoadTypeAt(x, 10) != grid.RoadLocal {
			t.Fatalf("cell (%d, 10) type %v after avenue removal, want local", x, g.RoadTypeAt(x, 10))
		}
	}
}

func TestSegmentsSkipWater(t *testing.T) {
	g := grid.New(64, 64)
	for y := 0; y < 64; y++ {
		g.Cells[g.Idx(12, y)] = grid.CellWater
	}
	s := NewStore()
	addStraight(s, g, 5, 10, 20, 10, grid.RoadLocal)

	if g.IsRoad(12, 10) {
		t.Fatal("road rasterized over water without a bridge")
	}
	if !g.IsRoad(11, 10) || !g.IsRoad(13, 10) {
		t.Fatal("road missing on the banks")
	}
}

func TestLOSGradeTracksTraffic(t *testing.T) {
	g := grid.New(64, 64)
	s := NewStore()
	id, _ := addStraight(s, g, 5, 10, 20, 10, grid.RoadLocal)
	seg := s.Segments[id]

	if got := seg.LOSGrade(g); got != 'A' {
		t.Fatalf("empty road LOS = %c, want A", got)
	}

	// Saturate the segment past its capacity.
	for _, idx := range seg.Cells {
		g.Traffic[idx] = grid.RoadLocal.Capacity() * 2
	}
	if got := seg.LOSGrade(g); got != 'F' {
		t.Fatalf("saturated road LOS = %c, want F", got)
	}

	// Half capacity sits in the middle of the scale.
	for _, idx := range seg.Cells {
		g.Traffic[idx] = grid.RoadLocal.Capacity() * 0.5
	}
	if got := seg.LOSGrade(g); got == 'A' || got == 'F' {
		t.Fatalf("half-capacity LOS = %c, want an intermediate grade", got)
	}
}
