package services

import (
	"testing"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

func layRoadRow(g *grid.Grid, y, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		idx := g.Idx(x, y)
		g.Cells[idx] = grid.CellRoad
		g.Road[idx] = grid.RoadLocal
	}
}

func TestRiverBlocksRoadCoverage(t *testing.T) {
	g := grid.New(80, 80)
	layRoadRow(g, 50, 40, 49)
	for x := 51; x <= 60; x++ {
		g.Cells[g.Idx(x, 50)] = grid.CellWater
	}

	svcs := buildings.NewServiceStore()
	svcs.Place(g, buildings.SvcFireStation, 50, 50)

	h := NewHybridGrid(80, 80)
	h.Rebuild(g, svcs, DefaultFunding())
	if h.Dirty {
		t.Fatal("rebuild left the grid dirty")
	}

	if h.Get(50, 50, CatFire) <= 0 {
		t.Fatal("station cell uncovered")
	}
	if h.Get(45, 50, CatFire) <= 0 {
		t.Fatal("road cell west of the station uncovered")
	}
	if h.Get(45, 49, CatFire) <= 0 {
		t.Fatal("cell beside the covered road uncovered")
	}

	// The far bank is a few cells away as the crow flies, but there is no
	// road across the water, so fire coverage is exactly zero.
	for x := 51; x <= 60; x++ {
		if v := h.Get(x, 50, CatFire); v != 0 {
			t.Fatalf("coverage across the river at (%d, 50) = %v, want 0", x, v)
		}
	}

	// The legacy Euclidean model disagrees, which is the point of the
	// road-network grid.
	RebuildBitflags(g, svcs, DefaultFunding())
	if g.Coverage[g.Idx(55, 50)]&CoverFire == 0 {
		t.Fatal("radius model should cover the far bank")
	}
}

func TestCoverageDecaysWithRoadDistance(t *testing.T) {
	g := grid.New(80, 20)
	layRoadRow(g, 10, 0, 79)

	svcs := buildings.NewServiceStore()
	svcs.Place(g, buildings.SvcFireStation, 0, 9) // beside the road's west end

	h := NewHybridGrid(80, 20)
	h.Rebuild(g, svcs, DefaultFunding())

	near := h.Get(5, 10, CatFire)
	far := h.Get(30, 10, CatFire)
	if near <= 0 || far <= 0 {
		t.Fatalf("coverage missing along the road: near %v far %v", near, far)
	}
	if far >= near {
		t.Fatalf("coverage does not decay: near %v far %v", near, far)
	}

	// Fire radius is 35 cells; the BFS seeds at distance 1, so the last
	// covered road cell is x=33.
	if h.Get(33, 10, CatFire) <= 0 {
		t.Fatal("cell at the coverage edge uncovered")
	}
	if v := h.Get(34, 10, CatFire); v != 0 {
		t.Fatalf("coverage beyond the radius = %v, want 0", v)
	}
}

func TestFundingScalesRadiusAndQuality(t *testing.T) {
	g := grid.New(80, 20)
	layRoadRow(g, 10, 0, 79)

	svcs := buildings.NewServiceStore()
	svcs.Place(g, buildings.SvcFireStation, 0, 9)

	full := NewHybridGrid(80, 20)
	full.Rebuild(g, svcs, DefaultFunding())

	half := DefaultFunding()
	half.Levels[CatFire] = 0.5
	cut := NewHybridGrid(80, 20)
	cut.Rebuild(g, svcs, half)

	if cut.Get(5, 10, CatFire) >= full.Get(5, 10, CatFire) {
		t.Fatal("halved funding did not reduce quality")
	}
	// Half funding halves the radius: 17.5 cells rounds up to 18 road cells.
	if cut.Get(16, 10, CatFire) <= 0 {
		t.Fatal("cell within the cut radius uncovered")
	}
	if v := cut.Get(17, 10, CatFire); v != 0 {
		t.Fatalf("coverage beyond the cut radius = %v, want 0", v)
	}
}

func TestBudgetQualityBounds(t *testing.T) {
	if q := BudgetQuality(1.0); q != 1.0 {
		t.Fatalf("full funding quality = %v, want 1.0", q)
	}
	if q := BudgetQuality(0); q != 0.5 {
		t.Fatalf("zero funding quality = %v, want 0.5", q)
	}
	if q := BudgetQuality(10); q != 1.5 {
		t.Fatalf("overfunded quality = %v, want cap 1.5", q)
	}
}
