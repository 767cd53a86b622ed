package utilities

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

func TestPowerFollowsRoadNetwork(t *testing.T) {
	g := grid.New(120, 20)
	layRoadRow(g, 5, 0, 119)
	layRoadRow(g, 15, 30, 40) // disconnected stub

	us := buildings.NewUtilityStore()
	us.Place(g, buildings.UtilPowerPlant, 0, 5)

	net := NewNetwork()
	net.Rebuild(g, us, 1, 1)
	if net.Dirty {
		t.Fatal("rebuild left the network dirty")
	}

	// Power plant range is 80 road cells.
	if !g.HasPower[g.Idx(0, 5)] {
		t.Fatal("source cell unpowered")
	}
	if !g.HasPower[g.Idx(80, 5)] {
		t.Fatal("road cell at the range limit unpowered")
	}
	if g.HasPower[g.Idx(81, 5)] {
		t.Fatal("road cell beyond range powered")
	}
	// Non-road neighbors of supplied road cells draw from the road.
	if !g.HasPower[g.Idx(40, 4)] || !g.HasPower[g.Idx(40, 6)] {
		t.Fatal("cells adjacent to a powered road unpowered")
	}

	// The disconnected stub never receives supply regardless of distance.
	for x := 30; x <= 40; x++ {
		if g.HasPower[g.Idx(x, 15)] {
			t.Fatalf("disconnected road cell (%d, 15) powered", x)
		}
	}

	if st := ComputeStats(g); st.WateredCells != 0 {
		t.Fatalf("watered cells = %d with no water source", st.WateredCells)
	}
}

func TestWaterPropagatesIndependently(t *testing.T) {
	g := grid.New(120, 20)
	layRoadRow(g, 5, 0, 119)

	us := buildings.NewUtilityStore()
	us.Place(g, buildings.UtilWaterTower, 119, 5) // range 60

	net := NewNetwork()
	net.Rebuild(g, us, 1, 1)

	if !g.HasWater[g.Idx(59, 5)] {
		t.Fatal("road cell within tower range unwatered")
	}
	if g.HasWater[g.Idx(58, 5)] {
		t.Fatal("road cell beyond tower range watered")
	}
	if g.HasPower[g.Idx(119, 5)] {
		t.Fatal("water tower supplied power")
	}
}

func TestDemandSurgeShrinksReach(t *testing.T) {
	g := grid.New(120, 20)
	layRoadRow(g, 5, 0, 119)

	us := buildings.NewUtilityStore()
	us.Place(g, buildings.UtilPowerPlant, 0, 5)

	net := NewNetwork()
	net.Rebuild(g, us, 2.0, 1) // doubled demand halves the range to 40

	if !g.HasPower[g.Idx(40, 5)] {
		t.Fatal("cell within the shrunken range unpowered")
	}
	if g.HasPower[g.Idx(41, 5)] {
		t.Fatal("cell beyond the shrunken range powered")
	}
}

func TestBlackoutRemovesAllPower(t *testing.T) {
	g := grid.New(120, 20)
	layRoadRow(g, 5, 0, 119)

	us := buildings.NewUtilityStore()
	us.Place(g, buildings.UtilPowerPlant, 0, 5)
	us.Place(g, buildings.UtilWaterTower, 60, 5)

	net := NewNetwork()
	net.Rebuild(g, us, 1e9, 1)

	st := ComputeStats(g)
	if st.PoweredCells != 0 {
		t.Fatalf("powered cells = %d during a blackout, want 0", st.PoweredCells)
	}
	if st.WateredCells == 0 {
		t.Fatal("blackout took out the water network")
	}
}

func TestOffGridSourceSeedsAdjacentRoad(t *testing.T) {
	g := grid.New(40, 40)
	layRoadRow(g, 10, 0, 39)

	us := buildings.NewUtilityStore()
	us.Place(g, buildings.UtilSolarFarm, 20, 9) // next to the road, not on it

	net := NewNetwork()
	net.Rebuild(g, us, 1, 1)

	if !g.HasPower[g.Idx(20, 9)] {
		t.Fatal("source cell unpowered")
	}
	if !g.HasPower[g.Idx(25, 10)] {
		t.Fatal("road near an off-grid source unpowered")
	}
}
