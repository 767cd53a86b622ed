package engine

import (
	"strings"
	"testing"

	"github.com/dzautner/megacity/internal/actions"
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/weather"
)

func newTestEngine(t *testing.T) (*Engine, *World) {
	t.Helper()
	p := DefaultParams()
	p.Width, p.Height = 160, 160
	p.Seed = 42
	w := NewFlatWorld(p)
	return New(w), w
}

func TestGrowthWithRoadPowerAndWater(t *testing.T) {
	eng, w := newTestEngine(t)

	w.Enqueue(actions.PlaceGridRoad{X0: 100, Y0: 100, X1: 120, Y1: 100, Type: grid.RoadLocal})
	w.Enqueue(actions.PlaceZoneRect{X0: 102, Y0: 101, X1: 118, Y1: 101, Zone: grid.ZoneResidentialLow})
	w.Enqueue(actions.PlaceUtility{Type: buildings.UtilPowerPlant, X: 100, Y: 100})
	w.Enqueue(actions.PlaceUtility{Type: buildings.UtilWaterTower, X: 120, Y: 100})

	// Growth must show within the first in-game hours, not after days.
	eng.StepN(300)

	if w.Buildings.Count() == 0 {
		t.Fatal("no buildings grew on zoned, serviced land within 300 ticks")
	}
	if w.Demand.Values[grid.CatResidential] <= 0 {
		t.Fatalf("residential demand = %v in an empty city, want > 0",
			w.Demand.Values[grid.CatResidential])
	}
	w.Buildings.ForEach(func(b *buildings.Building) {
		if b.Zone != grid.ZoneResidentialLow || b.Y != 101 || b.X < 102 || b.X > 118 {
			t.Fatalf("building grew off the zoned strip at (%d, %d) zone %v", b.X, b.Y, b.Zone)
		}
	})
}

func TestNoGrowthWithoutPower(t *testing.T) {
	eng, w := newTestEngine(t)

	w.Enqueue(actions.PlaceGridRoad{X0: 100, Y0: 100, X1: 120, Y1: 100, Type: grid.RoadLocal})
	w.Enqueue(actions.PlaceZoneRect{X0: 102, Y0: 101, X1: 118, Y1: 101, Zone: grid.ZoneResidentialLow})
	w.Enqueue(actions.PlaceUtility{Type: buildings.UtilWaterTower, X: 120, Y: 100})

	eng.StepN(300)

	if n := w.Buildings.Count(); n != 0 {
		t.Fatalf("%d buildings grew without power", n)
	}
}

func TestUnreachableCommuteKeepsCitizenHome(t *testing.T) {
	eng, w := newTestEngine(t)

	// Two road islands with no connection between them.
	w.Enqueue(actions.PlaceGridRoad{X0: 10, Y0: 10, X1: 20, Y1: 10, Type: grid.RoadLocal})
	w.Enqueue(actions.PlaceGridRoad{X0: 100, Y0: 100, X1: 110, Y1: 100, Type: grid.RoadLocal})
	eng.Step()

	home := w.Buildings.Spawn(w.Grid, grid.ZoneResidentialLow, 12, 11)
	home.ConstructionRemaining = 0
	work := w.Buildings.Spawn(w.Grid, grid.ZoneCommercial, 105, 101)
	work.ConstructionRemaining = 0

	c := w.Citizens.Spawn(home, w.RNG)
	if c == nil {
		t.Fatal("citizen did not spawn")
	}
	citizens.AssignJob(c, work, 0)
	px, py := c.PosX, c.PosY

	// Jump to the start of the working day so the schedule sends them out,
	// then run until the failed path request has been resolved.
	w.Clock.Ticks = 8*weather.TicksPerHour - 1
	for i := 0; i < 60 && (c.PathPending || c.State.Commuting()); i++ {
		eng.Step()
	}

	if c.State != citizens.StateAtHome {
		t.Fatalf("state = %v after unreachable commute, want back at home", c.State)
	}
	if c.PosX != px || c.PosY != py {
		t.Fatalf("citizen moved from (%v, %v) to (%v, %v) with no road path",
			px, py, c.PosX, c.PosY)
	}
}

func TestPlacementChargesAndRejectsOnFunds(t *testing.T) {
	eng, w := newTestEngine(t)

	w.Enqueue(actions.PlaceUtility{Type: buildings.UtilWaterTower, X: 50, Y: 50})
	eng.Step()
	if w.Utilities.Count() != 1 {
		t.Fatal("utility not placed")
	}
	if want := 50000 - buildings.UtilWaterTower.PlacementCost(); w.Budget.Treasury != want {
		t.Fatalf("treasury = %v after placement, want %v", w.Budget.Treasury, want)
	}

	// With an empty treasury every placement bounces without touching state.
	w.Budget.Treasury = 0
	w.Enqueue(actions.PlaceUtility{Type: buildings.UtilPowerPlant, X: 60, Y: 60})
	w.Enqueue(actions.PlaceService{Type: buildings.SvcClinic, X: 70, Y: 70})
	w.Enqueue(actions.PlaceGridRoad{X0: 10, Y0: 10, X1: 20, Y1: 10, Type: grid.RoadLocal})
	eng.Step()

	if n := w.Utilities.Count(); n != 1 {
		t.Fatalf("utilities = %d after broke placement, want 1", n)
	}
	if n := w.Services.Count(); n != 0 {
		t.Fatalf("services = %d after broke placement, want 0", n)
	}
	if w.Grid.IsRoad(15, 10) {
		t.Fatal("road rasterized without funds")
	}
	if len(w.Roads.Segments) != 0 {
		t.Fatal("segment kept without funds")
	}
	if w.Budget.Treasury != 0 || w.Budget.Debt != 0 {
		t.Fatalf("rejected placements moved money: treasury %v debt %v",
			w.Budget.Treasury, w.Budget.Debt)
	}

	rejected := 0
	for _, ev := range w.Events {
		if ev.Category == "build" && strings.Contains(ev.Description, "insufficient funds") {
			rejected++
		}
	}
	if rejected != 3 {
		t.Fatalf("%d rejection events surfaced, want 3", rejected)
	}
}

func TestVirtualPopulationExchangePreservesTotals(t *testing.T) {
	_, w := newTestEngine(t)

	home := w.Buildings.Spawn(w.Grid, grid.ZoneResidentialHigh, 40, 40)
	home.ConstructionRemaining = 0
	home.SetLevel(5)

	d := int(w.Districts.IDAt(40, 40))
	w.Virtual.PerDistrict[d] = 100
	w.Virtual.Total = 100

	wx, wy := grid.CellToWorld(40, 40)
	w.Viewport = citizens.Viewport{Active: true, MinX: wx - 100, MinY: wy - 100, MaxX: wx + 100, MaxY: wy + 100}

	before := w.Virtual.Total + int64(w.Citizens.Count())
	w.stepVirtualExchange()
	if got := w.Virtual.Total + int64(w.Citizens.Count()); got != before {
		t.Fatalf("materialization changed total population %d -> %d", before, got)
	}
	if w.Citizens.Count() == 0 {
		t.Fatal("no pool citizens materialized into visible free housing")
	}

	// With the camera gone, Abstract residents beyond the district cap fold
	// back into the pool.
	w.Viewport.Active = false
	w.Citizens.ForEach(func(c *citizens.Citizen) { citizens.AssignLod(c, w.Viewport) })
	w.stepVirtualExchange()
	if got := w.Virtual.Total + int64(w.Citizens.Count()); got != before {
		t.Fatalf("absorption changed total population %d -> %d", before, got)
	}
	if w.Virtual.Total == 0 {
		t.Fatal("nothing folded back into the statistical pool")
	}
}

func TestPauseStopsClockButDrainsCommands(t *testing.T) {
	eng, w := newTestEngine(t)

	w.Enqueue(actions.SetPaused{Paused: true})
	eng.StepN(10)
	if w.Clock.Ticks != 1 {
		t.Fatalf("clock at %d after pausing, want 1", w.Clock.Ticks)
	}

	// Building continues while paused.
	w.Enqueue(actions.PlaceZoneRect{X0: 10, Y0: 10, X1: 12, Y1: 12, Zone: grid.ZoneCommercial})
	eng.Step()
	if w.Clock.Ticks != 1 {
		t.Fatal("clock advanced while paused")
	}
	if w.Grid.Zone[w.Grid.Idx(10, 10)] != grid.ZoneCommercial {
		t.Fatal("zoning not applied while paused")
	}

	w.Enqueue(actions.SetPaused{Paused: false})
	eng.StepN(5)
	if w.Clock.Ticks <= 1 {
		t.Fatal("clock did not resume")
	}
}

func TestUndoRevertsZoning(t *testing.T) {
	eng, w := newTestEngine(t)

	w.Enqueue(actions.PlaceZoneRect{X0: 10, Y0: 10, X1: 12, Y1: 12, Zone: grid.ZoneIndustrial})
	eng.Step()
	if w.Grid.Zone[w.Grid.Idx(11, 11)] != grid.ZoneIndustrial {
		t.Fatal("zoning not applied")
	}

	w.Enqueue(actions.Undo{})
	eng.Step()
	if w.Grid.Zone[w.Grid.Idx(11, 11)] != grid.ZoneNone {
		t.Fatal("undo did not revert zoning")
	}
}

func TestUndoRevertsRoadPlacement(t *testing.T) {
	eng, w := newTestEngine(t)

	w.Enqueue(actions.PlaceGridRoad{X0: 20, Y0: 20, X1: 30, Y1: 20, Type: grid.RoadLocal})
	eng.Step()
	if !w.Grid.IsRoad(25, 20) {
		t.Fatal("road not rasterized")
	}
	if len(w.Roads.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(w.Roads.Segments))
	}

	w.Enqueue(actions.Undo{})
	eng.Step()
	if w.Grid.IsRoad(25, 20) {
		t.Fatal("undo left road cells behind")
	}
	if len(w.Roads.Segments) != 0 {
		t.Fatal("undo left the segment in the store")
	}
}

func TestDistrictBanBlocksIndustrialZoning(t *testing.T) {
	eng, w := newTestEngine(t)

	id := w.Districts.IDAt(10, 10)
	pol := grid.DefaultDistrictPolicy()
	pol.HeavyIndustryBanned = true
	w.Enqueue(actions.SetDistrictPolicy{District: id, Policy: pol})
	eng.Step()

	w.Enqueue(actions.PlaceZoneRect{X0: 10, Y0: 10, X1: 12, Y1: 12, Zone: grid.ZoneIndustrial})
	eng.Step()
	if w.Grid.Zone[w.Grid.Idx(10, 10)] != grid.ZoneNone {
		t.Fatal("industrial zoning applied inside a banning district")
	}

	// Other categories are unaffected.
	w.Enqueue(actions.PlaceZoneRect{X0: 10, Y0: 10, X1: 12, Y1: 12, Zone: grid.ZoneOffice})
	eng.Step()
	if w.Grid.Zone[w.Grid.Idx(10, 10)] != grid.ZoneOffice {
		t.Fatal("office zoning blocked by the industry ban")
	}
}

func TestTaxAndFundingClamps(t *testing.T) {
	eng, w := newTestEngine(t)

	w.Enqueue(actions.SetTaxRate{Category: grid.CatResidential, Rate: 0.9})
	w.Enqueue(actions.SetBudgetLevel{Category: 0, Level: 9})
	eng.Step()

	if r := w.Budget.TaxRates[grid.CatResidential]; r != 0.3 {
		t.Fatalf("tax rate = %v, want clamp at 0.3", r)
	}
	if l := w.Funding.Levels[0]; l != 1.5 {
		t.Fatalf("funding level = %v, want clamp at 1.5", l)
	}
}
