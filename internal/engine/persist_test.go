package engine

import (
	"path/filepath"
	"testing"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/roads"
	"github.com/dzautner/megacity/internal/save"
)

func openTestDB(t *testing.T) *save.DB {
	t.Helper()
	db, err := save.Open(filepath.Join(t.TempDir(), "city.db"))
	if err != nil {
		t.Fatalf("open save db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// buildTestCity assembles a small hand-made city: one road, a home, a shop,
// a fire station, a power plant, and one employed citizen.
func buildTestCity(t *testing.T) *World {
	t.Helper()
	p := DefaultParams()
	p.Width, p.Height = 64, 64
	p.Seed = 7
	w := NewFlatWorld(p)

	start := roads.Vec2{X: 8.5 * grid.CellSize, Y: 11.5 * grid.CellSize}
	end := roads.Vec2{X: 20.5 * grid.CellSize, Y: 11.5 * grid.CellSize}
	c1, c2 := roads.StraightControls(start, end)
	w.Roads.AddSegment(w.Grid, start, end, c1, c2, grid.RoadLocal)

	home := w.Buildings.Spawn(w.Grid, grid.ZoneResidentialHigh, 10, 10)
	home.SetLevel(2)
	home.ConstructionRemaining = 0
	shop := w.Buildings.Spawn(w.Grid, grid.ZoneCommercial, 12, 10)
	shop.ConstructionRemaining = 0

	c := w.Citizens.Spawn(home, w.RNG)
	c.Details.Education = 3
	citizens.AssignJob(c, shop, 0)
	c.Details.Salary = 7800 // raises above the education base

	w.Services.Place(w.Grid, buildings.SvcFireStation, 20, 20)
	w.Utilities.Place(w.Grid, buildings.UtilPowerPlant, 9, 11)

	return w
}

func TestSaveLoadRoundTrip(t *testing.T) {
	w := buildTestCity(t)

	w.Clock.Ticks = 123456
	w.Budget.Treasury = 54321.5
	w.Budget.Debt = 1000
	w.Demand.Values[grid.CatResidential] = 0.42
	pol := grid.DefaultDistrictPolicy()
	pol.HeavyIndustryBanned = true
	pol.MaxBuildingLevel = 3
	w.Districts.Policies[5] = pol
	w.Weather.RollDay(51, w.Clock.Season())

	db := openTestDB(t)
	if err := SaveWorld(w, db); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !db.HasSave() {
		t.Fatal("database reports no save")
	}
	if tick, err := db.GetMeta("saved_at_tick"); err != nil || tick != "123456" {
		t.Fatalf("saved_at_tick = %q (%v), want 123456", tick, err)
	}

	w2, err := LoadWorld(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if w2.Clock.Ticks != 123456 {
		t.Fatalf("ticks = %d, want 123456", w2.Clock.Ticks)
	}
	if w2.Grid.Width != 64 || w2.Grid.Height != 64 {
		t.Fatalf("grid %dx%d, want 64x64", w2.Grid.Width, w2.Grid.Height)
	}
	if w2.Params.Seed != 7 {
		t.Fatalf("seed = %d, want 7", w2.Params.Seed)
	}
	if w2.Budget.Treasury != 54321.5 || w2.Budget.Debt != 1000 {
		t.Fatalf("budget = %v / %v", w2.Budget.Treasury, w2.Budget.Debt)
	}
	if w2.Demand.Values[grid.CatResidential] != 0.42 {
		t.Fatalf("demand = %v, want 0.42", w2.Demand.Values[grid.CatResidential])
	}
	got := w2.Districts.Policies[5]
	if !got.HeavyIndustryBanned || got.MaxBuildingLevel != 3 {
		t.Fatalf("district policy = %+v", got)
	}
	if w2.Weather.Condition != w.Weather.Condition || w2.Weather.BaseTemp != w.Weather.BaseTemp {
		t.Fatal("weather state diverged")
	}

	for i := range w.Grid.Cells {
		if w2.Grid.Cells[i] != w.Grid.Cells[i] || w2.Grid.Road[i] != w.Grid.Road[i] {
			t.Fatalf("grid raster diverged at cell %d", i)
		}
	}

	if w2.Buildings.Count() != 2 || w2.Services.Count() != 1 || w2.Utilities.Count() != 1 {
		t.Fatalf("structures = %d/%d/%d, want 2/1/1",
			w2.Buildings.Count(), w2.Services.Count(), w2.Utilities.Count())
	}
	if len(w2.Roads.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(w2.Roads.Segments))
	}

	home2 := w2.buildingAtCell(10, 10)
	if home2 == nil {
		t.Fatal("home missing at its cell")
	}
	if home2.Zone != grid.ZoneResidentialHigh || home2.Level != 2 || home2.Occupants != 1 {
		t.Fatalf("home = zone %v level %d occupants %d", home2.Zone, home2.Level, home2.Occupants)
	}
}

func TestSaveLoadKeepsSalary(t *testing.T) {
	w := buildTestCity(t)

	db := openTestDB(t)
	if err := SaveWorld(w, db); err != nil {
		t.Fatalf("save: %v", err)
	}
	w2, err := LoadWorld(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if w2.Citizens.Count() != 1 {
		t.Fatalf("population = %d, want 1", w2.Citizens.Count())
	}
	w2.Citizens.ForEach(func(c *citizens.Citizen) {
		// Seniority survives the load: the job re-assignment must not reset
		// the salary to the education base.
		if c.Details.Salary != 7800 {
			t.Fatalf("salary = %v, want 7800", c.Details.Salary)
		}
		if c.HomeX != 10 || c.HomeY != 10 {
			t.Fatalf("home = (%d, %d), want (10, 10)", c.HomeX, c.HomeY)
		}
		if c.State != citizens.StateAtHome {
			t.Fatalf("state = %v, want at home after load", c.State)
		}
		if c.Work == nil {
			t.Fatal("job lost on load")
		}
		work := w2.Buildings.Get(c.Work.Building)
		if work == nil || work.X != 12 || work.Y != 10 {
			t.Fatal("job does not point at the shop's cell")
		}
		if !work.Jobs[c.Work.Slot].Filled || work.Jobs[c.Work.Slot].Citizen != uint32(c.ID) {
			t.Fatal("job slot not re-filled")
		}
	})
}

func TestLoadMarksDerivedStateDirty(t *testing.T) {
	w := buildTestCity(t)

	db := openTestDB(t)
	if err := SaveWorld(w, db); err != nil {
		t.Fatalf("save: %v", err)
	}
	w2, err := LoadWorld(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !w2.Eligible.Dirty || !w2.UtilityNet.Dirty || !w2.Coverage.Dirty {
		t.Fatal("derived caches not marked for rebuild")
	}
	if w2.CSR.NodeCount() == 0 {
		t.Fatal("CSR graph empty after load")
	}
	// The first tick rebuilds propagation and keeps the city running.
	eng := New(w2)
	eng.Step()
	if !w2.Grid.HasPower[w2.Grid.Idx(12, 11)] {
		t.Fatal("power not restored on the road after load")
	}
}

func TestSaveOverwritesPreviousSave(t *testing.T) {
	w := buildTestCity(t)
	db := openTestDB(t)

	if err := SaveWorld(w, db); err != nil {
		t.Fatalf("first save: %v", err)
	}
	w.Clock.Ticks = 999
	w.Budget.Treasury = 1
	if err := SaveWorld(w, db); err != nil {
		t.Fatalf("second save: %v", err)
	}

	w2, err := LoadWorld(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w2.Clock.Ticks != 999 || w2.Budget.Treasury != 1 {
		t.Fatalf("loaded tick %d treasury %v, want the second save", w2.Clock.Ticks, w2.Budget.Treasury)
	}
}
