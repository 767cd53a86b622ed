package citizens

import (
	"math/rand"
	"testing"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

func readyBuilding(g *grid.Grid, bs *buildings.Store, zone grid.ZoneType, x, y int) *buildings.Building {
	b := bs.Spawn(g, zone, x, y)
	b.ConstructionRemaining = 0
	return b
}

func TestSpawnRespectsCapacityAndConstruction(t *testing.T) {
	g := grid.New(16, 16)
	bs := buildings.NewStore()
	cs := NewStore()
	rng := rand.New(rand.NewSource(1))

	home := bs.Spawn(g, grid.ZoneResidentialLow, 2, 2)
	if cs.Spawn(home, rng) != nil {
		t.Fatal("spawned into a construction site")
	}

	home.ConstructionRemaining = 0
	for i := 0; i < home.Capacity; i++ {
		if cs.Spawn(home, rng) == nil {
			t.Fatalf("spawn %d refused with capacity free", i)
		}
	}
	if home.Occupants != home.Capacity {
		t.Fatalf("occupants = %d, want %d", home.Occupants, home.Capacity)
	}
	if cs.Spawn(home, rng) != nil {
		t.Fatal("spawned past capacity")
	}
	if cs.Count() != home.Capacity {
		t.Fatalf("citizen count = %d, want %d", cs.Count(), home.Capacity)
	}

	// Workplaces never house anyone.
	shop := readyBuilding(g, bs, grid.ZoneCommercial, 4, 4)
	if cs.Spawn(shop, rng) != nil {
		t.Fatal("spawned into a commercial building")
	}
}

func TestJobSlotBijection(t *testing.T) {
	g := grid.New(16, 16)
	bs := buildings.NewStore()
	cs := NewStore()
	rng := rand.New(rand.NewSource(2))

	home := readyBuilding(g, bs, grid.ZoneResidentialLow, 2, 2)
	shop := readyBuilding(g, bs, grid.ZoneCommercial, 4, 2)

	c := cs.Spawn(home, rng)
	c.Details.Education = 3
	slot := shop.OpenSlot(c.Details.Education)
	if slot < 0 {
		t.Fatal("no open slot in a fresh workplace")
	}

	AssignJob(c, shop, slot)
	if !shop.Jobs[slot].Filled || shop.Jobs[slot].Citizen != uint32(c.ID) {
		t.Fatal("slot does not reference the worker")
	}
	if c.Work == nil || c.Work.Building != shop.ID || c.Work.Slot != slot {
		t.Fatal("worker does not reference the slot")
	}
	want := BaseSalaryForEducation(3) * shop.Jobs[slot].Type.SalaryMultiplier()
	if c.Details.Salary != want {
		t.Fatalf("salary = %v, want %v", c.Details.Salary, want)
	}

	QuitJob(c, bs)
	if shop.Jobs[slot].Filled || shop.Jobs[slot].Citizen != 0 {
		t.Fatal("slot still filled after quitting")
	}
	if c.Work != nil {
		t.Fatal("worker still references the slot after quitting")
	}

	// Despawn releases the slot and the home bed.
	AssignJob(c, shop, slot)
	cs.Despawn(c.ID, bs)
	if shop.Jobs[slot].Filled {
		t.Fatal("slot still filled after despawn")
	}
	if home.Occupants != 0 {
		t.Fatalf("home occupants = %d after despawn, want 0", home.Occupants)
	}
}

func TestFindJobPicksNearestOpening(t *testing.T) {
	g := grid.New(32, 32)
	bs := buildings.NewStore()
	cs := NewStore()
	rng := rand.New(rand.NewSource(3))

	home := readyBuilding(g, bs, grid.ZoneResidentialLow, 2, 2)
	far := readyBuilding(g, bs, grid.ZoneCommercial, 20, 20)
	near := readyBuilding(g, bs, grid.ZoneCommercial, 4, 2)

	c := cs.Spawn(home, rng)
	c.Details.Age = 30
	c.Details.Education = 0

	if !FindJob(c, bs) {
		t.Fatal("no job found with two open workplaces")
	}
	if c.Work.Building != near.ID {
		t.Fatalf("hired at building %d, want nearest %d (far is %d)", c.Work.Building, near.ID, far.ID)
	}

	// Already employed: no double booking.
	if FindJob(c, bs) {
		t.Fatal("employed citizen took a second job")
	}
}

func TestAgeOnceCertainDeathAtMaxAge(t *testing.T) {
	g := grid.New(16, 16)
	bs := buildings.NewStore()
	cs := NewStore()
	rng := rand.New(rand.NewSource(4))

	home := readyBuilding(g, bs, grid.ZoneResidentialHigh, 2, 2)
	for i := 0; i < 10; i++ {
		c := cs.Spawn(home, rng)
		c.Details.Age = MaxAge - 1
		if !AgeOnce(c, 1.0, rng) {
			t.Fatalf("citizen %d survived past the maximum age", i)
		}
	}
}

func TestAgeOnceYoungNeverDies(t *testing.T) {
	g := grid.New(16, 16)
	bs := buildings.NewStore()
	cs := NewStore()
	rng := rand.New(rand.NewSource(5))

	home := readyBuilding(g, bs, grid.ZoneResidentialLow, 2, 2)
	c := cs.Spawn(home, rng)
	c.Details.Age = 30

	// Mortality is zero until 70; at exactly 70 the annual probability is 0.
	for c.Details.Age < 70 {
		if AgeOnce(c, 0, rng) {
			t.Fatalf("citizen died at age %d", c.Details.Age)
		}
	}
}

func TestKillReleasesEverything(t *testing.T) {
	g := grid.New(16, 16)
	bs := buildings.NewStore()
	cs := NewStore()
	rng := rand.New(rand.NewSource(6))

	home := readyBuilding(g, bs, grid.ZoneResidentialLow, 3, 3)
	c := cs.Spawn(home, rng)
	id := c.ID

	ev := cs.Kill(id, DeathOldAge, bs)
	if ev.X != 3 || ev.Y != 3 || ev.Cause != DeathOldAge {
		t.Fatalf("death event = %+v, want home cell (3, 3) old age", ev)
	}
	if cs.Get(id) != nil {
		t.Fatal("citizen still alive after kill")
	}
	if home.Occupants != 0 {
		t.Fatal("home occupancy not released")
	}
}
