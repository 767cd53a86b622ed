package economy

import (
	"math"
	"testing"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

func collectFixture(t *testing.T) (*grid.Grid, *grid.Districts, *buildings.Store) {
	t.Helper()
	g := grid.New(64, 64)
	dist := grid.NewDistricts(64, 64)
	bstore := buildings.NewStore()

	shop := bstore.Spawn(g, grid.ZoneCommercial, 5, 5)
	shop.ConstructionRemaining = 0
	for i := range shop.Jobs {
		shop.Jobs[i].Filled = true
	}
	return g, dist, bstore
}

func TestCommerceBonusRaisesCommercialTax(t *testing.T) {
	g, dist, bstore := collectFixture(t)
	svcs := buildings.NewServiceStore()
	utils := buildings.NewUtilityStore()

	base := CollectInputs{CityHallTaxMultiplier: 1, ServiceQuality: 1}
	b := NewBudget()
	b.CollectMonthly(g, dist, bstore, svcs, utils, base)
	plain := b.Income.Commercial
	if plain <= 0 {
		t.Fatalf("commercial income = %v, want > 0", plain)
	}

	covered := base
	covered.CommerceBonus = func(x, y int) float64 { return 1.15 }
	b2 := NewBudget()
	b2.CollectMonthly(g, dist, bstore, svcs, utils, covered)
	if got := b2.Income.Commercial; math.Abs(got-plain*1.15) > 1e-6 {
		t.Fatalf("covered commercial income = %v, want %v (+15%%)", got, plain*1.15)
	}
}

func TestSpendRejectsWhenUnaffordable(t *testing.T) {
	b := NewBudget()
	b.Treasury = 100

	if !b.Spend(60) {
		t.Fatal("affordable spend rejected")
	}
	if b.Treasury != 40 {
		t.Fatalf("treasury = %v after spend, want 40", b.Treasury)
	}

	if b.Spend(60) {
		t.Fatal("unaffordable spend accepted")
	}
	if b.Treasury != 40 || b.Debt != 0 {
		t.Fatalf("rejected spend mutated state: treasury %v debt %v", b.Treasury, b.Debt)
	}

	b.Refund(60)
	if b.Treasury != 100 {
		t.Fatalf("treasury = %v after refund, want 100", b.Treasury)
	}
}
