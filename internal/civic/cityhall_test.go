package civic

import (
	"math"
	"testing"

	"github.com/dzautner/megacity/internal/grid"
)

func TestRequiredStaffScalesWithPopulation(t *testing.T) {
	cases := []struct {
		pop  int
		want int
	}{
		{0, 1},       // floor
		{100, 1},     // village: ceil(0.001 x 500)
		{1000, 5},    // village: 0.01 x 500
		{5000, 20},   // town: 0.05 x 400
		{25000, 80},  // city: 0.25 x 320
		{100000, 250}, // metropolis: 1.0 x 250
		{200000, 500},
	}
	for _, c := range cases {
		tier := TierForPopulation(c.pop)
		if got := tier.RequiredStaff(c.pop); got != c.want {
			t.Errorf("pop %d: required staff = %d, want %d", c.pop, got, c.want)
		}
	}
}

func TestCityHallEfficiencyTracksStaffing(t *testing.T) {
	g := grid.New(64, 64)
	ch := &CityHall{Placed: true, X: 32, Y: 32}

	// Fully staffed village: 1000 residents need 5 administrators.
	ch.Update(g, 1000, 5)
	if ch.Efficiency != 1.0 {
		t.Fatalf("efficiency = %v fully staffed, want 1.0", ch.Efficiency)
	}

	// Half-staffed metropolis.
	ch.Update(g, 100000, 125)
	if ch.Efficiency != 0.5 {
		t.Fatalf("efficiency = %v half staffed, want 0.5", ch.Efficiency)
	}

	// Overstaffing clamps at 2.
	ch.Update(g, 1000, 100)
	if ch.Efficiency != 2.0 {
		t.Fatalf("efficiency = %v overstaffed, want clamp at 2.0", ch.Efficiency)
	}
	if m := ch.ConstructionMultiplier(); math.Abs(m-1.05) > 1e-9 {
		t.Fatalf("construction multiplier = %v at full clamp, want 1.05", m)
	}
	if m := ch.TaxMultiplier(); math.Abs(m-1.05) > 1e-9 {
		t.Fatalf("tax multiplier = %v at full clamp, want 1.05", m)
	}
}
