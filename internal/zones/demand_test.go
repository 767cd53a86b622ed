package zones

import (
	"math"
	"testing"

	"github.com/dzautner/megacity/internal/grid"
)

func almost(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestDemandBootstrapEmptyCity(t *testing.T) {
	d := NewDemand()
	d.Update(Inputs{AvgHappiness: 50})

	// No residential stock: target 1.0, damped by a quarter.
	if !almost(d.Values[grid.CatResidential], 0.25) {
		t.Fatalf("residential demand = %v, want 0.25", d.Values[grid.CatResidential])
	}
	// No population yet, so workplace pull stays weak.
	if !almost(d.Values[grid.CatCommercial], 0.2*0.25) {
		t.Fatalf("commercial demand = %v, want %v", d.Values[grid.CatCommercial], 0.2*0.25)
	}
}

func TestDemandWorkplacePullWithPopulation(t *testing.T) {
	d := NewDemand()
	d.Update(Inputs{AvgHappiness: 50, Population: 10})

	if !almost(d.Values[grid.CatCommercial], 0.6*0.25) {
		t.Fatalf("commercial demand = %v, want %v", d.Values[grid.CatCommercial], 0.6*0.25)
	}
}

func TestDemandDampingFraction(t *testing.T) {
	d := NewDemand()
	d.Values[grid.CatResidential] = 0.5

	// Empty-city target is 1.0; each update closes a quarter of the gap.
	d.Update(Inputs{AvgHappiness: 50})
	if !almost(d.Values[grid.CatResidential], 0.625) {
		t.Fatalf("after one update = %v, want 0.625", d.Values[grid.CatResidential])
	}
	d.Update(Inputs{AvgHappiness: 50})
	if !almost(d.Values[grid.CatResidential], 0.71875) {
		t.Fatalf("after two updates = %v, want 0.71875", d.Values[grid.CatResidential])
	}
}

func TestDemandOversupplyGoesNegative(t *testing.T) {
	d := NewDemand()
	in := Inputs{AvgHappiness: 50}
	in.Capacity[grid.CatCommercial] = 100 // fully vacant

	d.Update(in)
	if !almost(d.Values[grid.CatCommercial], -0.25) {
		t.Fatalf("vacant commercial demand = %v, want -0.25", d.Values[grid.CatCommercial])
	}
}

func TestDemandStaysInUnitRange(t *testing.T) {
	d := NewDemand()
	in := Inputs{AvgHappiness: 50}
	in.Capacity[grid.CatCommercial] = 100

	for i := 0; i < 200; i++ {
		d.Update(in)
	}
	for cat := 0; cat < int(grid.NumZoneCategories); cat++ {
		if v := d.Values[cat]; v < -1 || v > 1 {
			t.Fatalf("category %d demand %v escaped [-1, 1]", cat, v)
		}
	}
	if !almost(d.Values[grid.CatCommercial], -1) {
		t.Fatalf("commercial demand = %v, want convergence to -1", d.Values[grid.CatCommercial])
	}
}

func TestDemandTightMarketRises(t *testing.T) {
	d := NewDemand()
	in := Inputs{AvgHappiness: 50, Population: 100}
	in.Capacity[grid.CatResidential] = 100
	in.Occupancy[grid.CatResidential] = 99 // 1% vacancy, below the healthy band

	d.Update(in)
	if d.Values[grid.CatResidential] <= 0 {
		t.Fatalf("tight residential market demand = %v, want > 0", d.Values[grid.CatResidential])
	}
}
