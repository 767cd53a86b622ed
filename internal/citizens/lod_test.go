package citizens

import "testing"

func testViewport() Viewport {
	return Viewport{Active: true, MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}
}

// placeOutside positions the citizen the given distance east of the viewport.
func placeOutside(c *Citizen, d float32) {
	c.PosX = 1000 + d
	c.PosY = 500
}

func TestLodHysteresisNoOscillation(t *testing.T) {
	v := testViewport()
	c := &Citizen{PosX: 500, PosY: 500} // inside, Full by default

	AssignLod(c, v)
	if c.Lod != LodFull {
		t.Fatalf("in-view citizen at tier %v, want full", c.Lod)
	}

	// Drifting between the upgrade margin (32) and the downgrade margin (96)
	// never flips a Full citizen.
	for i := 0; i < 10; i++ {
		placeOutside(c, 40)
		AssignLod(c, v)
		placeOutside(c, 90)
		AssignLod(c, v)
		if c.Lod != LodFull {
			t.Fatalf("oscillation inside the dead band demoted to %v", c.Lod)
		}
	}

	placeOutside(c, 100)
	AssignLod(c, v)
	if c.Lod != LodSimplified {
		t.Fatalf("tier = %v past the downgrade margin, want simplified", c.Lod)
	}

	// Simplified holds across the whole band between both margins.
	for i := 0; i < 10; i++ {
		placeOutside(c, 40)
		AssignLod(c, v)
		placeOutside(c, 380)
		AssignLod(c, v)
		if c.Lod != LodSimplified {
			t.Fatalf("simplified citizen flipped to %v inside the dead band", c.Lod)
		}
	}

	placeOutside(c, 30)
	AssignLod(c, v)
	if c.Lod != LodFull {
		t.Fatalf("tier = %v back inside the upgrade margin, want full", c.Lod)
	}
}

func TestLodAbstractCompression(t *testing.T) {
	v := testViewport()
	c := &Citizen{}
	c.Details.Age = 42
	c.Details.Happiness = 77

	placeOutside(c, 400)
	AssignLod(c, v) // full -> simplified
	AssignLod(c, v) // simplified -> abstract
	if c.Lod != LodAbstract {
		t.Fatalf("tier = %v far outside the viewport, want abstract", c.Lod)
	}
	if c.Compressed == nil {
		t.Fatal("abstract citizen has no compressed marker")
	}
	if c.Compressed.Age != 42 || c.Compressed.Happiness != 77 {
		t.Fatalf("compressed marker = %+v, want age 42 happiness 77", c.Compressed)
	}
	if c.Compressed.GridX != uint16(c.PosX/16) || c.Compressed.GridY != uint16(c.PosY/16) {
		t.Fatalf("compressed position = (%d, %d)", c.Compressed.GridX, c.Compressed.GridY)
	}

	placeOutside(c, 200)
	AssignLod(c, v)
	if c.Lod != LodSimplified {
		t.Fatalf("tier = %v inside the simplified upgrade margin, want simplified", c.Lod)
	}
	if c.Compressed != nil {
		t.Fatal("compressed marker survived decompression")
	}
}

func TestHeadlessViewportAbstractsEveryone(t *testing.T) {
	c := &Citizen{PosX: 500, PosY: 500}
	AssignLod(c, Viewport{})
	if c.Lod != LodAbstract {
		t.Fatalf("tier = %v with no viewport, want abstract", c.Lod)
	}
	if c.Compressed == nil {
		t.Fatal("abstract citizen has no compressed marker")
	}
}

func TestVirtualPopulationConservation(t *testing.T) {
	var vp VirtualPopulation
	vp.Absorb(3, 1000)
	if vp.Total != 1000 || vp.PerDistrict[3] != 1000 {
		t.Fatalf("absorb: total %d district %d", vp.Total, vp.PerDistrict[3])
	}

	got := vp.Materialize(3, 300)
	if got != 300 || vp.Total != 700 || vp.PerDistrict[3] != 700 {
		t.Fatalf("materialize: got %d total %d district %d", got, vp.Total, vp.PerDistrict[3])
	}

	// Cannot materialize more than the district holds.
	got = vp.Materialize(3, 10000)
	if got != 700 || vp.Total != 0 {
		t.Fatalf("over-materialize: got %d total %d", got, vp.Total)
	}
}
