package citizens

// Viewport is the renderer-provided view bounds in world units. In headless
// mode Active stays false and every citizen settles at the Abstract tier.
type Viewport struct {
	Active bool
	MinX   float32
	MinY   float32
	MaxX   float32
	MaxY   float32
}

// Hysteresis margins in world units. Upgrade margins are smaller than
// downgrade margins so citizens near a boundary do not oscillate between
// tiers.
const (
	fullUpgradeMargin        = 32.0
	fullDowngradeMargin      = 96.0
	simplifiedUpgradeMargin  = 256.0
	simplifiedDowngradeMargin = 384.0
)

// distanceOutside returns how far (x, y) lies outside the viewport rectangle
// (0 when inside), using the Chebyshev metric.
func (v Viewport) distanceOutside(x, y float32) float32 {
	var dx, dy float32
	if x < v.MinX {
		dx = v.MinX - x
	} else if x > v.MaxX {
		dx = x - v.MaxX
	}
	if y < v.MinY {
		dy = v.MinY - y
	} else if y > v.MaxY {
		dy = y - v.MaxY
	}
	if dx > dy {
		return dx
	}
	return dy
}

// AssignLod updates a citizen's LOD tier with hysteresis against the
// viewport and maintains the compressed marker on Abstract transitions.
func AssignLod(c *Citizen, v Viewport) {
	if !v.Active {
		setLod(c, LodAbstract)
		return
	}

	d := v.distanceOutside(c.PosX, c.PosY)

	switch c.Lod {
	case LodFull:
		if d > fullDowngradeMargin {
			setLod(c, LodSimplified)
		}
	case LodSimplified:
		if d <= fullUpgradeMargin {
			setLod(c, LodFull)
		} else if d > simplifiedDowngradeMargin {
			setLod(c, LodAbstract)
		}
	case LodAbstract:
		if d <= simplifiedUpgradeMargin {
			setLod(c, LodSimplified)
		}
	}
}

func setLod(c *Citizen, tier LodTier) {
	if c.Lod == tier {
		return
	}
	c.Lod = tier
	if tier == LodAbstract {
		happiness := c.Details.Happiness
		if happiness > 255 {
			happiness = 255
		}
		age := c.Details.Age
		if age > 255 {
			age = 255
		}
		c.Compressed = &Compressed{
			GridX:     uint16(c.PosX / 16.0),
			GridY:     uint16(c.PosY / 16.0),
			State:     uint8(c.State),
			Age:       uint8(age),
			Happiness: uint8(happiness),
		}
	} else {
		c.Compressed = nil
	}
}

// VirtualPopulation counts Tier 3 statistical citizens, never materialized
// as entities, plus per-district demographic tallies.
type VirtualPopulation struct {
	Total       int64                 `json:"total"`
	PerDistrict [256]int64            `json:"per_district"`
	Births      int64                 `json:"births"`
	Deaths      int64                 `json:"deaths"`
}

// Drift applies daily statistical births/deaths/moves. Rates are small; the
// happiness average pulls growth positive or negative.
func (v *VirtualPopulation) Drift(avgHappiness float32) {
	if v.Total <= 0 {
		return
	}
	growth := (float64(avgHappiness) - 50.0) / 50.0 * 0.001 // ±0.1%/day
	delta := int64(float64(v.Total) * growth)
	if delta > 0 {
		v.Births += delta
	} else {
		v.Deaths += -delta
	}
	v.Total += delta
	if v.Total < 0 {
		v.Total = 0
	}
}

// Materialize converts n statistical citizens from a district into entity
// headroom; the caller spawns Abstract-tier entities for them. Totals are
// preserved: the returned count is exactly what was removed.
func (v *VirtualPopulation) Materialize(district int, n int64) int64 {
	if district < 0 || district >= len(v.PerDistrict) {
		return 0
	}
	if v.PerDistrict[district] < n {
		n = v.PerDistrict[district]
	}
	v.PerDistrict[district] -= n
	v.Total -= n
	return n
}

// Absorb converts entity citizens back into the statistical pool.
func (v *VirtualPopulation) Absorb(district int, n int64) {
	if district < 0 || district >= len(v.PerDistrict) {
		return
	}
	v.PerDistrict[district] += n
	v.Total += n
}
