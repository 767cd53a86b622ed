package grid

// DistrictID indexes the fixed DistrictsX×DistrictsY overlay.
type DistrictID uint8

// DistrictPolicy holds per-district overrides applied on top of city-wide
// settings.
type DistrictPolicy struct {
	// TaxMultiplier scales the city tax rate per zone category (1.0 = no
	// override).
	TaxMultiplier [NumZoneCategories]float32 `json:"tax_multiplier"`
	// MaxBuildingLevel caps growth in this district (1..5).
	MaxBuildingLevel uint8 `json:"max_building_level"`
	// HeavyIndustryBanned blocks industrial spawns.
	HeavyIndustryBanned bool `json:"heavy_industry_banned"`
}

// DefaultDistrictPolicy returns the neutral policy.
func DefaultDistrictPolicy() DistrictPolicy {
	return DistrictPolicy{
		TaxMultiplier:    [NumZoneCategories]float32{1, 1, 1, 1},
		MaxBuildingLevel: 5,
	}
}

// DistrictStats holds aggregates recomputed at slow tick.
type DistrictStats struct {
	Population   int     `json:"population"`
	Buildings    int     `json:"buildings"`
	AvgLandValue float32 `json:"avg_land_value"`
	AvgPollution float32 `json:"avg_pollution"`
	Quality      float32 `json:"quality"` // derived 0..1 desirability score
}

// Districts is the coarse policy/statistics overlay. Every cell maps to
// exactly one district by integer division.
type Districts struct {
	CellsPerX int
	CellsPerY int
	Policies  [DistrictsX * DistrictsY]DistrictPolicy
	Stats     [DistrictsX * DistrictsY]DistrictStats
}

// NewDistricts creates the overlay for a grid of the given dimensions.
func NewDistricts(gridW, gridH int) *Districts {
	d := &Districts{
		CellsPerX: gridW / DistrictsX,
		CellsPerY: gridH / DistrictsY,
	}
	for i := range d.Policies {
		d.Policies[i] = DefaultDistrictPolicy()
	}
	return d
}

// IDAt returns the district containing cell (x, y).
func (d *Districts) IDAt(x, y int) DistrictID {
	dx := x / d.CellsPerX
	dy := y / d.CellsPerY
	if dx >= DistrictsX {
		dx = DistrictsX - 1
	}
	if dy >= DistrictsY {
		dy = DistrictsY - 1
	}
	return DistrictID(dy*DistrictsX + dx)
}

// PolicyAt returns the policy for the district containing cell (x, y).
func (d *Districts) PolicyAt(x, y int) *DistrictPolicy {
	return &d.Policies[d.IDAt(x, y)]
}
