// Package grid provides the fixed-size world grid, per-cell scalar fields,
// and the coarse district overlay.
package grid

import "fmt"

// CellType is the exclusive terrain kind of a cell.
type CellType uint8

const (
	CellGrass CellType = iota
	CellWater
	CellRoad
)

// ZoneType is the zoning label painted on a cell.
type ZoneType uint8

const (
	ZoneNone ZoneType = iota
	ZoneResidentialLow
	ZoneResidentialHigh
	ZoneCommercial
	ZoneIndustrial
	ZoneOffice
)

// ZoneCategory groups zone types into the four demand categories.
type ZoneCategory uint8

const (
	CatResidential ZoneCategory = iota
	CatCommercial
	CatIndustrial
	CatOffice
	NumZoneCategories
)

// Category maps a zone type to its demand category.
// ZoneNone maps to CatResidential; callers must check for ZoneNone first.
func (z ZoneType) Category() ZoneCategory {
	switch z {
	case ZoneResidentialLow, ZoneResidentialHigh:
		return CatResidential
	case ZoneCommercial:
		return CatCommercial
	case ZoneIndustrial:
		return CatIndustrial
	case ZoneOffice:
		return CatOffice
	}
	return CatResidential
}

// RoadType identifies the tier of road on a road cell.
type RoadType uint8

const (
	RoadNone RoadType = iota
	RoadLocal
	RoadAvenue
	RoadHighway
)

// BaseCost returns the base traversal cost for pathfinding edge weights.
// Higher-tier roads are cheaper to traverse.
func (r RoadType) BaseCost() uint32 {
	switch r {
	case RoadLocal:
		return 10
	case RoadAvenue:
		return 6
	case RoadHighway:
		return 4
	}
	return 10
}

// ConstructionCost is the price per rasterized cell at placement.
func (r RoadType) ConstructionCost() float64 {
	switch r {
	case RoadLocal:
		return 10
	case RoadAvenue:
		return 25
	case RoadHighway:
		return 50
	}
	return 10
}

// Speed returns nominal travel speed in cells per second.
func (r RoadType) Speed() float32 {
	switch r {
	case RoadLocal:
		return 3.0
	case RoadAvenue:
		return 5.0
	case RoadHighway:
		return 8.0
	}
	return 3.0
}

// Capacity returns nominal traffic capacity used for congestion grading.
func (r RoadType) Capacity() float32 {
	switch r {
	case RoadLocal:
		return 20
	case RoadAvenue:
		return 50
	case RoadHighway:
		return 120
	}
	return 20
}

// Coord is a cell position on the grid.
type Coord struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
}

// World boundary defaults. Width/height are configurable through Params;
// everything else is fixed.
const (
	DefaultWidth  = 256
	DefaultHeight = 256
	CellSize      = 16.0 // world units per cell side
	DistrictsX    = 16
	DistrictsY    = 16
)

// Grid is the fixed W×H cell raster plus all parallel scalar fields, stored
// as flat arrays keyed by cell index (y*W+x).
type Grid struct {
	Width  int
	Height int

	Cells     []CellType
	Elevation []float32
	Zone      []ZoneType
	Road      []RoadType

	// BuildingID is set only for cells covered by an existing building's
	// footprint. 0 means no building.
	BuildingID []uint32

	// Derived utility flags, rebuilt by propagation.
	HasPower []bool
	HasWater []bool
	Heated   []bool

	// RoadDamaged marks road cells buckled by sustained extreme heat.
	RoadDamaged []bool

	// Scalar intensity fields.
	Pollution []float32
	Noise     []float32
	LandValue []uint8 // 0..255
	Traffic   []float32

	// Coverage is the legacy bitflag service coverage (one bit per category).
	Coverage []uint16

	// EducationLevel is the schooling tier available at each cell (0..3).
	EducationLevel []uint8
}

// New creates an empty grid of the given dimensions with all cells grass.
func New(w, h int) *Grid {
	n := w * h
	return &Grid{
		Width:          w,
		Height:         h,
		Cells:          make([]CellType, n),
		Elevation:      make([]float32, n),
		Zone:           make([]ZoneType, n),
		Road:           make([]RoadType, n),
		BuildingID:     make([]uint32, n),
		HasPower:       make([]bool, n),
		HasWater:       make([]bool, n),
		Heated:         make([]bool, n),
		RoadDamaged:    make([]bool, n),
		Pollution:      make([]float32, n),
		Noise:          make([]float32, n),
		LandValue:      make([]uint8, n),
		Traffic:        make([]float32, n),
		Coverage:       make([]uint16, n),
		EducationLevel: make([]uint8, n),
	}
}

// Idx returns the flat index for (x, y). Callers must bounds-check first.
func (g *Grid) Idx(x, y int) int {
	return y*g.Width + x
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// IsRoad reports whether the cell at (x, y) is a road cell.
func (g *Grid) IsRoad(x, y int) bool {
	return g.InBounds(x, y) && g.Cells[g.Idx(x, y)] == CellRoad
}

// RoadTypeAt returns the road type at (x, y), or RoadNone for non-road cells.
func (g *Grid) RoadTypeAt(x, y int) RoadType {
	if !g.IsRoad(x, y) {
		return RoadNone
	}
	return g.Road[g.Idx(x, y)]
}

// Neighbors4 appends the in-bounds 4-neighbors of (x, y) to dst and returns it.
func (g *Grid) Neighbors4(x, y int, dst [][2]int) [][2]int {
	if x > 0 {
		dst = append(dst, [2]int{x - 1, y})
	}
	if x+1 < g.Width {
		dst = append(dst, [2]int{x + 1, y})
	}
	if y > 0 {
		dst = append(dst, [2]int{x, y - 1})
	}
	if y+1 < g.Height {
		dst = append(dst, [2]int{x, y + 1})
	}
	return dst
}

// AdjacentToRoad reports whether any 4-neighbor of (x, y) is a road cell.
func (g *Grid) AdjacentToRoad(x, y int) bool {
	return g.IsRoad(x-1, y) || g.IsRoad(x+1, y) || g.IsRoad(x, y-1) || g.IsRoad(x, y+1)
}

// CellToWorld returns the world-space center of a cell.
func CellToWorld(x, y int) (float32, float32) {
	return (float32(x) + 0.5) * CellSize, (float32(y) + 0.5) * CellSize
}

// WorldToCell returns the cell containing a world-space point.
func WorldToCell(wx, wy float32) (int, int) {
	return int(wx / CellSize), int(wy / CellSize)
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.Width, g.Height)
}
