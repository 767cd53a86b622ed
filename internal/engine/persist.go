package engine

import (
	"log/slog"
	"strconv"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/civic"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/pathfind"
	"github.com/dzautner/megacity/internal/roads"
	"github.com/dzautner/megacity/internal/save"
	"github.com/dzautner/megacity/internal/services"
)

// BuildSaveRegistry wires the world's persistent state into save blobs.
// Registration order is load order: grid first, then roads and buildings,
// then citizens, so each loader can resolve references the previous one
// installed. Derived state (utility supply, coverage, the CSR graph,
// traffic, paths) is not saved; the first post-load tick rebuilds it.
func (w *World) BuildSaveRegistry() *save.Registry {
	reg := save.NewRegistry(w.Params.SaveVersion)

	reg.Register(save.Func{Key: "params",
		Save: func() ([]byte, bool) { return save.Encode(w.Params) },
		Load: func(data []byte) error { return save.Decode(data, &w.Params) },
	})
	reg.Register(save.Func{Key: "clock",
		Save: func() ([]byte, bool) { return save.Encode(w.Clock) },
		Load: func(data []byte) error { return save.Decode(data, &w.Clock) },
	})

	reg.Register(save.Func{Key: "grid", Save: w.saveGrid, Load: w.loadGrid})
	reg.Register(save.Func{Key: "roads", Save: w.saveRoads, Load: w.loadRoads})
	reg.Register(save.Func{Key: "buildings", Save: w.saveBuildings, Load: w.loadBuildings})
	reg.Register(save.Func{Key: "citizens", Save: w.saveCitizens, Load: w.loadCitizens})

	reg.Register(save.Func{Key: "districts",
		Save: func() ([]byte, bool) { return save.Encode(w.Districts.Policies) },
		Load: func(data []byte) error { return save.Decode(data, &w.Districts.Policies) },
	})
	reg.Register(save.Func{Key: "demand",
		Save: func() ([]byte, bool) { return save.Encode(w.Demand) },
		Load: func(data []byte) error { return save.Decode(data, w.Demand) },
	})
	reg.Register(save.Func{Key: "budget",
		Save: func() ([]byte, bool) { return save.Encode(w.Budget) },
		Load: func(data []byte) error { return save.Decode(data, w.Budget) },
	})
	reg.Register(save.Func{Key: "funding",
		Save: func() ([]byte, bool) { return save.Encode(w.Funding) },
		Load: func(data []byte) error { return save.Decode(data, &w.Funding) },
	})
	reg.Register(save.Func{Key: "weather",
		Save: func() ([]byte, bool) { return save.Encode(w.Weather) },
		Load: func(data []byte) error { return save.Decode(data, w.Weather) },
	})
	reg.Register(save.Func{Key: "civic", Save: w.saveCivic, Load: w.loadCivic})
	reg.Register(save.Func{Key: "sanitation", Save: w.saveSanitation, Load: w.loadSanitation})
	reg.Register(save.Func{Key: "virtual_population",
		Save: func() ([]byte, bool) { return save.Encode(w.Virtual) },
		Load: func(data []byte) error { return save.Decode(data, &w.Virtual) },
	})

	return reg
}

// SaveWorld writes the full world state to the database.
func SaveWorld(w *World, db *save.DB) error {
	if err := w.BuildSaveRegistry().SaveAll(db); err != nil {
		return err
	}
	return db.SetMeta("saved_at_tick", strconv.FormatUint(w.Clock.Ticks, 10))
}

// LoadWorld restores a world from the database. Blob order resolves
// cross-references; afterwards every derived cache is marked dirty so the
// first tick rebuilds propagation state.
func LoadWorld(db *save.DB) (*World, error) {
	p := DefaultParams()
	w := newWorldFromGrid(p, grid.New(p.Width, p.Height))
	if err := w.BuildSaveRegistry().LoadAll(db); err != nil {
		return nil, err
	}
	w.finishLoad()
	slog.Info("world loaded", "tick", w.Clock.Ticks,
		"population", w.Citizens.Count(), "buildings", w.Buildings.Count())
	return w, nil
}

// finishLoad rebuilds everything derived from the restored rasters.
func (w *World) finishLoad() {
	w.CSR = roads.BuildCSR(w.Grid)
	w.Snapshot = pathfind.NewSnapshot(w.CSR, w.Grid.Traffic, w.Grid.Width)
	w.Roads.Dirty = true
	w.Eligible.Dirty = true
	w.UtilityNet.Dirty = true
	w.Coverage.Dirty = true
	w.Postal.Dirty = true
}

// gridBlob carries the raster fields worth keeping. Utility flags and
// coverage bits are derived and rebuilt on load.
type gridBlob struct {
	Width, Height int
	Cells         []grid.CellType
	Elevation     []float32
	Zone          []grid.ZoneType
	Road          []grid.RoadType
	RoadDamaged   []bool
	Pollution     []float32
	Noise         []float32
	LandValue     []uint8
	Traffic       []float32
}

func (w *World) saveGrid() ([]byte, bool) {
	g := w.Grid
	return save.Encode(gridBlob{
		Width: g.Width, Height: g.Height,
		Cells: g.Cells, Elevation: g.Elevation, Zone: g.Zone, Road: g.Road,
		RoadDamaged: g.RoadDamaged, Pollution: g.Pollution, Noise: g.Noise,
		LandValue: g.LandValue, Traffic: g.Traffic,
	})
}

func (w *World) loadGrid(data []byte) error {
	var b gridBlob
	if err := save.Decode(data, &b); err != nil {
		return err
	}
	g := grid.New(b.Width, b.Height)
	copy(g.Cells, b.Cells)
	copy(g.Elevation, b.Elevation)
	copy(g.Zone, b.Zone)
	copy(g.Road, b.Road)
	copy(g.RoadDamaged, b.RoadDamaged)
	copy(g.Pollution, b.Pollution)
	copy(g.Noise, b.Noise)
	copy(g.LandValue, b.LandValue)
	copy(g.Traffic, b.Traffic)
	w.Grid = g

	// Size-dependent structures follow the restored dimensions.
	w.Districts = grid.NewDistricts(g.Width, g.Height)
	w.Coverage = services.NewHybridGrid(g.Width, g.Height)
	w.Postal = civic.NewPostal(g)
	w.pollutionScratch = make([]float32, g.Width*g.Height)
	return nil
}

type segmentRec struct {
	Control [4]roads.Vec2
	Type    grid.RoadType
}

func (w *World) saveRoads() ([]byte, bool) {
	recs := make([]segmentRec, 0, len(w.Roads.Segments))
	for _, seg := range w.Roads.Segments {
		recs = append(recs, segmentRec{Control: seg.Control, Type: seg.Type})
	}
	return save.Encode(recs)
}

// loadRoads replays every segment into a fresh store. The grid cells are
// already roads from the grid blob, so re-adding only rebuilds claims,
// nodes, and arc lengths. Segment IDs are not preserved.
func (w *World) loadRoads(data []byte) error {
	var recs []segmentRec
	if err := save.Decode(data, &recs); err != nil {
		return err
	}
	w.Roads = roads.NewStore()
	for _, r := range recs {
		w.Roads.AddSegment(w.Grid, r.Control[0], r.Control[3], r.Control[1], r.Control[2], r.Type)
	}
	return nil
}

type buildingRec struct {
	Zone                  grid.ZoneType
	Level                 uint8
	X, Y                  int
	ConstructionRemaining float32
}

type serviceRec struct {
	Type buildings.ServiceType
	X, Y int
	Load int
}

type utilityRec struct {
	Type buildings.UtilityType
	X, Y int
}

type buildingsBlob struct {
	Buildings []buildingRec
	Services  []serviceRec
	Utilities []utilityRec
}

func (w *World) saveBuildings() ([]byte, bool) {
	var b buildingsBlob
	w.Buildings.ForEach(func(bd *buildings.Building) {
		b.Buildings = append(b.Buildings, buildingRec{
			Zone: bd.Zone, Level: bd.Level, X: bd.X, Y: bd.Y,
			ConstructionRemaining: bd.ConstructionRemaining,
		})
	})
	w.Services.ForEach(func(s *buildings.Service) {
		b.Services = append(b.Services, serviceRec{Type: s.Type, X: s.X, Y: s.Y, Load: s.Load})
	})
	w.Utilities.ForEach(func(u *buildings.Utility) {
		b.Utilities = append(b.Utilities, utilityRec{Type: u.Type, X: u.X, Y: u.Y})
	})
	return save.Encode(b)
}

// loadBuildings respawns every structure into fresh stores at its recorded
// cell. IDs are not preserved; the citizen loader resolves homes and jobs by
// cell position instead.
func (w *World) loadBuildings(data []byte) error {
	var b buildingsBlob
	if err := save.Decode(data, &b); err != nil {
		return err
	}
	w.Buildings = buildings.NewStore()
	w.Services = buildings.NewServiceStore()
	w.Utilities = buildings.NewUtilityStore()

	for _, r := range b.Buildings {
		nb := w.Buildings.Spawn(w.Grid, r.Zone, r.X, r.Y)
		nb.SetLevel(r.Level)
		nb.Occupants = 0 // restored as citizens load
		nb.ConstructionRemaining = r.ConstructionRemaining
	}
	for _, r := range b.Services {
		s := w.Services.Place(w.Grid, r.Type, r.X, r.Y)
		s.Load = r.Load
	}
	for _, r := range b.Utilities {
		w.Utilities.Place(w.Grid, r.Type, r.X, r.Y)
	}
	return nil
}

type citizenRec struct {
	HomeX, HomeY int
	// Workplace cell and slot; WorkX is -1 when unemployed.
	WorkX, WorkY, WorkSlot int

	Details       citizens.Details
	Personality   citizens.Personality
	Needs         citizens.Needs
	Tier          citizens.PopulationTier
	EnrolledStage int8
	TicksEnrolled uint32
}

func (w *World) saveCitizens() ([]byte, bool) {
	recs := make([]citizenRec, 0, w.Citizens.Count())
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		r := citizenRec{
			HomeX: c.HomeX, HomeY: c.HomeY,
			WorkX: -1,
			Details:       c.Details,
			Personality:   c.Personality,
			Needs:         c.Needs,
			Tier:          c.Tier,
			EnrolledStage: c.EnrolledStage,
			TicksEnrolled: c.TicksEnrolled,
		}
		if c.Work != nil {
			if b := w.Buildings.Get(c.Work.Building); b != nil {
				r.WorkX, r.WorkY, r.WorkSlot = b.X, b.Y, c.Work.Slot
			}
		}
		recs = append(recs, r)
	})
	return save.Encode(recs)
}

// loadCitizens respawns citizens into the buildings at their recorded home
// cells. Everyone restarts at home; commutes and paths resume naturally.
func (w *World) loadCitizens(data []byte) error {
	var recs []citizenRec
	if err := save.Decode(data, &recs); err != nil {
		return err
	}
	w.Citizens = citizens.NewStore()

	dropped := 0
	for _, r := range recs {
		home := w.buildingAtCell(r.HomeX, r.HomeY)
		c := w.Citizens.Spawn(home, w.RNG)
		if c == nil {
			dropped++
			continue
		}
		if r.WorkX >= 0 {
			if b := w.buildingAtCell(r.WorkX, r.WorkY); b != nil &&
				r.WorkSlot >= 0 && r.WorkSlot < len(b.Jobs) && !b.Jobs[r.WorkSlot].Filled {
				citizens.AssignJob(c, b, r.WorkSlot)
			}
		}

		// Details restore after job assignment: AssignJob recomputes the base
		// salary, but the saved figure carries seniority.
		c.Details = r.Details
		c.Personality = r.Personality
		c.Needs = r.Needs
		c.Tier = r.Tier
		c.EnrolledStage = r.EnrolledStage
		c.TicksEnrolled = r.TicksEnrolled
	}
	if dropped > 0 {
		slog.Warn("citizens dropped on load, home building missing or full", "count", dropped)
	}
	return nil
}

// buildingAtCell resolves a zone building reference from the grid raster.
func (w *World) buildingAtCell(x, y int) *buildings.Building {
	if !w.Grid.InBounds(x, y) {
		return nil
	}
	ref := w.Grid.BuildingID[w.Grid.Idx(x, y)]
	if ref == 0 || ref&(1<<31) != 0 {
		return nil
	}
	return w.Buildings.Get(buildings.ID(ref))
}

type civicBlob struct {
	CityHall  civic.CityHall
	Tourism   civic.Tourism
	Education civic.Pipeline
}

func (w *World) saveCivic() ([]byte, bool) {
	return save.Encode(civicBlob{CityHall: w.CityHall, Tourism: w.Tourism, Education: w.Education})
}

func (w *World) loadCivic(data []byte) error {
	var b civicBlob
	if err := save.Decode(data, &b); err != nil {
		return err
	}
	w.CityHall = b.CityHall
	w.Tourism = b.Tourism
	w.Education = b.Education
	return nil
}

// sanitationBlob keeps the lifetime counters. Per-building accumulation maps
// are keyed by store IDs, which a load does not preserve, so they restart
// empty.
type sanitationBlob struct {
	TotalGenerated float64
	TotalCollected float64
	HazFines       float64
	HazTreated     float64
	Buried         int
	Cremated       int
}

func (w *World) saveSanitation() ([]byte, bool) {
	return save.Encode(sanitationBlob{
		TotalGenerated: w.Waste.TotalGenerated,
		TotalCollected: w.Waste.TotalCollected,
		HazFines:       w.HazWaste.MonthlyFines,
		HazTreated:     w.HazWaste.TotalTreated,
		Buried:         w.DeathCare.Buried,
		Cremated:       w.DeathCare.Cremated,
	})
}

func (w *World) loadSanitation(data []byte) error {
	var b sanitationBlob
	if err := save.Decode(data, &b); err != nil {
		return err
	}
	w.Waste.TotalGenerated = b.TotalGenerated
	w.Waste.TotalCollected = b.TotalCollected
	w.HazWaste.MonthlyFines = b.HazFines
	w.HazWaste.TotalTreated = b.HazTreated
	w.DeathCare.Buried = b.Buried
	w.DeathCare.Cremated = b.Cremated
	return nil
}
