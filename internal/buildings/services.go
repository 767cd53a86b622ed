package buildings

import "github.com/dzautner/megacity/internal/grid"

// ServiceType enumerates placeable service buildings.
type ServiceType uint8

const (
	SvcHospital ServiceType = iota
	SvcClinic
	SvcElementarySchool
	SvcHighSchool
	SvcUniversity
	SvcPoliceStation
	SvcFireStation
	SvcSmallPark
	SvcLargePark
	SvcPlayground
	SvcStadium
	SvcPlaza
	SvcTelecomTower
	SvcBusDepot
	SvcCemetery
	SvcCrematorium
	SvcLandfill
	SvcRecyclingCenter
	SvcIncinerator
	SvcTransferStation
	SvcHazWasteTreatment
	SvcPostOffice
	SvcMailSortingCenter
	SvcCityHall
	SvcAirport
)

// DefaultRadius returns the coverage radius in world units.
func (s ServiceType) DefaultRadius() float32 {
	switch s {
	case SvcHospital:
		return 50 * grid.CellSize
	case SvcClinic:
		return 25 * grid.CellSize
	case SvcElementarySchool, SvcHighSchool:
		return 30 * grid.CellSize
	case SvcUniversity:
		return 60 * grid.CellSize
	case SvcPoliceStation:
		return 40 * grid.CellSize
	case SvcFireStation:
		return 35 * grid.CellSize
	case SvcSmallPark, SvcPlayground:
		return 10 * grid.CellSize
	case SvcLargePark:
		return 20 * grid.CellSize
	case SvcStadium:
		return 45 * grid.CellSize
	case SvcPlaza:
		return 15 * grid.CellSize
	case SvcTelecomTower:
		return 55 * grid.CellSize
	case SvcBusDepot:
		return 40 * grid.CellSize
	case SvcCemetery, SvcCrematorium:
		return 30 * grid.CellSize
	case SvcLandfill, SvcRecyclingCenter, SvcIncinerator, SvcTransferStation:
		return 35 * grid.CellSize
	case SvcHazWasteTreatment:
		return 40 * grid.CellSize
	case SvcPostOffice:
		return 25 * grid.CellSize
	case SvcMailSortingCenter:
		return 50 * grid.CellSize
	case SvcCityHall:
		return 60 * grid.CellSize
	case SvcAirport:
		return 80 * grid.CellSize
	}
	return 30 * grid.CellSize
}

// DefaultCapacity returns patients/pupils/plots served at full effectiveness.
func (s ServiceType) DefaultCapacity() int {
	switch s {
	case SvcHospital:
		return 500
	case SvcClinic:
		return 120
	case SvcElementarySchool:
		return 300
	case SvcHighSchool:
		return 400
	case SvcUniversity:
		return 1500
	case SvcCemetery:
		return 1000 // plots
	case SvcCrematorium:
		return 200 // queue slots
	case SvcStadium:
		return 2000
	default:
		return 250
	}
}

// DefaultVehicles returns the dispatchable vehicle pool size.
func (s ServiceType) DefaultVehicles() int {
	switch s {
	case SvcFireStation:
		return 4
	case SvcPoliceStation:
		return 6
	case SvcHospital:
		return 5
	case SvcClinic:
		return 1
	default:
		return 0
	}
}

// PlacementCost is the one-off construction price charged at placement.
func (s ServiceType) PlacementCost() float64 {
	switch s {
	case SvcHospital:
		return 8000
	case SvcClinic:
		return 2000
	case SvcElementarySchool:
		return 3000
	case SvcHighSchool:
		return 4000
	case SvcUniversity:
		return 10000
	case SvcPoliceStation:
		return 3500
	case SvcFireStation:
		return 4000
	case SvcSmallPark, SvcPlayground:
		return 500
	case SvcLargePark:
		return 1500
	case SvcStadium:
		return 15000
	case SvcPlaza:
		return 800
	case SvcTelecomTower:
		return 5000
	case SvcBusDepot:
		return 4000
	case SvcCemetery:
		return 2000
	case SvcCrematorium:
		return 3000
	case SvcLandfill:
		return 1500
	case SvcRecyclingCenter:
		return 4000
	case SvcIncinerator:
		return 6000
	case SvcTransferStation:
		return 2500
	case SvcHazWasteTreatment:
		return 7000
	case SvcPostOffice:
		return 1500
	case SvcMailSortingCenter:
		return 4000
	case SvcCityHall:
		return 12000
	case SvcAirport:
		return 40000
	}
	return 2000
}

// MonthlyMaintenance is the upkeep cost deducted from the treasury.
func (s ServiceType) MonthlyMaintenance() float64 {
	switch s {
	case SvcHospital:
		return 2400
	case SvcUniversity:
		return 3000
	case SvcAirport:
		return 5000
	case SvcStadium:
		return 2000
	case SvcSmallPark, SvcPlayground, SvcPlaza:
		return 150
	case SvcLargePark:
		return 400
	default:
		return 800
	}
}

// Service is a placed service building.
type Service struct {
	ID       ID          `json:"id"`
	Type     ServiceType `json:"type"`
	X        int         `json:"x"`
	Y        int         `json:"y"`
	Radius   float32     `json:"radius"`
	Capacity int         `json:"capacity"`
	// Load is the current demand on the building (patients, pupils,
	// bodies, tonnes), maintained by the owning subsystem.
	Load int `json:"load"`
	// Vehicles available for dispatch (not currently en route).
	Vehicles int `json:"vehicles"`

	alive bool
}

// Effectiveness degrades linearly once load exceeds capacity, floored at 0.25.
func (s *Service) Effectiveness() float32 {
	if s.Capacity <= 0 || s.Load <= s.Capacity {
		return 1.0
	}
	ratio := float32(s.Load) / float32(s.Capacity)
	eff := 1.0 - (ratio-1.0)*0.5
	if eff < 0.25 {
		eff = 0.25
	}
	return eff
}

// ServiceStore holds service buildings.
type ServiceStore struct {
	items []Service
	free  []uint32
	count int
}

// NewServiceStore creates an empty store.
func NewServiceStore() *ServiceStore {
	return &ServiceStore{}
}

// Place creates a service building at (x, y).
func (s *ServiceStore) Place(g *grid.Grid, t ServiceType, x, y int) *Service {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.items = append(s.items, Service{})
		idx = uint32(len(s.items) - 1)
	}
	svc := Service{
		ID:       ID(idx + 1),
		Type:     t,
		X:        x,
		Y:        y,
		Radius:   t.DefaultRadius(),
		Capacity: t.DefaultCapacity(),
		Vehicles: t.DefaultVehicles(),
		alive:    true,
	}
	s.items[idx] = svc
	s.count++
	g.BuildingID[g.Idx(x, y)] = uint32(svc.ID) | serviceIDBit
	return &s.items[idx]
}

// serviceIDBit distinguishes service building references in grid.BuildingID
// from zone building references.
const serviceIDBit = 1 << 31

// Get returns the service with the given ID, or nil.
func (s *ServiceStore) Get(id ID) *Service {
	if id == 0 || int(id) > len(s.items) {
		return nil
	}
	svc := &s.items[id-1]
	if !svc.alive {
		return nil
	}
	return svc
}

// Remove despawns a service building.
func (s *ServiceStore) Remove(g *grid.Grid, id ID) {
	svc := s.Get(id)
	if svc == nil {
		return
	}
	g.BuildingID[g.Idx(svc.X, svc.Y)] = 0
	svc.alive = false
	s.free = append(s.free, uint32(id-1))
	s.count--
}

// Count returns the number of live service buildings.
func (s *ServiceStore) Count() int { return s.count }

// ForEach calls fn for every live service building.
func (s *ServiceStore) ForEach(fn func(*Service)) {
	for i := range s.items {
		if s.items[i].alive {
			fn(&s.items[i])
		}
	}
}

// UtilityKind is the resource a utility building supplies.
type UtilityKind uint8

const (
	UtilityPower UtilityKind = iota
	UtilityWater
	UtilityHeating
)

// UtilityType enumerates placeable utility sources.
type UtilityType uint8

const (
	UtilPowerPlant UtilityType = iota
	UtilSolarFarm
	UtilWaterTower
	UtilWaterTreatment
	UtilHeatingPlant
)

// Kind maps a utility type to the resource it supplies.
func (u UtilityType) Kind() UtilityKind {
	switch u {
	case UtilPowerPlant, UtilSolarFarm:
		return UtilityPower
	case UtilWaterTower, UtilWaterTreatment:
		return UtilityWater
	case UtilHeatingPlant:
		return UtilityHeating
	}
	return UtilityPower
}

// RangeCells is the propagation range in grid cells.
func (u UtilityType) RangeCells() int {
	switch u {
	case UtilPowerPlant:
		return 80
	case UtilSolarFarm:
		return 40
	case UtilWaterTower:
		return 60
	case UtilWaterTreatment:
		return 90
	case UtilHeatingPlant:
		return 50
	}
	return 50
}

// PlacementCost is the one-off construction price charged at placement.
func (u UtilityType) PlacementCost() float64 {
	switch u {
	case UtilPowerPlant:
		return 7500
	case UtilSolarFarm:
		return 4000
	case UtilWaterTower:
		return 2500
	case UtilWaterTreatment:
		return 6000
	case UtilHeatingPlant:
		return 5000
	}
	return 2500
}

// MonthlyOperatingCost deducted from the treasury.
func (u UtilityType) MonthlyOperatingCost() float64 {
	switch u {
	case UtilPowerPlant:
		return 2000
	case UtilSolarFarm:
		return 600
	case UtilWaterTower:
		return 500
	case UtilWaterTreatment:
		return 1500
	case UtilHeatingPlant:
		return 1200
	}
	return 500
}

// PollutionOutput per slow tick at the source cell.
func (u UtilityType) PollutionOutput() float32 {
	switch u {
	case UtilPowerPlant:
		return 30
	case UtilHeatingPlant:
		return 12
	default:
		return 0
	}
}

// Utility is a placed utility source.
type Utility struct {
	ID    ID          `json:"id"`
	Type  UtilityType `json:"type"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Range int         `json:"range"` // cells
	alive bool
}

// UtilityStore holds utility buildings.
type UtilityStore struct {
	items []Utility
	free  []uint32
	count int
}

// NewUtilityStore creates an empty store.
func NewUtilityStore() *UtilityStore {
	return &UtilityStore{}
}

// Place creates a utility source at (x, y).
func (s *UtilityStore) Place(g *grid.Grid, t UtilityType, x, y int) *Utility {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.items = append(s.items, Utility{})
		idx = uint32(len(s.items) - 1)
	}
	u := Utility{
		ID:    ID(idx + 1),
		Type:  t,
		X:     x,
		Y:     y,
		Range: t.RangeCells(),
		alive: true,
	}
	s.items[idx] = u
	s.count++
	return &s.items[idx]
}

// Get returns the utility with the given ID, or nil.
func (s *UtilityStore) Get(id ID) *Utility {
	if id == 0 || int(id) > len(s.items) {
		return nil
	}
	u := &s.items[id-1]
	if !u.alive {
		return nil
	}
	return u
}

// Remove despawns a utility source.
func (s *UtilityStore) Remove(id ID) {
	u := s.Get(id)
	if u == nil {
		return
	}
	u.alive = false
	s.free = append(s.free, uint32(id-1))
	s.count--
}

// Count returns the number of live utilities.
func (s *UtilityStore) Count() int { return s.count }

// ForEach calls fn for every live utility.
func (s *UtilityStore) ForEach(fn func(*Utility)) {
	for i := range s.items {
		if s.items[i].alive {
			fn(&s.items[i])
		}
	}
}
