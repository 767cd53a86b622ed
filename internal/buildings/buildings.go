// Package buildings holds zone buildings (with job slots), service
// buildings, and utility buildings, each in an index-stable store.
package buildings

import (
	"github.com/dzautner/megacity/internal/grid"
)

// ID identifies a zone building. 0 is reserved for "no building".
type ID uint32

// ConstructionTicks is how long a freshly spawned building stays under
// construction. Occupants are forced to zero for the duration.
const ConstructionTicks = 100

// MaxLevel caps building growth.
const MaxLevel = 5

// JobType classifies a job slot and sets its salary multiplier.
type JobType uint8

const (
	JobLabor JobType = iota
	JobService
	JobSkilled
	JobProfessional
	JobExecutive
)

// SalaryMultiplier applied on top of the worker's education base salary.
func (j JobType) SalaryMultiplier() float32 {
	switch j {
	case JobLabor:
		return 0.8
	case JobService:
		return 1.0
	case JobSkilled:
		return 1.3
	case JobProfessional:
		return 1.8
	case JobExecutive:
		return 2.5
	}
	return 1.0
}

// RequiredEducation is the minimum education level for the job type.
func (j JobType) RequiredEducation() uint8 {
	switch j {
	case JobLabor, JobService:
		return 0
	case JobSkilled:
		return 1
	case JobProfessional:
		return 2
	case JobExecutive:
		return 3
	}
	return 0
}

// JobSlot is one position at a workplace building.
type JobSlot struct {
	Filled  bool    `json:"filled"`
	Citizen uint32  `json:"citizen"` // citizen ID occupying the slot
	Type    JobType `json:"type"`
}

// Building is a grown zone building.
type Building struct {
	ID        ID            `json:"id"`
	Zone      grid.ZoneType `json:"zone"`
	Level     uint8         `json:"level"` // 1..5
	X         int           `json:"x"`
	Y         int           `json:"y"`
	Capacity  int           `json:"capacity"`
	Occupants int           `json:"occupants"`

	// ConstructionRemaining counts down to operational; >0 means under
	// construction and occupants are pinned to zero.
	ConstructionRemaining float32 `json:"construction_remaining"`

	// LowOccupancySlowTicks counts consecutive slow ticks with occupancy
	// below the demotion floor.
	LowOccupancySlowTicks uint8 `json:"low_occupancy_slow_ticks"`

	// Jobs is populated for commercial/industrial/office buildings.
	Jobs []JobSlot `json:"jobs,omitempty"`

	alive bool
}

// UnderConstruction reports whether the building is still being built.
func (b *Building) UnderConstruction() bool {
	return b.ConstructionRemaining > 0
}

// IsWorkplace reports whether the building offers jobs.
func (b *Building) IsWorkplace() bool {
	return b.Zone.Category() != grid.CatResidential
}

// OpenSlot returns the index of a vacant job slot matching the education
// level, or -1.
func (b *Building) OpenSlot(education uint8) int {
	for i := range b.Jobs {
		if !b.Jobs[i].Filled && b.Jobs[i].Type.RequiredEducation() <= education {
			return i
		}
	}
	return -1
}

// CapacityFor returns resident or job capacity by zone and level.
func CapacityFor(zone grid.ZoneType, level uint8) int {
	l := int(level)
	switch zone {
	case grid.ZoneResidentialLow:
		return 4 * l
	case grid.ZoneResidentialHigh:
		return 12 * l
	case grid.ZoneCommercial:
		return 6 * l
	case grid.ZoneIndustrial:
		return 8 * l
	case grid.ZoneOffice:
		return 10 * l
	}
	return 0
}

// makeJobs builds the slot vector for a workplace. The job mix shifts toward
// higher types with building level.
func makeJobs(zone grid.ZoneType, level uint8, capacity int) []JobSlot {
	jobs := make([]JobSlot, capacity)
	for i := range jobs {
		var t JobType
		switch zone {
		case grid.ZoneIndustrial:
			t = JobLabor
			if i%4 == 3 {
				t = JobSkilled
			}
		case grid.ZoneCommercial:
			t = JobService
			if i%5 == 4 {
				t = JobSkilled
			}
		case grid.ZoneOffice:
			t = JobSkilled
			if i%3 == 2 {
				t = JobProfessional
			}
			if level >= 4 && i%7 == 6 {
				t = JobExecutive
			}
		}
		jobs[i] = JobSlot{Type: t}
	}
	return jobs
}

// Store holds zone buildings with stable IDs and a free list.
type Store struct {
	items []Building
	free  []uint32
	count int
}

// NewStore creates an empty building store.
func NewStore() *Store {
	return &Store{}
}

// Spawn creates a level-1 building under construction at (x, y) and marks
// the grid cell with its ID.
func (s *Store) Spawn(g *grid.Grid, zone grid.ZoneType, x, y int) *Building {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.items = append(s.items, Building{})
		idx = uint32(len(s.items) - 1)
	}

	capacity := CapacityFor(zone, 1)
	b := Building{
		ID:                    ID(idx + 1),
		Zone:                  zone,
		Level:                 1,
		X:                     x,
		Y:                     y,
		Capacity:              capacity,
		ConstructionRemaining: ConstructionTicks,
		alive:                 true,
	}
	if b.IsWorkplace() {
		b.Jobs = makeJobs(zone, 1, capacity)
	}
	s.items[idx] = b
	s.count++
	g.BuildingID[g.Idx(x, y)] = uint32(b.ID)
	return &s.items[idx]
}

// Get returns the building with the given ID, or nil.
func (s *Store) Get(id ID) *Building {
	if id == 0 || int(id) > len(s.items) {
		return nil
	}
	b := &s.items[id-1]
	if !b.alive {
		return nil
	}
	return b
}

// Remove despawns a building and clears its grid cell.
func (s *Store) Remove(g *grid.Grid, id ID) {
	b := s.Get(id)
	if b == nil {
		return
	}
	g.BuildingID[g.Idx(b.X, b.Y)] = 0
	b.alive = false
	s.free = append(s.free, uint32(id-1))
	s.count--
}

// Count returns the number of live buildings.
func (s *Store) Count() int { return s.count }

// ForEach calls fn for every live building.
func (s *Store) ForEach(fn func(*Building)) {
	for i := range s.items {
		if s.items[i].alive {
			fn(&s.items[i])
		}
	}
}

// SetLevel re-levels a building, resizing capacity and job slots. Occupants
// above the new capacity are not evicted here; the lifecycle system
// reconciles them.
func (b *Building) SetLevel(level uint8) {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	b.Level = level
	b.Capacity = CapacityFor(b.Zone, level)
	if b.IsWorkplace() {
		old := b.Jobs
		b.Jobs = makeJobs(b.Zone, level, b.Capacity)
		// Preserve filled slots where they fit.
		for i := range old {
			if old[i].Filled && i < len(b.Jobs) {
				b.Jobs[i].Filled = true
				b.Jobs[i].Citizen = old[i].Citizen
			}
		}
	}
}
