// Package citizens provides the citizen entity store, lifecycle, needs,
// movement, and the level-of-detail population system.
package citizens

import (
	"math/rand"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// ID identifies a citizen. 0 is reserved.
type ID uint32

// MaxAge is the certain-death age in sim years.
const MaxAge = 100

// State is the citizen activity state machine.
type State uint8

const (
	StateAtHome State = iota
	StateCommutingToWork
	StateWorking
	StateCommutingHome
	StateCommutingToShop
	StateShopping
	StateCommutingToLeisure
	StateAtLeisure
)

// Commuting reports whether the state involves path-following movement.
func (s State) Commuting() bool {
	switch s {
	case StateCommutingToWork, StateCommutingHome, StateCommutingToShop, StateCommutingToLeisure:
		return true
	}
	return false
}

// PopulationTier is the economic stratum derived from needs satisfaction.
type PopulationTier uint8

const (
	TierBasic PopulationTier = iota
	TierComfort
	TierCommunity
	TierCultural
	TierAspirational
)

// EconomicMultiplier is the per-citizen contribution to city output.
func (t PopulationTier) EconomicMultiplier() float32 {
	switch t {
	case TierBasic:
		return 1.0
	case TierComfort:
		return 1.5
	case TierCommunity:
		return 2.5
	case TierCultural:
		return 4.0
	case TierAspirational:
		return 7.0
	}
	return 1.0
}

// Name returns the tier's display name.
func (t PopulationTier) Name() string {
	switch t {
	case TierBasic:
		return "Basic"
	case TierComfort:
		return "Comfort"
	case TierCommunity:
		return "Community"
	case TierCultural:
		return "Cultural"
	case TierAspirational:
		return "Aspirational"
	}
	return "Basic"
}

// LodTier is the level of simulation fidelity for a citizen entity.
type LodTier uint8

const (
	LodFull LodTier = iota
	LodSimplified
	LodAbstract
)

// Gender for demographics.
type Gender uint8

const (
	GenderMale Gender = iota
	GenderFemale
)

// Details holds demographic and economic attributes.
type Details struct {
	Age       uint16  `json:"age"` // sim-years
	Gender    Gender  `json:"gender"`
	Education uint8   `json:"education"` // 0..3
	Salary    float32 `json:"salary"`    // monthly income
	Savings   float32 `json:"savings"`
	Happiness float32 `json:"happiness"` // 0..100
	Health    float32 `json:"health"`    // 0..100
}

// BaseSalaryForEducation returns the base monthly salary before the job-type
// multiplier and seniority.
func BaseSalaryForEducation(education uint8) float32 {
	switch education {
	case 0:
		return 1500
	case 1:
		return 2200
	case 2:
		return 3500
	case 3:
		return 6000
	}
	return 8000
}

// Personality traits, each 0..1, sampled at spawn.
type Personality struct {
	Ambition    float32 `json:"ambition"`
	Sociability float32 `json:"sociability"`
	Materialism float32 `json:"materialism"`
	Resilience  float32 `json:"resilience"`
}

// Needs are fulfillment levels 0..100; lower values drive behavior.
type Needs struct {
	Hunger  float32 `json:"hunger"`
	Energy  float32 `json:"energy"`
	Social  float32 `json:"social"`
	Fun     float32 `json:"fun"`
	Comfort float32 `json:"comfort"`
}

// WorkRef points to the job slot a citizen holds.
type WorkRef struct {
	Building buildings.ID `json:"building"`
	Slot     int          `json:"slot"`
}

// Compressed is the packed marker added when a citizen enters the Abstract
// LOD tier. The full components remain; expensive systems skip compressed
// citizens.
type Compressed struct {
	GridX     uint16
	GridY     uint16
	State     uint8
	Age       uint8
	Happiness uint8
}

// Citizen is the full entity.
type Citizen struct {
	ID ID `json:"id"`

	HomeX        int          `json:"home_x"`
	HomeY        int          `json:"home_y"`
	HomeBuilding buildings.ID `json:"home_building"`
	Work         *WorkRef     `json:"work,omitempty"`

	State      State `json:"state"`
	StateTicks int   `json:"state_ticks"` // ticks spent in the current state
	// PrevState is where the citizen was before the current commute; an
	// unreachable destination returns them to it.
	PrevState State `json:"-"`

	// Path cache: road-cell waypoints toward the current destination.
	Path      []grid.Coord `json:"-"`
	PathIndex int          `json:"-"`
	// PathGen guards async results; bumped on despawn or state change so
	// stale completions are discarded.
	PathGen     uint32 `json:"-"`
	PathPending bool   `json:"-"`

	// World-space position (valid for Full/Simplified tiers).
	PosX float32 `json:"pos_x"`
	PosY float32 `json:"pos_y"`
	// Previous waypoint position, kept for trajectory smoothing.
	prevWX float32
	prevWY float32

	Details     Details     `json:"details"`
	Personality Personality `json:"personality"`
	Needs       Needs       `json:"needs"`

	Tier PopulationTier `json:"tier"`
	Lod  LodTier        `json:"lod"`

	Compressed *Compressed `json:"-"`

	// Education pipeline enrollment (-1 when not enrolled).
	EnrolledStage  int8   `json:"enrolled_stage"`
	TicksEnrolled  uint32 `json:"ticks_enrolled"`

	alive bool
}

// Alive reports whether the entity is live.
func (c *Citizen) Alive() bool { return c.alive }

// Store holds citizens with stable IDs and a free list.
type Store struct {
	items []Citizen
	free  []uint32
	count int
}

// NewStore creates an empty citizen store.
func NewStore() *Store {
	return &Store{}
}

// Spawn places a new citizen in a residential building with free capacity.
// Returns nil when the building is full or under construction: the caller
// swallows the failure and the would-be citizen is not counted.
func (s *Store) Spawn(home *buildings.Building, rng *rand.Rand) *Citizen {
	if home == nil || home.UnderConstruction() || home.Occupants >= home.Capacity {
		return nil
	}
	if home.Zone.Category() != grid.CatResidential {
		return nil
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.items = append(s.items, Citizen{})
		idx = uint32(len(s.items) - 1)
	}

	edu := uint8(rng.Intn(3)) // university education is earned, not spawned
	wx, wy := grid.CellToWorld(home.X, home.Y)
	c := Citizen{
		ID:           ID(idx + 1),
		HomeX:        home.X,
		HomeY:        home.Y,
		HomeBuilding: home.ID,
		State:        StateAtHome,
		PosX:         wx,
		PosY:         wy,
		Details: Details{
			Age:       uint16(18 + rng.Intn(45)),
			Gender:    Gender(rng.Intn(2)),
			Education: edu,
			Salary:    0,
			Savings:   float32(rng.Intn(2000)),
			Happiness: 50,
			Health:    90 + float32(rng.Intn(10)),
		},
		Personality: Personality{
			Ambition:    rng.Float32(),
			Sociability: rng.Float32(),
			Materialism: rng.Float32(),
			Resilience:  rng.Float32(),
		},
		Needs: Needs{
			Hunger:  80,
			Energy:  80,
			Social:  70,
			Fun:     70,
			Comfort: 60,
		},
		EnrolledStage: -1,
		alive:         true,
	}
	s.items[idx] = c
	s.count++
	home.Occupants++
	return &s.items[idx]
}

// Get returns the citizen with the given ID, or nil.
func (s *Store) Get(id ID) *Citizen {
	if id == 0 || int(id) > len(s.items) {
		return nil
	}
	c := &s.items[id-1]
	if !c.alive {
		return nil
	}
	return c
}

// Despawn removes a citizen, releasing their home occupancy and job slot.
func (s *Store) Despawn(id ID, bstore *buildings.Store) {
	c := s.Get(id)
	if c == nil {
		return
	}
	if home := bstore.Get(c.HomeBuilding); home != nil && home.Occupants > 0 {
		home.Occupants--
	}
	QuitJob(c, bstore)
	c.PathGen++ // cancel any in-flight pathfinding
	c.alive = false
	s.free = append(s.free, uint32(id-1))
	s.count--
}

// Count returns the number of live citizens.
func (s *Store) Count() int { return s.count }

// ForEach calls fn for every live citizen.
func (s *Store) ForEach(fn func(*Citizen)) {
	for i := range s.items {
		if s.items[i].alive {
			fn(&s.items[i])
		}
	}
}

// AssignJob fills the slot and records the work reference plus salary.
func AssignJob(c *Citizen, b *buildings.Building, slot int) {
	b.Jobs[slot].Filled = true
	b.Jobs[slot].Citizen = uint32(c.ID)
	c.Work = &WorkRef{Building: b.ID, Slot: slot}
	c.Details.Salary = BaseSalaryForEducation(c.Details.Education) * b.Jobs[slot].Type.SalaryMultiplier()
}

// QuitJob vacates the citizen's job slot, if any.
func QuitJob(c *Citizen, bstore *buildings.Store) {
	if c.Work == nil {
		return
	}
	if b := bstore.Get(c.Work.Building); b != nil && c.Work.Slot < len(b.Jobs) {
		b.Jobs[c.Work.Slot].Filled = false
		b.Jobs[c.Work.Slot].Citizen = 0
	}
	c.Work = nil
}
