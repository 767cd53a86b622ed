package citizens

import (
	"math/rand"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Cause of death, consumed by the death care system.
type DeathCause uint8

const (
	DeathOldAge DeathCause = iota
	DeathIllness
	DeathHeat
)

// DeathEvent is emitted on despawn-by-death; the death care system consumes
// the queue each slow tick.
type DeathEvent struct {
	Citizen ID         `json:"citizen"`
	X       int        `json:"x"`
	Y       int        `json:"y"`
	Cause   DeathCause `json:"cause"`
}

// AgeOnce advances a citizen by one sim-year and rolls for natural death.
// Death is certain at MaxAge. From age 70 the annual probability climbs
// linearly to 1.0 at MaxAge, reduced by up to half with full healthcare
// coverage at home. Returns true when the citizen dies this year.
func AgeOnce(c *Citizen, healthCoverage float32, rng *rand.Rand) bool {
	c.Details.Age++
	if c.Details.Age >= MaxAge {
		return true
	}
	if c.Details.Age < 70 {
		return false
	}

	p := float64(c.Details.Age-70) / float64(MaxAge-70)
	if healthCoverage > 1 {
		healthCoverage = 1
	}
	if healthCoverage > 0 {
		p *= 1.0 - 0.5*float64(healthCoverage)
	}
	return rng.Float64() < p
}

// Kill despawns the citizen and returns the death event for the death care
// queue.
func (s *Store) Kill(id ID, cause DeathCause, bstore *buildings.Store) DeathEvent {
	ev := DeathEvent{Citizen: id, Cause: cause}
	if c := s.Get(id); c != nil {
		ev.X, ev.Y = c.HomeX, c.HomeY
	}
	s.Despawn(id, bstore)
	return ev
}

// Schedule constants in sim-hours.
const (
	workStartHour    = 8
	workEndHour      = 17
	shopChanceBase   = 0.25
	leisureChanceBase = 0.20
	minWorkingAge    = 6 // younger children stay home or at school
)

// Destination is where the state machine wants the citizen to go next, to be
// resolved into a path by the engine.
type Destination struct {
	Want  bool
	X     int
	Y     int
	State State // state to enter once the commute completes
}

// NextState advances the activity state machine for one citizen. hour is the
// in-game hour of day; weekday is false on rest days. Returns a destination
// request when the citizen should start commuting; the engine submits the
// pathfinding request and flips the state once a path exists.
func NextState(c *Citizen, hour int, weekday bool, rng *rand.Rand) Destination {
	c.StateTicks++

	switch c.State {
	case StateAtHome:
		if weekday && c.Work != nil && c.Details.Age >= minWorkingAge &&
			hour >= workStartHour && hour < workEndHour {
			return Destination{Want: true, State: StateCommutingToWork}
		}
		// Low needs push citizens out of the house during waking hours.
		if hour >= 9 && hour <= 21 && c.StateTicks > 30 {
			if c.Needs.Hunger < 35 && rng.Float32() < shopChanceBase {
				return Destination{Want: true, State: StateCommutingToShop}
			}
			if c.Needs.Fun < 30 && rng.Float32() < leisureChanceBase*(0.5+c.Personality.Sociability) {
				return Destination{Want: true, State: StateCommutingToLeisure}
			}
		}

	case StateWorking:
		if hour >= workEndHour || !weekday {
			return Destination{Want: true, State: StateCommutingHome}
		}

	case StateShopping:
		if c.StateTicks > 60 || c.Needs.Hunger > 85 {
			return Destination{Want: true, State: StateCommutingHome}
		}

	case StateAtLeisure:
		if c.StateTicks > 90 || c.Needs.Fun > 85 || hour >= 23 {
			return Destination{Want: true, State: StateCommutingHome}
		}
	}
	return Destination{}
}

// EnterState flips the state and resets the dwell counter.
func EnterState(c *Citizen, next State) {
	c.State = next
	c.StateTicks = 0
}

// BeginCommute enters a commuting state, remembering where the citizen was so
// an unreachable destination can put them back.
func BeginCommute(c *Citizen, commute State) {
	c.PrevState = c.State
	EnterState(c, commute)
}

// CancelCommute aborts a commute with no viable path. The citizen stays where
// they are, resumes their previous state, and may retry on a later pass.
func CancelCommute(c *Citizen) {
	if !c.State.Commuting() {
		return
	}
	EnterState(c, c.PrevState)
}

// ArrivalState maps a commuting state to the state entered at the
// destination.
func ArrivalState(s State) State {
	switch s {
	case StateCommutingToWork:
		return StateWorking
	case StateCommutingToShop:
		return StateShopping
	case StateCommutingToLeisure:
		return StateAtLeisure
	}
	return StateAtHome
}

// Immigration spawns up to n citizens into residential buildings with free
// capacity, preferring powered and watered homes. Returns the number spawned.
func Immigration(g *grid.Grid, bstore *buildings.Store, cstore *Store, n int, rng *rand.Rand) int {
	if n <= 0 {
		return 0
	}
	var candidates []*buildings.Building
	bstore.ForEach(func(b *buildings.Building) {
		if b.Zone.Category() != grid.CatResidential || b.UnderConstruction() {
			return
		}
		if b.Occupants >= b.Capacity {
			return
		}
		idx := g.Idx(b.X, b.Y)
		if !g.HasPower[idx] || !g.HasWater[idx] {
			return
		}
		candidates = append(candidates, b)
	})
	if len(candidates) == 0 {
		return 0
	}

	spawned := 0
	for i := 0; i < n; i++ {
		home := candidates[rng.Intn(len(candidates))]
		if cstore.Spawn(home, rng) != nil {
			spawned++
		}
	}
	return spawned
}

// FindJob searches workplaces for an open slot matching the citizen's
// education, nearest-first by Manhattan distance from home. Returns false
// when no slot exists.
func FindJob(c *Citizen, bstore *buildings.Store) bool {
	if c.Work != nil || c.Details.Age < 18 || c.Details.Age >= 65 {
		return false
	}

	bestDist := int(^uint(0) >> 1)
	var best *buildings.Building
	bestSlot := -1

	bstore.ForEach(func(b *buildings.Building) {
		if !b.IsWorkplace() || b.UnderConstruction() {
			return
		}
		slot := b.OpenSlot(c.Details.Education)
		if slot < 0 {
			return
		}
		d := abs(b.X-c.HomeX) + abs(b.Y-c.HomeY)
		if d < bestDist {
			bestDist = d
			best = b
			bestSlot = slot
		}
	})

	if best == nil {
		return false
	}
	AssignJob(c, best, bestSlot)
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
