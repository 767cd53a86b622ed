// Package engine wires every subsystem into the tick-based simulation loop.
package engine

import (
	"log/slog"
	"math/rand"
	"sync"

	"github.com/dzautner/megacity/internal/actions"
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/civic"
	"github.com/dzautner/megacity/internal/dispatch"
	"github.com/dzautner/megacity/internal/economy"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/pathfind"
	"github.com/dzautner/megacity/internal/roads"
	"github.com/dzautner/megacity/internal/sanitation"
	"github.com/dzautner/megacity/internal/services"
	"github.com/dzautner/megacity/internal/utilities"
	"github.com/dzautner/megacity/internal/weather"
	"github.com/dzautner/megacity/internal/worldgen"
	"github.com/dzautner/megacity/internal/zones"
)

// World holds the complete city state and wires systems together.
type World struct {
	Params Params

	Grid      *grid.Grid
	Districts *grid.Districts

	Roads    *roads.Store
	CSR      *roads.CSRGraph
	Snapshot *pathfind.Snapshot
	PathPool *pathfind.Pool

	Buildings *buildings.Store
	Services  *buildings.ServiceStore
	Utilities *buildings.UtilityStore

	Citizens *citizens.Store
	Virtual  citizens.VirtualPopulation
	Viewport citizens.Viewport

	Demand   *zones.Demand
	Eligible *zones.Eligible
	Growth   *zones.Spawner

	UtilityNet *utilities.Network
	Coverage   *services.HybridGrid
	Funding    services.Funding

	Budget *economy.Budget

	Clock   weather.GameClock
	Weather *weather.Weather

	CityHall  civic.CityHall
	Tourism   civic.Tourism
	Postal    *civic.Postal
	Education civic.Pipeline

	Waste     *sanitation.Waste
	HazWaste  *sanitation.HazWaste
	DeathCare *sanitation.DeathCare

	Dispatch *dispatch.System

	Undo *actions.UndoStack

	RNG *rand.Rand

	Stats  SimStats
	Events []Event

	// Command queue drained between ticks. The mutex guards against API
	// goroutines enqueueing while the engine drains.
	cmdMu    sync.Mutex
	commands []actions.Command

	// blackoutToday marks a heat-wave rolling blackout day.
	blackoutToday bool

	// Scratch buffers reused across ticks.
	pollutionScratch []float32
	pathResults      []pathfind.Result
	happiness        citizens.HappinessInputs
}

// Event is a notable occurrence surfaced to the UI and advisors.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// SimStats aggregates the city for the statistics panel.
type SimStats struct {
	Population     int     `json:"population"`
	VirtualPop     int64   `json:"virtual_pop"`
	Buildings      int     `json:"buildings"`
	Employed       int     `json:"employed"`
	Unemployed     int     `json:"unemployed"`
	OpenJobs       int     `json:"open_jobs"`
	AvgHappiness   float32 `json:"avg_happiness"`
	AvgHealth      float32 `json:"avg_health"`
	AvgPollution   float64 `json:"avg_pollution"`
	Treasury       float64 `json:"treasury"`
	Debt           float64 `json:"debt"`
	EconomicOutput float64 `json:"economic_output"`
	Deaths         int     `json:"deaths"`
	Births         int     `json:"births"`

	Tiers    economy.TierStats    `json:"tiers"`
	Coverage services.Stats       `json:"coverage"`
	Supply   utilities.Stats      `json:"supply"`
}

// NewWorld generates terrain and assembles an empty city.
func NewWorld(p Params) *World {
	g := worldgen.Generate(worldgen.Config{
		Width:    p.Width,
		Height:   p.Height,
		Seed:     p.Seed,
		SeaLevel: worldgen.DefaultConfig().SeaLevel,
	})
	return newWorldFromGrid(p, g)
}

// NewFlatWorld builds an all-grass world, used by tests and scenarios.
func NewFlatWorld(p Params) *World {
	g := worldgen.Generate(worldgen.FlatConfig(p.Width, p.Height))
	return newWorldFromGrid(p, g)
}

func newWorldFromGrid(p Params, g *grid.Grid) *World {
	w := &World{
		Params:     p,
		Grid:       g,
		Districts:  grid.NewDistricts(g.Width, g.Height),
		Roads:      roads.NewStore(),
		PathPool:   pathfind.NewPool(),
		Buildings:  buildings.NewStore(),
		Services:   buildings.NewServiceStore(),
		Utilities:  buildings.NewUtilityStore(),
		Citizens:   citizens.NewStore(),
		Demand:     zones.NewDemand(),
		Eligible:   zones.NewEligible(),
		Growth:     zones.NewSpawner(p.Seed),
		UtilityNet: utilities.NewNetwork(),
		Coverage:   services.NewHybridGrid(g.Width, g.Height),
		Funding:    services.DefaultFunding(),
		Budget:     economy.NewBudget(),
		Weather:    weather.New(p.Climate, uint64(p.Seed)),
		Waste:      sanitation.NewWaste(),
		HazWaste:   sanitation.NewHazWaste(),
		DeathCare:  sanitation.NewDeathCare(),
		Dispatch:   dispatch.NewSystem(),
		Undo:       actions.NewUndoStack(),
		RNG:        rand.New(rand.NewSource(p.Seed)),

		pollutionScratch: make([]float32, g.Width*g.Height),
	}
	w.Postal = civic.NewPostal(g)
	w.CSR = roads.BuildCSR(g)
	w.Snapshot = pathfind.NewSnapshot(w.CSR, g.Traffic, g.Width)
	w.Weather.RollDay(0, w.Clock.Season())
	slog.Info("world created", "width", g.Width, "height", g.Height, "seed", p.Seed)
	return w
}

// Enqueue schedules a command for application before the next tick.
func (w *World) Enqueue(cmd actions.Command) {
	w.cmdMu.Lock()
	w.commands = append(w.commands, cmd)
	w.cmdMu.Unlock()
}

// logEvent records a notable occurrence, bounded to the most recent 1000.
func (w *World) logEvent(category, description string) {
	w.Events = append(w.Events, Event{
		Tick:        w.Clock.Ticks,
		Description: description,
		Category:    category,
	})
	if len(w.Events) > 1000 {
		w.Events = w.Events[len(w.Events)-1000:]
	}
}

// randomBuilding picks a uniformly random operating building, or nil.
func (w *World) randomBuilding() *buildings.Building {
	n := w.Buildings.Count()
	if n == 0 {
		return nil
	}
	target := w.RNG.Intn(n)
	var picked *buildings.Building
	i := 0
	w.Buildings.ForEach(func(b *buildings.Building) {
		if i == target {
			picked = b
		}
		i++
	})
	return picked
}

// randomCommercial picks a random operating commercial building, or nil.
func (w *World) randomCommercial() *buildings.Building {
	var candidates []*buildings.Building
	w.Buildings.ForEach(func(b *buildings.Building) {
		if b.Zone == grid.ZoneCommercial && !b.UnderConstruction() {
			candidates = append(candidates, b)
		}
	})
	if len(candidates) == 0 {
		return nil
	}
	return candidates[w.RNG.Intn(len(candidates))]
}

// randomLeisureSpot picks a park, plaza, or stadium; falls back to a
// commercial building when the city has no dedicated leisure.
func (w *World) randomLeisureSpot() (int, int, bool) {
	type spot struct{ x, y int }
	var candidates []spot
	w.Services.ForEach(func(s *buildings.Service) {
		switch s.Type {
		case buildings.SvcSmallPark, buildings.SvcLargePark, buildings.SvcPlayground,
			buildings.SvcPlaza, buildings.SvcStadium:
			candidates = append(candidates, spot{s.X, s.Y})
		}
	})
	if len(candidates) > 0 {
		c := candidates[w.RNG.Intn(len(candidates))]
		return c.x, c.y, true
	}
	if b := w.randomCommercial(); b != nil {
		return b.X, b.Y, true
	}
	return 0, 0, false
}

// updateStats refreshes the aggregate snapshot. Runs at slow tick.
func (w *World) updateStats() {
	var happySum, healthSum float64
	employed, unemployed := 0, 0
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		happySum += float64(c.Details.Happiness)
		healthSum += float64(c.Details.Health)
		if c.Work != nil {
			employed++
		} else if c.Details.Age >= 18 && c.Details.Age < 65 {
			unemployed++
		}
	})

	openJobs := 0
	w.Buildings.ForEach(func(b *buildings.Building) {
		if b.UnderConstruction() {
			return
		}
		for i := range b.Jobs {
			if !b.Jobs[i].Filled {
				openJobs++
			}
		}
	})

	var pollSum float64
	for _, v := range w.Grid.Pollution {
		pollSum += float64(v)
	}

	n := w.Citizens.Count()
	w.Stats.Population = n
	w.Stats.VirtualPop = w.Virtual.Total
	w.Stats.Buildings = w.Buildings.Count()
	w.Stats.Employed = employed
	w.Stats.Unemployed = unemployed
	w.Stats.OpenJobs = openJobs
	if n > 0 {
		w.Stats.AvgHappiness = float32(happySum / float64(n))
		w.Stats.AvgHealth = float32(healthSum / float64(n))
	}
	w.Stats.AvgPollution = pollSum / float64(len(w.Grid.Pollution))
	w.Stats.Treasury = w.Budget.Treasury
	w.Stats.Debt = w.Budget.Debt
	w.Stats.Tiers = economy.ComputeTierStats(w.Citizens)
	w.Stats.EconomicOutput = w.Stats.Tiers.EconomicOutput
	w.Stats.Coverage = w.Coverage.ComputeStats()
	w.Stats.Supply = utilities.ComputeStats(w.Grid)
}
