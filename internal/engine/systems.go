package engine

import (
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/dispatch"
	"github.com/dzautner/megacity/internal/economy"
	"github.com/dzautner/megacity/internal/environment"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/pathfind"
	"github.com/dzautner/megacity/internal/roads"
	"github.com/dzautner/megacity/internal/services"
	"github.com/dzautner/megacity/internal/weather"
	"github.com/dzautner/megacity/internal/zones"
)

// jobSearchPerSlowTick bounds how many unemployed citizens look for work in
// one pass.
const jobSearchPerSlowTick = 50

// growthInterval is the building spawner cadence in ticks. Faster than the
// slow tick so zoned land fills in visibly once demand is up.
const growthInterval = 25

// registerSystems wires every subsystem into the registry. Group order is
// fixed; After/Before edges pin the few intra-group dependencies.
func registerSystems(r *Registry) {
	r.Add(System{Name: "commands", Group: GroupInput, Run: func(w *World) {
		w.drainCommands()
	}})

	r.Add(System{Name: "road_graph", Group: GroupStructural, Run: func(w *World) {
		if !w.Roads.Dirty {
			return
		}
		w.Roads.Dirty = false
		w.CSR = roads.BuildCSR(w.Grid)
	}})
	r.Add(System{Name: "construction", Group: GroupStructural, After: []string{"road_graph"}, Run: func(w *World) {
		mod := w.Weather.Condition.ConstructionModifier() * float32(w.CityHall.ConstructionMultiplier())
		zones.Construct(w.Buildings, 1, mod)
	}})

	r.Add(System{Name: "utilities", Group: GroupPropagation, Run: func(w *World) {
		if !w.UtilityNet.Dirty && !w.slowTick() {
			return
		}
		sev := w.Weather.HeatWave.Severity
		if w.blackoutToday {
			// A rolling blackout removes power supply for the day.
			w.UtilityNet.Rebuild(w.Grid, w.Utilities, 1e9, w.waterDemandMultiplier())
		} else {
			w.UtilityNet.Rebuild(w.Grid, w.Utilities, sev.EnergyDemandMultiplier(), w.waterDemandMultiplier())
		}
		w.Eligible.Dirty = true
	}})
	r.Add(System{Name: "coverage", Group: GroupPropagation, After: []string{"utilities"}, Run: func(w *World) {
		if !w.Coverage.Dirty && !w.slowTick() {
			return
		}
		services.RebuildBitflags(w.Grid, w.Services, w.Funding)
		w.Coverage.Rebuild(w.Grid, w.Services, w.Funding)
		if w.Postal.Dirty || w.slowTick() {
			w.Postal.Rebuild(w.Grid, w.Services)
		}
	}})
	r.Add(System{Name: "path_snapshot", Group: GroupPropagation, After: []string{"coverage"}, Run: func(w *World) {
		w.Snapshot = pathfind.NewSnapshot(w.CSR, w.Grid.Traffic, w.Grid.Width)
		w.PathPool.Dispatch(w.Snapshot)
		w.collectPaths()
	}})

	r.Add(System{Name: "state_machine", Group: GroupAgents, Run: func(w *World) {
		if !w.Clock.IsHourBoundary() {
			return
		}
		w.stepStateMachines()
	}})
	r.Add(System{Name: "movement", Group: GroupAgents, After: []string{"state_machine"}, Run: func(w *World) {
		w.stepMovement()
	}})
	r.Add(System{Name: "needs", Group: GroupAgents, After: []string{"movement"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		w.stepNeeds()
	}})
	r.Add(System{Name: "jobs", Group: GroupAgents, After: []string{"needs"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		w.stepJobSearch()
	}})
	r.Add(System{Name: "education", Group: GroupAgents, After: []string{"needs"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		w.stepEducation()
	}})
	r.Add(System{Name: "lifecycle", Group: GroupAgents, After: []string{"needs"}, Run: func(w *World) {
		if w.Clock.IsYearBoundary() && w.Clock.Ticks > 0 {
			w.stepAging()
		}
		if w.Clock.IsDayBoundary() && w.Clock.Ticks > 0 {
			w.stepHeatMortality()
			w.stepImmigration()
		}
	}})
	r.Add(System{Name: "lod", Group: GroupAgents, After: []string{"movement"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		w.Citizens.ForEach(func(c *citizens.Citizen) {
			citizens.AssignLod(c, w.Viewport)
		})
		if w.Clock.IsDayBoundary() {
			w.Virtual.Drift(w.Stats.AvgHappiness)
			w.stepVirtualExchange()
		}
	}})

	r.Add(System{Name: "zone_demand", Group: GroupEconomy, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		w.stepZones()
	}})
	r.Add(System{Name: "zone_growth", Group: GroupEconomy, After: []string{"zone_demand"}, Run: func(w *World) {
		if w.Clock.Ticks%growthInterval != 0 {
			return
		}
		w.stepGrowth()
	}})
	r.Add(System{Name: "city_hall", Group: GroupEconomy, After: []string{"zone_demand"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		w.CityHall.SyncFromStore(w.Services)
		w.CityHall.Update(w.Grid, w.Citizens.Count(), w.cityHallStaff())
	}})
	r.Add(System{Name: "tourism", Group: GroupEconomy, After: []string{"city_hall"}, Run: func(w *World) {
		if w.Clock.IsDayBoundary() {
			w.Tourism.UpdateAttractiveness(w.Services, w.Stats.AvgPollution)
		}
	}})
	r.Add(System{Name: "budget", Group: GroupEconomy, After: []string{"tourism"}, Run: func(w *World) {
		if !w.Clock.IsMonthBoundary() || w.Clock.Ticks == 0 {
			return
		}
		w.stepMonthlyBudget()
	}})

	r.Add(System{Name: "traffic_decay", Group: GroupEnvironment, Run: func(w *World) {
		environment.DecayTraffic(w.Grid)
	}})
	r.Add(System{Name: "pollution", Group: GroupEnvironment, After: []string{"traffic_decay"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		environment.StepPollution(w.Grid, w.Buildings, w.Utilities, w.pollutionScratch)
	}})
	r.Add(System{Name: "noise", Group: GroupEnvironment, After: []string{"pollution"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		environment.StepNoise(w.Grid, w.Buildings, w.Services)
	}})
	r.Add(System{Name: "land_value", Group: GroupEnvironment, After: []string{"noise"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		environment.StepLandValue(w.Grid, func(x, y int) float32 {
			var sum float32
			for cat := services.Category(0); cat < services.NumCategories; cat++ {
				sum += w.Coverage.GetClamped(x, y, cat)
			}
			return sum / float32(services.NumCategories)
		})
	}})
	r.Add(System{Name: "sanitation", Group: GroupEnvironment, After: []string{"land_value"}, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		w.Waste.Generate(w.Buildings)
		w.Waste.Collect(w.Buildings, w.Services)
		w.HazWaste.Generate(w.Buildings)
		w.HazWaste.Treat(w.Buildings, w.Services)
		w.HazWaste.Contaminate(w.Grid, w.Buildings)
		w.DeathCare.Process(w.Services)
	}})
	r.Add(System{Name: "weather", Group: GroupEnvironment, Run: func(w *World) {
		w.stepWeather()
	}})
	r.Add(System{Name: "dispatch", Group: GroupEnvironment, After: []string{"weather"}, Run: func(w *World) {
		w.Dispatch.Step(w.Services)
		if w.Clock.IsDayBoundary() && w.Clock.Ticks > 0 {
			w.rollIncidents()
		}
	}})

	r.Add(System{Name: "stats", Group: GroupStatistics, Run: func(w *World) {
		if !w.slowTick() {
			return
		}
		w.updateStats()
		if w.Clock.IsDayBoundary() && w.Clock.Ticks > 0 {
			w.stepAdvisors()
		}
	}})
}

func (w *World) slowTick() bool {
	return w.Clock.Ticks%w.Params.SlowTickInterval == 0
}

// stepStateMachines advances the hourly activity state machine and issues
// commute path requests.
func (w *World) stepStateMachines() {
	hour := w.Clock.Hour()
	weekday := w.Clock.Weekday()
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		if c.Compressed != nil {
			// Abstract citizens skip movement entirely; flip state directly.
			dest := citizens.NextState(c, hour, weekday, w.RNG)
			if dest.Want {
				citizens.EnterState(c, citizens.ArrivalState(dest.State))
			}
			return
		}
		dest := citizens.NextState(c, hour, weekday, w.RNG)
		if !dest.Want {
			return
		}
		w.startCommute(c, dest.State)
	})
}

// startCommute resolves the destination cell for the commute, enters the
// commuting state, and submits an async path request.
func (w *World) startCommute(c *citizens.Citizen, commuteState citizens.State) {
	var dx, dy int
	switch commuteState {
	case citizens.StateCommutingToWork:
		b := w.Buildings.Get(c.Work.Building)
		if b == nil {
			return
		}
		dx, dy = b.X, b.Y
	case citizens.StateCommutingHome:
		dx, dy = c.HomeX, c.HomeY
	case citizens.StateCommutingToShop:
		b := w.randomCommercial()
		if b == nil {
			return
		}
		dx, dy = b.X, b.Y
	case citizens.StateCommutingToLeisure:
		x, y, ok := w.randomLeisureSpot()
		if !ok {
			return
		}
		dx, dy = x, y
	default:
		return
	}

	startCell, ok := pathfind.NearestRoadCell(w.Grid, int(c.PosX/16), int(c.PosY/16), 8)
	if !ok {
		return
	}
	goalCell, ok := pathfind.NearestRoadCell(w.Grid, dx, dy, 8)
	if !ok {
		return
	}

	citizens.BeginCommute(c, commuteState)
	citizens.ClearPath(c)
	c.PathPending = true
	w.PathPool.Submit(pathfind.Request{
		Citizen:    uint32(c.ID),
		Generation: c.PathGen,
		Start:      startCell,
		Goal:       goalCell,
	})
}

// collectPaths installs completed async paths, discarding stale generations.
// An unreachable goal cancels the trip: the citizen stays put in the state
// they came from and retries the next time the schedule sends them out.
func (w *World) collectPaths() {
	w.pathResults = w.PathPool.Poll(w.pathResults[:0])
	for _, res := range w.pathResults {
		c := w.Citizens.Get(citizens.ID(res.Citizen))
		if c == nil || c.PathGen != res.Generation || !c.PathPending {
			continue
		}
		if res.Path == nil {
			citizens.CancelCommute(c)
			c.PathPending = false
			continue
		}
		citizens.SetPath(c, res.Path)
	}
}

// stepMovement advances commuting citizens along their paths.
func (w *World) stepMovement() {
	mods := citizens.Modifiers{
		Weather: w.Weather.Condition.MovementModifier(),
		Snow:    1,
		Fog:     1,
		Mode:    1,
	}
	tickHz := float32(w.Params.TickHz)
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		if c.Compressed != nil || !c.State.Commuting() || len(c.Path) == 0 {
			return
		}
		if citizens.Advance(w.Grid, c, tickHz, mods) {
			citizens.EnterState(c, citizens.ArrivalState(c.State))
			c.Path = nil
			c.PathIndex = 0
		}
	})
}

// stepNeeds runs the slow-cadence per-citizen pipeline: needs decay,
// happiness, health, and the tier ladder.
func (w *World) stepNeeds() {
	w.happiness = citizens.HappinessInputs{
		SeasonModifier:  weather.SeasonHappiness(w.Clock.Season()),
		WeatherModifier: w.Weather.Condition.HappinessModifier(),
		CivicPrideBonus: w.CityHall.CivicPride,
	}
	deathPenalty := w.DeathCare.HappinessPenalty()

	w.Citizens.ForEach(func(c *citizens.Citizen) {
		citizens.DecayNeeds(c)

		in := w.happiness
		in.PostalModifier = w.Postal.HappinessModifier(w.Grid, c.HomeX, c.HomeY)
		in.WastePenalty = w.Waste.PenaltyAt(c.HomeBuilding) + deathPenalty
		citizens.ComputeHappiness(w.Grid, c, in)

		health := w.Coverage.GetClamped(c.HomeX, c.HomeY, services.CatHealth)
		citizens.UpdateHealth(w.Grid, c, health)

		economy.EvaluateTier(w.Grid, w.Coverage, c)
	})
}

// stepJobSearch matches unemployed citizens to open slots, bounded per pass.
func (w *World) stepJobSearch() {
	searched := 0
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		if searched >= jobSearchPerSlowTick || c.Work != nil {
			return
		}
		if c.Details.Age < 18 || c.Details.Age >= 65 || c.EnrolledStage >= 0 {
			return
		}
		searched++
		citizens.FindJob(c, w.Buildings)
	})
}

// stepEducation enrolls and advances students.
func (w *World) stepEducation() {
	w.Education.RefreshCapacity(w.Services)
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		if c.EnrolledStage >= 0 {
			w.Education.Advance(c)
			return
		}
		// Adults in work do not go back to school; the young and the
		// unemployed do.
		if c.Work == nil || c.Details.Age < 18 {
			w.Education.TryEnroll(w.Coverage, c)
		}
	})
	w.Education.SchoolLoad(w.Services)
}

// stepAging runs the yearly mortality pass.
func (w *World) stepAging() {
	var dead []citizens.ID
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		health := w.Coverage.GetClamped(c.HomeX, c.HomeY, services.CatHealth)
		if citizens.AgeOnce(c, health, w.RNG) {
			dead = append(dead, c.ID)
		}
	})
	for _, id := range dead {
		ev := w.Citizens.Kill(id, citizens.DeathOldAge, w.Buildings)
		w.DeathCare.Enqueue(ev)
		w.Stats.Deaths++
	}
	if len(dead) > 0 {
		w.logEvent("death", "citizens died of old age")
	}
}

// stepHeatMortality applies daily excess deaths among the elderly during
// heat waves, worse for homes without power for cooling.
func (w *World) stepHeatMortality() {
	hw := &w.Weather.HeatWave
	if !hw.Active() {
		return
	}
	base := hw.ExcessMortality(w.Weather.BaseTemp)
	if base <= 0 {
		return
	}
	var dead []citizens.ID
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		if c.Details.Age < 65 {
			return
		}
		p := base
		if !w.Grid.HasPower[w.Grid.Idx(c.HomeX, c.HomeY)] {
			p *= 2
		}
		if w.RNG.Float64() < p {
			dead = append(dead, c.ID)
		}
	})
	for _, id := range dead {
		ev := w.Citizens.Kill(id, citizens.DeathHeat, w.Buildings)
		w.DeathCare.Enqueue(ev)
		w.Dispatch.Report(w.Grid, w.Services, dispatch.IncidentMedical, ev.X, ev.Y)
		w.Stats.Deaths++
	}
	if len(dead) > 0 {
		w.logEvent("death", "heat wave deaths")
	}
}

// stepImmigration spawns arrivals when residential demand is positive.
func (w *World) stepImmigration() {
	demand := w.Demand.Values[grid.CatResidential]
	if demand <= 0 {
		return
	}
	n := int(float32(w.Params.ImmigrationPerDay) * demand)
	if n < 1 {
		n = 1
	}
	spawned := citizens.Immigration(w.Grid, w.Buildings, w.Citizens, n, w.RNG)
	w.Stats.Births += spawned
}

// stepZones runs the slow-cadence demand model and leveling.
func (w *World) stepZones() {
	capacity, occupancy := zones.Aggregate(w.Buildings)
	in := zones.Inputs{
		Capacity:     capacity,
		Occupancy:    occupancy,
		Population:   w.Citizens.Count(),
		Unemployed:   w.Stats.Unemployed,
		OpenJobs:     w.Stats.OpenJobs,
		AvgHappiness: w.Stats.AvgHappiness,
		TaxRate:      w.Budget.TaxRates,
	}
	w.Demand.Update(in)
	zones.Level(w.Grid, w.Districts, w.Demand, w.Buildings)
}

// stepGrowth runs the building spawner at its own faster cadence.
func (w *World) stepGrowth() {
	spawned := w.Growth.Step(w.Grid, w.Eligible, w.Demand, w.Buildings)
	if len(spawned) > 0 {
		w.Eligible.Dirty = true
	}
}

// cityHallStaff counts skilled workers employed in offices near the hall.
func (w *World) cityHallStaff() int {
	if !w.CityHall.Placed {
		return 0
	}
	staff := 0
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		if c.Work == nil || c.Details.Education < 1 {
			return
		}
		dx := c.HomeX - w.CityHall.X
		dy := c.HomeY - w.CityHall.Y
		if dx*dx+dy*dy <= 60*60 {
			staff++
		}
	})
	return staff
}

// stepMonthlyBudget closes out the fiscal month.
func (w *World) stepMonthlyBudget() {
	w.Tourism.CloseMonth(w.Clock.Season(), w.Weather.Condition, w.Weather.BaseTemp)
	fines := w.HazWaste.AssessFines()

	quality := 0.75 + 0.25*float64(w.averageCoverage())
	w.Budget.CollectMonthly(w.Grid, w.Districts, w.Buildings, w.Services, w.Utilities, economy.CollectInputs{
		CityHallTaxMultiplier: w.CityHall.TaxMultiplier(),
		ServiceQuality:        quality,
		CommerceBonus: func(x, y int) float64 {
			return w.Postal.CommerceMultiplier(w.Grid, x, y)
		},
		TourismIncome: w.Tourism.MonthlyIncome,
		Fines:         fines,
	})
	w.logEvent("economy", "monthly budget closed")
}

func (w *World) averageCoverage() float32 {
	st := w.Coverage.ComputeStats()
	var sum float32
	for _, v := range st.CategoryAverages {
		sum += v
	}
	return sum / float32(services.NumCategories)
}

// stepWeather advances temperature, rolls new days, and applies heat wave
// infrastructure effects.
func (w *World) stepWeather() {
	if w.Clock.IsDayBoundary() && w.Clock.Ticks > 0 {
		w.Weather.RollDay(w.Clock.Day(), w.Clock.Season())

		sev := w.Weather.HeatWave.Severity
		wasBlackout := w.blackoutToday
		w.blackoutToday = sev > weather.HeatNone && w.RNG.Float64() < sev.BlackoutProbability()
		if w.blackoutToday != wasBlackout {
			w.UtilityNet.Dirty = true
			if w.blackoutToday {
				w.logEvent("emergency", "rolling blackout declared")
			}
		}
		if w.Weather.HeatWave.Active() {
			w.UtilityNet.Dirty = true // demand surge shrinks supply reach
		}

		w.stepRoadBuckling()
	}
	if w.Clock.IsHourBoundary() {
		w.Weather.UpdateTemperature(int(w.Clock.Ticks % weather.TicksPerDay))
	}
}

// waterDemandMultiplier combines the heat wave surge with a drought factor:
// when the 30-day rainfall total runs below the groundwater recharge floor,
// demand rises up to 20% as reservoirs draw down.
func (w *World) waterDemandMultiplier() float32 {
	m := w.Weather.HeatWave.Severity.WaterDemandMultiplier()
	const rechargeFloor = 40.0
	if rain := w.Weather.RecentRainfall(30); rain < rechargeFloor {
		m *= float32(1 + 0.2*(1-rain/rechargeFloor))
	}
	return m
}

// stepRoadBuckling damages road cells in extreme heat and repairs them once
// the wave breaks.
func (w *World) stepRoadBuckling() {
	chance := weather.RoadBucklingChance(w.Weather.BaseTemp)
	changed := false
	if chance > 0 {
		for i := range w.Grid.RoadDamaged {
			if w.Grid.Cells[i] != grid.CellRoad {
				continue
			}
			if !w.Grid.RoadDamaged[i] && w.RNG.Float64() < chance {
				w.Grid.RoadDamaged[i] = true
				changed = true
			}
		}
		if changed {
			w.logEvent("emergency", "roads buckled in the heat")
		}
	} else if !w.Weather.HeatWave.Active() {
		// Crews repair a share of damaged cells each cool day.
		for i := range w.Grid.RoadDamaged {
			if w.Grid.RoadDamaged[i] && w.RNG.Float64() < 0.1 {
				w.Grid.RoadDamaged[i] = false
				changed = true
			}
		}
	}
	if changed {
		w.Roads.Dirty = true
	}
}

// abstractResidentCap bounds live Abstract-tier entities per district; the
// surplus folds into the statistical pool at day boundary.
const abstractResidentCap = 32

// materializePerDay bounds how many pool citizens re-enter entity form per
// day boundary.
const materializePerDay = 50

// stepVirtualExchange trades citizens between entity form and the statistical
// pool. Abstract-tier residents beyond the per-district cap dematerialize;
// districts under the camera materialize pool members into free housing.
// Every exchange preserves the combined population total.
func (w *World) stepVirtualExchange() {
	byDistrict := make(map[int][]citizens.ID)
	w.Citizens.ForEach(func(c *citizens.Citizen) {
		if c.Lod != citizens.LodAbstract {
			return
		}
		d := int(w.Districts.IDAt(c.HomeX, c.HomeY))
		byDistrict[d] = append(byDistrict[d], c.ID)
	})
	for d, ids := range byDistrict {
		if len(ids) <= abstractResidentCap {
			continue
		}
		for _, id := range ids[abstractResidentCap:] {
			w.Citizens.Despawn(id, w.Buildings)
			w.Virtual.Absorb(d, 1)
		}
	}

	if !w.Viewport.Active {
		return
	}
	budget := int64(materializePerDay)
	w.Buildings.ForEach(func(b *buildings.Building) {
		if budget <= 0 || b.Zone.Category() != grid.CatResidential || b.UnderConstruction() {
			return
		}
		wx, wy := grid.CellToWorld(b.X, b.Y)
		if wx < w.Viewport.MinX || wx > w.Viewport.MaxX || wy < w.Viewport.MinY || wy > w.Viewport.MaxY {
			return
		}
		free := int64(b.Capacity - b.Occupants)
		if free <= 0 {
			return
		}
		if free > budget {
			free = budget
		}
		d := int(w.Districts.IDAt(b.X, b.Y))
		n := w.Virtual.Materialize(d, free)
		for i := int64(0); i < n; i++ {
			if w.Citizens.Spawn(b, w.RNG) == nil {
				// Housing filled up mid-pass; the leftovers stay statistical.
				w.Virtual.Absorb(d, n-i)
				break
			}
			budget--
		}
	})
}

// stepAdvisors surfaces resource-exhaustion warnings once per day.
func (w *World) stepAdvisors() {
	if w.Budget.Treasury < 0 {
		w.logEvent("advisor", "treasury exhausted, operating on debt")
	}
	if w.DeathCare.Backlog() > 20 {
		w.logEvent("advisor", "death care capacity exceeded")
	}
	if w.Waste.Uncollected() > 5000 {
		w.logEvent("advisor", "garbage piling up uncollected")
	}
	if w.Weather.HeatWave.Severity >= weather.HeatSevere && !w.blackoutToday {
		w.logEvent("advisor", "grid strain high, rolling blackouts possible")
	}
}

// rollIncidents generates daily fires and crime scaled to city size.
func (w *World) rollIncidents() {
	n := w.Buildings.Count()
	if n == 0 {
		return
	}
	fires := w.RNG.Intn(n/200 + 1)
	crimes := w.RNG.Intn(n/150 + 1)
	for i := 0; i < fires; i++ {
		if b := w.randomBuilding(); b != nil {
			w.Dispatch.Report(w.Grid, w.Services, dispatch.IncidentFire, b.X, b.Y)
		}
	}
	for i := 0; i < crimes; i++ {
		if b := w.randomBuilding(); b != nil {
			w.Dispatch.Report(w.Grid, w.Services, dispatch.IncidentCrime, b.X, b.Y)
		}
	}
}
