package engine

import (
	"log/slog"

	"github.com/dzautner/megacity/internal/actions"
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/roads"
)

// drainCommands applies queued player commands between ticks.
func (w *World) drainCommands() {
	w.cmdMu.Lock()
	batch := w.commands
	w.commands = nil
	w.cmdMu.Unlock()

	for _, cmd := range batch {
		w.apply(cmd)
	}
}

func (w *World) apply(cmd actions.Command) {
	switch c := cmd.(type) {
	case actions.PlaceRoadSegment:
		w.applyRoadSegment(c)
	case actions.PlaceGridRoad:
		w.applyGridRoad(c)
	case actions.PlaceZoneRect:
		w.applyZoneRect(c)
	case actions.PlaceService:
		w.applyService(c)
	case actions.PlaceUtility:
		w.applyUtility(c)
	case actions.BulldozeRoadSegment:
		w.applyBulldozeSegment(c)
	case actions.BulldozeBuilding:
		w.applyBulldoze(c)
	case actions.SetDistrictPolicy:
		w.applyDistrictPolicy(c)
	case actions.SetTaxRate:
		old := w.Budget.TaxRates[c.Category]
		w.Budget.TaxRates[c.Category] = clampRate(c.Rate)
		w.Undo.Push(cmd, func() { w.Budget.TaxRates[c.Category] = old })
	case actions.SetBudgetLevel:
		old := w.Funding.Levels[c.Category]
		w.Funding.Levels[c.Category] = clampFunding(c.Level)
		w.Coverage.Dirty = true
		w.Undo.Push(cmd, func() {
			w.Funding.Levels[c.Category] = old
			w.Coverage.Dirty = true
		})
	case actions.Undo:
		w.Undo.Pop()
	case actions.SetPaused:
		w.Clock.Paused = c.Paused
	case actions.SetTickRate:
		if c.Hz > 0 && c.Hz <= 120 {
			w.Params.TickHz = c.Hz
		}
	default:
		slog.Warn("unknown command", "name", actions.Name(cmd))
	}
}

func (w *World) applyRoadSegment(c actions.PlaceRoadSegment) {
	id, changed := w.Roads.AddSegment(w.Grid, c.Start, c.End, c.Control[1], c.Control[2], c.Type)
	cost, ok := w.chargeRoad(id, changed, c.Type)
	if !ok {
		return
	}
	w.markRoadsChanged(changed)
	w.Undo.Push(c, func() {
		w.markRoadsChanged(w.Roads.RemoveSegment(w.Grid, id))
		w.Budget.Refund(cost)
	})
}

func (w *World) applyGridRoad(c actions.PlaceGridRoad) {
	start := roads.Vec2{X: (float64(c.X0) + 0.5) * grid.CellSize, Y: (float64(c.Y0) + 0.5) * grid.CellSize}
	end := roads.Vec2{X: (float64(c.X1) + 0.5) * grid.CellSize, Y: (float64(c.Y1) + 0.5) * grid.CellSize}
	ctrl1, ctrl2 := roads.StraightControls(start, end)
	id, changed := w.Roads.AddSegment(w.Grid, start, end, ctrl1, ctrl2, c.Type)
	cost, ok := w.chargeRoad(id, changed, c.Type)
	if !ok {
		return
	}
	w.markRoadsChanged(changed)
	w.Undo.Push(c, func() {
		w.markRoadsChanged(w.Roads.RemoveSegment(w.Grid, id))
		w.Budget.Refund(cost)
	})
}

// chargeRoad prices a freshly rasterized segment by its claimed cells and
// charges the treasury. An unaffordable segment is torn straight back down,
// leaving the grid as it was.
func (w *World) chargeRoad(id roads.SegmentID, changed []int, rt grid.RoadType) (float64, bool) {
	cost := float64(len(changed)) * rt.ConstructionCost()
	if w.Budget.Spend(cost) {
		return cost, true
	}
	w.Roads.RemoveSegment(w.Grid, id)
	w.logEvent("build", "road placement rejected: insufficient funds")
	return 0, false
}

func (w *World) applyZoneRect(c actions.PlaceZoneRect) {
	x0, x1 := ordered(c.X0, c.X1)
	y0, y1 := ordered(c.Y0, c.Y1)

	type cellZone struct {
		idx  int
		zone grid.ZoneType
	}
	var before []cellZone
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !w.Grid.InBounds(x, y) {
				continue
			}
			idx := w.Grid.Idx(x, y)
			if w.Grid.Cells[idx] != grid.CellGrass {
				continue
			}
			if w.Grid.Zone[idx] == c.Zone {
				continue
			}
			// District bans block heavy industry zoning outright.
			if c.Zone == grid.ZoneIndustrial && w.Districts.PolicyAt(x, y).HeavyIndustryBanned {
				continue
			}
			before = append(before, cellZone{idx, w.Grid.Zone[idx]})
			w.Grid.Zone[idx] = c.Zone
		}
	}
	if len(before) == 0 {
		return
	}
	w.Eligible.Dirty = true
	w.Undo.Push(c, func() {
		for _, cz := range before {
			w.Grid.Zone[cz.idx] = cz.zone
		}
		w.Eligible.Dirty = true
	})
}

func (w *World) applyService(c actions.PlaceService) {
	if !w.Grid.InBounds(c.X, c.Y) {
		return
	}
	idx := w.Grid.Idx(c.X, c.Y)
	if w.Grid.Cells[idx] != grid.CellGrass || w.Grid.BuildingID[idx] != 0 {
		return
	}
	cost := c.Type.PlacementCost()
	if !w.Budget.Spend(cost) {
		w.logEvent("build", "service placement rejected: insufficient funds")
		return
	}
	svc := w.Services.Place(w.Grid, c.Type, c.X, c.Y)
	w.Coverage.Dirty = true
	w.Postal.Dirty = true
	w.logEvent("build", "service placed")
	w.Undo.Push(c, func() {
		w.Services.Remove(w.Grid, svc.ID)
		w.Budget.Refund(cost)
		w.Coverage.Dirty = true
		w.Postal.Dirty = true
	})
}

func (w *World) applyUtility(c actions.PlaceUtility) {
	if !w.Grid.InBounds(c.X, c.Y) {
		return
	}
	cost := c.Type.PlacementCost()
	if !w.Budget.Spend(cost) {
		w.logEvent("build", "utility placement rejected: insufficient funds")
		return
	}
	u := w.Utilities.Place(w.Grid, c.Type, c.X, c.Y)
	w.UtilityNet.Dirty = true
	w.Eligible.Dirty = true
	w.Undo.Push(c, func() {
		w.Utilities.Remove(u.ID)
		w.Budget.Refund(cost)
		w.UtilityNet.Dirty = true
		w.Eligible.Dirty = true
	})
}

func (w *World) applyBulldozeSegment(c actions.BulldozeRoadSegment) {
	seg, ok := w.Roads.Segments[c.Segment]
	if !ok {
		return
	}
	start, end := seg.Control[0], seg.Control[3]
	ctrl1, ctrl2 := seg.Control[1], seg.Control[2]
	rt := seg.Type
	w.markRoadsChanged(w.Roads.RemoveSegment(w.Grid, c.Segment))
	w.Undo.Push(c, func() {
		_, changed := w.Roads.AddSegment(w.Grid, start, end, ctrl1, ctrl2, rt)
		w.markRoadsChanged(changed)
	})
}

// applyBulldoze clears whatever occupies the cell. Residents and workers of
// a demolished building are despawned or released first. Not undoable past
// the structure itself: occupants do not come back.
func (w *World) applyBulldoze(c actions.BulldozeBuilding) {
	if !w.Grid.InBounds(c.X, c.Y) {
		return
	}
	idx := w.Grid.Idx(c.X, c.Y)
	ref := w.Grid.BuildingID[idx]
	if ref == 0 {
		return
	}

	if ref&(1<<31) != 0 {
		id := buildings.ID(ref &^ (1 << 31))
		svc := w.Services.Get(id)
		if svc == nil {
			return
		}
		t, x, y := svc.Type, svc.X, svc.Y
		w.Services.Remove(w.Grid, id)
		w.Coverage.Dirty = true
		w.Postal.Dirty = true
		w.Undo.Push(c, func() {
			w.Services.Place(w.Grid, t, x, y)
			w.Coverage.Dirty = true
			w.Postal.Dirty = true
		})
		return
	}

	id := buildings.ID(ref)
	b := w.Buildings.Get(id)
	if b == nil {
		return
	}

	// Evict occupants and workers before the structure goes.
	var evict []citizens.ID
	w.Citizens.ForEach(func(cz *citizens.Citizen) {
		if cz.HomeBuilding == id {
			evict = append(evict, cz.ID)
		} else if cz.Work != nil && cz.Work.Building == id {
			citizens.QuitJob(cz, w.Buildings)
		}
	})
	for _, cid := range evict {
		w.Citizens.Despawn(cid, w.Buildings)
	}
	w.Waste.Forget(id)
	w.HazWaste.Forget(id)

	zone, level, x, y := b.Zone, b.Level, b.X, b.Y
	w.Buildings.Remove(w.Grid, id)
	w.Eligible.Dirty = true
	w.logEvent("bulldoze", "building demolished")
	w.Undo.Push(c, func() {
		nb := w.Buildings.Spawn(w.Grid, zone, x, y)
		nb.SetLevel(level)
		nb.ConstructionRemaining = 0
		w.Eligible.Dirty = true
	})
}

func (w *World) applyDistrictPolicy(c actions.SetDistrictPolicy) {
	old := w.Districts.Policies[c.District]
	w.Districts.Policies[c.District] = c.Policy
	w.Undo.Push(c, func() {
		w.Districts.Policies[c.District] = old
	})
}

// markRoadsChanged flags every cache that derives from the road raster.
func (w *World) markRoadsChanged(changed []int) {
	if len(changed) == 0 {
		return
	}
	w.Roads.Dirty = true
	w.Eligible.Dirty = true
	w.UtilityNet.Dirty = true
	w.Coverage.Dirty = true
}

func ordered(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func clampRate(r float32) float32 {
	if r < 0 {
		return 0
	}
	if r > 0.3 {
		return 0.3
	}
	return r
}

func clampFunding(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1.5 {
		return 1.5
	}
	return f
}
