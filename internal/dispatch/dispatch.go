// Package dispatch sends emergency vehicles from stations to incidents over
// the road network.
package dispatch

import (
	"math"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// IncidentKind selects which station types respond.
type IncidentKind uint8

const (
	IncidentFire IncidentKind = iota
	IncidentCrime
	IncidentMedical
)

// respondsTo reports whether a station type handles the incident kind.
func respondsTo(t buildings.ServiceType, k IncidentKind) bool {
	switch k {
	case IncidentFire:
		return t == buildings.SvcFireStation
	case IncidentCrime:
		return t == buildings.SvcPoliceStation
	case IncidentMedical:
		return t == buildings.SvcHospital || t == buildings.SvcClinic
	}
	return false
}

// Dispatch timing.
const (
	onSceneTicks = 30
	// vehicleSpeedCells is road cells traversed per tick.
	vehicleSpeedCells = 2.0
	// maxSearchDist bounds the road BFS when locating the nearest station.
	maxSearchDist = 120
)

// Phase of a dispatched vehicle.
type Phase uint8

const (
	PhaseEnRoute Phase = iota
	PhaseOnScene
	PhaseReturning
)

// Run is one vehicle working one incident.
type Run struct {
	Station   buildings.ID `json:"station"`
	Kind      IncidentKind `json:"kind"`
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Phase     Phase        `json:"phase"`
	TicksLeft int          `json:"ticks_left"`
	travel    int
}

// System tracks active runs.
type System struct {
	Active []Run `json:"active"`
	// Resolved counts incidents fully handled.
	Resolved int `json:"resolved"`
	// Unanswered counts incidents no station could reach.
	Unanswered int `json:"unanswered"`
}

// NewSystem returns an empty dispatcher.
func NewSystem() *System {
	return &System{}
}

// Report requests a vehicle for an incident at (x, y). The nearest station
// by road distance with a free vehicle responds; travel time is the road
// distance over the vehicle speed, rounded up. Returns false when nothing
// can respond.
func (sys *System) Report(g *grid.Grid, svcs *buildings.ServiceStore, k IncidentKind, x, y int) bool {
	dist := roadDistances(g, x, y, maxSearchDist)

	best := -1
	var bestStation *buildings.Service
	svcs.ForEach(func(s *buildings.Service) {
		if !respondsTo(s.Type, k) || s.Vehicles <= 0 {
			return
		}
		d := stationDistance(g, dist, s.X, s.Y)
		if d < 0 {
			return
		}
		if best < 0 || d < best {
			best = d
			bestStation = s
		}
	})

	if bestStation == nil {
		sys.Unanswered++
		return false
	}

	bestStation.Vehicles--
	travel := int(math.Ceil(float64(best) / vehicleSpeedCells))
	sys.Active = append(sys.Active, Run{
		Station:   bestStation.ID,
		Kind:      k,
		X:         x,
		Y:         y,
		Phase:     PhaseEnRoute,
		TicksLeft: travel,
		travel:    travel,
	})
	return true
}

// Step advances all runs one tick, returning vehicles to their stations as
// runs complete.
func (sys *System) Step(svcs *buildings.ServiceStore) {
	out := sys.Active[:0]
	for i := range sys.Active {
		r := sys.Active[i]
		r.TicksLeft--
		if r.TicksLeft > 0 {
			out = append(out, r)
			continue
		}
		switch r.Phase {
		case PhaseEnRoute:
			r.Phase = PhaseOnScene
			r.TicksLeft = onSceneTicks
			out = append(out, r)
		case PhaseOnScene:
			r.Phase = PhaseReturning
			r.TicksLeft = r.travel
			out = append(out, r)
		case PhaseReturning:
			if s := svcs.Get(r.Station); s != nil {
				s.Vehicles++
			}
			sys.Resolved++
		}
	}
	sys.Active = out
}

// roadDistances BFS-floods road distance from the incident cell (seeded from
// it or its adjacent road cells) up to maxDist. Unreached cells stay -1.
func roadDistances(g *grid.Grid, x, y, maxDist int) []int32 {
	dist := make([]int32, g.Width*g.Height)
	for i := range dist {
		dist[i] = -1
	}

	type cell struct{ x, y int }
	var queue []cell
	if g.IsRoad(x, y) {
		dist[g.Idx(x, y)] = 0
		queue = append(queue, cell{x, y})
	} else {
		var buf [][2]int
		for _, nb := range g.Neighbors4(x, y, buf) {
			if g.IsRoad(nb[0], nb[1]) {
				dist[g.Idx(nb[0], nb[1])] = 1
				queue = append(queue, cell{nb[0], nb[1]})
			}
		}
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		d := dist[g.Idx(c.x, c.y)]
		if int(d) >= maxDist {
			continue
		}
		var buf [][2]int
		for _, nb := range g.Neighbors4(c.x, c.y, buf) {
			ni := g.Idx(nb[0], nb[1])
			if g.Cells[ni] == grid.CellRoad && dist[ni] < 0 {
				dist[ni] = d + 1
				queue = append(queue, cell{nb[0], nb[1]})
			}
		}
	}
	return dist
}

// stationDistance reads the BFS field at the station cell or its adjacent
// road cells. Returns -1 when unreachable.
func stationDistance(g *grid.Grid, dist []int32, x, y int) int {
	if d := dist[g.Idx(x, y)]; d >= 0 {
		return int(d)
	}
	best := int32(-1)
	var buf [][2]int
	for _, nb := range g.Neighbors4(x, y, buf) {
		if d := dist[g.Idx(nb[0], nb[1])]; d >= 0 && (best < 0 || d < best) {
			best = d
		}
	}
	if best < 0 {
		return -1
	}
	return int(best) + 1
}
