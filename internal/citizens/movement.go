package citizens

import (
	"math"

	"github.com/dzautner/megacity/internal/grid"
)

// Speed is world units per second at nominal conditions (4.8 units per tick
// at 10 Hz).
const Speed = 48.0

// smoothBlend is how far the target is pulled toward the Catmull-Rom curve
// through the previous, current, and next waypoints.
const smoothBlend = 0.3

// laneSpacing is the world-unit gap between the three visual lanes.
const laneSpacing = 2.5

// Modifiers multiply the per-tick step. The congestion multiplier is
// computed per cell from the traffic grid.
type Modifiers struct {
	Weather float32
	Snow    float32
	Fog     float32
	Mode    float32
}

// NominalModifiers is all-ones.
func NominalModifiers() Modifiers {
	return Modifiers{Weather: 1, Snow: 1, Fog: 1, Mode: 1}
}

// Advance moves a commuting citizen toward their current waypoint and
// returns true when the final waypoint has been reached. The traffic grid
// records the citizen's presence at the current waypoint cell.
func Advance(g *grid.Grid, c *Citizen, tickHz float32, m Modifiers) bool {
	if !c.State.Commuting() || c.PathIndex >= len(c.Path) {
		return c.PathIndex >= len(c.Path) && len(c.Path) > 0
	}

	wp := c.Path[c.PathIndex]
	wx, wy := grid.CellToWorld(int(wp.X), int(wp.Y))

	// Congestion at the waypoint cell slows movement, floored at 30%.
	traffic := g.Traffic[g.Idx(int(wp.X), int(wp.Y))]
	congestion := 1.0 / (1.0 + traffic*0.05)
	if congestion < 0.3 {
		congestion = 0.3
	}

	step := (Speed / tickHz) * m.Weather * m.Snow * m.Fog * m.Mode * congestion
	if step <= 0 {
		return false
	}

	dx := wx - c.PosX
	dy := wy - c.PosY
	rawDist := float32(math.Sqrt(float64(dx*dx + dy*dy)))

	// Arrival threshold is at least the per-tick step so slow citizens do
	// not orbit the waypoint.
	if rawDist < step {
		c.prevWX, c.prevWY = wx, wy
		c.PosX, c.PosY = wx, wy
		c.PathIndex++
		g.Traffic[g.Idx(int(wp.X), int(wp.Y))] += 1
		return c.PathIndex >= len(c.Path)
	}

	// Smoothed target: Catmull-Rom-style blend of previous position,
	// current waypoint, and next waypoint. Arrival is still checked against
	// the raw waypoint.
	tx, ty := smoothedTarget(c, wx, wy)
	sdx := tx - c.PosX
	sdy := ty - c.PosY
	sd := float32(math.Sqrt(float64(sdx*sdx + sdy*sdy)))
	if sd < 1e-6 {
		return false
	}
	nx := sdx / sd
	ny := sdy / sd

	// Per-entity lane offset, perpendicular to travel, scaled down as the
	// citizen approaches the waypoint.
	lane := float32(int(c.ID)%3) - 1 // -1, 0, +1
	perpX, perpY := -ny, nx
	laneScale := rawDist / (rawDist + 8.0)
	offset := lane * laneSpacing * laneScale

	c.PosX += nx*step + perpX*offset*0.02
	c.PosY += ny*step + perpY*offset*0.02

	g.Traffic[g.Idx(int(wp.X), int(wp.Y))] += 0.05
	return false
}

// smoothedTarget blends the current waypoint toward the Catmull-Rom midpoint
// of (previous, current, next). Falls back to the raw waypoint at the ends
// of the path.
func smoothedTarget(c *Citizen, wx, wy float32) (float32, float32) {
	if c.PathIndex+1 >= len(c.Path) {
		return wx, wy
	}
	next := c.Path[c.PathIndex+1]
	nwx, nwy := grid.CellToWorld(int(next.X), int(next.Y))

	px, py := c.prevWX, c.prevWY
	if px == 0 && py == 0 {
		px, py = c.PosX, c.PosY
	}

	// Catmull-Rom at t=0.5 with P0=prev, P1=current, P2=next (uniform knots,
	// tangent terms folded into the average).
	curveX := 0.25*px + 0.5*wx + 0.25*nwx
	curveY := 0.25*py + 0.5*wy + 0.25*nwy

	return wx + (curveX-wx)*smoothBlend, wy + (curveY-wy)*smoothBlend
}

// SetPath installs a fresh path cache and resets smoothing state.
func SetPath(c *Citizen, path []grid.Coord) {
	c.Path = path
	c.PathIndex = 0
	c.PathPending = false
	c.prevWX, c.prevWY = c.PosX, c.PosY
}

// ClearPath drops the path cache and invalidates in-flight requests.
func ClearPath(c *Citizen) {
	c.Path = nil
	c.PathIndex = 0
	c.PathPending = false
	c.PathGen++
}
