// Package environment maintains the pollution, noise, land value, and
// traffic overlay grids.
package environment

import (
	"math"

	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Pollution tuning.
const (
	pollutionDecay     = 0.97 // retained per slow tick after diffusion
	pollutionDiffusion = 0.15 // share shed to each neighbor ring pass
	pollutionCap       = 100.0
)

// Traffic decays every tick so congestion reflects recent movement.
const trafficDecay = 0.995

// industrialPollution is emitted per slow tick per building level.
const industrialPollution = 8.0

// DecayTraffic is called every tick.
func DecayTraffic(g *grid.Grid) {
	for i := range g.Traffic {
		g.Traffic[i] *= trafficDecay
		if g.Traffic[i] < 0.01 {
			g.Traffic[i] = 0
		}
	}
}

// StepPollution runs at slow-tick cadence: emit from sources, diffuse with a
// separable Gaussian-style blur, decay, clamp. scratch must be a reusable
// buffer of grid size.
func StepPollution(g *grid.Grid, bstore *buildings.Store, utils *buildings.UtilityStore, scratch []float32) {
	// Emission.
	bstore.ForEach(func(b *buildings.Building) {
		if b.UnderConstruction() {
			return
		}
		if b.Zone == grid.ZoneIndustrial {
			idx := g.Idx(b.X, b.Y)
			g.Pollution[idx] += industrialPollution * float32(b.Level)
		}
	})
	utils.ForEach(func(u *buildings.Utility) {
		if p := u.Type.PollutionOutput(); p > 0 {
			g.Pollution[g.Idx(u.X, u.Y)] += p
		}
	})

	// Horizontal then vertical diffusion pass (separable kernel
	// [d, 1-2d, d]).
	w, h := g.Width, g.Height
	d := float32(pollutionDiffusion)
	keep := 1 - 2*d

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			v := g.Pollution[row+x] * keep
			if x > 0 {
				v += g.Pollution[row+x-1] * d
			}
			if x < w-1 {
				v += g.Pollution[row+x+1] * d
			}
			scratch[row+x] = v
		}
	}
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			v := scratch[row+x] * keep
			if y > 0 {
				v += scratch[row-w+x] * d
			}
			if y < h-1 {
				v += scratch[row+w+x] * d
			}
			v *= pollutionDecay
			if v > pollutionCap {
				v = pollutionCap
			}
			if v < 0.05 {
				v = 0
			}
			g.Pollution[row+x] = v
		}
	}
}

// Noise tuning.
const (
	noiseTrafficWeight  = 0.6
	noiseIndustrialBase = 25.0
	noiseAirportBase    = 60.0
	noiseStadiumBase    = 40.0
	noiseRadiusCells    = 12

	// Attenuation per obstruction along the source-to-cell line.
	noiseBuildingAttenuation = 0.7
	noiseTerrainAttenuation  = 0.5
	// Obstruction can remove at most 80% of the sound.
	noiseMinTransmission = 0.2
)

// noiseSource is an emitter collected for the radial pass.
type noiseSource struct {
	x, y  int
	level float32
}

// StepNoise recomputes the noise grid from traffic and point emitters, with
// line-of-sight attenuation through buildings and elevated terrain.
func StepNoise(g *grid.Grid, bstore *buildings.Store, svcs *buildings.ServiceStore) {
	for i := range g.Noise {
		g.Noise[i] = g.Traffic[i] * noiseTrafficWeight
	}

	var sources []noiseSource
	bstore.ForEach(func(b *buildings.Building) {
		if b.Zone == grid.ZoneIndustrial && !b.UnderConstruction() {
			sources = append(sources, noiseSource{b.X, b.Y, noiseIndustrialBase * float32(b.Level)})
		}
	})
	svcs.ForEach(func(s *buildings.Service) {
		switch s.Type {
		case buildings.SvcAirport:
			sources = append(sources, noiseSource{s.X, s.Y, noiseAirportBase})
		case buildings.SvcStadium:
			sources = append(sources, noiseSource{s.X, s.Y, noiseStadiumBase})
		}
	})

	for _, src := range sources {
		spreadNoise(g, src)
	}

	for i := range g.Noise {
		if g.Noise[i] > 100 {
			g.Noise[i] = 100
		}
	}
}

func spreadNoise(g *grid.Grid, src noiseSource) {
	x0 := max(src.x-noiseRadiusCells, 0)
	x1 := min(src.x+noiseRadiusCells, g.Width-1)
	y0 := max(src.y-noiseRadiusCells, 0)
	y1 := min(src.y+noiseRadiusCells, g.Height-1)
	srcElev := g.Elevation[g.Idx(src.x, src.y)]

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x - src.x)
			dy := float64(y - src.y)
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist > noiseRadiusCells {
				continue
			}
			falloff := 1.0 - dist/noiseRadiusCells
			level := src.level * float32(falloff)
			level *= lineTransmission(g, src.x, src.y, x, y, srcElev)
			idx := g.Idx(x, y)
			g.Noise[idx] += level
		}
	}
}

// lineTransmission walks the line from source to target and attenuates for
// each intervening building or terrain rise, floored at 20% transmission.
func lineTransmission(g *grid.Grid, sx, sy, tx, ty int, srcElev float32) float32 {
	steps := max(absi(tx-sx), absi(ty-sy))
	if steps <= 1 {
		return 1
	}
	transmission := float32(1)
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		cx := sx + int(math.Round(float64(tx-sx)*t))
		cy := sy + int(math.Round(float64(ty-sy)*t))
		idx := g.Idx(cx, cy)
		if g.BuildingID[idx] != 0 {
			transmission *= noiseBuildingAttenuation
		} else if g.Elevation[idx] > srcElev+0.15 {
			transmission *= noiseTerrainAttenuation
		}
		if transmission <= noiseMinTransmission {
			return noiseMinTransmission
		}
	}
	return transmission
}

// Land value tuning.
const (
	landValueBase     = 100.0
	landValueSmoothing = 0.2
)

// StepLandValue recomputes land value from local amenity and nuisance, with
// temporal smoothing so values drift rather than jump.
func StepLandValue(g *grid.Grid, coverageQuality func(x, y int) float32) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			idx := g.Idx(x, y)
			if g.Cells[idx] == grid.CellWater {
				continue
			}

			v := float32(landValueBase)
			v += coverageQuality(x, y) * 80
			v -= g.Pollution[idx] * 0.8
			v -= g.Noise[idx] * 0.5
			v -= g.Traffic[idx] * 0.2
			if nearWater(g, x, y) {
				v += 30
			}
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}

			old := float32(g.LandValue[idx])
			g.LandValue[idx] = uint8(old + (v-old)*landValueSmoothing)
		}
	}
}

func nearWater(g *grid.Grid, x, y int) bool {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			nx, ny := x+dx, y+dy
			if g.InBounds(nx, ny) && g.Cells[g.Idx(nx, ny)] == grid.CellWater {
				return true
			}
		}
	}
	return false
}

func absi(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
