// Package worldgen generates initial terrain using layered simplex noise.
// Produces elevation and moisture maps, then derives grass/water cells.
package worldgen

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/dzautner/megacity/internal/grid"
)

// Config holds terrain generation parameters.
type Config struct {
	Width    int
	Height   int
	Seed     int64
	SeaLevel float64 // elevation threshold below which cells become water
}

// DefaultConfig returns the standard 256×256 world.
func DefaultConfig() Config {
	return Config{
		Width:    grid.DefaultWidth,
		Height:   grid.DefaultHeight,
		Seed:     1,
		SeaLevel: 0.22,
	}
}

// FlatConfig returns an all-grass world, useful for tests and scenarios.
func FlatConfig(w, h int) Config {
	return Config{Width: w, Height: h, Seed: 1, SeaLevel: -1}
}

// Generate creates a grid with elevation and water derived from noise.
func Generate(cfg Config) *grid.Grid {
	g := grid.New(cfg.Width, cfg.Height)

	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	moistNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx := float64(x)
			fy := float64(y)

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.012, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 3, 0.008, 0.5)

			idx := g.Idx(x, y)
			g.Elevation[idx] = float32(elev)

			// Low elevation plus high moisture carves lakes and rivers.
			if elev < cfg.SeaLevel || (elev < cfg.SeaLevel+0.05 && moist > 0.75) {
				g.Cells[idx] = grid.CellWater
			}
		}
	}

	return g
}

// octaveNoise layers multiple noise frequencies for natural-looking terrain.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
