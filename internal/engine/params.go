package engine

import "github.com/dzautner/megacity/internal/weather"

// Params are the simulation tuning knobs read at world creation.
type Params struct {
	// TickHz is the simulation rate in ticks per second.
	TickHz float64 `json:"tick_hz"`
	// SlowTickInterval is how many ticks between slow-cadence passes.
	SlowTickInterval uint64 `json:"slow_tick_interval"`

	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`

	Climate weather.ClimateZone `json:"climate"`

	// ImmigrationPerDay is the base arrivals when residential demand is
	// positive and housing exists.
	ImmigrationPerDay int `json:"immigration_per_day"`

	// SaveVersion stamps the save blobs.
	SaveVersion int `json:"save_version"`
}

// DefaultParams returns the standard 256x256 world tuning.
func DefaultParams() Params {
	return Params{
		TickHz:            10,
		SlowTickInterval:  100,
		Width:             256,
		Height:            256,
		Seed:              1,
		Climate:           weather.ClimateTemperate,
		ImmigrationPerDay: 20,
		SaveVersion:       1,
	}
}
