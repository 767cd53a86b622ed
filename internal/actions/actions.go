// Package actions defines the player command types and the undo ledger. The
// engine owns applying commands; this package is pure data so both the API
// layer and the engine can share it without import cycles.
package actions

import (
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/roads"
	"github.com/dzautner/megacity/internal/services"
)

// Command is any player-issued mutation of world state. Commands are applied
// between ticks, never mid-tick.
type Command interface {
	commandName() string
}

// PlaceRoadSegment draws a curved road between two points.
type PlaceRoadSegment struct {
	Start   roads.Vec2    `json:"start"`
	End     roads.Vec2    `json:"end"`
	Control [4]roads.Vec2 `json:"control"`
	Type    grid.RoadType `json:"type"`
}

// PlaceGridRoad rasterizes a straight road along cells, for tests and simple
// tools.
type PlaceGridRoad struct {
	X0   int           `json:"x0"`
	Y0   int           `json:"y0"`
	X1   int           `json:"x1"`
	Y1   int           `json:"y1"`
	Type grid.RoadType `json:"type"`
}

// PlaceZoneRect paints zoning over a rectangle.
type PlaceZoneRect struct {
	X0   int           `json:"x0"`
	Y0   int           `json:"y0"`
	X1   int           `json:"x1"`
	Y1   int           `json:"y1"`
	Zone grid.ZoneType `json:"zone"`
}

// PlaceService places a service building.
type PlaceService struct {
	Type buildings.ServiceType `json:"type"`
	X    int                   `json:"x"`
	Y    int                   `json:"y"`
}

// PlaceUtility places a utility source.
type PlaceUtility struct {
	Type buildings.UtilityType `json:"type"`
	X    int                   `json:"x"`
	Y    int                   `json:"y"`
}

// BulldozeRoadSegment removes one road segment.
type BulldozeRoadSegment struct {
	Segment roads.SegmentID `json:"segment"`
}

// BulldozeBuilding removes whatever occupies a cell: zone building, service,
// or zoning.
type BulldozeBuilding struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SetDistrictPolicy replaces a district's policy knobs.
type SetDistrictPolicy struct {
	District grid.DistrictID     `json:"district"`
	Policy   grid.DistrictPolicy `json:"policy"`
}

// SetTaxRate adjusts a zone category's tax rate.
type SetTaxRate struct {
	Category grid.ZoneCategory `json:"category"`
	Rate     float32           `json:"rate"`
}

// SetBudgetLevel adjusts a service category's funding level, 0..1.5.
type SetBudgetLevel struct {
	Category services.Category `json:"category"`
	Level    float32           `json:"level"`
}

// SetPaused pauses or resumes the clock.
type SetPaused struct {
	Paused bool `json:"paused"`
}

// SetTickRate changes the simulation speed in ticks per second.
type SetTickRate struct {
	Hz float64 `json:"hz"`
}

// Undo reverses the most recently applied undoable command.
type Undo struct{}

func (PlaceRoadSegment) commandName() string    { return "place_road_segment" }
func (PlaceGridRoad) commandName() string       { return "place_grid_road" }
func (PlaceZoneRect) commandName() string       { return "place_zone_rect" }
func (PlaceService) commandName() string        { return "place_service" }
func (PlaceUtility) commandName() string        { return "place_utility" }
func (BulldozeRoadSegment) commandName() string { return "bulldoze_road_segment" }
func (BulldozeBuilding) commandName() string    { return "bulldoze_building" }
func (SetDistrictPolicy) commandName() string   { return "set_district_policy" }
func (SetTaxRate) commandName() string          { return "set_tax_rate" }
func (SetBudgetLevel) commandName() string      { return "set_budget_level" }
func (SetPaused) commandName() string           { return "set_paused" }
func (SetTickRate) commandName() string         { return "set_tick_rate" }
func (Undo) commandName() string                { return "undo" }

// Name exposes the wire name of a command.
func Name(c Command) string { return c.commandName() }
