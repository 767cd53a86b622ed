// Package api serves the city state over HTTP. GET endpoints are public
// read-only observation; POST endpoints require a bearer token and feed the
// engine's command queue. A WebSocket endpoint streams state frames to the
// renderer.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"github.com/dzautner/megacity/internal/actions"
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/engine"
	"github.com/dzautner/megacity/internal/grid"
	"github.com/dzautner/megacity/internal/roads"
	"github.com/dzautner/megacity/internal/save"
)

const maxWSConns = 8

// Server serves the simulation over HTTP.
type Server struct {
	World    *engine.World
	Eng      *engine.Engine
	DB       *save.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Active WebSocket connection count (atomic).
	wsConns int32
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	commandLimiter := NewRateLimiter(300, time.Minute)

	mux := http.NewServeMux()

	// Public read-only endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/demand", s.handleDemand)
	mux.HandleFunc("/api/v1/budget", s.handleBudget)
	mux.HandleFunc("/api/v1/weather", s.handleWeather)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/districts", s.handleDistricts)
	mux.HandleFunc("/api/v1/buildings", s.handleBuildings)
	mux.HandleFunc("/api/v1/roads", s.handleRoads)
	mux.HandleFunc("/api/v1/citizens", s.handleCitizens)
	mux.HandleFunc("/api/v1/citizen/", s.handleCitizenDetail)
	mux.HandleFunc("/api/v1/map", s.handleBulkMap)
	mux.HandleFunc("/api/v1/cell/", s.handleCellDetail)
	mux.HandleFunc("/api/v1/undo/history", s.handleUndoHistory)

	// Admin endpoints (POST, bearer token).
	mux.HandleFunc("/api/v1/command", s.adminOnly(RateLimitMiddleware(commandLimiter, s.handleCommand)))
	mux.HandleFunc("/api/v1/undo", s.adminOnly(s.handleUndo))
	mux.HandleFunc("/api/v1/save", s.adminOnly(s.handleSave))

	// WebSocket state stream.
	mux.HandleFunc("/ws", s.handleStream)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are always
// allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request carries the admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no MEGACITY_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	wld := s.World
	writeJSON(w, map[string]any{
		"tick":       wld.Clock.Ticks,
		"sim_time":   engine.SimTime(&wld.Clock),
		"season":     wld.Clock.Season().Name(),
		"paused":     wld.Clock.Paused,
		"tick_hz":    wld.Params.TickHz,
		"running":    s.Eng.Running,
		"population": humanize.Comma(int64(wld.Stats.Population) + wld.Stats.VirtualPop),
		"treasury":   humanize.CommafWithDigits(wld.Stats.Treasury, 0),
		"debt":       humanize.CommafWithDigits(wld.Stats.Debt, 0),
		"buildings":  wld.Stats.Buildings,
		"weather": map[string]any{
			"condition":   wld.Weather.Condition.Name(),
			"temperature": wld.Weather.Temperature,
			"heat_wave":   wld.Weather.HeatWave.Severity.Name(),
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World.Stats)
}

func (s *Server) handleDemand(w http.ResponseWriter, r *http.Request) {
	d := s.World.Demand
	writeJSON(w, map[string]float32{
		"residential": d.Values[grid.CatResidential],
		"commercial":  d.Values[grid.CatCommercial],
		"industrial":  d.Values[grid.CatIndustrial],
		"office":      d.Values[grid.CatOffice],
	})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	b := s.World.Budget
	writeJSON(w, map[string]any{
		"treasury":  b.Treasury,
		"debt":      b.Debt,
		"tax_rates": b.TaxRates,
		"income":    b.Income,
		"expenses":  b.Expenses,
		"tourism": map[string]any{
			"attractiveness":   s.World.Tourism.Attractiveness,
			"monthly_visitors": s.World.Tourism.MonthlyVisitors,
			"monthly_income":   s.World.Tourism.MonthlyIncome,
		},
	})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	wx := s.World.Weather
	writeJSON(w, map[string]any{
		"condition":       wx.Condition.Name(),
		"temperature":     wx.Temperature,
		"base_temp":       wx.BaseTemp,
		"recent_rainfall": wx.RecentRainfall(7),
		"heat_wave": map[string]any{
			"active":           wx.HeatWave.Active(),
			"severity":         wx.HeatWave.Severity.Name(),
			"consecutive_days": wx.HeatWave.ConsecutiveDays,
			"energy_demand":    wx.HeatWave.Severity.EnergyDemandMultiplier(),
			"water_demand":     wx.HeatWave.Severity.WaterDemandMultiplier(),
		},
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events := s.World.Events
	if cat := r.URL.Query().Get("category"); cat != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == cat {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	type districtEntry struct {
		ID     int                 `json:"id"`
		Policy grid.DistrictPolicy `json:"policy"`
		Stats  grid.DistrictStats  `json:"stats"`
	}
	d := s.World.Districts
	result := make([]districtEntry, len(d.Policies))
	for i := range d.Policies {
		result[i] = districtEntry{ID: i, Policy: d.Policies[i], Stats: d.Stats[i]}
	}
	writeJSON(w, result)
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	type buildingEntry struct {
		ID        buildings.ID  `json:"id"`
		Zone      grid.ZoneType `json:"zone"`
		Level     uint8         `json:"level"`
		X         int           `json:"x"`
		Y         int           `json:"y"`
		Capacity  int           `json:"capacity"`
		Occupants int           `json:"occupants"`
		Building  bool          `json:"under_construction"`
	}
	var result []buildingEntry
	s.World.Buildings.ForEach(func(b *buildings.Building) {
		result = append(result, buildingEntry{
			ID: b.ID, Zone: b.Zone, Level: b.Level, X: b.X, Y: b.Y,
			Capacity: b.Capacity, Occupants: b.Occupants,
			Building: b.UnderConstruction(),
		})
	})
	writeJSON(w, result)
}

// handleRoads lists road segments with their current level-of-service grade.
func (s *Server) handleRoads(w http.ResponseWriter, r *http.Request) {
	type segmentEntry struct {
		ID        roads.SegmentID `json:"id"`
		Type      grid.RoadType   `json:"type"`
		ArcLength float64         `json:"arc_length"`
		Cells     int             `json:"cells"`
		LOS       string          `json:"los"`
	}
	g := s.World.Grid
	var result []segmentEntry
	for _, seg := range s.World.Roads.Segments {
		result = append(result, segmentEntry{
			ID: seg.ID, Type: seg.Type, ArcLength: seg.ArcLength,
			Cells: len(seg.Cells), LOS: string(seg.LOSGrade(g)),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleCitizens(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 5000 {
			limit = n
		}
	}

	type citizenSummary struct {
		ID        citizens.ID `json:"id"`
		Age       uint16      `json:"age"`
		Education uint8       `json:"education"`
		Tier      string      `json:"tier"`
		State     uint8       `json:"state"`
		Happiness float32     `json:"happiness"`
		Health    float32     `json:"health"`
		Employed  bool        `json:"employed"`
		PosX      float32     `json:"pos_x"`
		PosY      float32     `json:"pos_y"`
	}

	var result []citizenSummary
	s.World.Citizens.ForEach(func(c *citizens.Citizen) {
		if len(result) >= limit {
			return
		}
		result = append(result, citizenSummary{
			ID: c.ID, Age: c.Details.Age, Education: c.Details.Education,
			Tier: c.Tier.Name(), State: uint8(c.State),
			Happiness: c.Details.Happiness, Health: c.Details.Health,
			Employed: c.Work != nil, PosX: c.PosX, PosY: c.PosY,
		})
	})
	writeJSON(w, result)
}

func (s *Server) handleCitizenDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing citizen id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 32)
	if err != nil {
		http.Error(w, "invalid citizen id", http.StatusBadRequest)
		return
	}
	c := s.World.Citizens.Get(citizens.ID(id))
	if c == nil {
		http.Error(w, "citizen not found", http.StatusNotFound)
		return
	}
	writeJSON(w, c)
}

// handleBulkMap returns the full rasters for the map renderer in one payload.
func (s *Server) handleBulkMap(w http.ResponseWriter, r *http.Request) {
	g := s.World.Grid

	type serviceEntry struct {
		ID   buildings.ID          `json:"id"`
		Type buildings.ServiceType `json:"type"`
		X    int                   `json:"x"`
		Y    int                   `json:"y"`
	}
	var services []serviceEntry
	s.World.Services.ForEach(func(svc *buildings.Service) {
		services = append(services, serviceEntry{ID: svc.ID, Type: svc.Type, X: svc.X, Y: svc.Y})
	})

	writeJSON(w, map[string]any{
		"width":      g.Width,
		"height":     g.Height,
		"cells":      g.Cells,
		"zones":      g.Zone,
		"roads":      g.Road,
		"land_value": g.LandValue,
		"services":   services,
	})
}

func (s *Server) handleCellDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/cell/:x/:y
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/cell/:x/:y", http.StatusBadRequest)
		return
	}
	x, err1 := strconv.Atoi(parts[4])
	y, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil || !s.World.Grid.InBounds(x, y) {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	g := s.World.Grid
	idx := g.Idx(x, y)

	result := map[string]any{
		"x":            x,
		"y":            y,
		"terrain":      g.Cells[idx],
		"zone":         g.Zone[idx],
		"road":         g.Road[idx],
		"road_damaged": g.RoadDamaged[idx],
		"elevation":    g.Elevation[idx],
		"has_power":    g.HasPower[idx],
		"has_water":    g.HasWater[idx],
		"heated":       g.Heated[idx],
		"pollution":    g.Pollution[idx],
		"noise":        g.Noise[idx],
		"land_value":   g.LandValue[idx],
		"traffic":      g.Traffic[idx],
		"education":    g.EducationLevel[idx],
		"district":     s.World.Districts.IDAt(x, y),
	}

	if ref := g.BuildingID[idx]; ref != 0 {
		if ref&(1<<31) != 0 {
			if svc := s.World.Services.Get(buildings.ID(ref &^ (1 << 31))); svc != nil {
				result["service"] = svc
			}
		} else if b := s.World.Buildings.Get(buildings.ID(ref)); b != nil {
			result["building"] = b
		}
	}
	writeJSON(w, result)
}

func (s *Server) handleUndoHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"depth":   s.World.Undo.Depth(),
		"history": s.World.Undo.History(),
	})
}

// commandEnvelope is the wire form of a player command: a type tag plus the
// command's own fields.
type commandEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var env commandEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cmd, err := decodeCommand(env)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.World.Enqueue(cmd)
	writeJSON(w, map[string]any{"queued": true, "command": env.Type})
}

// decodeCommand maps a wire envelope to a concrete command.
func decodeCommand(env commandEnvelope) (actions.Command, error) {
	unmarshal := func(v actions.Command) (actions.Command, error) {
		if len(env.Data) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return v, nil
	}

	switch env.Type {
	case "place_road_segment":
		c, err := unmarshal(&actions.PlaceRoadSegment{})
		return deref(c), err
	case "place_grid_road":
		c, err := unmarshal(&actions.PlaceGridRoad{})
		return deref(c), err
	case "place_zone_rect":
		c, err := unmarshal(&actions.PlaceZoneRect{})
		return deref(c), err
	case "place_service":
		c, err := unmarshal(&actions.PlaceService{})
		return deref(c), err
	case "place_utility":
		c, err := unmarshal(&actions.PlaceUtility{})
		return deref(c), err
	case "bulldoze_road_segment":
		c, err := unmarshal(&actions.BulldozeRoadSegment{})
		return deref(c), err
	case "bulldoze_building":
		c, err := unmarshal(&actions.BulldozeBuilding{})
		return deref(c), err
	case "set_district_policy":
		c, err := unmarshal(&actions.SetDistrictPolicy{})
		return deref(c), err
	case "set_tax_rate":
		c, err := unmarshal(&actions.SetTaxRate{})
		return deref(c), err
	case "set_budget_level":
		c, err := unmarshal(&actions.SetBudgetLevel{})
		return deref(c), err
	case "set_paused":
		c, err := unmarshal(&actions.SetPaused{})
		return deref(c), err
	case "set_tick_rate":
		c, err := unmarshal(&actions.SetTickRate{})
		return deref(c), err
	case "undo":
		return actions.Undo{}, nil
	}
	return nil, fmt.Errorf("unknown command type %q", env.Type)
}

// deref unwraps the pointer the JSON decoder needed back into the value form
// the engine switches on.
func deref(c actions.Command) actions.Command {
	switch v := c.(type) {
	case *actions.PlaceRoadSegment:
		return *v
	case *actions.PlaceGridRoad:
		return *v
	case *actions.PlaceZoneRect:
		return *v
	case *actions.PlaceService:
		return *v
	case *actions.PlaceUtility:
		return *v
	case *actions.BulldozeRoadSegment:
		return *v
	case *actions.BulldozeBuilding:
		return *v
	case *actions.SetDistrictPolicy:
		return *v
	case *actions.SetTaxRate:
		return *v
	case *actions.SetBudgetLevel:
		return *v
	case *actions.SetPaused:
		return *v
	case *actions.SetTickRate:
		return *v
	}
	return c
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.World.Enqueue(actions.Undo{})
	writeJSON(w, map[string]any{"queued": true})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	if err := engine.SaveWorld(s.World, s.DB); err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"tick": s.World.Clock.Ticks, "message": "saved"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// CORS is enforced by corsMiddleware for HTTP; the stream is public
	// read-only so any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamFrame is one WebSocket state update.
type streamFrame struct {
	Tick    uint64          `json:"tick"`
	SimTime string          `json:"sim_time"`
	Paused  bool            `json:"paused"`
	Stats   engine.SimStats `json:"stats"`
	Weather map[string]any  `json:"weather"`
	Events  []engine.Event  `json:"events,omitempty"`
}

// handleStream upgrades to WebSocket and pushes a state frame twice a second
// until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.wsConns, 1)
	if current > maxWSConns {
		atomic.AddInt32(&s.wsConns, -1)
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		atomic.AddInt32(&s.wsConns, -1)
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	slog.Info("stream client connected", "remote", r.RemoteAddr, "conns", current)

	go func() {
		defer atomic.AddInt32(&s.wsConns, -1)
		defer conn.Close()

		// Read pump: discard client messages, detect disconnect.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		lastEvents := len(s.World.Events)
		for {
			select {
			case <-done:
				slog.Info("stream client disconnected", "remote", r.RemoteAddr)
				return
			case <-ticker.C:
				frame := s.buildFrame(&lastEvents)
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(frame); err != nil {
					slog.Info("stream write failed, closing", "error", err)
					return
				}
			}
		}
	}()
}

func (s *Server) buildFrame(lastEvents *int) streamFrame {
	wld := s.World
	frame := streamFrame{
		Tick:    wld.Clock.Ticks,
		SimTime: engine.SimTime(&wld.Clock),
		Paused:  wld.Clock.Paused,
		Stats:   wld.Stats,
		Weather: map[string]any{
			"condition":   wld.Weather.Condition.Name(),
			"temperature": wld.Weather.Temperature,
			"heat_wave":   wld.Weather.HeatWave.Severity.Name(),
		},
	}
	// Only the events since the previous frame travel.
	if n := len(wld.Events); n > *lastEvents {
		frame.Events = wld.Events[*lastEvents:]
		*lastEvents = n
	} else if n < *lastEvents {
		*lastEvents = n
	}
	return frame
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
