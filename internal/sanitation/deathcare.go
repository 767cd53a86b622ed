package sanitation

import (
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
)

// Death care tuning.
const (
	// cremationBatch is bodies processed per crematorium per slow tick.
	cremationBatch = 5
	// unburiedHappinessPenalty per body in the backlog, capped so a mass
	// casualty event cannot zero the whole city's mood.
	unburiedHappinessPenalty    = 0.5
	maxUnburiedHappinessPenalty = 15.0
)

// DeathCare routes the deceased to cemeteries and crematoria.
type DeathCare struct {
	// Pending holds bodies awaiting processing.
	Pending []citizens.DeathEvent `json:"pending"`
	// PlotsUsed per cemetery service ID.
	PlotsUsed map[buildings.ID]int `json:"plots_used"`
	Buried    int                  `json:"buried"`
	Cremated  int                  `json:"cremated"`
}

// NewDeathCare returns an empty system.
func NewDeathCare() *DeathCare {
	return &DeathCare{PlotsUsed: make(map[buildings.ID]int)}
}

// Enqueue adds a death to the backlog.
func (d *DeathCare) Enqueue(ev citizens.DeathEvent) {
	d.Pending = append(d.Pending, ev)
}

// Process drains the backlog into available capacity: cemetery plots first
// (they are cheap and permanent), then crematorium batches. Runs at slow
// tick. Facility Load mirrors usage for the effectiveness model.
func (d *DeathCare) Process(svcs *buildings.ServiceStore) {
	if len(d.Pending) == 0 {
		return
	}

	svcs.ForEach(func(s *buildings.Service) {
		if s.Type != buildings.SvcCemetery || len(d.Pending) == 0 {
			return
		}
		used := d.PlotsUsed[s.ID]
		for used < s.Capacity && len(d.Pending) > 0 {
			d.Pending = d.Pending[1:]
			used++
			d.Buried++
		}
		d.PlotsUsed[s.ID] = used
		s.Load = used
	})

	svcs.ForEach(func(s *buildings.Service) {
		if s.Type != buildings.SvcCrematorium || len(d.Pending) == 0 {
			return
		}
		batch := cremationBatch
		for batch > 0 && len(d.Pending) > 0 {
			d.Pending = d.Pending[1:]
			batch--
			d.Cremated++
		}
		s.Load = len(d.Pending)
	})
}

// Backlog is the number of unprocessed bodies.
func (d *DeathCare) Backlog() int {
	return len(d.Pending)
}

// HappinessPenalty is the citywide mood hit from the backlog, capped.
func (d *DeathCare) HappinessPenalty() float32 {
	p := float64(len(d.Pending)) * unburiedHappinessPenalty
	if p > maxUnburiedHappinessPenalty {
		p = maxUnburiedHappinessPenalty
	}
	return float32(p)
}
