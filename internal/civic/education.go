package civic

import (
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/citizens"
	"github.com/dzautner/megacity/internal/services"
)

// Education pipeline stages, indexed by the education level they grant.
const (
	StageElementary = 0 // grants level 1
	StageHighSchool = 1 // grants level 2
	StageUniversity = 2 // grants level 3
	NumStages       = 3
)

// Base graduation rates per stage before capacity strain.
var graduationRate = [NumStages]float32{0.95, 0.85, 0.70}

// Slow ticks enrolled before a graduation roll.
var stageDuration = [NumStages]uint32{60, 90, 120}

// stageSchool maps a stage to the school type that teaches it.
func stageSchool(stage int) buildings.ServiceType {
	switch stage {
	case StageElementary:
		return buildings.SvcElementarySchool
	case StageHighSchool:
		return buildings.SvcHighSchool
	}
	return buildings.SvcUniversity
}

// Pipeline tracks enrollment load per stage.
type Pipeline struct {
	Enrolled  [NumStages]int `json:"enrolled"`
	Capacity  [NumStages]int `json:"capacity"`
	Graduates [NumStages]int `json:"graduates"` // lifetime totals
}

// RefreshCapacity sums school capacity per stage and pushes enrollment load
// onto the school buildings for the effectiveness model.
func (p *Pipeline) RefreshCapacity(svcs *buildings.ServiceStore) {
	for i := range p.Capacity {
		p.Capacity[i] = 0
	}
	svcs.ForEach(func(s *buildings.Service) {
		switch s.Type {
		case buildings.SvcElementarySchool:
			p.Capacity[StageElementary] += s.Capacity
		case buildings.SvcHighSchool:
			p.Capacity[StageHighSchool] += s.Capacity
		case buildings.SvcUniversity:
			p.Capacity[StageUniversity] += s.Capacity
		}
	})
}

// capacityModifier scales graduation odds by crowding: at or under capacity
// there is no penalty; the modifier bottoms out at 0.5.
func (p *Pipeline) capacityModifier(stage int) float32 {
	if p.Capacity[stage] <= 0 {
		return 0.5
	}
	ratio := float32(p.Enrolled[stage]) / float32(p.Capacity[stage])
	if ratio <= 1 {
		return 1.0
	}
	mod := 1.0 / ratio
	if mod < 0.5 {
		mod = 0.5
	}
	return mod
}

// TryEnroll enrolls an unenrolled citizen in the next stage when a school of
// that stage covers their home. Children enter elementary; adults with
// education below 3 can continue through university.
func (p *Pipeline) TryEnroll(cov *services.HybridGrid, c *citizens.Citizen) bool {
	if c.EnrolledStage >= 0 {
		return false
	}
	stage := int(c.Details.Education)
	if stage >= NumStages {
		return false
	}
	// Elementary starts at age 6; later stages have no age gate beyond
	// having the prior level.
	if stage == StageElementary && c.Details.Age < 6 {
		return false
	}
	if cov.GetClamped(c.HomeX, c.HomeY, services.CatEducation) <= 0 {
		return false
	}
	c.EnrolledStage = int8(stage)
	c.TicksEnrolled = 0
	p.Enrolled[stage]++
	return true
}

// Advance progresses an enrolled citizen by one slow tick. At the stage
// duration a deterministic roll decides graduation; either way the citizen
// leaves the stage. Returns true on graduation.
func (p *Pipeline) Advance(c *citizens.Citizen) bool {
	if c.EnrolledStage < 0 {
		return false
	}
	stage := int(c.EnrolledStage)
	c.TicksEnrolled++
	if c.TicksEnrolled < stageDuration[stage] {
		return false
	}

	// Graduation roll keyed on the citizen's stable ID and enrolled-tick
	// count so replays and saves agree.
	roll := float32((uint64(c.ID)*31+uint64(c.TicksEnrolled)*17)%1000) / 1000.0
	graduated := roll < graduationRate[stage]*p.capacityModifier(stage)

	p.Enrolled[stage]--
	c.EnrolledStage = -1
	c.TicksEnrolled = 0

	if graduated {
		c.Details.Education = uint8(stage) + 1
		p.Graduates[stage]++
	}
	return graduated
}

// averageEducation across live citizens, for the statistics panel.
func AverageEducation(cstore *citizens.Store) float32 {
	var sum, n int
	cstore.ForEach(func(c *citizens.Citizen) {
		sum += int(c.Details.Education)
		n++
	})
	if n == 0 {
		return 0
	}
	return float32(sum) / float32(n)
}

// SchoolLoad pushes enrollment counts onto school buildings so overcrowding
// degrades their coverage effectiveness.
func (p *Pipeline) SchoolLoad(svcs *buildings.ServiceStore) {
	counts := [NumStages]struct{ load, capTotal int }{}
	for stage := 0; stage < NumStages; stage++ {
		counts[stage].load = p.Enrolled[stage]
		counts[stage].capTotal = p.Capacity[stage]
	}
	svcs.ForEach(func(s *buildings.Service) {
		for stage := 0; stage < NumStages; stage++ {
			if s.Type != stageSchool(stage) {
				continue
			}
			if counts[stage].capTotal > 0 {
				// Spread load proportionally to capacity.
				s.Load = counts[stage].load * s.Capacity / counts[stage].capTotal
			} else {
				s.Load = 0
			}
		}
	})
}
