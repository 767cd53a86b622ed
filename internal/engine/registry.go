package engine

import (
	"fmt"
	"log/slog"
	"time"
)

// Group orders systems within a tick. Groups run in declaration order; the
// topological sort only reorders systems inside a group.
type Group uint8

const (
	GroupInput Group = iota
	GroupStructural
	GroupPropagation
	GroupAgents
	GroupEconomy
	GroupEnvironment
	GroupStatistics
	GroupSave
	numGroups
)

// Name returns the group's registry name.
func (g Group) Name() string {
	switch g {
	case GroupInput:
		return "input"
	case GroupStructural:
		return "structural"
	case GroupPropagation:
		return "propagation"
	case GroupAgents:
		return "agents"
	case GroupEconomy:
		return "economy"
	case GroupEnvironment:
		return "environment"
	case GroupStatistics:
		return "statistics"
	case GroupSave:
		return "save"
	}
	return "unknown"
}

// System is one unit of per-tick work. After/Before constrain ordering
// against named systems in the same group.
type System struct {
	Name   string
	Group  Group
	After  []string
	Before []string
	Run    func(w *World)
}

// Registry holds systems and resolves their execution order.
type Registry struct {
	groups [numGroups][]System
	sorted bool
	// timings holds the last tick's per-system durations for the profiler.
	timings map[string]time.Duration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{timings: make(map[string]time.Duration)}
}

// Add registers a system. Names must be unique across all groups.
func (r *Registry) Add(s System) {
	for g := range r.groups {
		for i := range r.groups[g] {
			if r.groups[g][i].Name == s.Name {
				panic(fmt.Sprintf("engine: duplicate system %q", s.Name))
			}
		}
	}
	r.groups[s.Group] = append(r.groups[s.Group], s)
	r.sorted = false
}

// Sort resolves After/Before constraints per group with a topological sort.
// A dependency cycle is a programming error and panics at startup.
func (r *Registry) Sort() {
	for g := range r.groups {
		sorted, err := topoSort(r.groups[g])
		if err != nil {
			panic(fmt.Sprintf("engine: group %s: %v", Group(g).Name(), err))
		}
		r.groups[g] = sorted
	}
	r.sorted = true
}

// RunAll executes every system in group-then-topological order.
func (r *Registry) RunAll(w *World) {
	if !r.sorted {
		r.Sort()
	}
	for g := range r.groups {
		for i := range r.groups[g] {
			s := &r.groups[g][i]
			start := time.Now()
			s.Run(w)
			r.timings[s.Name] = time.Since(start)
		}
	}
}

// Timings returns the last tick's per-system durations.
func (r *Registry) Timings() map[string]time.Duration {
	out := make(map[string]time.Duration, len(r.timings))
	for k, v := range r.timings {
		out[k] = v
	}
	return out
}

// topoSort is Kahn's algorithm over the After/Before edges. Ties keep
// registration order so runs stay deterministic.
func topoSort(systems []System) ([]System, error) {
	index := make(map[string]int, len(systems))
	for i, s := range systems {
		index[s.Name] = i
	}

	// edges[a] lists systems that must run after a.
	edges := make([][]int, len(systems))
	indegree := make([]int, len(systems))
	addEdge := func(from, to int) {
		edges[from] = append(edges[from], to)
		indegree[to]++
	}
	for i, s := range systems {
		for _, name := range s.After {
			if j, ok := index[name]; ok {
				addEdge(j, i)
			}
		}
		for _, name := range s.Before {
			if j, ok := index[name]; ok {
				addEdge(i, j)
			}
		}
	}

	var queue []int
	for i := range systems {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	out := make([]System, 0, len(systems))
	for len(queue) > 0 {
		// Lowest registration index first for determinism.
		best := 0
		for i := 1; i < len(queue); i++ {
			if queue[i] < queue[best] {
				best = i
			}
		}
		cur := queue[best]
		queue = append(queue[:best], queue[best+1:]...)
		out = append(out, systems[cur])
		for _, next := range edges[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(out) != len(systems) {
		var stuck []string
		for i := range systems {
			if indegree[i] > 0 {
				stuck = append(stuck, systems[i].Name)
			}
		}
		return nil, fmt.Errorf("ordering cycle among %v", stuck)
	}
	return out, nil
}

// logOrder dumps the resolved order at debug level, once at startup.
func (r *Registry) logOrder() {
	for g := range r.groups {
		for _, s := range r.groups[g] {
			slog.Debug("system registered", "group", Group(g).Name(), "system", s.Name)
		}
	}
}
