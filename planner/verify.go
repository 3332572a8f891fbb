package planner

import (
	"fmt"
)

// Conflict reports that at some step an agent was inside the footprint of
// another agent.
type Conflict struct {
	Step int
	A, B AgentID
	Cell Cell // cell of A
}

func (c Conflict) String() string {
	return fmt.Sprintf("step %d: agent %d at %v inside footprint of agent %d", c.Step, c.A, c.Cell, c.B)
}

// Conflicts replays the discrete histories of paths, one node per step of
// length timestep. An agent which has arrived stays at its last node. Every
// conflicting pair is reported once per step, with A < B.
func Conflicts(paths []Path, timestep float64) []Conflict {
	steps := 0
	for _, p := range paths {
		steps = max(steps, len(p.Discrete))
	}
	cellAt := func(p Path, k int) Cell {
		return p.Discrete[min(k, len(p.Discrete)-1)].Cell
	}
	res := NewReservations()
	for k := 0; k < steps; k++ {
		start := float64(k) * timestep
		for _, p := range paths {
			if len(p.Discrete) > 0 {
				res.ReserveVolume(cellAt(p, k), p.Agent, start, start+timestep)
			}
		}
	}
	var conflicts []Conflict
	for k := 0; k < steps; k++ {
		mid := (float64(k) + 0.5) * timestep
		for _, p := range paths {
			if len(p.Discrete) == 0 {
				continue
			}
			c := cellAt(p, k)
			for _, o := range res.Owners(c, mid) {
				if o > p.Agent {
					conflicts = append(conflicts, Conflict{Step: k, A: p.Agent, B: o, Cell: c})
				}
			}
		}
	}
	if len(conflicts) > 0 {
		tracer().Errorf("%d conflicts in %d steps", len(conflicts), steps)
	}
	return conflicts
}
