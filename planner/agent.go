package planner

import (
	"fmt"
	"math"

	"github.com/npillmayer/choreo"
)

// AgentID identifies an agent within a planning run. It is the index of the
// agent's start position.
type AgentID int

// Node is a committed point of a discrete path: the cell an agent is in,
// its exact position and the time it got there.
type Node struct {
	Cell     Cell
	Position choreo.Vec3
	Time     float64
}

func (n Node) String() string {
	return fmt.Sprintf("%v@%.3f %v", n.Cell, n.Time, n.Position)
}

// Agent is the search state of one agent.
type Agent struct {
	ID         AgentID
	Position   choreo.Vec3
	Target     choreo.Vec3
	Cell       Cell
	TargetCell Cell
	Distance   float64 // to target
	Penalty    int     // raised whenever the agent stalls
	Nodes      []Node
	Complete   bool
	visited    map[Cell]struct{}
}

func newAgent(id AgentID, start, target choreo.Vec3, g *Grid) *Agent {
	a := &Agent{
		ID:         id,
		Position:   start,
		Target:     target,
		Cell:       g.CellOf(start),
		TargetCell: g.CellOf(target),
		Distance:   start.Dist(target),
		visited:    make(map[Cell]struct{}),
	}
	a.visited[a.Cell] = struct{}{}
	a.Nodes = []Node{{Cell: a.Cell, Position: start, Time: 0}}
	a.Complete = a.Cell == a.TargetCell && choreo.Is0(a.Distance)
	return a
}

// priority orders agents within a step: smaller goes first.
func (a *Agent) priority(cellSize float64) float64 {
	return a.Distance + float64(a.Penalty)*cellSize
}

// Visited is a predicate: has the agent been in c since its last stall?
func (a *Agent) Visited(c Cell) bool {
	_, ok := a.visited[c]
	return ok
}

// admissible is a predicate: may the agent enter c this step? The target
// cell only has to be unowned; elsewhere the agent's whole footprint has to
// be clear of others.
func (a *Agent) admissible(g *Grid, c Cell) bool {
	if c == a.TargetCell {
		return g.Available(c, a.ID)
	}
	return g.VolumeAvailable(c, a.ID)
}

// step moves the agent for one time step ending at time t and commits the
// resulting node. The agent's new footprint is registered in g.
func (a *Agent) step(g *Grid, cfg Config, t float64, run string) {
	before := a.Distance
	pos, cell, ok := a.advance(g, cfg)
	if !ok {
		pos, cell, ok = a.sidestep(g)
	}
	if ok {
		a.moveTo(pos, cell)
	} else {
		a.Penalty++
		clear(a.visited)
		a.visited[a.Cell] = struct{}{}
		tracer().P("run", run).P("agent", a.ID).Debugf("stalled at %v, penalty %d", a.Cell, a.Penalty)
	}
	if a.Distance < before {
		a.Penalty = 0
	}
	g.OccupyVolume(a.Cell, a.ID)
	a.Nodes = append(a.Nodes, Node{Cell: a.Cell, Position: a.Position, Time: t})
}

func (a *Agent) moveTo(pos choreo.Vec3, cell Cell) {
	if cell == a.TargetCell {
		pos = a.Target
		a.Complete = true
	}
	a.Position = pos
	a.Cell = cell
	a.Distance = pos.Dist(a.Target)
	a.visited[cell] = struct{}{}
}

// advance marches along the straight line to the target in increments of a
// cell, up to the step distance, and returns the furthest point of the
// admissible prefix.
func (a *Agent) advance(g *Grid, cfg Config) (choreo.Vec3, Cell, bool) {
	remaining := a.Distance
	if choreo.Is0(remaining) {
		return a.Target, a.TargetCell, a.admissible(g, a.TargetCell)
	}
	dir := a.Target.Sub(a.Position).Scaled(1 / remaining)
	reach := min(cfg.StepDistance(), remaining)
	if _, exit, ok := g.Bounds().Intersect(a.Position, dir); ok {
		reach = min(reach, a.Position.Dist(exit))
	}
	var best choreo.Vec3
	var bestCell Cell
	found := false
	for d := g.size; ; d += g.size {
		last := d >= reach
		if last {
			d = reach
		}
		p := a.Position.Add(dir.Scaled(d))
		if remaining-d <= choreo.Epsilon {
			p = a.Target
		}
		c := g.CellOf(p)
		if !a.admissible(g, c) {
			break
		}
		best, bestCell, found = p, c, true
		if last {
			break
		}
	}
	if !found || choreo.Is0(best.Dist(a.Position)) {
		return best, bestCell, false
	}
	return best, bestCell, true
}

// sidestep searches the unvisited neighbour cells for the one minimizing
// distance to target plus misalignment. It is accepted if its cost does not
// exceed the current distance plus the agent's penalty.
func (a *Agent) sidestep(g *Grid) (choreo.Vec3, Cell, bool) {
	h := a.Cell.Dist(a.TargetCell)
	goal := a.TargetCell.Sub(a.Cell).vec().Normalized()
	bestCost := math.Inf(1)
	var best Cell
	for _, d := range neighbours {
		n := a.Cell.Add(d)
		if a.Visited(n) || !a.admissible(g, n) {
			continue
		}
		align := d.vec().Normalized().Dot(goal)
		if cost := n.Dist(a.TargetCell) + 1 - align; cost < bestCost {
			bestCost, best = cost, n
		}
	}
	if bestCost > h+float64(a.Penalty) {
		return a.Position, a.Cell, false
	}
	return g.Center(best), best, true
}
