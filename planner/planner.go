/*
Package planner routes a swarm of agents from their start positions to a set
of target positions, avoiding mutual collisions.

Planning runs in discrete time steps on an occupancy grid. Agents are first
matched to targets, then stepped towards them one after another, closest
first. Every agent claims a 3×3×3 block of cells around its own cell; no
agent may enter a cell claimed by another. An agent which cannot advance on
a straight line tries a neighbouring cell, and if that fails too it stalls
and raises its penalty, which lowers its priority and makes it accept worse
detours. Paths are finally merged and smoothed into cubic Bezier chains.

	p, _ := planner.New(planner.DefaultConfig())
	p.Match(starts, targets)
	result, err := p.Run()

A run stops after Config.MaxIterations steps. Agents which did not arrive by
then are reported in Result, which is not an error.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package planner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/bezier"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'planner'
func tracer() tracing.Trace {
	return tracing.Select("planner")
}

var (
	ErrInvalidConfig      = errors.New("invalid planner configuration")
	ErrAssignmentMismatch = errors.New("number of agents and targets differ")
	ErrInvalidState       = errors.New("operation not allowed in planner state")
	ErrEmptyInput         = errors.New("nothing to plan")
	ErrGridTooLarge       = errors.New("occupancy grid too large")
)

// State is the lifecycle state of a Planner.
type State int8

const (
	Idle State = iota
	Matched
	Stepping
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Matched:
		return "Matched"
	case Stepping:
		return "Stepping"
	case Complete:
		return "Complete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Path is the outcome of planning for one agent.
type Path struct {
	Agent    AgentID
	Start    choreo.Vec3
	Target   choreo.Vec3
	Discrete []Node // one node per step, until arrival
	Merged   []Node
	Curves   []bezier.Cubic
	Complete bool
}

// Result is the outcome of a planning run.
type Result struct {
	RunID    uuid.UUID
	Paths    []Path // indexed by AgentID
	Complete int    // number of agents which arrived
	Total    int
	Steps    int
}

// Planner holds the state of one planning run. It is not safe for
// concurrent use.
type Planner struct {
	cfg        Config
	runID      uuid.UUID
	state      State
	starts     []choreo.Vec3
	targets    []choreo.Vec3
	assignment []int
	grid       *Grid
	agents     []*Agent
	steps      int
}

// New creates a planner in state Idle.
func New(cfg Config) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Planner{cfg: cfg, runID: uuid.New()}, nil
}

// RunID identifies the run in trace output.
func (p *Planner) RunID() uuid.UUID {
	return p.runID
}

// State returns the lifecycle state.
func (p *Planner) State() State {
	return p.state
}

// Assignment returns the target index per agent, once matched.
func (p *Planner) Assignment() []int {
	return p.assignment
}

func (p *Planner) expect(s State, op string) error {
	if p.state != s {
		return fmt.Errorf("%w: %s needs %s, is %s", ErrInvalidState, op, s, p.state)
	}
	return nil
}

// Match assigns agents to targets. Idle → Matched.
func (p *Planner) Match(starts, targets []choreo.Vec3) ([]int, error) {
	if err := p.expect(Idle, "match"); err != nil {
		return nil, err
	}
	if len(starts) == 0 {
		return nil, ErrEmptyInput
	}
	assignment, err := Match(starts, targets, p.cfg.Strategy)
	if err != nil {
		return nil, err
	}
	p.starts = append([]choreo.Vec3(nil), starts...)
	p.targets = append([]choreo.Vec3(nil), targets...)
	p.assignment = assignment
	p.state = Matched
	return assignment, nil
}

// Assign pairs agent i with targets[assignment[i]] directly, bypassing the
// matching. Idle → Matched.
func (p *Planner) Assign(starts, targets []choreo.Vec3, assignment []int) error {
	if err := p.expect(Idle, "assign"); err != nil {
		return err
	}
	if len(starts) == 0 {
		return ErrEmptyInput
	}
	if len(starts) != len(targets) || len(assignment) != len(starts) {
		return fmt.Errorf("%w: %d agents, %d targets, %d assignments", ErrAssignmentMismatch,
			len(starts), len(targets), len(assignment))
	}
	seen := make([]bool, len(targets))
	for i, j := range assignment {
		if j < 0 || j >= len(targets) || seen[j] {
			return fmt.Errorf("%w: agent %d assigned to target %d", ErrAssignmentMismatch, i, j)
		}
		seen[j] = true
	}
	p.starts = append([]choreo.Vec3(nil), starts...)
	p.targets = append([]choreo.Vec3(nil), targets...)
	p.assignment = append([]int(nil), assignment...)
	p.state = Matched
	return nil
}

// Start builds the grid and seeds every agent with its start node.
// Matched → Stepping, or directly Complete if every agent already is at
// its target.
func (p *Planner) Start() error {
	if err := p.expect(Matched, "start"); err != nil {
		return err
	}
	points := append(append([]choreo.Vec3(nil), p.starts...), p.targets...)
	grid, err := NewGrid(points, p.cfg.CellSize, p.cfg.Padding)
	if err != nil {
		return err
	}
	p.grid = grid
	p.agents = make([]*Agent, len(p.starts))
	for i, s := range p.starts {
		p.agents[i] = newAgent(AgentID(i), s, p.targets[p.assignment[i]], grid)
	}
	p.state = Stepping
	if p.done() {
		p.state = Complete
	}
	tracer().P("run", p.runID.String()).Infof("planning %d agents on %d cells", len(p.agents), grid.Capacity())
	return nil
}

// Step advances every incomplete agent by one time step. It reports whether
// the run is complete, either because all agents arrived or because the
// iteration cap has been reached.
func (p *Planner) Step() (bool, error) {
	if err := p.expect(Stepping, "step"); err != nil {
		return false, err
	}
	p.steps++
	t := float64(p.steps) * p.cfg.Timestep
	p.rebuild()
	run := p.runID.String()
	for _, a := range p.order() {
		a.step(p.grid, p.cfg, t, run)
	}
	if p.done() || p.steps >= p.cfg.MaxIterations {
		p.state = Complete
		tracer().P("run", run).Infof("planning stopped after %d steps, %d of %d agents arrived",
			p.steps, p.completed(), len(p.agents))
	}
	return p.state == Complete, nil
}

// Run steps until the run is complete and returns the result. It may be
// called in state Matched, Stepping or Complete.
func (p *Planner) Run() (*Result, error) {
	if p.state == Matched {
		if err := p.Start(); err != nil {
			return nil, err
		}
	}
	for p.state == Stepping {
		if _, err := p.Step(); err != nil {
			return nil, err
		}
	}
	return p.Result()
}

// Result collects merged and smoothed paths. State must be Complete.
func (p *Planner) Result() (*Result, error) {
	if err := p.expect(Complete, "result"); err != nil {
		return nil, err
	}
	res := &Result{RunID: p.runID, Total: len(p.agents), Steps: p.steps}
	end := float64(p.steps) * p.cfg.Timestep
	for _, a := range p.agents {
		path := Path{
			Agent:    a.ID,
			Start:    a.Nodes[0].Position,
			Target:   a.Target,
			Discrete: append([]Node(nil), a.Nodes...),
			Merged:   MergeNodes(a.Nodes),
			Complete: a.Complete,
		}
		if p.cfg.Simplify {
			path.Merged = SimplifyCollinear(path.Merged, p.cfg.SimplifyTolerance)
		}
		curves, err := Smooth(path.Merged, end)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", a.ID, err)
		}
		path.Curves = curves
		if a.Complete {
			res.Complete++
		}
		res.Paths = append(res.Paths, path)
	}
	return res, nil
}

// Grid returns the occupancy grid of the run, nil before Start.
func (p *Planner) Grid() *Grid {
	return p.grid
}

// Agents returns the agents of the run, nil before Start.
func (p *Planner) Agents() []*Agent {
	return p.agents
}

// rebuild clears the grid, re-applies static obstacles and claims every
// agent's footprint at its current cell.
func (p *Planner) rebuild() {
	p.grid.Clear()
	for _, b := range p.cfg.Obstacles {
		p.grid.MarkStatic(b)
	}
	for _, a := range p.agents {
		p.grid.OccupyVolume(a.Cell, a.ID)
	}
}

// order returns the incomplete agents by ascending priority, then ID.
func (p *Planner) order() []*Agent {
	var agents []*Agent
	for _, a := range p.agents {
		if !a.Complete {
			agents = append(agents, a)
		}
	}
	sort.Slice(agents, func(i, j int) bool {
		pi, pj := agents[i].priority(p.cfg.CellSize), agents[j].priority(p.cfg.CellSize)
		if pi != pj {
			return pi < pj
		}
		return agents[i].ID < agents[j].ID
	})
	return agents
}

func (p *Planner) completed() int {
	n := 0
	for _, a := range p.agents {
		if a.Complete {
			n++
		}
	}
	return n
}

func (p *Planner) done() bool {
	return p.completed() == len(p.agents)
}

// Solve runs a complete planning pipeline: match, start, step until done.
func Solve(cfg Config, starts, targets []choreo.Vec3) (*Result, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := p.Match(starts, targets); err != nil {
		return nil, err
	}
	return p.Run()
}
