package planner

import (
	"fmt"
	"math"

	"github.com/npillmayer/choreo"
)

// Cell is a grid coordinate.
type Cell struct {
	X, Y, Z int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns c + d.
func (c Cell) Add(d Cell) Cell {
	return Cell{c.X + d.X, c.Y + d.Y, c.Z + d.Z}
}

// Sub returns c - d.
func (c Cell) Sub(d Cell) Cell {
	return Cell{c.X - d.X, c.Y - d.Y, c.Z - d.Z}
}

// Dist is the euclidean distance between cells, in cells.
func (c Cell) Dist(d Cell) float64 {
	return c.vec().Dist(d.vec())
}

// Chebyshev is the maximum per-axis distance between cells.
func (c Cell) Chebyshev(d Cell) int {
	dx, dy, dz := abs(c.X-d.X), abs(c.Y-d.Y), abs(c.Z-d.Z)
	return max(dx, dy, dz)
}

func (c Cell) vec() choreo.Vec3 {
	return choreo.V(float64(c.X), float64(c.Y), float64(c.Z))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// neighbours lists the 26 offsets around a cell, in a fixed order.
var neighbours = func() []Cell {
	n := make([]Cell, 0, 26)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				if i != 0 || j != 0 || k != 0 {
					n = append(n, Cell{i, j, k})
				}
			}
		}
	}
	return n
}()

// volume is a cell plus its neighbours: the footprint of an agent.
var volume = append([]Cell{{0, 0, 0}}, neighbours...)

// Cell contents, besides agent IDs + 1. A cell claimed by two agents is
// contested and available to nobody.
const (
	free      int32 = 0
	static    int32 = -1
	contested int32 = -2
)

// maxCells limits the memory a grid may allocate.
const maxCells = 1 << 26

// Grid is an occupancy grid of cubic cells. Each cell is free, static,
// contested or owned by an agent for the current step.
type Grid struct {
	min   choreo.Vec3
	size  float64
	dims  Cell
	cells []int32
}

// NewGrid creates a grid covering all points plus padding. The floor is
// extended down to y = 0 if everything is above ground.
func NewGrid(points []choreo.Vec3, cellSize, padding float64) (*Grid, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: grid needs at least one point", ErrEmptyInput)
	}
	if !(cellSize > 0) {
		return nil, fmt.Errorf("%w: cell size %g", ErrInvalidConfig, cellSize)
	}
	bounds := choreo.Bounds(points...).Expand(padding)
	bounds.Min.Y = math.Min(bounds.Min.Y, 0)
	size := bounds.Size()
	dims := Cell{
		X: max(1, int(math.Ceil(size.X/cellSize))),
		Y: max(1, int(math.Ceil(size.Y/cellSize))),
		Z: max(1, int(math.Ceil(size.Z/cellSize))),
	}
	n := dims.X * dims.Y * dims.Z
	if n > maxCells || n <= 0 {
		return nil, fmt.Errorf("%w: %v cells of size %g", ErrGridTooLarge, dims, cellSize)
	}
	tracer().Debugf("grid %v × %g at %v", dims, cellSize, bounds.Min)
	return &Grid{min: bounds.Min, size: cellSize, dims: dims, cells: make([]int32, n)}, nil
}

// Dims returns the number of cells per axis.
func (g *Grid) Dims() Cell {
	return g.dims
}

// CellSize returns the edge length of the cells.
func (g *Grid) CellSize() float64 {
	return g.size
}

// Bounds is the box covered by the grid.
func (g *Grid) Bounds() choreo.Box {
	return choreo.Box{Min: g.min, Max: g.min.Add(g.dims.vec().Scaled(g.size))}
}

// CellOf returns the cell containing p. The result may be out of bounds.
func (g *Grid) CellOf(p choreo.Vec3) Cell {
	r := p.Sub(g.min).Scaled(1 / g.size)
	return Cell{int(math.Floor(r.X)), int(math.Floor(r.Y)), int(math.Floor(r.Z))}
}

// Center returns the center of cell c.
func (g *Grid) Center(c Cell) choreo.Vec3 {
	return g.min.Add(c.vec().Add(choreo.V(0.5, 0.5, 0.5)).Scaled(g.size))
}

// InBounds is a predicate.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.dims.X && c.Y >= 0 && c.Y < g.dims.Y && c.Z >= 0 && c.Z < g.dims.Z
}

func (g *Grid) index(c Cell) int {
	return (c.X*g.dims.Y+c.Y)*g.dims.Z + c.Z
}

// Clear frees every cell.
func (g *Grid) Clear() {
	clear(g.cells)
}

// MarkStatic blocks all cells intersecting box b.
func (g *Grid) MarkStatic(b choreo.Box) {
	lo, hi := g.CellOf(b.Min), g.CellOf(b.Max)
	for x := max(lo.X, 0); x <= min(hi.X, g.dims.X-1); x++ {
		for y := max(lo.Y, 0); y <= min(hi.Y, g.dims.Y-1); y++ {
			for z := max(lo.Z, 0); z <= min(hi.Z, g.dims.Z-1); z++ {
				g.cells[g.index(Cell{x, y, z})] = static
			}
		}
	}
}

// Occupy claims cell c for agent id, unless it is out of bounds or static.
func (g *Grid) Occupy(c Cell, id AgentID) {
	if !g.InBounds(c) {
		return
	}
	switch i, owner := g.index(c), int32(id)+1; g.cells[i] {
	case free:
		g.cells[i] = owner
	case static, contested, owner:
	default:
		g.cells[i] = contested
	}
}

// OccupyVolume occupies the 3×3×3 block centered at c.
func (g *Grid) OccupyVolume(c Cell, id AgentID) {
	for _, d := range volume {
		g.Occupy(c.Add(d), id)
	}
}

// Available is a predicate: is c inside the grid and free or owned by id?
func (g *Grid) Available(c Cell, id AgentID) bool {
	if !g.InBounds(c) {
		return false
	}
	v := g.cells[g.index(c)]
	return v == free || v == int32(id)+1
}

// VolumeAvailable checks Available for the 3×3×3 block centered at c.
func (g *Grid) VolumeAvailable(c Cell, id AgentID) bool {
	for _, d := range volume {
		if !g.Available(c.Add(d), id) {
			return false
		}
	}
	return true
}

// Owner returns the agent owning c, if any.
func (g *Grid) Owner(c Cell) (AgentID, bool) {
	if !g.InBounds(c) {
		return 0, false
	}
	v := g.cells[g.index(c)]
	if v <= 0 {
		return 0, false
	}
	return AgentID(v - 1), true
}

// IsStatic is a predicate.
func (g *Grid) IsStatic(c Cell) bool {
	return g.InBounds(c) && g.cells[g.index(c)] == static
}

// Occupancy counts the cells which are not free.
func (g *Grid) Occupancy() int {
	n := 0
	for _, v := range g.cells {
		if v != free {
			n++
		}
	}
	return n
}

// Capacity is the total number of cells.
func (g *Grid) Capacity() int {
	return len(g.cells)
}
