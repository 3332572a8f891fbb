package planner

import (
	"sort"
)

// Morton codes interleave the bits of three 21 bit coordinates. Cells are
// biased so that small negative coordinates, e.g. footprints at the grid
// border, stay distinct.
const (
	mortonBits = 21
	mortonBias = 1 << (mortonBits - 1)
	mortonMask = 1<<mortonBits - 1
)

// Morton returns the z-order code of cell c.
func Morton(c Cell) uint64 {
	return split3(uint64(c.X+mortonBias)) | split3(uint64(c.Y+mortonBias))<<1 | split3(uint64(c.Z+mortonBias))<<2
}

// FromMorton is the inverse of Morton.
func FromMorton(code uint64) Cell {
	return Cell{
		X: int(compact3(code)) - mortonBias,
		Y: int(compact3(code>>1)) - mortonBias,
		Z: int(compact3(code>>2)) - mortonBias,
	}
}

func split3(a uint64) uint64 {
	x := a & mortonMask
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}

func compact3(w uint64) uint64 {
	w &= 0x1249249249249249
	w = (w ^ (w >> 2)) & 0x30c30c30c30c30c3
	w = (w ^ (w >> 4)) & 0xf00f00f00f00f00f
	w = (w ^ (w >> 8)) & 0x00ff0000ff0000ff
	w = (w ^ (w >> 16)) & 0x00ff00000000ffff
	w = (w ^ (w >> 32)) & mortonMask
	return w
}

// Window is the time interval [Start, End) during which an agent holds a
// cell.
type Window struct {
	Owner      AgentID
	Start, End float64
}

// Contains is a predicate: Start ≤ t < End ?
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t < w.End
}

// Reservations records which agents hold which cells over time.
type Reservations struct {
	windows map[uint64][]Window
}

// NewReservations creates an empty reservation table.
func NewReservations() *Reservations {
	return &Reservations{windows: make(map[uint64][]Window)}
}

// Reserve records that owner holds c during [start, end). A window
// adjoining or overlapping the owner's latest window on c extends it.
func (r *Reservations) Reserve(c Cell, owner AgentID, start, end float64) {
	code := Morton(c)
	ws := r.windows[code]
	for i := len(ws) - 1; i >= 0; i-- {
		if ws[i].Owner != owner {
			continue
		}
		if ws[i].End >= start {
			ws[i].End = max(ws[i].End, end)
			ws[i].Start = min(ws[i].Start, start)
			return
		}
		break
	}
	r.windows[code] = append(ws, Window{Owner: owner, Start: start, End: end})
}

// ReserveVolume reserves the 3×3×3 block centered at c.
func (r *Reservations) ReserveVolume(c Cell, owner AgentID, start, end float64) {
	for _, d := range volume {
		r.Reserve(c.Add(d), owner, start, end)
	}
}

// Owners lists the agents holding c at time t, in ascending order.
func (r *Reservations) Owners(c Cell, t float64) []AgentID {
	var owners []AgentID
	for _, w := range r.windows[Morton(c)] {
		if w.Contains(t) {
			owners = append(owners, w.Owner)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners
}

// Len is the number of cells with at least one reservation.
func (r *Reservations) Len() int {
	return len(r.windows)
}
