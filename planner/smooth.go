package planner

import (
	"fmt"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/bezier"
)

// MergeNodes collapses runs of consecutive nodes in the same cell into the
// first node of the run. Hold times within a cell are thereby absorbed into
// the following segment. The last node is kept if its position differs
// from the one of its run, so that paths end where the agent ended.
func MergeNodes(nodes []Node) []Node {
	merged := make([]Node, 0, len(nodes))
	for i, n := range nodes {
		if i > 0 && n.Cell == merged[len(merged)-1].Cell {
			continue
		}
		merged = append(merged, n)
	}
	if n := len(nodes); n > 1 {
		last := nodes[n-1]
		if kept := merged[len(merged)-1]; kept.Time != last.Time && !kept.Position.Equal(last.Position) {
			merged = append(merged, last)
		}
	}
	return merged
}

// SimplifyCollinear drops interior nodes which an agent would pass anyway
// when flying straight, at constant speed, between the surrounding kept
// nodes. tol is the allowed deviation in world units.
func SimplifyCollinear(nodes []Node, tol float64) []Node {
	if len(nodes) < 3 {
		return append([]Node(nil), nodes...)
	}
	kept := []Node{nodes[0]}
	anchor := 0
	for j := 2; j < len(nodes); j++ {
		if !onSchedule(nodes[anchor], nodes[j], nodes[anchor+1:j], tol) {
			anchor = j - 1
			kept = append(kept, nodes[anchor])
		}
	}
	return append(kept, nodes[len(nodes)-1])
}

// onSchedule is a predicate: do all nodes between a and b lie within tol of
// the constant speed motion from a to b?
func onSchedule(a, b Node, between []Node, tol float64) bool {
	span := b.Time - a.Time
	if !(span > 0) {
		return false
	}
	for _, n := range between {
		p := a.Position.Lerp(b.Position, (n.Time-a.Time)/span)
		if p.Dist(n.Position) > tol {
			return false
		}
	}
	return true
}

// Smooth fits a chain of cubics through the node positions, timed by the
// node times and with zero velocity at both ends. A single node yields one
// stationary segment lasting until end.
func Smooth(nodes []Node, end float64) ([]bezier.Cubic, error) {
	switch len(nodes) {
	case 0:
		return nil, fmt.Errorf("%w: no nodes to smooth", ErrEmptyInput)
	case 1:
		n := nodes[0]
		return []bezier.Cubic{bezier.Line(n.Position, n.Position, n.Time, max(end, n.Time))}, nil
	}
	points := make([]choreo.Vec3, len(nodes))
	times := make([]float64, len(nodes))
	for i, n := range nodes {
		points[i], times[i] = n.Position, n.Time
	}
	curves, err := bezier.Interpolate(points)
	if err != nil {
		return nil, err
	}
	if err := bezier.Retime(curves, times); err != nil {
		return nil, err
	}
	bezier.ClampEnds(curves)
	return curves, nil
}
