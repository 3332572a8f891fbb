package planner

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/npillmayer/choreo"
)

// Match assigns each agent position to one target position, minimizing the
// total distance with the chosen strategy. It returns assignment[i] = index
// of the target of agent i.
func Match(agents, targets []choreo.Vec3, strategy Strategy) ([]int, error) {
	if len(agents) != len(targets) {
		return nil, fmt.Errorf("%w: %d agents, %d targets", ErrAssignmentMismatch, len(agents), len(targets))
	}
	cost := CostMatrix(agents, targets)
	var assignment []int
	switch strategy {
	case Hungarian:
		assignment = HungarianAssign(cost)
	case Greedy:
		assignment = GreedyAssign(cost)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %d", ErrInvalidConfig, strategy)
	}
	tracer().Infof("%s matching of %d agents, total cost %.0f mm", strategy, len(agents),
		TotalCost(cost, assignment))
	return assignment, nil
}

// CostMatrix holds the distances between agents (rows) and targets
// (columns), in whole millimetres.
func CostMatrix(agents, targets []choreo.Vec3) [][]float64 {
	cost := make([][]float64, len(agents))
	for i, a := range agents {
		cost[i] = make([]float64, len(targets))
		for j, t := range targets {
			cost[i][j] = math.Round(a.Dist(t) * choreo.FixedScale)
		}
	}
	return cost
}

// TotalCost sums cost[i][assignment[i]].
func TotalCost(cost [][]float64, assignment []int) float64 {
	total := 0.0
	for i, j := range assignment {
		total += cost[i][j]
	}
	return total
}

// HungarianAssign solves the assignment problem for a square cost matrix
// with the Kuhn-Munkres algorithm, in O(n³). It returns assignment[i] = the
// column assigned to row i. A non-square matrix is a programmer error and
// panics.
func HungarianAssign(cost [][]float64) []int {
	n := len(cost)
	for i, row := range cost {
		if len(row) != n {
			panic(fmt.Sprintf("hungarian assignment needs a square matrix, row %d has %d of %d columns", i, len(row), n))
		}
	}
	if n == 0 {
		return []int{}
	}
	const inf = math.MaxFloat64 / 2

	// potentials and augmenting paths are 1-indexed, column 0 is virtual
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1) // p[j] = row assigned to column j
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := 1; j <= n; j++ {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 { // augment
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}
	assignment := make([]int, n)
	for j := 1; j <= n; j++ {
		assignment[p[j]-1] = j - 1
	}
	return assignment
}

type pair struct {
	cost        float64
	row, column int
}

func comparePairs(a, b interface{}) int {
	p, q := a.(pair), b.(pair)
	switch {
	case p.cost < q.cost:
		return -1
	case p.cost > q.cost:
		return 1
	case p.row != q.row:
		return p.row - q.row
	}
	return p.column - q.column
}

// GreedyAssign repeatedly takes the globally cheapest pair of an unassigned
// row and an unassigned column. Ties go to the lower row, then the lower
// column. The matrix must be square.
func GreedyAssign(cost [][]float64) []int {
	n := len(cost)
	heap := binaryheap.NewWith(comparePairs)
	for i, row := range cost {
		if len(row) != n {
			panic(fmt.Sprintf("greedy assignment needs a square matrix, row %d has %d of %d columns", i, len(row), n))
		}
		for j, c := range row {
			heap.Push(pair{cost: c, row: i, column: j})
		}
	}
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}
	taken := make([]bool, n)
	for assigned := 0; assigned < n; {
		top, ok := heap.Pop()
		if !ok {
			break
		}
		p := top.(pair)
		if assignment[p.row] >= 0 || taken[p.column] {
			continue
		}
		assignment[p.row] = p.column
		taken[p.column] = true
		assigned++
	}
	return assignment
}
