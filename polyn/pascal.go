package polyn

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/choreo"
	"gonum.org/v1/gonum/stat/combin"
)

// MaxDegree is the highest Bezier degree the firmware accepts.
const MaxDegree = 7

var (
	ErrDegree       = errors.New("unsupported polynomial degree")
	ErrZeroDuration = errors.New("duration must be positive")
)

var pascal [MaxDegree + 1][MaxDegree + 1]int

func init() {
	for n := 0; n <= MaxDegree; n++ {
		for k := 0; k <= n; k++ {
			pascal[n][k] = combin.Binomial(n, k)
		}
	}
}

// Binomial returns n over k from a precomputed table. Indices outside the
// table yield 0.
func Binomial(n, k int) int {
	if n < 0 || n > MaxDegree || k < 0 || k > n {
		return 0
	}
	return pascal[n][k]
}

func sign(n int) float64 {
	if n%2 == 0 {
		return 1
	}
	return -1
}

func checkDegree(n int) error {
	if n < 0 || n > MaxDegree {
		return fmt.Errorf("%w: %d (0…%d)", ErrDegree, n, MaxDegree)
	}
	return nil
}

// Coefficients returns the matrix M for a Bezier curve of the given degree,
// with M[j][i] = (-1)^(i+j) ⋅ C(degree,j) ⋅ C(j,i). The power coefficient
// c_j equals Σ_i M[j][i]⋅p_i for control values p_i.
func Coefficients(degree int) ([][]float64, error) {
	if err := checkDegree(degree); err != nil {
		return nil, err
	}
	m := make([][]float64, degree+1)
	for j := range m {
		m[j] = make([]float64, degree+1)
		for i := 0; i <= j; i++ {
			m[j][i] = sign(i+j) * float64(Binomial(degree, j)*Binomial(j, i))
		}
	}
	return m, nil
}

// BezierToPower converts control values of a Bezier curve (one axis) to
// power basis coefficients over t ∈ [0,1].
func BezierToPower(ctrl []float64) ([]float64, error) {
	m, err := Coefficients(len(ctrl) - 1)
	if err != nil {
		return nil, err
	}
	c := make([]float64, len(ctrl))
	for j := range c {
		for i, p := range ctrl {
			c[j] += m[j][i] * p
		}
	}
	return c, nil
}

// PowerToBezier converts power basis coefficients over t ∈ [0,1] back to
// Bezier control values.
func PowerToBezier(coeffs []float64) ([]float64, error) {
	n := len(coeffs) - 1
	if err := checkDegree(n); err != nil {
		return nil, err
	}
	p := make([]float64, n+1)
	p[0] = coeffs[0]
	for i := 1; i <= n; i++ {
		s := 0.0
		for j := 0; j < i; j++ {
			s += p[j] * float64(Binomial(i, j)) * sign(j) * sign(i-1)
		}
		p[i] = s + coeffs[i]/float64(Binomial(n, i))
	}
	T().Debugf("power %v → bezier %v", coeffs, p)
	return p, nil
}

// ToPolynomial converts 3D control points to per-axis power coefficients.
func ToPolynomial(points []choreo.Vec3) ([3][]float64, error) {
	var c [3][]float64
	for _, a := range choreo.Axes {
		ctrl := make([]float64, len(points))
		for i, p := range points {
			ctrl[i] = p.Get(a)
		}
		coeffs, err := BezierToPower(ctrl)
		if err != nil {
			return c, err
		}
		c[a] = coeffs
	}
	return c, nil
}

// Scale maps coefficients over t ∈ [0,1] to coefficients over s ∈ [0,duration],
// i.e. c_i / duration^i.
func Scale(coeffs []float64, duration float64) ([]float64, error) {
	if !(duration > 0) {
		return nil, fmt.Errorf("%w: %g", ErrZeroDuration, duration)
	}
	return rescale(coeffs, 1/duration), nil
}

// Unscale is the inverse of Scale: c_i ⋅ duration^i.
func Unscale(coeffs []float64, duration float64) ([]float64, error) {
	if !(duration > 0) {
		return nil, fmt.Errorf("%w: %g", ErrZeroDuration, duration)
	}
	return rescale(coeffs, duration), nil
}

func rescale(coeffs []float64, f float64) []float64 {
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = c * math.Pow(f, float64(i))
	}
	return out
}
