// Package polyn is for arithmetic with univariate polynomials in power basis
// and for converting between Bezier control points and power coefficients.
/*
BSD 3-Clause License

Copyright (c) 2017–21, Norbert Pillmayer.

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
   list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
   this list of conditions and the following disclaimer in the documentation
   and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
   contributors may be used to endorse or promote products derived from
   this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/
package polyn

import (
	"bytes"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/choreo"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the polynomial tracer.
func T() tracing.Trace {
	return tracing.Select("polyn")
}

// X is a helper for quick construction of polynomials.
// It denotes a term
//
//	C⋅t^I
//
// I > 0
type X struct {
	I int     // exponent of t
	C float64 // coefficient
}

// New creates a polynomial, given the term coefficients and exponents
//
// Use it as
//
//	polyn.New(8, polyn.X{2,5}, polyn.X{1,2/3} )
//
// to get
//
//	P(t) = 8 + 2/3t + 5t²
func New(c float64, tms ...X) (Polynomial, error) { // construct a polynomial
	p := NewConstantPolynomial(c)
	var err error
	for _, t := range tms {
		if t.I < 1 {
			err = fmt.Errorf("term exponent must be at least 1, skipping it")
		} else {
			p.SetTerm(t.I, t.C)
		}
	}
	return p, err
}

// FromCoefficients creates a polynomial c[0] + c[1]t + c[2]t² + … .
func FromCoefficients(c []float64) Polynomial {
	p := NewConstantPolynomial(0)
	for i, a := range c {
		p.SetTerm(i, a)
	}
	return p.Zap()
}

// Polynomial is a type for polynomials in one variable
//
//	c + a.1 t + a.2 t² + ... a.n t^n .
//
// We store the coefficients only. Index 0 is the constant term.
// We store the coeffs in a TreeMap (sorted map), keyed by exponent.
type Polynomial struct {
	Terms *treemap.Map
}

// NewConstantPolynomial creates a Polynomial consisting of just a constant term.
func NewConstantPolynomial(c float64) Polynomial {
	p := Polynomial{}
	p.checkTerms()
	p.Terms.Put(0, c) // initialize with constant term (at position 0)
	return p.Zap()
}

func (p *Polynomial) checkTerms() {
	if p.Terms == nil {
		p.Terms = treemap.NewWithIntComparator()
	}
}

// SetTerm sets the coefficient for term t^i within a Polynomial.
// For i=0, sets the constant term.
func (p Polynomial) SetTerm(i int, scale float64) Polynomial {
	p.checkTerms()
	p.Terms.Put(i, scale)
	return p
}

// CopyPolynomial makes a copy of a numeric Polynomial.
func (p Polynomial) CopyPolynomial() Polynomial {
	p1 := NewConstantPolynomial(0.0) // will become our return value
	p.checkTerms()
	it := p.Terms.Iterator()
	for it.Next() {
		p1.SetTerm(it.Key().(int), it.Value().(float64))
	}
	return p1
}

// Internal method: add or subtract 2 polynomials. The high level methods
// are based on this one.
func (p Polynomial) addOrSub(p2 Polynomial, doAdd bool) Polynomial {
	p1 := p.CopyPolynomial() // will become our return value
	p2.checkTerms()
	it2 := p2.Terms.Iterator()
	for it2.Next() {
		pos2 := it2.Key().(int)
		scale2 := it2.Value().(float64)
		scale1 := p1.Coeff(pos2)
		if doAdd {
			scale1 += scale2
		} else {
			scale1 -= scale2
		}
		p1.SetTerm(pos2, scale1)
	}
	return p1.Zap()
}

// Add adds two Polynomials. Returns a new Polynomial.
func (p Polynomial) Add(p2 Polynomial) Polynomial {
	return p.addOrSub(p2, true)
}

// Subtract subtracts two Polynomials. Returns a new Polynomial.
func (p Polynomial) Subtract(p2 Polynomial) Polynomial {
	return p.addOrSub(p2, false)
}

// Multiply multiplies two Polynomials. Returns a new Polynomial.
func (p Polynomial) Multiply(p2 Polynomial) Polynomial {
	p.checkTerms()
	p2.checkTerms()
	r := NewConstantPolynomial(0)
	it := p.Terms.Iterator()
	for it.Next() {
		i, a := it.Key().(int), it.Value().(float64)
		it2 := p2.Terms.Iterator()
		for it2.Next() {
			j, b := it2.Key().(int), it2.Value().(float64)
			r.SetTerm(i+j, r.Coeff(i+j)+a*b)
		}
	}
	return r.Zap()
}

// Scaled multiplies every coefficient by c. Returns a new Polynomial.
func (p Polynomial) Scaled(c float64) Polynomial {
	return p.Multiply(NewConstantPolynomial(c))
}

// Zap eliminates all terms with coefficient=0 from a polynomial.
func (p Polynomial) Zap() Polynomial {
	p.checkTerms()
	positions := p.Terms.Keys()
	for _, pos := range positions {
		if scale, _ := p.Terms.Get(pos); choreo.Is0(scale.(float64)) {
			p.Terms.Remove(pos) // may lose constant term c
		}
	}
	if _, ok := p.Terms.Get(0); !ok {
		p.Terms.Put(0, 0.0) // set p = 0: re-introduce c
	}
	return p
}

// IsConstant checks wether
// a Polynomial is a constant, i.e. p = { c }? Returns the constant and a flag.
func (p Polynomial) IsConstant() (float64, bool) {
	p.checkTerms()
	return p.Coeff(0), p.Terms.Size() == 1
}

// Coeff gets the coefficient for term t^i.
//
// Example:
//
//	p = t + 3t²
//
// ⇒
//
//	coeff(2) = 3
func (p Polynomial) Coeff(i int) float64 {
	p.checkTerms()
	if sc, found := p.Terms.Get(i); found {
		return sc.(float64)
	}
	return 0.0
}

// Degree is the highest exponent with a non-zero coefficient.
// The zero polynomial has degree 0.
func (p Polynomial) Degree() int {
	p.checkTerms()
	k, _ := p.Terms.Max()
	if k == nil {
		return 0
	}
	return k.(int)
}

// Eval evaluates p at t (Horner scheme).
func (p Polynomial) Eval(t float64) float64 {
	n := p.Degree()
	r := 0.0
	for i := n; i >= 0; i-- {
		r = r*t + p.Coeff(i)
	}
	return r
}

// Derivative returns dp/dt.
func (p Polynomial) Derivative() Polynomial {
	p.checkTerms()
	d := NewConstantPolynomial(0)
	it := p.Terms.Iterator()
	for it.Next() {
		i := it.Key().(int)
		if i > 0 {
			d.SetTerm(i-1, float64(i)*it.Value().(float64))
		}
	}
	return d.Zap()
}

// Coefficients returns the dense coefficient slice of length n+1.
// Terms above t^n are dropped.
func (p Polynomial) Coefficients(n int) []float64 {
	c := make([]float64, n+1)
	for i := range c {
		c[i] = p.Coeff(i)
	}
	return c
}

// String creates a readable string representation for a Polynomial.
// Coefficients are rounded to ε.
func (p Polynomial) String() string {
	var buffer bytes.Buffer
	p.checkTerms()
	it := p.Terms.Iterator()
	for it.Next() {
		pos := it.Key().(int)
		c := it.Value().(float64)
		switch pos {
		case 0:
			buffer.WriteString(fmt.Sprintf("{ %g } ", choreo.Zap(c)))
		case 1:
			buffer.WriteString(fmt.Sprintf("{ %g t } ", choreo.Zap(c)))
		default:
			buffer.WriteString(fmt.Sprintf("{ %g t^%d } ", choreo.Zap(c), pos))
		}
	}
	return buffer.String()
}
