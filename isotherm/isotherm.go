/*
Copyright © 2023 the fixbed authors.
This file is part of fixbed.

fixbed is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fixbed is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fixbed.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package isotherm provides pure-component adsorption isotherm models and
// mixture predictors that compute multi-component equilibrium loadings
// from gas-phase compositions.
package isotherm

import (
	"fmt"
	"math"
	"strings"
)

// Model is the functional form of one isotherm site.
type Model int

const (
	// Langmuir: q = qsat·b·p / (1 + b·p).
	Langmuir Model = iota
	// Henry: q = K·p.
	Henry
	// Freundlich: q = K·p^(1/n).
	Freundlich
	// Sips: q = qsat·(b·p)^(1/n) / (1 + (b·p)^(1/n)).
	Sips
	// LangmuirFreundlich: q = qsat·b·p^n / (1 + b·p^n).
	LangmuirFreundlich
)

func (m Model) String() string {
	switch m {
	case Langmuir:
		return "Langmuir"
	case Henry:
		return "Henry"
	case Freundlich:
		return "Freundlich"
	case Sips:
		return "Sips"
	case LangmuirFreundlich:
		return "Langmuir-Freundlich"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// ParseModel converts a configuration-file model name to a Model.
func ParseModel(name string) (Model, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "langmuir":
		return Langmuir, nil
	case "henry", "linear":
		return Henry, nil
	case "freundlich":
		return Freundlich, nil
	case "sips":
		return Sips, nil
	case "langmuirfreundlich":
		return LangmuirFreundlich, nil
	default:
		return 0, fmt.Errorf("isotherm: unknown model %q", name)
	}
}

// Site is a single term of a (possibly multi-site) isotherm.
// Qsat is the saturation loading [mol/kg], B the affinity [1/Pa],
// K the Henry or Freundlich coefficient, and N the exponent; fields
// that a model does not use are ignored.
type Site struct {
	Model Model
	Qsat  float64
	B     float64
	K     float64
	N     float64
}

// Loading returns the equilibrium loading of this site at partial
// pressure p [Pa].
func (s Site) Loading(p float64) float64 {
	if p <= 0 {
		return 0
	}
	switch s.Model {
	case Langmuir:
		bp := s.B * p
		return s.Qsat * bp / (1 + bp)
	case Henry:
		return s.K * p
	case Freundlich:
		return s.K * math.Pow(p, 1/s.N)
	case Sips:
		bpn := math.Pow(s.B*p, 1/s.N)
		return s.Qsat * bpn / (1 + bpn)
	case LangmuirFreundlich:
		bpn := s.B * math.Pow(p, s.N)
		return s.Qsat * bpn / (1 + bpn)
	default:
		return 0
	}
}

// Psi returns the reduced grand potential of this site at pressure p,
// psi = ∫₀ᵖ q(p')/p' dp'.
func (s Site) Psi(p float64) float64 {
	if p <= 0 {
		return 0
	}
	switch s.Model {
	case Langmuir:
		return s.Qsat * math.Log1p(s.B*p)
	case Henry:
		return s.K * p
	case Freundlich:
		return s.N * s.K * math.Pow(p, 1/s.N)
	case Sips:
		return s.Qsat * s.N * math.Log1p(math.Pow(s.B*p, 1/s.N))
	case LangmuirFreundlich:
		return s.Qsat / s.N * math.Log1p(s.B*math.Pow(p, s.N))
	default:
		return 0
	}
}

// inverse returns the pressure at which this site alone reaches the
// reduced grand potential psi. All single-site models invert in closed
// form.
func (s Site) inverse(psi float64) float64 {
	switch s.Model {
	case Langmuir:
		return math.Expm1(psi/s.Qsat) / s.B
	case Henry:
		return psi / s.K
	case Freundlich:
		return math.Pow(psi/(s.N*s.K), s.N)
	case Sips:
		return math.Pow(math.Expm1(psi/(s.Qsat*s.N)), s.N) / s.B
	case LangmuirFreundlich:
		return math.Pow(math.Expm1(s.N*psi/s.Qsat)/s.B, 1/s.N)
	default:
		return 0
	}
}

// zero reports whether the site has no adsorption capacity.
func (s Site) zero() bool {
	switch s.Model {
	case Henry, Freundlich:
		return s.K == 0
	default:
		return s.Qsat == 0
	}
}

// Isotherm is a pure-component isotherm, the sum of one or more sites.
type Isotherm struct {
	Sites []Site
}

// Loading returns the equilibrium loading at partial pressure p [Pa].
func (iso Isotherm) Loading(p float64) float64 {
	var q float64
	for _, s := range iso.Sites {
		q += s.Loading(p)
	}
	return q
}

// Psi returns the reduced grand potential at pressure p.
func (iso Isotherm) Psi(p float64) float64 {
	var psi float64
	for _, s := range iso.Sites {
		psi += s.Psi(p)
	}
	return psi
}

// Zero reports whether the isotherm has no adsorption capacity anywhere.
// Carrier gases are described by zero-capacity isotherms.
func (iso Isotherm) Zero() bool {
	for _, s := range iso.Sites {
		if !s.zero() {
			return false
		}
	}
	return true
}

const (
	inverseTolerance = 1e-12
	inverseMaxIter   = 100
)

// PressureAt returns the pressure at which the isotherm reaches the
// reduced grand potential psi. Single-site isotherms invert in closed
// form; multi-site isotherms use Newton iteration warm-started from
// guess, falling back to bisection when Newton leaves the bracket.
func (iso Isotherm) PressureAt(psi, guess float64) (float64, error) {
	if psi <= 0 {
		return 0, nil
	}
	if len(iso.Sites) == 1 {
		return iso.Sites[0].inverse(psi), nil
	}

	// Bracket the root. Psi is monotonically increasing in p.
	lo, hi := 0.0, guess
	if hi <= 0 {
		hi = 1
	}
	for iter := 0; iso.Psi(hi) < psi; iter++ {
		if iter >= inverseMaxIter {
			return 0, fmt.Errorf("isotherm: cannot bracket pressure for psi=%g", psi)
		}
		lo = hi
		hi *= 2
	}

	p := guess
	if p <= lo || p >= hi {
		p = 0.5 * (lo + hi)
	}
	for iter := 0; iter < inverseMaxIter; iter++ {
		f := iso.Psi(p) - psi
		if math.Abs(f) < inverseTolerance*(1+psi) {
			return p, nil
		}
		if f > 0 {
			hi = p
		} else {
			lo = p
		}
		// dpsi/dp = q(p)/p
		deriv := iso.Loading(p) / p
		pNew := p - f/deriv
		if pNew <= lo || pNew >= hi || math.IsNaN(pNew) {
			pNew = 0.5 * (lo + hi)
		}
		p = pNew
	}
	return 0, fmt.Errorf("isotherm: pressure inversion did not converge for psi=%g", psi)
}

// MixturePredictor computes mixture equilibrium loadings from the
// gas-phase composition.
//
// Predict fills ni with the equilibrium loadings [mol/kg] and xi with
// the adsorbed-phase mole fractions for gas-phase mole fractions yi at
// total pressure pt [Pa]. p0 and psi carry per-node solver state
// between calls so that successive predictions at the same node
// warm-start from the previous solution. It reports the number of
// solver iterations used.
type MixturePredictor interface {
	Predict(yi []float64, pt float64, xi, ni, p0 []float64, psi *float64) (int, error)
}
