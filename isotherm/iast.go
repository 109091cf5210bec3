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

package isotherm

import (
	"errors"
	"fmt"
	"math"
)

// ErrDiverged is returned when a mixture prediction fails to converge.
var ErrDiverged = errors.New("isotherm: mixture prediction diverged")

// IAST predicts mixture equilibrium loadings with ideal adsorbed
// solution theory. The equilibrium condition is a single nonlinear
// equation in the reduced grand potential psi,
//
//	Σ_j y_j·Pt / P0_j(psi) = 1,
//
// where P0_j is the pure-component pressure at which component j alone
// reaches psi. The left-hand side decreases monotonically in psi. It is
// solved by Newton iteration on psi; a step that would leave positive
// psi is replaced by halving psi, and the iteration fails with
// ErrDiverged after MaxIter steps.
type IAST struct {
	Isotherms []Isotherm

	// Tol is the convergence tolerance on the equilibrium condition.
	Tol float64
	// MaxIter bounds the Newton iteration count per prediction.
	MaxIter int
}

// NewIAST creates an IAST predictor for the given pure-component
// isotherms with default tolerances.
func NewIAST(isotherms []Isotherm) *IAST {
	return &IAST{
		Isotherms: isotherms,
		Tol:       1e-12,
		MaxIter:   50,
	}
}

// Predict implements MixturePredictor.
//
// Components with zero-capacity isotherms (the carrier gas) do not
// participate in the adsorbed solution and receive zero loading.
func (m *IAST) Predict(yi []float64, pt float64, xi, ni, p0 []float64, psi *float64) (int, error) {
	n := len(m.Isotherms)
	for j := 0; j < n; j++ {
		xi[j] = 0
		ni[j] = 0
	}

	// Adsorbing components with nonzero gas-phase presence.
	nAdsorb := 0
	last := -1
	for j := 0; j < n; j++ {
		if !m.Isotherms[j].Zero() && yi[j]*pt > 0 {
			nAdsorb++
			last = j
		}
	}
	if nAdsorb == 0 {
		return 0, nil
	}
	if nAdsorb == 1 {
		// Pure-component adsorption, no solution required.
		xi[last] = 1
		ni[last] = m.Isotherms[last].Loading(yi[last] * pt)
		return 0, nil
	}

	// Initial guess: mole-fraction weighted pure-component grand
	// potentials, unless a cached value from a previous call exists.
	x := *psi
	if x <= 0 {
		for j := 0; j < n; j++ {
			if !m.Isotherms[j].Zero() && yi[j] > 0 {
				x += yi[j] * m.Isotherms[j].Psi(yi[j]*pt)
			}
		}
	}

	iters := 0
	for ; iters < m.MaxIter; iters++ {
		var g, dg float64
		g = -1
		for j := 0; j < n; j++ {
			if m.Isotherms[j].Zero() || yi[j]*pt <= 0 {
				continue
			}
			pj, err := m.Isotherms[j].PressureAt(x, p0[j])
			if err != nil {
				return iters, fmt.Errorf("%w: %v", ErrDiverged, err)
			}
			p0[j] = pj
			g += yi[j] * pt / pj
			// d(P0)/d(psi) = P0/q(P0)
			dg -= yi[j] * pt / (pj * m.Isotherms[j].Loading(pj))
		}
		if math.Abs(g) < m.Tol {
			break
		}
		xNew := x - g/dg
		if xNew <= 0 || math.IsNaN(xNew) {
			xNew = 0.5 * x
		}
		x = xNew
	}
	if iters == m.MaxIter {
		return iters, fmt.Errorf("%w: no solution after %d iterations at pt=%g", ErrDiverged, m.MaxIter, pt)
	}
	*psi = x

	// Adsorbed-phase composition and total loading,
	// 1/Nt = Σ_j x_j / q_j(P0_j).
	var invNt float64
	for j := 0; j < n; j++ {
		if m.Isotherms[j].Zero() || yi[j]*pt <= 0 {
			continue
		}
		xi[j] = yi[j] * pt / p0[j]
		invNt += xi[j] / m.Isotherms[j].Loading(p0[j])
	}
	nt := 1 / invNt
	for j := 0; j < n; j++ {
		ni[j] = xi[j] * nt
	}
	return iters, nil
}

// ExplicitLangmuir predicts mixture loadings with the explicit
// multi-component Langmuir model,
//
//	n_j = qsat_j·b_j·p_j / (1 + Σ_k b_k·p_k).
//
// It requires every adsorbing component to have a single-site Langmuir
// isotherm and is exact only when all saturation loadings are equal.
type ExplicitLangmuir struct {
	Isotherms []Isotherm
}

// NewExplicitLangmuir creates an explicit Langmuir predictor, verifying
// that every adsorbing isotherm is single-site Langmuir.
func NewExplicitLangmuir(isotherms []Isotherm) (*ExplicitLangmuir, error) {
	for j, iso := range isotherms {
		if iso.Zero() {
			continue
		}
		if len(iso.Sites) != 1 || iso.Sites[0].Model != Langmuir {
			return nil, fmt.Errorf("isotherm: explicit Langmuir mixture requires single-site Langmuir isotherms; component %d has %s", j, describe(iso))
		}
	}
	return &ExplicitLangmuir{Isotherms: isotherms}, nil
}

func describe(iso Isotherm) string {
	if len(iso.Sites) != 1 {
		return fmt.Sprintf("%d sites", len(iso.Sites))
	}
	return iso.Sites[0].Model.String()
}

// Predict implements MixturePredictor. The caches are unused; the
// model is closed-form.
func (m *ExplicitLangmuir) Predict(yi []float64, pt float64, xi, ni, p0 []float64, psi *float64) (int, error) {
	n := len(m.Isotherms)
	denom := 1.0
	for j := 0; j < n; j++ {
		if m.Isotherms[j].Zero() {
			continue
		}
		if pj := yi[j] * pt; pj > 0 {
			denom += m.Isotherms[j].Sites[0].B * pj
		}
	}
	var nt float64
	for j := 0; j < n; j++ {
		xi[j] = 0
		ni[j] = 0
		if m.Isotherms[j].Zero() {
			continue
		}
		if pj := yi[j] * pt; pj > 0 {
			s := m.Isotherms[j].Sites[0]
			ni[j] = s.Qsat * s.B * pj / denom
			nt += ni[j]
		}
	}
	if nt > 0 {
		for j := 0; j < n; j++ {
			xi[j] = ni[j] / nt
		}
	}
	return 1, nil
}
