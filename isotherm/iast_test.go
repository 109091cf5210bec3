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

import "testing"

// binaryLangmuir is a carrier plus two Langmuir components with equal
// saturation loadings. At equal qsat the adsorbed solution is exactly
// the explicit multi-component Langmuir model, which pins the expected
// mixture loadings in closed form.
func binaryLangmuir() []Isotherm {
	return []Isotherm{
		{}, // carrier
		{Sites: []Site{{Model: Langmuir, Qsat: 3, B: 2e-5}}},
		{Sites: []Site{{Model: Langmuir, Qsat: 3, B: 5e-6}}},
	}
}

func predict(t *testing.T, m MixturePredictor, yi []float64, pt float64) (xi, ni []float64, iters int) {
	t.Helper()
	n := len(yi)
	xi = make([]float64, n)
	ni = make([]float64, n)
	p0 := make([]float64, n)
	var psi float64
	iters, err := m.Predict(yi, pt, xi, ni, p0, &psi)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	return xi, ni, iters
}

func TestIASTMatchesExplicitLangmuir(t *testing.T) {
	isotherms := binaryLangmuir()
	iast := NewIAST(isotherms)
	langmuir, err := NewExplicitLangmuir(isotherms)
	if err != nil {
		t.Fatal(err)
	}

	yi := []float64{0.7, 0.2, 0.1}
	for _, pt := range []float64{1e4, 1e5, 1e6} {
		_, niIAST, _ := predict(t, iast, yi, pt)
		_, niLangmuir, _ := predict(t, langmuir, yi, pt)
		for j := range yi {
			if different(niIAST[j], niLangmuir[j], 1e-8) {
				t.Errorf("pt=%g, component %d: IAST loading %g, explicit Langmuir %g",
					pt, j, niIAST[j], niLangmuir[j])
			}
		}
	}
}

func TestIASTWarmStart(t *testing.T) {
	iast := NewIAST(binaryLangmuir())
	yi := []float64{0.7, 0.2, 0.1}
	n := len(yi)
	xi := make([]float64, n)
	ni := make([]float64, n)
	p0 := make([]float64, n)
	var psi float64

	cold, err := iast.Predict(yi, 1e5, xi, ni, p0, &psi)
	if err != nil {
		t.Fatal(err)
	}
	warm, err := iast.Predict(yi, 1e5, xi, ni, p0, &psi)
	if err != nil {
		t.Fatal(err)
	}
	if warm > cold {
		t.Errorf("warm-started prediction took %d iterations, cold start took %d", warm, cold)
	}
}

func TestIASTSingleAdsorbingComponent(t *testing.T) {
	isotherms := binaryLangmuir()
	iast := NewIAST(isotherms)

	// Only component 1 is present in the gas besides the carrier, so
	// the loading is the pure-component loading at its partial
	// pressure.
	yi := []float64{0.8, 0.2, 0}
	const pt = 1e5
	xi, ni, iters := predict(t, iast, yi, pt)
	if iters != 0 {
		t.Errorf("pure-component prediction took %d iterations, want 0", iters)
	}
	if xi[1] != 1 {
		t.Errorf("adsorbed mole fraction = %g, want 1", xi[1])
	}
	want := isotherms[1].Loading(yi[1] * pt)
	if different(ni[1], want, testTolerance) {
		t.Errorf("loading = %g, want %g", ni[1], want)
	}
	if ni[0] != 0 || ni[2] != 0 {
		t.Errorf("absent components loaded: %v", ni)
	}
}

func TestIASTPureCarrier(t *testing.T) {
	iast := NewIAST(binaryLangmuir())
	xi, ni, iters := predict(t, iast, []float64{1, 0, 0}, 1e5)
	if iters != 0 {
		t.Errorf("carrier-only prediction took %d iterations, want 0", iters)
	}
	for j := range ni {
		if xi[j] != 0 || ni[j] != 0 {
			t.Fatalf("carrier-only gas adsorbed: xi=%v ni=%v", xi, ni)
		}
	}
}

func TestExplicitLangmuirClosedForm(t *testing.T) {
	isotherms := binaryLangmuir()
	langmuir, err := NewExplicitLangmuir(isotherms)
	if err != nil {
		t.Fatal(err)
	}
	yi := []float64{0.7, 0.2, 0.1}
	const pt = 1e5
	_, ni, _ := predict(t, langmuir, yi, pt)

	denom := 1.0
	for j := 1; j <= 2; j++ {
		denom += isotherms[j].Sites[0].B * yi[j] * pt
	}
	for j := 1; j <= 2; j++ {
		s := isotherms[j].Sites[0]
		want := s.Qsat * s.B * yi[j] * pt / denom
		if different(ni[j], want, testTolerance) {
			t.Errorf("component %d: loading %g, want %g", j, ni[j], want)
		}
	}
}

func TestExplicitLangmuirRejectsOtherModels(t *testing.T) {
	_, err := NewExplicitLangmuir([]Isotherm{
		{},
		{Sites: []Site{{Model: Freundlich, K: 1e-2, N: 2}}},
	})
	if err == nil {
		t.Error("Freundlich isotherm should have been rejected")
	}
	_, err = NewExplicitLangmuir([]Isotherm{
		{Sites: []Site{
			{Model: Langmuir, Qsat: 3, B: 2e-5},
			{Model: Langmuir, Qsat: 1, B: 4e-7},
		}},
	})
	if err == nil {
		t.Error("dual-site isotherm should have been rejected")
	}
}
