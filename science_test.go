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

package fixbed

import (
	"errors"
	"testing"

	"github.com/adsorptionmodel/fixbed/isotherm"
)

// inertColumn is a column whose components all have zero-capacity
// isotherms, so the adsorption source terms vanish identically and the
// gas-phase balances integrate a pure transport problem.
func inertColumn() *Column {
	comps := []Component{
		{Name: "Helium", Yi0: 0.8, Kl: 0, D: 1e-6},
		{Name: "Argon", Yi0: 0.2, Kl: 0, D: 1e-6},
	}
	isotherms := []isotherm.Isotherm{{}, {}}
	return &Column{
		ColumnConfig: testConfig(),
		Components:   comps,
		Predictor:    isotherm.NewIAST(isotherms),
		InitFuncs:    []ColumnManipulator{InitColumn()},
	}
}

// Mole fractions must stay normalized under transport alone: the
// derivative contributions cancel component-wise when summed, so any
// drift indicates an inconsistency between the balances.
func TestMoleFractionConservation(t *testing.T) {
	c := inertColumn()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	step := SSPRK3()
	for n := 0; n < 50; n++ {
		if err := step(c); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i <= c.NumNodes; i++ {
		var sum float64
		for j := 0; j < c.Nc; j++ {
			sum += c.Yi[i*c.Nc+j]
		}
		if different(sum, 1, testTolerance) {
			t.Errorf("node %d: mole fractions sum to %g after %d steps", i, sum, c.Step)
		}
	}
	for i, q := range c.Q {
		if q != 0 {
			t.Fatalf("inert column adsorbed: Q[%d] = %g", i, q)
		}
	}
	if c.Step != 50 {
		t.Errorf("step counter = %d, want 50", c.Step)
	}
}

func TestAdsorptionDepletes(t *testing.T) {
	c := testColumn()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	step := SSPRK3()
	for n := 0; n < 100; n++ {
		if err := step(c); err != nil {
			t.Fatal(err)
		}
	}

	// CO2 enters at the inlet and adsorbs; loading builds up near the
	// entrance while the outlet still sees pure carrier.
	if c.Q[1*c.Nc+1] <= 0 {
		t.Error("no CO2 loading built up behind the inlet")
	}
	outlet := c.P[c.NumNodes*c.Nc+1] / (c.TotalPressure * c.Components[1].Yi0)
	if outlet > 0.5 {
		t.Errorf("CO2 already broke through after %d steps: normalized outlet pressure %g",
			c.Step, outlet)
	}
	for i, q := range c.Q {
		if q < 0 {
			t.Fatalf("negative loading Q[%d] = %g", i, q)
		}
	}
}

func TestComputeVelocity(t *testing.T) {
	c := testColumn()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	v := make([]float64, c.NumNodes+1)
	if err := c.computeVelocity(c.Pt, v); err != nil {
		t.Fatal(err)
	}
	if v[0] != c.InletVelocity {
		t.Errorf("inlet velocity = %g, want %g", v[0], c.InletVelocity)
	}
	for i := 1; i <= c.NumNodes; i++ {
		if v[i] <= 0 {
			t.Errorf("node %d: nonpositive velocity %g", i, v[i])
		}
	}
}

func TestComputeVelocityComplexRoot(t *testing.T) {
	c := testColumn()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	// A steep pressure rise along the flow direction has no real
	// velocity root.
	pt := make([]float64, c.NumNodes+1)
	for i := range pt {
		pt[i] = c.TotalPressure * float64(1+10*i)
	}
	v := make([]float64, c.NumNodes+1)
	err := c.computeVelocity(pt, v)
	if err == nil {
		t.Fatal("expected an error for an adverse pressure gradient")
	}
	if !errors.Is(err, ErrVelocityComplex) {
		t.Errorf("error %v is not a velocity error", err)
	}
}

func TestPulseBoundaryCondition(t *testing.T) {
	c := testColumn()
	c.Pulse = true
	c.PulseTime = 2 * c.Dt
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	step := SSPRK3()
	for n := 0; n < 5; n++ {
		if err := step(c); err != nil {
			t.Fatal(err)
		}
	}

	// Past the pulse time the feed is pure carrier gas again.
	if different(c.P[c.CarrierIndex()], c.TotalPressure, testTolerance) {
		t.Errorf("inlet carrier partial pressure = %g, want %g",
			c.P[c.CarrierIndex()], c.TotalPressure)
	}
	if c.P[1] != 0 {
		t.Errorf("inlet CO2 partial pressure = %g, want 0", c.P[1])
	}
}
