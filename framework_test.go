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
	"math"
	"strings"
	"testing"

	"github.com/adsorptionmodel/fixbed/isotherm"
)

const testTolerance = 1e-10

func different(a, b, tolerance float64) bool {
	if a == 0 && b == 0 {
		return false
	}
	return math.Abs(a-b)/math.Max(math.Abs(a), math.Abs(b)) > tolerance
}

// testConfig is a small helium/CO2 column that integrates quickly.
func testConfig() ColumnConfig {
	cfg := ColumnConfig{
		DisplayName:     "test",
		CarrierGas:      "Helium",
		NumNodes:        10,
		Temperature:     313,
		TotalPressure:   1e5,
		VoidFraction:    0.4,
		ParticleDensity: 1000,
		InletVelocity:   0.1,
		Length:          0.1,
		Dt:              1e-5,
		NumSteps:        5,
		PrintEvery:      0,
		WriteEvery:      1,
	}
	cfg.Mu0, cfg.TMu0, cfg.SutherlandC, cfg.ParticleDiameter, cfg.MolarMass = HeliumViscosity()
	return cfg
}

func testComponents() []Component {
	return []Component{
		{Name: "Helium", Yi0: 0.8, Kl: 0, D: 1e-6},
		{Name: "CO2", Yi0: 0.2, Kl: 0.1, D: 1e-6,
			Isotherm: isotherm.Isotherm{Sites: []isotherm.Site{
				{Model: isotherm.Langmuir, Qsat: 3, B: 2e-5},
			}}},
	}
}

func testColumn() *Column {
	comps := testComponents()
	isotherms := make([]isotherm.Isotherm, len(comps))
	for j, comp := range comps {
		isotherms[j] = comp.Isotherm
	}
	return &Column{
		ColumnConfig: testConfig(),
		Components:   comps,
		Predictor:    isotherm.NewIAST(isotherms),
		InitFuncs:    []ColumnManipulator{InitColumn()},
	}
}

func TestCheckConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Column)
	}{
		{"no components", func(c *Column) { c.Components = nil }},
		{"no grid cells", func(c *Column) { c.NumNodes = 0 }},
		{"negative temperature", func(c *Column) { c.Temperature = -1 }},
		{"zero time step", func(c *Column) { c.Dt = 0 }},
		{"void fraction too large", func(c *Column) { c.VoidFraction = 1 }},
		{"mol-fractions don't sum to 1", func(c *Column) { c.Components[0].Yi0 = 0.5 }},
		{"unknown carrier", func(c *Column) { c.CarrierGas = "Argon" }},
		{"adsorbing carrier", func(c *Column) { c.CarrierGas = "CO2" }},
		{"no predictor", func(c *Column) { c.Predictor = nil }},
		{"pulse without pulse time", func(c *Column) { c.Pulse = true }},
	}
	for _, test := range cases {
		c := testColumn()
		test.mutate(c)
		err := c.Init()
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
			continue
		}
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: error %v is not a configuration error", test.name, err)
		}
	}
}

func TestInitColumn(t *testing.T) {
	c := testColumn()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	if c.Nc != 2 {
		t.Fatalf("Nc = %d, want 2", c.Nc)
	}
	if different(c.Dx(), c.Length/float64(c.NumNodes), testTolerance) {
		t.Errorf("dx = %g", c.Dx())
	}
	if c.CarrierIndex() != 0 {
		t.Errorf("carrier index = %d, want 0", c.CarrierIndex())
	}

	// Feed composition at the inlet node, referenced to the total
	// pressure.
	for j, comp := range c.Components {
		if different(c.P[j], c.TotalPressure*comp.Yi0, testTolerance) {
			t.Errorf("inlet partial pressure of %s = %g", comp.Name, c.P[j])
		}
	}

	// The rest of the column holds pure carrier gas at the initial
	// pressure profile, which decreases from the inlet towards the
	// outlet where it matches the configured total pressure.
	for i := 0; i <= c.NumNodes; i++ {
		if i > 0 && c.P[i*c.Nc+1] != 0 {
			t.Errorf("node %d holds CO2 at initialization", i)
		}
		if c.Pt[i] < c.TotalPressure {
			t.Errorf("node %d: total pressure %g below the outlet pressure", i, c.Pt[i])
		}
		if i < c.NumNodes && c.Pt[i] <= c.Pt[i+1] {
			t.Errorf("total pressure does not decrease between nodes %d and %d", i, i+1)
		}
	}
	if different(c.Pt[c.NumNodes], c.TotalPressure, testTolerance) {
		t.Errorf("outlet pressure = %g, want %g", c.Pt[c.NumNodes], c.TotalPressure)
	}

	// Mole fractions are normalized at every node, and the velocity
	// profile follows the pressure profile: the gas moves slowest at
	// the pressurized inlet and reaches the inlet velocity where the
	// profile meets the outlet pressure.
	for i := 0; i <= c.NumNodes; i++ {
		var sum float64
		for j := 0; j < c.Nc; j++ {
			sum += c.Yi[i*c.Nc+j]
		}
		if different(sum, 1, testTolerance) {
			t.Errorf("node %d: mole fractions sum to %g", i, sum)
		}
		if c.V[i] <= 0 || c.V[i] > c.InletVelocity*(1+testTolerance) {
			t.Errorf("node %d: velocity %g outside (0, %g]", i, c.V[i], c.InletVelocity)
		}
		if i < c.NumNodes && c.V[i] >= c.V[i+1] {
			t.Errorf("velocity does not increase between nodes %d and %d", i, i+1)
		}
	}
	if different(c.V[c.NumNodes], c.InletVelocity, testTolerance) {
		t.Errorf("outlet velocity = %g, want %g", c.V[c.NumNodes], c.InletVelocity)
	}
}

func TestColumnString(t *testing.T) {
	c := testColumn()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	s := c.String()
	for _, want := range []string{
		"Column properties", "Breakthrough settings", "Integration details",
		"Component data", "Component Helium", "Component CO2",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("banner is missing %q", want)
		}
	}
}
