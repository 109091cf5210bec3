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

package fixbedutil

import (
	"testing"

	"github.com/adsorptionmodel/fixbed"
	"github.com/adsorptionmodel/fixbed/isotherm"
	"github.com/spf13/viper"
)

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	cfg.Set("json", `{"Qtot": "sum(Q)"}`)
	cfg.Set("map", map[string]interface{}{"Qtot": "sum(Q)"})

	for _, key := range []string{"json", "map"} {
		got, err := GetStringMapString(key, cfg)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		if got["Qtot"] != "sum(Q)" {
			t.Errorf("%s: got %v", key, got)
		}
	}

	cfg.Set("bad", `{`)
	if _, err := GetStringMapString("bad", cfg); err == nil {
		t.Error("expected an error for malformed json")
	}
}

func testViper() *viper.Viper {
	cfg := viper.New()
	cfg.Set("DisplayName", "test")
	cfg.Set("MixturePredictor", "iast")
	cfg.Set("Column.CarrierGas", "Helium")
	cfg.Set("Column.Length", 0.3)
	cfg.Set("Column.VoidFraction", 0.4)
	cfg.Set("Column.ParticleDensity", 1000.0)
	cfg.Set("Column.ParticleDiameter", 0.005)
	cfg.Set("Column.Temperature", 313.0)
	cfg.Set("Column.TotalPressure", 1e5)
	cfg.Set("Column.InletVelocity", 0.1)
	cfg.Set("Viscosity.Mu0", 0.0210)
	cfg.Set("Viscosity.TMu0", 323.15)
	cfg.Set("Viscosity.SutherlandC", 72.9)
	cfg.Set("Viscosity.MolarMass", 4.0026)
	cfg.Set("Integration.NumNodes", 50)
	cfg.Set("Integration.Dt", 0.0005)
	cfg.Set("Integration.AutoSteps", true)
	cfg.Set("Components", []interface{}{
		map[string]interface{}{
			"Name":         "Helium",
			"MoleFraction": 0.8,
		},
		map[string]interface{}{
			"Name":                    "CO2",
			"MoleFraction":            0.2,
			"MassTransferCoefficient": 0.1,
			"DispersionCoefficient":   1e-6,
			"Sites": []interface{}{
				map[string]interface{}{
					"Model": "Langmuir",
					"Qsat":  3.0,
					"B":     2e-5,
				},
			},
		},
	})
	return cfg
}

func TestColumnFromConfig(t *testing.T) {
	c, err := ColumnFromConfig(testViper())
	if err != nil {
		t.Fatal(err)
	}

	if c.CarrierGas != "Helium" {
		t.Errorf("carrier gas = %q", c.CarrierGas)
	}
	if c.NumNodes != 50 {
		t.Errorf("grid cells = %d, want 50", c.NumNodes)
	}
	if c.Temperature != 313 {
		t.Errorf("temperature = %g, want 313", c.Temperature)
	}
	if !c.AutoSteps {
		t.Error("auto-steps not set")
	}
	if len(c.Components) != 2 {
		t.Fatalf("got %d components, want 2", len(c.Components))
	}

	co2 := c.Components[1]
	if co2.Name != "CO2" || co2.Yi0 != 0.2 || co2.Kl != 0.1 || co2.D != 1e-6 {
		t.Errorf("CO2 parsed incorrectly: %+v", co2)
	}
	if len(co2.Isotherm.Sites) != 1 {
		t.Fatalf("CO2 has %d isotherm sites, want 1", len(co2.Isotherm.Sites))
	}
	site := co2.Isotherm.Sites[0]
	if site.Model != isotherm.Langmuir || site.Qsat != 3 || site.B != 2e-5 {
		t.Errorf("CO2 site parsed incorrectly: %+v", site)
	}
	if !c.Components[0].Isotherm.Zero() {
		t.Error("helium should have a zero-capacity isotherm")
	}
	if _, ok := c.Predictor.(*isotherm.IAST); !ok {
		t.Errorf("predictor has type %T, want *isotherm.IAST", c.Predictor)
	}

	// The parsed column must pass initialization end to end.
	c.InitFuncs = []fixbed.ColumnManipulator{fixbed.InitColumn()}
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
}

func TestColumnFromConfigPredictorChoices(t *testing.T) {
	cfg := testViper()
	cfg.Set("MixturePredictor", "explicit-langmuir")
	c, err := ColumnFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Predictor.(*isotherm.ExplicitLangmuir); !ok {
		t.Errorf("predictor has type %T, want *isotherm.ExplicitLangmuir", c.Predictor)
	}

	cfg.Set("MixturePredictor", "rast")
	if _, err := ColumnFromConfig(cfg); err == nil {
		t.Error("expected an error for an unknown predictor")
	}
}

func TestComponentsFromConfigErrors(t *testing.T) {
	cfg := viper.New()
	if _, err := componentsFromConfig(cfg); err == nil {
		t.Error("expected an error when no components are configured")
	}

	cfg.Set("Components", []interface{}{
		map[string]interface{}{"MoleFraction": 1.0},
	})
	if _, err := componentsFromConfig(cfg); err == nil {
		t.Error("expected an error for a component without a name")
	}

	cfg.Set("Components", []interface{}{
		map[string]interface{}{
			"Name": "CO2",
			"Sites": []interface{}{
				map[string]interface{}{"Model": "toth"},
			},
		},
	})
	if _, err := componentsFromConfig(cfg); err == nil {
		t.Error("expected an error for an unknown isotherm model")
	}
}
