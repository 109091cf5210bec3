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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adsorptionmodel/fixbed"
	"github.com/adsorptionmodel/fixbed/isotherm"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// GetStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a json
// object if it was set from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapString(v), nil
	case string:
		b := bytes.NewBuffer(([]byte)(v))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("fixbed: parsing configuration variable %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("fixbed: invalid type for configuration variable %s: %#v", varName, i)
	}
}

// componentsFromConfig parses the Components list from the
// configuration. Each entry holds Name, MoleFraction,
// MassTransferCoefficient, DispersionCoefficient, and a Sites list of
// isotherm sites with a Model name and the parameters the model uses
// (Qsat, B, K, N).
func componentsFromConfig(cfg *viper.Viper) ([]fixbed.Component, error) {
	raw := cfg.Get("Components")
	if raw == nil {
		return nil, fmt.Errorf("fixbed: no Components are configured")
	}
	list, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("fixbed: parsing Components: %v", err)
	}

	comps := make([]fixbed.Component, 0, len(list))
	for k, entry := range list {
		m, err := cast.ToStringMapE(entry)
		if err != nil {
			return nil, fmt.Errorf("fixbed: parsing component %d: %v", k, err)
		}
		// Configuration files are case-insensitive about key names.
		fold := make(map[string]interface{}, len(m))
		for key, val := range m {
			fold[strings.ToLower(key)] = val
		}
		get := func(key string) (float64, error) {
			v, ok := fold[strings.ToLower(key)]
			if !ok {
				return 0, nil
			}
			return cast.ToFloat64E(v)
		}

		comp := fixbed.Component{Name: cast.ToString(fold["name"])}
		if comp.Name == "" {
			return nil, fmt.Errorf("fixbed: component %d has no Name", k)
		}
		if comp.Yi0, err = get("MoleFraction"); err != nil {
			return nil, fmt.Errorf("fixbed: component %s: MoleFraction: %v", comp.Name, err)
		}
		if comp.Kl, err = get("MassTransferCoefficient"); err != nil {
			return nil, fmt.Errorf("fixbed: component %s: MassTransferCoefficient: %v", comp.Name, err)
		}
		if comp.D, err = get("DispersionCoefficient"); err != nil {
			return nil, fmt.Errorf("fixbed: component %s: DispersionCoefficient: %v", comp.Name, err)
		}

		if sitesRaw, ok := fold["sites"]; ok {
			sites, err := cast.ToSliceE(sitesRaw)
			if err != nil {
				return nil, fmt.Errorf("fixbed: component %s: parsing Sites: %v", comp.Name, err)
			}
			for _, siteEntry := range sites {
				site, err := siteFromConfig(siteEntry)
				if err != nil {
					return nil, fmt.Errorf("fixbed: component %s: %v", comp.Name, err)
				}
				comp.Isotherm.Sites = append(comp.Isotherm.Sites, site)
			}
		}
		comps = append(comps, comp)
	}
	return comps, nil
}

func siteFromConfig(entry interface{}) (isotherm.Site, error) {
	m, err := cast.ToStringMapE(entry)
	if err != nil {
		return isotherm.Site{}, fmt.Errorf("parsing isotherm site: %v", err)
	}
	fold := make(map[string]interface{}, len(m))
	for key, val := range m {
		fold[strings.ToLower(key)] = val
	}

	model, err := isotherm.ParseModel(cast.ToString(fold["model"]))
	if err != nil {
		return isotherm.Site{}, err
	}
	site := isotherm.Site{Model: model}
	for key, dst := range map[string]*float64{
		"qsat": &site.Qsat,
		"b":    &site.B,
		"k":    &site.K,
		"n":    &site.N,
	} {
		if v, ok := fold[key]; ok {
			if *dst, err = cast.ToFloat64E(v); err != nil {
				return isotherm.Site{}, fmt.Errorf("isotherm site parameter %s: %v", key, err)
			}
		}
	}
	return site, nil
}

// predictorFromConfig builds the mixture predictor named by the
// MixturePredictor configuration variable.
func predictorFromConfig(cfg *viper.Viper, comps []fixbed.Component) (isotherm.MixturePredictor, error) {
	isotherms := make([]isotherm.Isotherm, len(comps))
	for j, comp := range comps {
		isotherms[j] = comp.Isotherm
	}
	switch name := cfg.GetString("MixturePredictor"); strings.ToLower(name) {
	case "iast":
		return isotherm.NewIAST(isotherms), nil
	case "explicit-langmuir", "explicitlangmuir":
		return isotherm.NewExplicitLangmuir(isotherms)
	default:
		return nil, fmt.Errorf("fixbed: unknown MixturePredictor %q (choices are 'iast' and 'explicit-langmuir')", name)
	}
}

// ColumnFromConfig builds a column from the configuration. The
// returned column has no InitFuncs or RunFuncs attached.
func ColumnFromConfig(cfg *viper.Viper) (*fixbed.Column, error) {
	comps, err := componentsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	predictor, err := predictorFromConfig(cfg, comps)
	if err != nil {
		return nil, err
	}

	c := &fixbed.Column{
		ColumnConfig: fixbed.ColumnConfig{
			DisplayName:      cfg.GetString("DisplayName"),
			CarrierGas:       cfg.GetString("Column.CarrierGas"),
			NumNodes:         cfg.GetInt("Integration.NumNodes"),
			Temperature:      cfg.GetFloat64("Column.Temperature"),
			TotalPressure:    cfg.GetFloat64("Column.TotalPressure"),
			PressureGradient: cfg.GetFloat64("Column.PressureGradient"),
			VoidFraction:     cfg.GetFloat64("Column.VoidFraction"),
			ParticleDensity:  cfg.GetFloat64("Column.ParticleDensity"),
			InletVelocity:    cfg.GetFloat64("Column.InletVelocity"),
			Length:           cfg.GetFloat64("Column.Length"),
			Dt:               cfg.GetFloat64("Integration.Dt"),
			NumSteps:         cfg.GetInt("Integration.NumSteps"),
			AutoSteps:        cfg.GetBool("Integration.AutoSteps"),
			Pulse:            cfg.GetBool("Integration.Pulse"),
			PulseTime:        cfg.GetFloat64("Integration.PulseTime"),
			PrintEvery:       cfg.GetInt("Integration.PrintEvery"),
			WriteEvery:       cfg.GetInt("Integration.WriteEvery"),
			Mu0:              cfg.GetFloat64("Viscosity.Mu0"),
			TMu0:             cfg.GetFloat64("Viscosity.TMu0"),
			SutherlandC:      cfg.GetFloat64("Viscosity.SutherlandC"),
			MolarMass:        cfg.GetFloat64("Viscosity.MolarMass"),
			ParticleDiameter: cfg.GetFloat64("Column.ParticleDiameter"),
		},
		Components: comps,
		Predictor:  predictor,
	}
	return c, nil
}
