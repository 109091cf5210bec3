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

// Package fixbedutil provides the configuration layer and command-line
// interface for fixed-bed breakthrough simulations.
package fixbedutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/adsorptionmodel/fixbed"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to fixbed.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose enables debug-level log output.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DisplayName",
			usage: `
              DisplayName labels the simulation in logs and banners.`,
			defaultVal: "breakthrough",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir specifies the directory where output files are
              written.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), isothermsCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies derived output variables as
              expressions over the per-node model variables, for
              example {"Qtot":"sum(Q)"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MixturePredictor",
			usage: `
              MixturePredictor chooses the mixture adsorption model:
              'iast' or 'explicit-langmuir'.`,
			defaultVal: "iast",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Column.CarrierGas",
			usage: `
              Column.CarrierGas names the carrier gas component. The
              carrier gas must have a zero-capacity isotherm.`,
			defaultVal: "Helium",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Column.Length",
			usage: `
              Column.Length is the column length [m].`,
			defaultVal: 0.3,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Column.VoidFraction",
			usage: `
              Column.VoidFraction is the interparticle void fraction of
              the bed [-].`,
			defaultVal: 0.4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Column.ParticleDensity",
			usage: `
              Column.ParticleDensity is the adsorbent particle density
              [kg/m3].`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Column.ParticleDiameter",
			usage: `
              Column.ParticleDiameter is the adsorbent particle diameter
              [m].`,
			defaultVal: 0.005,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Column.Temperature",
			usage: `
              Column.Temperature is the isothermal column temperature [K].`,
			defaultVal: 300.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), isothermsCmd.Flags()},
		},
		{
			name: "Column.TotalPressure",
			usage: `
              Column.TotalPressure is the outlet total pressure [Pa].`,
			defaultVal: 1.0e5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Column.PressureGradient",
			usage: `
              Column.PressureGradient is the expected steady pressure
              gradient [Pa/m], used to normalize outlet partial
              pressures.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Column.InletVelocity",
			usage: `
              Column.InletVelocity is the interstitial gas velocity at
              the column entrance [m/s].`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Viscosity.Mu0",
			usage: `
              Viscosity.Mu0 is the Sutherland reference viscosity of the
              carrier gas.`,
			defaultVal: 0.0210,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Viscosity.TMu0",
			usage: `
              Viscosity.TMu0 is the Sutherland reference temperature [K].`,
			defaultVal: 323.15,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Viscosity.SutherlandC",
			usage: `
              Viscosity.SutherlandC is the Sutherland constant of the
              carrier gas [K].`,
			defaultVal: 72.9,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Viscosity.MolarMass",
			usage: `
              Viscosity.MolarMass is the molar mass of the carrier gas
              [g/mol].`,
			defaultVal: 4.0026,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Integration.NumNodes",
			usage: `
              Integration.NumNodes is the number of interior grid cells
              along the column.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Integration.Dt",
			usage: `
              Integration.Dt is the integration time step [s].`,
			defaultVal: 0.0005,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Integration.NumSteps",
			usage: `
              Integration.NumSteps is the number of time steps; ignored
              when Integration.AutoSteps is set.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Integration.AutoSteps",
			usage: `
              Integration.AutoSteps ends the simulation automatically
              once the outlet composition has broken through, with a 10%
              display tail.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Integration.PrintEvery",
			usage: `
              Integration.PrintEvery controls how often progress is
              logged, in steps.`,
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Integration.WriteEvery",
			usage: `
              Integration.WriteEvery controls how often output frames
              are written, in steps.`,
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Integration.Pulse",
			usage: `
              Integration.Pulse switches the inlet to a finite feed
              pulse instead of a continuous feed.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Integration.PulseTime",
			usage: `
              Integration.PulseTime is the feed pulse duration [s].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "plot",
			usage: `
              plot renders the breakthrough curves to an image file
              after the simulation finishes.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "plotfile",
			usage: `
              plotfile specifies the image file for the breakthrough
              plot. The format follows the file extension (.png, .pdf,
              .svg).`,
			defaultVal: "breakthrough.png",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "httpport",
			usage: `
              httpport specifies a port for the live column monitor.
              If empty, no monitor is started.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Prediction.PressureStart",
			usage: `
              Prediction.PressureStart is the lowest total pressure of
              the mixture-prediction table [Pa].`,
			defaultVal: 1.0e3,
			flagsets:   []*pflag.FlagSet{isothermsCmd.Flags()},
		},
		{
			name: "Prediction.PressureEnd",
			usage: `
              Prediction.PressureEnd is the highest total pressure of
              the mixture-prediction table [Pa].`,
			defaultVal: 1.0e6,
			flagsets:   []*pflag.FlagSet{isothermsCmd.Flags()},
		},
		{
			name: "Prediction.NumPoints",
			usage: `
              Prediction.NumPoints is the number of pressures in the
              mixture-prediction table.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{isothermsCmd.Flags()},
		},
		{
			name: "Fit.DataFile",
			usage: `
              Fit.DataFile is a whitespace-separated table of measured
              pressure [Pa] and loading [mol/kg] pairs to fit isotherm
              parameters to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fitCmd.Flags()},
		},
		{
			name: "Fit.Component",
			usage: `
              Fit.Component names the component whose isotherm
              parameters are fitted.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fitCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FIXBED")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := b.String()
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(isothermsCmd)
	Root.AddCommand(fitCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("fixbed: problem reading configuration file: %v", err)
		}
	}
	if Cfg.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "fixbed",
	Short: "A fixed-bed adsorption breakthrough simulator.",
	Long: `fixbed simulates transient breakthrough of a gas mixture through a
fixed-bed adsorption column.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'FIXBED_var'
where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of fixbed.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("fixbed v%s\n", fixbed.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a breakthrough simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a breakthrough simulation.",
	Long: `run integrates the column balances in time until the feed front has
broken through at the outlet (or for a fixed number of steps), writing
breakthrough curves and column profiles to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputVars, err := GetStringMapString("OutputVariables", Cfg)
		if err != nil {
			return err
		}
		return Run(
			Cfg,
			Cfg.GetString("OutputDir"),
			outputVars,
			Cfg.GetBool("plot"),
			Cfg.GetString("plotfile"),
			Cfg.GetString("httpport"))
	},
	DisableAutoGenTag: true,
}

// isothermsCmd is a command that tabulates the configured isotherms
// and their mixture prediction over a pressure range.
var isothermsCmd = &cobra.Command{
	Use:   "isotherms",
	Short: "Tabulate pure-component isotherms and mixture loadings.",
	Long: `isotherms evaluates the configured pure-component isotherms and the
mixture predictor at the feed composition over a range of total pressures and
writes the resulting loading table to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Isotherms(
			Cfg,
			Cfg.GetString("OutputDir"),
			Cfg.GetFloat64("Prediction.PressureStart"),
			Cfg.GetFloat64("Prediction.PressureEnd"),
			Cfg.GetInt("Prediction.NumPoints"))
	},
	DisableAutoGenTag: true,
}

// fitCmd is a command that fits isotherm parameters to measured data.
var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit isotherm parameters to measured loading data.",
	Long: `fit adjusts the isotherm parameters of one component to minimize the
sum of squared deviations from measured (pressure, loading) data using
Nelder-Mead optimization, and prints the fitted parameters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Fit(
			Cfg,
			Cfg.GetString("Fit.Component"),
			Cfg.GetString("Fit.DataFile"))
	},
	DisableAutoGenTag: true,
}
