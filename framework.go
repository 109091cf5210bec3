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

// Package fixbed simulates transient breakthrough of a gas mixture
// through a fixed-bed adsorption column. The column is discretized on
// Ng+1 axial nodes; each time step advances the coupled loading,
// pressure, and mole-fraction balances with a three-stage strong
// stability preserving Runge-Kutta scheme, closing the interstitial
// velocity with the Ergun equation and the equilibrium loadings with a
// mixture predictor.
package fixbed

import (
	"fmt"
	"math"
	"strings"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/adsorptionmodel/fixbed/isotherm"
)

// R is the gas constant [J/(mol·K)].
const R = 8.31446261815324

// ColumnManipulator is a function that operates on the column state,
// for example by advancing it one time step or writing output.
type ColumnManipulator func(c *Column) error

// ColumnConfig holds the physical and numerical parameters of a
// breakthrough simulation. All fields are fixed once Init has run,
// except NumSteps and AutoSteps, which BreakthroughConvergenceCheck
// updates when breakthrough is detected.
type ColumnConfig struct {
	// DisplayName labels the simulation in logs and banners.
	DisplayName string

	// CarrierGas names the component whose partial pressure fills
	// the column initially. Its isotherm must have zero capacity.
	CarrierGas string

	// NumNodes is the number of interior cells Ng; the column has
	// Ng+1 nodes with node 0 at the inlet.
	NumNodes int

	// Temperature is the isothermal column temperature [K].
	Temperature float64

	// TotalPressure is the outlet total pressure [Pa].
	TotalPressure float64

	// PressureGradient is the expected steady pressure gradient
	// [Pa/m], used to normalize outlet partial pressures.
	PressureGradient float64

	// VoidFraction is the interparticle void fraction of the bed [-].
	VoidFraction float64

	// ParticleDensity is the adsorbent particle density [kg/m3].
	ParticleDensity float64

	// InletVelocity is the interstitial velocity at the inlet [m/s].
	InletVelocity float64

	// Length is the column length [m].
	Length float64

	// Dt is the integration time step [s].
	Dt float64

	// NumSteps is the number of time steps; ignored while AutoSteps
	// is in effect.
	NumSteps int

	// AutoSteps ends the run automatically once the outlet
	// composition has broken through, with a 10% display tail.
	AutoSteps bool

	// Pulse switches the inlet to a finite feed pulse: after
	// PulseTime seconds the feed reverts to pure carrier gas.
	Pulse     bool
	PulseTime float64

	// PrintEvery and WriteEvery control how often progress is
	// logged and output frames are written, in steps.
	PrintEvery int
	WriteEvery int

	// Sutherland viscosity parameters of the carrier gas:
	// mu(T) = Mu0·(T/TMu0)^1.5·(TMu0+SutherlandC)/(T+SutherlandC).
	Mu0         float64
	TMu0        float64
	SutherlandC float64

	// ParticleDiameter is the adsorbent particle diameter [m].
	ParticleDiameter float64

	// MolarMass is the molar mass of the carrier gas [g/mol].
	MolarMass float64
}

// HeliumViscosity returns the Sutherland viscosity and particle
// parameters for a helium carrier with 5 mm adsorbent particles.
func HeliumViscosity() (mu0, tMu0, sutherlandC, particleDiameter, molarMass float64) {
	return 0.0210, 323.15, 72.9, 0.005, 4.0026
}

// Column holds the full simulation state of a fixed-bed adsorption
// column together with the functions that initialize and advance it.
//
// Per-component node fields are flat slices of length (Ng+1)·Nc with
// the component index varying fastest: field[i*Nc+j] belongs to node i,
// component j.
type Column struct {
	ColumnConfig

	// Components are the feed gas species, in storage order.
	Components []Component

	// Predictor computes mixture equilibrium loadings.
	Predictor isotherm.MixturePredictor

	// InitFuncs are run (in order) when calling Init.
	InitFuncs []ColumnManipulator

	// RunFuncs are run (in order) at each time step when calling Run.
	RunFuncs []ColumnManipulator

	// Done specifies whether the simulation is finished.
	Done bool

	// Step is the index of the current time step.
	Step int

	// Nc is the number of components.
	Nc int

	// V is the interstitial gas velocity at each node [m/s].
	V []float64
	// Pt is the total pressure at each node [Pa].
	Pt []float64
	// P is the partial pressure per node and component [Pa].
	P []float64
	// Q is the volume-averaged loading per node and component [mol/kg].
	Q []float64
	// Qeq is the equilibrium loading per node and component [mol/kg].
	Qeq []float64
	// Yi is the gas-phase mole fraction per node and component [-].
	Yi []float64

	// Dpdt is the total pressure rate at each node [Pa/s].
	Dpdt []float64
	// Dqdt is the loading rate per node and component [mol/(kg·s)].
	Dqdt []float64
	// Dydt is the mole-fraction rate per node and component [1/s].
	Dydt []float64

	// PredictorStats accumulates mixture-prediction iteration counts
	// over the whole run.
	PredictorStats stats.Stats

	dx        float64
	carrier   int
	prefactor []float64

	// Runge-Kutta stage buffers.
	vNew, ptNew, dpdtNew      []float64
	pNew, qNew, qeqNew, yiNew []float64
	dqdtNew, dydtNew          []float64
	xi, ni, yiNode            []float64
	cachedP0, cachedPsi       []float64
}

// Init initializes the column by running InitFuncs in order. It must
// be called before Run.
func (c *Column) Init() error {
	for _, f := range c.InitFuncs {
		if err := f(c); err != nil {
			return err
		}
	}
	return nil
}

// Run repeatedly runs RunFuncs in order until Done is true.
func (c *Column) Run() error {
	for !c.Done {
		for _, f := range c.RunFuncs {
			if err := f(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Time returns the simulated time at the current step [s].
func (c *Column) Time() float64 {
	return float64(c.Step) * c.Dt
}

// Dx returns the node spacing [m].
func (c *Column) Dx() float64 { return c.dx }

// CarrierIndex returns the storage index of the carrier gas component.
func (c *Column) CarrierIndex() int { return c.carrier }

// checkConfig validates the configuration before any state is
// allocated.
func (c *Column) checkConfig() error {
	cfgErr := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
	}
	if len(c.Components) == 0 {
		return cfgErr("no components given")
	}
	if c.NumNodes < 1 {
		return cfgErr("need at least 1 grid cell, got %d", c.NumNodes)
	}
	for _, check := range []struct {
		name string
		v    float64
	}{
		{"temperature", c.Temperature},
		{"total pressure", c.TotalPressure},
		{"particle density", c.ParticleDensity},
		{"inlet velocity", c.InletVelocity},
		{"column length", c.Length},
		{"time step", c.Dt},
		{"viscosity mu0", c.Mu0},
		{"viscosity reference temperature", c.TMu0},
		{"Sutherland constant", c.SutherlandC},
		{"particle diameter", c.ParticleDiameter},
		{"carrier molar mass", c.MolarMass},
	} {
		if check.v <= 0 {
			return cfgErr("%s must be positive, got %g", check.name, check.v)
		}
	}
	if c.VoidFraction <= 0 || c.VoidFraction >= 1 {
		return cfgErr("void fraction must lie in (0,1), got %g", c.VoidFraction)
	}
	var sum float64
	for _, comp := range c.Components {
		if comp.Yi0 < 0 {
			return cfgErr("component %s has negative inlet mol-fraction %g", comp.Name, comp.Yi0)
		}
		sum += comp.Yi0
	}
	if math.Abs(sum-1) > 1e-10 {
		return cfgErr("inlet mol-fractions sum to %g, want 1", sum)
	}
	c.carrier = -1
	for j, comp := range c.Components {
		if comp.Name == c.CarrierGas {
			c.carrier = j
		}
	}
	if c.carrier < 0 {
		return cfgErr("carrier gas %q is not among the components", c.CarrierGas)
	}
	if !c.Components[c.carrier].Isotherm.Zero() {
		return cfgErr("carrier gas %q must have a zero-capacity isotherm", c.CarrierGas)
	}
	if c.Predictor == nil {
		return cfgErr("no mixture predictor given")
	}
	if c.Pulse && c.PulseTime <= 0 {
		return cfgErr("pulse time must be positive, got %g", c.PulseTime)
	}
	return nil
}

func (c *Column) String() string {
	var b strings.Builder
	rule := strings.Repeat("=", 55) + "\n"

	b.WriteString("Column properties\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Display-name:                          %s\n", c.DisplayName)
	fmt.Fprintf(&b, "Temperature:                           %g [K]\n", c.Temperature)
	fmt.Fprintf(&b, "Column length:                         %g [m]\n", c.Length)
	fmt.Fprintf(&b, "Column void-fraction:                  %g [-]\n", c.VoidFraction)
	fmt.Fprintf(&b, "Particle density:                      %g [kg/m^3]\n", c.ParticleDensity)
	fmt.Fprintf(&b, "Total pressure:                        %g [Pa]\n", c.TotalPressure)
	fmt.Fprintf(&b, "Pressure gradient:                     %g [Pa/m]\n", c.PressureGradient)
	fmt.Fprintf(&b, "Column entrance interstitial velocity: %g [m/s]\n\n", c.InletVelocity)

	b.WriteString("Breakthrough settings\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Number of time steps:          %d\n", c.NumSteps)
	fmt.Fprintf(&b, "Print every step:              %d\n", c.PrintEvery)
	fmt.Fprintf(&b, "Write data every step:         %d\n\n", c.WriteEvery)

	b.WriteString("Integration details\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Time step:                     %g [s]\n", c.Dt)
	fmt.Fprintf(&b, "Number of column grid points:  %d\n", c.NumNodes)
	fmt.Fprintf(&b, "Column spacing:                %g [m]\n\n", c.dx)

	b.WriteString("Component data\n")
	b.WriteString(rule)
	for _, comp := range c.Components {
		b.WriteString(comp.String())
	}
	return b.String()
}
