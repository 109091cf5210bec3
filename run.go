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
	"fmt"
	"io"
	"math"
)

// outletBreakthrough returns the largest deviation of any normalized
// outlet partial pressure from unity,
//
//	max_j | P[Ng,j] / ((p_total + dptdx·L)·Yi0_j) - 1 |.
//
// A value below 0.01 means the feed front has fully broken through.
func (c *Column) outletBreakthrough() float64 {
	var tol float64
	norm := c.TotalPressure + c.PressureGradient*c.Length
	o := c.NumNodes * c.Nc
	for j, comp := range c.Components {
		tol = math.Max(tol, math.Abs(c.P[o+j]/(norm*comp.Yi0)-1))
	}
	return tol
}

// BreakthroughConvergenceCheck checks whether the breakthrough
// simulation is finished and sets the Done flag if it is. While
// auto-steps is active, breakthrough is detected when every normalized
// outlet partial pressure is within 1% of unity; the step horizon is
// then pinned to a 10% longer run for display purposes and auto-steps
// is disabled. Status messages are written to w, which may be nil.
func BreakthroughConvergenceCheck(w io.Writer) ColumnManipulator {
	const tolerance = 0.01

	return func(c *Column) error {
		if c.AutoSteps {
			if c.outletBreakthrough() < tolerance {
				if w != nil {
					fmt.Fprintf(w, "\nConvergence criteria reached, running 10%% longer\n\n")
				}
				// ⌈1.1·Step⌉ in integer arithmetic, free of float rounding.
				c.NumSteps = (11*c.Step + 9) / 10
				c.AutoSteps = false
			}
		}
		if !c.AutoSteps && c.Step >= c.NumSteps {
			c.Done = true
		}
		return nil
	}
}

// Log writes simulation status messages to w every PrintEvery steps,
// including the running average of mixture-prediction iterations.
func Log(w io.Writer) ColumnManipulator {
	return func(c *Column) error {
		// Step has already been advanced by the integrator; report
		// the step that was just computed.
		step := c.Step - 1
		if c.PrintEvery <= 0 || step%c.PrintEvery != 0 {
			return nil
		}
		fmt.Fprintf(w, "Timestep %d, time: %f [s]\n", step, float64(step)*c.Dt)
		fmt.Fprintf(w, "    Average number of mixture-prediction steps: %f\n",
			c.PredictorStats.Mean())
		return nil
	}
}
