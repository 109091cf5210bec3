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

import "fmt"

// computeEquilibriumLoadings runs the mixture predictor at every node
// of the state given by mole fractions yi and total pressures pt,
// writing the equilibrium loadings to qeq. Predictor solver state is
// cached per node so consecutive sweeps warm-start from the previous
// solution.
func (c *Column) computeEquilibriumLoadings(yi, pt, qeq []float64) error {
	nc := c.Nc
	for i := 0; i <= c.NumNodes; i++ {
		copy(c.yiNode, yi[i*nc:(i+1)*nc])
		iters, err := c.Predictor.Predict(c.yiNode, pt[i], c.xi, c.ni,
			c.cachedP0[i*nc:(i+1)*nc], &c.cachedPsi[i])
		c.PredictorStats.Update(float64(iters))
		if err != nil {
			return fmt.Errorf("%w: node %d, step %d: %v", ErrPredictorDiverged, i, c.Step, err)
		}
		copy(qeq[i*nc:(i+1)*nc], c.ni)
	}
	if c.Pt != nil && c.Pt[0]+c.PressureGradient*c.Length < 0 {
		return fmt.Errorf("%w: pressure gradient %g [Pa/m] drives the outlet pressure negative",
			ErrGeometry, c.PressureGradient)
	}
	return nil
}

// SSPRK3 returns a manipulator that advances the column state by one
// time step with the three-stage strong stability preserving
// Runge-Kutta scheme of Shu and Osher.
//
// The state tuple U = (Pt, Q, y) is advanced per stage as
//
//	U1 = U0 + dt·F(U0)
//	U2 = 3/4·U0 + 1/4·U1 + 1/4·dt·F(U1)
//	U3 = 1/3·U0 + 2/3·U2 + 2/3·dt·F(U2)
//
// with partial pressures reconstructed as P := y·Pt after each stage.
// Equilibrium loadings and the velocity profile are recomputed from
// every provisional state before the next derivative evaluation; the
// per-step ordering {derivatives, provisional state, mixture
// predictor, velocity solve} is fixed.
//
// After stage 3 the provisional state is committed and, in pulse mode
// past the pulse time, the inlet partial pressures and mole fractions
// revert to pure carrier gas.
func SSPRK3() ColumnManipulator {
	return func(c *Column) error {
		nn := c.NumNodes + 1
		nc := c.Nc
		dt := c.Dt

		// Stage 1: explicit Euler estimate.
		c.derivatives(c.Dqdt, c.Dpdt, c.Dydt, c.Qeq, c.Q, c.V, c.Pt, c.Yi)
		for i := 0; i < nn; i++ {
			c.ptNew[i] = c.Pt[i] + dt*c.Dpdt[i]
			for j := 0; j < nc; j++ {
				o := i*nc + j
				c.qNew[o] = c.Q[o] + dt*c.Dqdt[o]
				c.yiNew[o] = c.Yi[o] + dt*c.Dydt[o]
				c.pNew[o] = c.yiNew[o] * c.ptNew[i]
			}
		}
		if err := c.computeEquilibriumLoadings(c.yiNew, c.ptNew, c.qeqNew); err != nil {
			return err
		}
		if err := c.computeVelocity(c.ptNew, c.vNew); err != nil {
			return err
		}

		// Stage 2.
		c.derivatives(c.dqdtNew, c.dpdtNew, c.dydtNew, c.qeqNew, c.qNew, c.vNew, c.ptNew, c.yiNew)
		for i := 0; i < nn; i++ {
			c.ptNew[i] = 0.75*c.Pt[i] + 0.25*c.ptNew[i] + 0.25*dt*c.dpdtNew[i]
			for j := 0; j < nc; j++ {
				o := i*nc + j
				c.qNew[o] = 0.75*c.Q[o] + 0.25*c.qNew[o] + 0.25*dt*c.dqdtNew[o]
				c.yiNew[o] = 0.75*c.Yi[o] + 0.25*c.yiNew[o] + 0.25*dt*c.dydtNew[o]
				c.pNew[o] = c.yiNew[o] * c.ptNew[i]
			}
		}
		if err := c.computeEquilibriumLoadings(c.yiNew, c.ptNew, c.qeqNew); err != nil {
			return err
		}
		if err := c.computeVelocity(c.ptNew, c.vNew); err != nil {
			return err
		}

		// Stage 3.
		c.derivatives(c.dqdtNew, c.dpdtNew, c.dydtNew, c.qeqNew, c.qNew, c.vNew, c.ptNew, c.yiNew)
		for i := 0; i < nn; i++ {
			c.ptNew[i] = (1.0/3.0)*c.Pt[i] + (2.0/3.0)*c.ptNew[i] + (2.0/3.0)*dt*c.dpdtNew[i]
			for j := 0; j < nc; j++ {
				o := i*nc + j
				c.qNew[o] = (1.0/3.0)*c.Q[o] + (2.0/3.0)*c.qNew[o] + (2.0/3.0)*dt*c.dqdtNew[o]
				c.yiNew[o] = (1.0/3.0)*c.Yi[o] + (2.0/3.0)*c.yiNew[o] + (2.0/3.0)*dt*c.dydtNew[o]
				c.pNew[o] = c.yiNew[o] * c.ptNew[i]
			}
		}
		if err := c.computeEquilibriumLoadings(c.yiNew, c.ptNew, c.qeqNew); err != nil {
			return err
		}
		if err := c.computeVelocity(c.ptNew, c.vNew); err != nil {
			return err
		}

		// Commit the new state.
		copy(c.Q, c.qNew)
		copy(c.Pt, c.ptNew)
		copy(c.P, c.pNew)
		copy(c.Qeq, c.qeqNew)
		copy(c.V, c.vNew)
		copy(c.Yi, c.yiNew)

		// Pulse boundary condition: past the pulse time, the feed is
		// pure carrier gas again.
		if c.Pulse && c.Time() > c.PulseTime {
			for j := 0; j < nc; j++ {
				if j == c.carrier {
					c.P[j] = c.TotalPressure
					c.Yi[j] = 1
				} else {
					c.P[j] = 0
					c.Yi[j] = 0
				}
			}
		}

		c.Step++
		return nil
	}
}
