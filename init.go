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

import "math"

// InitColumn returns a manipulator that validates the configuration,
// allocates the column state, and seeds it: the column is filled with
// carrier gas at the Ergun initial pressure profile, the inlet node is
// held at the feed composition, and equilibrium loadings and
// velocities are computed for the seeded state.
func InitColumn() ColumnManipulator {
	return func(c *Column) error {
		if err := c.checkConfig(); err != nil {
			return err
		}

		c.Nc = len(c.Components)
		c.dx = c.Length / float64(c.NumNodes)
		nn := c.NumNodes + 1
		nnc := nn * c.Nc

		c.V = make([]float64, nn)
		c.Pt = make([]float64, nn)
		c.Dpdt = make([]float64, nn)
		c.P = make([]float64, nnc)
		c.Q = make([]float64, nnc)
		c.Qeq = make([]float64, nnc)
		c.Yi = make([]float64, nnc)
		c.Dqdt = make([]float64, nnc)
		c.Dydt = make([]float64, nnc)

		c.vNew = make([]float64, nn)
		c.ptNew = make([]float64, nn)
		c.dpdtNew = make([]float64, nn)
		c.pNew = make([]float64, nnc)
		c.qNew = make([]float64, nnc)
		c.qeqNew = make([]float64, nnc)
		c.yiNew = make([]float64, nnc)
		c.dqdtNew = make([]float64, nnc)
		c.dydtNew = make([]float64, nnc)

		c.xi = make([]float64, c.Nc)
		c.ni = make([]float64, c.Nc)
		c.yiNode = make([]float64, c.Nc)
		c.cachedP0 = make([]float64, nnc)
		c.cachedPsi = make([]float64, nn)

		// Mass-transfer prefactor per component.
		c.prefactor = make([]float64, c.Nc)
		for j, comp := range c.Components {
			c.prefactor[j] = R * c.Temperature *
				((1 - c.VoidFraction) / c.VoidFraction) * c.ParticleDensity * comp.Kl
		}

		// Total pressure along the column from the Ergun equation,
		// and the matching interstitial velocity profile.
		ptInit := make([]float64, nn)
		c.computeInitialPressure(ptInit)
		for i := 0; i < nn; i++ {
			c.V[i] = c.InletVelocity * c.TotalPressure / ptInit[i]
		}

		// The column starts filled with carrier gas; only the inlet
		// node holds the feed composition.
		for i := 1; i < nn; i++ {
			c.P[i*c.Nc+c.carrier] = ptInit[i]
		}
		for j, comp := range c.Components {
			c.P[j] = c.TotalPressure * comp.Yi0
		}

		for i := 0; i < nn; i++ {
			var sum float64
			for j := 0; j < c.Nc; j++ {
				c.Yi[i*c.Nc+j] = math.Max(c.P[i*c.Nc+j]/ptInit[i], 0)
				sum += c.Yi[i*c.Nc+j]
			}
			for j := 0; j < c.Nc; j++ {
				c.Yi[i*c.Nc+j] /= sum
			}
		}

		// The total pressure field is seeded from the Ergun profile, not
		// from the inlet partial pressures; the profile decreases
		// monotonically from inlet to outlet, keeping the running
		// velocity solve on its real root at every node.
		copy(c.Pt, ptInit)

		if err := c.computeEquilibriumLoadings(c.Yi, ptInit, c.Qeq); err != nil {
			return err
		}
		return nil
	}
}
