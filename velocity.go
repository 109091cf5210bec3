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
	"math"
)

// ergunPrefactors returns the laminar and turbulent prefactors of the
// Ergun pressure-drop closure for the configured bed and inlet flow.
func (c *Column) ergunPrefactors() (laminar, turbulent float64) {
	eps := c.VoidFraction
	laminar = c.Mu0 * c.InletVelocity * (150 * (1 - eps) * (1 - eps)) /
		((eps * eps) * (c.ParticleDiameter * c.ParticleDiameter))
	turbulent = c.InletVelocity * math.Abs(c.InletVelocity) * (1.75 * (1 - eps) * c.MolarMass) /
		(eps * c.ParticleDiameter * R)
	return laminar, turbulent
}

// sutherland is the dimensionless Sutherland viscosity correction
// mu(T)/mu0 at temperature T.
func (c *Column) sutherland(T float64) float64 {
	return math.Pow(T/c.TMu0, 1.5) * (c.TMu0 + c.SutherlandC) / (T + c.SutherlandC)
}

// computeVelocity solves the Ergun momentum closure for the
// interstitial velocity at every node given the total pressure profile
// pt, writing the result to v. At each node the closure is the
// quadratic a·V² + b·V + c = 0 with
//
//	a = laminar_prefactor · pt[i] / T
//	b = turbulent_prefactor · mu(T)/mu0
//	c = (pt[i] - pt[i-1]) / dx
//
// of which the positive root is taken. The inlet velocity is a
// Dirichlet condition, v[0] = InletVelocity. The coefficient b does
// not depend on the node and is computed once.
func (c *Column) computeVelocity(pt, v []float64) error {
	laminar, turbulent := c.ergunPrefactors()
	T := c.Temperature

	termB := turbulent * c.sutherland(T)

	v[0] = c.InletVelocity
	for i := 1; i <= c.NumNodes; i++ {
		termA := laminar * pt[i] / T
		termC := (pt[i] - pt[i-1]) / c.dx
		disc := termB*termB - 4*termA*termC
		if disc < 0 {
			return fmt.Errorf("%w: node %d, step %d: discriminant %g", ErrVelocityComplex, i, c.Step, disc)
		}
		v[i] = 1 / (2 * termA) * (-1*termB + math.Sqrt(disc))
	}
	return nil
}

// computeInitialPressure integrates the Ergun pressure drop backwards
// from the outlet, held at TotalPressure, to obtain the initial total
// pressure profile. The integration uses the explicit Euler update
// p[i-1] = p[i] - f(p[i])·dx on the same prefactors as computeVelocity.
func (c *Column) computeInitialPressure(p []float64) {
	laminar, turbulent := c.ergunPrefactors()
	T := c.Temperature

	p[c.NumNodes] = c.TotalPressure
	for i := c.NumNodes; i > 0; i-- {
		fp := -laminar*c.sutherland(T) - turbulent*(p[i]/T)
		p[i-1] = p[i] - fp*c.dx
	}
}
