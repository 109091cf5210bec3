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

// derivatives evaluates the time derivatives of loading (dqdt, per
// node and component), total pressure (dpdt, per node), and gas-phase
// mole fraction (dydt, per node and component) for the state given by
// the equilibrium loadings qeq, loadings q, velocities v, total
// pressures pt, and mole fractions yi.
//
// Spatial discretization: first-order upwind advection (flow is always
// inlet to outlet) and second-order centered diffusion on a uniform
// grid. Boundary conditions: the inlet composition is fixed
// (dydt[0,j] = 0); the outlet uses the zero-gradient ghost values
// y[Ng+1] = y[Ng] and v[Ng+1] = v[Ng], which drop the advective
// pressure difference and the expansion term from the outlet pressure
// balance.
func (c *Column) derivatives(dqdt, dpdt, dydt, qeq, q, v, pt, yi []float64) {
	nc := c.Nc
	ng := c.NumNodes
	idx := 1 / c.dx
	idx2 := 1 / (c.dx * c.dx)

	// Inlet node.
	var src float64
	for j := 0; j < nc; j++ {
		dqdt[j] = c.Components[j].Kl * (qeq[j] - q[j])
		src += c.prefactor[j] * (qeq[j] - q[j])
		dydt[j] = 0
	}
	dpdt[0] = -v[0]*(pt[1]-pt[0])*idx -
		pt[0]*(v[1]-v[0])*idx - src

	// Interior nodes.
	for i := 1; i < ng; i++ {
		o := i * nc
		var src, sum float64
		for j := 0; j < nc; j++ {
			src += c.prefactor[j] * (qeq[o+j] - q[o+j])
			sum += c.prefactor[j] * (qeq[o+j] - q[o+j]) * yi[o+j]
		}
		sum /= pt[i]

		for j := 0; j < nc; j++ {
			dqdt[o+j] = c.Components[j].Kl * (qeq[o+j] - q[o+j])
			dydt[o+j] = c.Components[j].D*(yi[o+nc+j]-2*yi[o+j]+yi[o-nc+j]+
				(pt[i]-pt[i-1])*(yi[o+j]-yi[o-nc+j])/pt[i])*idx2 -
				v[i]*(yi[o+j]-yi[o-nc+j])*idx +
				sum - (qeq[o+j]-q[o+j])/pt[i]
		}
		dpdt[i] = -v[i]*(pt[i+1]-pt[i])*idx -
			pt[i]*(v[i+1]-v[i])*idx - src
	}

	// Outlet node.
	o := ng * nc
	src, sum := 0.0, 0.0
	for j := 0; j < nc; j++ {
		src += c.prefactor[j] * (qeq[o+j] - q[o+j])
		sum += c.prefactor[j] * (qeq[o+j] - q[o+j]) * yi[o+j]
	}
	sum /= pt[ng]
	for j := 0; j < nc; j++ {
		dqdt[o+j] = c.Components[j].Kl * (qeq[o+j] - q[o+j])
		dydt[o+j] = c.Components[j].D*(-yi[o+j]+yi[o-nc+j]+
			(pt[ng]-pt[ng-1])*(yi[o+j]-yi[o-nc+j])/pt[ng])*idx2 -
			v[ng]*(yi[o+j]-yi[o-nc+j])*idx +
			sum - (qeq[o+j]-q[o+j])/pt[ng]
	}
	dpdt[ng] = -src
}
