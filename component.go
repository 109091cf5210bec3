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
	"strings"

	"github.com/adsorptionmodel/fixbed/isotherm"
)

// Component describes one chemical species in the feed gas.
type Component struct {
	// Name identifies the component in output files and logs.
	Name string

	// Yi0 is the inlet gas-phase mole fraction [-].
	Yi0 float64

	// Kl is the linear-driving-force mass transfer coefficient [1/s].
	Kl float64

	// D is the axial dispersion coefficient [m2/s].
	D float64

	// Isotherm is the pure-component adsorption isotherm. The
	// carrier gas carries a zero-capacity isotherm.
	Isotherm isotherm.Isotherm
}

func (c Component) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Component %s\n", c.Name)
	fmt.Fprintf(&b, "    mol-fraction in the gas:   %g [-]\n", c.Yi0)
	fmt.Fprintf(&b, "    mass transfer coefficient: %g [1/s]\n", c.Kl)
	fmt.Fprintf(&b, "    diffusion coefficient:     %g [m^2/s]\n", c.D)
	for _, s := range c.Isotherm.Sites {
		switch s.Model {
		case isotherm.Henry:
			fmt.Fprintf(&b, "    %s site: K=%g\n", s.Model, s.K)
		case isotherm.Freundlich:
			fmt.Fprintf(&b, "    %s site: K=%g n=%g\n", s.Model, s.K, s.N)
		case isotherm.Langmuir:
			fmt.Fprintf(&b, "    %s site: qsat=%g b=%g\n", s.Model, s.Qsat, s.B)
		default:
			fmt.Fprintf(&b, "    %s site: qsat=%g b=%g n=%g\n", s.Model, s.Qsat, s.B, s.N)
		}
	}
	return b.String()
}
