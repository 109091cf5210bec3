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

import "errors"

// Simulation errors are fatal: the run loop stops at the first error
// and the column state is left as-is for inspection.
var (
	// ErrConfiguration indicates invalid or inconsistent input
	// detected before time stepping begins.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrGeometry indicates a physically impossible column state,
	// such as a pressure gradient steep enough to drive the outlet
	// pressure negative.
	ErrGeometry = errors.New("unphysical column geometry")

	// ErrVelocityComplex indicates a negative discriminant in the
	// Ergun velocity quadratic, so no real velocity root exists.
	ErrVelocityComplex = errors.New("velocity solve has no real root")

	// ErrPredictorDiverged indicates that the mixture predictor
	// failed to converge at some node.
	ErrPredictorDiverged = errors.New("mixture prediction diverged")
)
