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
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Isotherms evaluates the configured pure-component isotherms and the
// mixture prediction at the feed composition over nPoints total
// pressures logarithmically spaced between pStart and pEnd [Pa], and
// writes the table to isotherms.data in dir.
//
// Each line holds the total pressure, the pure-component loading of
// every component at that pressure, and the mixture loading of every
// component at the feed composition.
func Isotherms(cfg *viper.Viper, dir string, pStart, pEnd float64, nPoints int) error {
	if pStart <= 0 || pEnd <= pStart {
		return fmt.Errorf("fixbed: need 0 < Prediction.PressureStart < Prediction.PressureEnd, got %g and %g", pStart, pEnd)
	}
	if nPoints < 2 {
		return fmt.Errorf("fixbed: need at least 2 prediction points, got %d", nPoints)
	}
	comps, err := componentsFromConfig(cfg)
	if err != nil {
		return err
	}
	predictor, err := predictorFromConfig(cfg, comps)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(os.ExpandEnv(dir), 0755); err != nil {
		return fmt.Errorf("fixbed: problem creating output directory: %v", err)
	}
	f, err := os.Create(filepath.Join(os.ExpandEnv(dir), "isotherms.data"))
	if err != nil {
		return fmt.Errorf("fixbed: creating isotherm table: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprint(w, "# columns: Pt")
	for _, comp := range comps {
		fmt.Fprintf(w, " q_%s", comp.Name)
	}
	for _, comp := range comps {
		fmt.Fprintf(w, " qmix_%s", comp.Name)
	}
	fmt.Fprintln(w)

	nc := len(comps)
	yi := make([]float64, nc)
	for j, comp := range comps {
		yi[j] = comp.Yi0
	}
	xi := make([]float64, nc)
	ni := make([]float64, nc)
	p0 := make([]float64, nc)
	var psi float64

	logStep := math.Log(pEnd/pStart) / float64(nPoints-1)
	for k := 0; k < nPoints; k++ {
		pt := pStart * math.Exp(float64(k)*logStep)
		fmt.Fprintf(w, "%v", pt)
		for _, comp := range comps {
			fmt.Fprintf(w, " %v", comp.Isotherm.Loading(pt))
		}
		if _, err := predictor.Predict(yi, pt, xi, ni, p0, &psi); err != nil {
			return fmt.Errorf("fixbed: mixture prediction at %g Pa: %v", pt, err)
		}
		for j := range comps {
			fmt.Fprintf(w, " %v", ni[j])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("fixbed: flushing isotherm table: %w", err)
	}
	logrus.WithField("dir", dir).Info("Wrote isotherm table")
	return nil
}
