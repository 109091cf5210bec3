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
	"strings"

	"github.com/adsorptionmodel/fixbed"
	"github.com/adsorptionmodel/fixbed/isotherm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/optimize"
)

// readLoadingData reads a whitespace-separated table of measured
// pressure [Pa] and loading [mol/kg] pairs. Lines starting with '#'
// are skipped.
func readLoadingData(file string) (p, q []float64, err error) {
	f, err := os.Open(os.ExpandEnv(file))
	if err != nil {
		return nil, nil, fmt.Errorf("fixbed: opening fit data: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var pi, qi float64
		if _, err := fmt.Sscan(text, &pi, &qi); err != nil {
			return nil, nil, fmt.Errorf("fixbed: fit data line %d: %v", line, err)
		}
		p = append(p, pi)
		q = append(q, qi)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("fixbed: reading fit data: %w", err)
	}
	if len(p) < 2 {
		return nil, nil, fmt.Errorf("fixbed: fit data %s holds %d points, need at least 2", file, len(p))
	}
	return p, q, nil
}

// siteParameters lists the free parameters of a site in fitting order.
func siteParameters(s isotherm.Site) []float64 {
	switch s.Model {
	case isotherm.Henry:
		return []float64{s.K}
	case isotherm.Freundlich:
		return []float64{s.K, s.N}
	case isotherm.Langmuir:
		return []float64{s.Qsat, s.B}
	default: // Sips and Langmuir-Freundlich
		return []float64{s.Qsat, s.B, s.N}
	}
}

func setSiteParameters(s *isotherm.Site, x []float64) {
	switch s.Model {
	case isotherm.Henry:
		s.K = x[0]
	case isotherm.Freundlich:
		s.K, s.N = x[0], x[1]
	case isotherm.Langmuir:
		s.Qsat, s.B = x[0], x[1]
	default:
		s.Qsat, s.B, s.N = x[0], x[1], x[2]
	}
}

// Fit adjusts the isotherm parameters of the named component to
// minimize the sum of squared deviations from the measured (pressure,
// loading) pairs in dataFile, using Nelder-Mead starting from the
// configured parameter values. The fitted parameters are printed per
// site.
func Fit(cfg *viper.Viper, component, dataFile string) error {
	if component == "" {
		return fmt.Errorf("fixbed: no Fit.Component is configured")
	}
	if dataFile == "" {
		return fmt.Errorf("fixbed: no Fit.DataFile is configured")
	}
	comps, err := componentsFromConfig(cfg)
	if err != nil {
		return err
	}
	var comp *fixbed.Component
	for k := range comps {
		if comps[k].Name == component {
			comp = &comps[k]
			break
		}
	}
	if comp == nil {
		return fmt.Errorf("fixbed: component %q is not configured", component)
	}
	if len(comp.Isotherm.Sites) == 0 {
		return fmt.Errorf("fixbed: component %q has no isotherm sites to fit", component)
	}

	pData, qData, err := readLoadingData(dataFile)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"component": component,
		"points":    len(pData),
	}).Info("Fitting isotherm parameters")

	// Optimize in log space so the parameters stay positive.
	var x0 []float64
	for _, s := range comp.Isotherm.Sites {
		for _, v := range siteParameters(s) {
			if v <= 0 {
				v = 1e-6
			}
			x0 = append(x0, math.Log(v))
		}
	}

	sites := make([]isotherm.Site, len(comp.Isotherm.Sites))
	unpack := func(x []float64) isotherm.Isotherm {
		copy(sites, comp.Isotherm.Sites)
		off := 0
		for k := range sites {
			n := len(siteParameters(sites[k]))
			params := make([]float64, n)
			for i := 0; i < n; i++ {
				params[i] = math.Exp(x[off+i])
			}
			setSiteParameters(&sites[k], params)
			off += n
		}
		return isotherm.Isotherm{Sites: sites}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			iso := unpack(x)
			var sum float64
			for i, p := range pData {
				r := iso.Loading(p) - qData[i]
				sum += r * r
			}
			return sum
		},
	}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return fmt.Errorf("fixbed: fitting %s: %v", component, err)
	}
	if err := result.Status.Err(); err != nil {
		return fmt.Errorf("fixbed: fitting %s: %v", component, err)
	}

	comp.Isotherm = unpack(result.X)
	rmse := math.Sqrt(result.F / float64(len(pData)))
	fmt.Printf("Fitted isotherm for %s (RMSE %g [mol/kg]):\n", component, rmse)
	for _, s := range comp.Isotherm.Sites {
		switch s.Model {
		case isotherm.Henry:
			fmt.Printf("    %s site: K=%g\n", s.Model, s.K)
		case isotherm.Freundlich:
			fmt.Printf("    %s site: K=%g n=%g\n", s.Model, s.K, s.N)
		case isotherm.Langmuir:
			fmt.Printf("    %s site: qsat=%g b=%g\n", s.Model, s.Qsat, s.B)
		default:
			fmt.Printf("    %s site: qsat=%g b=%g n=%g\n", s.Model, s.Qsat, s.B, s.N)
		}
	}
	return nil
}
