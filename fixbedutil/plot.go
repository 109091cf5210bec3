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
	"fmt"

	"github.com/adsorptionmodel/fixbed"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// breakthroughRecorder accumulates the normalized outlet partial
// pressure of every component over time so the breakthrough curves can
// be plotted after the run.
type breakthroughRecorder struct {
	names  []string
	t      []float64
	curves [][]float64
}

func newBreakthroughRecorder(c *fixbed.Column) *breakthroughRecorder {
	r := &breakthroughRecorder{
		names:  make([]string, len(c.Components)),
		curves: make([][]float64, len(c.Components)),
	}
	for j, comp := range c.Components {
		r.names[j] = comp.Name
	}
	return r
}

// Record returns a manipulator that samples the outlet composition
// every WriteEvery steps.
func (r *breakthroughRecorder) Record() fixbed.ColumnManipulator {
	return func(c *fixbed.Column) error {
		step := c.Step - 1
		if c.WriteEvery > 0 && step%c.WriteEvery != 0 {
			return nil
		}
		t := float64(step) * c.Dt
		norm := c.TotalPressure + c.PressureGradient*c.Length
		r.t = append(r.t, t/60)
		for j, comp := range c.Components {
			r.curves[j] = append(r.curves[j],
				c.P[c.NumNodes*c.Nc+j]/(norm*comp.Yi0))
		}
		return nil
	}
}

// WritePlot renders the recorded breakthrough curves to file. The
// image format follows the file extension.
func (r *breakthroughRecorder) WritePlot(file string) error {
	p := plot.New()
	p.Title.Text = "Breakthrough curves"
	p.X.Label.Text = "Time (min)"
	p.Y.Label.Text = "Normalized outlet partial pressure"
	p.Legend.Top = true
	p.Legend.Left = true

	var lines []interface{}
	for j, name := range r.names {
		xy := make(plotter.XYs, len(r.t))
		for i, t := range r.t {
			xy[i].X = t
			xy[i].Y = r.curves[j][i]
		}
		lines = append(lines, name, xy)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("fixbed: plotting breakthrough curves: %v", err)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("fixbed: saving breakthrough plot: %v", err)
	}
	return nil
}
