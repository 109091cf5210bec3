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
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"gonum.org/v1/gonum/floats"
)

// Outputter writes simulation results to disk.
//
// Three kinds of files are produced in the output directory:
// per-component breakthrough curves (component_<i>_<name>.data), the
// column profile stream (column.data) with one frame per logged step,
// and, when derived output variables are configured, a derived.data
// file with one line per node per frame.
//
// outputVariables maps user-chosen names to expressions over the node
// variables (z, V, Pt, Dpdt, t, tdim, tmin, and per-component
// Q_<name>, Qeq_<name>, P_<name>, Pnorm_<name>, Dqdt_<name>; the bare
// names Q, Qeq, P, and Dqdt are per-node slices across components).
// Expressions may use functions defined in outputFunctions in addition
// to the defaults.
type Outputter struct {
	dir             string
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
	derivedNames    []string

	breakthrough []*bufio.Writer
	column       *bufio.Writer
	derived      *bufio.Writer
	files        []*os.File
}

// NewOutputter initializes a new Outputter writing to directory dir
// and compiles the derived output expressions. Default functions
// include:
//
// 'exp(x)', 'log(x)', 'sqrt(x)', and 'abs(x)', which apply the
// corresponding scalar function.
//
// 'sum(x)' which sums a per-node slice variable across components, so
// for example sum(Q) is the total loading at a node.
func NewOutputter(dir string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	scalar := func(name string, f func(float64) float64) govaluate.ExpressionFunction {
		return func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("fixbed: got %d arguments for function %q, but needs 1", len(arg), name)
			}
			return f(arg[0].(float64)), nil
		}
	}
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp":  scalar("exp", math.Exp),
		"log":  scalar("log", math.Log),
		"sqrt": scalar("sqrt", math.Sqrt),
		"abs":  scalar("abs", math.Abs),
		"sum": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("fixbed: got %d arguments for function 'sum', but needs 1", len(arg))
			}
			return floats.Sum(arg[0].([]float64)), nil
		},
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	o := &Outputter{
		dir:             dir,
		outputVariables: outputVariables,
		outputFunctions: defaultOutputFuncs,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
	}
	for name, expr := range outputVariables {
		compiled, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("fixbed: output variable %q: %v", name, err)
		}
		o.expressions[name] = compiled
		o.derivedNames = append(o.derivedNames, name)
	}
	sort.Strings(o.derivedNames)
	return o, nil
}

// nodeVariables collects the variables available to derived output
// expressions at node i.
func (o *Outputter) nodeVariables(c *Column, i int) map[string]interface{} {
	t := float64(c.Step-1) * c.Dt
	nc := c.Nc
	vars := map[string]interface{}{
		"z":    float64(i) * c.dx,
		"V":    c.V[i],
		"Pt":   c.Pt[i],
		"Dpdt": c.Dpdt[i],
		"t":    t,
		"tdim": t * c.InletVelocity / c.Length,
		"tmin": t / 60,
	}
	q := make([]float64, nc)
	qeq := make([]float64, nc)
	p := make([]float64, nc)
	dqdt := make([]float64, nc)
	for j, comp := range c.Components {
		off := i*nc + j
		q[j] = c.Q[off]
		qeq[j] = c.Qeq[off]
		p[j] = c.P[off]
		dqdt[j] = c.Dqdt[off]
		vars["Q_"+comp.Name] = c.Q[off]
		vars["Qeq_"+comp.Name] = c.Qeq[off]
		vars["P_"+comp.Name] = c.P[off]
		vars["Pnorm_"+comp.Name] = c.P[off] / (c.Pt[i] * comp.Yi0)
		vars["Dqdt_"+comp.Name] = c.Dqdt[off]
	}
	vars["Q"] = q
	vars["Qeq"] = qeq
	vars["P"] = p
	vars["Dqdt"] = dqdt
	return vars
}

// CheckOutputVars returns a manipulator that verifies every variable
// referenced by the derived output expressions exists in the model.
// It must run after the column state has been initialized.
func (o *Outputter) CheckOutputVars() ColumnManipulator {
	return func(c *Column) error {
		available := o.nodeVariables(c, 0)
		for name, expr := range o.expressions {
			for _, v := range expr.Vars() {
				if _, ok := available[v]; !ok {
					return fmt.Errorf("fixbed: output variable %q: undefined variable name %q", name, v)
				}
			}
		}
		return nil
	}
}

// Init returns a manipulator that creates the output files and writes
// the column.data layout header. It must run after the column state
// has been initialized.
func (o *Outputter) Init() ColumnManipulator {
	return func(c *Column) error {
		create := func(name string) (*bufio.Writer, error) {
			f, err := os.Create(filepath.Join(o.dir, name))
			if err != nil {
				return nil, fmt.Errorf("fixbed: creating output file: %w", err)
			}
			o.files = append(o.files, f)
			return bufio.NewWriter(f), nil
		}

		for i, comp := range c.Components {
			w, err := create(fmt.Sprintf("component_%d_%s.data", i, comp.Name))
			if err != nil {
				return err
			}
			o.breakthrough = append(o.breakthrough, w)
		}

		w, err := create("column.data")
		if err != nil {
			return err
		}
		o.column = w
		nr := 1
		header := func(format string, args ...interface{}) {
			fmt.Fprintf(o.column, "# column %d: %s\n", nr, fmt.Sprintf(format, args...))
			nr++
		}
		header("z  (column position)")
		header("V  (velocity)")
		header("Pt (total pressure)")
		for j := range c.Components {
			header("component %d Q     (loading)", j)
			header("component %d Qeq   (equilibrium loading)", j)
			header("component %d P     (partial pressure)", j)
			header("component %d Pnorm (normalized partial pressure)", j)
			header("component %d Dpdt  (derivative Pt with t)", j)
			header("component %d Dqdt  (derivative Q with t)", j)
		}

		if len(o.derivedNames) > 0 {
			w, err := create("derived.data")
			if err != nil {
				return err
			}
			o.derived = w
			fmt.Fprintf(o.derived, "# columns: z %s\n", strings.Join(o.derivedNames, " "))
		}
		return nil
	}
}

// Output returns a manipulator that writes the breakthrough curves, a
// column profile frame, and the derived output variables every
// WriteEvery steps.
func (o *Outputter) Output() ColumnManipulator {
	return func(c *Column) error {
		step := c.Step - 1
		if c.WriteEvery > 0 && step%c.WriteEvery != 0 {
			return nil
		}
		t := float64(step) * c.Dt
		nc := c.Nc
		norm := c.TotalPressure + c.PressureGradient*c.Length

		for j, comp := range c.Components {
			fmt.Fprintf(o.breakthrough[j], "%v %v %v\n",
				t*c.InletVelocity/c.Length, t/60,
				c.P[c.NumNodes*nc+j]/(norm*comp.Yi0))
		}

		for i := 0; i <= c.NumNodes; i++ {
			fmt.Fprintf(o.column, "%v %v %v", float64(i)*c.dx, c.V[i], c.Pt[i])
			for j, comp := range c.Components {
				off := i*nc + j
				fmt.Fprintf(o.column, " %v %v %v %v %v %v",
					c.Q[off], c.Qeq[off], c.P[off],
					c.P[off]/(c.Pt[i]*comp.Yi0), c.Dpdt[i], c.Dqdt[off])
			}
			fmt.Fprintln(o.column)
		}
		fmt.Fprint(o.column, "\n\n")

		if o.derived != nil {
			for i := 0; i <= c.NumNodes; i++ {
				vars := o.nodeVariables(c, i)
				fmt.Fprintf(o.derived, "%v", float64(i)*c.dx)
				for _, name := range o.derivedNames {
					result, err := o.expressions[name].Evaluate(vars)
					if err != nil {
						return fmt.Errorf("fixbed: evaluating output variable %q: %v", name, err)
					}
					fmt.Fprintf(o.derived, " %v", result)
				}
				fmt.Fprintln(o.derived)
			}
			fmt.Fprint(o.derived, "\n\n")
		}
		return nil
	}
}

// Close flushes and closes all output files.
func (o *Outputter) Close() error {
	for _, w := range o.breakthrough {
		if err := w.Flush(); err != nil {
			return fmt.Errorf("fixbed: flushing output: %w", err)
		}
	}
	for _, w := range []*bufio.Writer{o.column, o.derived} {
		if w != nil {
			if err := w.Flush(); err != nil {
				return fmt.Errorf("fixbed: flushing output: %w", err)
			}
		}
	}
	for _, f := range o.files {
		if err := f.Close(); err != nil {
			return fmt.Errorf("fixbed: closing output: %w", err)
		}
	}
	return nil
}
