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
	"os"
	"time"

	"github.com/adsorptionmodel/fixbed"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Run runs a breakthrough simulation with the given configuration,
// writing breakthrough curves, column profiles, and derived output
// variables to outputDir.
//
// OutputVariables maps derived output names to expressions over the
// per-node model variables.
//
// If plotCurves is true, the breakthrough curves are rendered to
// plotFile after the simulation finishes.
//
// If httpPort is not empty, a live column monitor is served at that
// port for the duration of the simulation.
func Run(cfg *viper.Viper, outputDir string, outputVariables map[string]string,
	plotCurves bool, plotFile, httpPort string) error {
	startTime := time.Now()

	c, err := ColumnFromConfig(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(os.ExpandEnv(outputDir), 0755); err != nil {
		return fmt.Errorf("fixbed: problem creating output directory: %v", err)
	}

	logrus.Debug("Parsing output variable expressions...")
	o, err := fixbed.NewOutputter(os.ExpandEnv(outputDir), outputVariables, nil)
	if err != nil {
		return err
	}

	c.InitFuncs = []fixbed.ColumnManipulator{
		fixbed.InitColumn(),
		o.CheckOutputVars(),
		o.Init(),
	}
	c.RunFuncs = []fixbed.ColumnManipulator{
		fixbed.SSPRK3(),
		o.Output(),
		fixbed.Log(os.Stdout),
		fixbed.BreakthroughConvergenceCheck(os.Stdout),
	}

	var recorder *breakthroughRecorder
	if plotCurves {
		recorder = newBreakthroughRecorder(c)
		c.RunFuncs = append(c.RunFuncs, recorder.Record())
	}
	if httpPort != "" {
		monitor := fixbed.NewColumnMonitor()
		monitor.Listen(":" + httpPort)
		logrus.WithField("port", httpPort).Info("Serving live column monitor")
		c.RunFuncs = append(c.RunFuncs, monitor.Broadcast())
	}

	logrus.WithField("name", c.DisplayName).Info("Initializing column")
	if err := c.Init(); err != nil {
		return err
	}
	fmt.Print(c.String())

	logrus.Info("Running simulation...")
	if err := c.Run(); err != nil {
		return err
	}
	if err := o.Close(); err != nil {
		return err
	}

	if plotCurves {
		if err := recorder.WritePlot(os.ExpandEnv(plotFile)); err != nil {
			return err
		}
		logrus.WithField("file", plotFile).Info("Wrote breakthrough plot")
	}

	logrus.WithFields(logrus.Fields{
		"steps":   c.Step,
		"elapsed": time.Since(startTime).Round(time.Millisecond).String(),
	}).Info("Simulation finished")
	return nil
}
