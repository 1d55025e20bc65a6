/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/gofoam/InputParameters"
	"github.com/notargets/gofoam/foam"
	"github.com/notargets/gofoam/metrics"
)

// MetricCmd represents the metric command
var MetricCmd = &cobra.Command{
	Use:   "metric <case_dir> <metric_name>",
	Short: "Compute one scalar metric from a simulation case",
	Long: `
Computes a field-based scalar metric from an OpenFOAM case directory and
prints it on stdout. The case may be reconstructed or decomposed. With no
--time the latest written time is used; otherwise the nearest available
time, with a warning when the mismatch is more than rounding.

Available metrics: ` + fmt.Sprint(metrics.Names()),
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		var requestedTime *float64
		if cmd.Flags().Changed("time") {
			t, err := cmd.Flags().GetFloat64("time")
			if err != nil {
				log.Errorf("Error computing metric: %v", err)
				os.Exit(1)
			}
			requestedTime = &t
		}
		paramsFile, _ := cmd.Flags().GetString("parameters")
		if err := runMetric(args[0], args[1], requestedTime, paramsFile); err != nil {
			log.Errorf("Error computing metric: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(MetricCmd)
	MetricCmd.Flags().Float64P("time", "t", 0, "simulation time to evaluate at (default: latest)")
	MetricCmd.Flags().StringP("parameters", "p", "", "YAML file overriding metric parameters like:\n\t- FuelField\n\t- OutletPatch\n\t- InletTemperature")
	MetricCmd.Flags().Bool("profile", false, "write a CPU profile of the run to the current directory")
}

func runMetric(caseDir, metricName string, requestedTime *float64, paramsFile string) error {
	eval, ok := metrics.Registry[metricName]
	if !ok {
		return fmt.Errorf("unknown metric: %s, available: %v", metricName, metrics.Names())
	}

	params := InputParameters.DefaultMetricParameters()
	if len(paramsFile) != 0 {
		data, err := os.ReadFile(paramsFile)
		if err != nil {
			return err
		}
		if err = params.Parse(data); err != nil {
			return fmt.Errorf("parsing %s: %w", paramsFile, err)
		}
	}
	if log.IsLevelEnabled(log.DebugLevel) {
		params.Print()
	}

	c, err := foam.OpenCase(caseDir)
	if err != nil {
		return err
	}
	useTime, mismatch := c.SelectTime(requestedTime)
	if mismatch > foam.TimeMatchTolerance {
		log.Warnf("Requested time %v not available. Using closest time %v", *requestedTime, useTime)
	}

	snap, err := c.Load(useTime)
	if err != nil {
		return err
	}
	value, err := eval(snap, caseDir, params)
	if err != nil {
		return err
	}

	// The metric value is the only line ever written to stdout.
	fmt.Println(value)
	return nil
}
