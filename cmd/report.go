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
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/cutcell/InputParameters"
	"github.com/notargets/cutcell/mesh/metispart"
)

// ReportCmd represents the report command
var ReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print mesh, cut and partition statistics of an input file without running setup",
	RunE: func(cmd *cobra.Command, args []string) error {
		sm := &SetupModel{
			ICFile:      viper.GetString("report.inputConditionsFile"),
			Partitions:  viper.GetInt("report.partitions"),
			Partitioner: viper.GetString("report.partitioner"),
		}
		ip, err := processInput(sm, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return PrintReport(sm, ip, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(ReportCmd)
	ReportCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file with the cut mesh")
	ReportCmd.Flags().IntP("partitions", "n", 0, "number of partitions, overrides the input file")
	ReportCmd.Flags().String("partitioner", "", "block, roundrobin or metis, overrides the input file")
	for _, name := range []string{"inputConditionsFile", "partitions", "partitioner"} {
		_ = viper.BindPFlag("report."+name, ReportCmd.Flags().Lookup(name))
	}
}

func PrintReport(sm *SetupModel, ip *InputParameters.CutMeshInput, w io.Writer) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	prob, err := ip.Build(sm.Partitions, logger)
	if err != nil {
		return err
	}
	ip.Print(w)
	prob.Mesh.PrintStatistics(w)
	box := prob.Mesh.BoundingBox()
	fmt.Fprintf(w, "  Bounding box: [%g,%g,%g] - [%g,%g,%g]\n",
		box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)

	fmt.Fprintf(w, "Cut Topology:\n")
	fmt.Fprintf(w, "  Cut elements: %d\n", len(prob.Cut.CutElements()))
	fmt.Fprintf(w, "  Subphases: %d\n", prob.Cut.NumSubphases())
	fmt.Fprintf(w, "  Interpolation cells: %d\n", len(prob.Enriched.Cells()))

	stats, cutFaces, imbalance := metispart.Analyze(prob.Mesh, prob.Partitions)
	fmt.Fprintf(w, "Partitions (%s): %d, cut faces %d, imbalance %.1f%%\n",
		ip.Partitioner, prob.Partitions, cutFaces, imbalance*100)
	boundary := prob.Mesh.GetPartitionBoundaryFaces()
	for _, s := range stats {
		nbs := make([]int, 0, len(s.Neighbors))
		for nb := range s.Neighbors {
			nbs = append(nbs, nb)
		}
		sort.Ints(nbs)
		fmt.Fprintf(w, "  [%d] elements %d load %d neighbors %v boundary faces %d\n",
			s.ID, s.NumElements, s.ComputeLoad, nbs, len(boundary[s.ID]))
	}
	return nil
}
