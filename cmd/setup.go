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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/cutcell/InputParameters"
	"github.com/notargets/cutcell/builder"
	"github.com/notargets/cutcell/comm"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/metrics"
	"github.com/notargets/cutcell/registry"
)

type SetupModel struct {
	ICFile      string
	Partitions  int    // Overrides the input file when positive
	Partitioner string // Overrides the input file when set
	Profile     string
	Metrics     bool
	Verbose     bool
}

const exampleFile = `
########################################
Title: "Two quads, one cut"
BulkPhases: 2
Partitions: 1
Partitioner: block # Can be "roundrobin" or "metis"
Vertices: [[0,0,0], [0,1,0], [1,0,0], [1,1,0], [2,0,0], [2,1,0], [1.5,0,0], [1.5,1,0]]
Elements:
  - {Type: Quad, Vertices: [0, 2, 3, 1], Phase: 0, Tag: 1}
  - {Type: Quad, Vertices: [2, 4, 5, 3], Phase: 0, Tag: 1}
BlockSets:
  - {Name: fluid, Elements: [0, 1]}
SideSets:
  - {Name: bottom, Sides: [[0, 0], [1, 0]]}
Cuts:
  - Element: 1
    Cells:
      - {Type: Quad, Vertices: [2, 6, 7, 3]}
      - {Type: Quad, Vertices: [6, 4, 5, 7]}
    Subphases:
      - {Phase: 0, Cells: [0]}
      - {Phase: 1, Cells: [1]}
    ParentFacets: {0: [[0, 0], [1, 0]], 1: [[1, 1]], 2: [[0, 2], [1, 2]], 3: [[0, 3]]}
    Interfaces:
      - {Subphases: [0, 1], Cells: [0, 1], Sides: [1, 3]}
DeactivateEmptySets: true
AssignGlobalIDs: true
########################################
`

// SetupCmd represents the setup command
var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Build the cluster registry of every partition from a cut mesh input file",
	Long: `Build the cluster registry of every partition from a cut mesh input file.
All partitions run in this process, each on its own goroutine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sm := &SetupModel{
			ICFile:      viper.GetString("inputConditionsFile"),
			Partitions:  viper.GetInt("partitions"),
			Partitioner: viper.GetString("partitioner"),
			Profile:     viper.GetString("profile"),
			Metrics:     viper.GetBool("metrics"),
			Verbose:     viper.GetBool("verbose"),
		}
		ip, err := processInput(sm, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		switch sm.Profile {
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
		case "":
		default:
			return fmt.Errorf("unknown profile %q, use cpu or mem", sm.Profile)
		}
		if _, err = RunSetup(cmd.Context(), sm, ip, cmd.OutOrStdout()); err != nil {
			slog.Error("setup failed", "input", sm.ICFile, "err", err)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(SetupCmd)
	SetupCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file with the cut mesh and setup options")
	SetupCmd.Flags().IntP("partitions", "n", 0, "number of partitions, overrides the input file")
	SetupCmd.Flags().String("partitioner", "", "block, roundrobin or metis, overrides the input file")
	SetupCmd.Flags().Bool("deactivate", false, "remove sets that are empty on every partition")
	SetupCmd.Flags().Bool("ids", false, "assign global cluster ids")
	SetupCmd.Flags().Bool("reversed", false, "create the reversed double-side sets")
	SetupCmd.Flags().Bool("check", false, "check cluster invariants while building")
	SetupCmd.Flags().String("profile", "", "write a cpu or mem profile to the current directory")
	SetupCmd.Flags().Bool("metrics", false, "print the setup metrics after the run")
	for _, name := range []string{"inputConditionsFile", "partitions", "partitioner", "deactivate", "ids",
		"reversed", "check", "profile", "metrics"} {
		_ = viper.BindPFlag(name, SetupCmd.Flags().Lookup(name))
	}
}

func processInput(sm *SetupModel, w io.Writer) (ip *InputParameters.CutMeshInput, err error) {
	if len(sm.ICFile) == 0 {
		fmt.Fprintf(w, "Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input file (-I, --inputConditionsFile)")
	}
	var data []byte
	if data, err = os.ReadFile(sm.ICFile); err != nil {
		return nil, err
	}
	ip = &InputParameters.CutMeshInput{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", sm.ICFile, err)
	}
	if sm.Partitioner != "" {
		ip.Partitioner = sm.Partitioner
	}
	if ip.MeshFile != "" && !filepath.IsAbs(ip.MeshFile) {
		ip.MeshFile = filepath.Join(filepath.Dir(sm.ICFile), ip.MeshFile)
	}
	return ip, nil
}

// setupOptions applies the flags, environment and config file settings on top of the input file
func setupOptions(ip *InputParameters.CutMeshInput) builder.Options {
	opts := ip.Options()
	if viper.IsSet("deactivate") {
		opts.DeactivateEmptySets = viper.GetBool("deactivate")
	}
	if viper.IsSet("ids") {
		opts.AssignGlobalIDs = viper.GetBool("ids")
	}
	if viper.IsSet("reversed") {
		opts.ReversedDoubleSides = viper.GetBool("reversed")
	}
	opts.CheckInvariants = viper.GetBool("check")
	return opts
}

// RunSetup builds the registries of all partitions and prints one memory report per partition
func RunSetup(ctx context.Context, sm *SetupModel, ip *InputParameters.CutMeshInput,
	w io.Writer) (regs []*registry.Registry, err error) {
	defer fault.Recover(&err)
	if ctx == nil {
		ctx = context.Background()
	}
	level := slog.LevelInfo
	if sm.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ip.Print(w)

	prob, err := ip.Build(sm.Partitions, logger)
	if err != nil {
		return nil, err
	}
	promReg := prometheus.NewRegistry()
	mc := metrics.New(promReg)
	opts := setupOptions(ip)

	regs = make([]*registry.Registry, prob.Partitions)
	err = comm.RunWorld(ctx, prob.Partitions, func(ctx context.Context, c comm.Communicator) error {
		reg, err := builder.Run(ctx, prob.Context(c, logger, mc), opts)
		regs[c.Rank()] = reg
		return err
	})
	if err != nil {
		return nil, err
	}
	for rank, reg := range regs {
		fmt.Fprintf(w, "\nPartition %d of %d", rank, prob.Partitions)
		reg.MemoryReport().Print(w)
	}
	if sm.Metrics {
		if err = printMetrics(promReg, w); err != nil {
			return nil, err
		}
	}
	return regs, nil
}

func printMetrics(g prometheus.Gatherer, w io.Writer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	for _, mf := range mfs {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
