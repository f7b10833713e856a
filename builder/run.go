package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/registry"
	"github.com/notargets/cutcell/types"
)

var tracer = otel.Tracer("github.com/notargets/cutcell/builder")

// Run executes the full setup pass of one partition and returns its committed registry.
// Every partition of a run must call Run with the same options. A consistency violation aborts
// the pass and is returned as an error wrapping fault.ErrConsistency or fault.ErrNotImplemented.
func Run(ctx context.Context, sc SetupContext, opts Options) (reg *registry.Registry, err error) {
	if err = sc.validate(); err != nil {
		return nil, err
	}
	var (
		c      = sc.communicator()
		runID  = opts.RunID
		start  = time.Now()
		logger = sc.logger()
	)
	if runID == "" {
		runID = uuid.NewString()
	}
	logger = logger.With("run_id", runID, "rank", c.Rank())
	ctx, span := tracer.Start(ctx, "builder.Run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("rank", c.Rank()),
		attribute.Int("partitions", c.Size()),
	))
	defer span.End()
	defer func() {
		if err != nil {
			reg = nil
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	defer fault.Recover(&err)

	reg = registry.New(sc.Cut.NumBulkPhases())
	stage := func(name string, fn func(ctx context.Context) error) error {
		sctx, sp := tracer.Start(ctx, "setup."+name)
		defer sp.End()
		t0 := time.Now()
		err := fn(sctx)
		sc.Metrics.ObserveStage(name, t0)
		if err != nil {
			sp.RecordError(err)
			sp.SetStatus(codes.Error, err.Error())
		}
		return err
	}

	var (
		vi     *VolumeIndex
		nFacet int
	)
	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"declare", func(context.Context) error {
			nFacet = DeclareSets(sc, reg)
			logger.Debug("declared sets", "phases", reg.NumPhases(),
				"block_sets", reg.NumSets(types.BlockSet),
				"side_sets", reg.NumSets(types.SideSet),
				"double_side_sets", reg.NumSets(types.DoubleSideSet))
			return nil
		}},
		{"volume", func(context.Context) error {
			var counts BuildCounts
			vi, counts = BuildVolumeClusters(sc, reg)
			if opts.CheckInvariants {
				for i := 0; i < reg.NumClusters(types.BlockSet); i++ {
					vc := reg.Volume(types.ClusterIndex(i))
					if verr := vc.Validate(sc.Cut); verr != nil {
						fault.Panicf("%v", verr)
					}
				}
			}
			reg.CommitAll(types.BlockSet)
			sc.Metrics.AddClusters(types.BlockSet, true, counts.Trivial)
			sc.Metrics.AddClusters(types.BlockSet, false, counts.Cut)
			logger.Debug("built volume clusters", "trivial", counts.Trivial, "cut", counts.Cut)
			return nil
		}},
		{"side", func(context.Context) error {
			counts := BuildSideClusters(sc, reg, vi)
			// facet splits come first among the side sets, the interface sets follow
			for ord := 0; ord < nFacet; ord++ {
				reg.Commit(types.SideSet, types.SetOrdinal(ord))
			}
			sc.Metrics.AddClusters(types.SideSet, true, counts.Trivial)
			sc.Metrics.AddClusters(types.SideSet, false, counts.Cut)
			logger.Debug("built side clusters", "trivial", counts.Trivial, "cut", counts.Cut)
			return nil
		}},
		{"double_side", func(context.Context) error {
			counts, swapped := BuildDoubleSideClusters(sc, reg, vi)
			reg.CommitAll(types.DoubleSideSet)
			sc.Metrics.AddClusters(types.SideSet, false, 2*counts.Cut)
			sc.Metrics.AddClusters(types.DoubleSideSet, false, counts.Cut)
			logger.Debug("built double-side clusters", "pairs", counts.Cut, "swapped", swapped)
			return nil
		}},
		{"interface", func(context.Context) error {
			derived := reg.DeriveInterfaceSideSets()
			reg.CommitAll(types.SideSet)
			if opts.ReversedDoubleSides {
				for i := 0; i < reg.NumPhases(); i++ {
					for j := i + 1; j < reg.NumPhases(); j++ {
						reg.CreateReversedDoubleSideSet(types.PhaseIndex(i), types.PhaseIndex(j))
					}
				}
			}
			logger.Debug("derived interface side sets", "sets", len(derived), "reversed", opts.ReversedDoubleSides)
			return nil
		}},
		{"deactivate", func(ctx context.Context) error {
			if !opts.DeactivateEmptySets {
				return nil
			}
			removed, err := reg.DeactivateEmptySets(ctx, c)
			if err != nil {
				return err
			}
			for _, cat := range types.Categories() {
				sc.Metrics.AddDeactivated(cat, len(removed[cat]))
			}
			logger.Debug("deactivated empty sets",
				"block_sets", len(removed[types.BlockSet]),
				"side_sets", len(removed[types.SideSet]),
				"double_side_sets", len(removed[types.DoubleSideSet]))
			return nil
		}},
		{"derive", func(context.Context) error {
			return deriveSets(sc, reg, opts.Derived)
		}},
		{"ids", func(ctx context.Context) error {
			if !opts.AssignGlobalIDs {
				return nil
			}
			totals, err := reg.AssignGlobalIDs(ctx, c)
			if err != nil {
				return err
			}
			logger.Debug("assigned global ids",
				"volume", totals[types.BlockSet],
				"side", totals[types.SideSet],
				"double_side", totals[types.DoubleSideSet])
			return nil
		}},
	}
	for _, st := range steps {
		if err = stage(st.name, st.fn); err != nil {
			return nil, fmt.Errorf("setup stage %s: %w", st.name, err)
		}
	}

	sc.Metrics.IncrementRuns()
	sc.Metrics.ObserveStage("total", start)
	logger.Info("setup complete",
		"state", reg.State().String(),
		"volume_clusters", reg.NumClusters(types.BlockSet),
		"side_clusters", reg.NumClusters(types.SideSet),
		"double_side_clusters", reg.NumClusters(types.DoubleSideSet),
		"elapsed", time.Since(start))
	return reg, nil
}

func deriveSets(sc SetupContext, reg *registry.Registry, derived []DerivedSet) error {
	for _, d := range derived {
		switch d.Kind {
		case SideFromDoubleSide:
			ord, ok := reg.Ordinal(types.DoubleSideSet, d.Source)
			if !ok {
				return fmt.Errorf("derived set %q: no double-side set %q", d.Name, d.Source)
			}
			reg.DeriveSideSetFromDoubleSideSet(ord, d.Name)
		case BlockFromSide:
			ord, ok := reg.Ordinal(types.SideSet, d.Source)
			if !ok {
				return fmt.Errorf("derived set %q: no side set %q", d.Name, d.Source)
			}
			reg.DeriveBlockSetFromSideSet(ord, d.Name, sc.Mesh)
		default:
			return fmt.Errorf("derived set %q: unknown kind %q", d.Name, d.Kind)
		}
	}
	return nil
}
