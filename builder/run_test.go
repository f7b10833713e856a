package builder

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/cutcell/comm"
	"github.com/notargets/cutcell/enrich"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/metrics"
	"github.com/notargets/cutcell/registry"
	"github.com/notargets/cutcell/types"
)

func TestRun_SingleInterface(t *testing.T) {
	fx := newSetupFixture(t, 1, 2, 1, []types.PhaseIndex{0}, map[int][]types.PhaseIndex{0: {0, 1}})
	reg, err := Run(context.Background(), fx.context(0, nil), Options{CheckInvariants: true})
	require.NoError(t, err)
	assert.Equal(t, registry.Committed, reg.State())

	dbl := mustSet(t, reg, types.DoubleSideSet, "dbl_iside_p0_0_p1_1")
	require.Len(t, dbl.Members, 1)
	dc := reg.DoubleSide(dbl.Members[0])
	assert.Equal(t, types.PhaseIndex(0), reg.Side(dc.Left).Phase())
	assert.Equal(t, types.PhaseIndex(1), reg.Side(dc.Right).Phase())

	fwd := mustSet(t, reg, types.SideSet, "iside_b0_0_b1_1")
	rev := mustSet(t, reg, types.SideSet, "iside_b0_1_b1_0")
	assert.Equal(t, []types.ClusterIndex{dc.Left}, fwd.Members)
	assert.Equal(t, []types.ClusterIndex{dc.Right}, rev.Members)
	// bottom and top per strip, plus the two interface sides
	assert.Equal(t, 6, reg.NumClusters(types.SideSet))

	for _, cat := range types.Categories() {
		for p := types.PhaseIndex(0); p < 2; p++ {
			for _, ord := range reg.SetsByColor(cat, p) {
				assert.True(t, reg.SetByOrdinal(cat, ord).HasColor(p))
			}
		}
	}
	assert.Equal(t, []types.SetOrdinal{0}, reg.SetsByColor(types.DoubleSideSet, 1))
}

func TestRun_Options(t *testing.T) {
	fx := newSetupFixture(t, 3, 2, 1, []types.PhaseIndex{0, 0, 1}, map[int][]types.PhaseIndex{1: {0, 1}})
	col := metrics.New(prometheus.NewRegistry())
	sc := fx.context(0, comm.Solo{})
	sc.Metrics = col
	reg, err := Run(context.Background(), sc, Options{
		RunID:               "test-run",
		DeactivateEmptySets: true,
		AssignGlobalIDs:     true,
		ReversedDoubleSides: true,
		Derived: []DerivedSet{
			{Kind: SideFromDoubleSide, Source: "dbl_iside_p0_0_p1_1", Name: "interface"},
			{Kind: BlockFromSide, Source: "interface", Name: "interface_cells"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, registry.Revised, reg.State())

	assert.Equal(t, []string{"fluid_c_p0", "fluid_n_p0", "fluid_c_p1", "fluid_n_p1", "interface_cells"},
		setNames(reg, types.BlockSet))
	assert.Equal(t, []string{
		"bottom_c_p0", "bottom_n_p0", "bottom_c_p1", "bottom_n_p1",
		"top_c_p0", "top_n_p0", "top_c_p1", "top_n_p1",
		"left_n_p0", "right_n_p1",
		"iside_b0_0_b1_1", "iside_b0_1_b1_0",
		"interface",
	}, setNames(reg, types.SideSet))
	assert.Equal(t, []string{"dbl_iside_p0_0_p1_1", "dbl_iside_p0_1_p1_0"}, setNames(reg, types.DoubleSideSet))

	cells := reg.VolumeClusters(reg.MustOrdinal(types.BlockSet, "interface_cells"))
	require.Len(t, cells, 1)
	assert.Equal(t, 1, cells[0].Base())
	assert.Equal(t, []types.PhaseIndex{0, 1}, mustSet(t, reg, types.BlockSet, "interface_cells").Colors)

	for i := 0; i < reg.NumClusters(types.BlockSet); i++ {
		assert.Equal(t, int64(i), reg.Volume(types.ClusterIndex(i)).GlobalID)
	}
	for i := 0; i < reg.NumClusters(types.DoubleSideSet); i++ {
		assert.Equal(t, int64(i), reg.DoubleSide(types.ClusterIndex(i)).GlobalID)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(col.SetupRuns))
	assert.Equal(t, 2.0, testutil.ToFloat64(col.ClustersBuilt.WithLabelValues("BlockSet", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(col.ClustersBuilt.WithLabelValues("BlockSet", "false")))
	assert.Equal(t, 6.0, testutil.ToFloat64(col.SetsDeactivated.WithLabelValues("SideSet")))
}

func TestRun_Faults(t *testing.T) {
	fx := newSetupFixture(t, 1, 2, 1, []types.PhaseIndex{0}, map[int][]types.PhaseIndex{0: {0, 1}})
	var ec enrich.Cells
	ec.Append(0, 0, 42, 0)
	sc := fx.context(0, nil)
	sc.Enriched = &ec
	reg, err := Run(context.Background(), sc, Options{})
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, fault.ErrConsistency)

	_, err = Run(context.Background(), fx.context(0, nil), Options{
		Derived: []DerivedSet{{Kind: SideFromDoubleSide, Source: "missing", Name: "x"}},
	})
	assert.ErrorContains(t, err, `no double-side set "missing"`)

	_, err = Run(context.Background(), fx.context(0, nil), Options{
		Derived: []DerivedSet{{Kind: "bogus", Source: "bottom_c_p0", Name: "x"}},
	})
	assert.ErrorContains(t, err, "unknown kind")

	_, err = Run(context.Background(), fx.context(1, comm.Solo{}), Options{})
	assert.ErrorContains(t, err, "does not match mesh partition")

	_, err = Run(context.Background(), SetupContext{}, Options{})
	assert.Error(t, err)
}

func TestRun_AcrossPartitions(t *testing.T) {
	var (
		phases = []types.PhaseIndex{0, 0, 1, 1}
		cuts   = map[int][]types.PhaseIndex{1: {0, 1}, 2: {1, 0}}
		opts   = Options{RunID: "spmd", DeactivateEmptySets: true, AssignGlobalIDs: true}
	)
	solo, err := Run(context.Background(), newSetupFixture(t, 4, 2, 1, phases, cuts).context(0, nil), opts)
	require.NoError(t, err)

	const n = 2
	fx := newSetupFixture(t, 4, 2, n, phases, cuts)
	col := metrics.New(prometheus.NewRegistry())
	var (
		mu   sync.Mutex
		regs = make([]*registry.Registry, n)
	)
	err = comm.RunWorld(context.Background(), n, func(ctx context.Context, c comm.Communicator) error {
		sc := fx.context(c.Rank(), c)
		sc.Metrics = col
		reg, err := Run(ctx, sc, opts)
		if err != nil {
			return err
		}
		mu.Lock()
		regs[c.Rank()] = reg
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(col.SetupRuns))

	// the same sets survive everywhere, in the same order, even where they are locally empty
	for _, cat := range types.Categories() {
		assert.Equal(t, setNames(solo, cat), setNames(regs[0], cat), cat)
		assert.Equal(t, setNames(solo, cat), setNames(regs[1], cat), cat)
	}
	assert.Empty(t, mustSet(t, regs[1], types.SideSet, "left_n_p0").Members)
	assert.Len(t, mustSet(t, regs[0], types.SideSet, "left_n_p0").Members, 1)

	// global ids tile [0, total) over the partitions
	for _, cat := range types.Categories() {
		var ids []int
		for _, reg := range regs {
			for i := 0; i < reg.NumClusters(cat); i++ {
				switch cat {
				case types.BlockSet:
					ids = append(ids, int(reg.Volume(types.ClusterIndex(i)).GlobalID))
				case types.SideSet:
					ids = append(ids, int(reg.Side(types.ClusterIndex(i)).GlobalID))
				case types.DoubleSideSet:
					ids = append(ids, int(reg.DoubleSide(types.ClusterIndex(i)).GlobalID))
				}
			}
		}
		sort.Ints(ids)
		require.Len(t, ids, solo.NumClusters(cat), cat)
		for i, id := range ids {
			assert.Equal(t, i, id, cat)
		}
	}
}
