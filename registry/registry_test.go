package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/cutcell/cluster"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

func TestRegisterNames(t *testing.T) {
	reg := New(2)
	assert.Equal(t, Empty, reg.State())
	ords := reg.RegisterNames(types.BlockSet, []string{"A_c_p0", "A_n_p0"})
	assert.Equal(t, []types.SetOrdinal{0, 1}, ords)
	assert.Equal(t, Declared, reg.State())

	// same name in another category is a different set
	assert.Equal(t, []types.SetOrdinal{0}, reg.RegisterNames(types.SideSet, []string{"A_c_p0"}))

	ord, ok := reg.Ordinal(types.BlockSet, "A_n_p0")
	assert.True(t, ok)
	assert.Equal(t, types.SetOrdinal(1), ord)
	_, ok = reg.SetByName(types.DoubleSideSet, "A_n_p0")
	assert.False(t, ok)

	requireFault(t, fault.ErrConsistency, func() {
		reg.RegisterNames(types.BlockSet, []string{"B", "A_c_p0"})
	})
	requireFault(t, fault.ErrConsistency, func() { reg.SetByOrdinal(types.BlockSet, 7) })
	requireFault(t, fault.ErrConsistency, func() { reg.MustOrdinal(types.BlockSet, "nope") })
}

func TestDuplicateNameMessage(t *testing.T) {
	reg := New(1)
	reg.RegisterNames(types.SideSet, []string{"top_n_p0"})
	assert.PanicsWithError(t, `consistency violation: duplicate SideSet name "top_n_p0"`, func() {
		reg.RegisterNames(types.SideSet, []string{"top_n_p0"})
	})
}

func TestSetColorOnce(t *testing.T) {
	reg := New(3)
	reg.RegisterNames(types.DoubleSideSet, []string{"dbl_iside_p0_0_p1_2"})
	reg.SetColor(types.DoubleSideSet, 0, 0, 2)
	assert.Equal(t, []types.PhaseIndex{0, 2}, reg.SetByOrdinal(types.DoubleSideSet, 0).Colors)
	requireFault(t, fault.ErrConsistency, func() { reg.SetColor(types.DoubleSideSet, 0, 1) })

	reg.RegisterNames(types.BlockSet, []string{"a", "b"})
	requireFault(t, fault.ErrConsistency, func() { reg.SetColor(types.BlockSet, 0, 3) })
	requireFault(t, fault.ErrConsistency, func() { reg.SetColor(types.BlockSet, 1) })
}

func TestCommitOrdering(t *testing.T) {
	m := mesh.NewQuadStrip(1)
	reg := New(1)
	reg.RegisterNames(types.BlockSet, []string{"a", "b", "c"})
	idx := reg.AddVolumeCluster(cluster.NewTrivialVolume(newIPCell(0, 0, 0), &m.Elements[0]))
	assert.Equal(t, types.ClusterIndex(0), idx)
	reg.AddMember(types.BlockSet, 1, idx)
	assert.Equal(t, Populated, reg.State())

	requireFault(t, fault.ErrConsistency, func() { reg.Commit(types.BlockSet, 1) })
	reg.Commit(types.BlockSet, 0)
	reg.Commit(types.BlockSet, 1)
	assert.True(t, reg.SetByOrdinal(types.BlockSet, 1).Committed())
	assert.False(t, reg.SetByOrdinal(types.BlockSet, 2).Committed())
	requireFault(t, fault.ErrConsistency, func() { reg.AddMember(types.BlockSet, 1, idx) })
	requireFault(t, fault.ErrConsistency, func() { reg.Commit(types.BlockSet, 0) })
	requireFault(t, fault.ErrConsistency, func() { reg.AddMember(types.BlockSet, 2, 5) })

	reg.CommitAll(types.BlockSet)
	assert.Equal(t, 3, reg.NumCommitted(types.BlockSet))
	assert.Equal(t, Committed, reg.State())

	vcs := reg.VolumeClusters(1)
	require.Len(t, vcs, 1)
	assert.True(t, vcs[0].Trivial)
	assert.Equal(t, 0, vcs[0].Base())
}

func TestArenaRanges(t *testing.T) {
	reg := New(1)
	requireFault(t, fault.ErrConsistency, func() { reg.Volume(0) })
	requireFault(t, fault.ErrConsistency, func() { reg.Side(-1) })
	requireFault(t, fault.ErrConsistency, func() {
		reg.AddDoubleSideCluster(&cluster.DoubleSideCluster{Left: 0, Right: 1})
	})
	requireFault(t, fault.ErrConsistency, func() { New(0) })
}

func TestColorIndexRoundTrip(t *testing.T) {
	const nPhases = 3
	reg := New(nPhases)
	names, colors := SplitSetNames("fluid", nPhases)
	ords := reg.RegisterNames(types.SideSet, names)
	for i, ord := range ords {
		reg.SetColor(types.SideSet, ord, colors[i])
	}
	inames, pairs := InterfaceSideSetNames(nPhases)
	for i, ord := range reg.RegisterPairSets(types.SideSet, inames, pairs) {
		reg.SetColor(types.SideSet, ord, pairs[i].Left)
	}
	dnames, keys := DoubleSideSetNames(nPhases)
	for i, ord := range reg.RegisterPairSets(types.DoubleSideSet, dnames, keys) {
		reg.SetColor(types.DoubleSideSet, ord, keys[i].Left, keys[i].Right)
	}
	// registration invalidates the index
	requireFault(t, fault.ErrConsistency, func() { reg.SetsByColor(types.SideSet, 0) })

	for _, cat := range types.Categories() {
		reg.CommitAll(cat)
		assert.True(t, reg.ColorIndexValid(cat))
		for p := types.PhaseIndex(0); p < nPhases; p++ {
			got := reg.SetsByColor(cat, p)
			var want []types.SetOrdinal
			for _, s := range reg.Sets(cat) {
				if s.HasColor(p) {
					want = append(want, s.Ordinal)
				}
			}
			assert.Equal(t, want, got, "%s phase %d", cat, p)
		}
	}
	assert.Equal(t, []types.SetOrdinal{0, 1, 6, 7}, reg.SetsByColor(types.SideSet, 0))
	assert.Equal(t, []types.SetOrdinal{1, 2}, reg.SetsByColor(types.DoubleSideSet, 2))
	requireFault(t, fault.ErrConsistency, func() { reg.SetsByColor(types.SideSet, nPhases) })
}

func TestColorIndexEmpty(t *testing.T) {
	reg := New(2)
	reg.RebuildColorIndex(types.BlockSet)
	assert.Empty(t, reg.SetsByColor(types.BlockSet, 1))
	reg.RegisterNames(types.BlockSet, []string{"uncolored"})
	reg.CommitAll(types.BlockSet)
	assert.Empty(t, reg.SetsByColor(types.BlockSet, 0))
}
