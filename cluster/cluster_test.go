package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/cutcell/cuttopo"
	"github.com/notargets/cutcell/enrich"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

func TestUniqueVertices(t *testing.T) {
	assert.Equal(t, []int{1, 2, 5}, UniqueVertices([]int{5, 1, 2, 5, 1}))
	assert.Empty(t, UniqueVertices(nil))
	in := []int{3, 1}
	UniqueVertices(in)
	assert.Equal(t, []int{3, 1}, in)
}

func TestVolumeClusters(t *testing.T) {
	m := mesh.NewQuadStrip(2)
	topo := cuttopo.NewTopology(2, m.NumElements)
	cm := topo.MustAdd(cuttopo.SplitQuadStrips(m, 1, 0, 1))

	trivial := NewTrivialVolume(&enrich.InterpolationCell{Base: 0}, &m.Elements[0])
	assert.True(t, trivial.Trivial)
	assert.Equal(t, []int{0, 1, 2, 3}, trivial.Vertices)
	assert.Equal(t, int64(-1), trivial.GlobalID)
	require.NoError(t, trivial.Validate(topo))

	ip0 := &enrich.InterpolationCell{Base: 1, BulkPhase: 0, Subphase: cm.Subphases[0].ID}
	ip1 := &enrich.InterpolationCell{Base: 1, BulkPhase: 1, Subphase: cm.Subphases[1].ID}
	a, b := NewCutVolume(ip0, cm, 0), NewCutVolume(ip1, cm, 1)
	require.NoError(t, a.Validate(topo))
	require.NoError(t, b.Validate(topo))
	assert.False(t, a.Trivial)
	assert.Equal(t, a.Primary, b.Void)
	assert.Equal(t, a.Void, b.Primary)
	assert.Equal(t, cm.Vertices(), a.Vertices)
	assert.Equal(t, types.PhaseIndex(1), b.Phase())
	assert.Equal(t, 1, b.Base())

	broken := NewCutVolume(ip0, cm, 0)
	broken.Void = append(broken.Void, broken.Primary[0])
	assert.Error(t, broken.Validate(topo))
	broken.Void = nil
	assert.Error(t, broken.Validate(topo))

	trivial.Void = a.Primary
	assert.Error(t, trivial.Validate(topo))
	assert.Error(t, (&VolumeCluster{InterpCell: &enrich.InterpolationCell{Base: 0}}).Validate(topo))
}

func TestSideClusters(t *testing.T) {
	m := mesh.NewQuadStrip(2)
	topo := cuttopo.NewTopology(2, m.NumElements)
	cm := topo.MustAdd(cuttopo.SplitQuadStrips(m, 1, 0, 1))
	ip := &enrich.InterpolationCell{Base: 0}

	ts := NewTrivialSide(ip, &m.Elements[0], 0, 3)
	assert.True(t, ts.Trivial)
	assert.Equal(t, []int{0, 2}, ts.Vertices)
	assert.Equal(t, types.ClusterIndex(3), ts.Volume)
	assert.Nil(t, ts.ChildMesh)

	left := NewCutSide(&enrich.InterpolationCell{Base: 1, BulkPhase: 0}, cm,
		[]cuttopo.FacetSide{{Cell: 0, Side: 1}}, 1)
	right := NewCutSide(&enrich.InterpolationCell{Base: 1, BulkPhase: 1}, cm,
		[]cuttopo.FacetSide{{Cell: 1, Side: 3}}, 2)
	assert.Equal(t, left.Vertices, right.Vertices)
	assert.Same(t, cm, left.ChildMesh)
	assert.Equal(t, 1, left.Sides[0].Ordinal)

	left.Index, right.Index = 4, 5
	ds := NewDoubleSide(left, right)
	assert.Equal(t, types.ClusterIndex(4), ds.Left)
	assert.Equal(t, types.ClusterIndex(5), ds.Right)
	assert.Equal(t, left.Vertices, ds.Vertices)
}

func TestDoubleSideSharedVertices(t *testing.T) {
	assert.Equal(t, []int{2, 5}, SharedVertices([]int{5, 1, 2, 5}, []int{2, 7, 5}))
	assert.Empty(t, SharedVertices([]int{0, 1}, []int{2, 3}))
	assert.Empty(t, SharedVertices(nil, []int{2, 3}))

	// a side reaching past the interface keeps only the common vertices
	left := &SideCluster{Index: 0, Vertices: []int{0, 1, 4, 5}}
	right := &SideCluster{Index: 1, Vertices: []int{4, 5, 8}}
	ds := NewDoubleSide(left, right)
	assert.Equal(t, []int{4, 5}, ds.Vertices)
	assert.Equal(t, []int{0, 1, 4, 5}, left.Vertices)
}
