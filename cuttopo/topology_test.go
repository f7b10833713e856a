package cuttopo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

func TestTopology_SplitQuad(t *testing.T) {
	m := mesh.NewQuadStrip(1)
	topo := NewTopology(2, m.NumElements)
	cm := topo.MustAdd(SplitQuadStrips(m, 0, 0, 1))

	assert.True(t, topo.HasChildren(0))
	assert.False(t, topo.HasChildren(1))
	assert.Equal(t, []int{0}, topo.CutElements())
	assert.Equal(t, 6, m.NumVertices)

	// Sub-cell ids follow the background element ids
	assert.Equal(t, 1, cm.Cells[0].ID)
	assert.Equal(t, 2, cm.Cells[1].ID)
	assert.Equal(t, types.SubphaseID(0), cm.Subphases[0].ID)
	assert.Equal(t, types.SubphaseID(1), cm.Subphases[1].ID)
	assert.Equal(t, 2, topo.NumSubphases())

	assert.Equal(t, [][]int{{0}, {1}}, topo.SubphaseGroups(0))
	assert.Equal(t, types.PhaseIndex(1), topo.SubphaseBulkPhase(0, 1))
	assert.Equal(t, []InterfacePair{{SubphaseA: 0, SubphaseB: 1, CellA: 0, CellB: 1, SideA: 1, SideB: 3}},
		topo.InterfaceCellPairs(0))
	assert.Equal(t, []FacetSide{{Cell: 0, Side: 0}, {Cell: 1, Side: 0}}, topo.CellsOnParentFacet(0, 0))
	assert.Equal(t, []FacetSide{{Cell: 1, Side: 1}}, topo.CellsOnParentFacet(0, 1))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, cm.Vertices())

	// The interface sides of both strips are the same segment
	assert.ElementsMatch(t,
		mesh.CellSideVertices(cm.Cells[0], 1), mesh.CellSideVertices(cm.Cells[1], 3))

	idx, ok := cm.SubphaseIndex(1)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = cm.SubphaseIndex(9)
	assert.False(t, ok)
	assert.Equal(t, 1, cm.SubphaseOfCell(1))

	assert.Panics(t, func() { topo.SubphaseGroups(3) })
	assert.Panics(t, func() { topo.SubphaseBulkPhase(0, 2) })
}

func TestTopology_Triangles(t *testing.T) {
	m := mesh.NewQuadStrip(2)
	topo := NewTopology(2, m.NumElements)
	cm := topo.MustAdd(SplitQuadTriangles(m, 1, 1, 0))
	assert.Equal(t, 2, cm.Cells[0].ID)
	assert.ElementsMatch(t,
		mesh.CellSideVertices(cm.Cells[0], 2), mesh.CellSideVertices(cm.Cells[1], 0))
	// Every parent facet is covered by exactly the sub-cell side on it
	for ord := 0; ord < 4; ord++ {
		sides := topo.CellsOnParentFacet(1, ord)
		require.Len(t, sides, 1)
		assert.ElementsMatch(t, m.Elements[1].Vertices[ord:ord+1],
			mesh.CellSideVertices(cm.Cells[sides[0].Cell], sides[0].Side)[:1])
	}
}

func TestTopology_Validation(t *testing.T) {
	m := mesh.NewQuadStrip(2)
	tests := []struct {
		name   string
		mutate func(cm *ChildMesh)
	}{
		{"no cells", func(cm *ChildMesh) { cm.Cells = nil }},
		{"no subphases", func(cm *ChildMesh) { cm.Subphases = nil }},
		{"phase out of range", func(cm *ChildMesh) { cm.Subphases[1].BulkPhase = 2 }},
		{"cell in two subphases", func(cm *ChildMesh) { cm.Subphases[1].Cells = []int{0} }},
		{"orphan cell", func(cm *ChildMesh) { cm.Subphases = cm.Subphases[:1]; cm.Interfaces = nil }},
		{"bad facet side", func(cm *ChildMesh) { cm.ParentFacets[0][0].Side = 4 }},
		{"self interface", func(cm *ChildMesh) { cm.Interfaces[0].SubphaseB = 0 }},
		{"interface cell mismatch", func(cm *ChildMesh) { cm.Interfaces[0].CellA = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := NewTopology(2, m.NumElements)
			cm := SplitQuadStrips(m, 0, 0, 1)
			tt.mutate(cm)
			assert.Error(t, topo.Add(cm))
			assert.False(t, topo.HasChildren(0))
		})
	}

	topo := NewTopology(2, m.NumElements)
	require.NoError(t, topo.Add(SplitQuadStrips(m, 0, 0, 1)))
	assert.Error(t, topo.Add(SplitQuadStrips(m, 0, 1, 0)))
	assert.Panics(t, func() { NewTopology(0, 0) })
	assert.Panics(t, func() { SplitQuadStrips(m, 1, 0, 0) })
}
