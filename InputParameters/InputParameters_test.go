package InputParameters

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/cutcell/builder"
	"github.com/notargets/cutcell/comm"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

// Two unit quads along x; the second one is split at x=1.5 into a phase 0 and a phase 1 strip
var twoQuads = []byte(`
Title: "two quads, one cut"
BulkPhases: 2
EnrichmentLevels: 1
Vertices:
  - [0, 0, 0]
  - [0, 1, 0]
  - [1, 0, 0]
  - [1, 1, 0]
  - [2, 0, 0]
  - [2, 1, 0]
  - [1.5, 0, 0]
  - [1.5, 1, 0]
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
    ParentFacets:
      0: [[0, 0], [1, 0]]
      1: [[1, 1]]
      2: [[0, 2], [1, 2]]
      3: [[0, 3]]
    Interfaces:
      - {Subphases: [0, 1], Cells: [0, 1], Sides: [1, 3]}
DeactivateEmptySets: true
Derived:
  - {Kind: side_from_double_side, Source: dbl_iside_p0_0_p1_1, Name: interface_sides}
`)

func TestCutMeshInput_Parse(t *testing.T) {
	var ip CutMeshInput
	require.NoError(t, ip.Parse(twoQuads))
	assert.Equal(t, "two quads, one cut", ip.Title)
	assert.Equal(t, 2, ip.BulkPhases)
	assert.Equal(t, 1, ip.Partitions)
	assert.Equal(t, "block", ip.Partitioner)
	assert.Len(t, ip.Vertices, 8)
	assert.Equal(t, [3]float64{1.5, 1, 0}, ip.Vertices[7])
	require.Len(t, ip.Cuts, 1)
	assert.Equal(t, [][2]int{{0, 0}, {1, 0}}, ip.Cuts[0].ParentFacets[0])
	assert.Equal(t, [2]int{1, 3}, ip.Cuts[0].Interfaces[0].Sides)
	opts := ip.Options()
	assert.True(t, opts.DeactivateEmptySets)
	assert.False(t, opts.AssignGlobalIDs)
	require.Len(t, opts.Derived, 1)
	assert.Equal(t, builder.SideFromDoubleSide, opts.Derived[0].Kind)

	var buf bytes.Buffer
	ip.Print(&buf)
	assert.Contains(t, buf.String(), "= Bulk Phases")
	assert.Contains(t, buf.String(), "Derived[interface_sides]")

	assert.Error(t, ip.Parse([]byte("BulkPhases: 0\n")))
	assert.Error(t, ip.Parse([]byte("BulkPhases: [\n")))
}

func TestCutMeshInput_Build(t *testing.T) {
	var ip CutMeshInput
	require.NoError(t, ip.Parse(twoQuads))
	prob, err := ip.Build(2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, prob.Partitions)
	assert.Equal(t, 2, prob.Mesh.NumElements)
	assert.Equal(t, []int{0, 1}, prob.Mesh.EToP)
	assert.Equal(t, []int{1}, prob.Cut.CutElements())
	assert.Equal(t, types.PhaseIndex(1), prob.Cut.SubphaseBulkPhase(1, 1))
	// One uncut cell on element 0, one per subphase on element 1
	assert.Len(t, prob.Enriched.Cells(), 3)
}

func TestCutMeshInput_Setup(t *testing.T) {
	var ip CutMeshInput
	require.NoError(t, ip.Parse(twoQuads))
	prob, err := ip.Build(0, nil)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg, err := builder.Run(context.Background(), prob.Context(comm.Solo{}, logger, nil), ip.Options())
	require.NoError(t, err)

	dbl, ok := reg.SetByName(types.DoubleSideSet, "dbl_iside_p0_0_p1_1")
	require.True(t, ok)
	assert.Equal(t, 1, dbl.Size())
	derived, ok := reg.SetByName(types.SideSet, "interface_sides")
	require.True(t, ok)
	assert.Equal(t, 2, derived.Size())
	_, ok = reg.SetByName(types.BlockSet, "fluid_c_p1")
	assert.True(t, ok)
}

func TestCutMeshInput_BuildErrors(t *testing.T) {
	parse := func(doc string) *CutMeshInput {
		var ip CutMeshInput
		require.NoError(t, ip.Parse([]byte(doc)))
		return &ip
	}
	base := "BulkPhases: 1\nVertices: [[0,0,0],[1,0,0],[1,1,0],[0,1,0]]\n"
	for name, doc := range map[string]string{
		"element type": base + "Elements: [{Type: Quad8, Vertices: [0,1,2,3]}]\n",
		"vertex count": base + "Elements: [{Type: Quad, Vertices: [0,1,2]}]\n",
		"vertex range": base + "Elements: [{Type: Quad, Vertices: [0,1,2,9]}]\n",
		"partitioner":  base + "Partitioner: bisect\nElements: [{Type: Quad, Vertices: [0,1,2,3]}]\n",
		"cut element":  base + "Elements: [{Type: Quad, Vertices: [0,1,2,3]}]\nCuts: [{Element: 4}]\n",
		"empty cut":    base + "Elements: [{Type: Quad, Vertices: [0,1,2,3]}]\nCuts: [{Element: 0}]\n",
	} {
		_, err := parse(doc).Build(1, nil)
		assert.Error(t, err, name)
	}
}

func TestPartitioners(t *testing.T) {
	var ip CutMeshInput
	require.NoError(t, ip.Parse(twoQuads))
	ip.Partitioner = "roundrobin"
	prob, err := ip.Build(2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, prob.Mesh.NumPartitions())
	assert.Equal(t, mesh.Quad, prob.Mesh.Elements[1].Type)
}

func TestCutMeshInput_MeshFile(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "twoQuads.su2")
	require.NoError(t, os.WriteFile(meshFile, []byte(`NDIME= 2
NELEM= 2
9 0 2 3 1 0
9 2 4 5 3 1
NPOIN= 6
0 0
0 1
1 0
1 1
2 0
2 1
NMARK= 1
MARKER_TAG= bottom
MARKER_ELEMS= 2
3 0 2
3 2 4
`), 0o644))
	doc := []byte(`
BulkPhases: 2
MeshFile: ` + meshFile + `
DefaultPhase: 0
ElementPhases: {0: 1}
Vertices: [[1.5, 0, 0], [1.5, 1, 0]]
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
`)
	var ip CutMeshInput
	require.NoError(t, ip.Parse(doc))
	prob, err := ip.Build(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, prob.Mesh.NumVertices)
	v := mesh.NewView(prob.Mesh, 0)
	assert.Equal(t, []string{"block_0"}, v.BlockSetNames())
	assert.Equal(t, []mesh.Side{{Element: 0, Ordinal: 0}, {Element: 1, Ordinal: 0}}, v.SideSet("bottom"))
	cells := prob.Enriched.EnrichedCellsForBase(0)
	require.Len(t, cells, 1)
	assert.Equal(t, types.PhaseIndex(1), cells[0].BulkPhase)

	ip.Elements = []ElementInput{{Type: "Quad", Vertices: []int{0, 1, 2, 3}}}
	_, err = ip.Build(1, nil)
	assert.Error(t, err)
	ip.Elements = nil
	ip.ElementPhases = map[int]int{5: 0}
	_, err = ip.Build(1, nil)
	assert.Error(t, err)
}
