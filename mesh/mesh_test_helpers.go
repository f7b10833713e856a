package mesh

// TestMeshes provides a collection of small background meshes shared by the package tests
// of the mesh, cut topology, registry and builder packages
type TestMeshes struct {
	SingleQuad  *Mesh // One unit quad with side sets "bottom" and "top"
	QuadStrip   *Mesh // Three unit quads along x, side sets "bottom", "top", "left", "right"
	TwoTets     *Mesh // Two tets sharing face (1,2,3)
	SinglePrism *Mesh
	// One pyramid with side set "base"
	SinglePyramid *Mesh
}

// GetStandardTestMeshes builds fresh copies of the standard test meshes, connectivity included
func GetStandardTestMeshes() *TestMeshes {
	return &TestMeshes{
		SingleQuad:    NewQuadStrip(1),
		QuadStrip:     NewQuadStrip(3),
		TwoTets:       newTwoTets(),
		SinglePrism:   newSinglePrism(),
		SinglePyramid: newSinglePyramid(),
	}
}

// NewQuadStrip creates n unit quads along the x axis, all in block "fluid" and owned by partition 0.
// Quad k has vertices (2k, 2k+2, 2k+3, 2k+1): bottom row even, top row odd.
func NewQuadStrip(n int) *Mesh {
	m := NewMesh()
	for i := 0; i <= n; i++ {
		m.AddVertex(float64(i), 0, 0)
		m.AddVertex(float64(i), 1, 0)
	}
	elems := make([]int, n)
	var bottom, top []Side
	for k := 0; k < n; k++ {
		elems[k] = m.AddElement(Quad, 1, 2*k, 2*k+2, 2*k+3, 2*k+1)
		bottom = append(bottom, Side{Element: k, Ordinal: 0})
		top = append(top, Side{Element: k, Ordinal: 2})
	}
	m.BuildConnectivity()
	_ = m.AddBlockSet("fluid", elems)
	_ = m.AddSideSet("bottom", bottom)
	_ = m.AddSideSet("top", top)
	if n > 1 {
		_ = m.AddSideSet("left", []Side{{Element: 0, Ordinal: 3}})
		_ = m.AddSideSet("right", []Side{{Element: n - 1, Ordinal: 1}})
	}
	_ = m.AssignOwners(1, BlockPartition)
	return m
}

func newTwoTets() *Mesh {
	m := NewMesh()
	m.AddVertex(0, 0, 0)
	m.AddVertex(1, 0, 0)
	m.AddVertex(0, 1, 0)
	m.AddVertex(0, 0, 1)
	m.AddVertex(1, 1, 1)
	m.AddElement(Tet, 1, 0, 1, 2, 3)
	m.AddElement(Tet, 2, 1, 2, 3, 4)
	m.BuildConnectivity()
	m.AddTagBlockSets()
	_ = m.AddSideSet("base", []Side{{Element: 0, Ordinal: 0}})
	_ = m.AssignOwners(1, BlockPartition)
	return m
}

func newSinglePrism() *Mesh {
	m := NewMesh()
	m.AddVertex(0, 0, 0)
	m.AddVertex(1, 0, 0)
	m.AddVertex(0, 1, 0)
	m.AddVertex(0, 0, 1)
	m.AddVertex(1, 0, 1)
	m.AddVertex(0, 1, 1)
	m.AddElement(Prism, 1, 0, 1, 2, 3, 4, 5)
	m.BuildConnectivity()
	m.AddTagBlockSets()
	_ = m.AddSideSet("bottom", []Side{{Element: 0, Ordinal: 0}})
	_ = m.AssignOwners(1, BlockPartition)
	return m
}

func newSinglePyramid() *Mesh {
	m := NewMesh()
	m.AddVertex(0, 0, 0)
	m.AddVertex(1, 0, 0)
	m.AddVertex(1, 1, 0)
	m.AddVertex(0, 1, 0)
	m.AddVertex(0.5, 0.5, 1)
	m.AddElement(Pyramid, 1, 0, 1, 2, 3, 4)
	m.BuildConnectivity()
	m.AddTagBlockSets()
	_ = m.AddSideSet("base", []Side{{Element: 0, Ordinal: 0}})
	_ = m.AssignOwners(1, BlockPartition)
	return m
}
