package mesh

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ElementType represents different element types
type ElementType int

const (
	Line ElementType = iota
	Triangle
	Quad
	Tet
	Hex
	Prism
	Pyramid
)

func (e ElementType) String() string {
	return [...]string{"Line", "Triangle", "Quad", "Tet", "Hex", "Prism", "Pyramid"}[e]
}

// NewElementType parses the names returned by String
func NewElementType(name string) (ElementType, error) {
	for et := Line; et <= Pyramid; et++ {
		if et.String() == name {
			return et, nil
		}
	}
	return Line, fmt.Errorf("unknown element type: %q", name)
}

// Vertex is a mesh node. Clusters reference vertices by Index, never own them.
type Vertex struct {
	ID     int // Global id
	Index  int // Local index in Mesh.Vertices
	Owner  int // Owning partition
	Coords r3.Vec
}

// Cell is an integration cell: a background element or a cut sub-cell
type Cell struct {
	ID       int
	Type     ElementType
	Vertices []int
}

// Face represents a face of an element
type Face struct {
	Vertices []int // Sorted vertex indices
	Element  int   // Parent element
	LocalID  int   // Local face ID within element
}

// Side is one facet of an element named by a side set
type Side struct {
	Element int
	Ordinal int
}

// Mesh represents a complete unstructured background mesh with all connectivity
type Mesh struct {
	// Geometry
	Vertices []Vertex

	// Element data
	Elements    []Cell
	ElementTags []int // Physical group/tag for each element

	// Connectivity (built during initialization)
	EToE [][]int // Element to element connectivity [nelems][nfaces_per_elem]
	EToF [][]int // Element to face connectivity [nelems][nfaces_per_elem]
	EToP []int   // Element to partition mapping (set after partitioning)

	// Face data
	Faces   []Face         // All unique faces in mesh
	FaceMap map[string]int // Map from sorted vertex string to face ID

	// Named sets, kept in declaration order so every partition sees the same sequence
	blockSetNames []string
	blockSets     map[string][]int
	sideSetNames  []string
	sideSets      map[string][]Side

	// Mesh statistics
	NumElements int
	NumVertices int
	NumFaces    int
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		FaceMap:   make(map[string]int),
		blockSets: make(map[string][]int),
		sideSets:  make(map[string][]Side),
	}
}

// AddVertex appends a vertex and returns its index
func (m *Mesh) AddVertex(x, y, z float64) int {
	idx := len(m.Vertices)
	m.Vertices = append(m.Vertices, Vertex{
		ID:     idx,
		Index:  idx,
		Coords: r3.Vec{X: x, Y: y, Z: z},
	})
	m.NumVertices = len(m.Vertices)
	return idx
}

// AddElement appends a background element and returns its index
func (m *Mesh) AddElement(et ElementType, tag int, verts ...int) int {
	for _, v := range verts {
		if v < 0 || v >= len(m.Vertices) {
			panic(fmt.Errorf("element vertex %d out of range [0,%d)", v, len(m.Vertices)))
		}
	}
	idx := len(m.Elements)
	m.Elements = append(m.Elements, Cell{ID: idx, Type: et, Vertices: append([]int(nil), verts...)})
	m.ElementTags = append(m.ElementTags, tag)
	m.NumElements = len(m.Elements)
	return idx
}

// AddBlockSet names a group of elements. Names must be unique.
func (m *Mesh) AddBlockSet(name string, elems []int) error {
	if _, ok := m.blockSets[name]; ok {
		return fmt.Errorf("duplicate block set %q", name)
	}
	for _, e := range elems {
		if e < 0 || e >= m.NumElements {
			return fmt.Errorf("block set %q: element %d out of range", name, e)
		}
	}
	m.blockSetNames = append(m.blockSetNames, name)
	m.blockSets[name] = append([]int(nil), elems...)
	return nil
}

// AddSideSet names a group of element facets. Names must be unique.
func (m *Mesh) AddSideSet(name string, sides []Side) error {
	if _, ok := m.sideSets[name]; ok {
		return fmt.Errorf("duplicate side set %q", name)
	}
	for _, s := range sides {
		if s.Element < 0 || s.Element >= m.NumElements {
			return fmt.Errorf("side set %q: element %d out of range", name, s.Element)
		}
		if nf := NumFaces(m.Elements[s.Element].Type); s.Ordinal < 0 || s.Ordinal >= nf {
			return fmt.Errorf("side set %q: facet ordinal %d out of range for %s",
				name, s.Ordinal, m.Elements[s.Element].Type)
		}
	}
	m.sideSetNames = append(m.sideSetNames, name)
	m.sideSets[name] = append([]Side(nil), sides...)
	return nil
}

// AddTagBlockSets creates one block set per element tag, named "block_<tag>", when none were given
func (m *Mesh) AddTagBlockSets() {
	if len(m.blockSetNames) != 0 {
		return
	}
	byTag := make(map[int][]int)
	var tags []int
	for k, tag := range m.ElementTags {
		if _, ok := byTag[tag]; !ok {
			tags = append(tags, tag)
		}
		byTag[tag] = append(byTag[tag], k)
	}
	sort.Ints(tags)
	for _, tag := range tags {
		_ = m.AddBlockSet(fmt.Sprintf("block_%d", tag), byTag[tag])
	}
}

// BuildConnectivity builds element-to-element and face connectivity
func (m *Mesh) BuildConnectivity() {
	m.EToE = make([][]int, m.NumElements)
	m.EToF = make([][]int, m.NumElements)
	m.Faces = m.Faces[:0]
	m.FaceMap = make(map[string]int)

	// Build face connectivity
	for elemID := 0; elemID < m.NumElements; elemID++ {
		el := m.Elements[elemID]

		// Get faces for this element type
		faceVertices := GetElementFaces(el.Type, el.Vertices)

		m.EToE[elemID] = make([]int, len(faceVertices))
		m.EToF[elemID] = make([]int, len(faceVertices))

		// Initialize to -1 (boundary)
		for i := range m.EToE[elemID] {
			m.EToE[elemID][i] = -1
			m.EToF[elemID][i] = -1
		}

		// Process each face
		for localFaceID, faceVerts := range faceVertices {
			// Create sorted vertex key for face
			sorted := make([]int, len(faceVerts))
			copy(sorted, faceVerts)
			sort.Ints(sorted)

			key := fmt.Sprintf("%v", sorted)

			if faceID, exists := m.FaceMap[key]; exists {
				// Face already exists - this is an interior face
				face := &m.Faces[faceID]
				neighborElem := face.Element
				neighborLocalID := face.LocalID

				m.EToE[elemID][localFaceID] = neighborElem
				m.EToE[neighborElem][neighborLocalID] = elemID

				m.EToF[elemID][localFaceID] = faceID
				m.EToF[neighborElem][neighborLocalID] = faceID
			} else {
				face := Face{
					Vertices: sorted,
					Element:  elemID,
					LocalID:  localFaceID,
				}

				faceID := len(m.Faces)
				m.Faces = append(m.Faces, face)
				m.FaceMap[key] = faceID
				m.EToF[elemID][localFaceID] = faceID
			}
		}
	}

	m.NumFaces = len(m.Faces)
}

// NumFaces returns the number of facets of an element type
func NumFaces(elemType ElementType) int {
	switch elemType {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Hex:
		return 6
	case Prism, Pyramid:
		return 5
	}
	return 0
}

// NumElementVertices returns the number of corner vertices of an element type
func NumElementVertices(elemType ElementType) int {
	switch elemType {
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Prism:
		return 6
	case Pyramid:
		return 5
	case Hex:
		return 8
	}
	return 0
}

// GetElementFaces returns the facet vertices for each element type, indexed by facet ordinal.
// For 2D elements the facets are edges.
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	switch elemType {
	case Line:
		return [][]int{
			{vertices[0]},
			{vertices[1]},
		}
	case Triangle:
		return [][]int{
			{vertices[0], vertices[1]}, // Edge 0
			{vertices[1], vertices[2]}, // Edge 1
			{vertices[2], vertices[0]}, // Edge 2
		}
	case Quad:
		return [][]int{
			{vertices[0], vertices[1]}, // Edge 0 (bottom)
			{vertices[1], vertices[2]}, // Edge 1 (right)
			{vertices[2], vertices[3]}, // Edge 2 (top)
			{vertices[3], vertices[0]}, // Edge 3 (left)
		}
	case Tet:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]}, // Face 0
			{vertices[0], vertices[1], vertices[3]}, // Face 1
			{vertices[1], vertices[2], vertices[3]}, // Face 2
			{vertices[0], vertices[3], vertices[2]}, // Face 3
		}
	case Hex:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (bottom)
			{vertices[4], vertices[5], vertices[6], vertices[7]}, // Face 1 (top)
			{vertices[0], vertices[1], vertices[5], vertices[4]}, // Face 2
			{vertices[1], vertices[2], vertices[6], vertices[5]}, // Face 3
			{vertices[2], vertices[3], vertices[7], vertices[6]}, // Face 4
			{vertices[3], vertices[0], vertices[4], vertices[7]}, // Face 5
		}
	case Prism:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]},              // Face 0 (bottom tri)
			{vertices[3], vertices[4], vertices[5]},              // Face 1 (top tri)
			{vertices[0], vertices[1], vertices[4], vertices[3]}, // Face 2 (quad)
			{vertices[1], vertices[2], vertices[5], vertices[4]}, // Face 3 (quad)
			{vertices[2], vertices[0], vertices[3], vertices[5]}, // Face 4 (quad)
		}
	case Pyramid:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (base quad)
			{vertices[0], vertices[1], vertices[4]},              // Face 1 (tri)
			{vertices[1], vertices[2], vertices[4]},              // Face 2 (tri)
			{vertices[2], vertices[3], vertices[4]},              // Face 3 (tri)
			{vertices[3], vertices[0], vertices[4]},              // Face 4 (tri)
		}
	default:
		return [][]int{}
	}
}

// CellSideVertices returns the vertices on one side of a cell
func CellSideVertices(c *Cell, ordinal int) []int {
	faces := GetElementFaces(c.Type, c.Vertices)
	if ordinal < 0 || ordinal >= len(faces) {
		panic(fmt.Errorf("side ordinal %d out of range for %s cell %d", ordinal, c.Type, c.ID))
	}
	return faces[ordinal]
}

// BoundingBox returns the axis aligned box around all vertices
func (m *Mesh) BoundingBox() (box r3.Box) {
	if len(m.Vertices) == 0 {
		return
	}
	box.Min = m.Vertices[0].Coords
	box.Max = m.Vertices[0].Coords
	for _, v := range m.Vertices[1:] {
		box.Min = r3.Vec{X: min(box.Min.X, v.Coords.X), Y: min(box.Min.Y, v.Coords.Y), Z: min(box.Min.Z, v.Coords.Z)}
		box.Max = r3.Vec{X: max(box.Max.X, v.Coords.X), Y: max(box.Max.Y, v.Coords.Y), Z: max(box.Max.Z, v.Coords.Z)}
	}
	return
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics(w io.Writer) {
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Vertices: %d\n", m.NumVertices)
	fmt.Fprintf(w, "  Elements: %d\n", m.NumElements)
	fmt.Fprintf(w, "  Faces: %d\n", m.NumFaces)

	// Count element types
	typeCounts := make(map[ElementType]int)
	for _, el := range m.Elements {
		typeCounts[el.Type]++
	}

	fmt.Fprintf(w, "  Element types:\n")
	for t := Line; t <= Pyramid; t++ {
		if count := typeCounts[t]; count > 0 {
			fmt.Fprintf(w, "    %s: %d\n", t, count)
		}
	}

	boundaryFaces := 0
	for i := 0; i < m.NumElements && i < len(m.EToE); i++ {
		for _, neighbor := range m.EToE[i] {
			if neighbor < 0 {
				boundaryFaces++
			}
		}
	}
	fmt.Fprintf(w, "  Boundary faces: %d\n", boundaryFaces)
	box := m.BoundingBox()
	fmt.Fprintf(w, "  Bounding box: [%g %g %g] - [%g %g %g]\n",
		box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)
	fmt.Fprintf(w, "  Block sets: %v\n", m.blockSetNames)
	fmt.Fprintf(w, "  Side sets: %v\n", m.sideSetNames)
}
