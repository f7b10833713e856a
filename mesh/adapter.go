package mesh

import (
	"fmt"
	"sort"
)

// Adapter is the read-only view of the background mesh consumed by the cluster builders.
// Every query answers for the whole mesh; Owns filters the local share.
type Adapter interface {
	NumElements() int
	Element(k int) *Cell
	ElementType(k int) ElementType
	NumVertices() int
	Vertex(i int) *Vertex
	FacetVertices(k, ordinal int) []int
	// FacetConnectivity returns the cells sharing facet ordinal of element k, k first
	FacetConnectivity(k, ordinal int) []int
	Owner(k int) int
	Owns(k int) bool
	LocalPartition() int
	CommunicationTable() []int
	BlockSetNames() []string
	BlockSet(name string) []int
	SideSetNames() []string
	SideSet(name string) []Side
}

// View is the adapter of one partition over a shared, fully built Mesh
type View struct {
	m         *Mesh
	rank      int
	commTable []int
}

// NewView creates the adapter for partition rank. The mesh connectivity must be built.
func NewView(m *Mesh, rank int) *View {
	if m.EToE == nil && m.NumElements > 0 {
		panic(fmt.Errorf("mesh connectivity must be built before creating a view"))
	}
	v := &View{m: m, rank: rank}
	v.commTable = v.buildCommunicationTable()
	return v
}

func (v *View) Mesh() *Mesh                   { return v.m }
func (v *View) NumElements() int              { return v.m.NumElements }
func (v *View) Element(k int) *Cell           { return &v.m.Elements[k] }
func (v *View) ElementType(k int) ElementType { return v.m.Elements[k].Type }
func (v *View) NumVertices() int              { return v.m.NumVertices }
func (v *View) Vertex(i int) *Vertex          { return &v.m.Vertices[i] }
func (v *View) Owner(k int) int               { return v.m.owner(k) }
func (v *View) Owns(k int) bool               { return v.m.owner(k) == v.rank }
func (v *View) LocalPartition() int           { return v.rank }
func (v *View) CommunicationTable() []int     { return v.commTable }
func (v *View) BlockSetNames() []string       { return v.m.blockSetNames }
func (v *View) BlockSet(name string) []int    { return v.m.blockSets[name] }
func (v *View) SideSetNames() []string        { return v.m.sideSetNames }
func (v *View) SideSet(name string) []Side    { return v.m.sideSets[name] }

func (v *View) FacetVertices(k, ordinal int) []int {
	return CellSideVertices(&v.m.Elements[k], ordinal)
}

func (v *View) FacetConnectivity(k, ordinal int) []int {
	cells := []int{k}
	if nb := v.m.EToE[k][ordinal]; nb >= 0 {
		cells = append(cells, nb)
	}
	return cells
}

// buildCommunicationTable lists the partitions sharing a facet with this one, ascending
func (v *View) buildCommunicationTable() []int {
	neighbors := make(map[int]bool)
	for elem := 0; elem < v.m.NumElements; elem++ {
		if !v.Owns(elem) {
			continue
		}
		for _, nb := range v.m.EToE[elem] {
			if nb >= 0 && v.m.owner(nb) != v.rank {
				neighbors[v.m.owner(nb)] = true
			}
		}
	}
	table := make([]int, 0, len(neighbors))
	for p := range neighbors {
		table = append(table, p)
	}
	sort.Ints(table)
	return table
}
