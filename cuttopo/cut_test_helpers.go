package cuttopo

import (
	"fmt"

	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

// SplitQuadStrips cuts a background quad into len(phases) vertical strips, strip s carrying phases[s].
// New vertices are appended to the mesh. Strip s is a quad with sides
// 0 bottom (parent facet 0), 1 right, 2 top (parent facet 2) and 3 left; the outer left/right
// sides lie on parent facets 3 and 1, the inner ones form the interface pairs (s, s+1).
// Adjacent strips must carry different phases, each strip is its own subphase.
func SplitQuadStrips(m *mesh.Mesh, elem int, phases ...types.PhaseIndex) *ChildMesh {
	el := m.Elements[elem]
	if el.Type != mesh.Quad {
		panic(fmt.Errorf("SplitQuadStrips needs a quad, element %d is a %s", elem, el.Type))
	}
	n := len(phases)
	if n < 1 {
		panic(fmt.Errorf("SplitQuadStrips needs at least one phase"))
	}
	for s := 1; s < n; s++ {
		if phases[s] == phases[s-1] {
			panic(fmt.Errorf("adjacent strips %d and %d share phase %d", s-1, s, phases[s]))
		}
	}
	var (
		v0, v1 = m.Vertices[el.Vertices[0]].Coords, m.Vertices[el.Vertices[1]].Coords
		v2, v3 = m.Vertices[el.Vertices[2]].Coords, m.Vertices[el.Vertices[3]].Coords
		bottom = make([]int, n+1)
		top    = make([]int, n+1)
	)
	bottom[0], bottom[n] = el.Vertices[0], el.Vertices[1]
	top[0], top[n] = el.Vertices[3], el.Vertices[2]
	for s := 1; s < n; s++ {
		f := float64(s) / float64(n)
		bottom[s] = m.AddVertex(v0.X+f*(v1.X-v0.X), v0.Y+f*(v1.Y-v0.Y), v0.Z+f*(v1.Z-v0.Z))
		top[s] = m.AddVertex(v3.X+f*(v2.X-v3.X), v3.Y+f*(v2.Y-v3.Y), v3.Z+f*(v2.Z-v3.Z))
		m.Vertices[bottom[s]].Owner = m.Vertices[el.Vertices[0]].Owner
		m.Vertices[top[s]].Owner = m.Vertices[el.Vertices[0]].Owner
	}
	cm := &ChildMesh{
		Parent:       elem,
		ParentFacets: make(map[int][]FacetSide),
	}
	for s := 0; s < n; s++ {
		cm.Cells = append(cm.Cells, &mesh.Cell{
			Type:     mesh.Quad,
			Vertices: []int{bottom[s], bottom[s+1], top[s+1], top[s]},
		})
		cm.Subphases = append(cm.Subphases, Subphase{BulkPhase: phases[s], Cells: []int{s}})
		cm.ParentFacets[0] = append(cm.ParentFacets[0], FacetSide{Cell: s, Side: 0})
		cm.ParentFacets[2] = append(cm.ParentFacets[2], FacetSide{Cell: s, Side: 2})
		if s > 0 {
			cm.Interfaces = append(cm.Interfaces, InterfacePair{
				SubphaseA: s - 1, SubphaseB: s,
				CellA: s - 1, CellB: s,
				SideA: 1, SideB: 3,
			})
		}
	}
	cm.ParentFacets[3] = []FacetSide{{Cell: 0, Side: 3}}
	cm.ParentFacets[1] = []FacetSide{{Cell: n - 1, Side: 1}}
	return cm
}

// SplitQuadTriangles cuts a background quad along its diagonal (v0,v2) into two triangles,
// the lower right one carrying phaseA. Exercises sub-cells of a different type than the parent.
func SplitQuadTriangles(m *mesh.Mesh, elem int, phaseA, phaseB types.PhaseIndex) *ChildMesh {
	el := m.Elements[elem]
	v := el.Vertices
	return &ChildMesh{
		Parent: elem,
		Cells: []*mesh.Cell{
			{Type: mesh.Triangle, Vertices: []int{v[0], v[1], v[2]}},
			{Type: mesh.Triangle, Vertices: []int{v[0], v[2], v[3]}},
		},
		Subphases: []Subphase{
			{BulkPhase: phaseA, Cells: []int{0}},
			{BulkPhase: phaseB, Cells: []int{1}},
		},
		ParentFacets: map[int][]FacetSide{
			0: {{Cell: 0, Side: 0}},
			1: {{Cell: 0, Side: 1}},
			2: {{Cell: 1, Side: 1}},
			3: {{Cell: 1, Side: 2}},
		},
		Interfaces: []InterfacePair{
			{SubphaseA: 0, SubphaseB: 1, CellA: 0, CellB: 1, SideA: 2, SideB: 0},
		},
	}
}

// MustAdd adds a child mesh and panics on a validation error, for fixtures
func (t *Topology) MustAdd(cm *ChildMesh) *ChildMesh {
	if err := t.Add(cm); err != nil {
		panic(err)
	}
	return cm
}
