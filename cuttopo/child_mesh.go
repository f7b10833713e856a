// Package cuttopo holds the output of the geometric cutting stage: for each cut background element,
// a child mesh of sub-cells grouped into subphases and the interface cell pairs between subphases.
package cuttopo

import (
	"fmt"
	"sort"

	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

// FacetSide is one side of a sub-cell, both given as local indices of the child mesh
type FacetSide struct {
	Cell int
	Side int
}

// Subphase is a maximal connected group of sub-cells sharing a bulk phase
type Subphase struct {
	ID        types.SubphaseID // Mesh-wide id, assigned by Topology.Add
	BulkPhase types.PhaseIndex
	Cells     []int // Local cell indices
}

// InterfacePair matches two sub-cell sides across the interface between two subphases.
// All indices are local to the child mesh.
type InterfacePair struct {
	SubphaseA, SubphaseB int
	CellA, CellB         int
	SideA, SideB         int
}

// ChildMesh is the cut topology of one background element
type ChildMesh struct {
	Parent       int
	Cells        []*mesh.Cell
	Subphases    []Subphase
	ParentFacets map[int][]FacetSide // parent facet ordinal -> sub-cell sides lying on it
	Interfaces   []InterfacePair

	cellSubphase []int
	vertices     []int
}

// SubphaseOfCell returns the local subphase index of a local cell
func (cm *ChildMesh) SubphaseOfCell(cell int) int { return cm.cellSubphase[cell] }

// Vertices returns every vertex referenced by the sub-cells, ascending
func (cm *ChildMesh) Vertices() []int { return cm.vertices }

// SubphaseIndex returns the local index of a mesh-wide subphase id
func (cm *ChildMesh) SubphaseIndex(id types.SubphaseID) (int, bool) {
	for i, sp := range cm.Subphases {
		if sp.ID == id {
			return i, true
		}
	}
	return -1, false
}

// SubphaseCells returns the sub-cells of one subphase in group order
func (cm *ChildMesh) SubphaseCells(sp int) []*mesh.Cell {
	cells := make([]*mesh.Cell, len(cm.Subphases[sp].Cells))
	for i, c := range cm.Subphases[sp].Cells {
		cells[i] = cm.Cells[c]
	}
	return cells
}

func (cm *ChildMesh) validate(numBulkPhases int) error {
	nc := len(cm.Cells)
	if nc == 0 {
		return fmt.Errorf("child mesh of element %d has no cells", cm.Parent)
	}
	if len(cm.Subphases) == 0 {
		return fmt.Errorf("child mesh of element %d has no subphases", cm.Parent)
	}
	cm.cellSubphase = make([]int, nc)
	for i := range cm.cellSubphase {
		cm.cellSubphase[i] = -1
	}
	for sp, group := range cm.Subphases {
		if group.BulkPhase < 0 || int(group.BulkPhase) >= numBulkPhases {
			return fmt.Errorf("element %d subphase %d: bulk phase %d out of range [0,%d)",
				cm.Parent, sp, group.BulkPhase, numBulkPhases)
		}
		if len(group.Cells) == 0 {
			return fmt.Errorf("element %d subphase %d is empty", cm.Parent, sp)
		}
		for _, c := range group.Cells {
			if c < 0 || c >= nc {
				return fmt.Errorf("element %d subphase %d: cell %d out of range", cm.Parent, sp, c)
			}
			if cm.cellSubphase[c] >= 0 {
				return fmt.Errorf("element %d: cell %d is in subphases %d and %d",
					cm.Parent, c, cm.cellSubphase[c], sp)
			}
			cm.cellSubphase[c] = sp
		}
	}
	for c, sp := range cm.cellSubphase {
		if sp < 0 {
			return fmt.Errorf("element %d: cell %d belongs to no subphase", cm.Parent, c)
		}
	}
	checkSide := func(c, side int) error {
		if c < 0 || c >= nc {
			return fmt.Errorf("element %d: cell %d out of range", cm.Parent, c)
		}
		if side < 0 || side >= mesh.NumFaces(cm.Cells[c].Type) {
			return fmt.Errorf("element %d: side %d out of range for %s cell %d",
				cm.Parent, side, cm.Cells[c].Type, c)
		}
		return nil
	}
	for ord, sides := range cm.ParentFacets {
		for _, fs := range sides {
			if err := checkSide(fs.Cell, fs.Side); err != nil {
				return fmt.Errorf("parent facet %d: %w", ord, err)
			}
		}
	}
	for i, ip := range cm.Interfaces {
		ns := len(cm.Subphases)
		if ip.SubphaseA < 0 || ip.SubphaseA >= ns || ip.SubphaseB < 0 || ip.SubphaseB >= ns ||
			ip.SubphaseA == ip.SubphaseB {
			return fmt.Errorf("element %d interface %d: bad subphase pair (%d,%d)",
				cm.Parent, i, ip.SubphaseA, ip.SubphaseB)
		}
		if err := checkSide(ip.CellA, ip.SideA); err != nil {
			return fmt.Errorf("interface %d: %w", i, err)
		}
		if err := checkSide(ip.CellB, ip.SideB); err != nil {
			return fmt.Errorf("interface %d: %w", i, err)
		}
		if cm.cellSubphase[ip.CellA] != ip.SubphaseA || cm.cellSubphase[ip.CellB] != ip.SubphaseB {
			return fmt.Errorf("element %d interface %d: cells (%d,%d) not in subphases (%d,%d)",
				cm.Parent, i, ip.CellA, ip.CellB, ip.SubphaseA, ip.SubphaseB)
		}
	}
	seen := make(map[int]bool)
	for _, c := range cm.Cells {
		for _, v := range c.Vertices {
			seen[v] = true
		}
	}
	cm.vertices = make([]int, 0, len(seen))
	for v := range seen {
		cm.vertices = append(cm.vertices, v)
	}
	sort.Ints(cm.vertices)
	return nil
}
