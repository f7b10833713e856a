package cuttopo

import (
	"fmt"
	"sort"

	"github.com/notargets/cutcell/types"
)

// Provider is the cut topology consumed by the cluster builders
type Provider interface {
	NumBulkPhases() int
	// HasChildren reports whether the background element was cut into sub-cells
	HasChildren(elem int) bool
	ChildMesh(elem int) *ChildMesh
	// CutElements lists the cut background elements, ascending
	CutElements() []int
	SubphaseGroups(elem int) [][]int
	SubphaseBulkPhase(elem, subphase int) types.PhaseIndex
	InterfaceCellPairs(elem int) []InterfacePair
	CellsOnParentFacet(elem, ordinal int) []FacetSide
}

// Topology is the in-memory Provider filled by the cutting stage (or an input file)
type Topology struct {
	numBulkPhases  int
	children       map[int]*ChildMesh
	cut            []int
	nextCellID     int
	nextSubphaseID types.SubphaseID
}

// NewTopology creates an empty topology. Sub-cell ids are handed out from firstCellID,
// normally the number of background elements so they never collide with element ids.
func NewTopology(numBulkPhases, firstCellID int) *Topology {
	if numBulkPhases < 1 {
		panic(fmt.Errorf("number of bulk phases must be positive, have %d", numBulkPhases))
	}
	return &Topology{
		numBulkPhases: numBulkPhases,
		children:      make(map[int]*ChildMesh),
		nextCellID:    firstCellID,
	}
}

// Add validates a child mesh and assigns mesh-wide sub-cell and subphase ids
func (t *Topology) Add(cm *ChildMesh) error {
	if _, ok := t.children[cm.Parent]; ok {
		return fmt.Errorf("element %d already has a child mesh", cm.Parent)
	}
	if err := cm.validate(t.numBulkPhases); err != nil {
		return err
	}
	for _, c := range cm.Cells {
		c.ID = t.nextCellID
		t.nextCellID++
	}
	for i := range cm.Subphases {
		cm.Subphases[i].ID = t.nextSubphaseID
		t.nextSubphaseID++
	}
	t.children[cm.Parent] = cm
	t.cut = append(t.cut, cm.Parent)
	sort.Ints(t.cut)
	return nil
}

func (t *Topology) NumBulkPhases() int { return t.numBulkPhases }

func (t *Topology) NumSubphases() int { return int(t.nextSubphaseID) }

func (t *Topology) HasChildren(elem int) bool {
	_, ok := t.children[elem]
	return ok
}

func (t *Topology) ChildMesh(elem int) *ChildMesh { return t.children[elem] }

func (t *Topology) CutElements() []int { return t.cut }

func (t *Topology) SubphaseGroups(elem int) [][]int {
	cm := t.mustChild(elem)
	groups := make([][]int, len(cm.Subphases))
	for i, sp := range cm.Subphases {
		groups[i] = sp.Cells
	}
	return groups
}

func (t *Topology) SubphaseBulkPhase(elem, subphase int) types.PhaseIndex {
	cm := t.mustChild(elem)
	if subphase < 0 || subphase >= len(cm.Subphases) {
		panic(fmt.Errorf("element %d: subphase %d out of range [0,%d)", elem, subphase, len(cm.Subphases)))
	}
	return cm.Subphases[subphase].BulkPhase
}

func (t *Topology) InterfaceCellPairs(elem int) []InterfacePair {
	return t.mustChild(elem).Interfaces
}

func (t *Topology) CellsOnParentFacet(elem, ordinal int) []FacetSide {
	return t.mustChild(elem).ParentFacets[ordinal]
}

func (t *Topology) mustChild(elem int) *ChildMesh {
	cm, ok := t.children[elem]
	if !ok {
		panic(fmt.Errorf("element %d has no child mesh", elem))
	}
	return cm
}
