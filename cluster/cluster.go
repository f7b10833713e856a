// Package cluster defines the integration clusters handed to equation assembly.
//
// A cluster is either trivial (its single integration cell is the uncut background element)
// or non-trivial (its integration cells are cut sub-cells). Both cases share one struct per
// category, discriminated by the Trivial flag. Clusters live in per-category arenas owned by
// the set registry and are referenced by types.ClusterIndex.
package cluster

import (
	"fmt"
	"sort"

	"github.com/notargets/cutcell/cuttopo"
	"github.com/notargets/cutcell/enrich"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

// VolumeCluster groups the integration cells of one interpolation cell
type VolumeCluster struct {
	Index      types.ClusterIndex
	GlobalID   int64 // -1 until global ids are assigned
	InterpCell *enrich.InterpolationCell
	Trivial    bool
	Primary    []*mesh.Cell
	Void       []*mesh.Cell
	Vertices   []int // Ascending vertex indices
}

// SideCell is one side of an integration cell
type SideCell struct {
	Cell    *mesh.Cell
	Ordinal int
}

// SideCluster groups the integration cell sides of one interpolation cell on one facet or interface
type SideCluster struct {
	Index      types.ClusterIndex
	GlobalID   int64
	InterpCell *enrich.InterpolationCell
	Trivial    bool
	Sides      []SideCell
	Vertices   []int
	Volume     types.ClusterIndex // Associated volume cluster
	ChildMesh  *cuttopo.ChildMesh // nil for trivial clusters
}

// DoubleSideCluster pairs the two sides of an interface, Left on the lower phase
type DoubleSideCluster struct {
	Index    types.ClusterIndex
	GlobalID int64
	Left     types.ClusterIndex // Side arena index
	Right    types.ClusterIndex // Side arena index
	Vertices []int
}

// NewTrivialVolume wraps an uncut background element
func NewTrivialVolume(ip *enrich.InterpolationCell, base *mesh.Cell) *VolumeCluster {
	return &VolumeCluster{
		Index:      types.NoCluster,
		GlobalID:   -1,
		InterpCell: ip,
		Trivial:    true,
		Primary:    []*mesh.Cell{base},
		Vertices:   UniqueVertices(base.Vertices),
	}
}

// NewCutVolume restricts a cut element to the subphase sp: its sub-cells are primary,
// all other sub-cells of the element are void
func NewCutVolume(ip *enrich.InterpolationCell, cm *cuttopo.ChildMesh, sp int) *VolumeCluster {
	vc := &VolumeCluster{
		Index:      types.NoCluster,
		GlobalID:   -1,
		InterpCell: ip,
		Primary:    cm.SubphaseCells(sp),
		Vertices:   cm.Vertices(),
	}
	for other := range cm.Subphases {
		if other != sp {
			vc.Void = append(vc.Void, cm.SubphaseCells(other)...)
		}
	}
	return vc
}

// Phase returns the bulk phase of the cluster's interpolation cell
func (vc *VolumeCluster) Phase() types.PhaseIndex { return vc.InterpCell.BulkPhase }

// Base returns the background element of the cluster
func (vc *VolumeCluster) Base() int { return vc.InterpCell.Base }

// Validate checks the trivial/non-trivial cell invariants against the cut topology
func (vc *VolumeCluster) Validate(cut cuttopo.Provider) error {
	if vc.Trivial {
		if len(vc.Primary) != 1 || len(vc.Void) != 0 {
			return fmt.Errorf("trivial cluster %d has %d primary and %d void cells",
				vc.Index, len(vc.Primary), len(vc.Void))
		}
		return nil
	}
	cm := cut.ChildMesh(vc.Base())
	if cm == nil {
		return fmt.Errorf("cluster %d is non-trivial but element %d is uncut", vc.Index, vc.Base())
	}
	seen := make(map[int]int, len(cm.Cells))
	for _, c := range vc.Primary {
		seen[c.ID]++
	}
	for _, c := range vc.Void {
		seen[c.ID]++
	}
	if len(seen) != len(cm.Cells) {
		return fmt.Errorf("cluster %d covers %d of %d sub-cells", vc.Index, len(seen), len(cm.Cells))
	}
	for _, c := range cm.Cells {
		if seen[c.ID] != 1 {
			return fmt.Errorf("cluster %d references sub-cell %d %d times", vc.Index, c.ID, seen[c.ID])
		}
	}
	return nil
}

// NewTrivialSide wraps one facet of an uncut background element
func NewTrivialSide(ip *enrich.InterpolationCell, base *mesh.Cell, ordinal int, volume types.ClusterIndex) *SideCluster {
	return &SideCluster{
		Index:      types.NoCluster,
		GlobalID:   -1,
		InterpCell: ip,
		Trivial:    true,
		Sides:      []SideCell{{Cell: base, Ordinal: ordinal}},
		Vertices:   UniqueVertices(mesh.CellSideVertices(base, ordinal)),
		Volume:     volume,
	}
}

// NewCutSide collects sub-cell sides of one subphase of a cut element
func NewCutSide(ip *enrich.InterpolationCell, cm *cuttopo.ChildMesh, sides []cuttopo.FacetSide,
	volume types.ClusterIndex) *SideCluster {
	sc := &SideCluster{
		Index:      types.NoCluster,
		GlobalID:   -1,
		InterpCell: ip,
		Sides:      make([]SideCell, len(sides)),
		Volume:     volume,
		ChildMesh:  cm,
	}
	var verts []int
	for i, fs := range sides {
		c := cm.Cells[fs.Cell]
		sc.Sides[i] = SideCell{Cell: c, Ordinal: fs.Side}
		verts = append(verts, mesh.CellSideVertices(c, fs.Side)...)
	}
	sc.Vertices = UniqueVertices(verts)
	return sc
}

func (sc *SideCluster) Phase() types.PhaseIndex { return sc.InterpCell.BulkPhase }

func (sc *SideCluster) Base() int { return sc.InterpCell.Base }

// NewDoubleSide pairs two side clusters, the vertex set is the one both sides share
func NewDoubleSide(left, right *SideCluster) *DoubleSideCluster {
	return &DoubleSideCluster{
		Index:    types.NoCluster,
		GlobalID: -1,
		Left:     left.Index,
		Right:    right.Index,
		Vertices: SharedVertices(left.Vertices, right.Vertices),
	}
}

// SharedVertices returns the sorted vertices present in both a and b, without duplicates
func SharedVertices(a, b []int) []int {
	ua, ub := UniqueVertices(a), UniqueVertices(b)
	out := make([]int, 0, len(ua))
	for i, j := 0, 0; i < len(ua) && j < len(ub); {
		switch {
		case ua[i] < ub[j]:
			i++
		case ua[i] > ub[j]:
			j++
		default:
			out = append(out, ua[i])
			i++
			j++
		}
	}
	return out
}

// UniqueVertices returns a sorted copy without duplicates
func UniqueVertices(verts []int) []int {
	out := append([]int(nil), verts...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
