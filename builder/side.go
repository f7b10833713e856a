package builder

import (
	"github.com/notargets/cutcell/cluster"
	"github.com/notargets/cutcell/cuttopo"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/registry"
	"github.com/notargets/cutcell/types"
)

// BuildSideClusters creates the side clusters of every owned facet in the mesh's side sets.
// An uncut facet gives one trivial cluster in x_n_p<k>. A cut facet gives one cluster per subphase
// with sub-cell sides on it, in x_c_p<k>; subphases without sides there contribute nothing.
func BuildSideClusters(sc SetupContext, reg *registry.Registry, vi *VolumeIndex) (counts BuildCounts) {
	for _, x := range sc.Mesh.SideSetNames() {
		for _, side := range sc.Mesh.SideSet(x) {
			elem := side.Element
			if !sc.Mesh.Owns(elem) {
				continue
			}
			if !sc.Cut.HasChildren(elem) {
				vols := vi.ForElement(elem)
				fault.Assert(len(vols) > 0, "side set %q: no volume cluster for element %d", x, elem)
				vc := reg.Volume(vols[0])
				idx := reg.AddSideCluster(cluster.NewTrivialSide(vc.InterpCell, sc.Mesh.Element(elem), side.Ordinal, vols[0]))
				reg.AddMember(types.SideSet, splitOrdinal(reg, types.SideSet, x, false, vc.Phase()), idx)
				counts.Trivial++
				continue
			}
			cm := sc.Cut.ChildMesh(elem)
			for sp, sides := range groupBySubphase(cm, sc.Cut.CellsOnParentFacet(elem, side.Ordinal)) {
				if len(sides) == 0 {
					continue
				}
				vidx := vi.ForSubphase(cm.Subphases[sp].ID)
				fault.Assert(vidx != types.NoCluster, "side set %q: no volume cluster for subphase %d of element %d",
					x, cm.Subphases[sp].ID, elem)
				vc := reg.Volume(vidx)
				idx := reg.AddSideCluster(cluster.NewCutSide(vc.InterpCell, cm, sides, vidx))
				reg.AddMember(types.SideSet, splitOrdinal(reg, types.SideSet, x, true, vc.Phase()), idx)
				counts.Cut++
			}
		}
	}
	return
}

// groupBySubphase splits facet sides by the local subphase of their cell, keeping their order
func groupBySubphase(cm *cuttopo.ChildMesh, sides []cuttopo.FacetSide) [][]cuttopo.FacetSide {
	groups := make([][]cuttopo.FacetSide, len(cm.Subphases))
	for _, fs := range sides {
		sp := cm.SubphaseOfCell(fs.Cell)
		groups[sp] = append(groups[sp], fs)
	}
	return groups
}
