package builder

import (
	"github.com/notargets/cutcell/cluster"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/registry"
	"github.com/notargets/cutcell/types"
)

// VolumeIndex finds the volume clusters of a subphase or background element
type VolumeIndex struct {
	bySubphase map[types.SubphaseID]types.ClusterIndex
	byElement  map[int][]types.ClusterIndex
}

func newVolumeIndex() *VolumeIndex {
	return &VolumeIndex{
		bySubphase: make(map[types.SubphaseID]types.ClusterIndex),
		byElement:  make(map[int][]types.ClusterIndex),
	}
}

// ForSubphase returns the first volume cluster built for the subphase, or NoCluster
func (vi *VolumeIndex) ForSubphase(id types.SubphaseID) types.ClusterIndex {
	if idx, ok := vi.bySubphase[id]; ok {
		return idx
	}
	return types.NoCluster
}

// ForElement returns the volume clusters of a background element in build order
func (vi *VolumeIndex) ForElement(elem int) []types.ClusterIndex { return vi.byElement[elem] }

type BuildCounts struct {
	Trivial, Cut int
}

// BuildVolumeClusters creates one volume cluster per enriched cell of an owned base element and
// adds it to the split block sets of every block set containing the element.
// An enriched cell naming a subphase its base element's cut topology lacks is fatal.
func BuildVolumeClusters(sc SetupContext, reg *registry.Registry) (*VolumeIndex, BuildCounts) {
	var (
		vi     = newVolumeIndex()
		counts BuildCounts
	)
	for _, ip := range sc.Enriched.Cells() {
		base := ip.Base
		if !sc.Mesh.Owns(base) {
			continue
		}
		var vc *cluster.VolumeCluster
		if !sc.Cut.HasChildren(base) {
			vc = cluster.NewTrivialVolume(ip, sc.Mesh.Element(base))
			counts.Trivial++
		} else {
			cm := sc.Cut.ChildMesh(base)
			sp, ok := cm.SubphaseIndex(ip.Subphase)
			fault.Assert(ok, "interpolation cell %d declares subphase %d, not in the cut topology of element %d",
				ip.Index, ip.Subphase, base)
			fault.Assert(cm.Subphases[sp].BulkPhase == ip.BulkPhase,
				"interpolation cell %d has phase %d, subphase %d of element %d has phase %d",
				ip.Index, ip.BulkPhase, ip.Subphase, base, cm.Subphases[sp].BulkPhase)
			vc = cluster.NewCutVolume(ip, cm, sp)
			counts.Cut++
		}
		idx := reg.AddVolumeCluster(vc)
		vi.byElement[base] = append(vi.byElement[base], idx)
		if ip.Subphase != types.NoSubphase {
			if _, seen := vi.bySubphase[ip.Subphase]; !seen {
				vi.bySubphase[ip.Subphase] = idx
			}
		}
	}

	for _, x := range sc.Mesh.BlockSetNames() {
		for _, elem := range sc.Mesh.BlockSet(x) {
			if !sc.Mesh.Owns(elem) {
				continue
			}
			cut := sc.Cut.HasChildren(elem)
			for _, idx := range vi.ForElement(elem) {
				ord := splitOrdinal(reg, types.BlockSet, x, cut, reg.Volume(idx).Phase())
				reg.AddMember(types.BlockSet, ord, idx)
			}
		}
	}
	return vi, counts
}
