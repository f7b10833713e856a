package builder

import (
	"github.com/notargets/cutcell/cluster"
	"github.com/notargets/cutcell/cuttopo"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/registry"
	"github.com/notargets/cutcell/types"
)

// interfaceGroup collects the interface pairs between two subphases of one element,
// oriented so that subphase lo carries the lower bulk phase
type interfaceGroup struct {
	lo, hi           int // Local subphase indices
	loSides, hiSides []cuttopo.FacetSide
}

// BuildDoubleSideClusters creates one double-side cluster per pair of adjacent subphases in every
// owned cut element. The left side is always on the lower bulk phase; pairs the cutter emitted in
// the opposite order are swapped. The number of swapped pairs is returned with the counts.
func BuildDoubleSideClusters(sc SetupContext, reg *registry.Registry, vi *VolumeIndex) (counts BuildCounts, swapped int) {
	for _, elem := range sc.Cut.CutElements() {
		if !sc.Mesh.Owns(elem) {
			continue
		}
		cm := sc.Cut.ChildMesh(elem)
		var (
			groups []*interfaceGroup
			byPair = make(map[[2]int]*interfaceGroup)
		)
		for _, ip := range sc.Cut.InterfaceCellPairs(elem) {
			pa := cm.Subphases[ip.SubphaseA].BulkPhase
			pb := cm.Subphases[ip.SubphaseB].BulkPhase
			fault.Assert(pa != pb, "element %d: interface between subphases %d and %d inside phase %d",
				elem, ip.SubphaseA, ip.SubphaseB, pa)
			lo := cuttopo.FacetSide{Cell: ip.CellA, Side: ip.SideA}
			hi := cuttopo.FacetSide{Cell: ip.CellB, Side: ip.SideB}
			spLo, spHi := ip.SubphaseA, ip.SubphaseB
			if pa > pb {
				lo, hi = hi, lo
				spLo, spHi = spHi, spLo
				swapped++
			}
			key := [2]int{spLo, spHi}
			g, ok := byPair[key]
			if !ok {
				g = &interfaceGroup{lo: spLo, hi: spHi}
				byPair[key] = g
				groups = append(groups, g)
			}
			g.loSides = append(g.loSides, lo)
			g.hiSides = append(g.hiSides, hi)
		}
		for _, g := range groups {
			left := interfaceSide(reg, vi, cm, g.lo, g.loSides)
			right := interfaceSide(reg, vi, cm, g.hi, g.hiSides)
			idx := reg.AddDoubleSideCluster(cluster.NewDoubleSide(reg.Side(left), reg.Side(right)))
			pp := types.PhasePair{Left: cm.Subphases[g.lo].BulkPhase, Right: cm.Subphases[g.hi].BulkPhase}
			reg.AddMember(types.DoubleSideSet, reg.MustPairOrdinal(types.DoubleSideSet, pp), idx)
			counts.Cut++
		}
	}
	return
}

func interfaceSide(reg *registry.Registry, vi *VolumeIndex, cm *cuttopo.ChildMesh, sp int,
	sides []cuttopo.FacetSide) types.ClusterIndex {
	vidx := vi.ForSubphase(cm.Subphases[sp].ID)
	fault.Assert(vidx != types.NoCluster, "no volume cluster for subphase %d of element %d",
		cm.Subphases[sp].ID, cm.Parent)
	return reg.AddSideCluster(cluster.NewCutSide(reg.Volume(vidx).InterpCell, cm, sides, vidx))
}
