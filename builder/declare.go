package builder

import (
	"github.com/notargets/cutcell/registry"
	"github.com/notargets/cutcell/types"
)

// DeclareSets registers every set name with its colors. The names depend only on the number of
// bulk phases and the mesh's input set names, so ordinals agree on all partitions.
// Order: block splits; side splits followed by the directional interface sets; double-side sets.
// nFacet is the number of facet split side sets, the ordinals below the first interface set.
func DeclareSets(sc SetupContext, reg *registry.Registry) (nFacet int) {
	n := reg.NumPhases()
	for _, x := range sc.Mesh.BlockSetNames() {
		names, colors := registry.SplitSetNames(x, n)
		for i, ord := range reg.RegisterNames(types.BlockSet, names) {
			reg.SetColor(types.BlockSet, ord, colors[i])
		}
	}
	for _, x := range sc.Mesh.SideSetNames() {
		names, colors := registry.SplitSetNames(x, n)
		for i, ord := range reg.RegisterNames(types.SideSet, names) {
			reg.SetColor(types.SideSet, ord, colors[i])
		}
	}
	nFacet = reg.NumSets(types.SideSet)
	inames, dirs := registry.InterfaceSideSetNames(n)
	for i, ord := range reg.RegisterPairSets(types.SideSet, inames, dirs) {
		reg.SetColor(types.SideSet, ord, dirs[i].Left)
	}
	dnames, pairs := registry.DoubleSideSetNames(n)
	for i, ord := range reg.RegisterPairSets(types.DoubleSideSet, dnames, pairs) {
		reg.SetColor(types.DoubleSideSet, ord, pairs[i].Left, pairs[i].Right)
	}
	return
}

// splitOrdinal is the ordinal of x_c_p<k> or x_n_p<k>
func splitOrdinal(reg *registry.Registry, cat types.SetCategory, x string, cut bool, k types.PhaseIndex) types.SetOrdinal {
	variant := registry.NoChildSetName(x)
	if cut {
		variant = registry.ChildSetName(x)
	}
	return reg.MustOrdinal(cat, registry.PhaseSetName(variant, k))
}
