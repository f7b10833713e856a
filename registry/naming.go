package registry

import (
	"fmt"

	"github.com/notargets/cutcell/types"
)

const (
	childSuffix   = "_c"
	noChildSuffix = "_n"
)

// ChildSetName is the variant of set x holding clusters of cut elements
func ChildSetName(x string) string { return x + childSuffix }

// NoChildSetName is the variant of set x holding clusters of uncut elements
func NoChildSetName(x string) string { return x + noChildSuffix }

// PhaseSetName restricts a set variant to bulk phase k
func PhaseSetName(variant string, k types.PhaseIndex) string {
	return fmt.Sprintf("%s_p%d", variant, k)
}

// SplitSetNames returns the phase split of input set x, interleaved per phase:
// x_c_p0, x_n_p0, x_c_p1, x_n_p1, ... The colors slice gives the phase of each name.
func SplitSetNames(x string, numPhases int) (names []string, colors []types.PhaseIndex) {
	for k := types.PhaseIndex(0); int(k) < numPhases; k++ {
		names = append(names, PhaseSetName(ChildSetName(x), k), PhaseSetName(NoChildSetName(x), k))
		colors = append(colors, k, k)
	}
	return
}

// InterfaceSideSetName is the directional side set of phase i facing phase j
func InterfaceSideSetName(i, j types.PhaseIndex) string {
	return fmt.Sprintf("iside_b0_%d_b1_%d", i, j)
}

// DoubleSideSetName pairs phase i (left) with phase j (right)
func DoubleSideSetName(i, j types.PhaseIndex) string {
	return fmt.Sprintf("dbl_iside_p0_%d_p1_%d", i, j)
}

// InterfaceSideSetNames lists every directional pair i != j, i outer
func InterfaceSideSetNames(numPhases int) (names []string, pairs []types.PhasePair) {
	for i := types.PhaseIndex(0); int(i) < numPhases; i++ {
		for j := types.PhaseIndex(0); int(j) < numPhases; j++ {
			if i == j {
				continue
			}
			names = append(names, InterfaceSideSetName(i, j))
			pairs = append(pairs, types.PhasePair{Left: i, Right: j})
		}
	}
	return
}

// DoubleSideSetNames lists one name per unordered pair, i < j
func DoubleSideSetNames(numPhases int) (names []string, pairs []types.PhasePair) {
	for i := types.PhaseIndex(0); int(i) < numPhases; i++ {
		for j := i + 1; int(j) < numPhases; j++ {
			names = append(names, DoubleSideSetName(i, j))
			pairs = append(pairs, types.PhasePair{Left: i, Right: j})
		}
	}
	return
}
