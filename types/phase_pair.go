package types

// PhasePair names the two bulk phases of an interface set: the phase of a directional side set and
// the phase it faces, or the left and right phases of a double-side set. It keys the registry's
// lookup of interface sets by phase pair.
type PhasePair struct {
	Left, Right PhaseIndex
}

func (pp PhasePair) Reversed() PhasePair { return PhasePair{Left: pp.Right, Right: pp.Left} }

// Ordered returns the pair with the lower phase on the left
func (pp PhasePair) Ordered() PhasePair {
	if pp.Left > pp.Right {
		return pp.Reversed()
	}
	return pp
}

func (pp PhasePair) IsOrdered() bool { return pp.Left < pp.Right }
