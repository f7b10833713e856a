package types

// PhaseIndex is a bulk phase id, also used as the "color" of a set
type PhaseIndex int

// SetOrdinal is the position of a named set within its category, assigned in registration order
type SetOrdinal int

// ClusterIndex addresses a cluster in its category's arena
type ClusterIndex int

// SubphaseID is a mesh-wide subphase id handed out by the cut topology
type SubphaseID int

// FieldID addresses a field attached to the registry
type FieldID int

const (
	NoSubphase SubphaseID   = -1
	NoCluster  ClusterIndex = -1
	AllPhases  PhaseIndex   = -1
)

type SetCategory uint8

const (
	BlockSet SetCategory = iota
	SideSet
	DoubleSideSet
	NumSetCategories
)

func (c SetCategory) String() string {
	switch c {
	case BlockSet:
		return "BlockSet"
	case SideSet:
		return "SideSet"
	case DoubleSideSet:
		return "DoubleSideSet"
	}
	return "UnknownSetCategory"
}

// Categories lists every set category in registry order
func Categories() []SetCategory {
	return []SetCategory{BlockSet, SideSet, DoubleSideSet}
}
