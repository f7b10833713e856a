// Package registry owns the integration clusters of one partition and the named sets that group them.
//
// Sets are registered by name per category, which fixes their ordinal. Builders then add cluster
// indices to them and each set is committed, after which its membership is frozen. Every set
// carries a color vector of bulk phases, inverted into a Color Index per category so that all
// sets touching a phase can be retrieved directly.
//
// The registry is mutated only by the setup pass of its own partition.
package registry

import (
	"github.com/notargets/cutcell/cluster"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/types"
)

type State uint8

const (
	Empty State = iota
	Declared
	Populated
	Committed
	Revised
)

func (s State) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Declared:
		return "Declared"
	case Populated:
		return "Populated"
	case Committed:
		return "Committed"
	case Revised:
		return "Revised"
	}
	return "UnknownState"
}

// Set is a named group of clusters of one category
type Set struct {
	Name      string
	Ordinal   types.SetOrdinal
	Category  types.SetCategory
	Colors    []types.PhaseIndex
	Members   []types.ClusterIndex // Arena indices of the set's category
	Pair      *types.PhasePair     // Interface sets only
	committed bool
}

func (s *Set) Committed() bool { return s.committed }

func (s *Set) Size() int { return len(s.Members) }

// HasColor reports whether p is in the set's color vector
func (s *Set) HasColor(p types.PhaseIndex) bool {
	for _, c := range s.Colors {
		if c == p {
			return true
		}
	}
	return false
}

type setTable struct {
	cat          types.SetCategory
	sets         []*Set
	byName       map[string]types.SetOrdinal
	byPair       map[types.PhasePair]types.SetOrdinal
	numCommitted int
	colors       *colorIndex // nil when stale
}

func newSetTable(cat types.SetCategory) *setTable {
	return &setTable{
		cat:    cat,
		byName: make(map[string]types.SetOrdinal),
		byPair: make(map[types.PhasePair]types.SetOrdinal),
	}
}

func (st *setTable) set(ord types.SetOrdinal) *Set {
	fault.Assert(ord >= 0 && int(ord) < len(st.sets),
		"%s ordinal %d out of range [0,%d)", st.cat, ord, len(st.sets))
	return st.sets[ord]
}

type Registry struct {
	numPhases int
	tables    [types.NumSetCategories]*setTable
	state     State

	volumes []*cluster.VolumeCluster
	sides   []*cluster.SideCluster
	doubles []*cluster.DoubleSideCluster

	fields     []*Field
	fieldNames map[string]types.FieldID
}

// New creates an empty registry for a mesh with numPhases bulk phases
func New(numPhases int) *Registry {
	fault.Assert(numPhases > 0, "registry needs at least one bulk phase, have %d", numPhases)
	r := &Registry{
		numPhases:  numPhases,
		fieldNames: make(map[string]types.FieldID),
	}
	for _, cat := range types.Categories() {
		r.tables[cat] = newSetTable(cat)
	}
	return r
}

func (r *Registry) NumPhases() int { return r.numPhases }

func (r *Registry) State() State { return r.state }

func (r *Registry) table(cat types.SetCategory) *setTable {
	fault.Assert(cat < types.NumSetCategories, "unknown set category %d", cat)
	return r.tables[cat]
}

// RegisterNames appends one set per name and returns their ordinals in order.
// A name already present in the category is fatal.
func (r *Registry) RegisterNames(cat types.SetCategory, names []string) []types.SetOrdinal {
	st := r.table(cat)
	ords := make([]types.SetOrdinal, len(names))
	for i, name := range names {
		_, dup := st.byName[name]
		fault.Assert(!dup, "duplicate %s name %q", cat, name)
		ord := types.SetOrdinal(len(st.sets))
		st.sets = append(st.sets, &Set{Name: name, Ordinal: ord, Category: cat})
		st.byName[name] = ord
		ords[i] = ord
	}
	st.colors = nil
	if r.state == Empty && len(names) > 0 {
		r.state = Declared
	}
	return ords
}

// RegisterPairSets registers interface sets, each named for one phase pair, and indexes them by pair.
// A pair already present in the category is fatal.
func (r *Registry) RegisterPairSets(cat types.SetCategory, names []string, pairs []types.PhasePair) []types.SetOrdinal {
	fault.Assert(len(names) == len(pairs), "%d %s names for %d phase pairs", len(names), cat, len(pairs))
	st := r.table(cat)
	for _, pp := range pairs {
		_, dup := st.byPair[pp]
		fault.Assert(!dup, "duplicate %s phase pair (%d,%d)", cat, pp.Left, pp.Right)
	}
	ords := r.RegisterNames(cat, names)
	for i, ord := range ords {
		pp := pairs[i]
		st.sets[ord].Pair = &pp
		st.byPair[pp] = ord
	}
	return ords
}

// PairOrdinal finds the interface set registered for a phase pair; direction matters
func (r *Registry) PairOrdinal(cat types.SetCategory, pp types.PhasePair) (types.SetOrdinal, bool) {
	ord, ok := r.table(cat).byPair[pp]
	return ord, ok
}

func (r *Registry) MustPairOrdinal(cat types.SetCategory, pp types.PhasePair) types.SetOrdinal {
	ord, ok := r.PairOrdinal(cat, pp)
	fault.Assert(ok, "no %s for phase pair (%d,%d)", cat, pp.Left, pp.Right)
	return ord
}

// AddMember appends an arena index to an uncommitted set
func (r *Registry) AddMember(cat types.SetCategory, ord types.SetOrdinal, idx types.ClusterIndex) {
	s := r.table(cat).set(ord)
	fault.Assert(!s.committed, "%s %q is committed, cannot add cluster %d", cat, s.Name, idx)
	fault.Assert(idx >= 0 && int(idx) < r.NumClusters(cat),
		"%s %q: cluster index %d out of range [0,%d)", cat, s.Name, idx, r.NumClusters(cat))
	s.Members = append(s.Members, idx)
	if r.state == Declared {
		r.state = Populated
	}
}

// SetColor assigns the color vector of a set. It may be called once per set.
func (r *Registry) SetColor(cat types.SetCategory, ord types.SetOrdinal, colors ...types.PhaseIndex) {
	st := r.table(cat)
	s := st.set(ord)
	fault.Assert(len(s.Colors) == 0, "%s %q already has colors %v", cat, s.Name, s.Colors)
	fault.Assert(len(colors) > 0, "%s %q: empty color vector", cat, s.Name)
	for _, c := range colors {
		fault.Assert(c >= 0 && int(c) < r.numPhases,
			"%s %q: unknown color %d, have %d phases", cat, s.Name, c, r.numPhases)
	}
	s.Colors = append([]types.PhaseIndex(nil), colors...)
	st.colors = nil
}

// Commit freezes a set. Sets are committed append-only: ord must be the lowest uncommitted ordinal.
func (r *Registry) Commit(cat types.SetCategory, ord types.SetOrdinal) {
	st := r.table(cat)
	s := st.set(ord)
	fault.Assert(int(ord) == st.numCommitted,
		"%s %q: commit of ordinal %d out of order, next is %d", cat, s.Name, ord, st.numCommitted)
	s.committed = true
	st.numCommitted++
	st.colors = nil
	r.updateCommitState()
}

// CommitAll commits every remaining set of the category in ordinal order and rebuilds its Color Index
func (r *Registry) CommitAll(cat types.SetCategory) {
	st := r.table(cat)
	for st.numCommitted < len(st.sets) {
		r.Commit(cat, types.SetOrdinal(st.numCommitted))
	}
	r.RebuildColorIndex(cat)
}

func (r *Registry) updateCommitState() {
	if r.state == Committed || r.state == Revised {
		return
	}
	for _, st := range r.tables {
		if st.numCommitted != len(st.sets) {
			return
		}
	}
	r.state = Committed
}

// revise marks the end of a maintenance operation
func (r *Registry) revise() {
	for _, cat := range types.Categories() {
		r.RebuildColorIndex(cat)
	}
	r.state = Revised
}

func (r *Registry) NumSets(cat types.SetCategory) int { return len(r.table(cat).sets) }

func (r *Registry) NumCommitted(cat types.SetCategory) int { return r.table(cat).numCommitted }

// Sets returns the sets of a category in ordinal order
func (r *Registry) Sets(cat types.SetCategory) []*Set { return r.table(cat).sets }

func (r *Registry) SetByOrdinal(cat types.SetCategory, ord types.SetOrdinal) *Set {
	return r.table(cat).set(ord)
}

func (r *Registry) Ordinal(cat types.SetCategory, name string) (types.SetOrdinal, bool) {
	ord, ok := r.table(cat).byName[name]
	return ord, ok
}

func (r *Registry) SetByName(cat types.SetCategory, name string) (*Set, bool) {
	st := r.table(cat)
	ord, ok := st.byName[name]
	if !ok {
		return nil, false
	}
	return st.sets[ord], true
}

// MustOrdinal is Ordinal for names the caller registered itself
func (r *Registry) MustOrdinal(cat types.SetCategory, name string) types.SetOrdinal {
	ord, ok := r.Ordinal(cat, name)
	fault.Assert(ok, "no %s named %q", cat, name)
	return ord
}

func (r *Registry) AddVolumeCluster(vc *cluster.VolumeCluster) types.ClusterIndex {
	vc.Index = types.ClusterIndex(len(r.volumes))
	r.volumes = append(r.volumes, vc)
	return vc.Index
}

func (r *Registry) AddSideCluster(sc *cluster.SideCluster) types.ClusterIndex {
	sc.Index = types.ClusterIndex(len(r.sides))
	r.sides = append(r.sides, sc)
	return sc.Index
}

func (r *Registry) AddDoubleSideCluster(dc *cluster.DoubleSideCluster) types.ClusterIndex {
	fault.Assert(dc.Left >= 0 && int(dc.Left) < len(r.sides) && dc.Right >= 0 && int(dc.Right) < len(r.sides),
		"double-side cluster references sides %d/%d, have %d side clusters", dc.Left, dc.Right, len(r.sides))
	dc.Index = types.ClusterIndex(len(r.doubles))
	r.doubles = append(r.doubles, dc)
	return dc.Index
}

func (r *Registry) Volume(idx types.ClusterIndex) *cluster.VolumeCluster {
	fault.Assert(idx >= 0 && int(idx) < len(r.volumes), "volume cluster %d out of range [0,%d)", idx, len(r.volumes))
	return r.volumes[idx]
}

func (r *Registry) Side(idx types.ClusterIndex) *cluster.SideCluster {
	fault.Assert(idx >= 0 && int(idx) < len(r.sides), "side cluster %d out of range [0,%d)", idx, len(r.sides))
	return r.sides[idx]
}

func (r *Registry) DoubleSide(idx types.ClusterIndex) *cluster.DoubleSideCluster {
	fault.Assert(idx >= 0 && int(idx) < len(r.doubles), "double-side cluster %d out of range [0,%d)", idx, len(r.doubles))
	return r.doubles[idx]
}

// NumClusters returns the arena size of the category's cluster kind
func (r *Registry) NumClusters(cat types.SetCategory) int {
	switch cat {
	case types.BlockSet:
		return len(r.volumes)
	case types.SideSet:
		return len(r.sides)
	case types.DoubleSideSet:
		return len(r.doubles)
	}
	fault.Panicf("unknown set category %d", cat)
	return 0
}

// VolumeClusters, SideClusters and DoubleSideClusters resolve a set's members
func (r *Registry) VolumeClusters(ord types.SetOrdinal) []*cluster.VolumeCluster {
	s := r.SetByOrdinal(types.BlockSet, ord)
	out := make([]*cluster.VolumeCluster, len(s.Members))
	for i, idx := range s.Members {
		out[i] = r.volumes[idx]
	}
	return out
}

func (r *Registry) SideClusters(ord types.SetOrdinal) []*cluster.SideCluster {
	s := r.SetByOrdinal(types.SideSet, ord)
	out := make([]*cluster.SideCluster, len(s.Members))
	for i, idx := range s.Members {
		out[i] = r.sides[idx]
	}
	return out
}

func (r *Registry) DoubleSideClusters(ord types.SetOrdinal) []*cluster.DoubleSideCluster {
	s := r.SetByOrdinal(types.DoubleSideSet, ord)
	out := make([]*cluster.DoubleSideCluster, len(s.Members))
	for i, idx := range s.Members {
		out[i] = r.doubles[idx]
	}
	return out
}

func (r *Registry) requireCommitted(cat types.SetCategory) {
	st := r.table(cat)
	fault.Assert(st.numCommitted == len(st.sets),
		"%s: %d of %d sets committed", cat, st.numCommitted, len(st.sets))
}
