package registry

import (
	"context"
	"fmt"

	"github.com/notargets/cutcell/cluster"
	"github.com/notargets/cutcell/comm"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

// finish rebuilds the Color Index after a structural change. A change to a registry that was
// already committed as a whole is a revision.
func (r *Registry) finish(cat types.SetCategory, revising bool) {
	if revising {
		r.revise()
		return
	}
	r.RebuildColorIndex(cat)
}

func (r *Registry) committedAsWhole() bool { return r.state >= Committed }

func (r *Registry) commitInOrder(cat types.SetCategory, ords []types.SetOrdinal) {
	for _, ord := range ords {
		if !r.SetByOrdinal(cat, ord).committed {
			r.Commit(cat, ord)
		}
	}
}

// DeriveInterfaceSideSets fills the directional side sets iside_b0_i_b1_j and iside_b0_j_b1_i
// from the committed double-side set of each phase pair i < j: left sides go to (i,j), right sides
// to (j,i). Members are the existing side cluster indices. Names not yet registered are registered
// for pairs that have a double-side set. Already committed interface sets are left as they are.
func (r *Registry) DeriveInterfaceSideSets() (derived []types.SetOrdinal) {
	revising := r.committedAsWhole()
	_, pairs := DoubleSideSetNames(r.numPhases)
	for _, pp := range pairs {
		var dbl *Set
		dblOrd, haveDbl := r.PairOrdinal(types.DoubleSideSet, pp)
		if haveDbl {
			dbl = r.SetByOrdinal(types.DoubleSideSet, dblOrd)
			fault.Assert(dbl.committed, "double-side set %q must be committed before deriving interface sides", dbl.Name)
		}
		for dir, dp := range [2]types.PhasePair{pp, pp.Reversed()} {
			ord, ok := r.PairOrdinal(types.SideSet, dp)
			if !ok {
				if !haveDbl {
					continue
				}
				ord = r.RegisterPairSets(types.SideSet,
					[]string{InterfaceSideSetName(dp.Left, dp.Right)}, []types.PhasePair{dp})[0]
			}
			s := r.SetByOrdinal(types.SideSet, ord)
			if s.committed {
				continue
			}
			if len(s.Colors) == 0 {
				r.SetColor(types.SideSet, ord, dp.Left)
			}
			if haveDbl {
				for _, m := range dbl.Members {
					dc := r.doubles[m]
					if dir == 0 {
						r.AddMember(types.SideSet, ord, dc.Left)
					} else {
						r.AddMember(types.SideSet, ord, dc.Right)
					}
				}
			}
			derived = append(derived, ord)
		}
	}
	if len(derived) == 0 {
		return
	}
	sortOrdinals(derived)
	r.commitInOrder(types.SideSet, derived)
	r.finish(types.SideSet, revising)
	return
}

// CreateReversedDoubleSideSet adds dbl_iside_p0_j_p1_i for i < j, holding a copy of every
// (i,j) double-side cluster with left and right exchanged. The side clusters are shared.
func (r *Registry) CreateReversedDoubleSideSet(i, j types.PhaseIndex) types.SetOrdinal {
	fault.Assert(i < j, "reversed double-side set needs i < j, have %d and %d", i, j)
	revising := r.committedAsWhole()
	pp := types.PhasePair{Left: i, Right: j}
	srcOrd, ok := r.PairOrdinal(types.DoubleSideSet, pp)
	fault.Assert(ok, "no double-side set for phases %d and %d", i, j)
	src := r.SetByOrdinal(types.DoubleSideSet, srcOrd)
	fault.Assert(src.committed, "double-side set %q is not committed", src.Name)
	r.requireCommitted(types.DoubleSideSet)
	ord := r.RegisterPairSets(types.DoubleSideSet,
		[]string{DoubleSideSetName(j, i)}, []types.PhasePair{pp.Reversed()})[0]
	r.SetColor(types.DoubleSideSet, ord, j, i)
	for _, m := range src.Members {
		dc := r.doubles[m]
		rev := cluster.NewDoubleSide(r.sides[dc.Right], r.sides[dc.Left])
		r.AddMember(types.DoubleSideSet, ord, r.AddDoubleSideCluster(rev))
	}
	r.Commit(types.DoubleSideSet, ord)
	r.finish(types.DoubleSideSet, revising)
	return ord
}

// DeactivateEmptySets removes every set whose member count summed over all partitions is zero.
// Surviving sets keep their relative order and are renumbered, recommitted and re-indexed.
// All partitions must call it together; the removed names are returned per category.
func (r *Registry) DeactivateEmptySets(ctx context.Context, c comm.Communicator) (
	removed [types.NumSetCategories][]string, err error) {
	var counts []int64
	for _, cat := range types.Categories() {
		r.requireCommitted(cat)
		for _, s := range r.tables[cat].sets {
			counts = append(counts, int64(len(s.Members)))
		}
	}
	global, err := c.AllReduceSum(ctx, counts)
	if err != nil {
		return removed, fmt.Errorf("reducing set sizes: %w", err)
	}
	fault.Assert(len(global) == len(counts), "reduced %d set sizes, have %d sets", len(global), len(counts))

	var (
		fresh [types.NumSetCategories]*setTable
		n     int
	)
	for _, cat := range types.Categories() {
		nt := newSetTable(cat)
		for _, s := range r.tables[cat].sets {
			if global[n] == 0 {
				removed[cat] = append(removed[cat], s.Name)
			} else {
				ord := types.SetOrdinal(len(nt.sets))
				nt.sets = append(nt.sets, &Set{
					Name:      s.Name,
					Ordinal:   ord,
					Category:  cat,
					Colors:    s.Colors,
					Members:   s.Members,
					Pair:      s.Pair,
					committed: true,
				})
				nt.byName[s.Name] = ord
				if s.Pair != nil {
					nt.byPair[*s.Pair] = ord
				}
			}
			n++
		}
		nt.numCommitted = len(nt.sets)
		fresh[cat] = nt
	}
	r.tables = fresh
	r.revise()
	return removed, nil
}

// DeriveSideSetFromDoubleSideSet flattens a double-side set into a side set holding the left and
// right side of every pair, colored like the double-side set
func (r *Registry) DeriveSideSetFromDoubleSideSet(ord types.SetOrdinal, name string) types.SetOrdinal {
	revising := r.committedAsWhole()
	src := r.SetByOrdinal(types.DoubleSideSet, ord)
	fault.Assert(src.committed, "double-side set %q is not committed", src.Name)
	r.requireCommitted(types.SideSet)
	nord := r.RegisterNames(types.SideSet, []string{name})[0]
	if len(src.Colors) > 0 {
		r.SetColor(types.SideSet, nord, src.Colors...)
	}
	for _, m := range src.Members {
		dc := r.doubles[m]
		r.AddMember(types.SideSet, nord, dc.Left)
		r.AddMember(types.SideSet, nord, dc.Right)
	}
	r.Commit(types.SideSet, nord)
	r.finish(types.SideSet, revising)
	return nord
}

// DeriveBlockSetFromSideSet creates a block set of trivial volume clusters, one per distinct
// background element touched by the side set, colored like the side set
func (r *Registry) DeriveBlockSetFromSideSet(ord types.SetOrdinal, name string, adapter mesh.Adapter) types.SetOrdinal {
	revising := r.committedAsWhole()
	src := r.SetByOrdinal(types.SideSet, ord)
	fault.Assert(src.committed, "side set %q is not committed", src.Name)
	r.requireCommitted(types.BlockSet)
	nord := r.RegisterNames(types.BlockSet, []string{name})[0]
	if len(src.Colors) > 0 {
		r.SetColor(types.BlockSet, nord, src.Colors...)
	}
	seen := make(map[int]bool)
	for _, m := range src.Members {
		sc := r.sides[m]
		base := sc.Base()
		if seen[base] {
			continue
		}
		seen[base] = true
		// a line has no interior to cluster
		if et := adapter.ElementType(base); et == mesh.Line {
			fault.NotImplemented("block set %q from side set %q: %s elements", name, src.Name, et)
		}
		vc := cluster.NewTrivialVolume(sc.InterpCell, adapter.Element(base))
		r.AddMember(types.BlockSet, nord, r.AddVolumeCluster(vc))
	}
	r.Commit(types.BlockSet, nord)
	r.finish(types.BlockSet, revising)
	return nord
}
