package registry

import (
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/types"
)

// colorIndex maps phase -> ascending set ordinals. It is the row compression of the
// phase x set incidence matrix built from the sets' color vectors.
type colorIndex struct {
	rowPtr []int
	sets   []types.SetOrdinal
}

func newColorIndex(numPhases int, sets []*Set) *colorIndex {
	ci := &colorIndex{rowPtr: make([]int, numPhases+1)}
	var nnz int
	for _, s := range sets {
		nnz += len(s.Colors)
	}
	if numPhases == 0 || nnz == 0 {
		return ci
	}
	inc := sparse.NewDOK(numPhases, len(sets))
	for _, s := range sets {
		for _, c := range s.Colors {
			inc.Set(int(c), int(s.Ordinal), 1)
		}
	}
	raw := inc.ToCSR().RawMatrix()
	copy(ci.rowPtr, raw.Indptr)
	ci.sets = make([]types.SetOrdinal, len(raw.Ind))
	for i, col := range raw.Ind {
		ci.sets[i] = types.SetOrdinal(col)
	}
	for p := 0; p < numPhases; p++ {
		row := ci.sets[ci.rowPtr[p]:ci.rowPtr[p+1]]
		sort.Slice(row, func(a, b int) bool { return row[a] < row[b] })
	}
	return ci
}

func (ci *colorIndex) row(p types.PhaseIndex) []types.SetOrdinal {
	return ci.sets[ci.rowPtr[p]:ci.rowPtr[p+1]]
}

// RebuildColorIndex re-derives the phase -> set inversion of one category from the current color vectors
func (r *Registry) RebuildColorIndex(cat types.SetCategory) {
	st := r.table(cat)
	st.colors = newColorIndex(r.numPhases, st.sets)
}

// SetsByColor returns the ordinals of every set whose color vector contains phase p, ascending.
// Querying a stale index is fatal.
func (r *Registry) SetsByColor(cat types.SetCategory, p types.PhaseIndex) []types.SetOrdinal {
	st := r.table(cat)
	fault.Assert(st.colors != nil, "%s color index is stale", cat)
	fault.Assert(p >= 0 && int(p) < r.numPhases, "unknown color %d, have %d phases", p, r.numPhases)
	return append([]types.SetOrdinal(nil), st.colors.row(p)...)
}

// ColorIndexValid reports whether the category's Color Index reflects the current sets
func (r *Registry) ColorIndexValid(cat types.SetCategory) bool { return r.table(cat).colors != nil }
