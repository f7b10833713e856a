package registry

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/notargets/cutcell/types"
)

type SetReport struct {
	Name     string
	Ordinal  types.SetOrdinal
	Colors   []types.PhaseIndex
	Members  int
	Capacity int
}

type CategoryReport struct {
	Category      types.SetCategory
	Sets          []SetReport
	Clusters      int // Arena size
	MemberBytes   int // Bytes held by member lists
	ColorIndexLen int
}

// Report is a snapshot of registry sizes for tooling
type Report struct {
	State      State
	Categories [types.NumSetCategories]CategoryReport
	Fields     int
	FieldBytes int
}

// MemoryReport collects names, counts and capacities of every set
func (r *Registry) MemoryReport() (rep Report) {
	rep.State = r.state
	idxBytes := int(unsafe.Sizeof(types.ClusterIndex(0)))
	for _, cat := range types.Categories() {
		st := r.tables[cat]
		cr := CategoryReport{Category: cat, Clusters: r.NumClusters(cat)}
		for _, s := range st.sets {
			cr.Sets = append(cr.Sets, SetReport{
				Name:     s.Name,
				Ordinal:  s.Ordinal,
				Colors:   s.Colors,
				Members:  len(s.Members),
				Capacity: cap(s.Members),
			})
			cr.MemberBytes += cap(s.Members) * idxBytes
		}
		if st.colors != nil {
			cr.ColorIndexLen = len(st.colors.sets)
		}
		rep.Categories[cat] = cr
	}
	rep.Fields = len(r.fields)
	for _, f := range r.fields {
		rep.FieldBytes += cap(f.Data)*8 + cap(f.Clusters)*idxBytes
	}
	return
}

func (rep Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== Registry Report (%s) ===\n", rep.State)
	for _, cr := range rep.Categories {
		fmt.Fprintf(w, "%s: %d sets, %d clusters, %d member bytes, %d color entries\n",
			cr.Category, len(cr.Sets), cr.Clusters, cr.MemberBytes, cr.ColorIndexLen)
		for _, s := range cr.Sets {
			fmt.Fprintf(w, "  [%3d] %-28s colors %-8v members %6d  capacity %6d\n",
				s.Ordinal, s.Name, s.Colors, s.Members, s.Capacity)
		}
	}
	if rep.Fields > 0 {
		fmt.Fprintf(w, "Fields: %d, %d bytes\n", rep.Fields, rep.FieldBytes)
	}
}
