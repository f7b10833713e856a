package registry

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/types"
)

// Field is one value per cluster of a kind, optionally restricted to a bulk phase.
// It is the input contract of visualization and diagnostic export.
type Field struct {
	ID       types.FieldID
	Label    string
	Kind     types.SetCategory
	Phase    types.PhaseIndex     // AllPhases when unfiltered
	Clusters []types.ClusterIndex // Data[i] belongs to Clusters[i]
	Data     []float64
}

type FieldSummary struct {
	Count         int
	Min, Max, Sum float64
	Mean          float64
}

// CreateField attaches a field to the clusters of one kind, those of phase p only unless p is AllPhases.
// A double-side cluster matches when either of its sides is on p.
func (r *Registry) CreateField(label string, kind types.SetCategory, p types.PhaseIndex) types.FieldID {
	fault.Assert(label != "", "field label is empty")
	_, dup := r.fieldNames[label]
	fault.Assert(!dup, "duplicate field label %q", label)
	fault.Assert(kind < types.NumSetCategories, "field %q: unknown cluster kind %d", label, kind)
	fault.Assert(p == types.AllPhases || (p >= 0 && int(p) < r.numPhases),
		"field %q: unknown color %d, have %d phases", label, p, r.numPhases)

	f := &Field{
		ID:    types.FieldID(len(r.fields)),
		Label: label,
		Kind:  kind,
		Phase: p,
	}
	match := func(q types.PhaseIndex) bool { return p == types.AllPhases || q == p }
	switch kind {
	case types.BlockSet:
		for _, vc := range r.volumes {
			if match(vc.Phase()) {
				f.Clusters = append(f.Clusters, vc.Index)
			}
		}
	case types.SideSet:
		for _, sc := range r.sides {
			if match(sc.Phase()) {
				f.Clusters = append(f.Clusters, sc.Index)
			}
		}
	case types.DoubleSideSet:
		for _, dc := range r.doubles {
			if match(r.sides[dc.Left].Phase()) || match(r.sides[dc.Right].Phase()) {
				f.Clusters = append(f.Clusters, dc.Index)
			}
		}
	}
	r.fields = append(r.fields, f)
	r.fieldNames[label] = f.ID
	return f.ID
}

func (r *Registry) Field(id types.FieldID) *Field {
	fault.Assert(id >= 0 && int(id) < len(r.fields), "field %d out of range [0,%d)", id, len(r.fields))
	return r.fields[id]
}

func (r *Registry) FieldByLabel(label string) (*Field, bool) {
	id, ok := r.fieldNames[label]
	if !ok {
		return nil, false
	}
	return r.fields[id], true
}

func (r *Registry) NumFields() int { return len(r.fields) }

// SetFieldData replaces a field's values, one per matched cluster
func (r *Registry) SetFieldData(id types.FieldID, data []float64) {
	f := r.Field(id)
	fault.Assert(len(data) == len(f.Clusters),
		"field %q: have %d values for %d clusters", f.Label, len(data), len(f.Clusters))
	f.Data = append(f.Data[:0], data...)
}

func (r *Registry) FieldSummary(id types.FieldID) (fs FieldSummary) {
	f := r.Field(id)
	fs.Count = len(f.Data)
	if fs.Count == 0 {
		return
	}
	fs.Min = floats.Min(f.Data)
	fs.Max = floats.Max(f.Data)
	fs.Sum = floats.Sum(f.Data)
	fs.Mean = fs.Sum / float64(fs.Count)
	return
}
