package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/notargets/cutcell/comm"
	"github.com/notargets/cutcell/types"
)

// AssignGlobalIDs gives every cluster a mesh-wide id, contiguous per partition and category.
// Each category is one two-phase collective; all partitions must call it together.
func (r *Registry) AssignGlobalIDs(ctx context.Context, c comm.Communicator) (totals [types.NumSetCategories]int64, err error) {
	for _, cat := range types.Categories() {
		offset, total, err := comm.AllocateIDOffset(ctx, c, int64(r.NumClusters(cat)))
		if err != nil {
			return totals, fmt.Errorf("allocating %s cluster ids: %w", cat, err)
		}
		totals[cat] = total
		switch cat {
		case types.BlockSet:
			for i, vc := range r.volumes {
				vc.GlobalID = offset + int64(i)
			}
		case types.SideSet:
			for i, sc := range r.sides {
				sc.GlobalID = offset + int64(i)
			}
		case types.DoubleSideSet:
			for i, dc := range r.doubles {
				dc.GlobalID = offset + int64(i)
			}
		}
	}
	return totals, nil
}

func sortOrdinals(ords []types.SetOrdinal) {
	sort.Slice(ords, func(i, j int) bool { return ords[i] < ords[j] })
}
