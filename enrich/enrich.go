// Package enrich provides the interpolation cells of the enriched basis: one per uncut background
// element and one per subphase of each cut element, repeated once per enrichment level.
package enrich

import (
	"fmt"

	"github.com/notargets/cutcell/cuttopo"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

// InterpolationCell is a stable interpolation cell of the enriched mesh
type InterpolationCell struct {
	Index     int // Stable index, dense over all cells
	Base      int // Background element
	BulkPhase types.PhaseIndex
	Subphase  types.SubphaseID // types.NoSubphase when the base element is uncut
	Level     int              // Enrichment level, 0 for the base level
}

func (c *InterpolationCell) String() string {
	return fmt.Sprintf("ip cell %d (base %d, phase %d, subphase %d, level %d)",
		c.Index, c.Base, c.BulkPhase, c.Subphase, c.Level)
}

// Provider hands out the enriched interpolation cells
type Provider interface {
	EnrichedCellsForBase(elem int) []*InterpolationCell
	Cells() []*InterpolationCell
}

// Cells is the in-memory Provider
type Cells struct {
	cells  []*InterpolationCell
	byBase [][]*InterpolationCell
}

// PhaseFunc returns the bulk phase of an uncut background element
type PhaseFunc func(elem int) types.PhaseIndex

// Build creates the interpolation cells for every background element.
// Cells are ordered by base element, then subphase, then level.
func Build(m *mesh.Mesh, cut cuttopo.Provider, phaseOf PhaseFunc, levels int) (*Cells, error) {
	if levels < 1 {
		return nil, fmt.Errorf("enrichment levels must be positive, have %d", levels)
	}
	ec := &Cells{byBase: make([][]*InterpolationCell, m.NumElements)}
	for elem := 0; elem < m.NumElements; elem++ {
		if !cut.HasChildren(elem) {
			phase := phaseOf(elem)
			if phase < 0 || int(phase) >= cut.NumBulkPhases() {
				return nil, fmt.Errorf("element %d: bulk phase %d out of range [0,%d)",
					elem, phase, cut.NumBulkPhases())
			}
			for level := 0; level < levels; level++ {
				ec.add(elem, phase, types.NoSubphase, level)
			}
			continue
		}
		for _, sp := range cut.ChildMesh(elem).Subphases {
			for level := 0; level < levels; level++ {
				ec.add(elem, sp.BulkPhase, sp.ID, level)
			}
		}
	}
	return ec, nil
}

// Append adds a cell declared by an external enrichment, returning it with its stable index
func (ec *Cells) Append(base int, phase types.PhaseIndex, subphase types.SubphaseID, level int) *InterpolationCell {
	return ec.add(base, phase, subphase, level)
}

func (ec *Cells) add(base int, phase types.PhaseIndex, subphase types.SubphaseID, level int) *InterpolationCell {
	c := &InterpolationCell{
		Index:     len(ec.cells),
		Base:      base,
		BulkPhase: phase,
		Subphase:  subphase,
		Level:     level,
	}
	ec.cells = append(ec.cells, c)
	for len(ec.byBase) <= base {
		ec.byBase = append(ec.byBase, nil)
	}
	ec.byBase[base] = append(ec.byBase[base], c)
	return c
}

func (ec *Cells) EnrichedCellsForBase(elem int) []*InterpolationCell {
	if elem < 0 || elem >= len(ec.byBase) {
		return nil
	}
	return ec.byBase[elem]
}

func (ec *Cells) Cells() []*InterpolationCell { return ec.cells }

// ConstantPhase is a PhaseFunc placing every uncut element in one phase
func ConstantPhase(p types.PhaseIndex) PhaseFunc {
	return func(int) types.PhaseIndex { return p }
}

// PhaseTable is a PhaseFunc reading a per-element table
func PhaseTable(phases []types.PhaseIndex) PhaseFunc {
	return func(elem int) types.PhaseIndex { return phases[elem] }
}
