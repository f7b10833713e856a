package builder

import (
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/cutcell/comm"
	"github.com/notargets/cutcell/cuttopo"
	"github.com/notargets/cutcell/enrich"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/registry"
	"github.com/notargets/cutcell/types"
)

type setupFixture struct {
	mesh *mesh.Mesh
	cut  *cuttopo.Topology
	ec   *enrich.Cells
}

// newSetupFixture builds a strip of n quads. Uncut quad k is in phases[k]; each quad in cuts is
// split into vertical strips with the given phases. Elements are block partitioned over parts.
func newSetupFixture(t *testing.T, n, numPhases, parts int, phases []types.PhaseIndex,
	cuts map[int][]types.PhaseIndex) *setupFixture {
	t.Helper()
	fx := &setupFixture{mesh: mesh.NewQuadStrip(n)}
	fx.cut = cuttopo.NewTopology(numPhases, fx.mesh.NumElements)
	elems := make([]int, 0, len(cuts))
	for elem := range cuts {
		elems = append(elems, elem)
	}
	sort.Ints(elems)
	for _, elem := range elems {
		fx.cut.MustAdd(cuttopo.SplitQuadStrips(fx.mesh, elem, cuts[elem]...))
	}
	require.NoError(t, fx.mesh.AssignOwners(parts, mesh.BlockPartition))
	fx.rebuildEnrichment(t, phases)
	return fx
}

// rebuildEnrichment recreates the enriched cells after the cut topology changed
func (fx *setupFixture) rebuildEnrichment(t *testing.T, phases []types.PhaseIndex) {
	t.Helper()
	var err error
	fx.ec, err = enrich.Build(fx.mesh, fx.cut, enrich.PhaseTable(phases), 1)
	require.NoError(t, err)
}

func (fx *setupFixture) context(rank int, c comm.Communicator) SetupContext {
	return SetupContext{
		Mesh:     mesh.NewView(fx.mesh, rank),
		Cut:      fx.cut,
		Enriched: fx.ec,
		Comm:     c,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func setNames(reg *registry.Registry, cat types.SetCategory) (names []string) {
	for _, s := range reg.Sets(cat) {
		names = append(names, s.Name)
	}
	return
}

func mustSet(t *testing.T, reg *registry.Registry, cat types.SetCategory, name string) *registry.Set {
	t.Helper()
	s, ok := reg.SetByName(cat, name)
	require.True(t, ok, "no %s named %q", cat, name)
	return s
}
