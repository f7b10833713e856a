package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/cutcell/cluster"
	"github.com/notargets/cutcell/enrich"
	"github.com/notargets/cutcell/fault"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/types"
)

// requireFault asserts that fn aborts with a fault wrapping target
func requireFault(t *testing.T, target error, fn func()) {
	t.Helper()
	var err error
	func() {
		defer fault.Recover(&err)
		fn()
	}()
	if assert.Error(t, err) {
		assert.True(t, errors.Is(err, target), "have %v, want %v", err, target)
	}
}

func newIPCell(idx, base int, p types.PhaseIndex) *enrich.InterpolationCell {
	return &enrich.InterpolationCell{Index: idx, Base: base, BulkPhase: p, Subphase: types.NoSubphase}
}

// interfaceFixture holds one interface between phase 0 (base quad 0) and phase 1 (base quad 1)
type interfaceFixture struct {
	reg         *Registry
	mesh        *mesh.Mesh
	left, right types.ClusterIndex
	dbl         types.ClusterIndex
	dblOrd      types.SetOrdinal
}

func newInterfaceFixture(t *testing.T) *interfaceFixture {
	m := mesh.NewQuadStrip(2)
	reg := New(2)
	fx := &interfaceFixture{reg: reg, mesh: m}

	reg.RegisterNames(types.BlockSet, []string{"fluid_n_p0", "fluid_n_p1"})
	v0 := reg.AddVolumeCluster(cluster.NewTrivialVolume(newIPCell(0, 0, 0), &m.Elements[0]))
	v1 := reg.AddVolumeCluster(cluster.NewTrivialVolume(newIPCell(1, 1, 1), &m.Elements[1]))
	reg.AddMember(types.BlockSet, 0, v0)
	reg.AddMember(types.BlockSet, 1, v1)
	reg.SetColor(types.BlockSet, 0, 0)
	reg.SetColor(types.BlockSet, 1, 1)

	fx.left = reg.AddSideCluster(cluster.NewTrivialSide(newIPCell(0, 0, 0), &m.Elements[0], 1, v0))
	fx.right = reg.AddSideCluster(cluster.NewTrivialSide(newIPCell(1, 1, 1), &m.Elements[1], 3, v1))
	fx.dbl = reg.AddDoubleSideCluster(cluster.NewDoubleSide(reg.Side(fx.left), reg.Side(fx.right)))

	names, dirs := InterfaceSideSetNames(2)
	iside := reg.RegisterPairSets(types.SideSet, names, dirs)
	reg.SetColor(types.SideSet, iside[0], 0)
	reg.SetColor(types.SideSet, iside[1], 1)

	dblNames, pairs := DoubleSideSetNames(2)
	fx.dblOrd = reg.RegisterPairSets(types.DoubleSideSet, dblNames, pairs)[0]
	reg.SetColor(types.DoubleSideSet, fx.dblOrd, 0, 1)
	reg.AddMember(types.DoubleSideSet, fx.dblOrd, fx.dbl)

	reg.CommitAll(types.BlockSet)
	reg.CommitAll(types.DoubleSideSet)
	return fx
}
