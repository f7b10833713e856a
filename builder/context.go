// Package builder runs the setup pass of one partition: it declares the named sets, builds the
// volume, side and double-side clusters from the cut topology and the enriched cells, and applies
// the optional maintenance operations to the resulting registry.
package builder

import (
	"fmt"
	"log/slog"

	"github.com/notargets/cutcell/comm"
	"github.com/notargets/cutcell/cuttopo"
	"github.com/notargets/cutcell/enrich"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/metrics"
)

// SetupContext carries the collaborators of a setup pass explicitly, the pass holds no global state
type SetupContext struct {
	Mesh     mesh.Adapter
	Cut      cuttopo.Provider
	Enriched enrich.Provider
	Comm     comm.Communicator   // nil means comm.Solo
	Logger   *slog.Logger        // nil means slog.Default()
	Metrics  *metrics.Collectors // optional
}

func (sc SetupContext) logger() *slog.Logger {
	if sc.Logger == nil {
		return slog.Default()
	}
	return sc.Logger
}

func (sc SetupContext) communicator() comm.Communicator {
	if sc.Comm == nil {
		return comm.Solo{}
	}
	return sc.Comm
}

func (sc SetupContext) validate() error {
	switch {
	case sc.Mesh == nil:
		return fmt.Errorf("setup context has no mesh adapter")
	case sc.Cut == nil:
		return fmt.Errorf("setup context has no cut topology")
	case sc.Enriched == nil:
		return fmt.Errorf("setup context has no enriched cells")
	}
	if c := sc.communicator(); c.Rank() != sc.Mesh.LocalPartition() {
		return fmt.Errorf("communicator rank %d does not match mesh partition %d", c.Rank(), sc.Mesh.LocalPartition())
	}
	return nil
}

type DerivedKind string

const (
	SideFromDoubleSide DerivedKind = "side_from_double_side"
	BlockFromSide      DerivedKind = "block_from_side"
)

// DerivedSet requests an auxiliary set built from an existing one after the registry is committed
type DerivedSet struct {
	Kind   DerivedKind `json:"kind"`
	Source string      `json:"source"`
	Name   string      `json:"name"`
}

type Options struct {
	RunID               string // Shared by all partitions of a run, generated when empty
	DeactivateEmptySets bool
	AssignGlobalIDs     bool
	ReversedDoubleSides bool // Also create dbl_iside_p0_j_p1_i for every i < j
	CheckInvariants     bool // Validate every volume cluster against the cut topology
	Derived             []DerivedSet
}
