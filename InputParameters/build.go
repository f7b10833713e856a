package InputParameters

import (
	"fmt"
	"log/slog"

	"github.com/notargets/cutcell/builder"
	"github.com/notargets/cutcell/comm"
	"github.com/notargets/cutcell/cuttopo"
	"github.com/notargets/cutcell/enrich"
	"github.com/notargets/cutcell/mesh"
	"github.com/notargets/cutcell/mesh/metispart"
	"github.com/notargets/cutcell/metrics"
	"github.com/notargets/cutcell/readfiles"
	"github.com/notargets/cutcell/types"
)

// Problem is everything a setup pass consumes, shared read-only by all partitions
type Problem struct {
	Mesh       *mesh.Mesh
	Cut        *cuttopo.Topology
	Enriched   *enrich.Cells
	Partitions int
}

// Context returns the setup context of one partition
func (p *Problem) Context(c comm.Communicator, logger *slog.Logger, mc *metrics.Collectors) builder.SetupContext {
	return builder.SetupContext{
		Mesh:     mesh.NewView(p.Mesh, c.Rank()),
		Cut:      p.Cut,
		Enriched: p.Enriched,
		Comm:     c,
		Logger:   logger,
		Metrics:  mc,
	}
}

// Build creates the background mesh, its ownership, the cut topology and the enriched cells.
// A partitions value above zero overrides the file.
func (ip *CutMeshInput) Build(partitions int, logger *slog.Logger) (*Problem, error) {
	if partitions < 1 {
		partitions = ip.Partitions
	}
	m, phases, err := ip.buildMesh(logger)
	if err != nil {
		return nil, err
	}
	if err = ip.partition(m, partitions, logger); err != nil {
		return nil, err
	}
	cut := cuttopo.NewTopology(ip.BulkPhases, m.NumElements)
	for i, c := range ip.Cuts {
		cm, err := c.childMesh(m)
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i, err)
		}
		if err = cut.Add(cm); err != nil {
			return nil, fmt.Errorf("cut %d: %w", i, err)
		}
	}
	ec, err := enrich.Build(m, cut, enrich.PhaseTable(phases), ip.EnrichmentLevels)
	if err != nil {
		return nil, err
	}
	return &Problem{Mesh: m, Cut: cut, Enriched: ec, Partitions: partitions}, nil
}

func (ip *CutMeshInput) buildMesh(logger *slog.Logger) (m *mesh.Mesh, phases []types.PhaseIndex, err error) {
	if ip.MeshFile != "" {
		return ip.readMesh(logger)
	}
	m = mesh.NewMesh()
	for _, v := range ip.Vertices {
		m.AddVertex(v[0], v[1], v[2])
	}
	for k, e := range ip.Elements {
		var et mesh.ElementType
		if et, err = parseCell(e, m.NumVertices); err != nil {
			return nil, nil, fmt.Errorf("element %d: %w", k, err)
		}
		m.AddElement(et, e.Tag, e.Vertices...)
		phases = append(phases, types.PhaseIndex(e.Phase))
	}
	m.BuildConnectivity()
	err = ip.addSets(m)
	return
}

// readMesh reads the background mesh from MeshFile; the inline vertices are the cut vertices
func (ip *CutMeshInput) readMesh(logger *slog.Logger) (m *mesh.Mesh, phases []types.PhaseIndex, err error) {
	if len(ip.Elements) != 0 {
		return nil, nil, fmt.Errorf("MeshFile and Elements are exclusive")
	}
	if m, err = readfiles.ReadSU2(ip.MeshFile, logger); err != nil {
		return nil, nil, err
	}
	for _, v := range ip.Vertices {
		m.AddVertex(v[0], v[1], v[2])
	}
	phases = make([]types.PhaseIndex, m.NumElements)
	for k := range phases {
		phases[k] = types.PhaseIndex(ip.DefaultPhase)
	}
	for k, p := range ip.ElementPhases {
		if k < 0 || k >= m.NumElements {
			return nil, nil, fmt.Errorf("ElementPhases: element %d out of range [0,%d)", k, m.NumElements)
		}
		phases[k] = types.PhaseIndex(p)
	}
	err = ip.addSets(m)
	return
}

func (ip *CutMeshInput) addSets(m *mesh.Mesh) (err error) {
	if len(ip.BlockSets) == 0 {
		m.AddTagBlockSets()
	}
	for _, bs := range ip.BlockSets {
		if err = m.AddBlockSet(bs.Name, bs.Elements); err != nil {
			return err
		}
	}
	for _, ss := range ip.SideSets {
		sides := make([]mesh.Side, len(ss.Sides))
		for i, s := range ss.Sides {
			sides[i] = mesh.Side{Element: s[0], Ordinal: s[1]}
		}
		if err = m.AddSideSet(ss.Name, sides); err != nil {
			return err
		}
	}
	return
}

func (ip *CutMeshInput) partition(m *mesh.Mesh, partitions int, logger *slog.Logger) error {
	if ip.Partitioner == "metis" {
		return metispart.New(m, metispart.DefaultConfig(int32(partitions)), logger).Partition()
	}
	strategy, err := mesh.NewPartitionStrategy(ip.Partitioner)
	if err != nil {
		return err
	}
	return m.AssignOwners(partitions, strategy)
}

func (c CutInput) childMesh(m *mesh.Mesh) (*cuttopo.ChildMesh, error) {
	if c.Element < 0 || c.Element >= m.NumElements {
		return nil, fmt.Errorf("element %d out of range [0,%d)", c.Element, m.NumElements)
	}
	cm := &cuttopo.ChildMesh{
		Parent:       c.Element,
		ParentFacets: make(map[int][]cuttopo.FacetSide, len(c.ParentFacets)),
	}
	for i, ci := range c.Cells {
		et, err := parseCell(ci, m.NumVertices)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		cm.Cells = append(cm.Cells, &mesh.Cell{Type: et, Vertices: append([]int(nil), ci.Vertices...)})
	}
	for _, sp := range c.Subphases {
		cm.Subphases = append(cm.Subphases, cuttopo.Subphase{
			BulkPhase: types.PhaseIndex(sp.Phase),
			Cells:     append([]int(nil), sp.Cells...),
		})
	}
	for ord, sides := range c.ParentFacets {
		for _, s := range sides {
			cm.ParentFacets[ord] = append(cm.ParentFacets[ord], cuttopo.FacetSide{Cell: s[0], Side: s[1]})
		}
	}
	for _, ii := range c.Interfaces {
		cm.Interfaces = append(cm.Interfaces, cuttopo.InterfacePair{
			SubphaseA: ii.Subphases[0], SubphaseB: ii.Subphases[1],
			CellA: ii.Cells[0], CellB: ii.Cells[1],
			SideA: ii.Sides[0], SideB: ii.Sides[1],
		})
	}
	return cm, nil
}

func parseCell(e ElementInput, numVertices int) (mesh.ElementType, error) {
	et, err := mesh.NewElementType(e.Type)
	if err != nil {
		return et, err
	}
	if want := mesh.NumElementVertices(et); len(e.Vertices) != want {
		return et, fmt.Errorf("%s needs %d vertices, have %d", et, want, len(e.Vertices))
	}
	for _, v := range e.Vertices {
		if v < 0 || v >= numVertices {
			return et, fmt.Errorf("vertex %d out of range [0,%d)", v, numVertices)
		}
	}
	return et, nil
}
