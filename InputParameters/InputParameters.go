package InputParameters

import (
	"fmt"
	"io"

	"github.com/ghodss/yaml"

	"github.com/notargets/cutcell/builder"
)

// CutMeshInput is the YAML input file: a background mesh, the output of the cutting stage for each
// cut element, and the setup options. Vertex and element indices are zero based.
type CutMeshInput struct {
	Title               string               `json:"Title"`
	BulkPhases          int                  `json:"BulkPhases"`
	Partitions          int                  `json:"Partitions"`
	Partitioner         string               `json:"Partitioner"` // block, roundrobin or metis
	EnrichmentLevels    int                  `json:"EnrichmentLevels"`
	MeshFile            string               `json:"MeshFile"` // SU2 background mesh, replaces Elements
	DefaultPhase        int                  `json:"DefaultPhase"`
	ElementPhases       map[int]int          `json:"ElementPhases"` // Overrides DefaultPhase for MeshFile elements
	Vertices            [][3]float64         `json:"Vertices"`      // Appended after the MeshFile vertices
	Elements            []ElementInput       `json:"Elements"`
	BlockSets           []BlockSetInput      `json:"BlockSets"` // Defaults to one block per element tag
	SideSets            []SideSetInput       `json:"SideSets"`
	Cuts                []CutInput           `json:"Cuts"`
	DeactivateEmptySets bool                 `json:"DeactivateEmptySets"`
	AssignGlobalIDs     bool                 `json:"AssignGlobalIDs"`
	ReversedDoubleSides bool                 `json:"ReversedDoubleSides"`
	Derived             []builder.DerivedSet `json:"Derived"`
}

type ElementInput struct {
	Type     string `json:"Type"`
	Vertices []int  `json:"Vertices"`
	Phase    int    `json:"Phase"` // Bulk phase of an uncut element
	Tag      int    `json:"Tag"`
}

type BlockSetInput struct {
	Name     string `json:"Name"`
	Elements []int  `json:"Elements"`
}

type SideSetInput struct {
	Name  string   `json:"Name"`
	Sides [][2]int `json:"Sides"` // (element, facet ordinal)
}

// CutInput is the child mesh of one cut element; cell and subphase indices are local to it
type CutInput struct {
	Element      int              `json:"Element"`
	Cells        []ElementInput   `json:"Cells"`
	Subphases    []SubphaseInput  `json:"Subphases"`
	ParentFacets map[int][][2]int `json:"ParentFacets"` // parent facet ordinal -> (cell, side)
	Interfaces   []InterfaceInput `json:"Interfaces"`
}

type SubphaseInput struct {
	Phase int   `json:"Phase"`
	Cells []int `json:"Cells"`
}

type InterfaceInput struct {
	Subphases [2]int `json:"Subphases"`
	Cells     [2]int `json:"Cells"`
	Sides     [2]int `json:"Sides"`
}

func (ip *CutMeshInput) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	if ip.BulkPhases < 1 {
		return fmt.Errorf("BulkPhases must be positive, have %d", ip.BulkPhases)
	}
	if ip.Partitions < 1 {
		ip.Partitions = 1
	}
	if ip.EnrichmentLevels < 1 {
		ip.EnrichmentLevels = 1
	}
	if ip.Partitioner == "" {
		ip.Partitioner = "block"
	}
	return nil
}

// Options returns the setup options the file asks for
func (ip *CutMeshInput) Options() builder.Options {
	return builder.Options{
		DeactivateEmptySets: ip.DeactivateEmptySets,
		AssignGlobalIDs:     ip.AssignGlobalIDs,
		ReversedDoubleSides: ip.ReversedDoubleSides,
		Derived:             ip.Derived,
	}
}

func (ip *CutMeshInput) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Bulk Phases\n", ip.BulkPhases)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Partitions\n", ip.Partitions)
	fmt.Fprintf(w, "[%s]\t\t\t= Partitioner\n", ip.Partitioner)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Enrichment Levels\n", ip.EnrichmentLevels)
	if ip.MeshFile != "" {
		fmt.Fprintf(w, "[%s]\t\t= Mesh File\n", ip.MeshFile)
	}
	fmt.Fprintf(w, "%d vertices, %d elements, %d cut elements\n", len(ip.Vertices), len(ip.Elements), len(ip.Cuts))
	for _, bs := range ip.BlockSets {
		fmt.Fprintf(w, "BlockSets[%s] = %v\n", bs.Name, bs.Elements)
	}
	for _, ss := range ip.SideSets {
		fmt.Fprintf(w, "SideSets[%s] = %v\n", ss.Name, ss.Sides)
	}
	for _, d := range ip.Derived {
		fmt.Fprintf(w, "Derived[%s] = %s(%s)\n", d.Name, d.Kind, d.Source)
	}
}
