package mesh

import (
	"fmt"
	"math"
)

// PartitionStrategy defines how background elements are assigned to owning partitions
type PartitionStrategy int

const (
	BlockPartition PartitionStrategy = iota // Consecutive elements
	RoundRobin                              // Distribute cyclically
)

func NewPartitionStrategy(name string) (PartitionStrategy, error) {
	switch name {
	case "block", "":
		return BlockPartition, nil
	case "roundrobin":
		return RoundRobin, nil
	}
	return BlockPartition, fmt.Errorf("unknown partition strategy: %q", name)
}

// AssignOwners fills EToP with one of the simple strategies and derives vertex owners
func (m *Mesh) AssignOwners(numPartitions int, strategy PartitionStrategy) error {
	if numPartitions < 1 {
		return fmt.Errorf("invalid number of partitions: %d", numPartitions)
	}
	eToP := make([]int, m.NumElements)
	switch strategy {
	case BlockPartition:
		elementsPerPartition := int(math.Ceil(float64(m.NumElements) / float64(numPartitions)))
		if elementsPerPartition < 1 {
			elementsPerPartition = 1
		}
		for i := 0; i < m.NumElements; i++ {
			eToP[i] = i / elementsPerPartition
			if eToP[i] >= numPartitions {
				eToP[i] = numPartitions - 1
			}
		}
	case RoundRobin:
		for i := 0; i < m.NumElements; i++ {
			eToP[i] = i % numPartitions
		}
	default:
		return fmt.Errorf("unsupported partition strategy: %d", strategy)
	}
	return m.SetOwners(eToP)
}

// SetOwners installs an element to partition map computed elsewhere (e.g. METIS)
// and sets each vertex owner to the lowest partition among its incident elements.
func (m *Mesh) SetOwners(eToP []int) error {
	if len(eToP) != m.NumElements {
		return fmt.Errorf("EToP length %d does not match number of elements %d", len(eToP), m.NumElements)
	}
	for k, p := range eToP {
		if p < 0 {
			return fmt.Errorf("element %d has negative partition %d", k, p)
		}
	}
	m.EToP = append([]int(nil), eToP...)
	for i := range m.Vertices {
		m.Vertices[i].Owner = -1
	}
	for k, el := range m.Elements {
		for _, v := range el.Vertices {
			if o := m.Vertices[v].Owner; o < 0 || eToP[k] < o {
				m.Vertices[v].Owner = eToP[k]
			}
		}
	}
	for i := range m.Vertices {
		if m.Vertices[i].Owner < 0 {
			m.Vertices[i].Owner = 0
		}
	}
	return nil
}

// NumPartitions returns the number of partitions referenced by EToP
func (m *Mesh) NumPartitions() int {
	n := 0
	for _, p := range m.EToP {
		if p+1 > n {
			n = p + 1
		}
	}
	if n == 0 {
		n = 1
	}
	return n
}

// GetPartitionBoundaryFaces returns, per partition, the faces on partition boundaries
func (m *Mesh) GetPartitionBoundaryFaces() map[int][]int {
	boundaryFaces := make(map[int][]int)
	for elem := 0; elem < m.NumElements; elem++ {
		elemPart := m.owner(elem)
		for faceIdx, neighbor := range m.EToE[elem] {
			if neighbor >= 0 && m.owner(neighbor) != elemPart {
				boundaryFaces[elemPart] = append(boundaryFaces[elemPart], m.EToF[elem][faceIdx])
			}
		}
	}
	return boundaryFaces
}

func (m *Mesh) owner(elem int) int {
	if m.EToP == nil {
		return 0
	}
	return m.EToP[elem]
}
