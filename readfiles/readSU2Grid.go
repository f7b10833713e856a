package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/notargets/cutcell/mesh"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
	ELType_Tetrahedral   SU2ElementType = 10
	ELType_Hexahedral    SU2ElementType = 12
	ELType_Prism         SU2ElementType = 13
	ELType_Pyramid       SU2ElementType = 14
)

func (et SU2ElementType) ElementType() (mesh.ElementType, error) {
	switch et {
	case ELType_LINE:
		return mesh.Line, nil
	case ELType_Triangle:
		return mesh.Triangle, nil
	case ELType_Quadrilateral:
		return mesh.Quad, nil
	case ELType_Tetrahedral:
		return mesh.Tet, nil
	case ELType_Hexahedral:
		return mesh.Hex, nil
	case ELType_Prism:
		return mesh.Prism, nil
	case ELType_Pyramid:
		return mesh.Pyramid, nil
	}
	return mesh.Line, fmt.Errorf("unknown SU2 element type %d", et)
}

// ReadSU2 reads a background mesh. Every element gets tag 0, each marker becomes a side set.
func ReadSU2(filename string, logger *slog.Logger) (m *mesh.Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	if logger == nil {
		logger = slog.Default()
	}
	if m, err = ParseSU2(file); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	logger.Info("read SU2 mesh", "file", filename, "elements", m.NumElements,
		"vertices", m.NumVertices, "markers", len(mesh.NewView(m, 0).SideSetNames()))
	return m, nil
}

func ParseSU2(r io.Reader) (m *mesh.Mesh, err error) {
	defer func() {
		if p := recover(); p != nil {
			e, ok := p.(error)
			if !ok {
				panic(p)
			}
			m, err = nil, e
		}
	}()
	reader := bufio.NewReader(r)
	dim := readNumber(reader, "NDIME")
	if dim != 2 && dim != 3 {
		panic(fmt.Errorf("NDIME must be 2 or 3, have %d", dim))
	}
	m = mesh.NewMesh()
	// Points follow the elements in the file, so vertex indices are checked once both are read
	elems := readElements(reader)
	readVertices(reader, m, dim)
	for k, el := range elems {
		for _, v := range el.verts {
			if v < 0 || v >= m.NumVertices {
				panic(fmt.Errorf("element %d: vertex %d out of range [0,%d)", k, v, m.NumVertices))
			}
		}
		m.AddElement(el.et, 0, el.verts...)
	}
	m.BuildConnectivity()
	readMarkers(reader, m)
	return m, nil
}

type su2Element struct {
	et    mesh.ElementType
	verts []int
}

// readCell reads "type v0 v1 ... [index]"
func readCell(line string) (el su2Element) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		panic(fmt.Errorf("empty element line"))
	}
	var (
		nType int
		err   error
	)
	if _, err = fmt.Sscanf(fields[0], "%d", &nType); err != nil {
		panic(fmt.Errorf("bad element line [%s]: %w", line, err))
	}
	if el.et, err = SU2ElementType(nType).ElementType(); err != nil {
		panic(err)
	}
	nv := mesh.NumElementVertices(el.et)
	if len(fields) < nv+1 {
		panic(fmt.Errorf("%s needs %d vertices: [%s]", el.et, nv, line))
	}
	el.verts = make([]int, nv)
	for i := range el.verts {
		if _, err = fmt.Sscanf(fields[i+1], "%d", &el.verts[i]); err != nil {
			panic(fmt.Errorf("bad element line [%s]: %w", line, err))
		}
	}
	return
}

func readElements(reader *bufio.Reader) (elems []su2Element) {
	K := readNumber(reader, "NELEM")
	elems = make([]su2Element, K)
	for k := range elems {
		elems[k] = readCell(getLineNoComments(reader))
	}
	return
}

func readVertices(reader *bufio.Reader, m *mesh.Mesh, dim int) {
	Nv := readNumber(reader, "NPOIN")
	for i := 0; i < Nv; i++ {
		var (
			x   [3]float64
			n   int
			err error
		)
		line := getLineNoComments(reader)
		if dim == 2 {
			n, err = fmt.Sscanf(line, "%f %f", &x[0], &x[1])
		} else {
			n, err = fmt.Sscanf(line, "%f %f %f", &x[0], &x[1], &x[2])
		}
		if err != nil || n != dim {
			panic(fmt.Errorf("unable to read coordinates from [%s]", line))
		}
		m.AddVertex(x[0], x[1], x[2])
	}
}

// readMarkers matches each marker element to the facet of the mesh element it bounds
func readMarkers(reader *bufio.Reader, m *mesh.Mesh) {
	NBCs := readNumber(reader, "NMARK")
	for n := 0; n < NBCs; n++ {
		label := readLabel(reader, "MARKER_TAG")
		nEdges := readNumber(reader, "MARKER_ELEMS")
		sides := make([]mesh.Side, nEdges)
		for i := range sides {
			el := readCell(getLineNoComments(reader))
			sorted := append([]int(nil), el.verts...)
			sort.Ints(sorted)
			faceID, ok := m.FaceMap[fmt.Sprintf("%v", sorted)]
			if !ok {
				panic(fmt.Errorf("marker %s: %s %v is not a facet of the mesh", label, el.et, el.verts))
			}
			face := m.Faces[faceID]
			sides[i] = mesh.Side{Element: face.Element, Ordinal: face.LocalID}
		}
		if err := m.AddSideSet(label, sides); err != nil {
			panic(err)
		}
	}
}

// getToken returns the value of a "KEY= value" line
func getToken(reader *bufio.Reader, key string) (token string) {
	line := getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		panic(fmt.Errorf("badly formed input line [%s], should have an =", line))
	}
	if k := strings.TrimSpace(line[:ind]); k != key {
		panic(fmt.Errorf("expected %s, found %s", key, k))
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader, key string) (label string) {
	token := getToken(reader, key)
	if _, err := fmt.Sscanf(token, "%s", &label); err != nil {
		panic(fmt.Errorf("unable to read label from token: [%s]", token))
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader, key string) (num int) {
	token := getToken(reader, key)
	if _, err := fmt.Sscanf(token, "%d", &num); err != nil {
		panic(fmt.Errorf("unable to read number from token: [%s]", token))
	}
	return
}

// getLineNoComments skips blank lines and lines starting with %
func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.TrimSpace(getLine(reader))
		if len(line) != 0 && line[0] != '%' {
			return
		}
	}
}

func getLine(reader *bufio.Reader) (line string) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if err != io.EOF || len(line) == 0 {
			panic(fmt.Errorf("early end of file"))
		}
	}
	return strings.TrimRight(line, "\r\n")
}
