package schema

// Matrix is a dense, read-only count matrix whose rows are labeled by schema
// elements.
type Matrix struct {
	labels []string
	index  map[string]int
	cols   int
	data   []int
}

func newMatrix(rowLabels []string, cols int) *Matrix {
	index := make(map[string]int, len(rowLabels))
	for i, label := range rowLabels {
		index[label] = i
	}
	return &Matrix{
		labels: rowLabels,
		index:  index,
		cols:   cols,
		data:   make([]int, len(rowLabels)*cols),
	}
}

// Size returns the number of rows.
func (m *Matrix) Size() int {
	return len(m.labels)
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	return m.cols
}

// Labels returns the row labels in element order.
func (m *Matrix) Labels() []string {
	return append([]string(nil), m.labels...)
}

// At returns the value at row i, column j. It panics on out-of-range indices,
// like slice indexing.
func (m *Matrix) At(i, j int) int {
	if j < 0 || j >= m.cols {
		panic("schema: matrix column out of range")
	}
	return m.data[i*m.cols+j]
}

// Count returns the connection count between two elements by name. Unknown names
// yield 0.
func (m *Matrix) Count(a, b string) int {
	i, ok := m.index[a]
	if !ok {
		return 0
	}
	j, ok := m.index[b]
	if !ok || j >= m.cols {
		return 0
	}
	return m.data[i*m.cols+j]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []int {
	return append([]int(nil), m.data[i*m.cols:(i+1)*m.cols]...)
}

func (m *Matrix) add(i, j, delta int) {
	m.data[i*m.cols+j] += delta
}

func (m *Matrix) set(i, j, value int) {
	m.data[i*m.cols+j] = value
}

// Edge is a weighted undirected link between two elements sharing at least one
// chain.
type Edge struct {
	From         string `json:"from"`
	To           string `json:"to"`
	CommonChains int    `json:"common_chains"`
}
