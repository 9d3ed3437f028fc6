package schema

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustChain(t *testing.T, name string, elements ...string) *Chain {
	t.Helper()
	chain, err := ChainOf(name, elements...)
	require.NoError(t, err)
	return chain
}

func TestNewElementRejectsEmptyName(t *testing.T) {
	_, err := NewElement("")
	require.ErrorIs(t, err, ErrInvalidElement)

	e, err := NewElement("R1")
	require.NoError(t, err)
	assert.Equal(t, DefaultNodeID, e.NodeID())
	require.ErrorIs(t, e.SetNodeID(0), ErrInvalidElement)
	require.NoError(t, e.SetNodeID(3))
	assert.Equal(t, 3, e.NodeID())
}

func TestNewChainValidation(t *testing.T) {
	a, _ := NewElement("a")
	b, _ := NewElement("b")
	otherA, _ := NewElement("a")

	cases := []struct {
		name     string
		chain    string
		elements []*Element
	}{
		{name: "blank name", chain: "  ", elements: []*Element{a, b}},
		{name: "single element", chain: "n1", elements: []*Element{a}},
		{name: "duplicate element", chain: "n1", elements: []*Element{a, b, otherA}},
		{name: "nil element", chain: "n1", elements: []*Element{a, nil}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChain(tc.chain, tc.elements...)
			require.ErrorIs(t, err, ErrInvalidChain)
		})
	}
}

func TestNewSchemaValidation(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidSchema)

	_, err = New([]*Chain{mustChain(t, "n1", "a", "b"), mustChain(t, "n1", "c", "d")})
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestSchemaElementsFirstOccurrenceOrder(t *testing.T) {
	s, err := New([]*Chain{
		mustChain(t, "n1", "c", "a"),
		mustChain(t, "n2", "a", "b", "d"),
	})
	require.NoError(t, err)

	names := make([]string, 0)
	for _, e := range s.Elements() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, names)

	// the shared element is one instance across chains
	fromFirst := s.Chains()[0].Elements()[1]
	fromSecond := s.Chains()[1].Elements()[0]
	assert.Same(t, fromFirst, fromSecond)
}

func TestConnectionMatrix(t *testing.T) {
	s, err := New([]*Chain{
		mustChain(t, "n1", "a", "b", "c"),
		mustChain(t, "n2", "a", "b"),
		mustChain(t, "n3", "c", "d"),
	})
	require.NoError(t, err)

	m := s.Connections()
	assert.Same(t, m, s.Connections(), "matrix is cached")
	assert.Equal(t, 4, m.Size())
	assert.Equal(t, 2, m.Count("a", "b"))
	assert.Equal(t, 1, m.Count("a", "c"))
	assert.Equal(t, 1, m.Count("c", "d"))
	assert.Equal(t, 0, m.Count("a", "d"))
	assert.Equal(t, 0, m.Count("a", "missing"))
	for i := 0; i < m.Size(); i++ {
		assert.Equal(t, 0, m.At(i, i))
		for j := 0; j < m.Size(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
		}
	}
}

func TestIncidenceMatrix(t *testing.T) {
	s, err := New([]*Chain{
		mustChain(t, "n1", "a", "b"),
		mustChain(t, "n2", "b", "c"),
	})
	require.NoError(t, err)

	inc := s.Incidence()
	assert.Equal(t, 3, inc.Size())
	assert.Equal(t, 2, inc.Cols())
	assert.Equal(t, []int{1, 0}, inc.Row(0))
	assert.Equal(t, []int{1, 1}, inc.Row(1))
	assert.Equal(t, []int{0, 1}, inc.Row(2))
}

func TestEdges(t *testing.T) {
	s, err := New([]*Chain{
		mustChain(t, "n1", "a", "b"),
		mustChain(t, "n2", "a", "b"),
		mustChain(t, "n3", "b", "c"),
	})
	require.NoError(t, err)

	assert.Equal(t, []Edge{
		{From: "b", To: "a", CommonChains: 2},
		{From: "c", To: "b", CommonChains: 1},
	}, s.Edges())
}

func TestInternodeConnections(t *testing.T) {
	s, err := New([]*Chain{mustChain(t, "n1", "e1", "e2", "e3")})
	require.NoError(t, err)

	assert.Equal(t, 0, s.InternodeConnections(), "all elements start on one node")

	e3, ok := s.Element("e3")
	require.True(t, ok)
	require.NoError(t, e3.SetNodeID(2))
	assert.Equal(t, 2, s.InternodeConnections())
}

func TestAssignNodes(t *testing.T) {
	s, err := New([]*Chain{mustChain(t, "n1", "a", "b", "c")})
	require.NoError(t, err)

	err = s.AssignNodes(map[string]int{"a": 1, "b": 2})
	require.ErrorIs(t, err, ErrInvalidSchema)
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, s.Distribution(), "failed assignment writes nothing")

	err = s.AssignNodes(map[string]int{"a": 1, "b": 2, "c": 1, "z": 2})
	require.ErrorIs(t, err, ErrUnknownElement)

	err = s.AssignNodes(map[string]int{"a": 1, "b": 0, "c": 1})
	require.ErrorIs(t, err, ErrInvalidElement)

	require.NoError(t, s.AssignNodes(map[string]int{"a": 1, "b": 2, "c": 2}))
	assert.Equal(t, 2, s.InternodeConnections())
}

func TestDocumentRoundTrip(t *testing.T) {
	input := `{"chains":[{"name":"GND","elements":["R1","C1"]},{"name":"VCC","elements":["R1","U1","C1"]}]}`
	s, err := DocumentParser{}.Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, s.ElementCount())

	var buf bytes.Buffer
	require.NoError(t, EncodeDocument(&buf, s))
	again, err := DecodeDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, ToDocument(s), ToDocument(again))
}

func TestDocumentRejectsInvalidChains(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader(`{"chains":[{"name":"n1","elements":["a"]}]}`))
	require.ErrorIs(t, err, ErrInvalidChain)

	_, err = DecodeDocument(strings.NewReader(`{"chains":[]}`))
	require.ErrorIs(t, err, ErrInvalidSchema)

	_, err = DecodeDocument(strings.NewReader(`not json`))
	require.Error(t, err)
}
