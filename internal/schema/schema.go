package schema

import (
	"fmt"
	"strings"
	"sync"
)

// Schema is an ordered, duplicate-free list of chains together with the derived
// element list and cached matrices. The chain set is immutable after New.
type Schema struct {
	chains   []*Chain
	elements []*Element
	index    map[string]int

	connectionsOnce sync.Once
	connections     *Matrix

	incidenceOnce sync.Once
	incidence     *Matrix
}

// New validates the chains and builds a schema. Elements that appear in several
// chains are canonicalized by name: every chain of the schema references the
// element instance of its first occurrence.
func New(chains []*Chain) (*Schema, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("%w: at least one chain is required", ErrInvalidSchema)
	}

	s := &Schema{
		chains: make([]*Chain, 0, len(chains)),
		index:  make(map[string]int),
	}
	chainNames := make(map[string]struct{}, len(chains))
	for i, chain := range chains {
		if chain == nil {
			return nil, fmt.Errorf("%w: nil chain at index %d", ErrInvalidSchema, i)
		}
		if _, dup := chainNames[chain.name]; dup {
			return nil, fmt.Errorf("%w: duplicate chain %s", ErrInvalidSchema, chain.name)
		}
		chainNames[chain.name] = struct{}{}

		canonical := make([]*Element, 0, len(chain.elements))
		for _, element := range chain.elements {
			idx, ok := s.index[element.name]
			if !ok {
				idx = len(s.elements)
				s.index[element.name] = idx
				s.elements = append(s.elements, element)
			}
			canonical = append(canonical, s.elements[idx])
		}
		s.chains = append(s.chains, &Chain{name: chain.name, elements: canonical})
	}
	return s, nil
}

// Chains returns the schema chains in declaration order.
func (s *Schema) Chains() []*Chain {
	return append([]*Chain(nil), s.chains...)
}

// Elements returns distinct elements in first-occurrence order.
func (s *Schema) Elements() []*Element {
	return append([]*Element(nil), s.elements...)
}

func (s *Schema) ElementCount() int {
	return len(s.elements)
}

// Element looks up an element by name.
func (s *Schema) Element(name string) (*Element, bool) {
	idx, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.elements[idx], true
}

// IndexOf returns the position of the named element in Elements.
func (s *Schema) IndexOf(name string) (int, bool) {
	idx, ok := s.index[name]
	return idx, ok
}

// Connections returns the symmetric element x element matrix counting the chains
// that contain both elements. The diagonal is zero. It is built once.
func (s *Schema) Connections() *Matrix {
	s.connectionsOnce.Do(func() {
		m := newMatrix(s.elementNames(), len(s.elements))
		for _, chain := range s.chains {
			for i, a := range chain.elements {
				for j, b := range chain.elements {
					if i == j {
						continue
					}
					m.add(s.index[a.name], s.index[b.name], 1)
				}
			}
		}
		s.connections = m
	})
	return s.connections
}

// Incidence returns the element x chain membership matrix (1 when the element
// belongs to the chain). It is built once.
func (s *Schema) Incidence() *Matrix {
	s.incidenceOnce.Do(func() {
		m := newMatrix(s.elementNames(), len(s.chains))
		for c, chain := range s.chains {
			for _, element := range chain.elements {
				m.set(s.index[element.name], c, 1)
			}
		}
		s.incidence = m
	})
	return s.incidence
}

// Edges lists every element pair with a positive connection count, walking the
// lower triangle of the connection matrix row by row.
func (s *Schema) Edges() []Edge {
	m := s.Connections()
	var edges []Edge
	for i := 0; i < m.Size(); i++ {
		for j := 0; j < i; j++ {
			if count := m.At(i, j); count > 0 {
				edges = append(edges, Edge{From: s.elements[i].name, To: s.elements[j].name, CommonChains: count})
			}
		}
	}
	return edges
}

// InternodeConnections sums connection counts over element pairs currently
// assigned to different nodes. It re-derives the value on every call.
func (s *Schema) InternodeConnections() int {
	m := s.Connections()
	total := 0
	for i := range s.elements {
		for j := 0; j < i; j++ {
			if s.elements[i].nodeID != s.elements[j].nodeID {
				total += m.At(i, j)
			}
		}
	}
	return total
}

// Distribution returns the current element -> node assignment.
func (s *Schema) Distribution() map[string]int {
	out := make(map[string]int, len(s.elements))
	for _, element := range s.elements {
		out[element.name] = element.nodeID
	}
	return out
}

// AssignNodes applies an accepted distribution to the schema elements. The
// distribution must cover every element with a positive node id; nothing is
// written when validation fails.
func (s *Schema) AssignNodes(distribution map[string]int) error {
	for _, element := range s.elements {
		nodeID, ok := distribution[element.name]
		if !ok {
			return fmt.Errorf("%w: distribution has no node for %s", ErrInvalidSchema, element.name)
		}
		if nodeID <= 0 {
			return fmt.Errorf("%w: node id must be > 0 for %s, got %d", ErrInvalidElement, element.name, nodeID)
		}
	}
	for name := range distribution {
		if _, ok := s.index[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownElement, name)
		}
	}
	for _, element := range s.elements {
		element.nodeID = distribution[element.name]
	}
	return nil
}

func (s *Schema) String() string {
	lines := make([]string, 0, len(s.chains))
	for _, chain := range s.chains {
		lines = append(lines, chain.String())
	}
	return strings.Join(lines, "\n")
}

func (s *Schema) elementNames() []string {
	names := make([]string, 0, len(s.elements))
	for _, element := range s.elements {
		names = append(names, element.name)
	}
	return names
}
