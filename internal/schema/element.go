package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidElement = errors.New("invalid element")
	ErrInvalidChain   = errors.New("invalid chain")
	ErrInvalidSchema  = errors.New("invalid schema")
	ErrUnknownElement = errors.New("unknown element")
)

// DefaultNodeID is the node every element starts on.
const DefaultNodeID = 1

// Element is a named circuit component. Its name is its identity; the node id is
// the only mutable attribute and is written when a layout result is accepted.
type Element struct {
	name   string
	nodeID int
}

func NewElement(name string) (*Element, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidElement)
	}
	return &Element{name: name, nodeID: DefaultNodeID}, nil
}

func (e *Element) Name() string {
	return e.name
}

func (e *Element) NodeID() int {
	return e.nodeID
}

func (e *Element) SetNodeID(nodeID int) error {
	if nodeID <= 0 {
		return fmt.Errorf("%w: node id must be > 0, got %d", ErrInvalidElement, nodeID)
	}
	e.nodeID = nodeID
	return nil
}

// Equal compares elements by name.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.name == other.name
}

func (e *Element) String() string {
	return e.name
}

// Chain is a named group of electrically connected elements.
type Chain struct {
	name     string
	elements []*Element
}

func NewChain(name string, elements ...*Element) (*Chain, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidChain)
	}
	if len(elements) < 2 {
		return nil, fmt.Errorf("%w: chain %s must connect at least 2 elements, got %d", ErrInvalidChain, name, len(elements))
	}
	seen := make(map[string]struct{}, len(elements))
	for i, element := range elements {
		if element == nil {
			return nil, fmt.Errorf("%w: chain %s has nil element at index %d", ErrInvalidChain, name, i)
		}
		if _, dup := seen[element.name]; dup {
			return nil, fmt.Errorf("%w: chain %s contains duplicate element %s", ErrInvalidChain, name, element.name)
		}
		seen[element.name] = struct{}{}
	}
	return &Chain{name: name, elements: append([]*Element(nil), elements...)}, nil
}

// ChainOf builds a chain from element names.
func ChainOf(name string, elementNames ...string) (*Chain, error) {
	elements := make([]*Element, 0, len(elementNames))
	for _, elementName := range elementNames {
		element, err := NewElement(elementName)
		if err != nil {
			return nil, fmt.Errorf("chain %s: %w", name, err)
		}
		elements = append(elements, element)
	}
	return NewChain(name, elements...)
}

func (c *Chain) Name() string {
	return c.name
}

// Elements returns the chain members in declaration order.
func (c *Chain) Elements() []*Element {
	return append([]*Element(nil), c.elements...)
}

func (c *Chain) Len() int {
	return len(c.elements)
}

func (c *Chain) String() string {
	names := make([]string, 0, len(c.elements))
	for _, element := range c.elements {
		names = append(names, element.name)
	}
	return c.name + ": " + strings.Join(names, ", ")
}
