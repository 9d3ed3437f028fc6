package schema

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Parser turns a net-list source into a validated schema. Format-specific
// scanners live outside this package.
type Parser interface {
	Parse(r io.Reader) (*Schema, error)
}

// Document is the JSON interchange form of a schema.
type Document struct {
	Chains []ChainDocument `json:"chains"`
}

type ChainDocument struct {
	Name     string   `json:"name"`
	Elements []string `json:"elements"`
}

// DocumentParser reads the JSON interchange form.
type DocumentParser struct{}

func (DocumentParser) Parse(r io.Reader) (*Schema, error) {
	return DecodeDocument(r)
}

func DecodeDocument(r io.Reader) (*Schema, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode schema document: %w", err)
	}
	return doc.Build()
}

// Build validates the document and constructs the schema.
func (d Document) Build() (*Schema, error) {
	chains := make([]*Chain, 0, len(d.Chains))
	for _, item := range d.Chains {
		chain, err := ChainOf(item.Name, item.Elements...)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}
	return New(chains)
}

// ToDocument renders a schema back to its interchange form.
func ToDocument(s *Schema) Document {
	doc := Document{Chains: make([]ChainDocument, 0, len(s.chains))}
	for _, chain := range s.chains {
		names := make([]string, 0, len(chain.elements))
		for _, element := range chain.elements {
			names = append(names, element.name)
		}
		doc.Chains = append(doc.Chains, ChainDocument{Name: chain.name, Elements: names})
	}
	return doc
}

func EncodeDocument(w io.Writer, s *Schema) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToDocument(s))
}
