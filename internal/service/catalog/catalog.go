// Package catalog serves the static reference data clients use to fill in
// case specifications: case types, shade systems and materials.
package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data/*.json
var files embed.FS

type Kind string

const (
	Types     Kind = "types"
	Shades    Kind = "shades"
	Materials Kind = "materials"
)

type Service interface {
	// Get returns the compacted JSON document of a catalog.
	Get(kind Kind) (json.RawMessage, error)
}

type catalogService struct {
	docs map[Kind]json.RawMessage
}

// New loads and validates every catalog once.
func New() (Service, error) {
	s := &catalogService{docs: make(map[Kind]json.RawMessage)}
	for _, k := range []Kind{Types, Shades, Materials} {
		raw, err := files.ReadFile("data/" + string(k) + ".json")
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", k, err)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", k, err)
		}
		s.docs[k] = buf.Bytes()
	}
	return s, nil
}

func (s *catalogService) Get(kind Kind) (json.RawMessage, error) {
	doc, ok := s.docs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q", kind)
	}
	return doc, nil
}
