package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/onnwee/forcegraph/internal/layout"
)

// Format is a graph document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown graph document format")

// NodeDoc is a node in a graph document. Missing coordinates place the node
// automatically.
type NodeDoc struct {
	ID     string   `json:"id" yaml:"id"`
	X      *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      *float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Mass   float64  `json:"mass,omitempty" yaml:"mass,omitempty"`
	Charge float64  `json:"charge,omitempty" yaml:"charge,omitempty"`
}

type EdgeDoc struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Document is the import/export form of a graph.
type Document struct {
	Nodes []NodeDoc `json:"nodes" yaml:"nodes"`
	Edges []EdgeDoc `json:"edges" yaml:"edges"`
}

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Decode reads a document from r.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json graph: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml graph: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &doc, nil
}

// Encode writes doc to w.
func (d *Document) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// LoadFile reads a JSON or YAML graph document from path.
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Load replaces the store's content with doc. On error the store is left
// unchanged.
func (s *Store) Load(doc *Document) error {
	next := NewStore()
	for i, nd := range doc.Nodes {
		if nd.ID == "" {
			return fmt.Errorf("node %d: empty id", i)
		}
		spec := NodeSpec{ID: layout.NodeID(nd.ID), Mass: nd.Mass, Charge: nd.Charge}
		if nd.X != nil && nd.Y != nil {
			p := layout.Point{X: *nd.X, Y: *nd.Y}
			if !p.IsFinite() {
				return fmt.Errorf("node %q: %w", nd.ID, ErrInvalidPoint)
			}
			spec.Position = &p
		}
		if _, err := next.addNodeLocked(spec); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
	}
	for i, ed := range doc.Edges {
		if err := next.addEdgeLocked(layout.NodeID(ed.From), layout.NodeID(ed.To)); err != nil {
			return fmt.Errorf("edge %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes, s.index = next.nodes, next.index
	s.edges, s.edgeSet = next.edges, next.edgeSet
	s.dragging = make(layout.NodeSet)
	s.placed = next.placed
	s.version++
	return nil
}

// Export returns the graph with current positions.
func (s *Store) Export() *Document {
	doc, _ := s.ExportVersion()
	return doc
}

// ExportVersion returns the graph together with the version it reflects.
func (s *Store) ExportVersion() (*Document, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := &Document{
		Nodes: make([]NodeDoc, len(s.nodes)),
		Edges: make([]EdgeDoc, len(s.edges)),
	}
	for i, n := range s.nodes {
		x, y := n.Position.X, n.Position.Y
		doc.Nodes[i] = NodeDoc{ID: string(n.ID), X: &x, Y: &y, Mass: n.Mass, Charge: n.Charge}
	}
	for i, e := range s.edges {
		doc.Edges[i] = EdgeDoc{From: string(e.From), To: string(e.To)}
	}
	return doc, s.version
}
