package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/onnwee/forcegraph/internal/layout"
)

// NodeSpec describes a node to add. A nil Position places the node on a
// spiral around the origin; an empty ID is replaced by a UUID. Zero Mass or
// Charge means the simulation default.
type NodeSpec struct {
	ID       layout.NodeID
	Position *layout.Point
	Mass     float64
	Charge   float64
}

// Stats are the store's current counts.
type Stats struct {
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Dragging int    `json:"dragging"`
	Version  uint64 `json:"version"`
}

type edgeKey struct{ from, to layout.NodeID }

// Store is an in-memory graph with positions, safe for concurrent use.
// Nodes keep their insertion order.
type Store struct {
	mu       sync.RWMutex
	nodes    []layout.Node
	index    map[layout.NodeID]int
	edges    []layout.Edge
	edgeSet  map[edgeKey]struct{}
	dragging layout.NodeSet
	placed   int
	version  uint64
}

func NewStore() *Store {
	return &Store{
		index:    make(map[layout.NodeID]int),
		edgeSet:  make(map[edgeKey]struct{}),
		dragging: make(layout.NodeSet),
	}
}

// AddNode inserts a node and returns it as stored.
func (s *Store) AddNode(spec NodeSpec) (layout.Node, error) {
	if spec.Position != nil && !spec.Position.IsFinite() {
		return layout.Node{}, ErrInvalidPoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.addNodeLocked(spec)
	if err != nil {
		return layout.Node{}, err
	}
	s.version++
	return n, nil
}

func (s *Store) addNodeLocked(spec NodeSpec) (layout.Node, error) {
	if spec.ID == "" {
		spec.ID = layout.NodeID(uuid.NewString())
	}
	if _, ok := s.index[spec.ID]; ok {
		return layout.Node{}, fmt.Errorf("%w: %s", ErrNodeExists, spec.ID)
	}
	n := layout.Node{ID: spec.ID, Mass: spec.Mass, Charge: spec.Charge}
	if spec.Position != nil {
		n.Position = *spec.Position
	} else {
		n.Position = spiralPoint(s.placed)
		s.placed++
	}
	s.index[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	return n, nil
}

// RemoveNode deletes a node together with its incident edges.
func (s *Store) RemoveNode(id layout.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.nodes); j++ {
		s.index[s.nodes[j].ID] = j
	}

	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.From == id || e.To == id {
			delete(s.edgeSet, edgeKey{e.From, e.To})
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	delete(s.dragging, id)
	s.version++
	return nil
}

// AddEdge connects two existing, distinct nodes.
func (s *Store) AddEdge(from, to layout.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.addEdgeLocked(from, to); err != nil {
		return err
	}
	s.version++
	return nil
}

func (s *Store) addEdgeLocked(from, to layout.NodeID) error {
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfLoop, from)
	}
	for _, id := range [2]layout.NodeID{from, to} {
		if _, ok := s.index[id]; !ok {
			return fmt.Errorf("%w: %s", ErrEdgeEndpoint, id)
		}
	}
	k := edgeKey{from, to}
	if _, ok := s.edgeSet[k]; ok {
		return fmt.Errorf("%w: %s->%s", ErrEdgeExists, from, to)
	}
	s.edgeSet[k] = struct{}{}
	s.edges = append(s.edges, layout.Edge{From: from, To: to})
	return nil
}

func (s *Store) RemoveEdge(from, to layout.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := edgeKey{from, to}
	if _, ok := s.edgeSet[k]; !ok {
		return fmt.Errorf("%w: %s->%s", ErrEdgeNotFound, from, to)
	}
	delete(s.edgeSet, k)
	for i, e := range s.edges {
		if e.From == from && e.To == to {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			break
		}
	}
	s.version++
	return nil
}

// Node returns the node with id.
func (s *Store) Node(id layout.NodeID) (layout.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return layout.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return s.nodes[i], nil
}

// SetPosition moves a node regardless of drag state.
func (s *Store) SetPosition(id layout.NodeID, p layout.Point) error {
	if !p.IsFinite() {
		return ErrInvalidPoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPositionLocked(id, p)
}

func (s *Store) setPositionLocked(id layout.NodeID, p layout.Point) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	s.nodes[i].Position = p
	s.version++
	return nil
}

// BeginDrag pins a node at p until EndDrag. The layout does not move a
// dragged node. Calling it on a node already being dragged moves it.
func (s *Store) BeginDrag(id layout.NodeID, p layout.Point) error {
	if !p.IsFinite() {
		return ErrInvalidPoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setPositionLocked(id, p); err != nil {
		return err
	}
	s.dragging[id] = struct{}{}
	return nil
}

// MoveDrag moves a node that is being dragged.
func (s *Store) MoveDrag(id layout.NodeID, p layout.Point) error {
	if !p.IsFinite() {
		return ErrInvalidPoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dragging.Has(id) {
		return fmt.Errorf("%w: %s", ErrNotDragging, id)
	}
	return s.setPositionLocked(id, p)
}

// EndDrag releases a node back to the layout.
func (s *Store) EndDrag(id layout.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dragging.Has(id) {
		return fmt.Errorf("%w: %s", ErrNotDragging, id)
	}
	delete(s.dragging, id)
	s.version++
	return nil
}

// DraggingNodeIDs returns a copy of the set of dragged nodes.
func (s *Store) DraggingNodeIDs() layout.NodeSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(layout.NodeSet, len(s.dragging))
	for id := range s.dragging {
		out[id] = struct{}{}
	}
	return out
}

// Snapshot returns a copy of the graph in insertion order.
func (s *Store) Snapshot() *layout.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &layout.Snapshot{
		Nodes: append([]layout.Node(nil), s.nodes...),
		Edges: append([]layout.Edge(nil), s.edges...),
	}
}

// UpdateNodePositions applies positions computed by a layout tick. Unknown
// ids and nodes dragged since the snapshot was taken are ignored.
func (s *Store) UpdateNodePositions(positions map[layout.NodeID]layout.Point) {
	if len(positions) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for id, p := range positions {
		i, ok := s.index[id]
		if !ok || s.dragging.Has(id) || !p.IsFinite() {
			continue
		}
		if s.nodes[i].Position != p {
			s.nodes[i].Position = p
			changed = true
		}
	}
	if changed {
		s.version++
	}
}

// Positions returns the current position of every node.
func (s *Store) Positions() map[layout.NodeID]layout.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[layout.NodeID]layout.Point, len(s.nodes))
	for _, n := range s.nodes {
		out[n.ID] = n.Position
	}
	return out
}

// Version increases on every change, including layout ticks that moved a
// node.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Nodes: len(s.nodes), Edges: len(s.edges), Dragging: len(s.dragging), Version: s.version}
}

// Counts implements metrics.GraphCounter.
func (s *Store) Counts() (nodes, edges, dragging int) {
	st := s.Stats()
	return st.Nodes, st.Edges, st.Dragging
}
