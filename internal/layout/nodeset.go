package layout

import "sort"

// NodeSet is a set of node ids.
type NodeSet map[NodeID]struct{}

func NewNodeSet(ids ...NodeID) NodeSet {
	s := make(NodeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s NodeSet) Has(id NodeID) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding the members of both.
func (s NodeSet) Union(other NodeSet) NodeSet {
	u := make(NodeSet, len(s)+len(other))
	for id := range s {
		u[id] = struct{}{}
	}
	for id := range other {
		u[id] = struct{}{}
	}
	return u
}

// Sorted returns the members in ascending order.
func (s NodeSet) Sorted() []NodeID {
	ids := make([]NodeID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
