package graph

import "errors"

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrNodeExists   = errors.New("node already exists")
	ErrEdgeNotFound = errors.New("edge not found")
	ErrEdgeExists   = errors.New("edge already exists")
	ErrEdgeEndpoint = errors.New("edge endpoint does not exist")
	ErrSelfLoop     = errors.New("edge endpoints must differ")
	ErrNotDragging  = errors.New("node is not being dragged")
	ErrInvalidPoint = errors.New("coordinates must be finite")
)
