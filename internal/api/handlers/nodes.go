package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/onnwee/forcegraph/internal/apierr"
	"github.com/onnwee/forcegraph/internal/graph"
	"github.com/onnwee/forcegraph/internal/layout"
)

// NodeRequest is the body of POST /api/nodes. Position is optional but x
// and y must be given together.
type NodeRequest struct {
	ID     string   `json:"id" validate:"omitempty,max=128,printascii"`
	X      *float64 `json:"x" validate:"required_with=Y"`
	Y      *float64 `json:"y" validate:"required_with=X"`
	Mass   float64  `json:"mass" validate:"gte=0"`
	Charge float64  `json:"charge"`
}

// EdgeRequest is the body of POST /api/edges.
type EdgeRequest struct {
	From string `json:"from" validate:"required,max=128"`
	To   string `json:"to" validate:"required,max=128"`
}

// DragRequest is the body of PUT and PATCH /api/nodes/{id}/drag.
type DragRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func nodeDoc(n layout.Node) graph.NodeDoc {
	x, y := n.Position.X, n.Position.Y
	return graph.NodeDoc{ID: string(n.ID), X: &x, Y: &y, Mass: n.Mass, Charge: n.Charge}
}

// CreateNode adds a node. Without an id one is generated; without a
// position the node is placed on the spiral.
// POST /api/nodes
func (h *Handler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if apiErr := decodeRequest(r, &req); apiErr != nil {
		apierr.WriteErrorWithContext(w, r, apiErr)
		return
	}
	spec := graph.NodeSpec{ID: layout.NodeID(req.ID), Mass: req.Mass, Charge: req.Charge}
	if req.X != nil && req.Y != nil {
		spec.Position = &layout.Point{X: *req.X, Y: *req.Y}
	}
	node, err := h.store.AddNode(spec)
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.FromGraph(err))
		return
	}
	h.changed()
	writeJSON(w, http.StatusCreated, nodeDoc(node))
}

// DeleteNode removes a node and its edges.
// DELETE /api/nodes/{id}
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := layout.NodeID(mux.Vars(r)["id"])
	if err := h.store.RemoveNode(id); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.FromGraph(err))
		return
	}
	h.changed()
	w.WriteHeader(http.StatusNoContent)
}

// CreateEdge connects two existing nodes.
// POST /api/edges
func (h *Handler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if apiErr := decodeRequest(r, &req); apiErr != nil {
		apierr.WriteErrorWithContext(w, r, apiErr)
		return
	}
	if err := h.store.AddEdge(layout.NodeID(req.From), layout.NodeID(req.To)); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.FromGraph(err))
		return
	}
	h.changed()
	writeJSON(w, http.StatusCreated, graph.EdgeDoc{From: req.From, To: req.To})
}

// DeleteEdge removes the edge named by the from and to query parameters.
// DELETE /api/edges?from=a&to=b
func (h *Handler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	switch {
	case from == "":
		apierr.WriteErrorWithContext(w, r, apierr.ValidationMissingField("from"))
		return
	case to == "":
		apierr.WriteErrorWithContext(w, r, apierr.ValidationMissingField("to"))
		return
	}
	if err := h.store.RemoveEdge(layout.NodeID(from), layout.NodeID(to)); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.FromGraph(err))
		return
	}
	h.changed()
	w.WriteHeader(http.StatusNoContent)
}

// DragNode pins a node at the given point, starting a drag or moving an
// ongoing one. The layout treats the node as static until the drag ends.
// PUT /api/nodes/{id}/drag
func (h *Handler) DragNode(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if apiErr := decodeRequest(r, &req); apiErr != nil {
		apierr.WriteErrorWithContext(w, r, apiErr)
		return
	}
	id := layout.NodeID(mux.Vars(r)["id"])
	if err := h.store.BeginDrag(id, layout.Point{X: *req.X, Y: *req.Y}); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.FromGraph(err))
		return
	}
	node, err := h.store.Node(id)
	if err != nil {
		// Removed concurrently
		apierr.WriteErrorWithContext(w, r, apierr.FromGraph(err))
		return
	}
	writeJSON(w, http.StatusOK, nodeDoc(node))
}

// MoveDrag moves a node that is already being dragged. Unlike DragNode
// it does not start a drag.
// PATCH /api/nodes/{id}/drag
func (h *Handler) MoveDrag(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if apiErr := decodeRequest(r, &req); apiErr != nil {
		apierr.WriteErrorWithContext(w, r, apiErr)
		return
	}
	id := layout.NodeID(mux.Vars(r)["id"])
	if err := h.store.MoveDrag(id, layout.Point{X: *req.X, Y: *req.Y}); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.FromGraph(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EndDrag releases a dragged node back to the layout.
// DELETE /api/nodes/{id}/drag
func (h *Handler) EndDrag(w http.ResponseWriter, r *http.Request) {
	id := layout.NodeID(mux.Vars(r)["id"])
	if err := h.store.EndDrag(id); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.FromGraph(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
