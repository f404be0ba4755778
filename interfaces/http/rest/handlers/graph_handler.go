package handlers

import (
	"net/http"

	"patchbay/application/services"
	"patchbay/domain/core/valueobjects"
	"patchbay/domain/events"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GraphHandler exposes the graph store's mutations over REST
type GraphHandler struct {
	store  *services.GraphStore
	logger *zap.Logger
}

// NewGraphHandler creates a graph handler
func NewGraphHandler(store *services.GraphStore, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{store: store, logger: logger}
}

type createNodeRequest struct {
	NodeType string  `json:"nodeType"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// CreateNode adds a node to the graph
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	id, err := h.store.AddNode(req.NodeType, req.X, req.Y)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// DeleteNode removes a node and everything touching it
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.store.RemoveNode(id)
	writeJSON(w, http.StatusNoContent, nil)
}

type moveNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveNode updates a node's canvas position
func (h *GraphHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req moveNodeRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	h.store.MoveNode(id, req.X, req.Y)
	writeJSON(w, http.StatusNoContent, nil)
}

type updatePropertyRequest struct {
	Value any `json:"value"`
}

// UpdateProperty sets one node property
func (h *GraphHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req updatePropertyRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	h.store.UpdateNodeProperty(id, chi.URLParam(r, "name"), req.Value)
	writeJSON(w, http.StatusNoContent, nil)
}

// GetProperty reads one node property with metadata-default fallback
func (h *GraphHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	value, ok := h.store.NodeProperty(id, chi.URLParam(r, "name"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: "property not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value})
}

type createEdgeRequest struct {
	SourceID     string `json:"sourceId"`
	TargetID     string `json:"targetId"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// CreateEdge connects two node ports
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	sourceID, err := valueobjects.NewNodeIDFromString(req.SourceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	targetID, err := valueobjects.NewNodeIDFromString(req.TargetID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := h.store.AddEdge(sourceID, targetID, req.SourceHandle, req.TargetHandle)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// DeleteEdge removes an edge
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewEdgeIDFromString(chi.URLParam(r, "edgeID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.store.RemoveEdge(id)
	writeJSON(w, http.StatusNoContent, nil)
}

// Undo reverts the newest undo transaction
func (h *GraphHandler) Undo(w http.ResponseWriter, r *http.Request) {
	applied := h.store.Undo()
	writeJSON(w, http.StatusOK, map[string]bool{
		"applied": applied,
		"canUndo": h.store.CanUndo(),
		"canRedo": h.store.CanRedo(),
	})
}

// Redo re-applies the newest undone transaction
func (h *GraphHandler) Redo(w http.ResponseWriter, r *http.Request) {
	applied := h.store.Redo()
	writeJSON(w, http.StatusOK, map[string]bool{
		"applied": applied,
		"canUndo": h.store.CanUndo(),
		"canRedo": h.store.CanRedo(),
	})
}

// Clear wipes the whole graph and its history
func (h *GraphHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.ClearAllNodes()
	writeJSON(w, http.StatusNoContent, nil)
}

// TogglePlayback starts or stops the audio engine
func (h *GraphHandler) TogglePlayback(w http.ResponseWriter, r *http.Request) {
	playing, err := h.store.TogglePlayback()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"playing": playing})
}

type batchRequest struct {
	Label string `json:"label"`
}

// BeginBatch opens an undo coalescing scope
func (h *GraphHandler) BeginBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	h.store.BeginBatch(req.Label)
	writeJSON(w, http.StatusNoContent, nil)
}

// EndBatch closes the current undo coalescing scope
func (h *GraphHandler) EndBatch(w http.ResponseWriter, r *http.Request) {
	h.store.EndBatch()
	writeJSON(w, http.StatusNoContent, nil)
}

// DrainEvents returns the domain events accumulated since the last
// drain and clears the buffer. Polling clients use this to observe
// mutations without holding a connection open.
func (h *GraphHandler) DrainEvents(w http.ResponseWriter, r *http.Request) {
	drained := h.store.DrainEvents()
	if drained == nil {
		drained = []events.DomainEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": drained})
}

// GetGraph returns the full graph snapshot
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// LoadGraph replaces the graph with the posted snapshot
func (h *GraphHandler) LoadGraph(w http.ResponseWriter, r *http.Request) {
	var snap services.Snapshot
	if !decodeBody(w, r, h.logger, &snap) {
		return
	}
	if err := h.store.LoadSnapshot(snap); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
