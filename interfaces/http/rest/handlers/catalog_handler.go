package handlers

import (
	"net/http"

	"patchbay/domain/catalog"
	"patchbay/infrastructure/diagnostics"

	"go.uber.org/zap"
)

// CatalogHandler exposes the node type catalog and recent diagnostics
type CatalogHandler struct {
	catalog *catalog.Catalog
	sink    *diagnostics.Sink
	logger  *zap.Logger
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(c *catalog.Catalog, sink *diagnostics.Sink, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, sink: sink, logger: logger}
}

// ListTypes returns every node type descriptor
func (h *CatalogHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Types())
}

type diagnosticResponse struct {
	Component string `json:"component"`
	NodeID    string `json:"nodeId,omitempty"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	At        string `json:"at"`
}

// ListDiagnostics returns the recent degraded-component reports
func (h *CatalogHandler) ListDiagnostics(w http.ResponseWriter, r *http.Request) {
	recent := h.sink.Recent()
	out := make([]diagnosticResponse, 0, len(recent))
	for _, d := range recent {
		resp := diagnosticResponse{
			Component: d.Component,
			NodeID:    d.NodeID,
			Message:   d.Message,
			At:        d.At.Format("2006-01-02T15:04:05.000Z07:00"),
		}
		if d.Err != nil {
			resp.Error = d.Err.Error()
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}
