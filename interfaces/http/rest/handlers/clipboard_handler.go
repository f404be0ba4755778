package handlers

import (
	"net/http"

	"patchbay/application/clipboard"

	"go.uber.org/zap"
)

// ClipboardHandler exposes copy, cut and paste on the focused context
type ClipboardHandler struct {
	coordinator *clipboard.Coordinator
	logger      *zap.Logger
}

// NewClipboardHandler creates a clipboard handler
func NewClipboardHandler(coordinator *clipboard.Coordinator, logger *zap.Logger) *ClipboardHandler {
	return &ClipboardHandler{coordinator: coordinator, logger: logger}
}

type selectionRequest struct {
	IDs []string `json:"ids"`
}

// Copy serializes the selection to the clipboard
func (h *ClipboardHandler) Copy(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if err := h.coordinator.Copy(req.IDs); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Cut copies then deletes the selection as one undo step
func (h *ClipboardHandler) Cut(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if err := h.coordinator.Cut(req.IDs); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Paste materializes the clipboard payload in the focused context
func (h *ClipboardHandler) Paste(w http.ResponseWriter, r *http.Request) {
	ids, err := h.coordinator.Paste()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

type focusRequest struct {
	Context string `json:"context"`
}

// SetFocus routes subsequent clipboard operations to a context
func (h *ClipboardHandler) SetFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	h.coordinator.SetFocus(req.Context)
	writeJSON(w, http.StatusOK, map[string]string{"focus": h.coordinator.Focus()})
}
