package handlers

import (
	"io"
	"net/http"
	"strconv"

	"patchbay/application/composite"
	"patchbay/domain/core/entities"
	pkgerrors "patchbay/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefinitionHandler exposes the composite definition library over REST
type DefinitionHandler struct {
	service *composite.DefinitionService
	logger  *zap.Logger
}

// NewDefinitionHandler creates a definition handler
func NewDefinitionHandler(service *composite.DefinitionService, logger *zap.Logger) *DefinitionHandler {
	return &DefinitionHandler{service: service, logger: logger}
}

// definitionResponse is the wire shape of one definition
type definitionResponse struct {
	ID          int                      `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Inputs      []entities.CompositePort `json:"inputs"`
	Outputs     []entities.CompositePort `json:"outputs"`
	Internal    entities.InternalGraph   `json:"internalGraph"`
	IsPrebuilt  bool                     `json:"isPrebuilt"`
}

type definitionRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Inputs      []entities.CompositePort `json:"inputs"`
	Outputs     []entities.CompositePort `json:"outputs"`
	Internal    entities.InternalGraph   `json:"internalGraph"`
}

func toResponse(def *entities.CompositeNodeDefinition) definitionResponse {
	return definitionResponse{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Inputs:      def.Inputs,
		Outputs:     def.Outputs,
		Internal:    def.Internal,
		IsPrebuilt:  def.IsPrebuilt,
	}
}

func definitionID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "definitionID"))
	if err != nil {
		return 0, pkgerrors.NewValidation("definition id must be an integer")
	}
	return id, nil
}

// List returns every stored definition
func (h *DefinitionHandler) List(w http.ResponseWriter, r *http.Request) {
	defs, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	out := make([]definitionResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, toResponse(def))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one definition
func (h *DefinitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := definitionID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	def, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(def))
}

// Create stores a new definition
func (h *DefinitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req definitionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	def := &entities.CompositeNodeDefinition{
		Name:        req.Name,
		Description: req.Description,
		Inputs:      req.Inputs,
		Outputs:     req.Outputs,
		Internal:    req.Internal,
	}
	id, err := h.service.Create(r.Context(), def)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"id": id})
}

// Update overwrites an editable definition
func (h *DefinitionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := definitionID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req definitionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	def := &entities.CompositeNodeDefinition{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Inputs:      req.Inputs,
		Outputs:     req.Outputs,
		Internal:    req.Internal,
	}
	if err := h.service.Update(r.Context(), def); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Delete removes an editable definition
func (h *DefinitionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := definitionID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type saveAsRequest struct {
	Name string `json:"name"`
}

// SaveAs stores an editable copy under a new name
func (h *DefinitionHandler) SaveAs(w http.ResponseWriter, r *http.Request) {
	id, err := definitionID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req saveAsRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	newID, err := h.service.SaveAs(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"id": newID})
}

// Export streams a definition in the portable JSON format
func (h *DefinitionHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := definitionID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	data, err := h.service.Export(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import stores a definition from the portable format
func (h *DefinitionHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, h.logger, pkgerrors.NewValidation("failed to read import body"))
		return
	}
	def, err := h.service.Import(r.Context(), data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(def))
}
