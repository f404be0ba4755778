package composite

import (
	"context"
	"encoding/json"
	"time"

	"patchbay/application/ports"
	"patchbay/domain/catalog"
	"patchbay/domain/core/entities"
	pkgerrors "patchbay/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ExportVersion is the current export file format version
const ExportVersion = "1.0"

// DefinitionService manages the composite node definition library:
// CRUD over the repository, the prebuilt immutability guard, and the
// portable export/import format.
type DefinitionService struct {
	repo     ports.DefinitionRepository
	catalog  *catalog.Catalog
	validate *validator.Validate
	logger   *zap.Logger
}

// NewDefinitionService creates a definition service
func NewDefinitionService(repo ports.DefinitionRepository, c *catalog.Catalog, logger *zap.Logger) *DefinitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionService{
		repo:     repo,
		catalog:  c,
		validate: validator.New(),
		logger:   logger,
	}
}

// List returns every stored definition
func (s *DefinitionService) List(ctx context.Context) ([]*entities.CompositeNodeDefinition, error) {
	return s.repo.GetAll(ctx)
}

// Get returns one definition by record id
func (s *DefinitionService) Get(ctx context.Context, id int) (*entities.CompositeNodeDefinition, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new definition and returns its allocated record id
func (s *DefinitionService) Create(ctx context.Context, def *entities.CompositeNodeDefinition) (int, error) {
	if def.Name == "" {
		return 0, pkgerrors.NewValidation("definition name is required")
	}
	def.IsPrebuilt = false

	id, err := s.repo.Save(ctx, def)
	if err != nil {
		return 0, err
	}
	s.logger.Info("definition created",
		zap.Int("definitionId", id), zap.String("name", def.Name))
	return id, nil
}

// Update overwrites an existing editable definition. Prebuilt
// definitions reject the update; save-as is the only way forward.
func (s *DefinitionService) Update(ctx context.Context, def *entities.CompositeNodeDefinition) error {
	existing, err := s.repo.GetByID(ctx, def.ID)
	if err != nil {
		return err
	}
	if err := existing.EnsureEditable(); err != nil {
		return err
	}
	if def.Name == "" {
		return pkgerrors.NewValidation("definition name is required")
	}
	def.IsPrebuilt = false
	return s.repo.Update(ctx, def)
}

// Delete removes an editable definition
func (s *DefinitionService) Delete(ctx context.Context, id int) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := existing.EnsureEditable(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SaveAs stores an editable copy of a definition under a new name.
// This is the escape hatch that makes prebuilt definitions useful as
// starting points.
func (s *DefinitionService) SaveAs(ctx context.Context, id int, name string) (int, error) {
	if name == "" {
		return 0, pkgerrors.NewValidation("definition name is required")
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	copied := existing.CopyAs(name)
	newID, err := s.repo.Save(ctx, copied)
	if err != nil {
		return 0, err
	}
	s.logger.Info("definition copied",
		zap.Int("sourceId", id), zap.Int("definitionId", newID), zap.String("name", name))
	return newID, nil
}

// exportEnvelope is the portable definition file format
type exportEnvelope struct {
	Name          string                   `json:"name" validate:"required"`
	Description   string                   `json:"description"`
	Inputs        []entities.CompositePort `json:"inputs"`
	Outputs       []entities.CompositePort `json:"outputs"`
	InternalGraph entities.InternalGraph   `json:"internalGraph"`
	ExportedAt    time.Time                `json:"exportedAt"`
	Version       string                   `json:"version" validate:"required"`
}

// Export serializes a definition to the portable JSON format
func (s *DefinitionService) Export(ctx context.Context, id int) ([]byte, error) {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	envelope := exportEnvelope{
		Name:          def.Name,
		Description:   def.Description,
		Inputs:        def.Inputs,
		Outputs:       def.Outputs,
		InternalGraph: def.Internal,
		ExportedAt:    time.Now().UTC(),
		Version:       ExportVersion,
	}
	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to export definition")
	}
	return out, nil
}

// Import parses and stores a definition from the portable format.
// Validation is all-or-nothing: a malformed file, a missing required
// field or an unknown node type rejects the whole import rather than
// storing a partial definition. Legacy sentinel ids are normalized on
// the way in.
func (s *DefinitionService) Import(ctx context.Context, data []byte) (*entities.CompositeNodeDefinition, error) {
	var envelope exportEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, pkgerrors.NewValidation("import file is not valid JSON")
	}
	if err := s.validate.Struct(envelope); err != nil {
		return nil, pkgerrors.NewValidation("import file is missing required fields: " + err.Error())
	}
	if len(envelope.InternalGraph.Nodes) == 0 && len(envelope.InternalGraph.Edges) == 0 {
		return nil, pkgerrors.NewValidation("import file has an empty internal graph")
	}

	for _, n := range envelope.InternalGraph.Nodes {
		if _, ok := s.catalog.Lookup(n.NodeType); !ok {
			return nil, pkgerrors.NewValidation("import references unknown node type: " + n.NodeType)
		}
	}

	def := &entities.CompositeNodeDefinition{
		Name:        envelope.Name,
		Description: envelope.Description,
		Inputs:      envelope.Inputs,
		Outputs:     envelope.Outputs,
		Internal:    NormalizeSentinels(envelope.InternalGraph, envelope.Inputs, envelope.Outputs),
		IsPrebuilt:  false,
	}

	id, err := s.repo.Save(ctx, def)
	if err != nil {
		return nil, err
	}
	def.ID = id
	s.logger.Info("definition imported",
		zap.Int("definitionId", id), zap.String("name", def.Name))
	return def, nil
}
