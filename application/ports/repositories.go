package ports

import (
	"context"

	"patchbay/domain/core/entities"
)

// DefinitionRepository persists composite node definitions keyed by an
// integer record id
// This is a port in hexagonal architecture - the application doesn't
// know about the implementation
type DefinitionRepository interface {
	// GetAll retrieves every stored definition
	GetAll(ctx context.Context) ([]*entities.CompositeNodeDefinition, error)

	// GetByID retrieves a definition by record id
	GetByID(ctx context.Context, id int) (*entities.CompositeNodeDefinition, error)

	// Save stores a new definition and allocates its record id
	Save(ctx context.Context, def *entities.CompositeNodeDefinition) (int, error)

	// Update overwrites an existing definition
	Update(ctx context.Context, def *entities.CompositeNodeDefinition) error

	// Delete removes a definition
	Delete(ctx context.Context, id int) error
}
