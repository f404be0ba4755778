package memory

import (
	"context"
	"sort"
	"sync"

	"patchbay/domain/core/entities"
	pkgerrors "patchbay/pkg/errors"
)

// DefinitionRepository provides an in-memory implementation of the
// definition repository port. Record ids auto-increment; definitions
// are deep-copied on the way in and out so callers cannot mutate
// stored state behind the repository's back.
type DefinitionRepository struct {
	mu          sync.RWMutex
	definitions map[int]*entities.CompositeNodeDefinition
	nextID      int
}

// NewDefinitionRepository creates an empty in-memory repository
func NewDefinitionRepository() *DefinitionRepository {
	return &DefinitionRepository{
		definitions: make(map[int]*entities.CompositeNodeDefinition),
		nextID:      1,
	}
}

// Seed stores prebuilt definitions at startup, bypassing the
// editability guard that protects them afterwards
func (r *DefinitionRepository) Seed(defs []*entities.CompositeNodeDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range defs {
		copied := clone(def)
		copied.ID = r.nextID
		copied.IsPrebuilt = true
		r.definitions[copied.ID] = copied
		r.nextID++
	}
}

// GetAll retrieves every stored definition, sorted by record id
func (r *DefinitionRepository) GetAll(ctx context.Context) ([]*entities.CompositeNodeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.CompositeNodeDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		out = append(out, clone(def))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID retrieves a definition by record id
func (r *DefinitionRepository) GetByID(ctx context.Context, id int) (*entities.CompositeNodeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.definitions[id]
	if !exists {
		return nil, pkgerrors.NewNotFound("definition not found")
	}
	return clone(def), nil
}

// Save stores a new definition and allocates its record id
func (r *DefinitionRepository) Save(ctx context.Context, def *entities.CompositeNodeDefinition) (int, error) {
	if def == nil {
		return 0, pkgerrors.NewValidation("definition is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := clone(def)
	copied.ID = r.nextID
	r.definitions[copied.ID] = copied
	r.nextID++
	return copied.ID, nil
}

// Update overwrites an existing definition
func (r *DefinitionRepository) Update(ctx context.Context, def *entities.CompositeNodeDefinition) error {
	if def == nil {
		return pkgerrors.NewValidation("definition is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.ID]; !exists {
		return pkgerrors.NewNotFound("definition not found")
	}
	r.definitions[def.ID] = clone(def)
	return nil
}

// Delete removes a definition
func (r *DefinitionRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[id]; !exists {
		return pkgerrors.NewNotFound("definition not found")
	}
	delete(r.definitions, id)
	return nil
}

func clone(def *entities.CompositeNodeDefinition) *entities.CompositeNodeDefinition {
	copied := *def
	copied.Inputs = append([]entities.CompositePort(nil), def.Inputs...)
	copied.Outputs = append([]entities.CompositePort(nil), def.Outputs...)
	copied.Internal = def.Internal.Clone()
	return &copied
}
