package artifact

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrArtifactNotFound is returned when an artifact cannot be found by ID.
var ErrArtifactNotFound = errors.New("artifact not found")

// Repository defines the interface for artifact persistence.
type Repository interface {
	// Save persists an artifact record.
	Save(ctx context.Context, a *Artifact) error

	// FindByID retrieves an artifact by its unique identifier.
	// Returns ErrArtifactNotFound if the artifact does not exist.
	FindByID(ctx context.Context, id string) (*Artifact, error)

	// List returns all artifacts, newest first.
	List(ctx context.Context) ([]*Artifact, error)
}

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository.
type MemoryRepository struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

// NewMemoryRepository creates a new in-memory artifact repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		artifacts: make(map[string]*Artifact),
	}
}

// Save persists an artifact record. Records are stored by value copy so
// callers cannot mutate them after saving.
func (r *MemoryRepository) Save(_ context.Context, a *Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *a
	r.artifacts[a.ID] = &clone
	return nil
}

// FindByID retrieves an artifact by its ID.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.artifacts[id]
	if !ok {
		return nil, ErrArtifactNotFound
	}
	clone := *a
	return &clone, nil
}

// List returns all artifacts, newest first.
func (r *MemoryRepository) List(_ context.Context) ([]*Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Artifact, 0, len(r.artifacts))
	for _, a := range r.artifacts {
		clone := *a
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})
	return result, nil
}
