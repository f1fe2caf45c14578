package shortener

import "context"

// Repository defines storage operations for mappings.
//
// Create must be an atomic insert-if-absent: two concurrent creations for
// the same code must resolve to exactly one success and one ErrDuplicateCode
// at the store level, never by allocator cooperation.
type Repository interface {
	Create(ctx context.Context, m *Mapping) error
	// GetByCode returns the mapping whether or not it is expired or deleted.
	// Callers decide how to present expiry; deleted mappings stay resolvable
	// so their codes remain reserved.
	GetByCode(ctx context.Context, code Code) (*Mapping, error)
	// IncrementClicks bumps the cached click counter atomically in the store.
	IncrementClicks(ctx context.Context, code Code) error
	// ListByOwner returns the owner's live mappings, newest first.
	ListByOwner(ctx context.Context, owner OwnerID) ([]*Mapping, error)
	// Delete logically deletes an owner's mapping. The row is kept so the
	// code can never be reallocated.
	Delete(ctx context.Context, code Code, owner OwnerID) error
}
