package shortener

import "errors"

var (
	// ErrNotFound indicates the code does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("mapping not found")
	// ErrDuplicateCode indicates an insert raced with another mapping holding the same code.
	ErrDuplicateCode = errors.New("code already exists")
	// ErrAliasTaken indicates a caller-requested alias is already in use.
	ErrAliasTaken = errors.New("alias already taken")
	// ErrInvalidAlias indicates a requested alias fails the character or length policy.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrInvalidURL indicates the destination is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid destination url")
	// ErrInvalidExpiry indicates an expiry timestamp in the past.
	ErrInvalidExpiry = errors.New("expiry must be in the future")
	// ErrAllocationExhausted indicates repeated generated-code collisions.
	// Practically unreachable at the configured code length, but handled.
	ErrAllocationExhausted = errors.New("code allocation exhausted")
)
