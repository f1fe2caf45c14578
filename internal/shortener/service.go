package shortener

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	maxDestinationLength = 2048
	// generateAttempts bounds retries when a generated code collides.
	generateAttempts = 5
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// CodeGenerator generates random short codes.
type CodeGenerator func() string

// CreateParams are the inputs for creating a mapping.
type CreateParams struct {
	Destination string
	Alias       string // optional caller-requested code
	Owner       OwnerID
	ExpiresAt   *time.Time
}

// Service implements code allocation and mapping lifecycle on top of a Repository.
type Service struct {
	repo     Repository
	generate CodeGenerator
	now      func() time.Time
}

// NewService creates a new shortener service.
func NewService(repo Repository, generator CodeGenerator) *Service {
	return &Service{
		repo:     repo,
		generate: generator,
		now:      time.Now,
	}
}

// Create validates the destination and allocates a code for it.
//
// A requested alias gets a single insert attempt; a conflict surfaces as
// ErrAliasTaken so the caller can pick a different one. Without an alias the
// service generates codes and retries a bounded number of times, since the
// store is the only arbiter of uniqueness.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Mapping, error) {
	destination, err := validateDestination(params.Destination)
	if err != nil {
		return nil, err
	}

	if params.ExpiresAt != nil && params.ExpiresAt.Before(s.now()) {
		return nil, ErrInvalidExpiry
	}

	if alias := strings.TrimSpace(params.Alias); alias != "" {
		return s.createWithAlias(ctx, alias, destination, params)
	}

	return s.createGenerated(ctx, destination, params)
}

func (s *Service) createWithAlias(
	ctx context.Context, alias, destination string, params CreateParams,
) (*Mapping, error) {
	if !aliasPattern.MatchString(alias) {
		return nil, ErrInvalidAlias
	}

	mapping := &Mapping{
		Code:        Code(alias),
		Destination: destination,
		Owner:       params.Owner,
		CreatedAt:   s.now(),
		ExpiresAt:   params.ExpiresAt,
	}

	if err := s.repo.Create(ctx, mapping); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return nil, ErrAliasTaken
		}

		return nil, err
	}

	return mapping, nil
}

func (s *Service) createGenerated(
	ctx context.Context, destination string, params CreateParams,
) (*Mapping, error) {
	for range generateAttempts {
		mapping := &Mapping{
			Code:        Code(s.generate()),
			Destination: destination,
			Owner:       params.Owner,
			CreatedAt:   s.now(),
			ExpiresAt:   params.ExpiresAt,
		}

		err := s.repo.Create(ctx, mapping)
		if err == nil {
			return mapping, nil
		}

		if !errors.Is(err, ErrDuplicateCode) {
			return nil, err
		}
	}

	return nil, ErrAllocationExhausted
}

// Resolve returns the mapping for a code, expired or not. The caller is
// responsible for the expiry decision (the redirect path answers 410).
func (s *Service) Resolve(ctx context.Context, code Code) (*Mapping, error) {
	return s.repo.GetByCode(ctx, code)
}

// ListByOwner returns the owner's mappings, newest first.
func (s *Service) ListByOwner(ctx context.Context, owner OwnerID) ([]*Mapping, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Delete logically deletes the owner's mapping. The code stays reserved.
func (s *Service) Delete(ctx context.Context, code Code, owner OwnerID) error {
	return s.repo.Delete(ctx, code, owner)
}

func validateDestination(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxDestinationLength {
		return "", ErrInvalidURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidURL
	}

	if parsed.Host == "" {
		return "", ErrInvalidURL
	}

	return parsed.String(), nil
}
