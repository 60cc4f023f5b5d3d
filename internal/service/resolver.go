package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vairamhq/link-shortener/internal/models"
)

// ErrLinkExpired is returned when a link is found but its expiry moment is in the past.
var ErrLinkExpired = errors.New("link expired")

// Resolver turns an incoming code into a redirect decision.
type Resolver struct {
	repo LinkRepository
}

// NewResolver creates a new Resolver with the provided repository.
func NewResolver(repo LinkRepository) *Resolver {
	return &Resolver{
		repo: repo,
	}
}

// Resolve looks up the link for the given code and classifies it. A missing
// code yields database.ErrLinkNotFound and an expired link yields
// ErrLinkExpired, both without mutation. Otherwise the click counter is
// incremented and the link is returned for redirection.
//
// The expiry check always precedes the increment, so an expired link's
// counter never advances. The increment runs as a single atomic statement;
// it is not part of one transaction with the preceding read.
func (r *Resolver) Resolve(ctx context.Context, code string) (*models.Link, error) {
	const op = "service.Resolver.Resolve"

	link, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve code: %w", op, err)
	}

	if link.ExpiresAt != nil && link.ExpiresAt.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("%s: %w", op, ErrLinkExpired)
	}

	if err := r.repo.IncrementClickCount(ctx, code); err != nil {
		return nil, fmt.Errorf("%s: failed to update click count: %w", op, err)
	}
	link.ClickCount++

	return link, nil
}
