package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vairamhq/link-shortener/internal/database"
	"github.com/vairamhq/link-shortener/internal/models"
)

// memoryLinkRepository is a map-backed LinkRepository used to exercise the
// shorten/resolve cycle without a database.
type memoryLinkRepository struct {
	mu    sync.Mutex
	links map[string]*models.Link
	next  int64
}

func newMemoryLinkRepository() *memoryLinkRepository {
	return &memoryLinkRepository{
		links: make(map[string]*models.Link),
	}
}

func (r *memoryLinkRepository) Create(_ context.Context, link *models.Link) (*models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[link.Code]; ok {
		return nil, database.ErrCodeExists
	}

	r.next++
	stored := *link
	stored.ID = r.next
	r.links[link.Code] = &stored

	copied := stored
	return &copied, nil
}

func (r *memoryLinkRepository) FindByCode(_ context.Context, code string) (*models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[code]
	if !ok {
		return nil, database.ErrLinkNotFound
	}

	copied := *link
	return &copied, nil
}

func (r *memoryLinkRepository) ExistsByCode(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.links[code]
	return ok, nil
}

func (r *memoryLinkRepository) IncrementClickCount(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if link, ok := r.links[code]; ok {
		link.ClickCount++
	}

	return nil
}

func TestShortenResolveRoundtrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLinkRepository()
	svc := NewLinkService(repo, 6)
	resolver := NewResolver(repo)

	link, err := svc.Shorten(ctx, ShortenInput{LongURL: "https://example.com/a"})

	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Regexp(t, `^[0-9a-zA-Z]{6}$`, link.Code)
	assert.Zero(t, link.ClickCount)
	assert.Nil(t, link.ExpiresAt)

	resolved, err := resolver.Resolve(ctx, link.Code)

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", resolved.LongURL)
	assert.Equal(t, int64(1), resolved.ClickCount)

	resolved, err = resolver.Resolve(ctx, link.Code)

	require.NoError(t, err)
	assert.Equal(t, int64(2), resolved.ClickCount)

	stats, err := svc.Stats(ctx, link.Code)

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ClickCount)
}

func TestShortenGeneratesDistinctCodes(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLinkRepository()
	svc := NewLinkService(repo, 6)

	codes := make(map[string]bool, 100)

	for i := 0; i < 100; i++ {
		link, err := svc.Shorten(ctx, ShortenInput{
			LongURL: fmt.Sprintf("https://example.com/%d", i),
		})

		require.NoError(t, err)
		assert.False(t, codes[link.Code], "duplicate code generated: %s", link.Code)
		codes[link.Code] = true
	}

	assert.Len(t, codes, 100)
}

func TestShortenSameAliasTwice(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLinkRepository()
	svc := NewLinkService(repo, 6)

	first, err := svc.Shorten(ctx, ShortenInput{
		LongURL:     "https://example.com/a",
		CustomAlias: "my-alias",
	})

	require.NoError(t, err)
	assert.Equal(t, "my-alias", first.Code)

	second, err := svc.Shorten(ctx, ShortenInput{
		LongURL:     "https://example.com/b",
		CustomAlias: "my-alias",
	})

	assert.ErrorIs(t, err, ErrAliasTaken)
	assert.Nil(t, second)
}
