// Package service contains the core link shortening logic: code allocation,
// custom alias validation, expiry computation, password hashing and the
// resolution policy.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vairamhq/link-shortener/internal/database"
	"github.com/vairamhq/link-shortener/internal/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrInvalidURL is returned when the original URL is empty or doesn't
	// start with http:// or https://.
	ErrInvalidURL = errors.New("invalid URL format, make sure it starts with http:// or https://")
	// ErrAliasTooLong is returned when the custom alias exceeds the maximum length.
	ErrAliasTooLong = errors.New("custom alias is too long (max 50 characters)")
	// ErrAliasInvalid is returned when the custom alias contains characters
	// outside letters, numbers, hyphens and underscores.
	ErrAliasInvalid = errors.New("custom alias can only contain letters, numbers, hyphens and underscores")
	// ErrAliasTaken is returned when the requested custom alias is already in use.
	ErrAliasTaken = errors.New("custom alias is already taken")
	// ErrInvalidExpiry is returned when expiry days fall outside the 1..365 range.
	ErrInvalidExpiry = errors.New("expiry days must be between 1 and 365")
	// ErrPasswordTooShort is returned when the access password is shorter than 4 characters.
	ErrPasswordTooShort = errors.New("password must be at least 4 characters long")
	// ErrCodeSpaceExhausted is returned when the maximum number of attempts
	// to generate a unique short code is exceeded.
	ErrCodeSpaceExhausted = errors.New("could not generate unique short code")
)

const (
	// codeAlphabet is the 62-symbol set generated codes are drawn from.
	codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	maxAliasLength    = 50
	maxExpiryDays     = 365
	minPasswordLength = 4
	maxGenAttempts    = 10
)

var (
	urlPattern   = regexp.MustCompile(`^(?i:https?)://`)
	aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// LinkRepository defines the interface for working with links at the business logic layer.
type LinkRepository interface {
	// Create inserts a new link into the repository.
	// Returns the persisted link or an error if the operation fails.
	Create(ctx context.Context, link *models.Link) (*models.Link, error)

	// FindByCode retrieves a link by its code, matching generated codes and
	// custom aliases as one namespace.
	FindByCode(ctx context.Context, code string) (*models.Link, error)

	// ExistsByCode reports whether a link with the given code exists.
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// IncrementClickCount atomically increments the click counter of the link
	// with the given code. It is a no-op if the code is absent.
	IncrementClickCount(ctx context.Context, code string) error
}

// ShortenInput carries the caller-supplied fields of a shorten request.
// Optional fields are absent when zero (ExpiryDays uses a pointer so that an
// explicit zero is still rejected rather than ignored).
type ShortenInput struct {
	LongURL     string
	CustomAlias string
	ExpiryDays  *int
	Password    string
}

// LinkService provides the shorten operation and link statistics.
type LinkService struct {
	repo       LinkRepository
	codeLength int
}

// NewLinkService creates a new LinkService with the provided repository and
// generated code length.
func NewLinkService(repo LinkRepository, codeLength int) *LinkService {
	return &LinkService{
		repo:       repo,
		codeLength: codeLength,
	}
}

// Shorten validates the input, obtains a code (generated or the custom alias),
// computes expiry and password hash, and persists a new link with a zero click
// count. Input errors are reported through the package sentinel errors; no
// partial state is committed on failure.
func (s *LinkService) Shorten(ctx context.Context, input ShortenInput) (*models.Link, error) {
	const op = "service.LinkService.Shorten"

	if !urlPattern.MatchString(input.LongURL) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}

	link := &models.Link{
		LongURL: input.LongURL,
	}

	if input.CustomAlias != "" {
		if err := validateAlias(input.CustomAlias); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		taken, err := s.repo.ExistsByCode(ctx, input.CustomAlias)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to check alias: %w", op, err)
		}
		if taken {
			return nil, fmt.Errorf("%s: %w", op, ErrAliasTaken)
		}

		link.Code = input.CustomAlias
		link.CustomAlias = input.CustomAlias
	} else {
		code, err := s.allocateCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		link.Code = code
	}

	if input.ExpiryDays != nil {
		days := *input.ExpiryDays
		if days < 1 || days > maxExpiryDays {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidExpiry)
		}

		expiresAt := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
		link.ExpiresAt = &expiresAt
	}

	if input.Password != "" {
		if len(input.Password) < minPasswordLength {
			return nil, fmt.Errorf("%s: %w", op, ErrPasswordTooShort)
		}

		link.PasswordHash = hashPassword(input.Password)
	}

	created, err := s.repo.Create(ctx, link)
	if err != nil {
		if errors.Is(err, database.ErrCodeExists) && input.CustomAlias != "" {
			// Lost the race for the alias between the existence check and the insert.
			return nil, fmt.Errorf("%s: %w", op, ErrAliasTaken)
		}

		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return created, nil
}

// Stats retrieves the link with its click counter without affecting it.
func (s *LinkService) Stats(ctx context.Context, code string) (*models.Link, error) {
	const op = "service.LinkService.Stats"

	link, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link stats: %w", op, err)
	}

	return link, nil
}

// allocateCode generates candidate codes until one is unused, giving up after
// a fixed number of attempts. With a 62^6 code space exhaustion is a safety
// net, not an expected path.
func (s *LinkService) allocateCode(ctx context.Context) (string, error) {
	for i := 0; i < maxGenAttempts; i++ {
		code, err := gonanoid.Generate(codeAlphabet, s.codeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}

		exists, err := s.repo.ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}

// validateAlias applies the alias syntax rules in order: length, then charset.
// Aliases are case-sensitive and never normalized.
func validateAlias(alias string) error {
	if len(alias) > maxAliasLength {
		return ErrAliasTooLong
	}
	if !aliasPattern.MatchString(alias) {
		return ErrAliasInvalid
	}

	return nil
}

// hashPassword returns the hex-encoded SHA-256 digest of the password. The
// hash is stored unsalted and only gates visibility in an extended flow; the
// resolution path does not check it.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// IsInputError reports whether err is the caller's fault, as opposed to a
// capacity or infrastructure failure.
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrInvalidURL,
		ErrAliasTooLong,
		ErrAliasInvalid,
		ErrAliasTaken,
		ErrInvalidExpiry,
		ErrPasswordTooShort,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// ShortURL assembles the public short URL from the base origin and the code.
func ShortURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/" + code
}
