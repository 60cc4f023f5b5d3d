package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vairamhq/link-shortener/internal/database"
	"github.com/vairamhq/link-shortener/internal/models"
)

type linkRecord struct {
	ID           int64          `db:"id"`
	LongURL      string         `db:"long_url"`
	ShortCode    string         `db:"short_code"`
	CustomPath   sql.NullString `db:"custom_path"`
	CreatedAt    time.Time      `db:"created_at"`
	ExpiresAt    sql.NullTime   `db:"expires_at"`
	PasswordHash sql.NullString `db:"password_hash"`
	IsPrivate    bool           `db:"is_private"`
	ClickCount   int64          `db:"click_count"`
}

func (r *linkRecord) ToLink() *models.Link {
	link := &models.Link{
		ID:           r.ID,
		Code:         r.ShortCode,
		CustomAlias:  r.CustomPath.String,
		LongURL:      r.LongURL,
		PasswordHash: r.PasswordHash.String,
		IsPrivate:    r.IsPrivate,
		ClickCount:   r.ClickCount,
		CreatedAt:    r.CreatedAt,
	}

	if r.ExpiresAt.Valid {
		expiresAt := r.ExpiresAt.Time
		link.ExpiresAt = &expiresAt
	}

	return link
}

// LinkRepository persists links in the urls table. Generated codes and custom
// aliases occupy a single namespace: a lookup matches either the short_code or
// the custom_path column, and uniqueness is enforced by the UNIQUE constraint
// on short_code.
type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

func (r *LinkRepository) Create(ctx context.Context, link *models.Link) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO urls(long_url, short_code, custom_path, expires_at, password_hash, is_private)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`

	customPath := sql.NullString{String: link.CustomAlias, Valid: link.CustomAlias != ""}
	passwordHash := sql.NullString{String: link.PasswordHash, Valid: link.PasswordHash != ""}

	var expiresAt sql.NullTime
	if link.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *link.ExpiresAt, Valid: true}
	}

	err := r.db.GetContext(ctx, rec, query,
		link.LongURL, link.Code, customPath, expiresAt, passwordHash, link.IsPrivate)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.FindByCode"

	rec := new(linkRecord)
	query := `SELECT * FROM urls
		WHERE short_code = $1 OR custom_path = $1`

	err := r.db.GetContext(ctx, rec, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const op = "database.postgres.LinkRepository.ExistsByCode"

	var exists bool
	query := `SELECT EXISTS (
		SELECT 1 FROM urls
		WHERE short_code = $1 OR custom_path = $1
	)`

	err := r.db.GetContext(ctx, &exists, query, code)
	if err != nil {
		return false, fmt.Errorf("%s: failed to check code existence: %w", op, err)
	}

	return exists, nil
}

// IncrementClickCount bumps the click counter for the given code in a single
// UPDATE statement, so concurrent resolutions never lose updates. It is a
// no-op when the code doesn't exist.
func (r *LinkRepository) IncrementClickCount(ctx context.Context, code string) error {
	const op = "database.postgres.LinkRepository.IncrementClickCount"

	query := `UPDATE urls
		SET click_count = click_count + 1
		WHERE short_code = $1 OR custom_path = $1`

	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("%s: failed to increment click count: %w", op, err)
	}

	return nil
}
