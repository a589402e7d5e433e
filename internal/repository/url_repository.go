package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shortify-be/internal/entities"
)

// URLRepository defines the interface for URL database operations
type URLRepository interface {
	Create(ctx context.Context, shortCode, originalURL, userID string, expiresAt *time.Time) (*entities.URL, error)
	FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error)
	FindByOwnerAndURL(ctx context.Context, userID, originalURL string) (*entities.URL, error)
	IncrementVisitCount(ctx context.Context, shortCode string) error
	ListByUser(ctx context.Context, userID string, limit, offset int, search string) ([]*entities.URL, int64, error)
}

type urlRepository struct {
	db *sql.DB
}

// NewURLRepository creates a new URL repository
func NewURLRepository(db *sql.DB) URLRepository {
	return &urlRepository{db: db}
}

const urlColumns = `id, short_code, original_url, user_id, click_count, created_at, expires_at`

func scanURL(row interface{ Scan(...any) error }) (*entities.URL, error) {
	var url entities.URL
	err := row.Scan(
		&url.ID,
		&url.ShortCode,
		&url.OriginalURL,
		&url.UserID,
		&url.VisitCount,
		&url.CreatedAt,
		&url.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// Create inserts a new URL. Unique violations are reported as ErrDuplicateShortCode
// or ErrDuplicateURL so callers can retry or re-read.
func (r *urlRepository) Create(ctx context.Context, shortCode, originalURL, userID string, expiresAt *time.Time) (*entities.URL, error) {
	var expiresAtValue interface{}
	if expiresAt != nil {
		expiresAtValue = expiresAt.UTC()
	}

	query := `
		INSERT INTO urls (short_code, original_url, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + urlColumns

	url, err := scanURL(r.db.QueryRowContext(ctx, query, shortCode, originalURL, userID, expiresAtValue))
	if err != nil {
		switch uniqueConstraint(err) {
		case "urls_short_code_key":
			return nil, ErrDuplicateShortCode
		case "urls_user_original_url_key":
			return nil, ErrDuplicateURL
		}
		return nil, fmt.Errorf("failed to create URL: %w", err)
	}

	return url, nil
}

// FindByShortCode finds a URL by its short code. Expiry is not enforced.
func (r *urlRepository) FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE short_code = $1`

	url, err := scanURL(r.db.QueryRowContext(ctx, query, shortCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}

	return url, nil
}

// FindByOwnerAndURL finds the link a user already created for originalURL
func (r *urlRepository) FindByOwnerAndURL(ctx context.Context, userID, originalURL string) (*entities.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE user_id = $1 AND original_url = $2`

	url, err := scanURL(r.db.QueryRowContext(ctx, query, userID, originalURL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}

	return url, nil
}

// IncrementVisitCount bumps click_count in a single statement so concurrent
// redirects never lose updates.
func (r *urlRepository) IncrementVisitCount(ctx context.Context, shortCode string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE urls
		SET click_count = click_count + 1
		WHERE short_code = $1
	`, shortCode)
	if err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByUser returns one page of a user's URLs, newest first, and the total
// number of matching rows. search is a case-insensitive substring of original_url.
func (r *urlRepository) ListByUser(ctx context.Context, userID string, limit, offset int, search string) ([]*entities.URL, int64, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	if search != "" {
		where += ` AND original_url ILIKE $2 ESCAPE '\'`
		args = append(args, "%"+escapeLike(search)+"%")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM urls `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count URLs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM urls
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, urlColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get URLs: %w", err)
	}
	defer rows.Close()

	urls := make([]*entities.URL, 0, limit)
	for rows.Next() {
		url, err := scanURL(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating URLs: %w", err)
	}

	return urls, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
