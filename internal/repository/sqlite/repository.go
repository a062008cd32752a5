package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
	"github.com/tripping-alien/shortlink-sub000/internal/repository"
)

// Repository implements repository.LinkRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(databasePath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for concurrent readers, busy timeout so writers queue instead
	// of failing immediately
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.runMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

const linkColumns = `code, target_url, deletion_secret_hash, created_at, expires_at,
	click_count, owner_id, title, description, image_url, summary, summary_status`

// InsertIfAbsent durably creates a link record. The PRIMARY KEY constraint
// on code is the authoritative uniqueness gate; a constraint violation maps
// to domain.ErrConflict.
func (r *Repository) InsertIfAbsent(ctx context.Context, link *domain.Link) error {
	var expiresAt sql.NullTime
	if link.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: link.ExpiresAt.UTC(), Valid: true}
	}

	summaryStatus := link.SummaryStatus
	if summaryStatus == "" {
		summaryStatus = domain.SummaryPending
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO links (`+linkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		link.Code, link.TargetURL, link.SecretHash, link.CreatedAt.UTC(), expiresAt,
		link.ClickCount, nullString(link.OwnerID), nullString(link.Title),
		nullString(link.Description), nullString(link.ImageURL),
		nullString(link.Summary), summaryStatus,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %s", domain.ErrConflict, link.Code)
		}
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

// Get retrieves a link by code
func (r *Repository) Get(ctx context.Context, code string) (*domain.Link, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM links WHERE code = ?`, code)

	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

// ListLive retrieves all records live at the given instant, newest first
func (r *Repository) ListLive(ctx context.Context, now time.Time, ownerID string) ([]*domain.Link, error) {
	query := `
		SELECT ` + linkColumns + ` FROM links
		WHERE (expires_at IS NULL OR expires_at > ?)`
	args := []any{now.UTC()}

	if ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// DeleteIfSecretMatches atomically reads the stored secret hash, verifies it
// via matches, and deletes the record in the same transaction. The
// transaction closes the time-of-check/time-of-use window against concurrent
// deletions or re-creations of the same code.
func (r *Repository) DeleteIfSecretMatches(ctx context.Context, code string, matches func(secretHash string) bool) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var secretHash string
	err = tx.QueryRowContext(ctx, "SELECT deletion_secret_hash FROM links WHERE code = ?", code).Scan(&secretHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: %s", domain.ErrNotFound, code)
		}
		return false, fmt.Errorf("failed to read secret hash: %w", err)
	}

	if !matches(secretHash) {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM links WHERE code = ?", code); err != nil {
		return false, fmt.Errorf("failed to delete link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}

	return true, nil
}

// DeleteExpiredBefore bulk-deletes every record whose expiry is a real
// timestamp at or before now. Never-expiring records (NULL expiry) are
// excluded by the predicate itself.
func (r *Repository) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM links WHERE expires_at IS NOT NULL AND expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired links: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted links: %w", err)
	}

	return deleted, nil
}

// IncrementClicksBy adds delta to a record's click count. A missing code is
// a no-op, not an error; click accounting is best-effort.
func (r *Repository) IncrementClicksBy(ctx context.Context, code string, delta int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE links SET click_count = click_count + ? WHERE code = ?", delta, code)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	return nil
}

// UpdateMetadata persists asynchronously enriched page metadata
func (r *Repository) UpdateMetadata(ctx context.Context, code string, meta domain.Metadata) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE links
		SET title = ?, description = ?, image_url = ?, summary = ?, summary_status = ?
		WHERE code = ?`,
		nullString(meta.Title), nullString(meta.Description), nullString(meta.ImageURL),
		nullString(meta.Summary), meta.SummaryStatus, code,
	)
	if err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}
	return nil
}

// GetCounter returns the stored value for a counter key, 0 if unset
func (r *Repository) GetCounter(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.db.QueryRowContext(ctx, "SELECT value FROM counters WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get counter: %w", err)
	}
	return value, nil
}

// SetCounter durably records a counter value
func (r *Repository) SetCounter(ctx context.Context, key string, value int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO counters (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set counter: %w", err)
	}
	return nil
}

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*domain.Link, error) {
	var (
		link      domain.Link
		expiresAt sql.NullTime
		ownerID   sql.NullString
		title     sql.NullString
		desc      sql.NullString
		imageURL  sql.NullString
		summary   sql.NullString
	)

	err := row.Scan(&link.Code, &link.TargetURL, &link.SecretHash, &link.CreatedAt,
		&expiresAt, &link.ClickCount, &ownerID, &title, &desc, &imageURL,
		&summary, &link.SummaryStatus)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		link.ExpiresAt = &t
	}
	link.CreatedAt = link.CreatedAt.UTC()
	link.OwnerID = ownerID.String
	link.Title = title.String
	link.Description = desc.String
	link.ImageURL = imageURL.String
	link.Summary = summary.String

	return &link, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure Repository implements the interface
var _ repository.LinkRepository = (*Repository)(nil)
