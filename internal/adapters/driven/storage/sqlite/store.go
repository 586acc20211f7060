package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/countersign-labs/countersign-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
)

// terminalStatuses is the SQL fragment excluding documents that can make
// no further progress.
const terminalStatuses = "('completed', 'cancelled', 'expired', 'signature_error')"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.countersign/data/countersign.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".countersign", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "countersign.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Save stores or updates a document and its recipients in one transaction.
// Reconciliation relies on this being atomic per document.
func (s *documentStore) Save(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, name, signing_flow, status, provider_agreement_id,
			last_reminder_sent, reminder_count, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			signing_flow = excluded.signing_flow,
			status = excluded.status,
			provider_agreement_id = excluded.provider_agreement_id,
			last_reminder_sent = excluded.last_reminder_sent,
			reminder_count = excluded.reminder_count,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Name, string(doc.SigningFlow), string(doc.Status), doc.ProviderAgreementID,
		nullTime(doc.LastReminderSent), doc.ReminderCount, nullTime(doc.CompletedAt),
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	// Recipients are replaced wholesale; they have no identity outside
	// their document.
	if _, err := tx.ExecContext(ctx, "DELETE FROM recipients WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing recipients: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recipients (document_id, position, email, name, sign_order, state,
			signed_at, last_signing_url_accessed, last_reminder_sent, signing_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range doc.Recipients {
		if _, err := stmt.ExecContext(ctx, doc.ID, i, r.Email, r.Name, r.Order, string(r.State),
			nullTime(r.SignedAt), nullTime(r.LastSigningURLAccessed),
			nullTime(r.LastReminderSent), r.SigningURL); err != nil {
			return fmt.Errorf("saving recipient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, signing_flow, status, provider_agreement_id,
			last_reminder_sent, reminder_count, completed_at, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	if err := s.loadRecipients(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns all documents with their recipients.
func (s *documentStore) List(ctx context.Context) ([]domain.Document, error) {
	return s.listWhere(ctx, "")
}

// ListInFlight returns sent, non-terminal documents.
func (s *documentStore) ListInFlight(ctx context.Context) ([]domain.Document, error) {
	return s.listWhere(ctx, "WHERE provider_agreement_id != '' AND status NOT IN "+terminalStatuses)
}

// Delete removes a document; recipients cascade.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// listWhere runs the document query with an optional WHERE clause.
func (s *documentStore) listWhere(ctx context.Context, where string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, signing_flow, status, provider_agreement_id,
			last_reminder_sent, reminder_count, completed_at, created_at, updated_at
		FROM documents `+where+`
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	for i := range docs {
		if err := s.loadRecipients(ctx, &docs[i]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// loadRecipients fills a document's recipients in insertion order.
func (s *documentStore) loadRecipients(ctx context.Context, doc *domain.Document) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT email, name, sign_order, state,
			signed_at, last_signing_url_accessed, last_reminder_sent, signing_url
		FROM recipients WHERE document_id = ?
		ORDER BY position
	`, doc.ID)
	if err != nil {
		return fmt.Errorf("querying recipients: %w", err)
	}
	defer rows.Close()

	var recipients []domain.Recipient //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.Recipient
		var state string
		var signedAt, accessedAt, remindedAt sql.NullTime
		if err := rows.Scan(&r.Email, &r.Name, &r.Order, &state,
			&signedAt, &accessedAt, &remindedAt, &r.SigningURL); err != nil {
			return fmt.Errorf("scanning recipient: %w", err)
		}
		r.State = domain.RecipientState(state)
		r.SignedAt = timeOrNil(signedAt)
		r.LastSigningURLAccessed = timeOrNil(accessedAt)
		r.LastReminderSent = timeOrNil(remindedAt)
		recipients = append(recipients, r)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating recipients: %w", err)
	}

	doc.Recipients = recipients
	return nil
}

// ==================== Helper Functions ====================

// scanDocument scans a document row from either a Row or a Rows cursor.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var flow, status string
	var reminded, completed sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Name, &flow, &status, &doc.ProviderAgreementID,
		&reminded, &doc.ReminderCount, &completed, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.SigningFlow = domain.SigningFlow(flow)
	doc.Status = domain.DocumentStatus(status)
	doc.LastReminderSent = timeOrNil(reminded)
	doc.CompletedAt = timeOrNil(completed)
	return &doc, nil
}

// nullTime converts an optional time to its SQL representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// timeOrNil converts a scanned nullable time back to a pointer.
func timeOrNil(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	c := t.Time
	return &c
}
