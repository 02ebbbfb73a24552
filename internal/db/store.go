package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentInfo describes a stored dataset document without its body.
type DocumentInfo struct {
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	SizeBytes int       `json:"size_bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentStore keeps dataset documents in Postgres so they can be served
// through pg:// sources.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

// PutDocument inserts or replaces the document called name. body must be a JSON object.
func (s *DocumentStore) PutDocument(ctx context.Context, name, source string, body []byte) error {
	if err := validateDocument(name, body); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO dataset_documents (name, body, source, size_bytes, updated_at)
		VALUES ($1, $2::jsonb, $3, $4, NOW())
		ON CONFLICT (name) DO UPDATE SET
			body = EXCLUDED.body,
			source = EXCLUDED.source,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = NOW()
	`, name, string(body), source, len(body))
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", name, err)
	}
	return nil
}

// GetDocument returns the body and last update time of name.
func (s *DocumentStore) GetDocument(ctx context.Context, name string) ([]byte, time.Time, error) {
	var body string
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx,
		"SELECT body::text, updated_at FROM dataset_documents WHERE name = $1", name,
	).Scan(&body, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return []byte(body), updatedAt, nil
}

// ListDocuments returns every stored document, most recently updated first.
func (s *DocumentStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, source, size_bytes, updated_at
		FROM dataset_documents
		ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentInfo
	for rows.Next() {
		var d DocumentInfo
		if err := rows.Scan(&d.Name, &d.Source, &d.SizeBytes, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func validateDocument(name string, body []byte) error {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid document name %q", name)
	}
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") || !json.Valid(body) {
		return fmt.Errorf("document %s is not a JSON object", name)
	}
	return nil
}
