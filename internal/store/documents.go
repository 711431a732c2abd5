package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Document is a stored record: logical name, sealed (encrypted) body, and
// the content fingerprint computed at upload time. The fingerprint never
// changes without a new upload.
type Document struct {
	Name        string
	SealedBody  []byte
	Fingerprint string
}

// PutDocument inserts a document, replacing any existing document with the
// same name. Name is the identity key: re-upload overwrites body and
// fingerprint in one statement.
func (s *Store) PutDocument(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, sealed_body, fingerprint)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			sealed_body = excluded.sealed_body,
			fingerprint = excluded.fingerprint
	`, doc.Name, doc.SealedBody, doc.Fingerprint)
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

// GetDocumentByName returns the document with the given name, or nil when
// absent. Absence is not an error at this layer; the vault maps it to its
// own NotFound.
func (s *Store) GetDocumentByName(ctx context.Context, name string) (*Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx, `
		SELECT name, sealed_body, fingerprint
		FROM documents
		WHERE name = ?
	`, name).Scan(&doc.Name, &doc.SealedBody, &doc.Fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns every stored document ordered by name.
// Returns an empty slice (not nil) when the vault is empty.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, sealed_body, fingerprint
		FROM documents
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.Name, &doc.SealedBody, &doc.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}
