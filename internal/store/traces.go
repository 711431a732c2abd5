package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/traceguard/traceguard/internal/trace"
)

// AppendTrace appends a sealed audit record to the log. The row id is a
// fresh UUID; insertion order is captured by the autoincrement seq. There
// is no update or delete path.
func (s *Store) AppendTrace(ctx context.Context, r trace.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO traces (id, action, document, fingerprint, user, timestamp_ms, proof)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		string(r.Action),
		r.Document,
		r.Fingerprint,
		r.User,
		r.TimestampMS,
		r.Proof,
	)
	if err != nil {
		return fmt.Errorf("append trace: %w", err)
	}
	return nil
}

// ListTraces returns every audit record newest-first, the order audit
// displays want.
func (s *Store) ListTraces(ctx context.Context) ([]trace.Record, error) {
	return s.queryTraces(ctx, "DESC")
}

// ReplayTraces returns every audit record in insertion order, the order
// chain verification needs.
func (s *Store) ReplayTraces(ctx context.Context) ([]trace.Record, error) {
	return s.queryTraces(ctx, "ASC")
}

func (s *Store) queryTraces(ctx context.Context, direction string) ([]trace.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT action, document, fingerprint, user, timestamp_ms, proof
		FROM traces
		ORDER BY seq %s
	`, direction))
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	records := []trace.Record{}
	for rows.Next() {
		var r trace.Record
		var action string
		if err := rows.Scan(&action, &r.Document, &r.Fingerprint, &r.User, &r.TimestampMS, &r.Proof); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		r.Action = trace.Action(action)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traces: %w", err)
	}

	return records, nil
}
