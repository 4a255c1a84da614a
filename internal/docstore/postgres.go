package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps each document as a JSONB row in the documents table.
// Per-document writes are atomic; UpdateDocument merges partial fields with
// the jsonb || operator in a single statement.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Postgres-backed implementation.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	const query = `SELECT fields FROM documents WHERE collection=$1 AND id=$2`

	var raw []byte
	if err := s.pool.QueryRow(ctx, query, collection, id).Scan(&raw); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return &Document{ID: id, Fields: fields}, nil
}

func (s *PostgresStore) SetDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	const query = `
        INSERT INTO documents (collection, id, fields)
        VALUES ($1, $2, $3)
        ON CONFLICT (collection, id) DO UPDATE SET fields = EXCLUDED.fields`

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	if _, err := s.pool.Exec(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	const query = `UPDATE documents SET fields = fields || $3 WHERE collection=$1 AND id=$2`

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	cmd, err := s.pool.Exec(ctx, query, collection, id, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection=$1 AND id=$2`

	cmd, err := s.pool.Exec(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) QueryCollection(ctx context.Context, collection string, filters []Filter, order *Ordering, limit int) ([]Document, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, fields FROM documents WHERE collection=$1`)

	args := []any{collection}
	for _, f := range filters {
		op, ok := sqlOp(f.Op)
		if !ok {
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
		args = append(args, f.Field, fieldString(f.Value))
		fmt.Fprintf(&sb, " AND fields->>$%d %s $%d", len(args)-1, op, len(args))
	}

	if order != nil {
		args = append(args, order.Field)
		fmt.Fprintf(&sb, " ORDER BY fields->>$%d", len(args))
		if order.Desc {
			sb.WriteString(" DESC")
		}
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var results []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
		}
		results = append(results, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return results, nil
}

func sqlOp(op FilterOp) (string, bool) {
	switch op {
	case OpEqual:
		return "=", true
	case OpGreaterEqual:
		return ">=", true
	case OpLess:
		return "<", true
	default:
		return "", false
	}
}
