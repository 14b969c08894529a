package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

const schemaLockKey int64 = 2026101401

const readingColumns = `id, session_id, kind, color, category, mode, text, label, confidence, reason, angle, published, drawing_key, created_at`

type ReadingRepository struct {
	db *sql.DB
}

func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

func (r *ReadingRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api replicas.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS readings (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL DEFAULT '',
	label TEXT NOT NULL DEFAULT '',
	confidence INTEGER NOT NULL DEFAULT 50,
	reason TEXT NOT NULL DEFAULT '',
	angle INTEGER,
	published BOOLEAN NOT NULL DEFAULT FALSE,
	drawing_key TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_readings_session_created ON readings(session_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ReadingRepository) Save(ctx context.Context, reading *domain.Reading) error {
	var angle sql.NullInt64
	if reading.Angle != nil {
		angle = sql.NullInt64{Int64: int64(*reading.Angle), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO readings (`+readingColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		reading.ID, reading.SessionID, string(reading.Kind), reading.Color, string(reading.Category), reading.Mode,
		reading.Text, string(reading.Label), reading.Confidence, reading.Reason, angle, reading.Published,
		reading.DrawingKey, reading.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (r *ReadingRepository) Latest(ctx context.Context, sessionID string) (*domain.Reading, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+readingColumns+`
FROM readings
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT 1
`, sessionID)

	reading, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSessionNotFound, "latest reading", fmt.Errorf("session %s", sessionID))
		}
		return nil, fmt.Errorf("scan reading: %w", err)
	}
	return reading, nil
}

func (r *ReadingRepository) List(ctx context.Context, sessionID string, limit int) ([]domain.Reading, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+readingColumns+`
FROM readings
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2
`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Reading, 0, limit)
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, *reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "list readings", fmt.Errorf("session %s", sessionID))
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*domain.Reading, error) {
	var (
		reading  domain.Reading
		kind     string
		category string
		label    string
		angle    sql.NullInt64
	)
	err := row.Scan(
		&reading.ID, &reading.SessionID, &kind, &reading.Color, &category, &reading.Mode, &reading.Text,
		&label, &reading.Confidence, &reading.Reason, &angle, &reading.Published, &reading.DrawingKey,
		&reading.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	reading.Kind = domain.ReadingKind(kind)
	reading.Category = domain.Category(category)
	reading.Label = domain.Label(label)
	if angle.Valid {
		v := int(angle.Int64)
		reading.Angle = &v
	}
	return &reading, nil
}
