package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS support_turns (
	id         UUID PRIMARY KEY,
	seq        BIGSERIAL NOT NULL,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS support_turns_session_seq ON support_turns (session_id, seq);
CREATE TABLE IF NOT EXISTS support_faqs (
	id       UUID PRIMARY KEY,
	position INT NOT NULL,
	question TEXT NOT NULL,
	answer   TEXT NOT NULL
);`

// PGStore is the Postgres-backed conversation store. Each exchange is written
// in a single transaction.
type PGStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PGStore{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

// EnsureInitialized creates the tables and seeds the default FAQs when the FAQ
// table is empty.
func (s *PGStore) EnsureInitialized(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent seeders.
	if _, err := tx.Exec(ctx, `LOCK TABLE support_faqs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock faqs: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM support_faqs`).Scan(&count); err != nil {
		return fmt.Errorf("count faqs: %w", err)
	}
	if count == 0 {
		for i, faq := range DefaultFAQs {
			_, err := tx.Exec(ctx, `
				INSERT INTO support_faqs (id, position, question, answer)
				VALUES ($1, $2, $3, $4)`,
				uuid.New(), i, faq.Question, faq.Answer,
			)
			if err != nil {
				return fmt.Errorf("seed faq: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PGStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT role, content, created_at FROM support_turns
		WHERE session_id = $1
		ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	turns := []Turn{}
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Timestamp = t.Timestamp.UTC()
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}

func (s *PGStore) AppendTurn(ctx context.Context, sessionID, userContent, assistantContent string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range newExchange(userContent, assistantContent, s.now()) {
		_, err := tx.Exec(ctx, `
			INSERT INTO support_turns (id, session_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), sessionID, t.Role, t.Content, t.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert %s turn: %w", t.Role, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PGStore) FAQs(ctx context.Context) ([]FAQ, error) {
	rows, err := s.pool.Query(ctx, `SELECT question, answer FROM support_faqs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query faqs: %w", err)
	}
	defer rows.Close()

	faqs := []FAQ{}
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.Question, &f.Answer); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}
	return faqs, nil
}
