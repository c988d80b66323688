package faq

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLBackend persists the FAQ collection in a relational table. The
// driver is "sqlite3" for development or "postgres" for production; the
// schema and queries are shared.
type SQLBackend struct {
	db *sql.DB
}

const faqSchema = `
CREATE TABLE IF NOT EXISTS faqs (
	id         TEXT PRIMARY KEY,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	category   TEXT NOT NULL,
	keywords   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	position   INTEGER NOT NULL
)`

// NewSQLBackend opens the database and ensures the schema exists.
func NewSQLBackend(driver, dsn string) (*SQLBackend, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "sqlite3" {
		// Whole-collection rewrites are short transactions; one writer
		// avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(faqSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLBackend{db: db}, nil
}

// Load reads the whole collection in storage order.
func (b *SQLBackend) Load(ctx context.Context) ([]Record, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, question, answer, category, keywords, created_at
		FROM faqs ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query faqs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Question, &r.Answer, &r.Category, &r.Keywords, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save rewrites the whole collection in a single transaction. Either the
// new collection persists or the prior state remains.
func (b *SQLBackend) Save(ctx context.Context, records []Record) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM faqs`); err != nil {
		return fmt.Errorf("clear faqs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO faqs (id, question, answer, category, keywords, created_at, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Question, r.Answer, r.Category, r.Keywords, r.CreatedAt, i); err != nil {
			return fmt.Errorf("insert faq %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}

// MemoryBackend keeps the collection in memory. Used by tests and the CLI.
type MemoryBackend struct {
	records []Record
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load returns a copy of the stored collection.
func (b *MemoryBackend) Load(ctx context.Context) ([]Record, error) {
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out, nil
}

// Save replaces the stored collection.
func (b *MemoryBackend) Save(ctx context.Context, records []Record) error {
	b.records = make([]Record, len(records))
	copy(b.records, records)
	return nil
}
