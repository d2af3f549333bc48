// internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// getDoc loads the JSON document of one row into dst.
func getDoc(ctx context.Context, q querier, query string, dst interface{}, missing error, id string) error {
	var doc []byte
	if err := q.QueryRowContext(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(missing, id)
		}
		return fmt.Errorf("select %s: %w", id, err)
	}
	if err := json.Unmarshal(doc, dst); err != nil {
		return fmt.Errorf("decode %s: %w", id, err)
	}
	return nil
}

// listDocs runs query and decodes each doc column with decode.
func listDocs(ctx context.Context, q querier, query string, decode func([]byte) error, args ...interface{}) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := decode(doc); err != nil {
			return err
		}
	}
	return rows.Err()
}

func audit(ctx context.Context, q querier, entityType, entityID, action string, details interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO audit_log (entity_type, entity_id, action, details) VALUES ($1, $2, $3, $4)`,
		entityType, entityID, action, payload)
	if err != nil {
		return fmt.Errorf("audit %s %s: %w", entityType, action, err)
	}
	return nil
}

// inTx runs fn in a transaction and commits when it returns nil.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
