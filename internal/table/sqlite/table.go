// Package sqlite is a local stand-in for the remote table service. Records
// keep the remote shape (record id + loose column map) so reshaping is shared.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// CodeRecordNotFound mirrors the remote service's "record id not found" code.
const CodeRecordNotFound = 1254043

// Table stores link records in a SQLite file.
type Table struct {
	conn *sql.DB
	Path string
}

// Open opens (and migrates) the database at path. ":memory:" is accepted.
func Open(path string) (*Table, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	t := &Table{conn: conn, Path: path}
	if err := t.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return t, nil
}

func (t *Table) migrate() error {
	_, err := t.conn.Exec(`CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id TEXT UNIQUE NOT NULL,
		fields TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("migrating records table: %w", err)
	}
	return nil
}

// Name identifies the backend in logs and status pages.
func (t *Table) Name() string { return "sqlite" }

// Close closes the database connection.
func (t *Table) Close() error {
	return t.conn.Close()
}

// Ping checks the database is reachable.
func (t *Table) Ping(ctx context.Context) error {
	return t.conn.PingContext(ctx)
}

// ListRecords returns every record in insertion order.
func (t *Table) ListRecords(ctx context.Context) ([]domain.RawRecord, error) {
	rows, err := t.conn.QueryContext(ctx, `SELECT record_id, fields FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []domain.RawRecord
	for rows.Next() {
		var (
			id  string
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		var fields domain.Fields
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, err)
		}
		out = append(out, domain.RawRecord{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// CreateRecord stores fields under a fresh record id.
func (t *Table) CreateRecord(ctx context.Context, fields domain.Fields) (domain.RawRecord, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return domain.RawRecord{}, fmt.Errorf("failed to marshal fields: %w", err)
	}

	id := "rec" + uuid.NewString()
	if _, err := t.conn.ExecContext(ctx,
		`INSERT INTO records (record_id, fields) VALUES (?, ?)`, id, string(data)); err != nil {
		return domain.RawRecord{}, fmt.Errorf("create record: %w", err)
	}

	// Round-trip so numbers come back the way a JSON API returns them.
	var stored domain.Fields
	if err := json.Unmarshal(data, &stored); err != nil {
		return domain.RawRecord{}, fmt.Errorf("create record: %w", err)
	}
	return domain.RawRecord{ID: id, Fields: stored}, nil
}

// DeleteRecord removes a record. Unknown ids fail like the remote service does.
func (t *Table) DeleteRecord(ctx context.Context, id string) error {
	res, err := t.conn.ExecContext(ctx, `DELETE FROM records WHERE record_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return &domain.RemoteAPIError{Op: "delete record", Code: CodeRecordNotFound, Msg: "RecordIdNotFound"}
	}
	return nil
}
