package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lucasnoah/deliverynote/internal/reconcile"
)

const timeLayout = "2006-01-02T15:04:05.000000Z"

// now is replaced in tests.
var now = time.Now

func timestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// Run is one recorded reconciliation.
type Run struct {
	ID        string
	CreatedAt time.Time
	Manifest  string
	Stats     reconcile.Stats
	Rows      []reconcile.Row
}

// Report rebuilds the reconciliation report as it was recorded.
func (r *Run) Report() reconcile.Report {
	return reconcile.Report{Rows: r.Rows, Stats: r.Stats}
}

// StoreWrite is one persisted write to a result store.
type StoreWrite struct {
	ID        string
	Kind      string
	Mode      string
	Records   int
	Source    string
	CreatedAt time.Time
}

// Store write modes.
const (
	ModeMerge   = "merge"
	ModeReplace = "replace"
)

// SaveRun records a reconciliation and its rows and returns the new run id.
func (d *DB) SaveRun(manifest string, rep reconcile.Report) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		CreatedAt: now().UTC(),
		Manifest:  manifest,
		Stats:     rep.Stats,
		Rows:      rep.Rows,
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := run.Stats
	_, err = tx.Exec(d.rebind(
		`INSERT INTO runs (id, created_at, manifest, total, passed, failed, not_found, manual) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, timestamp(run.CreatedAt), manifest, s.Total, s.Passed, s.Failed, s.NotFound, s.Manual,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	insertRow := d.rebind(`INSERT INTO run_rows (run_id, position, test_case_id, kind, category, status) VALUES (?, ?, ?, ?, ?, ?)`)
	for i, r := range rep.Rows {
		if _, err := tx.Exec(insertRow, run.ID, i, r.ID, r.DisplayKind, string(r.Category), r.Status()); err != nil {
			return nil, fmt.Errorf("insert run row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without their rows.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(d.rebind(
		`SELECT id, created_at, manifest, total, passed, failed, not_found, manual
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var created string
	err := s.Scan(&r.ID, &created, &r.Manifest,
		&r.Stats.Total, &r.Stats.Passed, &r.Stats.Failed, &r.Stats.NotFound, &r.Stats.Manual)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = parseTimestamp(created)
	return &r, nil
}

// GetRun returns a run with its rows, or nil if it does not exist.
// Rows come back with their stored status text in StatusText and no icon.
func (d *DB) GetRun(id string) (*Run, error) {
	row := d.conn.QueryRow(d.rebind(
		`SELECT id, created_at, manifest, total, passed, failed, not_found, manual
		 FROM runs WHERE id = ?`), id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := d.conn.Query(d.rebind(
		`SELECT test_case_id, kind, category, status FROM run_rows WHERE run_id = ? ORDER BY position`), id)
	if err != nil {
		return nil, fmt.Errorf("get run rows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r reconcile.Row
		var cat string
		if err := rows.Scan(&r.ID, &r.DisplayKind, &cat, &r.StatusText); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.Category = reconcile.Category(cat)
		run.Rows = append(run.Rows, r)
	}
	return run, rows.Err()
}

// LogStoreWrite records that source wrote n records to kind's store.
func (d *DB) LogStoreWrite(kind, mode string, n int, source string) error {
	_, err := d.conn.Exec(d.rebind(
		`INSERT INTO store_writes (id, kind, mode, records, source, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), kind, mode, n, source, timestamp(now()),
	)
	if err != nil {
		return fmt.Errorf("log store write: %w", err)
	}
	return nil
}

// ListStoreWrites returns the most recent store writes first.
func (d *DB) ListStoreWrites(limit int) ([]StoreWrite, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(d.rebind(
		`SELECT id, kind, mode, records, source, created_at
		 FROM store_writes ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list store writes: %w", err)
	}
	defer rows.Close()

	var out []StoreWrite
	for rows.Next() {
		var w StoreWrite
		var created string
		if err := rows.Scan(&w.ID, &w.Kind, &w.Mode, &w.Records, &w.Source, &created); err != nil {
			return nil, fmt.Errorf("scan store write: %w", err)
		}
		w.CreatedAt = parseTimestamp(created)
		out = append(out, w)
	}
	return out, rows.Err()
}
