package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"flooring-cli/internal/model"
)

// Cache keeps the last fetched snapshot in a local SQLite file so read-only
// commands work offline and the TUI can paint before the first resync lands.
type Cache struct {
	Path string
}

const cacheFile = "cache.sqlite"

const (
	kindReport        = "report"
	kindDeletedReport = "deleted_report"
	kindPTP           = "ptp"
	kindDeletedPTP    = "deleted_ptp"
	kindForeman       = "foreman"
	kindAudit         = "audit"
)

// DefaultCache returns the cache under ConfigDir.
func DefaultCache() (Cache, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Cache{}, err
	}
	return Cache{Path: filepath.Join(dir, cacheFile)}, nil
}

func (c Cache) open(ctx context.Context) (*sql.DB, error) {
	if c.Path == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", c.Path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateCache(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateCache(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			kind TEXT NOT NULL,
			pos INTEGER NOT NULL,
			id TEXT NOT NULL,
			json TEXT NOT NULL,
			PRIMARY KEY (kind, pos)
		);`,
		`CREATE INDEX IF NOT EXISTS records_kind_id ON records(kind, id);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the cached snapshot.
func (c Cache) Save(ctx context.Context, snap model.Snapshot) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return err
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO records(kind, pos, id, json) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ins.Close()

	put := func(kind string, pos int, id string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", kind, id, err)
		}
		_, err = ins.ExecContext(ctx, kind, pos, id, string(raw))
		return err
	}
	for i, r := range snap.Reports {
		if err := put(kindReport, i, r.ID, r); err != nil {
			return err
		}
	}
	for i, r := range snap.DeletedReports {
		if err := put(kindDeletedReport, i, r.ID, r); err != nil {
			return err
		}
	}
	for i, p := range snap.PTPs {
		if err := put(kindPTP, i, p.ID, p); err != nil {
			return err
		}
	}
	for i, p := range snap.DeletedPTPs {
		if err := put(kindDeletedPTP, i, p.ID, p); err != nil {
			return err
		}
	}
	for i, f := range snap.Foremen {
		if err := put(kindForeman, i, f.Name, f); err != nil {
			return err
		}
	}
	for i, e := range snap.AuditLogs {
		if err := put(kindAudit, i, e.ID, e); err != nil {
			return err
		}
	}

	fetched := ""
	if !snap.FetchedAt.IsZero() {
		fetched = snap.FetchedAt.UTC().Format(time.RFC3339Nano)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO cache_meta(k, v) VALUES(?, ?)`, "fetched_at", fetched); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the cached snapshot. ok is false when nothing has been cached yet.
func (c Cache) Load(ctx context.Context) (snap model.Snapshot, ok bool, err error) {
	if _, err := os.Stat(c.Path); errors.Is(err, os.ErrNotExist) {
		return model.Snapshot{}, false, nil
	}
	db, err := c.open(ctx)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	defer db.Close()

	var fetched string
	switch err := db.QueryRowContext(ctx, `SELECT v FROM cache_meta WHERE k = ?`, "fetched_at").Scan(&fetched); {
	case errors.Is(err, sql.ErrNoRows):
		return model.Snapshot{}, false, nil
	case err != nil:
		return model.Snapshot{}, false, err
	}
	if fetched != "" {
		snap.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetched)
	}

	rows, err := db.QueryContext(ctx, `SELECT kind, json FROM records ORDER BY kind, pos`)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	defer rows.Close()

	snap.Reports = []model.Report{}
	snap.DeletedReports = []model.Report{}
	snap.PTPs = []model.PreTaskPlan{}
	snap.DeletedPTPs = []model.PreTaskPlan{}
	snap.Foremen = []model.Foreman{}
	snap.AuditLogs = []model.AuditLogEntry{}

	for rows.Next() {
		var kind, raw string
		if err := rows.Scan(&kind, &raw); err != nil {
			return model.Snapshot{}, false, err
		}
		if err := decodeRecord(&snap, kind, []byte(raw)); err != nil {
			return model.Snapshot{}, false, err
		}
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, false, err
	}
	return snap, true, nil
}

func decodeRecord(snap *model.Snapshot, kind string, raw []byte) error {
	switch kind {
	case kindReport, kindDeletedReport:
		var r model.Report
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		if kind == kindReport {
			snap.Reports = append(snap.Reports, r)
		} else {
			snap.DeletedReports = append(snap.DeletedReports, r)
		}
	case kindPTP, kindDeletedPTP:
		var p model.PreTaskPlan
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		if kind == kindPTP {
			snap.PTPs = append(snap.PTPs, p)
		} else {
			snap.DeletedPTPs = append(snap.DeletedPTPs, p)
		}
	case kindForeman:
		var f model.Foreman
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		snap.Foremen = append(snap.Foremen, f)
	case kindAudit:
		var e model.AuditLogEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		snap.AuditLogs = append(snap.AuditLogs, e)
	}
	return nil
}
