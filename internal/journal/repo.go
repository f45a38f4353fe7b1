package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Page kinds.
const (
	KindNotebook = "notebook"
	KindSection  = "section"
	KindNote     = "note"
)

// Statuses for runs and pages.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
	StatusOK        = "ok"
	StatusFailed    = "failed"
)

// Run is one importer invocation.
type Run struct {
	ID           string
	Root         string
	ParentPageID string
	Status       string
	Error        string
	StartedAt    time.Time
	FinishedAt   *time.Time
	PagesOK      int
	PagesFailed  int
}

// PageRecord is one attempted page creation.
type PageRecord struct {
	RunID      string
	Kind       string
	SourcePath string
	Title      string
	ParentID   string
	PageID     string
	Checksum   string
	Blocks     int
	Images     int
	Status     string
	Error      string
	CreatedAt  time.Time
}

// StartRun inserts a new run and returns its id.
func (db *DB) StartRun(root, parentPageID string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, root, parent_page_id, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, root, parentPageID, StatusRunning, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("journal: start run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run completed or aborted.
func (db *DB) FinishRun(id, status, errMsg string) error {
	res, err := db.conn.Exec(`
		UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?
	`, status, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("journal: finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("journal: finish run: unknown run %s", id)
	}
	return nil
}

// RecordPage appends a page record.
func (db *DB) RecordPage(p PageRecord) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO pages (run_id, kind, source_path, title, parent_id, page_id, checksum, blocks, images, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.RunID, p.Kind, p.SourcePath, p.Title, p.ParentID, p.PageID, p.Checksum, p.Blocks, p.Images, p.Status, p.Error, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("journal: record page: %w", err)
	}
	return nil
}

// Runs returns the most recent runs first, with page counts.
func (db *DB) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT r.id, r.root, r.parent_page_id, r.status, r.error, r.started_at, r.finished_at,
			(SELECT count(*) FROM pages p WHERE p.run_id = r.id AND p.status = 'ok'),
			(SELECT count(*) FROM pages p WHERE p.run_id = r.id AND p.status = 'failed')
		FROM runs r
		ORDER BY r.started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Root, &r.ParentPageID, &r.Status, &r.Error, &r.StartedAt, &finished, &r.PagesOK, &r.PagesFailed); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Pages returns the page records of a run in insertion order.
func (db *DB) Pages(runID string) ([]PageRecord, error) {
	rows, err := db.conn.Query(`
		SELECT run_id, kind, source_path, title, parent_id, page_id, checksum, blocks, images, status, error, created_at
		FROM pages WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal: pages: %w", err)
	}
	defer rows.Close()

	var out []PageRecord
	for rows.Next() {
		var p PageRecord
		if err := rows.Scan(&p.RunID, &p.Kind, &p.SourcePath, &p.Title, &p.ParentID, &p.PageID, &p.Checksum, &p.Blocks, &p.Images, &p.Status, &p.Error, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
