package importer

import (
	"log/slog"

	"github.com/starford/notion-import/internal/journal"
	"github.com/starford/notion-import/internal/pagebuilder"
)

// Journal writes are best effort: a failing journal never affects the import.

func (im *Importer) startRun(root, parentPageID string) string {
	if im.journal == nil {
		return ""
	}
	id, err := im.journal.StartRun(root, parentPageID)
	if err != nil {
		im.logger.Warn("journal: start run failed", slog.String("error", err.Error()))
		return ""
	}
	return id
}

func (im *Importer) finishRun(id string, runErr error) {
	if im.journal == nil || id == "" {
		return
	}
	status, msg := journal.StatusCompleted, ""
	if runErr != nil {
		status, msg = journal.StatusAborted, runErr.Error()
	}
	if err := im.journal.FinishRun(id, status, msg); err != nil {
		im.logger.Warn("journal: finish run failed", slog.String("error", err.Error()))
	}
}

func (im *Importer) record(r *run, kind, path, title, parentID, sum string, page pagebuilder.Page, ok bool) {
	rec := journal.PageRecord{
		Kind:       kind,
		SourcePath: path,
		Title:      title,
		ParentID:   parentID,
		PageID:     page.ID,
		Checksum:   sum,
		Blocks:     page.Blocks,
		Images:     page.Images,
		Status:     journal.StatusOK,
	}
	if !ok {
		rec.Status = journal.StatusFailed
		rec.Error = "page creation failed"
	}
	im.write(r, rec)
}

func (im *Importer) recordFailure(r *run, kind, path, title, parentID string, err error) {
	im.write(r, journal.PageRecord{
		Kind:       kind,
		SourcePath: path,
		Title:      title,
		ParentID:   parentID,
		Status:     journal.StatusFailed,
		Error:      err.Error(),
	})
}

func (im *Importer) write(r *run, rec journal.PageRecord) {
	if im.journal == nil || r.id == "" {
		return
	}
	rec.RunID = r.id
	if err := im.journal.RecordPage(rec); err != nil {
		im.logger.Warn("journal: record page failed", slog.String("title", rec.Title), slog.String("error", err.Error()))
	}
}
