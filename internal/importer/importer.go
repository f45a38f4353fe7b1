// Package importer reproduces a local notebook folder as a tree of remote
// pages: one page for the notebook, one per section folder and one per
// markdown file.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/starford/notion-import/internal/apperr"
	"github.com/starford/notion-import/internal/checksum"
	"github.com/starford/notion-import/internal/compiler"
	"github.com/starford/notion-import/internal/imghost"
	"github.com/starford/notion-import/internal/journal"
	"github.com/starford/notion-import/internal/notion"
	"github.com/starford/notion-import/internal/pacing"
	"github.com/starford/notion-import/internal/pagebuilder"
	"github.com/starford/notion-import/internal/resources"
	"github.com/starford/notion-import/internal/segment"
	"github.com/starford/notion-import/internal/storage"
)

// Policies for a missing resources folder.
const (
	MissingResourcesWarn  = "warn"
	MissingResourcesAbort = "abort"
)

// DefaultNotebookFolder is the notebook folder name under the export root.
const DefaultNotebookFolder = "My Notebook"

const markdownPattern = "*.md"

// Recorder receives journal entries. *journal.DB satisfies it.
type Recorder interface {
	StartRun(root, parentPageID string) (string, error)
	RecordPage(p journal.PageRecord) error
	FinishRun(id, status, errMsg string) error
}

var _ Recorder = (*journal.DB)(nil)

// Options controls folder names and policies.
type Options struct {
	NotebookFolder     string
	ResourcesFolder    string
	OnMissingResources string
	ChunkSize          int
	MaxBlocksPerCall   int
}

// Importer drives page creation for one export tree. Work is strictly
// sequential: one remote page creation at a time, top-down.
type Importer struct {
	pages    notion.Pages
	uploader imghost.Uploader
	pacer    pacing.Pacer
	journal  Recorder
	opts     Options
	logger   *slog.Logger
}

// New creates an Importer. journal may be nil.
func New(pages notion.Pages, uploader imghost.Uploader, pacer pacing.Pacer, rec Recorder, opts Options, logger *slog.Logger) *Importer {
	if opts.NotebookFolder == "" {
		opts.NotebookFolder = DefaultNotebookFolder
	}
	if opts.ResourcesFolder == "" {
		opts.ResourcesFolder = resources.DefaultDir
	}
	if opts.OnMissingResources == "" {
		opts.OnMissingResources = MissingResourcesWarn
	}
	if pacer == nil {
		pacer = pacing.None{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{pages: pages, uploader: uploader, pacer: pacer, journal: rec, opts: opts, logger: logger}
}

// Summary reports what a run did.
type Summary struct {
	RunID          string
	NotebookPageID string
	Sections       int
	SectionsFailed int
	Notes          int
	NotesFailed    int
	Images         int
	Duration       time.Duration
}

// run carries per-invocation state.
type run struct {
	id      string
	store   storage.Provider
	builder *pagebuilder.Builder
	summary *Summary
}

// Import builds the resource index over rootDir and recreates the notebook
// folder under parentPageID. Only run-aborting failures are returned:
// missing root or notebook folder, missing resources under the abort
// policy, failure to create the notebook page, and cancellation. Section,
// file and image failures are logged and counted.
func (im *Importer) Import(ctx context.Context, rootDir, parentPageID string) (*Summary, error) {
	started := time.Now()
	summary := &Summary{}

	store, err := storage.NewFS(rootDir)
	if err != nil {
		im.logger.Error("root folder not found", slog.String("root", rootDir), slog.String("error", err.Error()))
		return summary, fmt.Errorf("importer: %s: %w", rootDir, apperr.ErrRootMissing)
	}
	if !store.Exists(im.opts.NotebookFolder, true) {
		im.logger.Error("notebook folder not found",
			slog.String("root", store.Root()),
			slog.String("notebook", im.opts.NotebookFolder))
		return summary, fmt.Errorf("importer: %q in %s: %w", im.opts.NotebookFolder, store.Root(), apperr.ErrNotebookMissing)
	}

	resolver, err := im.buildIndex(store.Root())
	if err != nil {
		return summary, err
	}

	r := &run{
		store:   store,
		summary: summary,
		builder: pagebuilder.New(
			im.pages,
			compiler.New(resolver, im.uploader, segment.New(im.opts.ChunkSize), im.logger),
			im.opts.MaxBlocksPerCall,
			im.logger,
		),
	}
	r.id = im.startRun(store.Root(), parentPageID)
	summary.RunID = r.id

	err = im.importNotebook(ctx, r, parentPageID)
	summary.Duration = time.Since(started)
	im.finishRun(r.id, err)

	im.logger.Info("import finished",
		slog.Int("sections", summary.Sections),
		slog.Int("sections_failed", summary.SectionsFailed),
		slog.Int("notes", summary.Notes),
		slog.Int("notes_failed", summary.NotesFailed),
		slog.Int("images", summary.Images),
		slog.String("duration", summary.Duration.String()))
	return summary, err
}

// buildIndex scans the resources folder. Under the warn policy a missing
// folder yields a nil resolver, which disables image rehosting.
func (im *Importer) buildIndex(root string) (compiler.Resolver, error) {
	idx, err := resources.Build(root, im.opts.ResourcesFolder)
	switch {
	case err == nil:
		im.logger.Info("resources indexed", slog.String("dir", idx.Dir()), slog.Int("files", idx.Len()))
		return idx, nil
	case errors.Is(err, apperr.ErrResourcesMissing) && im.opts.OnMissingResources != MissingResourcesAbort:
		im.logger.Warn("resources folder not found, images will not be rehosted",
			slog.String("dir", idx.Dir()))
		return nil, nil
	default:
		im.logger.Error("resources scan failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("importer: %w", err)
	}
}

func (im *Importer) importNotebook(ctx context.Context, r *run, parentPageID string) error {
	name := im.opts.NotebookFolder
	page, ok := r.builder.CreatePage(ctx, name, "", parentPageID)
	im.record(r, journal.KindNotebook, name, name, parentPageID, "", page, ok)
	if !ok {
		return fmt.Errorf("importer: notebook page %q: %w", name, apperr.ErrPageCreate)
	}
	r.summary.NotebookPageID = page.ID

	sections, err := r.store.ListDirs(name)
	if err != nil {
		return fmt.Errorf("importer: list sections: %w", err)
	}
	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := im.importSection(ctx, r, section, page.ID); err != nil {
			return err
		}
	}
	return nil
}

// importSection creates the section page and its notes. It returns an error
// only when the run must stop (cancellation).
func (im *Importer) importSection(ctx context.Context, r *run, section, notebookID string) error {
	dir := filepath.Join(im.opts.NotebookFolder, section)
	im.logger.Info("processing section", slog.String("section", section))

	page, ok := r.builder.CreatePage(ctx, section, "", notebookID)
	im.record(r, journal.KindSection, dir, section, notebookID, "", page, ok)
	if !ok {
		r.summary.SectionsFailed++
		im.logger.Warn("skipping section", slog.String("section", section))
		return nil
	}
	r.summary.Sections++

	files, err := r.store.ListFiles(dir, markdownPattern)
	if err != nil {
		im.logger.Error("list section files failed", slog.String("section", section), slog.String("error", err.Error()))
		return nil
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !im.importNote(ctx, r, filepath.Join(dir, name), page.ID) {
			continue
		}
		if err := im.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// importNote reads one markdown file and creates its page. It reports
// whether a remote call was made, so the caller knows to pace.
func (im *Importer) importNote(ctx context.Context, r *run, path, sectionID string) bool {
	title := resources.Stem(filepath.Base(path))
	im.logger.Info("processing file", slog.String("path", path))

	data, err := r.store.Read(path)
	if err == nil && !utf8.Valid(data) {
		err = fmt.Errorf("importer: %s is not valid UTF-8", path)
	}
	if err != nil {
		r.summary.NotesFailed++
		im.logger.Error("read file failed", slog.String("path", path), slog.String("error", err.Error()))
		im.recordFailure(r, journal.KindNote, path, title, sectionID, err)
		return false
	}

	page, ok := r.builder.CreatePage(ctx, title, string(data), sectionID)
	im.record(r, journal.KindNote, path, title, sectionID, checksum.Note(data), page, ok)
	if ok {
		r.summary.Notes++
		r.summary.Images += page.Images
		im.logger.Info("imported", slog.String("title", title), slog.String("page_id", page.ID))
	} else {
		r.summary.NotesFailed++
		im.logger.Warn("failed to import", slog.String("title", title))
	}
	return true
}
