// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/notion-import/internal/imghost"
	"github.com/starford/notion-import/internal/importer"
	"github.com/starford/notion-import/internal/journal"
	"github.com/starford/notion-import/internal/notion"
	"github.com/starford/notion-import/internal/pacing"
	"github.com/starford/notion-import/internal/resources"
	"github.com/starford/notion-import/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.out == nil {
		app.out = os.Stdout
	}
	if app.logger == nil {
		app.logger = newLogger(app.config.App)
		slog.SetDefault(app.logger)
	}
	return app, nil
}

func newLogger(cfg ApplicationConfig) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(os.Stdout, hopts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, hopts))
}

func (a *application) notionClient() *notion.Client {
	cfg := a.config.Notion
	return notion.NewClient(notion.Options{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Version: cfg.Version,
		Timeout: cfg.Timeout,
		Logger:  a.logger,
	})
}

// Run imports the configured export tree. SIGINT or SIGTERM stops the run
// after the page being created.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	if err := cfg.RequireCredentials(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("root_folder", cfg.Import.RootFolder),
		slog.String("notebook_folder", cfg.Import.NotebookFolder),
		slog.String("parent_page_id", cfg.Notion.ParentPageID),
		slog.String("pacing", cfg.Pacing.Strategy),
		slog.String("journal", cfg.Journal.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	pacer, err := pacing.New(cfg.Pacing.Strategy, cfg.Pacing.Interval, cfg.Pacing.Burst)
	if err != nil {
		return err
	}

	var rec importer.Recorder
	if cfg.Journal.Enabled() {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
		defer db.Close()
		rec = db
	}

	imp := importer.New(
		app.notionClient(),
		imghost.NewClient(cfg.ImgBB.UploadURL, cfg.ImgBB.Key, cfg.ImgBB.Timeout, logger),
		pacer,
		rec,
		cfg.Import.Options(cfg.Notion.MaxBlocksPerCall),
		logger,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	var summary *importer.Summary
	g.Go(func() error {
		defer cancel()
		s, err := imp.Import(gCtx, cfg.Import.RootFolder, cfg.Notion.ParentPageID)
		summary = s
		return err
	})

	// Handle interrupt signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal, stopping import", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	err = g.Wait()
	if summary != nil {
		printSummary(app.out, summary)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Import interrupted")
		} else {
			logger.Error("Import failed", slog.String("error", err.Error()))
		}
		return err
	}
	return nil
}

func printSummary(w io.Writer, s *importer.Summary) {
	fmt.Fprintf(w, "sections: %d imported, %d failed\n", s.Sections, s.SectionsFailed)
	fmt.Fprintf(w, "notes:    %d imported, %d failed\n", s.Notes, s.NotesFailed)
	fmt.Fprintf(w, "images:   %d\n", s.Images)
	fmt.Fprintf(w, "duration: %s\n", s.Duration.Round(time.Millisecond))
	if s.RunID != "" {
		fmt.Fprintf(w, "run:      %s\n", s.RunID)
	}
}

// Check validates the integration token and reports the layout of the
// export tree without creating anything.
func Check(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	out := app.out

	var failed bool
	if cfg.Notion.Token == "" {
		fmt.Fprintln(out, "notion token:     missing")
		failed = true
	} else if err := app.notionClient().ValidateToken(ctx); err != nil {
		fmt.Fprintf(out, "notion token:     invalid (%v)\n", err)
		failed = true
	} else {
		fmt.Fprintln(out, "notion token:     ok")
	}
	if cfg.ImgBB.Key == "" {
		fmt.Fprintln(out, "imgbb key:        missing")
		failed = true
	} else {
		fmt.Fprintln(out, "imgbb key:        set")
	}

	store, err := storage.NewFS(cfg.Import.RootFolder)
	if err != nil {
		fmt.Fprintf(out, "root folder:      missing (%s)\n", cfg.Import.RootFolder)
		return errors.New("check failed")
	}
	fmt.Fprintf(out, "root folder:      %s\n", store.Root())

	if !store.Exists(cfg.Import.NotebookFolder, true) {
		fmt.Fprintf(out, "notebook folder:  missing (%s)\n", cfg.Import.NotebookFolder)
		failed = true
	} else {
		sections, err := store.ListDirs(cfg.Import.NotebookFolder)
		if err != nil {
			return fmt.Errorf("list sections: %w", err)
		}
		fmt.Fprintf(out, "notebook folder:  %d sections\n", len(sections))
	}

	idx, err := resources.Build(store.Root(), cfg.Import.ResourcesFolder)
	switch {
	case err == nil:
		fmt.Fprintf(out, "resources folder: %d files\n", idx.Len())
	case cfg.Import.OnMissingResources == importer.MissingResourcesAbort:
		fmt.Fprintf(out, "resources folder: %v\n", err)
		failed = true
	default:
		fmt.Fprintln(out, "resources folder: missing, images will not be rehosted")
	}

	if failed {
		return errors.New("check failed")
	}
	return nil
}

// History prints the most recent journaled runs.
func History(_ context.Context, limit int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if !app.config.Journal.Enabled() {
		return errors.New("journal is disabled, set journal.path")
	}

	db, err := journal.Open(app.config.Journal.Path)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	defer db.Close()

	runs, err := db.Runs(limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tOK\tFAILED\tROOT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.PagesOK, r.PagesFailed, r.Root)
	}
	return tw.Flush()
}
