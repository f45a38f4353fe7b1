// Package pagebuilder creates a remote page and attaches the blocks
// compiled from its markdown content.
package pagebuilder

import (
	"context"
	"log/slog"

	"github.com/starford/notion-import/internal/models"
	"github.com/starford/notion-import/internal/notion"
)

// BlockCompiler turns markdown content into blocks.
type BlockCompiler interface {
	Compile(ctx context.Context, text string) []models.Block
}

// Page describes a successfully created page.
type Page struct {
	ID     string
	Blocks int
	Images int
}

// Builder creates pages through the document API.
type Builder struct {
	pages     notion.Pages
	compiler  BlockCompiler
	maxBlocks int
	logger    *slog.Logger
}

// New creates a Builder. maxBlocks caps the children sent per append call;
// non-positive means notion.MaxChildren.
func New(pages notion.Pages, compiler BlockCompiler, maxBlocks int, logger *slog.Logger) *Builder {
	if maxBlocks <= 0 || maxBlocks > notion.MaxChildren {
		maxBlocks = notion.MaxChildren
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{pages: pages, compiler: compiler, maxBlocks: maxBlocks, logger: logger}
}

// CreatePage creates a page titled title under parentID. Non-empty content is
// compiled and attached. Failures are logged and reported as ok=false; a page
// whose blocks could not be attached is left in place without them.
func (b *Builder) CreatePage(ctx context.Context, title, content, parentID string) (Page, bool) {
	b.logger.Info("creating page", slog.String("title", title), slog.String("parent_id", parentID))

	id, err := b.pages.CreatePage(ctx, parentID, title)
	if err != nil {
		b.logger.Error("create page failed", slog.String("title", title), slog.String("error", err.Error()))
		return Page{}, false
	}
	page := Page{ID: id}

	if content == "" {
		return page, true
	}
	blocks := b.compiler.Compile(ctx, content)
	if len(blocks) == 0 {
		return page, true
	}

	// Sequences within the per-call limit go in one request.
	for start := 0; start < len(blocks); start += b.maxBlocks {
		end := min(start+b.maxBlocks, len(blocks))
		if err := b.pages.AppendBlocks(ctx, id, blocks[start:end]); err != nil {
			b.logger.Error("attach blocks failed",
				slog.String("title", title),
				slog.String("page_id", id),
				slog.Int("attached", start),
				slog.Int("total", len(blocks)),
				slog.String("error", err.Error()))
			return Page{}, false
		}
	}

	page.Blocks = len(blocks)
	page.Images = models.CountImages(blocks)
	b.logger.Info("page created",
		slog.String("title", title),
		slog.String("page_id", id),
		slog.Int("blocks", page.Blocks),
		slog.Int("images", page.Images))
	return page, true
}
