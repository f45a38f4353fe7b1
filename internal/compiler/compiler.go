// Package compiler turns markdown text into an ordered sequence of blocks:
// image embeds become rehosted image blocks and everything else becomes
// size-bounded paragraph blocks.
package compiler

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/starford/notion-import/internal/imghost"
	"github.com/starford/notion-import/internal/models"
	"github.com/starford/notion-import/internal/resources"
	"github.com/starford/notion-import/internal/segment"
)

var imageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// Resolver maps an image reference to a local resource file.
type Resolver interface {
	Resolve(ref string) (models.ResourceFile, bool)
}

// Compiler converts markdown content into blocks.
type Compiler struct {
	resolver Resolver
	uploader imghost.Uploader
	splitter segment.Splitter
	logger   *slog.Logger
}

// New creates a Compiler. A nil resolver disables image handling entirely:
// the content is emitted as text only.
func New(resolver Resolver, uploader imghost.Uploader, splitter segment.Splitter, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	// A typed nil *resources.Index inside the interface still means "no index".
	if idx, ok := resolver.(*resources.Index); ok && idx == nil {
		resolver = nil
	}
	return &Compiler{resolver: resolver, uploader: uploader, splitter: splitter, logger: logger}
}

// Compile scans text for ![alt](path) embeds left to right. Text between
// embeds is flushed through the splitter; each embed is resolved and
// uploaded, and becomes an image block captioned with its alt text. An
// embed that cannot be resolved or uploaded is dropped and compilation
// continues. Compile never fails.
func (c *Compiler) Compile(ctx context.Context, text string) []models.Block {
	var blocks []models.Block
	if c.resolver == nil || c.uploader == nil {
		return c.flush(blocks, text)
	}

	last := 0
	for _, m := range imageRe.FindAllStringSubmatchIndex(text, -1) {
		blocks = c.flush(blocks, text[last:m[0]])
		alt, ref := text[m[2]:m[3]], text[m[4]:m[5]]
		if b, ok := c.image(ctx, alt, ref); ok {
			blocks = append(blocks, b)
		}
		last = m[1]
	}
	return c.flush(blocks, text[last:])
}

// flush appends paragraph blocks for text, skipping blank chunks.
func (c *Compiler) flush(blocks []models.Block, text string) []models.Block {
	if strings.TrimSpace(text) == "" {
		return blocks
	}
	for _, chunk := range c.splitter.Split(text) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		blocks = append(blocks, models.Paragraph(chunk))
	}
	return blocks
}

func (c *Compiler) image(ctx context.Context, alt, ref string) (models.Block, bool) {
	rf, ok := c.resolver.Resolve(ref)
	if !ok {
		c.logger.Warn("image not found in resources",
			slog.String("ref", ref),
			slog.String("tried", strings.Join(resources.Candidates(ref), ", ")))
		return models.Block{}, false
	}
	url, err := c.uploader.Upload(ctx, rf.Path)
	if err != nil {
		c.logger.Warn("image upload failed",
			slog.String("ref", ref),
			slog.String("path", rf.Path),
			slog.String("error", err.Error()))
		return models.Block{}, false
	}
	return models.Image(url, alt), true
}
