package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/notion-import/internal/imghost"
	"github.com/starford/notion-import/internal/importer"
	"github.com/starford/notion-import/internal/notion"
	"github.com/starford/notion-import/internal/pacing"
	"github.com/starford/notion-import/internal/resources"
	"github.com/starford/notion-import/internal/segment"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Notion  NotionConfig      `yaml:"notion"`
	ImgBB   ImgBBConfig       `yaml:"imgbb"`
	Import  ImportConfig      `yaml:"import"`
	Pacing  PacingConfig      `yaml:"pacing"`
	Journal JournalConfig     `yaml:"journal"`
}

// Validate validates the configuration. Credentials are not required here so
// that commands which never talk to the remote APIs work without them; see
// RequireCredentials.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Notion.Validate(); err != nil {
		return fmt.Errorf("notion: %w", err)
	}
	if err := c.ImgBB.Validate(); err != nil {
		return fmt.Errorf("imgbb: %w", err)
	}
	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := c.Pacing.Validate(); err != nil {
		return fmt.Errorf("pacing: %w", err)
	}
	return nil
}

// RequireCredentials checks the settings an import run cannot start without.
func (c *Config) RequireCredentials() error {
	if err := validation.ValidateStruct(&c.Notion,
		validation.Field(&c.Notion.Token, validation.Required),
		validation.Field(&c.Notion.ParentPageID, validation.Required),
	); err != nil {
		return fmt.Errorf("notion: %w", err)
	}
	if err := validation.ValidateStruct(&c.ImgBB,
		validation.Field(&c.ImgBB.Key, validation.Required),
	); err != nil {
		return fmt.Errorf("imgbb: %w", err)
	}
	return validation.ValidateStruct(&c.Import,
		validation.Field(&c.Import.RootFolder, validation.Required),
	)
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// NotionConfig holds the document API settings.
type NotionConfig struct {
	Token            string        `yaml:"token"`
	ParentPageID     string        `yaml:"parent_page_id"`
	BaseURL          string        `yaml:"base_url"`
	Version          string        `yaml:"version"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxBlocksPerCall int           `yaml:"max_blocks_per_call"`
}

// Validate validates the Notion configuration.
func (c *NotionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Version, validation.Required),
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.MaxBlocksPerCall, validation.Min(1), validation.Max(notion.MaxChildren)),
	)
}

// ImgBBConfig holds the image host settings.
type ImgBBConfig struct {
	Key       string        `yaml:"key"`
	UploadURL string        `yaml:"upload_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Validate validates the ImgBB configuration.
func (c *ImgBBConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.UploadURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Required),
	)
}

// ImportConfig describes the export tree layout and import policies.
type ImportConfig struct {
	RootFolder         string `yaml:"root_folder"`
	NotebookFolder     string `yaml:"notebook_folder"`
	ResourcesFolder    string `yaml:"resources_folder"`
	ChunkSize          int    `yaml:"chunk_size"`
	OnMissingResources string `yaml:"on_missing_resources"`
}

// Validate validates the import configuration.
func (c *ImportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NotebookFolder, validation.Required),
		validation.Field(&c.ResourcesFolder, validation.Required),
		validation.Field(&c.ChunkSize, validation.Required, validation.Min(1), validation.Max(segment.DefaultCeiling)),
		validation.Field(&c.OnMissingResources, validation.Required,
			validation.In(importer.MissingResourcesWarn, importer.MissingResourcesAbort)),
	)
}

// Options converts the section into importer options.
func (c *ImportConfig) Options(maxBlocks int) importer.Options {
	return importer.Options{
		NotebookFolder:     c.NotebookFolder,
		ResourcesFolder:    c.ResourcesFolder,
		OnMissingResources: c.OnMissingResources,
		ChunkSize:          c.ChunkSize,
		MaxBlocksPerCall:   maxBlocks,
	}
}

// PacingConfig selects the delay between note creations.
type PacingConfig struct {
	Strategy string        `yaml:"strategy"`
	Interval time.Duration `yaml:"interval"`
	Burst    int           `yaml:"burst"`
}

// Validate validates the pacing configuration.
func (c *PacingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Strategy, validation.Required,
			validation.In(pacing.StrategyFixed, pacing.StrategyTokenBucket, pacing.StrategyNone)),
		validation.Field(&c.Interval, validation.Min(time.Duration(0))),
		validation.Field(&c.Burst, validation.Min(0)),
	)
}

// JournalConfig holds the run journal location. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether runs are journaled.
func (c *JournalConfig) Enabled() bool {
	return c.Path != ""
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
		},
		Notion: NotionConfig{
			BaseURL:          notion.DefaultBaseURL,
			Version:          notion.DefaultVersion,
			Timeout:          30 * time.Second,
			MaxBlocksPerCall: notion.MaxChildren,
		},
		ImgBB: ImgBBConfig{
			UploadURL: imghost.DefaultUploadURL,
			Timeout:   60 * time.Second,
		},
		Import: ImportConfig{
			RootFolder:         "./export",
			NotebookFolder:     importer.DefaultNotebookFolder,
			ResourcesFolder:    resources.DefaultDir,
			ChunkSize:          segment.DefaultCeiling,
			OnMissingResources: importer.MissingResourcesWarn,
		},
		Pacing: PacingConfig{
			Strategy: pacing.StrategyFixed,
			Interval: 500 * time.Millisecond,
			Burst:    1,
		},
	}
}
