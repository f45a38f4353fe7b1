package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notion-import/internal"
	pkgconfig "github.com/starford/notion-import/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults and environment", slog.String("path", configPath))
		applyEnv(cfg)
	}
	return cfg, nil
}

// applyEnv fills credentials from the environment when no config file is
// present; a config file is expected to reference them with ${VAR}.
func applyEnv(cfg *internal.Config) {
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		cfg.Notion.Token = v
	}
	if v := os.Getenv("NOTION_PARENT_PAGE_ID"); v != "" {
		cfg.Notion.ParentPageID = v
	}
	if v := os.Getenv("IMGBB_KEY"); v != "" {
		cfg.ImgBB.Key = v
	}
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if root := cmd.String("root"); root != "" {
		cfg.Import.RootFolder = root
	}
	if parent := cmd.String("parent"); parent != "" {
		cfg.Notion.ParentPageID = parent
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("import error: %w", err)
	}
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if root := cmd.String("root"); root != "" {
		cfg.Import.RootFolder = root
	}
	return internal.Check(ctx, internal.WithConfig(cfg))
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.History(ctx, int(cmd.Int("limit")), internal.WithConfig(cfg))
}

func main() {
	rootFlag := &cli.StringFlag{
		Name:    "root",
		Aliases: []string{"r"},
		Usage:   "Export root folder containing the notebook and resources folders",
		Sources: cli.EnvVars("IMPORT_ROOT"),
	}

	cmd := &cli.Command{
		Name:  "notion-import",
		Usage: "Import a markdown notebook export into Notion, rehosting local images on ImgBB",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Create the notebook, section and note pages under the parent page",
				Action: runImport,
				Flags: []cli.Flag{
					rootFlag,
					&cli.StringFlag{
						Name:    "parent",
						Aliases: []string{"p"},
						Usage:   "Notion page id to import under",
						Sources: cli.EnvVars("NOTION_PARENT_PAGE_ID"),
					},
				},
			},
			{
				Name:   "check",
				Usage:  "Validate credentials and inspect the export folder without importing",
				Action: runCheck,
				Flags:  []cli.Flag{rootFlag},
			},
			{
				Name:   "history",
				Usage:  "List recent journaled runs",
				Action: runHistory,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of runs to show",
						Value: 20,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
