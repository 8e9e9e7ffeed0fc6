package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/catalog"
	"github.com/SamuelNgundi/fullstack-comic-app/web/browse/tui"
	"github.com/SamuelNgundi/fullstack-comic-app/web/config"
	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

func main() {
	var configPath, logPath, category string
	flag.StringVar(&configPath, "config", "config.yaml", "web configuration file")
	flag.StringVar(&logPath, "log", "", "write logs to this file")
	flag.StringVar(&category, "category", core.AllCategory, "category to open")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	// The terminal belongs to the UI; logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := run(cfg, log, category); err != nil {
		fmt.Fprintf(os.Stderr, "browse: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger, category string) error {
	client, err := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout, log)
	if err != nil {
		return err
	}
	normalizer, err := core.NewNormalizer(cfg.MediaURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := tui.New(ctx, log, tui.Deps{
		Comics:     client.Comics,
		Categories: client.Categories,
		Normalizer: normalizer,
		PageSize:   cfg.PageSize,
		Category:   category,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
