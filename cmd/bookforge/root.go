package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/maauso/bookforge/internal/bootstrap"
	"github.com/maauso/bookforge/internal/config"
	"github.com/maauso/bookforge/internal/project"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bookforge",
		Short:         "Convert texts and EPUBs into audiobooks using text-to-speech",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		processCmd(),
		rebuildCmd(),
		reviewCmd(),
		detectCmd(),
		chunksCmd(),
		serveCmd(),
	)
	return cmd
}

// runtime bundles what every pipeline command needs.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   *bootstrap.Dependencies
}

// loadConfig reads the environment and installs the default logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize dependencies: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, deps: deps}, nil
}

func openProject(dir string) (*project.Project, error) {
	p, err := project.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	return p, nil
}
