package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/maauso/bookforge/internal/job"
	"github.com/maauso/bookforge/internal/server"
)

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve <project-dir>",
		Short: "Serve the chunk, rebuild and review API for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				rt.cfg.Port = port
			}
			p, err := openProject(args[0])
			if err != nil {
				return err
			}
			logger := rt.logger

			logger.Info("starting bookforge API",
				slog.Int("port", rt.cfg.Port),
				slog.String("project", p.Root()),
				slog.String("tts_engine", rt.cfg.TTSEngine),
				slog.String("stitcher", rt.cfg.Stitcher),
				slog.Bool("publish_enabled", rt.cfg.PublishEnabled()),
			)

			jobs := job.NewService(job.NewMemoryRepository(), rt.deps.Book, p, logger)
			defer jobs.Close()

			handlers := server.NewHandlers(jobs, p, logger)
			srv := &http.Server{
				Addr:         fmt.Sprintf(":%d", rt.cfg.Port),
				Handler:      server.NewRouter(handlers, logger, server.Config{AllowedOrigins: rt.cfg.CORSOrigins}),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server listening", slog.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("server failed: %w", err)
				}
			}()

			select {
			case <-ctx.Done():
				logger.Info("received shutdown signal")
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			logger.Info("shutting down server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
			// Running jobs are cancelled and recorded as CANCELLED.
			jobs.Close()

			logger.Info("server stopped gracefully")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "listen port (overrides PORT)")
	return cmd
}
