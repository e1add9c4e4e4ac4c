package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weft-lang/weft/internal/cache"
	"github.com/weft-lang/weft/internal/cli/config"
	"github.com/weft-lang/weft/internal/lsp"
	"github.com/weft-lang/weft/internal/watch"
)

// NewLSPCommand creates the lsp command
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the Weft Language Server Protocol (LSP) server.

The server answers completion and hover requests for dialect processors
and expression object methods, scanning each project's dependency path
for dialect metadata on first use and reloading dialect files as they
change on disk.

It communicates via JSON-RPC over stdin/stdout and is typically started
automatically by your editor.`,
		RunE: runLSP,
	}
}

func runLSP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	workspace, err := buildWorkspace(cfg)
	if err != nil {
		return err
	}

	opts := []cache.Option{cache.WithLogger(logger)}

	var notifier *watch.Notifier
	if cfg.Watch.Enabled {
		notifier, err = watch.NewNotifier(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, logger)
		if err != nil {
			return fmt.Errorf("failed to create dialect file watcher: %w", err)
		}
		defer notifier.Stop()

		opts = append(opts,
			cache.WithNotifier(notifier),
			cache.WithScanHook(func(paths []string) {
				if err := notifier.WatchFileDirs(paths); err != nil {
					logger.Warn("failed to watch dialect directories", zap.Error(err))
				}
			}),
		)
	}

	dialectCache := cache.New(workspace, opts...)
	if err := dialectCache.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize dialect cache: %w", err)
	}
	defer dialectCache.Close()

	if notifier != nil {
		notifier.Start()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	server := lsp.NewServer(dialectCache, workspace, logger)
	return server.Run(ctx)
}
