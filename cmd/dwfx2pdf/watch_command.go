package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"dwfx2pdf/internal/convert"
	"dwfx2pdf/internal/daemon"
	"dwfx2pdf/internal/dispatch"
	"dwfx2pdf/internal/history"
	"dwfx2pdf/internal/logging"
	"dwfx2pdf/internal/notifications"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the input directory and convert new DWFX files",
		Long: "Run the conversion daemon. New DWFX files dropped into the " +
			"input directory are converted once their size stops changing. " +
			"When web.bind is configured the browser upload server runs too.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			pidPath := filepath.Join(cfg.Paths.LogDir, "dwfx2pdfd.pid")
			if err := writePIDFile(pidPath); err != nil {
				return fmt.Errorf("write pid file: %w", err)
			}
			defer os.Remove(pidPath)

			hist, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer hist.Close()

			runner := convert.NewCLI(convert.WithBinary(cfg.ConverterBinary()))
			pool, err := dispatch.NewPool(runner, cfg.Convert.Workers)
			if err != nil {
				return err
			}
			defer pool.Close()

			d, err := daemon.New(cfg, pool, hist, notifications.NewService(cfg), logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			if err := d.Start(signalCtx); err != nil {
				return err
			}

			<-signalCtx.Done()
			logger.Info("shutting down")
			d.Stop()
			return nil
		},
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
