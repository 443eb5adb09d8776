package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"dwfx2pdf/internal/history"
	"dwfx2pdf/internal/results"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and conversion status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon running: %s\n", yesNo(daemonLockHeld(filepath.Join(cfg.Paths.LogDir, "dwfx2pdfd.lock"))))
			fmt.Fprintf(out, "Input dir:      %s\n", cfg.Paths.InputDir)
			fmt.Fprintf(out, "Output dir:     %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "Converter:      %s\n", cfg.ConverterBinary())
			fmt.Fprintf(out, "Workers:        %d\n", cfg.Convert.Workers)
			if cfg.Web.Bind != "" {
				fmt.Fprintf(out, "Upload server:  %s\n", cfg.Web.Bind)
			}

			store := results.NewStore(cfg.Paths.OutputDir)
			if names, err := store.List(); err == nil {
				fmt.Fprintf(out, "PDFs on disk:   %d\n", len(names))
			}

			hist, err := history.Open(cfg)
			if err == nil {
				defer hist.Close()
				if summary, err := hist.Stats(cmd.Context()); err == nil {
					fmt.Fprintf(out, "Recorded:       %d total, %d failed\n", summary.Total, summary.Failed)
				}
			}
			return nil
		},
	}
}

// daemonLockHeld probes the daemon lock without disturbing a running
// instance; a successful TryLock is immediately released.
func daemonLockHeld(path string) bool {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false
	}
	if ok {
		_ = lock.Unlock()
		return false
	}
	return true
}
