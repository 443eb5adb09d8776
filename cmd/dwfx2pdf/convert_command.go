package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dwfx2pdf/internal/config"
	"dwfx2pdf/internal/convert"
	"dwfx2pdf/internal/dispatch"
	"dwfx2pdf/internal/history"
	"dwfx2pdf/internal/notifications"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var overwrite bool
	var workers int

	cmd := &cobra.Command{
		Use:   "convert [path...]",
		Short: "Convert DWFX files or directories to PDF",
		Long: "Convert the given DWFX files, or every DWFX file in the given " +
			"directories. With no arguments the configured input directory is " +
			"converted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if outputDir == "" {
				outputDir = cfg.Paths.OutputDir
			}
			if workers <= 0 {
				workers = cfg.Convert.Workers
			}
			if cmd.Flags().Changed("overwrite") {
				cfg.Convert.Overwrite = overwrite
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			inputs, err := collectInputs(args, cfg.Paths.InputDir)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No DWFX files found")
				return nil
			}

			tasks := make([]convert.Task, len(inputs))
			for i, input := range inputs {
				tasks[i] = convert.NewTask(input, outputDir, cfg.Convert.Overwrite)
			}

			runner := convert.NewCLI(convert.WithBinary(cfg.ConverterBinary()))
			pool, err := dispatch.NewPool(runner, workers)
			if err != nil {
				return err
			}
			defer pool.Close()

			notifier := notifications.NewService(cfg)
			if err := notifier.NotifyBatchStarted(signalCtx, len(tasks)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warn: batch notification failed: %v\n", err)
			}

			start := time.Now()
			prog := newBatchProgress(len(tasks))
			outcomes := pool.RunBatchFunc(signalCtx, tasks, prog.Observe)
			prog.Stop()
			elapsed := time.Since(start)

			recordBatch(cmd, cfg, outcomes)
			succeeded, skipped, failed := tally(outcomes)
			if err := notifier.NotifyBatchCompleted(signalCtx, succeeded+skipped, failed, elapsed); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warn: batch notification failed: %v\n", err)
			}

			printOutcomes(cmd, outcomes)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s, %s, %s in %s\n",
				formatCount("converted", succeeded),
				formatCount("skipped", skipped),
				formatCount("failed", failed),
				elapsed.Round(time.Millisecond))

			if failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for generated PDFs")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Regenerate PDFs that already exist")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent conversions (defaults to config)")
	return cmd
}

// collectInputs expands the argument list into DWFX file paths. Directory
// arguments are scanned one level deep; explicit files must carry the DWFX
// extension.
func collectInputs(args []string, defaultDir string) ([]string, error) {
	if len(args) == 0 {
		args = []string{defaultDir}
	}

	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			if !convert.HasInputExtension(arg) {
				return nil, fmt.Errorf("%s is not a .dwfx file", arg)
			}
			inputs = append(inputs, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !convert.HasInputExtension(entry.Name()) {
				continue
			}
			inputs = append(inputs, filepath.Join(arg, entry.Name()))
		}
	}
	sort.Strings(inputs)
	return inputs, nil
}

func recordBatch(cmd *cobra.Command, cfg *config.Config, outcomes []convert.Outcome) {
	store, err := history.Open(cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	for _, outcome := range outcomes {
		if _, err := store.Record(context.Background(), history.SubmitterBatch, outcome); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warn: record outcome: %v\n", err)
			return
		}
	}
}

func tally(outcomes []convert.Outcome) (succeeded, skipped, failed int) {
	for _, outcome := range outcomes {
		switch {
		case outcome.Skipped:
			skipped++
		case outcome.Success:
			succeeded++
		default:
			failed++
		}
	}
	return succeeded, skipped, failed
}

func printOutcomes(cmd *cobra.Command, outcomes []convert.Outcome) {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		status := "ok"
		detail := filepath.Base(outcome.Output)
		switch {
		case outcome.Skipped:
			status = "skipped"
			detail = "output exists"
		case !outcome.Success:
			status = "failed"
			detail = outcome.FailureMessage()
		}
		rows = append(rows, []string{
			filepath.Base(outcome.Source),
			status,
			detail,
			outcome.Duration.Round(time.Millisecond).String(),
		})
	}

	out := renderTable(
		[]string{"File", "Status", "Detail", "Time"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
}
