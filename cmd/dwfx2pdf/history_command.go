package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"dwfx2pdf/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			var entries []*history.Entry
			if failedOnly {
				entries, err = store.Failures(cmd.Context(), limit)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return fmt.Errorf("query history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				status := "ok"
				detail := filepath.Base(entry.Output)
				switch {
				case entry.Skipped:
					status = "skipped"
					detail = "output exists"
				case !entry.Success:
					status = string(entry.FailureKind)
					detail = entry.ErrorMessage
				}
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					string(entry.Submitter),
					filepath.Base(entry.Source),
					status,
					detail,
					entry.Duration.Round(time.Millisecond).String(),
				})
			}

			out := renderTable(
				[]string{"When", "Via", "File", "Status", "Detail", "Time"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.AddCommand(newHistoryStatsCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Show only failed conversions")
	return cmd
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show conversion totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			summary, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("history stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:     %d\n", summary.Total)
			fmt.Fprintf(out, "Succeeded: %d\n", summary.Succeeded)
			fmt.Fprintf(out, "Skipped:   %d\n", summary.Skipped)
			fmt.Fprintf(out, "Failed:    %d\n", summary.Failed)
			return nil
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Delete entries older than this duration")
	return cmd
}
