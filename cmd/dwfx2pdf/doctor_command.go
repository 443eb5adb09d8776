package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dwfx2pdf/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that external dependencies are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.ConverterRequirements(cfg.ConverterBinary()))

			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := "ok"
				detail := status.Path
				if !status.Available {
					state = "missing"
					detail = status.Detail
					if !status.Optional {
						missing++
					}
				}
				rows = append(rows, []string{status.Name, state, detail})
			}

			out := renderTable([]string{"Dependency", "State", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft})
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if missing > 0 {
				return fmt.Errorf("%d required dependencies missing; install libgxps (brew install libgxps or apt install libgxps-utils)", missing)
			}
			return nil
		},
	}
}
