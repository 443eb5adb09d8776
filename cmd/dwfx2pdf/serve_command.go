package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dwfx2pdf/internal/convert"
	"dwfx2pdf/internal/dispatch"
	"dwfx2pdf/internal/history"
	"dwfx2pdf/internal/logging"
	"dwfx2pdf/internal/results"
	"dwfx2pdf/internal/webui"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run only the browser upload server",
		Long: "Serve the upload page without watching the input directory. " +
			"Useful when conversions are driven entirely from the browser.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Web.Bind = bind
			}
			if cfg.Web.Bind == "" {
				return errors.New("no bind address; set web.bind in config or pass --bind")
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

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

			outputs := results.NewStore(cfg.Paths.OutputDir)
			server := &http.Server{
				Addr:              cfg.Web.Bind,
				Handler:           webui.NewServer(pool, cfg, outputs, hist, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("upload server listening", logging.String("bind", cfg.Web.Bind))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("upload server: %w", err)
				}
			case <-signalCtx.Done():
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancelShutdown()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown upload server: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address, for example 127.0.0.1:8080")
	return cmd
}
