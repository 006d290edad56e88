package root

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"routinepet/internal/httpapi"
	"routinepet/internal/storage"
	"routinepet/internal/ui"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.svc.EnsureUser(ctx, storage.DefaultUserID); err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := &http.Server{
				Addr: addr,
				Handler: httpapi.NewServer(httpapi.Options{
					Service:    a.svc,
					Coach:      a.coach,
					Logger:     a.logger,
					AdminToken: a.cfg.Admin.Token,
				}).Handler(),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("http_listen", "addr", addr, "ollama_url", a.cfg.Ollama.URL, "ollama_model", a.cfg.Ollama.Model)
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPet, "Routinepet API on http://"+addr))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("http_shutdown")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
