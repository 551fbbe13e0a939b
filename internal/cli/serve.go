package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lobbyn/relay/internal/api"
	"github.com/lobbyn/relay/internal/config"
	"github.com/lobbyn/relay/internal/factory"
	"github.com/lobbyn/relay/internal/riot"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			slog.SetDefault(logger)

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			app, err := factory.New(factory.Config{Config: cfg, Logger: logger})
			if err != nil {
				return err
			}

			// Fail fast on an expired or mistyped API key.
			if !cfg.SkipKeyCheck {
				if client, ok := app.Provider.(*riot.HTTPClient); ok {
					if err := client.CheckKey(cmd.Context()); err != nil {
						return err
					}
				}
			}

			handler := api.NewRouter(api.RouterConfig{
				Logger: logger,
				Relay:  app.WSHandler,
			})

			serverCfg := api.DefaultServerConfig()
			serverCfg.Port = cfg.Port
			server := api.NewServer(handler, serverCfg, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				logger.Info("shutdown signal received")
				cancel()
			}()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			logger.Info("relay started",
				slog.String("addr", server.Addr()),
				slog.String("continent", cfg.RiotContinent))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return server.Shutdown(context.Background())
			}
		},
	}
}
