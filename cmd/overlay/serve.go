package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/config"
	"github.com/twobackfromtheend/rlbot-overlay-script/internal/ingest"
	"github.com/twobackfromtheend/rlbot-overlay-script/internal/relay"
	"github.com/twobackfromtheend/rlbot-overlay-script/internal/server"
	"github.com/twobackfromtheend/rlbot-overlay-script/internal/ws"
)

func serveCmd() *cobra.Command {
	var rate int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the relay and broadcast game state to viewers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("rate") {
				cfg.Broadcast.RateHz = rate
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().IntVarP(&rate, "rate", "r", 30, "broadcast rate in Hz (overrides config)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("configuration loaded",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("rateHz", cfg.Broadcast.RateHz),
		zap.String("relayURL", cfg.Relay.URL),
		zap.Strings("corsAllowedOrigins", cfg.Server.CORSAllowedOrigins),
	)

	// Ingestion: relay events feed the handler
	rl := relay.New(logger)
	handler := ingest.NewHandler(logger)
	handler.Hook(rl)
	upstream := relay.NewClient(cfg.Relay.URL, rl, cfg.Relay.ReconnectInterval, cfg.Relay.HandshakeTimeout, logger)

	// Viewer side
	corsPolicy := server.NewCORS(cfg.Server.CORSAllowedOrigins)
	hub, err := ws.NewHub(server.CheckOrigin(corsPolicy), logger)
	if err != nil {
		return fmt.Errorf("create hub: %w", err)
	}
	streamer := ws.NewStreamer(hub, handler, cfg.Broadcast.RateHz, logger)

	srv := server.NewServer(hub, handler, upstream, cfg.Broadcast.RateHz, logger)
	router, err := server.NewRouter(srv, http.HandlerFunc(hub.HandleWS), corsPolicy, logger)
	if err != nil {
		hub.Close()
		return fmt.Errorf("create router: %w", err)
	}

	// Create context for graceful shutdown
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, run := range []func(context.Context){hub.Run, streamer.Run, upstream.Run} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(runCtx)
		}(run)
	}

	// Setup HTTP server. No write timeout: viewer connections are long-lived.
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			runErr = fmt.Errorf("serve: %w", err)
		}
	}

	// Cancel context to stop the relay client, streamer and hub.
	// The hub closes every viewer connection on its way out.
	cancel()
	wg.Wait()
	hub.Close()

	// Graceful HTTP server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		if runErr == nil {
			runErr = fmt.Errorf("shutdown: %w", err)
		}
	}

	logger.Info("server stopped")
	return runErr
}
