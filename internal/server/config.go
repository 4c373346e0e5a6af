package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/iwvelando/anticrisis-view/internal/config"
	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"go.uber.org/zap"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address           string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

// ConfigFrom derives the server settings from the application configuration,
// filling defaults for unset values.
func ConfigFrom(sc config.ServerConfig) Config {
	cfg := Config{
		Address:           sc.Address,
		ShutdownTimeout:   sc.ShutdownTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.Address == "" {
		cfg.Address = constants.DefaultServerAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = time.Duration(constants.DefaultShutdownTimeoutSeconds) * time.Second
	}
	return cfg
}

// Run serves handler until ctx is done, then shuts down gracefully. If ln is
// nil a listener is opened on cfg.Address.
func Run(ctx context.Context, cfg Config, ln net.Listener, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", cfg.Address)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
		}
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "server.Run"),
			zap.String("addr", ln.Addr().String()),
		)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown initiated", zap.String("op", "server.Run"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.String("op", "server.Run"), zap.Error(err))
			return srv.Close()
		}
	}
	return nil
}
