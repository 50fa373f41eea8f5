package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/feed/config"
	"github.com/greeddj/go-zzfeed/internal/feed/helpers"
	"github.com/greeddj/go-zzfeed/internal/feed/infra"
	"github.com/greeddj/go-zzfeed/internal/feed/pipeline"
	"github.com/greeddj/go-zzfeed/internal/logger"
)

// Serve opens the configured backend and serves it on cfg.Listen until ctx
// is cancelled. The cached feed is validated every cfg.ValidateInterval.
func Serve(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	if cfg == nil {
		return helpers.ErrConfigIsNil
	}
	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		runtime.Output.PersistentPrintf("❌ Error: %s", err.Error())
		return err
	}
	err = serve(ctx, cfg, runtime, listener)
	if err != nil {
		runtime.Output.PersistentPrintf("❌ Error: %s", err.Error())
	}
	return err
}

func serve(ctx context.Context, cfg *config.Config, runtime *infra.Infra, listener net.Listener) (err error) {
	session, err := pipeline.Open(ctx, cfg, runtime, true)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer func() {
		err = multierr.Append(err, session.Close(context.Background()))
	}()

	log := logger.WithModule(runtime.Logger, "http")
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Handler:           NewRouter(session.Loaders, log),
		ReadHeaderTimeout: helpers.ServerReadHeaderTimeout,
	}

	validateCtx, stopValidate := context.WithCancel(ctx)
	validated := make(chan struct{})
	go func() {
		defer close(validated)
		runValidator(validateCtx, cfg.ValidateInterval, session.Loaders.Local, log)
	}()
	defer func() {
		stopValidate()
		<-validated
	}()

	serverErr := make(chan error, 1)
	go func() {
		runtime.Output.PersistentPrintf("🌐 listening on %s", listener.Addr())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), helpers.ServerShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	runtime.Output.PersistentPrintf("👋 server stopped")
	return nil
}

// runValidator calls ValidateCache once on start and then every interval
// until ctx is done.
func runValidator(ctx context.Context, interval time.Duration, validator Validator, log *zap.Logger) {
	if interval <= 0 {
		interval = helpers.ServerValidateInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	validateOnce(ctx, validator, log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			validateOnce(ctx, validator, log)
		}
	}
}

func validateOnce(ctx context.Context, validator Validator, log *zap.Logger) {
	if err := validator.ValidateCache(ctx); err != nil && ctx.Err() == nil {
		log.Warn("periodic cache validation failed", zap.Error(err))
	}
}
