package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/FinCodeAI/sol-tx/internal/app"
	"github.com/FinCodeAI/sol-tx/internal/config"
	dex "github.com/FinCodeAI/sol-tx/internal/dex/solana"
	"github.com/FinCodeAI/sol-tx/internal/httpapi"
	"github.com/FinCodeAI/sol-tx/internal/metrics"
	"github.com/FinCodeAI/sol-tx/internal/util"
)

func main() {
	path := flag.String("config", getEnv("SOLTX_CONFIG", "internal/config/config.yaml"), "path to config yaml")
	flag.Parse()

	boot := util.NewLogger("info")
	cfg, err := config.Load(*path)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}

	log, logFile := util.NewLoggerWithFile(cfg.App.LogLevel, util.FileSink{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	defer logFile.Close()
	log = log.With().Str("app", cfg.App.Name).Str("env", cfg.App.Env).Logger()

	wallet, err := dex.LoadWallet(cfg.Wallet.PrivateKeyEnv, dex.EnvPrivateKey, dex.EnvPrivateKeyBase58)
	if err != nil {
		log.Fatal().Err(err).Msg("wallet")
	}

	pipeline, err := app.Build(cfg, log, wallet)
	if err != nil {
		log.Fatal().Err(err).Msg("build pipeline")
	}
	defer pipeline.Close()

	if cfg.App.MetricsAddr != "" {
		msrv := metrics.Serve(cfg.App.MetricsAddr)
		defer msrv.Close()
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.New(log, pipeline.Executor, pipeline.Ledger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("trade executor listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
