package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/FinCodeAI/sol-tx/internal/app"
	"github.com/FinCodeAI/sol-tx/internal/config"
	dex "github.com/FinCodeAI/sol-tx/internal/dex/solana"
	"github.com/FinCodeAI/sol-tx/internal/execution"
	"github.com/FinCodeAI/sol-tx/internal/util"
)

func main() {
	var (
		path        = flag.String("config", "internal/config/config.yaml", "path to config yaml")
		action      = flag.String("action", "", "BUY, SELL, DCA or HOLD")
		asset       = flag.String("asset", "", "target asset mint")
		amount      = flag.String("amount", "", "quantity in the input asset's natural units")
		pct         = flag.String("pct", "", "fraction of the input balance, (0, 1]")
		slippageBps = flag.Int("slippage-bps", 0, "slippage tolerance in basis points")
	)
	flag.Parse()

	log := util.NewLogger("info")
	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	cfg.Journal.Path = ""
	log = util.NewLogger(cfg.App.LogLevel)

	in := execution.Instruction{Action: execution.Action(*action), AssetID: *asset}
	if in.Amount, err = parseDecimal(*amount); err != nil {
		log.Fatal().Err(err).Msg("-amount")
	}
	if in.Percentage, err = parseDecimal(*pct); err != nil {
		log.Fatal().Err(err).Msg("-pct")
	}
	if *slippageBps > 0 {
		in.SlippageBps = slippageBps
	}

	wallet, err := dex.LoadWallet(cfg.Wallet.PrivateKeyEnv, dex.EnvPrivateKey, dex.EnvPrivateKeyBase58)
	if err != nil {
		log.Fatal().Err(err).Msg("wallet")
	}
	pipeline, err := app.Build(cfg, log, wallet)
	if err != nil {
		log.Fatal().Err(err).Msg("build pipeline")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res := pipeline.Executor.Execute(ctx, in)
	cancel()
	_ = pipeline.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
	if !res.OK() {
		os.Exit(1)
	}
}

func parseDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	return &d, nil
}
