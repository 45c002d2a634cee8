// Package app assembles the trade pipeline from configuration.
package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/FinCodeAI/sol-tx/internal/config"
	"github.com/FinCodeAI/sol-tx/internal/dex/gmgn"
	"github.com/FinCodeAI/sol-tx/internal/dex/solana"
	"github.com/FinCodeAI/sol-tx/internal/execution"
	"github.com/FinCodeAI/sol-tx/internal/journal"
	"github.com/FinCodeAI/sol-tx/internal/risk"
)

// Pipeline is a ready-to-run executor plus the resources it owns.
type Pipeline struct {
	Executor *execution.Executor
	Ledger   *journal.Ledger

	closers []io.Closer
}

// Close releases the journal file, if any.
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Build wires every pipeline stage described by cfg around wallet.
func Build(cfg *config.Config, log zerolog.Logger, wallet *solana.Wallet) (*Pipeline, error) {
	if cfg.Dex.RpcURL == "" {
		return nil, errors.New("dex.rpc_url is required")
	}
	commit := solana.ParseCommitment(cfg.Dex.Commitment)
	node := rpc.New(cfg.Dex.RpcURL)

	scales := solana.NewScaleResolver(node, commit, cfg.Trade.Decimals)
	balances := solana.NewBalanceResolver(node, wallet.PublicKey(), commit, scales)
	timeout := time.Duration(cfg.Router.TimeoutMs) * time.Millisecond

	var (
		router      execution.Router
		broadcaster execution.Broadcaster
	)
	switch cfg.Router.Provider {
	case config.RouterJupiter:
		router = solana.NewJupiterRouter(cfg.Router.BaseURL, timeout)
	default:
		client := gmgn.NewClient(gmgn.Options{
			BaseURL:  cfg.Router.BaseURL,
			Timeout:  timeout,
			Fee:      cfg.Router.Fee,
			AntiMEV:  cfg.Router.AntiMEV,
			Encoding: cfg.Router.PayloadEncoding,
		})
		router = client
		if cfg.Broadcast.Mode == config.BroadcastRelay {
			broadcaster = client.Relay()
		}
	}
	if broadcaster == nil {
		broadcaster = solana.NewRPCBroadcaster(node, commit, cfg.Broadcast.SkipPreflight)
	}

	var confirmer execution.Confirmer
	if cfg.Confirm.Enabled {
		switch cfg.Confirm.Mode {
		case config.ConfirmWS:
			confirmer = solana.NewWSConfirmer(cfg.Dex.WsURL, commit)
		default:
			confirmer = solana.NewPollConfirmer(node, commit, time.Duration(cfg.Confirm.PollIntervalMs)*time.Millisecond)
		}
	}

	p := &Pipeline{Ledger: journal.NewLedger(cfg.Journal.Capacity)}
	recorders := journal.Multi{p.Ledger}
	if cfg.Journal.Path != "" {
		jsonl, err := journal.NewJSONLRecorder(cfg.Journal.Path, log)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		recorders = append(recorders, jsonl)
		p.closers = append(p.closers, jsonl)
	}

	retries := config.DefaultRouteRetries
	if cfg.Router.Retries != nil {
		retries = *cfg.Router.Retries
	}

	p.Executor = execution.NewExecutor(log, execution.Components{
		Balances:    balances,
		Scales:      scales,
		Router:      router,
		Signer:      solana.NewSigner(wallet),
		Broadcaster: broadcaster,
		Confirmer:   confirmer,
		Recorder:    recorders,
	}, execution.Policy{
		BaseAsset:          cfg.Trade.BaseAsset,
		DefaultSlippageBps: cfg.Trade.DefaultSlippageBps,
		DCAFactor:          decimal.NewFromFloat(cfg.Trade.DCAFactor),
		Limits:             risk.NewLimits(cfg.Risk.MaxBasePerTrade),
		RouteRetries:       retries,
		ConfirmTimeout:     time.Duration(cfg.Confirm.TimeoutMs) * time.Millisecond,
		ValidateAsset:      solana.ValidateAsset,
	})
	log.Info().
		Str("router", cfg.Router.Provider).
		Str("broadcast", cfg.Broadcast.Mode).
		Bool("confirm", cfg.Confirm.Enabled).
		Str("wallet", wallet.Address()).
		Msg("pipeline ready")
	return p, nil
}
