package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/FinCodeAI/sol-tx/internal/metrics"
	"github.com/FinCodeAI/sol-tx/internal/risk"
)

// Components are the collaborators of one pipeline. Confirmer and Recorder are optional.
type Components struct {
	Balances    BalanceResolver
	Scales      ScaleResolver
	Router      Router
	Signer      Signer
	Broadcaster Broadcaster
	Confirmer   Confirmer
	Recorder    Recorder
}

// Policy holds the numeric knobs shared by every execution.
type Policy struct {
	BaseAsset          string
	DefaultSlippageBps int
	DCAFactor          decimal.Decimal
	Limits             risk.Limits
	RouteRetries       int
	RetryInitial       time.Duration
	RetryMax           time.Duration
	ConfirmTimeout     time.Duration
	// ValidateAsset rejects asset identifiers before any I/O. Optional.
	ValidateAsset func(string) error
}

const (
	defaultRetryInitial   = 250 * time.Millisecond
	defaultRetryMax       = 2 * time.Second
	defaultConfirmTimeout = 30 * time.Second
	defaultSlippageBps    = 1000
)

// Executor runs trade instructions through sizing, routing, signing and
// broadcast. It holds no per-request state and is safe for concurrent use.
type Executor struct {
	log    zerolog.Logger
	c      Components
	policy Policy
	sizer  *Sizer
}

// NewExecutor wires a pipeline from its collaborators.
func NewExecutor(log zerolog.Logger, c Components, p Policy) *Executor {
	if p.DefaultSlippageBps <= 0 {
		p.DefaultSlippageBps = defaultSlippageBps
	}
	if p.RouteRetries < 0 {
		p.RouteRetries = 0
	}
	if p.RetryInitial <= 0 {
		p.RetryInitial = defaultRetryInitial
	}
	if p.RetryMax <= 0 {
		p.RetryMax = defaultRetryMax
	}
	if p.ConfirmTimeout <= 0 {
		p.ConfirmTimeout = defaultConfirmTimeout
	}
	return &Executor{
		log:    log,
		c:      c,
		policy: p,
		sizer:  NewSizer(c.Balances, p.BaseAsset, p.DCAFactor),
	}
}

// Execute runs one instruction. It never panics on pipeline failures; every
// error is reported through Result.Error.
func (e *Executor) Execute(ctx context.Context, in Instruction) Result {
	reqID := uuid.NewString()
	log := e.log.With().Str("request_id", reqID).Str("action", string(in.Action)).Str("asset", in.AssetID).Logger()

	res := e.execute(ctx, log, in)
	res.RequestID = reqID
	res.At = time.Now().UTC()

	metrics.TradesTotal.WithLabelValues(actionLabel(in.Action), res.Status).Inc()
	if res.Error != "" {
		metrics.TradeFailures.WithLabelValues(string(res.Error)).Inc()
		log.Warn().Str("kind", string(res.Error)).Str("detail", res.ErrorDetail).Msg("trade failed")
	} else {
		log.Info().Str("status", res.Status).Str("tx", res.TxHash).Msg("trade done")
	}
	if e.c.Recorder != nil {
		e.c.Recorder.Record(res)
	}
	return res
}

func (e *Executor) execute(ctx context.Context, log zerolog.Logger, raw Instruction) Result {
	in, err := raw.normalize(e.policy.BaseAsset)
	if err != nil {
		return failure(raw, err)
	}
	if in.Action == Hold {
		return Result{Status: StatusHold, Message: "No transaction performed"}
	}
	if e.policy.ValidateAsset != nil {
		if err := e.policy.ValidateAsset(in.AssetID); err != nil {
			return failure(in, newError(KindInvalidInstruction, "invalid assetId", err))
		}
	}

	dir, _ := DirectionFor(in.Action, in.AssetID, e.policy.BaseAsset)
	slippage := in.slippageBps(e.policy.DefaultSlippageBps)

	started := time.Now()
	qty, err := e.sizer.Resolve(ctx, in.Action, in.AssetID, in.Amount, in.Percentage)
	observe("size", started)
	if err != nil {
		return failure(in, err)
	}
	if in.Action.SpendsBase() && !e.policy.Limits.Allow(qty) {
		return failure(in, newError(KindRiskLimitExceeded,
			fmt.Sprintf("spend %s exceeds per-trade cap %s", qty, e.policy.Limits.MaxBasePerTrade), nil))
	}

	decimals, err := e.c.Scales.Decimals(ctx, dir.Input)
	if err != nil {
		return failure(in, newError(KindBalanceQueryFailed, "decimals of "+dir.Input, err))
	}
	units, err := ToSmallestUnit(qty, decimals)
	if err != nil {
		return failure(in, newError(KindInvalidAmount, "convert quantity", err))
	}
	if units == 0 {
		return failure(in, newError(KindInvalidAmount, fmt.Sprintf("quantity %s is below one unit at %d decimals", qty, decimals), nil))
	}
	log.Debug().Str("input", dir.Input).Str("output", dir.Output).Str("qty", qty.String()).Uint64("units", units).Int("slippage_bps", slippage).Msg("sized")

	started = time.Now()
	route, err := e.fetchRoute(ctx, log, RouteRequest{
		InputAsset:  dir.Input,
		OutputAsset: dir.Output,
		Amount:      units,
		Wallet:      e.c.Signer.Address(),
		SlippageBps: slippage,
	})
	observe("route", started)
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			return failure(in, newError(KindMalformedRoutePayload, "route payload", err))
		}
		return failure(in, newError(KindNoRouteAvailable, "route "+dir.Input+" -> "+dir.Output, err))
	}

	started = time.Now()
	signed, err := e.c.Signer.Sign(route.Payload)
	observe("sign", started)
	if err != nil {
		return failure(in, newError(KindMalformedRoutePayload, "sign route transaction", err))
	}

	started = time.Now()
	txID, err := e.c.Broadcaster.Submit(ctx, signed)
	observe("broadcast", started)
	if err == nil && txID == "" {
		err = errors.New("no transaction id returned")
	}
	if err != nil {
		return failure(in, newError(KindBroadcastFailed, "submit signed transaction", err))
	}
	log.Info().Str("tx", txID).Msg("broadcast accepted")

	res := Result{
		Status:         string(in.Action),
		TxHash:         txID,
		AssetID:        in.AssetID,
		AmountExecuted: &qty,
		AmountUnits:    units,
		SlippageUsed:   ptr(decimal.NewFromInt(int64(slippage)).Div(hundred)),
		ExpectedOut:    route.ExpectedOut,
	}
	if e.c.Confirmer != nil {
		res.Confirmation = e.confirm(ctx, log, txID)
	}
	return res
}

// fetchRoute is the only retried stage. Malformed payloads and caller
// cancellation stop immediately.
func (e *Executor) fetchRoute(ctx context.Context, log zerolog.Logger, req RouteRequest) (*Route, error) {
	var route *Route
	attempt := 0
	op := func() error {
		if attempt > 0 {
			metrics.RouteRetries.Inc()
			log.Debug().Int("attempt", attempt+1).Msg("retrying route")
		}
		attempt++
		r, err := e.c.Router.Route(ctx, req)
		if err != nil {
			if errors.Is(err, ErrMalformedPayload) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if r == nil || len(r.Payload) == 0 {
			return errors.New("route has no transaction payload")
		}
		route = r
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.policy.RetryInitial
	b.MaxInterval = e.policy.RetryMax
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.policy.RouteRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return route, nil
}

// confirm only observes: the trade is durable once broadcast, so a timeout or
// RPC failure here never turns the result into an error.
func (e *Executor) confirm(ctx context.Context, log zerolog.Logger, sig string) *Confirmation {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.policy.ConfirmTimeout)
	defer cancel()

	started := time.Now()
	conf, err := e.c.Confirmer.Confirm(cctx, sig)
	observe("confirm", started)
	if err != nil {
		log.Warn().Err(err).Str("tx", sig).Msg("confirmation not observed")
		return &Confirmation{Status: ConfirmationUnconfirmed, Err: err.Error()}
	}
	return &conf
}

func failure(in Instruction, err error) Result {
	var e *Error
	if !errors.As(err, &e) {
		e = newError(KindInvalidInstruction, "unclassified", err)
	}
	detail := e.Detail
	if e.Err != nil {
		detail = fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return Result{
		Status:      StatusError,
		AssetID:     in.AssetID,
		Error:       e.Kind,
		ErrorDetail: detail,
		Recoverable: e.Kind.Recoverable(),
	}
}

func actionLabel(a Action) string {
	if parsed, _, ok := ParseAction(string(a)); ok {
		return string(parsed)
	}
	return "INVALID"
}

func observe(stage string, started time.Time) {
	metrics.StageSeconds.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

func ptr[T any](v T) *T { return &v }
