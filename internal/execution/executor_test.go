package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/FinCodeAI/sol-tx/internal/risk"
)

func newTestExecutor(h *harness, mutate func(*Policy)) *Executor {
	p := Policy{
		BaseAsset:    testBase,
		DCAFactor:    decimal.NewFromFloat(0.5),
		RetryInitial: time.Millisecond,
		RetryMax:     2 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&p)
	}
	return NewExecutor(zerolog.Nop(), h.components(), p)
}

func TestExecuteHoldShortCircuits(t *testing.T) {
	h := newHarness()
	exec := newTestExecutor(h, nil)

	for _, in := range []Instruction{
		{Action: Hold},
		{Action: "hold", AssetID: testToken, Amount: dec("5")},
	} {
		res := exec.Execute(context.Background(), in)
		if res.Status != StatusHold {
			t.Fatalf("expected HOLD status, got %+v", res)
		}
		if res.TxHash != "" || res.Error != "" {
			t.Fatalf("HOLD must carry neither tx nor error: %+v", res)
		}
	}
	if h.ioCalls() != 0 {
		t.Fatalf("HOLD invoked downstream components %d times", h.ioCalls())
	}
	if len(h.recorder.results) != 2 {
		t.Fatalf("expected HOLD results recorded, got %d", len(h.recorder.results))
	}
}

func TestExecuteBuyZeroAmount(t *testing.T) {
	h := newHarness()
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("0")})
	if res.Error != KindInvalidAmount {
		t.Fatalf("expected InvalidAmount, got %+v", res)
	}
	if h.ioCalls() != 0 {
		t.Fatalf("expected no network calls, got %d", h.ioCalls())
	}
}

func TestExecuteValidationFailsBeforeIO(t *testing.T) {
	cases := map[string]Instruction{
		"unknown action":       {Action: "SHORT", AssetID: testToken, Amount: dec("1")},
		"missing asset":        {Action: Buy, Amount: dec("1")},
		"base as asset":        {Action: Buy, AssetID: testBase, Amount: dec("1")},
		"buy without amount":   {Action: Buy, AssetID: testToken},
		"percentage above one": {Action: Sell, AssetID: testToken, Percentage: dec("1.5")},
		"percentage zero":      {Action: Sell, AssetID: testToken, Percentage: dec("0")},
		"sell without sizing":  {Action: Sell, AssetID: testToken},
		"bad legacy percent":   {Action: "SELL_33", AssetID: testToken},
		"slippage bps zero":    {Action: Buy, AssetID: testToken, Amount: dec("1"), SlippageBps: ptr(0)},
		"slippage pct too big": {Action: Buy, AssetID: testToken, Amount: dec("1"), SlippagePercent: dec("150")},
		"legacy conflict":      {Action: "SELL_50", AssetID: testToken, Percentage: dec("0.25")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			res := newTestExecutor(h, nil).Execute(context.Background(), in)
			if res.Error != KindInvalidInstruction {
				t.Fatalf("expected InvalidInstruction, got %+v", res)
			}
			if res.Status != StatusError {
				t.Fatalf("expected ERROR status, got %s", res.Status)
			}
			if h.ioCalls() != 0 {
				t.Fatalf("expected no I/O, got %d calls", h.ioCalls())
			}
		})
	}
}

func TestExecuteAssetValidator(t *testing.T) {
	h := newHarness()
	exec := newTestExecutor(h, func(p *Policy) {
		p.ValidateAsset = func(s string) error {
			if strings.HasPrefix(s, "bad") {
				return errors.New("not base58")
			}
			return nil
		}
	})
	res := exec.Execute(context.Background(), Instruction{Action: Buy, AssetID: "bad-mint", Amount: dec("1")})
	if res.Error != KindInvalidInstruction || !strings.Contains(res.ErrorDetail, "not base58") {
		t.Fatalf("expected InvalidInstruction from validator, got %+v", res)
	}
	if h.ioCalls() != 0 {
		t.Fatalf("expected no I/O, got %d", h.ioCalls())
	}
}

func TestExecuteSellPercentageOutOfRangeSkipsBalance(t *testing.T) {
	h := newHarness()
	h.balances.balances[testToken] = decimal.NewFromInt(100)
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Sell, AssetID: testToken, Percentage: dec("1.5")})
	if res.Error != KindInvalidInstruction {
		t.Fatalf("expected InvalidInstruction, got %+v", res)
	}
	if h.balances.Calls() != 0 {
		t.Fatalf("balance was queried")
	}
}

func TestExecuteSellZeroBalance(t *testing.T) {
	h := newHarness()
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Sell, AssetID: testToken, Percentage: dec("0.5")})
	if res.Error != KindInsufficientBalance {
		t.Fatalf("expected InsufficientBalance, got %+v", res)
	}
	if h.router.Calls() != 0 {
		t.Fatalf("route requested after insufficient balance")
	}
}

func TestExecuteBalanceQueryFailed(t *testing.T) {
	h := newHarness()
	h.balances.err = errors.New("rpc timeout")
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Sell, AssetID: testToken, Percentage: dec("1")})
	if res.Error != KindBalanceQueryFailed {
		t.Fatalf("expected BalanceQueryFailed, got %+v", res)
	}
	if !res.Error.Recoverable() || !res.Recoverable {
		t.Fatalf("balance failures should be recoverable")
	}
}

func TestExecuteScaleLookupFailed(t *testing.T) {
	h := newHarness()
	h.scales.err = errors.New("mint not found")
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Sell, AssetID: testToken, Amount: dec("3")})
	if res.Error != KindBalanceQueryFailed {
		t.Fatalf("expected BalanceQueryFailed, got %+v", res)
	}
}

func TestExecuteBuyHappyPath(t *testing.T) {
	h := newHarness()
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("0.01")})
	if !res.OK() {
		t.Fatalf("unexpected error: %+v", res)
	}
	if res.Status != "BUY" || res.TxHash != "5ig" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.RequestID == "" || res.At.IsZero() {
		t.Fatalf("expected request id and timestamp")
	}
	req := h.router.last
	if req.InputAsset != testBase || req.OutputAsset != testToken {
		t.Fatalf("BUY must route base -> target, got %+v", req)
	}
	if req.Amount != 10_000_000 {
		t.Fatalf("expected 0.01 SOL = 10_000_000 lamports, got %d", req.Amount)
	}
	if req.Wallet != "WalletAddr111" {
		t.Fatalf("expected wallet address on route request, got %s", req.Wallet)
	}
	if req.SlippageBps != 1000 {
		t.Fatalf("expected default 10%% slippage, got %d bps", req.SlippageBps)
	}
	if !res.SlippageUsed.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected slippage used 10%%, got %s", res.SlippageUsed)
	}
	if !bytes.Equal(h.broadcaster.last, []byte("signed:unsigned-tx")) {
		t.Fatalf("broadcaster did not receive signed payload: %q", h.broadcaster.last)
	}
	if res.ExpectedOut != "1234" {
		t.Fatalf("expected route metadata on result, got %q", res.ExpectedOut)
	}
}

func TestExecuteSellUsesTargetScale(t *testing.T) {
	h := newHarness()
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Sell, AssetID: testToken, Amount: dec("12.5")})
	if !res.OK() {
		t.Fatalf("unexpected error: %+v", res)
	}
	req := h.router.last
	if req.InputAsset != testToken || req.OutputAsset != testBase {
		t.Fatalf("SELL must route target -> base, got %+v", req)
	}
	if req.Amount != 12_500_000 {
		t.Fatalf("expected 12.5 at 6 decimals = 12_500_000, got %d", req.Amount)
	}
}

func TestExecuteSellPercentage(t *testing.T) {
	h := newHarness()
	h.balances.balances[testToken] = decimal.NewFromInt(100)
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Sell, AssetID: testToken, Percentage: dec("0.5"), Amount: dec("7")})
	if !res.OK() {
		t.Fatalf("unexpected error: %+v", res)
	}
	if !res.AmountExecuted.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("percentage must win over amount, got %s", res.AmountExecuted)
	}
	if h.router.last.Amount != 50_000_000 {
		t.Fatalf("unexpected units %d", h.router.last.Amount)
	}
}

func TestExecuteLegacySellPercent(t *testing.T) {
	h := newHarness()
	h.balances.balances[testToken] = decimal.NewFromInt(80)
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: "SELL_25", AssetID: testToken})
	if !res.OK() || res.Status != "SELL" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.AmountExecuted.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected 25%% of 80 = 20, got %s", res.AmountExecuted)
	}
}

func TestExecuteDCAScalesAmount(t *testing.T) {
	h := newHarness()
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: DCA, AssetID: testToken, Amount: dec("1")})
	if !res.OK() || res.Status != "DCA" {
		t.Fatalf("unexpected result: %+v", res)
	}
	req := h.router.last
	if req.InputAsset != testBase || req.OutputAsset != testToken {
		t.Fatalf("DCA must route like BUY, got %+v", req)
	}
	if req.Amount != 500_000_000 {
		t.Fatalf("expected half of 1 SOL, got %d", req.Amount)
	}
}

func TestExecuteDCAPercentageUsesBaseBalance(t *testing.T) {
	h := newHarness()
	h.balances.balances[testBase] = decimal.NewFromInt(4)
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: DCA, AssetID: testToken, Percentage: dec("0.5")})
	if !res.OK() {
		t.Fatalf("unexpected error: %+v", res)
	}
	if len(h.balances.assets) != 1 || h.balances.assets[0] != testBase {
		t.Fatalf("DCA percentage must size against the base asset, queried %v", h.balances.assets)
	}
	if !res.AmountExecuted.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected 4 * 0.5 * 0.5 = 1, got %s", res.AmountExecuted)
	}
}

func TestExecuteRiskLimit(t *testing.T) {
	h := newHarness()
	exec := newTestExecutor(h, func(p *Policy) { p.Limits = risk.NewLimits(1) })
	res := exec.Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("2")})
	if res.Error != KindRiskLimitExceeded {
		t.Fatalf("expected RiskLimitExceeded, got %+v", res)
	}
	if h.router.Calls() != 0 {
		t.Fatalf("route requested past risk limit")
	}

	h.balances.balances[testToken] = decimal.NewFromInt(1000)
	res = exec.Execute(context.Background(), Instruction{Action: Sell, AssetID: testToken, Percentage: dec("1")})
	if !res.OK() {
		t.Fatalf("sells are not capped by base spend limit: %+v", res)
	}
}

func TestExecuteBelowOneUnit(t *testing.T) {
	h := newHarness()
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Sell, AssetID: testToken, Amount: dec("0.0000001")})
	if res.Error != KindInvalidAmount {
		t.Fatalf("expected InvalidAmount, got %+v", res)
	}
	if h.router.Calls() != 0 {
		t.Fatalf("route requested for sub-unit quantity")
	}
}

func TestExecuteEmptyRoutePayload(t *testing.T) {
	h := newHarness()
	h.router.route = &Route{}
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if res.Error != KindNoRouteAvailable {
		t.Fatalf("expected NoRouteAvailable, got %+v", res)
	}
	if h.signer.calls != 0 || h.broadcaster.calls != 0 {
		t.Fatalf("signer or broadcaster invoked without a route")
	}
}

func TestExecuteRouteRetriesBounded(t *testing.T) {
	h := newHarness()
	h.router.failFirst = 2
	exec := newTestExecutor(h, func(p *Policy) { p.RouteRetries = 2 })
	res := exec.Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if !res.OK() {
		t.Fatalf("expected success after retries, got %+v", res)
	}
	if h.router.Calls() != 3 {
		t.Fatalf("expected 3 route attempts, got %d", h.router.Calls())
	}

	h = newHarness()
	h.router.failFirst = 10
	exec = newTestExecutor(h, func(p *Policy) { p.RouteRetries = 2 })
	res = exec.Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if res.Error != KindNoRouteAvailable {
		t.Fatalf("expected NoRouteAvailable, got %+v", res)
	}
	if h.router.Calls() != 3 {
		t.Fatalf("retries must stop at the bound, got %d calls", h.router.Calls())
	}
}

func TestExecuteMalformedPayloadNotRetried(t *testing.T) {
	h := newHarness()
	h.router.err = fmt.Errorf("decode swapTransaction: %w", ErrMalformedPayload)
	exec := newTestExecutor(h, func(p *Policy) { p.RouteRetries = 3 })
	res := exec.Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if res.Error != KindMalformedRoutePayload {
		t.Fatalf("expected MalformedRoutePayload, got %+v", res)
	}
	if h.router.Calls() != 1 {
		t.Fatalf("malformed payload must not be retried, got %d calls", h.router.Calls())
	}
}

func TestExecuteSignFailure(t *testing.T) {
	h := newHarness()
	h.signer.err = errors.New("wallet is not a required signer")
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if res.Error != KindMalformedRoutePayload {
		t.Fatalf("expected MalformedRoutePayload, got %+v", res)
	}
	if h.broadcaster.calls != 0 {
		t.Fatalf("broadcast attempted after signing failure")
	}
}

func TestExecuteBroadcastFailures(t *testing.T) {
	h := newHarness()
	h.broadcaster.err = errors.New("blockhash not found")
	res := newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if res.Error != KindBroadcastFailed || res.TxHash != "" {
		t.Fatalf("expected BroadcastFailed without tx, got %+v", res)
	}

	h = newHarness()
	h.broadcaster.id = ""
	res = newTestExecutor(h, nil).Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if res.Error != KindBroadcastFailed {
		t.Fatalf("expected BroadcastFailed for empty id, got %+v", res)
	}
}

func TestExecuteConfirmation(t *testing.T) {
	h := newHarness()
	c := h.components()
	c.Confirmer = &fakeConfirmer{conf: Confirmation{Status: ConfirmationConfirmed}}
	exec := NewExecutor(zerolog.Nop(), c, Policy{BaseAsset: testBase})
	res := exec.Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if res.Confirmation == nil || res.Confirmation.Status != ConfirmationConfirmed {
		t.Fatalf("expected confirmed, got %+v", res.Confirmation)
	}

	c.Confirmer = &fakeConfirmer{wait: true}
	exec = NewExecutor(zerolog.Nop(), c, Policy{BaseAsset: testBase, ConfirmTimeout: 10 * time.Millisecond})
	res = exec.Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	if !res.OK() || res.TxHash == "" {
		t.Fatalf("confirmation timeout must not fail a broadcast trade: %+v", res)
	}
	if res.Confirmation == nil || res.Confirmation.Status != ConfirmationUnconfirmed {
		t.Fatalf("expected unconfirmed, got %+v", res.Confirmation)
	}
}

func TestExecuteLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	h := newHarness()
	exec := NewExecutor(zerolog.New(&buf), h.components(), Policy{BaseAsset: testBase})
	exec.Execute(context.Background(), Instruction{Action: Buy, AssetID: testToken, Amount: dec("1")})
	out := buf.String()
	if !strings.Contains(out, "trade done") || !strings.Contains(out, "request_id") {
		t.Fatalf("expected summary log line, got %s", out)
	}
}

func TestExecuteConcurrent(t *testing.T) {
	h := newHarness()
	h.balances.balances[testToken] = decimal.NewFromInt(10)
	exec := newTestExecutor(h, nil)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := Instruction{Action: Buy, AssetID: testToken, Amount: dec("0.1")}
			if i%2 == 1 {
				in = Instruction{Action: Sell, AssetID: testToken, Percentage: dec("0.5")}
			}
			results[i] = exec.Execute(context.Background(), in)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, r := range results {
		if !r.OK() {
			t.Fatalf("unexpected failure: %+v", r)
		}
		if seen[r.RequestID] {
			t.Fatalf("duplicate request id %s", r.RequestID)
		}
		seen[r.RequestID] = true
	}
	if h.balances.Calls() != 8 {
		t.Fatalf("every sell must re-read balance, got %d reads", h.balances.Calls())
	}
}
