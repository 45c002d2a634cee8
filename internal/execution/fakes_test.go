package execution

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	testBase  = "So11111111111111111111111111111111111111112"
	testToken = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

type fakeBalances struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	err      error
	calls    int
	assets   []string
}

func (f *fakeBalances) Balance(_ context.Context, asset string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.assets = append(f.assets, asset)
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.balances[asset], nil
}

func (f *fakeBalances) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeScales struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeScales) Decimals(_ context.Context, asset string) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if asset == testBase {
		return 9, nil
	}
	return 6, nil
}

type fakeRouter struct {
	mu        sync.Mutex
	route     *Route
	err       error
	failFirst int
	calls     int
	last      RouteRequest
}

func (f *fakeRouter) Route(_ context.Context, req RouteRequest) (*Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if f.calls <= f.failFirst {
		return nil, errors.New("route code 40000: no liquidity")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.route, nil
}

func (f *fakeRouter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSigner struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeSigner) Address() string { return "WalletAddr111" }

func (f *fakeSigner) Sign(payload []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("signed:"), payload...), nil
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	id    string
	err   error
	calls int
	last  []byte
}

func (f *fakeBroadcaster) Submit(_ context.Context, signed []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = signed
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type fakeConfirmer struct {
	conf Confirmation
	err  error
	wait bool
}

func (f *fakeConfirmer) Confirm(ctx context.Context, _ string) (Confirmation, error) {
	if f.wait {
		<-ctx.Done()
		return Confirmation{}, ctx.Err()
	}
	return f.conf, f.err
}

type memRecorder struct {
	mu      sync.Mutex
	results []Result
}

func (m *memRecorder) Record(r Result) {
	m.mu.Lock()
	m.results = append(m.results, r)
	m.mu.Unlock()
}

type harness struct {
	balances    *fakeBalances
	scales      *fakeScales
	router      *fakeRouter
	signer      *fakeSigner
	broadcaster *fakeBroadcaster
	recorder    *memRecorder
}

func newHarness() *harness {
	return &harness{
		balances:    &fakeBalances{balances: map[string]decimal.Decimal{}},
		scales:      &fakeScales{},
		router:      &fakeRouter{route: &Route{Payload: []byte("unsigned-tx"), ExpectedOut: "1234"}},
		signer:      &fakeSigner{},
		broadcaster: &fakeBroadcaster{id: "5ig"},
		recorder:    &memRecorder{},
	}
}

func (h *harness) components() Components {
	return Components{
		Balances:    h.balances,
		Scales:      h.scales,
		Router:      h.router,
		Signer:      h.signer,
		Broadcaster: h.broadcaster,
		Recorder:    h.recorder,
	}
}

func (h *harness) ioCalls() int {
	return h.balances.Calls() + h.scales.calls + h.router.Calls() + h.signer.calls + h.broadcaster.calls
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
