package execution

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceResolver reports the wallet's holdings of an asset in natural units.
// A missing holding account is a zero balance, not an error.
type BalanceResolver interface {
	Balance(ctx context.Context, asset string) (decimal.Decimal, error)
}

// ScaleResolver reports how many decimals separate an asset's natural unit
// from its smallest indivisible unit.
type ScaleResolver interface {
	Decimals(ctx context.Context, asset string) (int32, error)
}

// RouteRequest asks the routing service for an executable swap.
type RouteRequest struct {
	InputAsset  string
	OutputAsset string
	Amount      uint64 // smallest unit of InputAsset
	Wallet      string
	SlippageBps int
}

// Route is an unsigned transaction built by the routing service. It is
// requested fresh per execution and never reused.
type Route struct {
	Payload              []byte
	ExpectedOut          string
	LastValidBlockHeight uint64
}

// Router fetches swap routes.
type Router interface {
	Route(ctx context.Context, req RouteRequest) (*Route, error)
}

// Signer attaches the wallet's signature to a serialized transaction.
type Signer interface {
	Address() string
	Sign(payload []byte) ([]byte, error)
}

// Broadcaster submits a signed transaction and returns its identifier.
type Broadcaster interface {
	Submit(ctx context.Context, signed []byte) (string, error)
}

// Confirmer waits for a broadcast transaction to reach the configured commitment.
type Confirmer interface {
	Confirm(ctx context.Context, signature string) (Confirmation, error)
}

// Recorder receives every result the executor produces.
type Recorder interface {
	Record(Result)
}
