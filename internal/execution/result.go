package execution

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status values other than the executed action itself.
const (
	StatusHold  = "HOLD"
	StatusError = "ERROR"
)

// Confirmation status values.
const (
	ConfirmationProcessed   = "processed"
	ConfirmationConfirmed   = "confirmed"
	ConfirmationFinalized   = "finalized"
	ConfirmationFailed      = "failed"
	ConfirmationUnconfirmed = "unconfirmed"
)

// Confirmation is the observed on-chain state of a broadcast transaction.
type Confirmation struct {
	Status string `json:"status"`
	Err    string `json:"error,omitempty"`
}

// Result is the normalized outcome of one Execute call. A successful trade
// carries TxHash; a failure carries Error and ErrorDetail; HOLD carries neither.
type Result struct {
	Status         string           `json:"status"`
	RequestID      string           `json:"requestId,omitempty"`
	TxHash         string           `json:"txHash,omitempty"`
	AssetID        string           `json:"assetId,omitempty"`
	AmountExecuted *decimal.Decimal `json:"amountExecuted,omitempty"`
	AmountUnits    uint64           `json:"amountUnits,omitempty"`
	SlippageUsed   *decimal.Decimal `json:"slippageUsed,omitempty"` // percent
	ExpectedOut    string           `json:"expectedOut,omitempty"`
	Confirmation   *Confirmation    `json:"confirmation,omitempty"`
	Error          Kind             `json:"error,omitempty"`
	ErrorDetail    string           `json:"errorDetail,omitempty"`
	Recoverable    bool             `json:"recoverable,omitempty"`
	Message        string           `json:"message,omitempty"`
	At             time.Time        `json:"at"`
}

// OK reports whether the result is not an error.
func (r Result) OK() bool { return r.Error == "" }
