package solana

import (
	"context"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/FinCodeAI/sol-tx/internal/execution"
)

const defaultPollInterval = 500 * time.Millisecond

// PollConfirmer polls signature statuses until the transaction reaches the
// target commitment, fails, or ctx ends.
type PollConfirmer struct {
	rpc      *rpc.Client
	target   rpc.CommitmentType
	interval time.Duration
}

// NewPollConfirmer builds a polling confirmer.
func NewPollConfirmer(client *rpc.Client, target rpc.CommitmentType, interval time.Duration) *PollConfirmer {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &PollConfirmer{rpc: client, target: target, interval: interval}
}

// Confirm blocks until a terminal status is observed.
func (p *PollConfirmer) Confirm(ctx context.Context, signature string) (execution.Confirmation, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return execution.Confirmation{}, fmt.Errorf("parse signature: %w", err)
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		conf, done, err := p.check(ctx, sig)
		if err != nil {
			return execution.Confirmation{}, err
		}
		if done {
			return conf, nil
		}
		select {
		case <-ctx.Done():
			return execution.Confirmation{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// check treats transient RPC errors as "not yet"; only ctx ends the wait.
func (p *PollConfirmer) check(ctx context.Context, sig solana.Signature) (execution.Confirmation, bool, error) {
	out, err := p.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		if ctx.Err() != nil {
			return execution.Confirmation{}, false, ctx.Err()
		}
		return execution.Confirmation{}, false, nil
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return execution.Confirmation{}, false, nil
	}
	st := out.Value[0]
	if st.Err != nil {
		return execution.Confirmation{Status: execution.ConfirmationFailed, Err: fmt.Sprint(st.Err)}, true, nil
	}
	level := string(st.ConfirmationStatus)
	if commitmentRank(level) >= commitmentRank(string(p.target)) {
		return execution.Confirmation{Status: level}, true, nil
	}
	return execution.Confirmation{}, false, nil
}

func commitmentRank(level string) int {
	switch level {
	case "processed":
		return 1
	case "confirmed":
		return 2
	case "finalized":
		return 3
	}
	return 0
}
