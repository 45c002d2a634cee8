package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// RPCBroadcaster sends signed transactions straight to an RPC node.
type RPCBroadcaster struct {
	rpc           *rpc.Client
	commit        rpc.CommitmentType
	skipPreflight bool
}

// NewRPCBroadcaster builds a direct-to-node broadcaster.
func NewRPCBroadcaster(client *rpc.Client, commit rpc.CommitmentType, skipPreflight bool) *RPCBroadcaster {
	return &RPCBroadcaster{rpc: client, commit: commit, skipPreflight: skipPreflight}
}

// Submit sends the raw transaction and returns its signature.
func (b *RPCBroadcaster) Submit(ctx context.Context, signed []byte) (string, error) {
	sig, err := b.rpc.SendRawTransactionWithOpts(ctx, signed, rpc.TransactionOpts{
		SkipPreflight:       b.skipPreflight,
		PreflightCommitment: b.commit,
	})
	if err != nil {
		return "", fmt.Errorf("sendTransaction: %w", err)
	}
	return sig.String(), nil
}
