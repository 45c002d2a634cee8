package solana

import (
	"context"
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ScaleResolver looks up how many decimals an asset uses. Static overrides
// are consulted before the chain.
type ScaleResolver struct {
	rpc       *rpc.Client
	commit    rpc.CommitmentType
	overrides map[string]int32
}

// NewScaleResolver builds a resolver over an RPC client.
func NewScaleResolver(client *rpc.Client, commit rpc.CommitmentType, overrides map[string]int32) *ScaleResolver {
	cp := make(map[string]int32, len(overrides))
	for k, v := range overrides {
		cp[k] = v
	}
	return &ScaleResolver{rpc: client, commit: commit, overrides: cp}
}

// Decimals returns the asset's decimal scale.
func (s *ScaleResolver) Decimals(ctx context.Context, asset string) (int32, error) {
	if IsNative(asset) {
		return NativeDecimals, nil
	}
	if d, ok := s.overrides[asset]; ok {
		return d, nil
	}
	mint, err := solana.PublicKeyFromBase58(asset)
	if err != nil {
		return 0, fmt.Errorf("parse mint %q: %w", asset, err)
	}
	out, err := s.rpc.GetTokenSupply(ctx, mint, s.commit)
	if err != nil {
		return 0, fmt.Errorf("getTokenSupply %s: %w", asset, err)
	}
	if out == nil || out.Value == nil {
		return 0, errors.New("getTokenSupply returned no value for " + asset)
	}
	return int32(out.Value.Decimals), nil
}
