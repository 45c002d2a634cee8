package solana

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/FinCodeAI/sol-tx/internal/execution"
)

// BalanceResolver reads the wallet's holdings straight from the chain.
// Nothing is cached: every call is a fresh query.
type BalanceResolver struct {
	rpc    *rpc.Client
	owner  solana.PublicKey
	commit rpc.CommitmentType
	scales execution.ScaleResolver
}

// NewBalanceResolver builds a resolver for owner's holdings.
func NewBalanceResolver(client *rpc.Client, owner solana.PublicKey, commit rpc.CommitmentType, scales execution.ScaleResolver) *BalanceResolver {
	return &BalanceResolver{rpc: client, owner: owner, commit: commit, scales: scales}
}

// Balance returns the natural-unit balance of asset. Wallets without a token
// account for the mint hold zero.
func (b *BalanceResolver) Balance(ctx context.Context, asset string) (decimal.Decimal, error) {
	if IsNative(asset) {
		out, err := b.rpc.GetBalance(ctx, b.owner, b.commit)
		if err != nil {
			return decimal.Zero, fmt.Errorf("getBalance: %w", err)
		}
		return execution.FromSmallestUnit(out.Value, NativeDecimals), nil
	}

	mint, err := solana.PublicKeyFromBase58(asset)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse mint %q: %w", asset, err)
	}
	out, err := b.rpc.GetTokenAccountsByOwner(ctx, b.owner,
		&rpc.GetTokenAccountsConfig{Mint: &mint},
		&rpc.GetTokenAccountsOpts{Commitment: b.commit, Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("getTokenAccountsByOwner: %w", err)
	}
	if out == nil || len(out.Value) == 0 {
		return decimal.Zero, nil
	}

	var total uint64
	for _, acc := range out.Value {
		if acc == nil || acc.Account.Data == nil {
			return decimal.Zero, fmt.Errorf("token account without data")
		}
		var ta token.Account
		if err := bin.NewBinDecoder(acc.Account.Data.GetBinary()).Decode(&ta); err != nil {
			return decimal.Zero, fmt.Errorf("decode token account %s: %w", acc.Pubkey, err)
		}
		total += ta.Amount
	}
	if total == 0 {
		return decimal.Zero, nil
	}

	decimals, err := b.scales.Decimals(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	return execution.FromSmallestUnit(total, decimals), nil
}
