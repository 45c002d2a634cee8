package solana

import (
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// NativeDecimals is the lamport scale of SOL.
const NativeDecimals = 9

// NativeMint is the wrapped-SOL mint routers use to denote the native coin.
var NativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// ParseCommitment maps config strings onto RPC commitment levels, defaulting to confirmed.
func ParseCommitment(commit string) rpc.CommitmentType {
	c := rpc.CommitmentConfirmed
	switch commit {
	case "processed":
		c = rpc.CommitmentProcessed
	case "finalized":
		c = rpc.CommitmentFinalized
	}
	return c
}

// IsNative reports whether asset names the chain's native coin.
func IsNative(asset string) bool {
	return asset == NativeMint.String()
}

// ValidateAsset rejects strings that are not base58 public keys.
func ValidateAsset(asset string) error {
	if IsNative(asset) {
		return nil
	}
	_, err := solana.PublicKeyFromBase58(asset)
	return err
}
