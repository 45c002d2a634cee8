package solana

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"filippo.io/edwards25519"
	solana "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"
)

// Environment variables consulted for the signing key, in order.
const (
	EnvPrivateKey       = "SOL_PRIVATE_KEY"
	EnvPrivateKeyBase58 = "SOLANA_PRIVATE_KEY_BASE58"
)

const keySize = 64

// Wallet is the process-wide signing identity. It is immutable after
// construction and safe to share between goroutines.
type Wallet struct {
	key solana.PrivateKey
	pub solana.PublicKey
}

// NewWallet validates that the key's public half is the one derived from its seed.
func NewWallet(key solana.PrivateKey) (*Wallet, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", keySize, len(key))
	}
	derived, err := derivePublicKey(key[:32])
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(derived, key[32:]) {
		return nil, errors.New("private key public half does not match its seed")
	}
	cp := make(solana.PrivateKey, keySize)
	copy(cp, key)
	return &Wallet{key: cp, pub: cp.PublicKey()}, nil
}

// derivePublicKey computes the ed25519 public key for a 32-byte seed.
func derivePublicKey(seed []byte) ([]byte, error) {
	h := sha512.Sum512(seed)
	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, fmt.Errorf("derive scalar: %w", err)
	}
	return new(edwards25519.Point).ScalarBaseMult(s).Bytes(), nil
}

// PublicKey returns the wallet address.
func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

// Address returns the base58 wallet address.
func (w *Wallet) Address() string { return w.pub.String() }

// ParsePrivateKey accepts a base58 key, a JSON byte array, or base64 of a JSON byte array.
func ParsePrivateKey(raw string) (solana.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty private key")
	}
	if strings.HasPrefix(raw, "[") {
		return parseByteArray([]byte(raw))
	}
	if b, err := base58.Decode(raw); err == nil && len(b) == keySize {
		return solana.PrivateKey(b), nil
	}
	if b, err := base64.StdEncoding.DecodeString(raw); err == nil {
		if bytes.HasPrefix(bytes.TrimSpace(b), []byte("[")) {
			return parseByteArray(b)
		}
		if len(b) == keySize {
			return solana.PrivateKey(b), nil
		}
	}
	return nil, errors.New("unrecognized private key encoding")
}

func parseByteArray(data []byte) (solana.PrivateKey, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("decode key array: %w", err)
	}
	if len(ints) != keySize {
		return nil, fmt.Errorf("key array must have %d entries, got %d", keySize, len(ints))
	}
	out := make(solana.PrivateKey, keySize)
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("key array entry %d out of byte range", i)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// LoadPrivateKeyFromEnv reads the key from the first populated variable.
// A .env file in the working directory is loaded first when present.
func LoadPrivateKeyFromEnv(names ...string) (solana.PrivateKey, error) {
	_ = godotenv.Load() // best-effort
	if len(names) == 0 {
		names = []string{EnvPrivateKey, EnvPrivateKeyBase58}
	}
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			key, err := ParsePrivateKey(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return key, nil
		}
	}
	return nil, fmt.Errorf("%s not set", strings.Join(names, " or "))
}

// LoadWallet loads and validates the wallet from the environment.
func LoadWallet(names ...string) (*Wallet, error) {
	key, err := LoadPrivateKeyFromEnv(names...)
	if err != nil {
		return nil, err
	}
	return NewWallet(key)
}
