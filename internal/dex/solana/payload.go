package solana

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/FinCodeAI/sol-tx/internal/execution"
)

// Payload encodings routing services use for unsigned transactions.
const (
	EncodingBase64 = "base64"
	EncodingBase58 = "base58"
)

// DecodePayload decodes a routing-service transaction string. An empty string
// means the router produced no transaction and is a plain error; every other
// failure wraps execution.ErrMalformedPayload.
func DecodePayload(encoding, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty transaction")
	}
	var (
		raw []byte
		err error
	)
	switch encoding {
	case "", EncodingBase64:
		raw, err = base64.StdEncoding.DecodeString(s)
	case EncodingBase58:
		raw, err = base58.Decode(s)
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", execution.ErrMalformedPayload, encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s decode: %v", execution.ErrMalformedPayload, encoding, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", execution.ErrMalformedPayload)
	}
	return raw, nil
}
