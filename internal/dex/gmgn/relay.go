package gmgn

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

type sendRequest struct {
	Chain     string `json:"chain"`
	SignedTx  string `json:"signedTx"`
	IsAntiMev bool   `json:"isAntiMev"`
}

type sendData struct {
	Hash string `json:"hash"`
}

// Relay submits signed transactions through gmgn's transaction proxy.
type Relay struct {
	c *Client
}

// Relay returns a broadcaster sharing the client's HTTP settings.
func (c *Client) Relay() *Relay { return &Relay{c: c} }

// Submit posts the signed transaction and returns the hash gmgn reports.
func (r *Relay) Submit(ctx context.Context, signed []byte) (string, error) {
	resp, err := r.c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendRequest{
			Chain:     "sol",
			SignedTx:  base64.StdEncoding.EncodeToString(signed),
			IsAntiMev: r.c.antiMEV,
		}).
		Post(sendPath)
	if err != nil {
		return "", fmt.Errorf("gmgn send: %w", err)
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return "", err
	}
	var data sendData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return "", fmt.Errorf("decode send data: %w", err)
		}
	}
	if data.Hash == "" {
		return "", errors.New("transaction failed to broadcast: relay returned no hash")
	}
	return data.Hash, nil
}
