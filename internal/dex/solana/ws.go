package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gorilla/websocket"

	"github.com/FinCodeAI/sol-tx/internal/execution"
)

// WSConfirmer waits for a signatureNotification over the node's websocket.
// Each Confirm opens its own connection.
type WSConfirmer struct {
	url    string
	target rpc.CommitmentType
	dialer *websocket.Dialer
	nextID atomic.Uint64
}

// NewWSConfirmer builds a websocket confirmer.
func NewWSConfirmer(url string, target rpc.CommitmentType) *WSConfirmer {
	return &WSConfirmer{url: url, target: target, dialer: websocket.DefaultDialer}
}

type wsRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type wsMessage struct {
	ID     *uint64          `json:"id"`
	Method string           `json:"method"`
	Result json.RawMessage  `json:"result"`
	Error  *json.RawMessage `json:"error"`
	Params struct {
		Result struct {
			Value struct {
				Err any `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// Confirm subscribes to the signature and blocks until notified or ctx ends.
func (w *WSConfirmer) Confirm(ctx context.Context, signature string) (execution.Confirmation, error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return execution.Confirmation{}, fmt.Errorf("dial %s: %w", w.url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	id := w.nextID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "signatureSubscribe",
		Params:  []any{signature, map[string]string{"commitment": string(w.target)}},
	}
	if err := conn.WriteJSON(req); err != nil {
		return execution.Confirmation{}, fmt.Errorf("subscribe: %w", err)
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return execution.Confirmation{}, ctx.Err()
			}
			return execution.Confirmation{}, fmt.Errorf("read: %w", err)
		}
		if msg.ID != nil && *msg.ID == id && msg.Error != nil {
			return execution.Confirmation{}, errors.New("signatureSubscribe rejected: " + string(*msg.Error))
		}
		if msg.Method != "signatureNotification" {
			continue
		}
		if e := msg.Params.Result.Value.Err; e != nil {
			return execution.Confirmation{Status: execution.ConfirmationFailed, Err: fmt.Sprint(e)}, nil
		}
		return execution.Confirmation{Status: string(w.target)}, nil
	}
}
