// Package gmgn talks to the gmgn.ai Solana swap router and its transaction relay.
package gmgn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/FinCodeAI/sol-tx/internal/dex/solana"
	"github.com/FinCodeAI/sol-tx/internal/execution"
)

// DefaultBaseURL is the public gmgn endpoint.
const DefaultBaseURL = "https://gmgn.ai"

const (
	routePath = "/defi/router/v1/sol/tx/get_swap_route"
	sendPath  = "/txproxy/v1/send_transaction"
)

// Options configure a Client.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Fee      float64
	AntiMEV  bool
	Encoding string // payload encoding, base64 unless set
}

// Client requests swap routes and relays signed transactions.
type Client struct {
	http     *resty.Client
	fee      string
	antiMEV  bool
	encoding string
}

// NewClient builds a gmgn client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Encoding == "" {
		opts.Encoding = solana.EncodingBase64
	}
	return &Client{
		http: resty.New().
			SetBaseURL(opts.BaseURL).
			SetTimeout(opts.Timeout).
			SetHeader("Accept", "application/json"),
		fee:      strconv.FormatFloat(opts.Fee, 'f', -1, 64),
		antiMEV:  opts.AntiMEV,
		encoding: opts.Encoding,
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type routeData struct {
	Quote struct {
		InAmount  string `json:"inAmount"`
		OutAmount string `json:"outAmount"`
	} `json:"quote"`
	RawTx struct {
		SwapTransaction      string `json:"swapTransaction"`
		LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	} `json:"raw_tx"`
}

// Route asks gmgn for an unsigned swap transaction. gmgn takes slippage as a
// percentage.
func (c *Client) Route(ctx context.Context, req execution.RouteRequest) (*execution.Route, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"token_in_address":  req.InputAsset,
			"token_out_address": req.OutputAsset,
			"in_amount":         strconv.FormatUint(req.Amount, 10),
			"from_address":      req.Wallet,
			"slippage":          decimal.New(int64(req.SlippageBps), -2).String(),
			"fee":               c.fee,
			"is_anti_mev":       strconv.FormatBool(c.antiMEV),
		}).
		Get(routePath)
	if err != nil {
		return nil, fmt.Errorf("gmgn route: %w", err)
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, errors.New("gmgn route has no swap transaction")
	}
	var data routeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("gmgn route data: %w", err)
	}
	if data.RawTx.SwapTransaction == "" {
		return nil, errors.New("gmgn route has no swap transaction")
	}
	payload, err := solana.DecodePayload(c.encoding, data.RawTx.SwapTransaction)
	if err != nil {
		return nil, err
	}
	return &execution.Route{
		Payload:              payload,
		ExpectedOut:          data.Quote.OutAmount,
		LastValidBlockHeight: data.RawTx.LastValidBlockHeight,
	}, nil
}

// decodeEnvelope unwraps gmgn's {code,msg,data} response. Non-zero codes and
// HTTP failures are route errors, not payload errors.
func decodeEnvelope(resp *resty.Response) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("gmgn status %d: %s", resp.StatusCode(), resp.String())
		}
		return nil, fmt.Errorf("decode gmgn response: %w", err)
	}
	if !resp.IsSuccess() || env.Code != 0 {
		msg := env.Msg
		if msg == "" {
			msg = resp.Status()
		}
		return nil, fmt.Errorf("gmgn code %d: %s", env.Code, msg)
	}
	return &env, nil
}
