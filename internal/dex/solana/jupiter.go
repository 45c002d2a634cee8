package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/FinCodeAI/sol-tx/internal/execution"
)

// JupiterRouter builds swaps through the Jupiter v6 quote and swap API.
type JupiterRouter struct {
	http *resty.Client
}

// Quote is the subset of a Jupiter quote the router inspects. The full body
// is posted back to /v6/swap untouched.
type Quote struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	OtherAmount    string `json:"otherAmountThreshold"`
	SlippageBps    int    `json:"slippageBps"`
	PriceImpactPct string `json:"priceImpactPct"`
}

type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// NewJupiterRouter builds a router against base.
func NewJupiterRouter(base string, timeout time.Duration) *JupiterRouter {
	return &JupiterRouter{http: resty.New().SetBaseURL(base).SetTimeout(timeout)}
}

// GetQuote fetches a quote; amount is in smallest units of inputMint.
func (j *JupiterRouter) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*Quote, json.RawMessage, error) {
	resp, err := j.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":        inputMint,
			"outputMint":       outputMint,
			"amount":           strconv.FormatUint(amount, 10),
			"slippageBps":      strconv.Itoa(slippageBps),
			"onlyDirectRoutes": "false",
		}).
		Get("/v6/quote")
	if err != nil {
		return nil, nil, fmt.Errorf("jupiter quote: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, nil, fmt.Errorf("jupiter quote status %d: %s", resp.StatusCode(), resp.String())
	}
	var q Quote
	if err := json.Unmarshal(resp.Body(), &q); err != nil {
		return nil, nil, fmt.Errorf("decode quote: %w", err)
	}
	if q.OutAmount == "" {
		return nil, nil, fmt.Errorf("jupiter quote has no outAmount")
	}
	return &q, json.RawMessage(resp.Body()), nil
}

// Route requests a quote and the matching unsigned swap transaction.
func (j *JupiterRouter) Route(ctx context.Context, req execution.RouteRequest) (*execution.Route, error) {
	quote, raw, err := j.GetQuote(ctx, req.InputAsset, req.OutputAsset, req.Amount, req.SlippageBps)
	if err != nil {
		return nil, err
	}
	resp, err := j.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"userPublicKey":             req.Wallet,
			"wrapAndUnwrapSol":          true,
			"asLegacyTransaction":       false,
			"useTokenLedger":            false,
			"prioritizationFeeLamports": 0,
			"quoteResponse":             raw,
		}).
		Post("/v6/swap")
	if err != nil {
		return nil, fmt.Errorf("jupiter swap: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("jupiter swap status %d: %s", resp.StatusCode(), resp.String())
	}
	var sr swapResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("%w: decode swap response: %v", execution.ErrMalformedPayload, err)
	}
	if strings.TrimSpace(sr.SwapTransaction) == "" {
		return nil, errors.New("jupiter swap has no transaction")
	}
	payload, err := DecodePayload(EncodingBase64, sr.SwapTransaction)
	if err != nil {
		return nil, err
	}
	return &execution.Route{
		Payload:              payload,
		ExpectedOut:          quote.OutAmount,
		LastValidBlockHeight: sr.LastValidBlockHeight,
	}, nil
}
