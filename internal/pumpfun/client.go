// Package pumpfun implements launch.Launcher against a pump.fun-style
// local trade API. Transaction building, signing, and confirmation happen
// behind the endpoint; this client only shapes requests and paces them.
package pumpfun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mintbot/internal/launch"
	"mintbot/internal/wallet"
	logx "mintbot/pkg/logx"
)

type Config struct {
	Endpoint string
	Network  string

	// RatePerSec caps outbound requests across all wallets. Default 2.
	RatePerSec int
	// Timeout per request. Default 30s.
	Timeout time.Duration
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 2
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}
}

type tradeRequest struct {
	Action    string  `json:"action"` // "create" | "sell"
	Network   string  `json:"network"`
	PublicKey string  `json:"public_key"`
	SecretKey string  `json:"secret_key"`
	Name      string  `json:"name,omitempty"`
	Symbol    string  `json:"symbol,omitempty"`
	URI       string  `json:"uri,omitempty"`
	Mint      string  `json:"mint,omitempty"`
	Amount    uint64  `json:"amount,omitempty"`
	Slippage  float64 `json:"slippage,omitempty"`
}

type tradeResponse struct {
	Mint      string `json:"mint,omitempty"`
	Amount    uint64 `json:"amount,omitempty"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (c *Client) CreateToken(ctx context.Context, w wallet.Wallet, meta launch.TokenMeta) (launch.CreateResult, error) {
	resp, err := c.trade(ctx, tradeRequest{
		Action:    "create",
		Network:   c.cfg.Network,
		PublicKey: w.Address,
		SecretKey: w.PrivateKey,
		Name:      meta.Name,
		Symbol:    meta.Symbol,
		URI:       meta.URI,
	})
	if err != nil {
		return launch.CreateResult{}, fmt.Errorf("create %s: %w", meta.Symbol, err)
	}
	if resp.Mint == "" {
		return launch.CreateResult{}, fmt.Errorf("create %s: trade API returned no mint", meta.Symbol)
	}
	c.log.Debug("token created",
		logx.String("mint", resp.Mint),
		logx.String("symbol", meta.Symbol),
		logx.String("wallet", w.Short()),
		logx.Uint64("amount", resp.Amount))
	return launch.CreateResult{Mint: resp.Mint, Amount: resp.Amount}, nil
}

func (c *Client) SellTokens(ctx context.Context, w wallet.Wallet, mint string, amount uint64) (string, error) {
	resp, err := c.trade(ctx, tradeRequest{
		Action:    "sell",
		Network:   c.cfg.Network,
		PublicKey: w.Address,
		SecretKey: w.PrivateKey,
		Mint:      mint,
		Amount:    amount,
	})
	if err != nil {
		return "", fmt.Errorf("sell %s: %w", mint, err)
	}
	if resp.Signature == "" {
		return "", fmt.Errorf("sell %s: trade API returned no signature", mint)
	}
	return resp.Signature, nil
}

func (c *Client) trade(ctx context.Context, tr tradeRequest) (*tradeResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(tr)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	// Error bodies are small; cap reads so a misbehaving endpoint cannot
	// balloon memory.
	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trade API %s: status %d: %s", tr.Action, res.StatusCode, snippet(raw))
	}

	var out tradeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("trade API %s: decode response: %w", tr.Action, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("trade API %s: %s", tr.Action, out.Error)
	}
	return &out, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
