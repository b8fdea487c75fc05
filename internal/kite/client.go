package kite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tv-kite-bridge/internal/config"

	"go.uber.org/zap"
)

const (
	apiVersion = "3"

	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
	VarietyRegular  = "regular"
	OrderTypeMarket = "MARKET"
)

// Client is a thin wrapper around the Kite Connect HTTP API. Every call is
// treated as fallible; callers decide how failures degrade.
type Client struct {
	baseURL string
	apiKey  string
	tokens  TokenSource
	http    *http.Client
	log     *zap.Logger
}

func New(cfg config.KiteConfig, log *zap.Logger) *Client {
	var tokens TokenSource
	if cfg.AccessToken != "" {
		tokens = StaticTokenSource(cfg.AccessToken)
	} else {
		tokens = NewFileTokenSource(cfg.TokenPath)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		tokens:  tokens,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// Ready reports whether an authenticated request can be attempted. An
// unusable client in live mode is the one failure escalated to the caller.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return errors.New("kite api key is not configured")
	}
	if _, err := c.tokens.AccessToken(); err != nil {
		return fmt.Errorf("kite access token unavailable: %w", err)
	}
	return nil
}

// Position is one net holding as reported by the brokerage. Quantity is
// signed: positive long, negative short.
type Position struct {
	TradingSymbol string `json:"tradingsymbol"`
	Exchange      string `json:"exchange"`
	Product       string `json:"product"`
	Quantity      int    `json:"quantity"`
}

type positionsEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		Net []Position `json:"net"`
	} `json:"data"`
	Message string `json:"message"`
}

// NetPositions fetches the net position snapshot.
func (c *Client) NetPositions(ctx context.Context) ([]Position, error) {
	body, err := c.do(ctx, http.MethodGet, "/portfolio/positions", nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	var env positionsEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return nil, err
	}
	if env.Status != "success" {
		return nil, fmt.Errorf("positions query failed: %s", env.Message)
	}
	return env.Data.Net, nil
}

// OrderParams describes a regular order submission.
type OrderParams struct {
	Exchange        string
	TradingSymbol   string
	TransactionType string
	Quantity        int
	Product         string
	OrderType       string
}

type orderEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		OrderID string `json:"order_id"`
	} `json:"data"`
	Message string `json:"message"`
}

// PlaceOrder submits a regular order and returns the broker order id.
func (c *Client) PlaceOrder(ctx context.Context, params OrderParams) (string, error) {
	form := url.Values{}
	form.Set("exchange", params.Exchange)
	form.Set("tradingsymbol", params.TradingSymbol)
	form.Set("transaction_type", params.TransactionType)
	form.Set("quantity", strconv.Itoa(params.Quantity))
	form.Set("product", params.Product)
	form.Set("order_type", params.OrderType)
	body, err := c.do(ctx, http.MethodPost, "/orders/"+VarietyRegular, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	defer body.Close()
	var env orderEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return "", err
	}
	if env.Status != "success" || env.Data.OrderID == "" {
		return "", fmt.Errorf("order rejected: %s", env.Message)
	}
	return env.Data.OrderID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload io.Reader) (io.ReadCloser, error) {
	token, err := c.tokens.AccessToken()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Kite-Version", apiVersion)
	req.Header.Set("Authorization", "token "+c.apiKey+":"+token)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
