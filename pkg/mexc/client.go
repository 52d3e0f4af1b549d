package mexc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gregtusar/spreadwatch/pkg/models"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://contract.mexc.com"

// Client fetches perpetual futures prices from the MEXC contract API.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a MEXC contract API client. Credentials are optional;
// public market data endpoints work unsigned.
func NewClient(apiKey, apiSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// MEXC allows 20 req/s per endpoint group on market data.
		limiter: rate.NewLimiter(rate.Limit(20), 20),
	}
}

type tickerResponse struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Data    tickerData `json:"data"`
}

type tickerData struct {
	Symbol    string      `json:"symbol"`
	LastPrice json.Number `json:"lastPrice"`
	Bid1      json.Number `json:"bid1"`
	Ask1      json.Number `json:"ask1"`
	Volume24  json.Number `json:"volume24"`
	Timestamp int64       `json:"timestamp"`
}

// LastPrice returns the last traded price for a pair, e.g. BTC/USDT.
// Unknown symbols and transient failures come back as errors; callers are
// expected to skip the pair rather than retry.
func (c *Client) LastPrice(ctx context.Context, pair models.TradingPair) (float64, error) {
	ticker, err := c.Ticker(ctx, pair)
	if err != nil {
		return 0, err
	}
	return ticker.LastPrice, nil
}

// Ticker returns the full contract ticker for a pair.
func (c *Client) Ticker(ctx context.Context, pair models.TradingPair) (*models.Ticker, error) {
	symbol := ContractSymbol(pair)
	path := "/api/v1/contract/ticker?symbol=" + symbol

	var resp tickerResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("mexc ticker %s: code %d", symbol, resp.Code)
	}

	last, err := parsePrice(resp.Data.LastPrice)
	if err != nil {
		return nil, fmt.Errorf("mexc ticker %s: %w", symbol, err)
	}
	bid, _ := parsePrice(resp.Data.Bid1)
	ask, _ := parsePrice(resp.Data.Ask1)
	vol, _ := parsePrice(resp.Data.Volume24)

	return &models.Ticker{
		Symbol:    resp.Data.Symbol,
		BidPrice:  bid,
		AskPrice:  ask,
		LastPrice: last,
		Volume24h: vol,
		Timestamp: time.UnixMilli(resp.Data.Timestamp),
	}, nil
}

type detailResponse struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Data    []struct {
		Symbol        string `json:"symbol"`
		QuoteCoin     string `json:"quoteCoin"`
		BaseCoin      string `json:"baseCoin"`
		State         int    `json:"state"`
		FuturesType   int    `json:"futureType"`
		DisplayNameEn string `json:"displayNameEn"`
	} `json:"data"`
}

// ContractPairs lists the tradable USDT-margined perpetual contracts as
// trading pairs, used to auto-discover a watch list when none is configured.
func (c *Client) ContractPairs(ctx context.Context) ([]models.TradingPair, error) {
	var resp detailResponse
	if err := c.get(ctx, "/api/v1/contract/detail", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("mexc contract detail: code %d", resp.Code)
	}

	pairs := make([]models.TradingPair, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.QuoteCoin != "USDT" || d.State != 0 {
			continue
		}
		pair, err := models.ParseTradingPair(d.BaseCoin + "/" + d.QuoteCoin)
		if err != nil {
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		c.signRequest(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mexc: unexpected status %d for %s", resp.StatusCode, path)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(out)
}

// signRequest attaches the MEXC access headers: the signature is
// HMAC-SHA256(accessKey + timestamp + query) hex-encoded.
func (c *Client) signRequest(req *http.Request) {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
	message := c.apiKey + timestamp + req.URL.RawQuery

	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(message))

	req.Header.Set("ApiKey", c.apiKey)
	req.Header.Set("Request-Time", timestamp)
	req.Header.Set("Signature", hex.EncodeToString(h.Sum(nil)))
}

// ContractSymbol converts "BTC/USDT" to MEXC's "BTC_USDT" contract notation.
func ContractSymbol(pair models.TradingPair) string {
	return strings.ReplaceAll(string(pair), "/", "_")
}

func parsePrice(n json.Number) (float64, error) {
	if n == "" {
		return 0, fmt.Errorf("empty price field")
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, fmt.Errorf("bad price %q: %w", n, err)
	}
	f, _ := d.Float64()
	return f, nil
}
