package quanto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gregtusar/spreadwatch/pkg/models"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.quanto.trade"

// Client reads order book depth from the Quanto public REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a Quanto depth client. timeout bounds each depth call;
// zero selects the 8 second default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(20), 20),
	}
}

// depthResponse mirrors /v3/depth. Levels arrive as [price, size] arrays of
// JSON strings or numbers depending on the market, hence json.Number.
type depthResponse struct {
	Success bool      `json:"success"`
	Data    depthData `json:"data"`
}

type depthData struct {
	MarketCode string          `json:"marketCode"`
	Bids       [][]json.Number `json:"bids"`
	Asks       [][]json.Number `json:"asks"`
}

// TopOfBook fetches level-1 depth for a market code. A response without the
// success flag, or with an empty side, is an error; callers treat any error
// as "no such market" and move on.
func (c *Client) TopOfBook(ctx context.Context, marketCode string) (*models.TopOfBook, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v3/depth?marketCode=%s&level=1", c.baseURL, url.QueryEscape(marketCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quanto depth %s: unexpected status %d", marketCode, resp.StatusCode)
	}

	var depth depthResponse
	if err := json.NewDecoder(resp.Body).Decode(&depth); err != nil {
		return nil, fmt.Errorf("quanto depth %s: %w", marketCode, err)
	}
	if !depth.Success {
		return nil, fmt.Errorf("quanto depth %s: success=false", marketCode)
	}
	if len(depth.Data.Bids) == 0 || len(depth.Data.Asks) == 0 {
		return nil, fmt.Errorf("quanto depth %s: empty book side", marketCode)
	}

	bid, err := levelPrice(depth.Data.Bids[0])
	if err != nil {
		return nil, fmt.Errorf("quanto depth %s: bid: %w", marketCode, err)
	}
	ask, err := levelPrice(depth.Data.Asks[0])
	if err != nil {
		return nil, fmt.Errorf("quanto depth %s: ask: %w", marketCode, err)
	}

	return &models.TopOfBook{
		MarketCode: marketCode,
		BestBid:    bid,
		BestAsk:    ask,
		Timestamp:  time.Now().UTC(),
	}, nil
}

func levelPrice(level []json.Number) (float64, error) {
	if len(level) == 0 {
		return 0, fmt.Errorf("empty level")
	}
	d, err := decimal.NewFromString(level[0].String())
	if err != nil {
		return 0, fmt.Errorf("bad price %q: %w", level[0], err)
	}
	f, _ := d.Float64()
	return f, nil
}
