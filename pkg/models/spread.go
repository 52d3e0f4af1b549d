package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SpreadSnapshot is the latest observation for one pair. The polling loop
// overwrites it in place each cycle; readers receive copies.
type SpreadSnapshot struct {
	Pair          TradingPair `json:"pair"`
	MEXCPrice     float64     `json:"mexc_price"`
	QuantoPrice   float64     `json:"quanto_price"`
	QuantoMarket  string      `json:"quanto_market"`
	SpreadPercent float64     `json:"spread_percent"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Direction is the profitable trade direction implied by the spread sign.
type Direction string

const (
	// DirectionMEXCToQuanto means venue B trades at a premium: buy on MEXC, sell on Quanto.
	DirectionMEXCToQuanto Direction = "mexc_to_quanto"

	// DirectionQuantoToMEXC means venue B trades at a discount: buy on Quanto, sell on MEXC.
	DirectionQuantoToMEXC Direction = "quanto_to_mexc"
)

func (d Direction) String() string {
	switch d {
	case DirectionMEXCToQuanto:
		return "Buy on MEXC / Sell on Quanto"
	case DirectionQuantoToMEXC:
		return "Buy on Quanto / Sell on MEXC"
	default:
		return "unknown"
	}
}

// DirectionFromSpread maps the spread sign to a trade direction. A positive
// spread means the Quanto price sits above the MEXC price.
func DirectionFromSpread(spreadPercent float64) Direction {
	if spreadPercent > 0 {
		return DirectionMEXCToQuanto
	}
	return DirectionQuantoToMEXC
}

// Alert is an emitted threshold-crossing event.
type Alert struct {
	ID            string      `json:"id"`
	Pair          TradingPair `json:"pair"`
	SpreadPercent float64     `json:"spread_percent"`
	Threshold     float64     `json:"threshold"`
	Direction     Direction   `json:"direction"`
	Timestamp     time.Time   `json:"timestamp"`
}

// NewAlert builds an alert for a spread observation.
func NewAlert(pair TradingPair, spreadPercent, threshold float64) Alert {
	return Alert{
		ID:            uuid.NewString(),
		Pair:          pair,
		SpreadPercent: spreadPercent,
		Threshold:     threshold,
		Direction:     DirectionFromSpread(spreadPercent),
		Timestamp:     time.Now().UTC(),
	}
}

// Message renders the notification text, spread formatted to two decimals.
func (a Alert) Message() string {
	return fmt.Sprintf("%s\nSpread: %.2f%%\n%s", a.Pair, a.SpreadPercent, a.Direction)
}
