package models

import (
	"time"
)

// Ticker is a venue-A market snapshot.
type Ticker struct {
	Symbol    string
	BidPrice  float64
	AskPrice  float64
	LastPrice float64
	Volume24h float64
	Timestamp time.Time
}

// TopOfBook is a level-1 order book view from venue B.
type TopOfBook struct {
	MarketCode string
	BestBid    float64
	BestAsk    float64
	Timestamp  time.Time
}

// Mid returns the arithmetic mean of the best bid and ask.
func (t *TopOfBook) Mid() float64 {
	return (t.BestBid + t.BestAsk) / 2
}
