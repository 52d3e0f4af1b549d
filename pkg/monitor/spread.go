package monitor

import (
	"math"
	"sync"

	"github.com/gregtusar/spreadwatch/pkg/models"
)

// ComputeSpread returns the signed percentage spread of the Quanto price
// relative to the MEXC price. The MEXC price is always the denominator, so a
// positive result means Quanto trades at a premium. The caller guarantees
// mexcPrice is non-zero.
func ComputeSpread(mexcPrice, quantoPrice float64) float64 {
	return (quantoPrice - mexcPrice) / mexcPrice * 100
}

// alertState holds the last spread used for the alert comparison, per pair.
type alertState struct {
	mu   sync.Mutex
	last map[models.TradingPair]float64
}

func newAlertState() *alertState {
	return &alertState{last: make(map[models.TradingPair]float64)}
}

// observe applies the alert gate: fire only when the magnitude crosses the
// threshold and exceeds the previously stored magnitude. The stored value is
// replaced by the new spread either way.
func (s *alertState) observe(pair models.TradingPair, spread, threshold float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.last[pair]
	s.last[pair] = spread
	return math.Abs(spread) >= threshold && math.Abs(spread) > math.Abs(prev)
}

func (s *alertState) forget(pair models.TradingPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, pair)
}
