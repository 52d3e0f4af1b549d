package monitor

import (
	"context"
	"fmt"
)

// marketCodeTemplates is the ordered list of Quanto naming conventions tried
// for a base asset. Order matters: the first candidate with a usable book
// wins, so USD-margined contracts are preferred over USDT-margined ones.
var marketCodeTemplates = []string{
	"%s-USD-SWAP-LIN",
	"%s-USDT-SWAP-LIN",
	"%s-USD-SWAP",
	"%s-USDT-SWAP",
	"%s-USD",
	"%s-USDT",
}

// CandidateMarketCodes returns the Quanto market codes to probe for a base
// asset, in preference order.
func CandidateMarketCodes(baseAsset string) []string {
	codes := make([]string, len(marketCodeTemplates))
	for i, tmpl := range marketCodeTemplates {
		codes[i] = fmt.Sprintf(tmpl, baseAsset)
	}
	return codes
}

// mapSymbol resolves a base asset to the first Quanto market with a non-empty
// level-1 book and returns its mid price. Lookup failures are treated as
// "no such market" and the next candidate is tried; exhausting the list
// returns ok=false.
func (m *Monitor) mapSymbol(ctx context.Context, baseAsset string) (string, float64, bool) {
	for _, code := range CandidateMarketCodes(baseAsset) {
		book, err := m.depth.TopOfBook(ctx, code)
		if err != nil {
			m.logger.WithError(err).WithField("market", code).Debug("Candidate lookup failed")
			continue
		}
		return code, book.Mid(), true
	}
	return "", 0, false
}
