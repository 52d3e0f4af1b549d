package models

import (
	"strings"
	"testing"
)

func TestParseTradingPair(t *testing.T) {
	cases := []struct {
		in      string
		want    TradingPair
		wantErr bool
	}{
		{"BTC/USDT", "BTC/USDT", false},
		{" eth/usdt ", "ETH/USDT", false},
		{"BTCUSDT", "", true},
		{"/USDT", "", true},
		{"BTC/", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseTradingPair(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTradingPair(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTradingPair(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTradingPair(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTradingPairParts(t *testing.T) {
	pair := TradingPair("BTC/USDT")
	if pair.Base() != "BTC" {
		t.Errorf("Base() = %s", pair.Base())
	}
	if pair.Quote() != "USDT" {
		t.Errorf("Quote() = %s", pair.Quote())
	}
}

func TestDirectionFromSpread(t *testing.T) {
	if DirectionFromSpread(1.5) != DirectionMEXCToQuanto {
		t.Error("positive spread should be MEXC->Quanto")
	}
	if DirectionFromSpread(-1.5) != DirectionQuantoToMEXC {
		t.Error("negative spread should be Quanto->MEXC")
	}
}

func TestAlertMessage(t *testing.T) {
	alert := NewAlert("BTC/USDT", 1.0, 1.0)
	msg := alert.Message()

	if !strings.Contains(msg, "BTC/USDT") {
		t.Errorf("message %q missing pair", msg)
	}
	if !strings.Contains(msg, "Spread: 1.00%") {
		t.Errorf("message %q missing two-decimal spread", msg)
	}
	if !strings.Contains(msg, "Buy on MEXC / Sell on Quanto") {
		t.Errorf("message %q missing direction", msg)
	}
	if alert.ID == "" {
		t.Error("alert has no ID")
	}

	negative := NewAlert("ETH/USDT", -2.5, 1.0)
	if !strings.Contains(negative.Message(), "Spread: -2.50%") {
		t.Errorf("message %q misformats negative spread", negative.Message())
	}
	if !strings.Contains(negative.Message(), "Buy on Quanto / Sell on MEXC") {
		t.Errorf("message %q missing reverse direction", negative.Message())
	}
}

func TestTopOfBookMid(t *testing.T) {
	book := TopOfBook{BestBid: 50400, BestAsk: 50600}
	if book.Mid() != 50500 {
		t.Fatalf("Mid() = %v, want 50500", book.Mid())
	}
}
