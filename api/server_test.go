package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gregtusar/spreadwatch/pkg/models"
	"github.com/gregtusar/spreadwatch/pkg/monitor"
	"github.com/gregtusar/spreadwatch/pkg/registry"
	"github.com/sirupsen/logrus"
)

type stubPrices struct{}

func (stubPrices) LastPrice(ctx context.Context, pair models.TradingPair) (float64, error) {
	return 0, fmt.Errorf("not wired in tests")
}

type stubDepth struct{}

func (stubDepth) TopOfBook(ctx context.Context, marketCode string) (*models.TopOfBook, error) {
	return nil, fmt.Errorf("not wired in tests")
}

type stubNotifier struct{}

func (stubNotifier) Notify(ctx context.Context, text string) {}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	reg, err := registry.Load(filepath.Join(t.TempDir(), "pairs.json"), []string{"BTC/USDT"}, logger)
	if err != nil {
		t.Fatal(err)
	}

	mon := monitor.New(monitor.Config{SpreadThreshold: 1.0}, stubPrices{}, stubDepth{}, reg, stubNotifier{}, logger)
	mon.Store().Put(models.SpreadSnapshot{
		Pair:          "BTC/USDT",
		MEXCPrice:     50000,
		QuantoPrice:   50500,
		QuantoMarket:  "BTC-USDT-SWAP",
		SpreadPercent: 1.0,
		Timestamp:     time.Now().UTC(),
	})

	return NewServer(mon, reg, logger, "0", time.Second)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("status field = %v", body["status"])
	}
}

func TestHandleSpreads(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleSpreads(rec, httptest.NewRequest(http.MethodGet, "/api/spreads", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		SpreadThreshold float64                 `json:"spread_threshold"`
		Spreads         []models.SpreadSnapshot `json:"spreads"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.SpreadThreshold != 1.0 {
		t.Errorf("threshold = %v", body.SpreadThreshold)
	}
	if len(body.Spreads) != 1 || body.Spreads[0].Pair != "BTC/USDT" {
		t.Fatalf("spreads = %+v", body.Spreads)
	}
	if body.Spreads[0].SpreadPercent != 1.0 {
		t.Errorf("spread = %v", body.Spreads[0].SpreadPercent)
	}
}

func TestHandleSpreadsRejectsPost(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleSpreads(rec, httptest.NewRequest(http.MethodPost, "/api/spreads", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHandlePairsLifecycle(t *testing.T) {
	s := newTestServer(t)

	// Add
	rec := httptest.NewRecorder()
	s.handlePairs(rec, httptest.NewRequest(http.MethodPost, "/api/pairs", strings.NewReader(`{"pair":"sol/usdt"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Duplicate add conflicts
	rec = httptest.NewRecorder()
	s.handlePairs(rec, httptest.NewRequest(http.MethodPost, "/api/pairs", strings.NewReader(`{"pair":"SOL/USDT"}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate add status = %d", rec.Code)
	}

	// List
	rec = httptest.NewRecorder()
	s.handlePairs(rec, httptest.NewRequest(http.MethodGet, "/api/pairs", nil))
	var pairs []models.TradingPair
	if err := json.Unmarshal(rec.Body.Bytes(), &pairs); err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %v", pairs)
	}

	// Remove
	rec = httptest.NewRecorder()
	s.handlePairs(rec, httptest.NewRequest(http.MethodDelete, "/api/pairs", strings.NewReader(`{"pair":"BTC/USDT"}`)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d", rec.Code)
	}

	// Removing a pair drops its snapshot.
	if _, ok := s.monitor.Store().Get("BTC/USDT"); ok {
		t.Error("snapshot survived pair removal")
	}

	// Removing again is a 404.
	rec = httptest.NewRecorder()
	s.handlePairs(rec, httptest.NewRequest(http.MethodDelete, "/api/pairs", strings.NewReader(`{"pair":"BTC/USDT"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second remove status = %d", rec.Code)
	}
}

func TestHandlePairsRejectsInvalid(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handlePairs(rec, httptest.NewRequest(http.MethodPost, "/api/pairs", strings.NewReader(`{"pair":"BTCUSDT"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDashboard(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard?msg=hello", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"BTC/USDT", "BTC-USDT-SWAP", "1.00", "hello"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestHandleAddPairFormRedirects(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/addpair", strings.NewReader("pair=ETH%2FUSDT"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handleAddPairForm(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/dashboard?msg=") {
		t.Fatalf("location = %s", loc)
	}

	found := false
	for _, p := range s.registry.List() {
		if p == "ETH/USDT" {
			found = true
		}
	}
	if !found {
		t.Fatal("form add did not register the pair")
	}
}
