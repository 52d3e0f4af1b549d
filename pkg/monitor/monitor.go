package monitor

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gregtusar/spreadwatch/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PriceSource provides venue-A last prices.
type PriceSource interface {
	LastPrice(ctx context.Context, pair models.TradingPair) (float64, error)
}

// DepthSource provides venue-B level-1 depth.
type DepthSource interface {
	TopOfBook(ctx context.Context, marketCode string) (*models.TopOfBook, error)
}

// Notifier delivers best-effort alert messages. Failures are the notifier's
// problem; they never reach the polling loop.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// PairRegistry is the mutable watch list shared with the admin API. The
// monitor re-reads it every cycle, so operator changes apply without restart.
type PairRegistry interface {
	List() []models.TradingPair
	Add(pair models.TradingPair) error
}

// Discoverer enumerates tradable pairs on venue A, used to seed an empty
// registry at startup.
type Discoverer interface {
	ContractPairs(ctx context.Context) ([]models.TradingPair, error)
}

// Config tunes the polling loop.
type Config struct {
	PollInterval    time.Duration
	Concurrency     int
	SpreadThreshold float64
	DiscoveryLimit  int
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if c.SpreadThreshold <= 0 {
		c.SpreadThreshold = 1.0
	}
	if c.DiscoveryLimit <= 0 {
		c.DiscoveryLimit = 50
	}
}

// Monitor polls both venues for every registered pair and maintains the
// spread snapshot table.
type Monitor struct {
	cfg      Config
	prices   PriceSource
	depth    DepthSource
	notifier Notifier
	pairs    PairRegistry
	store    *Store
	alerts   *alertState
	logger   *logrus.Logger
	stopCh   chan struct{}
}

func New(cfg Config, prices PriceSource, depth DepthSource, pairs PairRegistry, notifier Notifier, logger *logrus.Logger) *Monitor {
	cfg.applyDefaults()

	return &Monitor{
		cfg:      cfg,
		prices:   prices,
		depth:    depth,
		notifier: notifier,
		pairs:    pairs,
		store:    NewStore(),
		alerts:   newAlertState(),
		logger:   logger,
	}
}

// Store exposes the snapshot table to readers.
func (m *Monitor) Store() *Store {
	return m.store
}

// Threshold returns the configured alert threshold.
func (m *Monitor) Threshold() float64 {
	return m.cfg.SpreadThreshold
}

// Forget drops all state for a pair, typically after an operator removes it.
func (m *Monitor) Forget(pair models.TradingPair) {
	m.store.Delete(pair)
	m.alerts.forget(pair)
}

// Start launches the polling loop. Discovery runs first when the registry is
// empty; its failure degrades to an empty watch list.
func (m *Monitor) Start(ctx context.Context, discoverer Discoverer) error {
	m.stopCh = make(chan struct{})

	if len(m.pairs.List()) == 0 && discoverer != nil {
		m.discoverPairs(ctx, discoverer)
	}

	watched := len(m.pairs.List())
	m.logger.WithField("pairs", watched).Info("Starting spread monitor")
	m.notifier.Notify(ctx, fmt.Sprintf("Spread monitor started.\nWatching %d pairs on MEXC.", watched))

	go m.run(ctx)
	return nil
}

// Stop signals the polling loop to exit after the in-flight cycle drains.
func (m *Monitor) Stop() {
	m.logger.Info("Stopping spread monitor")
	close(m.stopCh)
}

func (m *Monitor) discoverPairs(ctx context.Context, discoverer Discoverer) {
	pairs, err := discoverer.ContractPairs(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("Pair auto-discovery failed")
		return
	}
	if len(pairs) > m.cfg.DiscoveryLimit {
		pairs = pairs[:m.cfg.DiscoveryLimit]
	}
	for _, pair := range pairs {
		if err := m.pairs.Add(pair); err != nil {
			m.logger.WithError(err).WithField("pair", pair).Debug("Skipping discovered pair")
		}
	}
	m.logger.WithField("pairs", len(pairs)).Info("Auto-discovered watch list")
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	m.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// runCycle processes every registered pair through a bounded worker pool and
// waits for the pool to drain before returning. A panic anywhere in the cycle
// is contained here; the next tick proceeds normally.
func (m *Monitor) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithField("panic", r).Errorf("Cycle panicked:\n%s", debug.Stack())
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(m.cfg.Concurrency)

	for _, pair := range m.pairs.List() {
		pair := pair
		g.Go(func() error {
			m.processPair(ctx, pair)
			return nil
		})
	}
	g.Wait()
}

// processPair is the per-pair unit of work: venue-A price, symbol mapping,
// spread, snapshot, alert gate. Any failure skips the pair for this cycle
// without touching its alert state.
func (m *Monitor) processPair(ctx context.Context, pair models.TradingPair) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithFields(logrus.Fields{"pair": pair, "panic": r}).Error("Pair worker panicked")
		}
	}()

	log := m.logger.WithField("pair", pair)

	mexcPrice, err := m.prices.LastPrice(ctx, pair)
	if err != nil {
		log.WithError(err).Debug("MEXC price unavailable")
		return
	}
	if mexcPrice <= 0 {
		return
	}

	marketCode, quantoPrice, ok := m.mapSymbol(ctx, pair.Base())
	if !ok {
		log.Debug("No Quanto market matched")
		return
	}

	spread := ComputeSpread(mexcPrice, quantoPrice)
	m.store.Put(models.SpreadSnapshot{
		Pair:          pair,
		MEXCPrice:     mexcPrice,
		QuantoPrice:   quantoPrice,
		QuantoMarket:  marketCode,
		SpreadPercent: spread,
		Timestamp:     time.Now().UTC(),
	})

	if m.alerts.observe(pair, spread, m.cfg.SpreadThreshold) {
		alert := models.NewAlert(pair, spread, m.cfg.SpreadThreshold)
		log.WithFields(logrus.Fields{
			"alert_id":  alert.ID,
			"spread":    fmt.Sprintf("%.2f", spread),
			"direction": alert.Direction,
			"market":    marketCode,
		}).Info("Spread alert")
		m.notifier.Notify(ctx, alert.Message())
	}
}
