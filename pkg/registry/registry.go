package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gregtusar/spreadwatch/pkg/models"
	"github.com/sirupsen/logrus"
)

// Registry is the persisted pair watch list. Mutations write through to a
// JSON file so the list survives restarts; the polling loop re-reads it every
// cycle, so changes apply without restart.
type Registry struct {
	mu     sync.RWMutex
	path   string
	pairs  []models.TradingPair
	logger *logrus.Logger
}

type fileFormat struct {
	Pairs []models.TradingPair `json:"pairs"`
}

// Load opens the registry file, seeding it from the configured pair list when
// it does not exist yet.
func Load(path string, seed []string, logger *logrus.Logger) (*Registry, error) {
	r := &Registry{path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var f fileFormat
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing pair registry %s: %w", path, err)
		}
		r.pairs = f.Pairs

	case os.IsNotExist(err):
		for _, s := range seed {
			pair, perr := models.ParseTradingPair(s)
			if perr != nil {
				logger.WithError(perr).Warn("Skipping configured pair")
				continue
			}
			r.pairs = append(r.pairs, pair)
		}
		if err := r.save(); err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"path": path, "pairs": len(r.pairs)}).Info("Created pair registry")

	default:
		return nil, fmt.Errorf("reading pair registry %s: %w", path, err)
	}

	return r, nil
}

// List returns a copy of the watch list.
func (r *Registry) List() []models.TradingPair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.TradingPair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// Add appends a pair and persists. Duplicates are rejected.
func (r *Registry) Add(pair models.TradingPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.pairs {
		if p == pair {
			return fmt.Errorf("pair %s already registered", pair)
		}
	}
	r.pairs = append(r.pairs, pair)
	return r.save()
}

// Remove deletes a pair and persists.
func (r *Registry) Remove(pair models.TradingPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.pairs {
		if p == pair {
			r.pairs = append(r.pairs[:i], r.pairs[i+1:]...)
			return r.save()
		}
	}
	return fmt.Errorf("pair %s not found", pair)
}

// save writes the registry file. Callers hold the lock.
func (r *Registry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}
	data, err := json.MarshalIndent(fileFormat{Pairs: r.pairs}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("writing pair registry %s: %w", r.path, err)
	}
	return nil
}
