package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gregtusar/spreadwatch/pkg/models"
	"github.com/gregtusar/spreadwatch/pkg/monitor"
	"github.com/gregtusar/spreadwatch/pkg/registry"
	"github.com/sirupsen/logrus"
)

type Server struct {
	monitor        *monitor.Monitor
	registry       *registry.Registry
	logger         *logrus.Logger
	httpServer     *http.Server
	streamInterval time.Duration
}

func NewServer(mon *monitor.Monitor, reg *registry.Registry, logger *logrus.Logger, port string, streamInterval time.Duration) *Server {
	if streamInterval <= 0 {
		streamInterval = 5 * time.Second
	}

	return &Server{
		monitor:        mon,
		registry:       reg,
		logger:         logger,
		streamInterval: streamInterval,
		httpServer:     &http.Server{Addr: ":" + port},
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/spreads", s.handleSpreads)
	mux.HandleFunc("/api/pairs", s.handlePairs)

	// Dashboard
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/addpair", s.handleAddPairForm)
	mux.HandleFunc("/removepair", s.handleRemovePairForm)

	// Live spread stream
	mux.HandleFunc("/ws", s.handleStream)

	// Enable CORS for external dashboards
	s.httpServer.Handler = corsMiddleware(mux)

	s.logger.Infof("Starting API server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains open connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSpreads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"spread_threshold": s.monitor.Threshold(),
		"spreads":          s.monitor.Store().Snapshot(),
	}
	s.writeJSON(w, http.StatusOK, response)
}

type pairRequest struct {
	Pair string `json:"pair"`
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.registry.List())

	case http.MethodPost:
		pair, ok := s.decodePair(w, r)
		if !ok {
			return
		}
		if err := s.registry.Add(pair); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		s.logger.WithField("pair", pair).Info("Pair added")
		s.writeJSON(w, http.StatusCreated, pairRequest{Pair: pair.String()})

	case http.MethodDelete:
		pair, ok := s.decodePair(w, r)
		if !ok {
			return
		}
		if err := s.registry.Remove(pair); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.monitor.Forget(pair)
		s.logger.WithField("pair", pair).Info("Pair removed")
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) decodePair(w http.ResponseWriter, r *http.Request) (models.TradingPair, bool) {
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	pair, err := models.ParseTradingPair(req.Pair)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return pair, true
}

func (s *Server) handleAddPairForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pair, err := models.ParseTradingPair(r.FormValue("pair"))
	if err != nil {
		s.redirectDashboard(w, r, "Invalid pair")
		return
	}
	if err := s.registry.Add(pair); err != nil {
		s.redirectDashboard(w, r, fmt.Sprintf("Pair %s already registered", pair))
		return
	}
	s.logger.WithField("pair", pair).Info("Pair added")
	s.redirectDashboard(w, r, fmt.Sprintf("Pair %s added", pair))
}

func (s *Server) handleRemovePairForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pair, err := models.ParseTradingPair(r.FormValue("pair"))
	if err != nil {
		s.redirectDashboard(w, r, "Invalid pair")
		return
	}
	if err := s.registry.Remove(pair); err != nil {
		s.redirectDashboard(w, r, fmt.Sprintf("Pair %s not found", pair))
		return
	}
	s.monitor.Forget(pair)
	s.logger.WithField("pair", pair).Info("Pair removed")
	s.redirectDashboard(w, r, fmt.Sprintf("Pair %s removed", pair))
}

func (s *Server) redirectDashboard(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/dashboard?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}
