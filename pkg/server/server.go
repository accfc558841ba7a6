package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tokenview/pkg/config"
	"tokenview/pkg/detail"
	"tokenview/pkg/favorites"
	"tokenview/pkg/metrics"
	"tokenview/pkg/rpc"
	"tokenview/pkg/safety"
	"tokenview/pkg/watcher"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Options carries the collaborators the HTTP handlers compose views from.
type Options struct {
	Chain      config.ChainConfig
	Classifier *safety.Classifier
	Favorites  *favorites.Adapter
	Reconciler *detail.Reconciler
	Gatherer   prometheus.Gatherer
	Metrics    *metrics.Metrics
	Log        logrus.FieldLogger
}

type Server struct {
	watcher *watcher.Watcher
	opts    Options
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	mux     *http.ServeMux
}

func NewServer(w *watcher.Watcher, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		watcher: w,
		opts:    opts,
		clients: make(map[*websocket.Conn]bool),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/token/{address}", s.handleToken)
	s.mux.HandleFunc("POST /api/watch/{address}", s.handleWatch)
	s.mux.HandleFunc("POST /api/favorites/{address}", s.handleFavorite)
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	go s.listenToWatcher()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.opts.Log.WithField("port", port).Info("API server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	identity, remote, err := s.watcher.Resolve(r.Context(), address, s.opts.Chain)
	switch {
	case errors.Is(err, rpc.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		// unresolved identity still renders, as the loading branch
		s.opts.Log.WithError(err).WithField("address", address).Warn("Identity unresolved")
	}
	writeJSON(w, http.StatusOK, s.compose(address, identity, remote, err))
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", rpc.ErrInvalidAddress, address))
		return
	}
	session := s.watcher.Watch(address, s.opts.Chain)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"session": session, "address": address})
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if err := s.opts.Favorites.Toggle(address); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.opts.Metrics.FavoriteToggled()
	change := watcher.FavoriteChange{Address: address, Favorited: s.opts.Favorites.IsFavorited(address)}
	s.watcher.Publish(watcher.Event{Type: watcher.EventFavoriteToggled, Data: change})
	writeJSON(w, http.StatusOK, change)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	cur := s.watcher.Current()
	initial := wireMessage{
		Type: "initial",
		Data: watcher.SessionInfo{
			Session: cur.ID,
			Address: cur.Address,
			Chain:   cur.Chain.Name,
			Scope:   s.watcher.Filter().Scope(),
		},
	}

	s.mu.Lock()
	err = conn.WriteJSON(initial)
	if err == nil {
		s.clients[conn] = true
	}
	s.mu.Unlock()
	if err != nil {
		return
	}

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) listenToWatcher() {
	sub := s.watcher.Subscribe()
	defer s.watcher.Unsubscribe(sub)

	for event := range sub {
		s.broadcast(toWire(event))
	}
}

func (s *Server) broadcast(msg wireMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(msg); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}
