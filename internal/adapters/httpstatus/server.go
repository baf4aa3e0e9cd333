package httpstatus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

type NodeSource interface {
	Snapshots() []domain.NodeSnapshot
}

type SessionCounter interface {
	Len() int
}

type Server struct {
	nodes    NodeSource
	sessions SessionCounter
	mux      *http.ServeMux
	srv      *http.Server
	log      zerolog.Logger
	now      func() time.Time
}

func New(nodes NodeSource, sessions SessionCounter, log zerolog.Logger) *Server {
	s := &Server{
		nodes:    nodes,
		sessions: sessions,
		mux:      http.NewServeMux(),
		log:      log.With().Str("component", "http").Logger(),
		now:      time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Discord Music Bot is running!"))
}

type nodeJSON struct {
	Name           string  `json:"name"`
	Connected      bool    `json:"connected"`
	Players        int     `json:"players"`
	PlayingPlayers int     `json:"playing_players"`
	UptimeMs       int64   `json:"uptime_ms"`
	MemoryUsed     uint64  `json:"memory_used_bytes"`
	SystemLoad     float64 `json:"system_load"`
}

type healthJSON struct {
	Status      string     `json:"status"`
	Sessions    int        `json:"sessions"`
	Nodes       []nodeJSON `json:"nodes"`
	GeneratedAt time.Time  `json:"generated_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	r := domain.NewStatusReport(s.nodes.Snapshots(), s.now())
	out := healthJSON{
		Status:      r.Health.String(),
		Nodes:       make([]nodeJSON, 0, len(r.Nodes)),
		GeneratedAt: r.GeneratedAt.UTC(),
	}
	if s.sessions != nil {
		out.Sessions = s.sessions.Len()
	}
	for _, n := range r.Nodes {
		out.Nodes = append(out.Nodes, nodeJSON{
			Name:           n.Name,
			Connected:      n.Connected,
			Players:        n.Players,
			PlayingPlayers: n.PlayingPlayers,
			UptimeMs:       n.UptimeMs,
			MemoryUsed:     n.MemoryUsedBytes,
			SystemLoad:     n.SystemLoad,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	// partial sigue siendo 200: el proceso está vivo
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.log.Warn().Err(err).Msg("encode health")
	}
}

// Start serves until Shutdown; meant to run on its own goroutine.
func (s *Server) Start(addr string) {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error().Err(err).Msg("http server")
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
