package lavalink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

const defaultClientName = "infinity-music-bot/1.0"

// NodeConfig describes how to reach one Lavalink server.
type NodeConfig struct {
	Name     string
	Address  string // host:port
	Password string
	Secure   bool
}

// Node is a single Lavalink v4 server: REST for control, websocket for events and stats.
type Node struct {
	cfg        NodeConfig
	userID     string
	clientName string
	http       *http.Client
	dialer     *websocket.Dialer
	log        zerolog.Logger
	events     chan<- domain.BackendEvent

	mu        sync.RWMutex
	sessionID string
	connected bool
	stats     domain.NodeSnapshot
}

func NewNode(cfg NodeConfig, userID string, events chan<- domain.BackendEvent, opts ...Option) *Node {
	n := &Node{
		cfg:        cfg,
		userID:     userID,
		clientName: defaultClientName,
		http:       &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
		log:        zerolog.Nop(),
		events:     events,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

func (n *Node) Name() string { return n.cfg.Name }

func (n *Node) restBase() string {
	scheme := "http"
	if n.cfg.Secure {
		scheme = "https"
	}
	return scheme + "://" + n.cfg.Address + "/v4"
}

func (n *Node) wsURL() string {
	scheme := "ws"
	if n.cfg.Secure {
		scheme = "wss"
	}
	return scheme + "://" + n.cfg.Address + "/v4/websocket"
}

// Session returns the websocket session id, empty until the node said ready.
func (n *Node) Session() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sessionID
}

// Snapshot copies the latest stats; Connected reflects the socket, not the stats.
func (n *Node) Snapshot() domain.NodeSnapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s := n.stats
	s.Name = n.cfg.Name
	s.Connected = n.connected
	return s
}

func (n *Node) usable() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.connected && n.sessionID != ""
}

// doJSON: builds the URL, adds Authorization, maps 404 and non-2xx into typed errors.
func (n *Node) doJSON(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := n.restBase() + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("lavalink encode: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("lavalink request: %w", err)
	}
	req.Header.Set("Authorization", n.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("lavalink http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		apiErr := &APIError{Status: res.StatusCode, Path: path, Message: strings.TrimSpace(string(b))}
		var eb errorBodyDTO
		if json.Unmarshal(b, &eb) == nil && eb.Message != "" {
			apiErr.Message = eb.Message
		}
		return apiErr
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
