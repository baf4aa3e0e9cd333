package lavalink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

const (
	reconnectBase = 1 * time.Second
	reconnectCap  = 30 * time.Second
)

// Run keeps the node socket connected until ctx is done.
func (n *Node) Run(ctx context.Context) {
	for ctx.Err() == nil {
		conn, err := n.dialWithBackoff(ctx)
		if err != nil {
			return // ctx cancelled
		}
		err = n.readLoop(ctx, conn)
		n.setDisconnected()
		if ctx.Err() != nil {
			return
		}
		code := 0
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			code = ce.Code
		}
		n.log.Warn().Err(err).Int("code", code).Msg("lavalink socket closed")
		n.emit(ctx, domain.BackendEvent{Kind: domain.EventNodeClosed, Node: n.cfg.Name, Code: code, Err: err})
	}
}

func (n *Node) dialWithBackoff(ctx context.Context) (*websocket.Conn, error) {
	b := retry.NewExponential(reconnectBase)
	b = retry.WithCappedDuration(reconnectCap, b)
	b = retry.WithJitterPercent(10, b)

	var conn *websocket.Conn
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		c, err := n.dial(ctx)
		if err != nil {
			n.log.Error().Err(err).Msg("lavalink dial failed")
			n.emit(ctx, domain.BackendEvent{Kind: domain.EventNodeError, Node: n.cfg.Name, Err: err})
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	return conn, err
}

func (n *Node) dial(ctx context.Context) (*websocket.Conn, error) {
	h := http.Header{}
	h.Set("Authorization", n.cfg.Password)
	h.Set("User-Id", n.userID)
	h.Set("Client-Name", n.clientName)

	conn, res, err := n.dialer.DialContext(ctx, n.wsURL(), h)
	if err != nil {
		if res != nil {
			return nil, fmt.Errorf("lavalink ws handshake status %d: %w", res.StatusCode, err)
		}
		return nil, fmt.Errorf("lavalink ws: %w", err)
	}
	return conn, nil
}

func (n *Node) readLoop(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		n.handleMessage(ctx, data)
	}
}

func (n *Node) setDisconnected() {
	n.mu.Lock()
	n.connected = false
	n.sessionID = ""
	n.mu.Unlock()
}

func (n *Node) handleMessage(ctx context.Context, data []byte) {
	var m wsMessage
	if err := json.Unmarshal(data, &m); err != nil {
		n.log.Warn().Err(err).Msg("lavalink: bad frame")
		return
	}

	switch m.Op {
	case "ready":
		n.mu.Lock()
		n.connected = true
		n.sessionID = m.SessionID
		n.mu.Unlock()
		n.log.Info().Str("session", m.SessionID).Bool("resumed", m.Resumed).Msg("lavalink node ready")
		n.emit(ctx, domain.BackendEvent{Kind: domain.EventNodeReady, Node: n.cfg.Name})

	case "stats":
		n.mu.Lock()
		n.stats.Players = m.Players
		n.stats.PlayingPlayers = m.PlayingPlayers
		n.stats.UptimeMs = m.Uptime
		if m.Memory != nil {
			n.stats.MemoryUsedBytes = m.Memory.Used
			n.stats.MemoryReservableBytes = m.Memory.Reservable
		}
		if m.CPU != nil {
			n.stats.SystemLoad = m.CPU.SystemLoad
			n.stats.BackendLoad = m.CPU.LavalinkLoad
		}
		n.mu.Unlock()

	case "playerUpdate":
		// position updates are not tracked

	case "event":
		ev, ok := n.convertEvent(m)
		if !ok {
			n.log.Debug().Str("type", m.Type).Msg("lavalink: ignored event")
			return
		}
		n.emit(ctx, ev)
	}
}

func (n *Node) convertEvent(m wsMessage) (domain.BackendEvent, bool) {
	ev := domain.BackendEvent{Node: n.cfg.Name, GuildID: m.GuildID, Reason: m.Reason}
	if m.Track != nil {
		ev.Track = m.Track.Encoded
	}
	switch m.Type {
	case "TrackStartEvent":
		ev.Kind = domain.EventTrackStart
	case "TrackEndEvent":
		ev.Kind = domain.EventTrackEnd
	case "TrackExceptionEvent":
		ev.Kind = domain.EventTrackException
		if m.Exception != nil {
			ev.Err = &LoadError{Message: m.Exception.Message, Severity: m.Exception.Severity, Cause: m.Exception.Cause}
		}
	case "TrackStuckEvent":
		ev.Kind = domain.EventTrackStuck
		ev.Code = int(m.ThresholdMs)
	case "WebSocketClosedEvent":
		ev.Kind = domain.EventVoiceClosed
		ev.Code = m.Code
		ev.ByRemote = m.ByRemote
	default:
		return ev, false
	}
	return ev, true
}

func (n *Node) emit(ctx context.Context, ev domain.BackendEvent) {
	if n.events == nil {
		return
	}
	select {
	case n.events <- ev:
	case <-ctx.Done():
	}
}
