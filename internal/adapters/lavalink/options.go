package lavalink

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Option func(*Node)

func WithHTTPClient(h *http.Client) Option {
	return func(n *Node) { n.http = h }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(n *Node) { n.dialer = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(n *Node) { n.log = l.With().Str("node", n.cfg.Name).Logger() }
}

func WithClientName(name string) Option {
	return func(n *Node) { n.clientName = name }
}
