package lavalink

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

var searchPrefixes = map[string]string{
	"youtube":       "ytsearch",
	"youtube_music": "ytmsearch",
	"soundcloud":    "scsearch",
	"spotify":       "spsearch",
	"deezer":        "dzsearch",
}

// Cluster spreads guild players over the configured nodes. A guild stays on the node
// it was first assigned to until its player is destroyed.
type Cluster struct {
	nodes  []*Node
	events chan domain.BackendEvent
	engine string
	log    zerolog.Logger

	mu     sync.Mutex
	assign map[string]*Node
}

func NewCluster(userID string, cfgs []NodeConfig, engine string, log zerolog.Logger, opts ...Option) *Cluster {
	c := &Cluster{
		events: make(chan domain.BackendEvent, 64),
		engine: engine,
		log:    log,
		assign: map[string]*Node{},
	}
	for _, cfg := range cfgs {
		nodeOpts := append([]Option{WithLogger(log)}, opts...)
		c.nodes = append(c.nodes, NewNode(cfg, userID, c.events, nodeOpts...))
	}
	return c
}

// Connect starts one socket goroutine per node.
func (c *Cluster) Connect(ctx context.Context) {
	for _, n := range c.nodes {
		go n.Run(ctx)
	}
}

func (c *Cluster) Events() <-chan domain.BackendEvent { return c.events }

// Snapshots in configuration order.
func (c *Cluster) Snapshots() []domain.NodeSnapshot {
	out := make([]domain.NodeSnapshot, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n.Snapshot())
	}
	return out
}

func (c *Cluster) best() (*Node, error) {
	var pick *Node
	var pickScore float64
	for _, n := range c.nodes {
		if !n.usable() {
			continue
		}
		s := n.Snapshot()
		score := float64(s.PlayingPlayers) + float64(s.Players)*0.5 + s.SystemLoad*10
		if pick == nil || score < pickScore {
			pick, pickScore = n, score
		}
	}
	if pick == nil {
		return nil, ErrNoNode
	}
	return pick, nil
}

func (c *Cluster) nodeFor(guildID string) (*Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.assign[guildID]; ok {
		return n, nil
	}
	n, err := c.best()
	if err != nil {
		return nil, err
	}
	c.assign[guildID] = n
	return n, nil
}

// SearchIdentifier turns a user query into a Lavalink identifier: URLs pass through,
// anything else gets the configured engine's search prefix.
func SearchIdentifier(query, engine string) string {
	q := strings.TrimSpace(query)
	if strings.HasPrefix(q, "http://") || strings.HasPrefix(q, "https://") {
		return q
	}
	prefix, ok := searchPrefixes[strings.ToLower(engine)]
	if !ok {
		prefix = engine
	}
	if prefix == "" {
		prefix = "ytsearch"
	}
	return prefix + ":" + q
}

func (c *Cluster) Search(ctx context.Context, query, requester string) ([]domain.Track, error) {
	n, err := c.best()
	if err != nil {
		return nil, err
	}
	tracks, err := n.LoadTracks(ctx, SearchIdentifier(query, c.engine))
	if err != nil {
		return nil, err
	}
	for i := range tracks {
		tracks[i].Requester = requester
	}
	return tracks, nil
}

func (c *Cluster) UpdateVoice(ctx context.Context, guildID string, v domain.VoiceServer) error {
	n, err := c.nodeFor(guildID)
	if err != nil {
		return err
	}
	return n.updatePlayer(ctx, guildID, updatePlayerDTO{Voice: &voiceDTO{
		Token:     v.Token,
		Endpoint:  v.Endpoint,
		SessionID: v.SessionID,
		ChannelID: v.ChannelID,
	}})
}

func (c *Cluster) Play(ctx context.Context, guildID string, t domain.Track) error {
	n, err := c.nodeFor(guildID)
	if err != nil {
		return err
	}
	enc := t.Encoded
	paused := false
	return n.updatePlayer(ctx, guildID, updatePlayerDTO{Track: &updateTrackDTO{Encoded: &enc}, Paused: &paused})
}

func (c *Cluster) Pause(ctx context.Context, guildID string, paused bool) error {
	n, err := c.nodeFor(guildID)
	if err != nil {
		return err
	}
	return n.updatePlayer(ctx, guildID, updatePlayerDTO{Paused: &paused})
}

// Stop ends the current track; Lavalink answers with a TrackEndEvent reason=stopped.
func (c *Cluster) Stop(ctx context.Context, guildID string) error {
	n, err := c.nodeFor(guildID)
	if err != nil {
		return err
	}
	paused := false
	return n.updatePlayer(ctx, guildID, updatePlayerDTO{Track: &updateTrackDTO{Encoded: nil}, Paused: &paused})
}

func (c *Cluster) Destroy(ctx context.Context, guildID string) error {
	c.mu.Lock()
	n, ok := c.assign[guildID]
	delete(c.assign, guildID)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	err := n.destroyPlayer(ctx, guildID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
