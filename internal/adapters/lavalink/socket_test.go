package lavalink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

func TestHandleMessage(t *testing.T) {
	events := make(chan domain.BackendEvent, 8)
	n := NewNode(NodeConfig{Name: "main", Address: "x:1"}, "42", events)
	ctx := context.Background()

	n.handleMessage(ctx, []byte(`{"op":"ready","resumed":false,"sessionId":"abc"}`))
	require.Equal(t, domain.BackendEvent{Kind: domain.EventNodeReady, Node: "main"}, <-events)
	assert.Equal(t, "abc", n.Session())
	assert.True(t, n.Snapshot().Connected)

	n.handleMessage(ctx, []byte(`{"op":"stats","players":3,"playingPlayers":2,"uptime":123456,
		"memory":{"free":1,"used":2048,"allocated":4096,"reservable":8192},
		"cpu":{"cores":4,"systemLoad":0.5,"lavalinkLoad":0.25}}`))
	snap := n.Snapshot()
	assert.Equal(t, domain.NodeSnapshot{
		Name: "main", Connected: true, Players: 3, PlayingPlayers: 2, UptimeMs: 123456,
		MemoryUsedBytes: 2048, MemoryReservableBytes: 8192, SystemLoad: 0.5, BackendLoad: 0.25,
	}, snap)

	n.handleMessage(ctx, []byte(`{"op":"event","type":"TrackStartEvent","guildId":"g1","track":{"encoded":"E1","info":{}}}`))
	ev := <-events
	assert.Equal(t, domain.EventTrackStart, ev.Kind)
	assert.Equal(t, "g1", ev.GuildID)
	assert.Equal(t, "E1", ev.Track)

	n.handleMessage(ctx, []byte(`{"op":"event","type":"TrackEndEvent","guildId":"g1","track":{"encoded":"E1","info":{}},"reason":"finished"}`))
	ev = <-events
	assert.Equal(t, domain.EventTrackEnd, ev.Kind)
	assert.Equal(t, domain.EndFinished, ev.Reason)

	n.handleMessage(ctx, []byte(`{"op":"event","type":"WebSocketClosedEvent","guildId":"g1","code":4014,"reason":"Disconnected","byRemote":true}`))
	ev = <-events
	assert.Equal(t, domain.EventVoiceClosed, ev.Kind)
	assert.Equal(t, 4014, ev.Code)
	assert.True(t, ev.ByRemote)

	n.handleMessage(ctx, []byte(`{"op":"event","type":"TrackExceptionEvent","guildId":"g1","exception":{"message":"boom","severity":"fault"}}`))
	ev = <-events
	assert.Equal(t, domain.EventTrackException, ev.Kind)
	assert.EqualError(t, ev.Err, "lavalink load failed (fault): boom")

	n.handleMessage(ctx, []byte(`{"op":"event","type":"SomethingNew","guildId":"g1"}`))
	n.handleMessage(ctx, []byte(`not json`))
	assert.Len(t, events, 0)

	n.setDisconnected()
	assert.False(t, n.Snapshot().Connected)
	assert.Equal(t, "", n.Session())
	// stats survive a disconnect, only the flag flips
	assert.Equal(t, 3, n.Snapshot().Players)
}
