package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DISCORD_BOT_TOKEN": "token",
		"DISCORD_GUILD_ID":  "guild",
		"LAVALINK_NODES":    "main|lava.local:2333|youshallnotpass,backup|lava2.local:443|pw|true",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(baseEnv())
	require.NoError(t, err)

	require.Len(t, cfg.Nodes, 2)
	assert.Equal(t, NodeSpec{Name: "main", Address: "lava.local:2333", Password: "youshallnotpass"}, cfg.Nodes[0])
	assert.Equal(t, NodeSpec{Name: "backup", Address: "lava2.local:443", Password: "pw", Secure: true}, cfg.Nodes[1])
	assert.Equal(t, "youtube", cfg.SearchEngine)
	assert.Equal(t, 60*time.Second, cfg.DashboardInterval)
	assert.Equal(t, 3*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.VoiceTimeout)
	assert.Equal(t, "⏯️", cfg.Emojis.Pause)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.StatusChannelID)
}

func TestLoadOverrides(t *testing.T) {
	e := baseEnv()
	e["PORT"] = "3000"
	e["EMOJI_STOP"] = "<:stop:42>"
	e["IDLE_TIMEOUT"] = "0s"
	e["DEFAULT_SEARCH_ENGINE"] = "soundcloud"
	cfg, err := LoadFrom(e)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "<:stop:42>", cfg.Emojis.Stop)
	assert.Zero(t, cfg.IdleTimeout)
	assert.Equal(t, "soundcloud", cfg.SearchEngine)

	e["HTTP_ADDR"] = "127.0.0.1:9000"
	cfg, err = LoadFrom(e)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]func(map[string]string){
		"missing token":   func(e map[string]string) { delete(e, "DISCORD_BOT_TOKEN") },
		"missing nodes":   func(e map[string]string) { delete(e, "LAVALINK_NODES") },
		"bad node":        func(e map[string]string) { e["LAVALINK_NODES"] = "just-a-host" },
		"bad secure flag": func(e map[string]string) { e["LAVALINK_NODES"] = "a|h:1|p|maybe" },
		"duplicate names": func(e map[string]string) { e["LAVALINK_NODES"] = "a|h:1|p,a|h:2|p" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			e := baseEnv()
			mutate(e)
			_, err := LoadFrom(e)
			assert.Error(t, err)
		})
	}
}

func TestUnnamedNodesGetDefaultNames(t *testing.T) {
	e := baseEnv()
	e["LAVALINK_NODES"] = "|h:1|p,|h:2|p"
	cfg, err := LoadFrom(e)
	require.NoError(t, err)
	assert.Equal(t, "node-1", cfg.Nodes[0].Name)
	assert.Equal(t, "node-2", cfg.Nodes[1].Name)
}
