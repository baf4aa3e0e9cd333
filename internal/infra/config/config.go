package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// NodeSpec is one audio node, written as name|host:port|password|secure.
type NodeSpec struct {
	Name     string
	Address  string
	Password string
	Secure   bool
}

func (n *NodeSpec) UnmarshalText(b []byte) error {
	parts := strings.Split(strings.TrimSpace(string(b)), "|")
	if len(parts) < 3 || len(parts) > 4 {
		return fmt.Errorf("node %q: want name|host:port|password[|secure]", string(b))
	}
	n.Name = strings.TrimSpace(parts[0])
	n.Address = strings.TrimSpace(parts[1])
	n.Password = parts[2]
	if n.Address == "" {
		return fmt.Errorf("node %q: empty address", n.Name)
	}
	if len(parts) == 4 && strings.TrimSpace(parts[3]) != "" {
		secure, err := strconv.ParseBool(strings.TrimSpace(parts[3]))
		if err != nil {
			return fmt.Errorf("node %q: secure flag: %w", n.Name, err)
		}
		n.Secure = secure
	}
	return nil
}

type Emojis struct {
	NowPlaying string `env:"NOWPLAYING" envDefault:"🎶"`
	Pause      string `env:"PAUSE" envDefault:"⏯️"`
	Skip       string `env:"SKIP" envDefault:"⏭️"`
	Stop       string `env:"STOP" envDefault:"⏹️"`
}

type Config struct {
	DiscordToken string     `env:"DISCORD_BOT_TOKEN,required"`
	DiscordGuild string     `env:"DISCORD_GUILD_ID,required"`
	Nodes        []NodeSpec `env:"LAVALINK_NODES,required" envSeparator:","`

	StatusChannelID string `env:"STATUS_CHANNEL_ID"` // vacío = sin dashboard
	SearchEngine    string `env:"DEFAULT_SEARCH_ENGINE" envDefault:"youtube"`
	HTTPAddr        string `env:"HTTP_ADDR"`
	Port            string `env:"PORT"`
	DatabaseURL     string `env:"DATABASE_URL"` // opcional: sin DB las refs viven en memoria

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY"`

	DashboardInterval time.Duration `env:"DASHBOARD_INTERVAL" envDefault:"60s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"3m"`
	VoiceTimeout      time.Duration `env:"VOICE_CONNECT_TIMEOUT" envDefault:"10s"`

	Emojis       Emojis `envPrefix:"EMOJI_"`
	ActivityName string `env:"ACTIVITY_NAME" envDefault:"/play"`
	ActivityType string `env:"ACTIVITY_TYPE" envDefault:"LISTENING"`
}

// Addr is the liveness listen address: HTTP_ADDR, else :$PORT, else :8080.
func (c Config) Addr() string {
	switch {
	case c.HTTPAddr != "":
		return c.HTTPAddr
	case c.Port != "":
		return ":" + c.Port
	}
	return ":8080"
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom parses an explicit environment; used by tests.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Nodes) == 0 {
		return errors.New("LAVALINK_NODES: at least one node is required")
	}
	seen := map[string]bool{}
	for i := range c.Nodes {
		if c.Nodes[i].Name == "" {
			c.Nodes[i].Name = fmt.Sprintf("node-%d", i+1)
		}
		if seen[c.Nodes[i].Name] {
			return fmt.Errorf("LAVALINK_NODES: duplicate node name %q", c.Nodes[i].Name)
		}
		seen[c.Nodes[i].Name] = true
	}
	if c.VoiceTimeout <= 0 {
		return errors.New("VOICE_CONNECT_TIMEOUT must be positive")
	}
	return nil
}

// Janitor is the maintenance lambda's config.
type Janitor struct {
	DatabaseURL string        `env:"DATABASE_URL,required"`
	Retention   time.Duration `env:"SURFACE_REF_RETENTION" envDefault:"720h"`
}

func LoadJanitor() (Janitor, error) {
	cfg, err := env.ParseAs[Janitor]()
	if err != nil {
		return Janitor{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
