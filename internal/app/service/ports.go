package service

import (
	"context"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

// Implemented by internal/adapters/lavalink.Cluster
type AudioBackend interface {
	Search(ctx context.Context, query, requester string) ([]domain.Track, error)
	UpdateVoice(ctx context.Context, guildID string, v domain.VoiceServer) error
	Play(ctx context.Context, guildID string, t domain.Track) error
	Pause(ctx context.Context, guildID string, paused bool) error
	Stop(ctx context.Context, guildID string) error
	Destroy(ctx context.Context, guildID string) error
}

// Implemented by internal/adapters/discord.VoiceBridge (gateway op 4)
type VoiceGateway interface {
	Join(guildID, channelID string) error
	Leave(guildID string) error
}

// SessionListener reacts to session lifecycle; the control panel binder implements it.
type SessionListener interface {
	SessionStarted(ctx context.Context, s SessionView, t domain.Track)
	SessionDestroyed(ctx context.Context, s SessionView)
}

// Implemented by internal/adapters/lavalink.Cluster
type NodeSource interface {
	Snapshots() []domain.NodeSnapshot
}

// StatusPublisher renders a status report into the dashboard surface.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, r domain.StatusReport)
}
