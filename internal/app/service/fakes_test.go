package service

import (
	"context"
	"sync"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

type fakeBackend struct {
	mu      sync.Mutex
	results []domain.Track
	calls   []string
	played  []string
	voice   map[string]domain.VoiceServer
	playErr error
}

func (f *fakeBackend) record(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Played() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func (f *fakeBackend) Search(_ context.Context, _ string, requester string) ([]domain.Track, error) {
	f.record("search")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Track, 0, len(f.results))
	for _, t := range f.results {
		t.Requester = requester
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeBackend) UpdateVoice(_ context.Context, guildID string, v domain.VoiceServer) error {
	f.record("voice")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.voice == nil {
		f.voice = map[string]domain.VoiceServer{}
	}
	f.voice[guildID] = v
	return nil
}

func (f *fakeBackend) Play(_ context.Context, _ string, t domain.Track) error {
	f.record("play")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.played = append(f.played, t.Encoded)
	return nil
}

func (f *fakeBackend) Pause(_ context.Context, _ string, paused bool) error {
	if paused {
		f.record("pause")
	} else {
		f.record("resume")
	}
	return nil
}

func (f *fakeBackend) Stop(context.Context, string) error {
	f.record("stop")
	return nil
}

func (f *fakeBackend) Destroy(context.Context, string) error {
	f.record("destroy")
	return nil
}

// fakeVoice answers a join with the gateway events the real gateway would send,
// unless silent is set.
type fakeVoice struct {
	mu     sync.Mutex
	svc    *SessionService
	silent bool
	joins  []string
	leaves []string
}

func (f *fakeVoice) Join(guildID, channelID string) error {
	f.mu.Lock()
	f.joins = append(f.joins, channelID)
	silent := f.silent
	f.mu.Unlock()
	if silent {
		return nil
	}
	ctx := context.Background()
	f.svc.VoiceStateUpdate(ctx, guildID, "voice-session", channelID)
	f.svc.VoiceServerUpdate(ctx, guildID, "token", "endpoint.discord.media")
	return nil
}

func (f *fakeVoice) Leave(guildID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves = append(f.leaves, guildID)
	return nil
}

func (f *fakeVoice) Leaves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leaves)
}

type fakeListener struct {
	mu        sync.Mutex
	started   []domain.Track
	destroyed []SessionView
}

func (f *fakeListener) SessionStarted(_ context.Context, _ SessionView, t domain.Track) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, t)
}

func (f *fakeListener) SessionDestroyed(_ context.Context, s SessionView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, s)
}

func (f *fakeListener) Started() []domain.Track {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Track(nil), f.started...)
}

func (f *fakeListener) Destroyed() []SessionView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SessionView(nil), f.destroyed...)
}
