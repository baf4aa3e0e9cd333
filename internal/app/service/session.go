package service

import (
	"errors"
	"sync"
	"time"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrNoVoiceChannel = errors.New("user is not in a voice channel")
	ErrNoResults      = errors.New("no results")
	ErrVoiceTimeout   = errors.New("voice connection timed out")
	ErrSessionClosed  = errors.New("session was destroyed")
)

// Session is one guild's playback context. Everything below mu is guarded by it;
// the lock is never held across a network call.
type Session struct {
	ID      string
	GuildID string

	mu             sync.Mutex
	textChannelID  string
	voiceChannelID string
	state          domain.SessionState
	queue          []domain.Track
	current        *domain.Track
	controlMsgID   string
	voice          domain.VoiceServer
	voiceUp        bool
	voiceReady     chan struct{}
	closed         chan struct{}
	idleTimer      *time.Timer
}

// SessionView is a copy safe to hand to other goroutines.
type SessionView struct {
	ID               string
	GuildID          string
	TextChannelID    string
	VoiceChannelID   string
	State            domain.SessionState
	Current          *domain.Track
	Queue            []domain.Track
	ControlMessageID string
}

func newSession(id, guildID, textID, voiceID string) *Session {
	return &Session{
		ID:             id,
		GuildID:        guildID,
		textChannelID:  textID,
		voiceChannelID: voiceID,
		state:          domain.SessionActive,
		voiceReady:     make(chan struct{}),
		closed:         make(chan struct{}),
	}
}

func (s *Session) viewLocked() SessionView {
	v := SessionView{
		ID:               s.ID,
		GuildID:          s.GuildID,
		TextChannelID:    s.textChannelID,
		VoiceChannelID:   s.voiceChannelID,
		State:            s.state,
		Queue:            append([]domain.Track(nil), s.queue...),
		ControlMessageID: s.controlMsgID,
	}
	if s.current != nil {
		cur := *s.current
		v.Current = &cur
	}
	return v
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) stopIdleLocked() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
}
