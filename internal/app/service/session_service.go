package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

const voiceCodeDisconnected = 4014

type SessionOptions struct {
	// IdleTimeout destroys a session whose queue ran dry; zero disables it.
	IdleTimeout  time.Duration
	VoiceTimeout time.Duration
}

// SessionService is the registry of playback sessions, keyed by guild.
type SessionService struct {
	backend  AudioBackend
	voice    VoiceGateway
	listener SessionListener
	log      zerolog.Logger
	opts     SessionOptions

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionService(backend AudioBackend, voice VoiceGateway, log zerolog.Logger, opts SessionOptions) *SessionService {
	if opts.VoiceTimeout <= 0 {
		opts.VoiceTimeout = 10 * time.Second
	}
	return &SessionService{
		backend:  backend,
		voice:    voice,
		listener: nopListener{},
		log:      log.With().Str("component", "sessions").Logger(),
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

// SetListener must be called before the first event is handled.
func (s *SessionService) SetListener(l SessionListener) {
	if l == nil {
		l = nopListener{}
	}
	s.listener = l
}

type PlayRequest struct {
	GuildID        string
	TextChannelID  string
	VoiceChannelID string
	Query          string
	Requester      string
}

type PlayResult struct {
	Track    domain.Track
	Started  bool
	Position int // 1-based queue position, 0 when it started right away
}

func (s *SessionService) get(guildID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[guildID]
}

func (s *SessionService) Get(guildID string) (SessionView, bool) {
	sess := s.get(guildID)
	if sess == nil {
		return SessionView{}, false
	}
	return sess.View(), true
}

func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionService) getOrCreate(req PlayRequest) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[req.GuildID]; ok {
		return sess, false
	}
	sess := newSession(uuid.NewString(), req.GuildID, req.TextChannelID, req.VoiceChannelID)
	s.sessions[req.GuildID] = sess
	return sess, true
}

// Play searches, creates or reuses the guild session and enqueues the top result.
// Playback only starts when nothing is current.
func (s *SessionService) Play(ctx context.Context, req PlayRequest) (PlayResult, error) {
	if req.VoiceChannelID == "" {
		return PlayResult{}, ErrNoVoiceChannel
	}
	tracks, err := s.backend.Search(ctx, req.Query, req.Requester)
	if err != nil {
		return PlayResult{}, fmt.Errorf("search: %w", err)
	}
	if len(tracks) == 0 {
		return PlayResult{}, ErrNoResults
	}

	sess, created := s.getOrCreate(req)
	log := s.log.With().Str("guild", req.GuildID).Str("session", sess.ID).Logger()
	if created {
		log.Info().Str("voice", req.VoiceChannelID).Str("text", req.TextChannelID).Msg("session created")
		if err := s.voice.Join(req.GuildID, req.VoiceChannelID); err != nil {
			s.destroy(ctx, sess, "voice join failed")
			return PlayResult{}, fmt.Errorf("join voice: %w", err)
		}
	}
	if err := s.waitVoice(ctx, sess); err != nil {
		if created {
			s.destroy(ctx, sess, "voice timeout")
		}
		return PlayResult{}, err
	}

	track := tracks[0]
	sess.mu.Lock()
	if sess.state == domain.SessionDestroyed {
		sess.mu.Unlock()
		return PlayResult{}, ErrSessionClosed
	}
	sess.queue = append(sess.queue, track)
	res := PlayResult{Track: track, Position: len(sess.queue)}
	idle := sess.current == nil
	sess.stopIdleLocked()
	sess.mu.Unlock()

	if idle {
		started, err := s.advance(ctx, sess, false)
		if err != nil {
			return res, err
		}
		if started {
			res.Started = true
			res.Position = 0
		}
	}
	log.Info().Str("track", track.Title).Bool("started", res.Started).Msg("track enqueued")
	return res, nil
}

func (s *SessionService) waitVoice(ctx context.Context, sess *Session) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.VoiceTimeout)
	defer cancel()
	select {
	case <-sess.voiceReady:
		return nil
	case <-sess.closed:
		return ErrSessionClosed
	case <-ctx.Done():
		return ErrVoiceTimeout
	}
}

// advance starts the next queued track. With replace it also cuts the current one.
func (s *SessionService) advance(ctx context.Context, sess *Session, replace bool) (bool, error) {
	sess.mu.Lock()
	if sess.state == domain.SessionDestroyed || (!replace && sess.current != nil) {
		sess.mu.Unlock()
		return false, nil
	}
	if len(sess.queue) == 0 {
		sess.current = nil
		s.armIdleLocked(sess)
		sess.mu.Unlock()
		return false, nil
	}
	next := sess.queue[0]
	sess.queue = sess.queue[1:]
	sess.current = &next
	sess.state = domain.SessionActive
	sess.stopIdleLocked()
	sess.mu.Unlock()

	if err := s.backend.Play(ctx, sess.GuildID, next); err != nil {
		sess.mu.Lock()
		if sess.current != nil && sess.current.Encoded == next.Encoded {
			sess.current = nil
			s.armIdleLocked(sess)
		}
		sess.mu.Unlock()
		s.log.Error().Err(err).Str("guild", sess.GuildID).Str("track", next.Title).Msg("play failed")
		return false, fmt.Errorf("play: %w", err)
	}
	return true, nil
}

func (s *SessionService) armIdleLocked(sess *Session) {
	sess.stopIdleLocked()
	if s.opts.IdleTimeout <= 0 {
		return
	}
	sess.idleTimer = time.AfterFunc(s.opts.IdleTimeout, func() {
		sess.mu.Lock()
		idle := sess.state != domain.SessionDestroyed && sess.current == nil && len(sess.queue) == 0
		sess.mu.Unlock()
		if idle {
			s.destroy(context.Background(), sess, "idle")
		}
	})
}

// TogglePause flips Active <-> Paused and returns the new paused value.
func (s *SessionService) TogglePause(ctx context.Context, guildID string) (bool, error) {
	sess := s.get(guildID)
	if sess == nil {
		return false, ErrNoSession
	}
	sess.mu.Lock()
	want := sess.state != domain.SessionPaused
	sess.mu.Unlock()

	if err := s.backend.Pause(ctx, guildID, want); err != nil {
		return !want, fmt.Errorf("pause: %w", err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == domain.SessionDestroyed {
		return false, ErrSessionClosed
	}
	if want {
		sess.state = domain.SessionPaused
	} else {
		sess.state = domain.SessionActive
	}
	return want, nil
}

// Skip drops the current track. With an empty queue the player is stopped and the
// session waits for the idle timeout.
func (s *SessionService) Skip(ctx context.Context, guildID string) (*domain.Track, error) {
	sess := s.get(guildID)
	if sess == nil {
		return nil, ErrNoSession
	}
	sess.mu.Lock()
	var skipped *domain.Track
	if sess.current != nil {
		cur := *sess.current
		skipped = &cur
	}
	hasNext := len(sess.queue) > 0
	sess.mu.Unlock()

	if hasNext {
		if _, err := s.advance(ctx, sess, true); err != nil {
			return skipped, err
		}
		return skipped, nil
	}
	if skipped == nil {
		return nil, nil
	}
	if err := s.backend.Stop(ctx, guildID); err != nil {
		return skipped, fmt.Errorf("stop track: %w", err)
	}
	sess.mu.Lock()
	if sess.state != domain.SessionDestroyed {
		if sess.current != nil && sess.current.Encoded == skipped.Encoded {
			sess.current = nil
		}
		sess.state = domain.SessionActive
		if sess.current == nil {
			s.armIdleLocked(sess)
		}
	}
	sess.mu.Unlock()
	return skipped, nil
}

func (s *SessionService) Stop(ctx context.Context, guildID string) error {
	sess := s.get(guildID)
	if sess == nil {
		return ErrNoSession
	}
	s.destroy(ctx, sess, "stopped")
	return nil
}

func (s *SessionService) destroy(ctx context.Context, sess *Session, reason string) {
	s.mu.Lock()
	if cur, ok := s.sessions[sess.GuildID]; ok && cur == sess {
		delete(s.sessions, sess.GuildID)
	}
	s.mu.Unlock()

	sess.mu.Lock()
	if sess.state == domain.SessionDestroyed {
		sess.mu.Unlock()
		return
	}
	view := sess.viewLocked()
	view.State = domain.SessionDestroyed
	sess.state = domain.SessionDestroyed
	sess.controlMsgID = ""
	sess.queue = nil
	sess.current = nil
	sess.stopIdleLocked()
	close(sess.closed)
	sess.mu.Unlock()

	log := s.log.With().Str("guild", sess.GuildID).Str("session", sess.ID).Logger()
	if err := s.backend.Destroy(ctx, sess.GuildID); err != nil {
		log.Warn().Err(err).Msg("destroy player failed")
	}
	if err := s.voice.Leave(sess.GuildID); err != nil {
		log.Warn().Err(err).Msg("leave voice failed")
	}
	log.Info().Str("reason", reason).Msg("session destroyed")
	s.listener.SessionDestroyed(ctx, view)
}

// AttachControlMessage binds a control panel to the session and returns the one it replaces.
// ok is false when the session is gone or was replaced meanwhile.
func (s *SessionService) AttachControlMessage(guildID, sessionID, messageID string) (string, bool) {
	sess := s.get(guildID)
	if sess == nil || sess.ID != sessionID {
		return "", false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == domain.SessionDestroyed {
		return "", false
	}
	prev := sess.controlMsgID
	sess.controlMsgID = messageID
	return prev, true
}

// VoiceServerUpdate stores the bot's voice token/endpoint for the guild.
func (s *SessionService) VoiceServerUpdate(ctx context.Context, guildID, token, endpoint string) {
	sess := s.get(guildID)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	sess.voice.Token = token
	sess.voice.Endpoint = endpoint
	sess.mu.Unlock()
	s.forwardVoice(ctx, sess)
}

// VoiceStateUpdate handles the bot's own voice state. An empty channel means we were
// disconnected and the session goes away.
func (s *SessionService) VoiceStateUpdate(ctx context.Context, guildID, sessionID, channelID string) {
	sess := s.get(guildID)
	if sess == nil {
		return
	}
	if channelID == "" {
		s.destroy(ctx, sess, "voice disconnected")
		return
	}
	sess.mu.Lock()
	sess.voice.SessionID = sessionID
	sess.voice.ChannelID = channelID
	sess.voiceChannelID = channelID
	sess.mu.Unlock()
	s.forwardVoice(ctx, sess)
}

func (s *SessionService) forwardVoice(ctx context.Context, sess *Session) {
	sess.mu.Lock()
	v := sess.voice
	destroyed := sess.state == domain.SessionDestroyed
	sess.mu.Unlock()
	if destroyed || !v.Complete() {
		return
	}
	if err := s.backend.UpdateVoice(ctx, sess.GuildID, v); err != nil {
		s.log.Error().Err(err).Str("guild", sess.GuildID).Msg("voice update failed")
		return
	}
	sess.mu.Lock()
	if !sess.voiceUp {
		sess.voiceUp = true
		close(sess.voiceReady)
	}
	sess.mu.Unlock()
}

// HandleEvent applies a player event from the audio backend.
func (s *SessionService) HandleEvent(ctx context.Context, ev domain.BackendEvent) {
	sess := s.get(ev.GuildID)
	if sess == nil {
		return
	}
	log := s.log.With().Str("guild", ev.GuildID).Str("session", sess.ID).Str("event", ev.Kind.String()).Logger()

	switch ev.Kind {
	case domain.EventTrackStart:
		sess.mu.Lock()
		cur := sess.current
		if cur == nil || cur.Encoded != ev.Track {
			sess.mu.Unlock()
			log.Debug().Msg("stale track start")
			return
		}
		track := *cur
		view := sess.viewLocked()
		sess.mu.Unlock()
		s.listener.SessionStarted(ctx, view, track)

	case domain.EventTrackEnd:
		if !ev.MayStartNext() {
			return
		}
		sess.mu.Lock()
		if sess.current != nil && sess.current.Encoded != ev.Track {
			sess.mu.Unlock()
			return
		}
		sess.current = nil
		sess.mu.Unlock()
		if _, err := s.advance(ctx, sess, false); err != nil {
			log.Error().Err(err).Msg("advance failed")
		}

	case domain.EventTrackException:
		log.Warn().Err(ev.Err).Msg("track exception")

	case domain.EventTrackStuck:
		log.Warn().Int("threshold_ms", ev.Code).Msg("track stuck, skipping")
		if err := s.backend.Stop(ctx, ev.GuildID); err != nil {
			log.Error().Err(err).Msg("stop stuck track failed")
		}

	case domain.EventVoiceClosed:
		log.Warn().Int("code", ev.Code).Bool("by_remote", ev.ByRemote).Str("reason", ev.Reason).Msg("voice socket closed")
		if ev.ByRemote && ev.Code == voiceCodeDisconnected {
			s.destroy(ctx, sess, "voice closed")
		}
	}
}

// Shutdown destroys every session; used on process exit.
func (s *SessionService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.Unlock()
	for _, sess := range all {
		s.destroy(ctx, sess, "shutdown")
	}
}

type nopListener struct{}

func (nopListener) SessionStarted(context.Context, SessionView, domain.Track) {}
func (nopListener) SessionDestroyed(context.Context, SessionView)             {}
