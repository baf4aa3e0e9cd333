package discord

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

const defaultScanLimit = 10

// MessageAPI is the part of *discordgo.Session that touches channel messages.
type MessageAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessagesBulkDelete(channel string, messages []string, options ...discordgo.RequestOption) error
}

// Role names a surface. It doubles as the first embed's author name, which is how
// a surface is recognised again after the cached ref is lost.
type Role string

const RoleDashboard Role = "Infinity Music Nodes"

type Payload struct {
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeEdited
	OutcomeAdopted
	OutcomeSent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEdited:
		return "edited"
	case OutcomeAdopted:
		return "adopted"
	case OutcomeSent:
		return "sent"
	}
	return "failed"
}

type UpsertResult struct {
	Outcome   Outcome
	MessageID string
	Err       error
}

// RefStore persists surface refs across restarts.
type RefStore interface {
	LoadSurfaces(ctx context.Context) ([]domain.SurfaceRef, error)
	SaveSurface(ctx context.Context, ref domain.SurfaceRef) error
	DeleteSurface(ctx context.Context, key domain.SurfaceKey) error
	ForgetChannels(ctx context.Context, channelIDs []string) error
}

// Surfaces keeps one live message per (channel, role) and edits it in place.
// Refs are write-through to the RefStore and loaded lazily on first use.
type Surfaces struct {
	api       MessageAPI
	botID     string
	store     RefStore
	log       zerolog.Logger
	scanLimit int

	mu     sync.Mutex
	loaded bool
	refs   map[domain.SurfaceKey]string
}

func NewSurfaces(api MessageAPI, botID string, store RefStore, log zerolog.Logger) *Surfaces {
	if store == nil {
		store = NewMemoryRefStore()
	}
	return &Surfaces{
		api:       api,
		botID:     botID,
		store:     store,
		log:       log.With().Str("component", "surfaces").Logger(),
		scanLimit: defaultScanLimit,
		refs:      map[domain.SurfaceKey]string{},
	}
}

func (s *Surfaces) ensureLoaded(ctx context.Context) {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	refs, err := s.store.LoadSurfaces(ctx)
	if err != nil {
		// se reintenta en el próximo upsert
		s.log.Warn().Err(err).Msg("load surface refs")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	for _, r := range refs {
		if _, ok := s.refs[r.SurfaceKey]; !ok {
			s.refs[r.SurfaceKey] = r.MessageID
		}
	}
	s.loaded = true
}

// Ref returns the cached message id for a surface.
func (s *Surfaces) Ref(channelID string, role Role) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.refs[domain.SurfaceKey{ChannelID: channelID, Role: string(role)}]
	return id, ok
}

func (s *Surfaces) adopt(ctx context.Context, key domain.SurfaceKey, messageID string) {
	s.mu.Lock()
	s.refs[key] = messageID
	s.mu.Unlock()
	if err := s.store.SaveSurface(ctx, domain.SurfaceRef{SurfaceKey: key, MessageID: messageID}); err != nil {
		s.log.Warn().Err(err).Str("channel", key.ChannelID).Str("role", key.Role).Msg("save surface ref")
	}
}

// invalidate drops the ref only if it still points at messageID.
func (s *Surfaces) invalidate(ctx context.Context, key domain.SurfaceKey, messageID string) {
	s.mu.Lock()
	cur, ok := s.refs[key]
	if !ok || cur != messageID {
		s.mu.Unlock()
		return
	}
	delete(s.refs, key)
	s.mu.Unlock()
	if err := s.store.DeleteSurface(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("channel", key.ChannelID).Msg("delete surface ref")
	}
}

// Upsert shows p on the (channel, role) surface: edit the cached message, else adopt
// a matching bot message among the latest few, else send a new one. Nothing is retried.
func (s *Surfaces) Upsert(ctx context.Context, channelID string, role Role, p Payload) UpsertResult {
	key := domain.SurfaceKey{ChannelID: channelID, Role: string(role)}
	log := s.log.With().Str("channel", channelID).Str("role", string(role)).Logger()
	s.ensureLoaded(ctx)

	if id, ok := s.Ref(channelID, role); ok {
		err := s.edit(ctx, channelID, id, p)
		switch {
		case err == nil:
			return UpsertResult{Outcome: OutcomeEdited, MessageID: id}
		case isUnknownMessage(err):
			log.Info().Str("message", id).Msg("cached surface is gone")
			s.invalidate(ctx, key, id)
		default:
			log.Warn().Err(err).Str("message", id).Msg("edit surface")
			return UpsertResult{Outcome: OutcomeFailed, MessageID: id, Err: err}
		}
	}

	msgs, err := s.api.ChannelMessages(channelID, s.scanLimit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Msg("scan channel")
		return UpsertResult{Outcome: OutcomeFailed, Err: err}
	}
	for _, m := range msgs {
		if !s.owns(m, role) {
			continue
		}
		err := s.edit(ctx, channelID, m.ID, p)
		if err == nil {
			s.adopt(ctx, key, m.ID)
			return UpsertResult{Outcome: OutcomeAdopted, MessageID: m.ID}
		}
		if !isUnknownMessage(err) {
			log.Warn().Err(err).Str("message", m.ID).Msg("edit scanned surface")
			return UpsertResult{Outcome: OutcomeFailed, Err: err}
		}
		break
	}

	sent, err := s.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     p.Embeds,
		Components: p.Components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Msg("send surface")
		return UpsertResult{Outcome: OutcomeFailed, Err: err}
	}
	s.adopt(ctx, key, sent.ID)
	return UpsertResult{Outcome: OutcomeSent, MessageID: sent.ID}
}

func (s *Surfaces) edit(ctx context.Context, channelID, messageID string, p Payload) error {
	embeds := p.Embeds
	comps := p.Components
	if comps == nil {
		comps = []discordgo.MessageComponent{}
	}
	_, err := s.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &comps,
	}, discordgo.WithContext(ctx))
	return err
}

func (s *Surfaces) owns(m *discordgo.Message, role Role) bool {
	if m == nil || m.Author == nil || m.Author.ID != s.botID {
		return false
	}
	if len(m.Embeds) == 0 || m.Embeds[0].Author == nil {
		return false
	}
	return m.Embeds[0].Author.Name == string(role)
}

// ForgetChannel drops every ref pointing into channelID, e.g. after a purge.
func (s *Surfaces) ForgetChannel(ctx context.Context, channelID string) {
	s.mu.Lock()
	for k := range s.refs {
		if k.ChannelID == channelID {
			delete(s.refs, k)
		}
	}
	s.mu.Unlock()
	if err := s.store.ForgetChannels(ctx, []string{channelID}); err != nil {
		s.log.Warn().Err(err).Str("channel", channelID).Msg("forget channel refs")
	}
}

func isUnknownMessage(err error) bool {
	var re *discordgo.RESTError
	if !errors.As(err, &re) {
		return false
	}
	if re.Message != nil && re.Message.Code == discordgo.ErrCodeUnknownMessage {
		return true
	}
	return re.Response != nil && re.Response.StatusCode == http.StatusNotFound
}
