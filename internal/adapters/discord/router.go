package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/app/service"
	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

const (
	interactionTimeout = 12 * time.Second
	clickWindow        = time.Second
)

// Player is what the router drives; *service.SessionService implements it.
type Player interface {
	Play(ctx context.Context, req service.PlayRequest) (service.PlayResult, error)
	TogglePause(ctx context.Context, guildID string) (bool, error)
	Skip(ctx context.Context, guildID string) (*domain.Track, error)
	Stop(ctx context.Context, guildID string) error
}

// VoiceEvents receives the bot's own voice state and voice server updates.
type VoiceEvents interface {
	VoiceServerUpdate(ctx context.Context, guildID, token, endpoint string)
	VoiceStateUpdate(ctx context.Context, guildID, sessionID, channelID string)
}

type Presence struct {
	Name string
	Type string
}

type Router struct {
	s       *discordgo.Session
	guildID string

	player       Player
	voice        VoiceEvents
	presence     Presence
	clickLimiter *userLimiter
	log          zerolog.Logger
}

func NewRouter(s *discordgo.Session, guildID string, player Player, voice VoiceEvents, presence Presence, log zerolog.Logger) *Router {
	return &Router{
		s:            s,
		guildID:      guildID,
		player:       player,
		voice:        voice,
		presence:     presence,
		clickLimiter: newUserLimiter(clickWindow),
		log:          log.With().Str("component", "router").Logger(),
	}
}

// Register overwrites the guild's commands with ours.
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	_, err := r.s.ApplicationCommandBulkOverwrite(appID, r.guildID, Commands)
	return err
}

func (r *Router) Handlers() {
	r.s.AddHandler(r.onReady)
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		}
	})
	r.s.AddHandler(r.onVoiceStateUpdate)
	r.s.AddHandler(r.onVoiceServerUpdate)
}

func (r *Router) onReady(s *discordgo.Session, ev *discordgo.Ready) {
	r.log.Info().Str("user", ev.User.Username).Int("guilds", len(ev.Guilds)).Msg("ready")
	if r.presence.Name == "" {
		return
	}
	err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{{
			Name: r.presence.Name,
			Type: activityType(r.presence.Type),
		}},
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("update presence")
	}
}

func activityType(name string) discordgo.ActivityType {
	switch strings.ToUpper(name) {
	case "PLAYING":
		return discordgo.ActivityTypeGame
	case "STREAMING":
		return discordgo.ActivityTypeStreaming
	case "WATCHING":
		return discordgo.ActivityTypeWatching
	case "COMPETING":
		return discordgo.ActivityTypeCompeting
	case "CUSTOM":
		return discordgo.ActivityTypeCustom
	}
	return discordgo.ActivityTypeListening
}

// Dispatch turns an interaction into the reply the user should see.
func (r *Router) Dispatch(ctx context.Context, in Interaction) (reply Reply) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("name", in.Name).Msg("panic in dispatch")
			reply = Reply{Content: "❌ Something went wrong.", Ephemeral: in.Kind == KindButton}
		}
	}()
	switch in.Kind {
	case KindCommand:
		return r.dispatchCommand(ctx, in)
	case KindButton:
		return r.dispatchButton(ctx, in)
	}
	return Reply{}
}
