package discord

import (
	"context"
	"time"

	embed "github.com/Clinet/discordgo-embed"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/app/service"
	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

const (
	embedColor    = 0x2B2D31
	purgeScan     = 100
	bulkDeleteMax = 14 * 24 * time.Hour
)

// custom ids de los botones del panel
const (
	buttonPause = "pause"
	buttonSkip  = "skip"
	buttonStop  = "stop"
)

type PanelEmojis struct {
	NowPlaying string
	Pause      string
	Skip       string
	Stop       string
}

// ControlAttacher binds a sent panel to its session.
type ControlAttacher interface {
	AttachControlMessage(guildID, sessionID, messageID string) (previous string, ok bool)
}

// ControlPanel posts the now-playing panel when a track starts and clears the text
// channel when the session ends.
type ControlPanel struct {
	api      MessageAPI
	sessions ControlAttacher
	surfaces *Surfaces
	botID    string
	emojis   PanelEmojis
	log      zerolog.Logger
	now      func() time.Time
}

func NewControlPanel(api MessageAPI, sessions ControlAttacher, surfaces *Surfaces, botID string, emojis PanelEmojis, log zerolog.Logger) *ControlPanel {
	return &ControlPanel{
		api:      api,
		sessions: sessions,
		surfaces: surfaces,
		botID:    botID,
		emojis:   emojis,
		log:      log.With().Str("component", "panel").Logger(),
		now:      time.Now,
	}
}

func (p *ControlPanel) SessionStarted(ctx context.Context, s service.SessionView, t domain.Track) {
	if s.TextChannelID == "" {
		return
	}
	log := p.log.With().Str("guild", s.GuildID).Str("session", s.ID).Logger()
	defer step("panel.started")()

	msg, err := p.api.ChannelMessageSendComplex(s.TextChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{p.renderNowPlaying(t)},
		Components: p.controls(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Msg("send control panel")
		return
	}

	prev, ok := p.sessions.AttachControlMessage(s.GuildID, s.ID, msg.ID)
	if !ok {
		// la sesión ya no existe: el panel quedó huérfano
		p.delete(ctx, s.TextChannelID, msg.ID)
		return
	}
	if prev != "" && prev != msg.ID {
		p.delete(ctx, s.TextChannelID, prev)
	}
}

func (p *ControlPanel) SessionDestroyed(ctx context.Context, s service.SessionView) {
	if s.TextChannelID == "" {
		return
	}
	p.Purge(ctx, s.TextChannelID)
}

// Purge deletes the bot's own messages among the latest 100 in the channel.
// Messages older than 14 days cannot be bulk deleted and are left alone.
func (p *ControlPanel) Purge(ctx context.Context, channelID string) {
	log := p.log.With().Str("channel", channelID).Logger()
	defer step("panel.purge")()

	msgs, err := p.api.ChannelMessages(channelID, purgeScan, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Msg("fetch messages for purge")
		return
	}
	cutoff := p.now().Add(-bulkDeleteMax)
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Author == nil || m.Author.ID != p.botID {
			continue
		}
		if !m.Timestamp.IsZero() && m.Timestamp.Before(cutoff) {
			continue
		}
		ids = append(ids, m.ID)
	}

	switch len(ids) {
	case 0:
	case 1:
		// bulk delete exige al menos 2
		p.delete(ctx, channelID, ids[0])
	default:
		if err := p.api.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err != nil {
			log.Warn().Err(err).Int("count", len(ids)).Msg("bulk delete")
		}
	}
	if p.surfaces != nil {
		p.surfaces.ForgetChannel(ctx, channelID)
	}
	log.Debug().Int("deleted", len(ids)).Msg("purged")
}

func (p *ControlPanel) delete(ctx context.Context, channelID, messageID string) {
	err := p.api.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil && !isUnknownMessage(err) {
		p.log.Warn().Err(err).Str("channel", channelID).Str("message", messageID).Msg("delete message")
	}
}

func (p *ControlPanel) renderNowPlaying(t domain.Track) *discordgo.MessageEmbed {
	title := t.Title
	if t.URI != "" {
		title = "[" + t.Title + "](" + t.URI + ")"
	}
	duration := domain.MsToTime(t.DurationMs)
	if t.IsStream {
		duration = "LIVE"
	}

	e := embed.NewEmbed().
		SetTitle(p.emojis.NowPlaying + " Now Playing").
		SetDescription(title + "\nRequested by: " + t.RequesterMention()).
		SetColor(embedColor)
	if t.Author != "" {
		e = e.AddField("Author", t.Author)
	}
	e = e.AddField("Duration", duration)
	if t.Thumbnail != "" {
		e = e.SetThumbnail(t.Thumbnail)
	}
	return e.MessageEmbed
}

func (p *ControlPanel) controls() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Style: discordgo.PrimaryButton, CustomID: buttonPause, Emoji: parseEmoji(p.emojis.Pause)},
				discordgo.Button{Style: discordgo.SecondaryButton, CustomID: buttonSkip, Emoji: parseEmoji(p.emojis.Skip)},
				discordgo.Button{Style: discordgo.DangerButton, CustomID: buttonStop, Emoji: parseEmoji(p.emojis.Stop)},
			},
		},
	}
}
