package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	embed "github.com/Clinet/discordgo-embed"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

// StatusBoard publishes node health into the dashboard channel through Surfaces.
type StatusBoard struct {
	surfaces  *Surfaces
	channelID string
	iconURL   string
	log       zerolog.Logger
}

func NewStatusBoard(surfaces *Surfaces, channelID, iconURL string, log zerolog.Logger) *StatusBoard {
	return &StatusBoard{
		surfaces:  surfaces,
		channelID: channelID,
		iconURL:   iconURL,
		log:       log.With().Str("component", "status").Logger(),
	}
}

func (b *StatusBoard) PublishStatus(ctx context.Context, r domain.StatusReport) {
	if b.channelID == "" {
		return
	}
	defer step("status.publish")()
	res := b.surfaces.Upsert(ctx, b.channelID, RoleDashboard, Payload{
		Embeds: []*discordgo.MessageEmbed{RenderStatus(r, b.iconURL)},
	})
	ev := b.log.Debug()
	if res.Outcome == OutcomeFailed {
		ev = b.log.Warn().Err(res.Err)
	}
	ev.Str("outcome", res.Outcome.String()).Str("message", res.MessageID).Str("health", r.Health.String()).Msg("dashboard")
}

// RenderStatus builds the dashboard embed: a block per node, the aggregate health
// and the refresh time as a relative timestamp.
func RenderStatus(r domain.StatusReport, iconURL string) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, n := range r.Nodes {
		fmt.Fprintf(&b, "\n### Node: %s\n", n.Name)
		if !n.Connected {
			b.WriteString("**❌ Offline**\n")
			continue
		}
		b.WriteString("**✅ Operational**\n")
		fmt.Fprintf(&b, "```\nPlayers: %d (%d playing)\nUptime: %s\nMemory: %s / %s\nLoad: %.2f%%\n```",
			n.Players, n.PlayingPlayers,
			domain.MsToTime(n.UptimeMs),
			humanize.IBytes(n.MemoryUsedBytes), humanize.IBytes(n.MemoryReservableBytes),
			n.BackendLoad*100,
		)
	}
	if len(r.Nodes) == 0 {
		b.WriteString("\nNo nodes configured.\n")
	}
	fmt.Fprintf(&b, "\n**Status:** %s", statusLine(r.Health))
	fmt.Fprintf(&b, "\n**Last Refresh:** <t:%d:R>", r.GeneratedAt.Unix())

	args := []string{string(RoleDashboard)}
	if iconURL != "" {
		args = append(args, iconURL)
	}
	e := embed.NewEmbed().
		SetAuthor(args...).
		SetDescription(b.String()).
		SetColor(embedColor)
	e.Timestamp = r.GeneratedAt.UTC().Format(time.RFC3339)
	return e.MessageEmbed
}

func statusLine(h domain.Health) string {
	if h == domain.HealthPartial {
		return "⚠️ Some nodes are down, service is " + h.String()
	}
	return "🟢 All systems " + h.String()
}
