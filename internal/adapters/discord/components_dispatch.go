package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/infinity-music-bot/internal/app/service"
)

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	uid := userID(ic)

	_ = DeferEphemeral(s, ic)

	if !r.clickLimiter.Allow(uid) {
		ReplyEphemeral(s, ic, "⏳ Wait a second…")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	defer step("component." + data.CustomID)()

	sendReply(s, ic, r.Dispatch(ctx, Interaction{
		Kind:      KindButton,
		Name:      data.CustomID,
		GuildID:   ic.GuildID,
		ChannelID: ic.ChannelID,
		UserID:    uid,
	}))
}

func (r *Router) dispatchButton(ctx context.Context, in Interaction) Reply {
	switch in.Name {
	case buttonPause:
		paused, err := r.player.TogglePause(ctx, in.GuildID)
		if err != nil {
			return buttonError(err)
		}
		if paused {
			return Reply{Content: "Paused!", Ephemeral: true}
		}
		return Reply{Content: "Resumed!", Ephemeral: true}

	case buttonSkip:
		if _, err := r.player.Skip(ctx, in.GuildID); err != nil {
			return buttonError(err)
		}
		return Reply{Content: "Skipped via button!", Ephemeral: true}

	case buttonStop:
		if err := r.player.Stop(ctx, in.GuildID); err != nil {
			return buttonError(err)
		}
		return Reply{Content: "Stopped via button!", Ephemeral: true}
	}
	return Reply{}
}

func buttonError(err error) Reply {
	if errors.Is(err, service.ErrNoSession) {
		return Reply{Content: "No active player.", Ephemeral: true}
	}
	return Reply{Content: "⚠️ " + err.Error(), Ephemeral: true}
}
