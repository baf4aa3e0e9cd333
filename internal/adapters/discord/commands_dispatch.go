// lógica de InteractionApplicationCommand: resolvemos la interacción y despachamos al Player
package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/infinity-music-bot/internal/app/service"
)

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	uid := userID(ic)
	r.log.Info().Str("cmd", cmd.Name).Str("by", uid).Str("guild", ic.GuildID).Msg("slash")

	_ = DeferPublic(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	in := Interaction{
		Kind:      KindCommand,
		Name:      cmd.Name,
		GuildID:   ic.GuildID,
		ChannelID: ic.ChannelID,
		UserID:    uid,
	}
	in.Query, _ = optStr(ic, "query")
	if cmd.Name == "play" {
		in.VoiceChannelID = r.userVoiceChannel(ic.GuildID, uid)
	}

	defer step("cmd." + cmd.Name)()
	sendReply(s, ic, r.Dispatch(ctx, in))
}

func (r *Router) dispatchCommand(ctx context.Context, in Interaction) Reply {
	switch in.Name {

	//--> buscar y encolar
	case "play":
		res, err := r.player.Play(ctx, service.PlayRequest{
			GuildID:        in.GuildID,
			TextChannelID:  in.ChannelID,
			VoiceChannelID: in.VoiceChannelID,
			Query:          in.Query,
			Requester:      in.UserID,
		})
		switch {
		case errors.Is(err, service.ErrNoVoiceChannel):
			return Reply{Content: "Join a VC first!"}
		case errors.Is(err, service.ErrNoResults):
			return Reply{Content: "No results!"}
		case errors.Is(err, service.ErrVoiceTimeout):
			return Reply{Content: "⚠️ Could not connect to your voice channel."}
		case err != nil:
			r.log.Warn().Err(err).Str("guild", in.GuildID).Msg("play")
			return Reply{Content: "⚠️ Could not play that: " + err.Error()}
		}
		return Reply{Content: "Added **" + res.Track.Title + "** to queue!"}

	case "skip":
		if _, err := r.player.Skip(ctx, in.GuildID); err != nil {
			return commandError(err)
		}
		return Reply{Content: "Skipped!"}

	case "stop":
		if err := r.player.Stop(ctx, in.GuildID); err != nil {
			return commandError(err)
		}
		return Reply{Content: "Stopped and disconnected."}
	}
	return Reply{Content: "Unknown command."}
}

func commandError(err error) Reply {
	if errors.Is(err, service.ErrNoSession) {
		return Reply{Content: "Nothing playing."}
	}
	return Reply{Content: "⚠️ " + err.Error()}
}
