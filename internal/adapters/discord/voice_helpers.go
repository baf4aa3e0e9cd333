package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// VoiceBridge joins and leaves voice channels through the gateway only (op 4).
// Audio goes through the backend, which receives our voice credentials.
type VoiceBridge struct {
	s *discordgo.Session
}

func NewVoiceBridge(s *discordgo.Session) *VoiceBridge {
	return &VoiceBridge{s: s}
}

func (v *VoiceBridge) Join(guildID, channelID string) error {
	return v.s.ChannelVoiceJoinManual(guildID, channelID, false, true)
}

func (v *VoiceBridge) Leave(guildID string) error {
	return v.s.ChannelVoiceJoinManual(guildID, "", false, true)
}

func (r *Router) userVoiceChannel(guildID, userID string) string {
	vs, err := r.s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// sólo nos interesa el estado de voz del propio bot
func (r *Router) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if s.State.User == nil || vs.UserID != s.State.User.ID {
		return
	}
	r.voice.VoiceStateUpdate(context.Background(), vs.GuildID, vs.SessionID, vs.ChannelID)
}

func (r *Router) onVoiceServerUpdate(s *discordgo.Session, ev *discordgo.VoiceServerUpdate) {
	r.voice.VoiceServerUpdate(context.Background(), ev.GuildID, ev.Token, ev.Endpoint)
}
