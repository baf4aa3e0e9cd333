package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestParseEmoji(t *testing.T) {
	tests := []struct {
		in   string
		want *discordgo.ComponentEmoji
	}{
		{"", nil},
		{"⏯️", &discordgo.ComponentEmoji{Name: "⏯️"}},
		{"<:pause:1234>", &discordgo.ComponentEmoji{Name: "pause", ID: "1234"}},
		{"<a:spin:99>", &discordgo.ComponentEmoji{Name: "spin", ID: "99", Animated: true}},
		{"<:broken>", &discordgo.ComponentEmoji{Name: "<:broken>"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseEmoji(tt.in), tt.in)
	}
}

func TestActivityType(t *testing.T) {
	assert.Equal(t, discordgo.ActivityTypeListening, activityType("LISTENING"))
	assert.Equal(t, discordgo.ActivityTypeGame, activityType("playing"))
	assert.Equal(t, discordgo.ActivityTypeListening, activityType(""))
}
