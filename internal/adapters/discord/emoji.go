package discord

import (
	"regexp"

	"github.com/bwmarrin/discordgo"
)

var reCustomEmoji = regexp.MustCompile(`^<(a?):([A-Za-z0-9_~]+):(\d+)>$`)

// parseEmoji accepts a unicode emoji or a custom one written as <:name:id> / <a:name:id>.
func parseEmoji(raw string) *discordgo.ComponentEmoji {
	if raw == "" {
		return nil
	}
	if m := reCustomEmoji.FindStringSubmatch(raw); len(m) == 4 {
		return &discordgo.ComponentEmoji{Name: m[2], ID: m[3], Animated: m[1] == "a"}
	}
	return &discordgo.ComponentEmoji{Name: raw}
}
