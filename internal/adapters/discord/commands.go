package discord

import "github.com/bwmarrin/discordgo"

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "play",
		Description: "Play music",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "query",
			Description: "Song name/URL",
			Required:    true,
		}},
	},
	{
		Name:        "skip",
		Description: "Skip current song",
	},
	{
		Name:        "stop",
		Description: "Stop and leave",
	},
}
