package discord

type InteractionKind int

const (
	KindCommand InteractionKind = iota
	KindButton
)

// Interaction is the part of an InteractionCreate that dispatch looks at, resolved
// up front (voice channel included) so dispatch never touches the gateway.
type Interaction struct {
	Kind           InteractionKind
	Name           string // command name o custom id del botón
	GuildID        string
	ChannelID      string
	UserID         string
	VoiceChannelID string
	Query          string
}

type Reply struct {
	Content   string
	Ephemeral bool
}
