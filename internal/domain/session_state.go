package domain

type SessionState int

const (
	SessionIdle SessionState = iota
	SessionActive
	SessionPaused
	SessionDestroyed
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionActive:
		return "active"
	case SessionPaused:
		return "paused"
	case SessionDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// VoiceServer holds what the audio backend needs to join a voice channel on our behalf.
type VoiceServer struct {
	Token     string
	Endpoint  string
	SessionID string
	ChannelID string
}

// Complete reports whether every credential has arrived from the gateway.
func (v VoiceServer) Complete() bool {
	return v.Token != "" && v.Endpoint != "" && v.SessionID != ""
}
