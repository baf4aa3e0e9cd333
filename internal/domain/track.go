package domain

// Track is a playable item resolved by the audio backend.
// Encoded is the backend's opaque handle and is what gets sent back to play it.
type Track struct {
	Encoded    string
	Title      string
	URI        string
	Author     string
	DurationMs int64
	IsStream   bool
	Thumbnail  string
	Requester  string // user id of whoever asked for it
}

// RequesterMention renders the requester as a Discord mention.
func (t Track) RequesterMention() string {
	if t.Requester == "" {
		return "unknown"
	}
	return "<@" + t.Requester + ">"
}
