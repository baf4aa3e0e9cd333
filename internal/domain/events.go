package domain

type EventKind int

const (
	EventNodeReady EventKind = iota
	EventNodeError
	EventNodeClosed
	EventTrackStart
	EventTrackEnd
	EventTrackException
	EventTrackStuck
	EventVoiceClosed
)

func (k EventKind) String() string {
	switch k {
	case EventNodeReady:
		return "node_ready"
	case EventNodeError:
		return "node_error"
	case EventNodeClosed:
		return "node_closed"
	case EventTrackStart:
		return "track_start"
	case EventTrackEnd:
		return "track_end"
	case EventTrackException:
		return "track_exception"
	case EventTrackStuck:
		return "track_stuck"
	case EventVoiceClosed:
		return "voice_closed"
	}
	return "unknown"
}

// IsNode reports whether the event is about node connectivity rather than a player.
func (k EventKind) IsNode() bool {
	return k == EventNodeReady || k == EventNodeError || k == EventNodeClosed
}

// Track end reasons as sent by Lavalink.
const (
	EndFinished   = "finished"
	EndLoadFailed = "loadFailed"
	EndStopped    = "stopped"
	EndReplaced   = "replaced"
	EndCleanup    = "cleanup"
)

// BackendEvent is everything the audio backend tells us, flattened.
type BackendEvent struct {
	Kind     EventKind
	Node     string
	GuildID  string
	Track    string // encoded
	Reason   string
	Code     int
	ByRemote bool
	Err      error
}

// MayStartNext reports whether a track end should advance the queue.
func (e BackendEvent) MayStartNext() bool {
	switch e.Reason {
	case EndFinished, EndLoadFailed, EndStopped:
		return true
	}
	return false
}
