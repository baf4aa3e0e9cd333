package lavalink

import "encoding/json"

// --- REST ---

type trackInfoDTO struct {
	Identifier string `json:"identifier"`
	IsSeekable bool   `json:"isSeekable"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	Position   int64  `json:"position"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	ArtworkURL string `json:"artworkUrl"`
	ISRC       string `json:"isrc"`
	SourceName string `json:"sourceName"`
}

type trackDTO struct {
	Encoded string       `json:"encoded"`
	Info    trackInfoDTO `json:"info"`
}

type playlistDTO struct {
	Info struct {
		Name          string `json:"name"`
		SelectedTrack int    `json:"selectedTrack"`
	} `json:"info"`
	Tracks []trackDTO `json:"tracks"`
}

type exceptionDTO struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Cause    string `json:"cause"`
}

type loadResultDTO struct {
	LoadType string          `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

const (
	loadTrack    = "track"
	loadPlaylist = "playlist"
	loadSearch   = "search"
	loadEmpty    = "empty"
	loadError    = "error"
)

// encoded is a pointer so that a stop can send an explicit null.
type updateTrackDTO struct {
	Encoded *string `json:"encoded"`
}

type voiceDTO struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
	ChannelID string `json:"channelId,omitempty"`
}

type updatePlayerDTO struct {
	Track  *updateTrackDTO `json:"track,omitempty"`
	Paused *bool           `json:"paused,omitempty"`
	Voice  *voiceDTO       `json:"voice,omitempty"`
}

type errorBodyDTO struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// --- websocket ---

type wsMessage struct {
	Op string `json:"op"`

	// ready
	Resumed   bool   `json:"resumed"`
	SessionID string `json:"sessionId"`

	// stats
	Players        int   `json:"players"`
	PlayingPlayers int   `json:"playingPlayers"`
	Uptime         int64 `json:"uptime"`
	Memory         *struct {
		Free       uint64 `json:"free"`
		Used       uint64 `json:"used"`
		Allocated  uint64 `json:"allocated"`
		Reservable uint64 `json:"reservable"`
	} `json:"memory"`
	CPU *struct {
		Cores        int     `json:"cores"`
		SystemLoad   float64 `json:"systemLoad"`
		LavalinkLoad float64 `json:"lavalinkLoad"`
	} `json:"cpu"`

	// event / playerUpdate
	Type        string        `json:"type"`
	GuildID     string        `json:"guildId"`
	Track       *trackDTO     `json:"track"`
	Reason      string        `json:"reason"`
	Exception   *exceptionDTO `json:"exception"`
	ThresholdMs int64         `json:"thresholdMs"`
	Code        int           `json:"code"`
	ByRemote    bool          `json:"byRemote"`
}
