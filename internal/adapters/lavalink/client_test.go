package lavalink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

const trackJSON = `{"encoded":"QAAA1","info":{"identifier":"abc","isSeekable":true,"author":"Rick Astley","length":213000,"isStream":false,"position":0,"title":"Never Gonna Give You Up","uri":"https://youtu.be/abc","artworkUrl":"https://img/abc.jpg","sourceName":"youtube"}}`

func newTestNode(t *testing.T, h http.HandlerFunc) *Node {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	n := NewNode(NodeConfig{Name: "main", Address: strings.TrimPrefix(srv.URL, "http://"), Password: "pw"}, "42", nil)
	n.connected = true
	n.sessionID = "sess1"
	return n
}

func TestLoadTracks(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		titles []string
	}{
		{"track", `{"loadType":"track","data":` + trackJSON + `}`, []string{"Never Gonna Give You Up"}},
		{"search", `{"loadType":"search","data":[` + trackJSON + `,` + strings.Replace(trackJSON, "Never Gonna Give You Up", "Second", 1) + `]}`, []string{"Never Gonna Give You Up", "Second"}},
		{"playlist", `{"loadType":"playlist","data":{"info":{"name":"pl","selectedTrack":1},"tracks":[` + trackJSON + `,` + strings.Replace(trackJSON, "Never Gonna Give You Up", "Selected", 1) + `]}}`, []string{"Selected"}},
		{"empty", `{"loadType":"empty","data":{}}`, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v4/loadtracks", r.URL.Path)
				assert.Equal(t, "ytsearch:rick", r.URL.Query().Get("identifier"))
				assert.Equal(t, "pw", r.Header.Get("Authorization"))
				_, _ = io.WriteString(w, c.body)
			})
			tracks, err := n.LoadTracks(context.Background(), "ytsearch:rick")
			require.NoError(t, err)
			var got []string
			for _, tr := range tracks {
				got = append(got, tr.Title)
			}
			assert.Equal(t, c.titles, got)
		})
	}
}

func TestLoadTracksConvertsInfo(t *testing.T) {
	n := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"loadType":"track","data":`+trackJSON+`}`)
	})
	tracks, err := n.LoadTracks(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, domain.Track{
		Encoded:    "QAAA1",
		Title:      "Never Gonna Give You Up",
		URI:        "https://youtu.be/abc",
		Author:     "Rick Astley",
		DurationMs: 213000,
		Thumbnail:  "https://img/abc.jpg",
	}, tracks[0])
}

func TestLoadTracksErrors(t *testing.T) {
	n := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"loadType":"error","data":{"message":"blocked","severity":"common","cause":"x"}}`)
	})
	_, err := n.LoadTracks(context.Background(), "ytsearch:x")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "blocked", le.Message)

	n = newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":401,"error":"Unauthorized","message":"bad password","path":"/v4/loadtracks"}`)
	})
	_, err = n.LoadTracks(context.Background(), "ytsearch:x")
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 401, ae.Status)
	assert.Equal(t, "bad password", ae.Message)
}

func TestClusterPlayerRequests(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []call
	n := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			b, _ := io.ReadAll(r.Body)
			if len(b) > 0 {
				assert.NoError(t, json.Unmarshal(b, &c.body))
			}
		}
		calls = append(calls, c)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	})
	cl := &Cluster{nodes: []*Node{n}, assign: map[string]*Node{}, log: zerolog.Nop()}
	ctx := context.Background()

	require.NoError(t, cl.UpdateVoice(ctx, "g1", domain.VoiceServer{Token: "t", Endpoint: "e", SessionID: "s"}))
	require.NoError(t, cl.Play(ctx, "g1", domain.Track{Encoded: "QAAA1"}))
	require.NoError(t, cl.Pause(ctx, "g1", true))
	require.NoError(t, cl.Stop(ctx, "g1"))
	require.NoError(t, cl.Destroy(ctx, "g1"))

	require.Len(t, calls, 5)
	for _, c := range calls[:4] {
		assert.Equal(t, http.MethodPatch, c.method)
		assert.Equal(t, "/v4/sessions/sess1/players/g1", c.path)
	}
	assert.Equal(t, map[string]any{"token": "t", "endpoint": "e", "sessionId": "s"}, calls[0].body["voice"])
	assert.Equal(t, map[string]any{"encoded": "QAAA1"}, calls[1].body["track"])
	assert.Equal(t, false, calls[1].body["paused"])
	assert.Equal(t, true, calls[2].body["paused"])
	assert.Equal(t, map[string]any{"encoded": nil}, calls[3].body["track"])
	assert.Equal(t, http.MethodDelete, calls[4].method)

	// a destroyed guild is unassigned; destroying again is a no-op
	require.NoError(t, cl.Destroy(ctx, "g1"))
	assert.Len(t, calls, 5)
}

func TestClusterSearchTagsRequester(t *testing.T) {
	n := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "scsearch:lofi", r.URL.Query().Get("identifier"))
		_, _ = io.WriteString(w, `{"loadType":"search","data":[`+trackJSON+`]}`)
	})
	cl := &Cluster{nodes: []*Node{n}, assign: map[string]*Node{}, engine: "soundcloud", log: zerolog.Nop()}
	tracks, err := cl.Search(context.Background(), "lofi", "u1")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "u1", tracks[0].Requester)
}

func TestClusterWithoutUsableNode(t *testing.T) {
	n := NewNode(NodeConfig{Name: "down", Address: "127.0.0.1:1"}, "42", nil)
	cl := &Cluster{nodes: []*Node{n}, assign: map[string]*Node{}, log: zerolog.Nop()}
	_, err := cl.Search(context.Background(), "x", "u")
	assert.ErrorIs(t, err, ErrNoNode)
	assert.ErrorIs(t, cl.Play(context.Background(), "g", domain.Track{}), ErrNoNode)
}

func TestSearchIdentifier(t *testing.T) {
	assert.Equal(t, "ytsearch:hello world", SearchIdentifier(" hello world ", "youtube"))
	assert.Equal(t, "ytmsearch:x", SearchIdentifier("x", "youtube_music"))
	assert.Equal(t, "https://youtu.be/abc", SearchIdentifier("https://youtu.be/abc", "youtube"))
	assert.Equal(t, "amsearch:x", SearchIdentifier("x", "amsearch"))
	assert.Equal(t, "ytsearch:x", SearchIdentifier("x", ""))
}
