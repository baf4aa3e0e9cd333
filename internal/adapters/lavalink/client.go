package lavalink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

// LoadTracks resolves an identifier (URL or "ytsearch:..." style query).
// Search results keep Lavalink's ranking; a playlist yields its tracks starting at the selected one.
func (n *Node) LoadTracks(ctx context.Context, identifier string) ([]domain.Track, error) {
	q := url.Values{}
	q.Set("identifier", identifier)

	var dto loadResultDTO
	if err := n.doJSON(ctx, http.MethodGet, "/loadtracks", q, nil, &dto); err != nil {
		return nil, err
	}

	switch dto.LoadType {
	case loadEmpty:
		return nil, nil
	case loadError:
		var ex exceptionDTO
		_ = json.Unmarshal(dto.Data, &ex)
		return nil, &LoadError{Message: ex.Message, Severity: ex.Severity, Cause: ex.Cause}
	case loadTrack:
		var t trackDTO
		if err := json.Unmarshal(dto.Data, &t); err != nil {
			return nil, fmt.Errorf("lavalink decode track: %w", err)
		}
		return []domain.Track{convertTrack(t)}, nil
	case loadSearch:
		var ts []trackDTO
		if err := json.Unmarshal(dto.Data, &ts); err != nil {
			return nil, fmt.Errorf("lavalink decode search: %w", err)
		}
		return convertTracks(ts), nil
	case loadPlaylist:
		var pl playlistDTO
		if err := json.Unmarshal(dto.Data, &pl); err != nil {
			return nil, fmt.Errorf("lavalink decode playlist: %w", err)
		}
		tracks := pl.Tracks
		if sel := pl.Info.SelectedTrack; sel > 0 && sel < len(tracks) {
			tracks = tracks[sel:]
		}
		return convertTracks(tracks), nil
	}
	return nil, fmt.Errorf("lavalink: unknown load type %q", dto.LoadType)
}

func (n *Node) playerPath(guildID string) (string, error) {
	sid := n.Session()
	if sid == "" {
		return "", ErrNodeNotReady
	}
	return fmt.Sprintf("/sessions/%s/players/%s", sid, guildID), nil
}

func (n *Node) updatePlayer(ctx context.Context, guildID string, upd updatePlayerDTO) error {
	path, err := n.playerPath(guildID)
	if err != nil {
		return err
	}
	q := url.Values{}
	q.Set("noReplace", "false")
	return n.doJSON(ctx, http.MethodPatch, path, q, upd, nil)
}

func (n *Node) destroyPlayer(ctx context.Context, guildID string) error {
	path, err := n.playerPath(guildID)
	if err != nil {
		return err
	}
	return n.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

func convertTrack(t trackDTO) domain.Track {
	return domain.Track{
		Encoded:    t.Encoded,
		Title:      t.Info.Title,
		URI:        t.Info.URI,
		Author:     t.Info.Author,
		DurationMs: t.Info.Length,
		IsStream:   t.Info.IsStream,
		Thumbnail:  t.Info.ArtworkURL,
	}
}

func convertTracks(ts []trackDTO) []domain.Track {
	out := make([]domain.Track, 0, len(ts))
	for _, t := range ts {
		out = append(out, convertTrack(t))
	}
	return out
}
