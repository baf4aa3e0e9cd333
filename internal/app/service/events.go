package service

import (
	"context"
	"sync"
	"time"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

const (
	eventTimeout = 15 * time.Second
	laneBuffer   = 32
)

// PumpEvents drains the audio backend's event stream. Node connectivity changes kick
// the dashboard; player events go to the session registry through one ordered lane
// per guild, so a slow call in one guild never holds up another.
// It returns once ctx is done or events is closed and every lane has drained.
func PumpEvents(ctx context.Context, events <-chan domain.BackendEvent, sessions *SessionService, dash *DashboardService) {
	var wg sync.WaitGroup
	lanes := map[string]chan domain.BackendEvent{}
	defer func() {
		for _, ch := range lanes {
			close(ch)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind.IsNode() {
				if dash != nil {
					dash.Trigger(ctx)
				}
				continue
			}
			if sessions == nil || ev.GuildID == "" {
				continue
			}
			lane, ok := lanes[ev.GuildID]
			if !ok {
				lane = make(chan domain.BackendEvent, laneBuffer)
				lanes[ev.GuildID] = lane
				wg.Add(1)
				go func() {
					defer wg.Done()
					for ev := range lane {
						ectx, cancel := context.WithTimeout(ctx, eventTimeout)
						sessions.HandleEvent(ectx, ev)
						cancel()
					}
				}()
			}
			select {
			case lane <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
