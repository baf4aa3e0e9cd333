package discord

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter allows one click per user per window.
type userLimiter struct {
	mu  sync.Mutex
	lim map[string]*rate.Limiter
	win time.Duration
}

func newUserLimiter(window time.Duration) *userLimiter {
	return &userLimiter{lim: map[string]*rate.Limiter{}, win: window}
}

func (l *userLimiter) Allow(userID string) bool {
	l.mu.Lock()
	lim, ok := l.lim[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.win), 1)
		l.lim[userID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
