package domain

import "time"

// SurfaceKey identifies a single persistent bot message: one per channel and role.
type SurfaceKey struct {
	ChannelID string
	Role      string
}

// SurfaceRef is a persisted pointer to the message currently showing a surface.
type SurfaceRef struct {
	SurfaceKey
	MessageID string
	UpdatedAt time.Time
}
