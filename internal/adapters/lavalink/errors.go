package lavalink

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNoNode       = errors.New("no connected lavalink node")
	ErrNodeNotReady = errors.New("lavalink node has no session yet")
)

type APIError struct {
	Status  int
	Message string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lavalink api status %d on %s: %s", e.Status, e.Path, e.Message)
}

// LoadError is returned when Lavalink answers loadType=error.
type LoadError struct {
	Message  string
	Severity string
	Cause    string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("lavalink load failed (%s): %s", e.Severity, e.Message)
}
