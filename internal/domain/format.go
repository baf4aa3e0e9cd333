package domain

import "fmt"

// MsToTime formats a millisecond duration as "1h 2m 3s" or "2m 3s".
// Hours are not wrapped at a day so the output keeps growing with the input.
func MsToTime(ms int64) string {
	if ms <= 0 {
		return "0s"
	}
	seconds := (ms / 1000) % 60
	minutes := (ms / (1000 * 60)) % 60
	hours := ms / (1000 * 60 * 60)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
