package discord

import (
	"time"

	"github.com/rs/zerolog/log"
)

func step(label string) func() {
	start := time.Now()
	return func() { log.Debug().Str("step", label).Dur("dur", time.Since(start)).Msg("trace") }
}
