package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/infinity-music-bot/internal/infra/config"
)

// handler borra refs de superficies que nadie editó en el período de retención
// (canales borrados, dashboards movidos de canal, etc).
func handler(ctx context.Context) (string, error) {
	cfg, err := config.LoadJanitor()
	if err != nil {
		return err.Error(), nil
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cfg.Retention)
	tag, err := pool.Exec(cctx, `DELETE FROM surface_refs WHERE updated_at < $1;`, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("prune surface refs")
		return fmt.Sprintf("prune: %v", err), nil
	}
	log.Info().Int64("deleted", tag.RowsAffected()).Time("cutoff", cutoff).Msg("pruned surface refs")
	return fmt.Sprintf("ok: %d pruned", tag.RowsAffected()), nil
}

func main() { lambda.Start(handler) }
