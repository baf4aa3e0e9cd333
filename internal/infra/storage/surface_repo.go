package storage

import (
	"context"
	"database/sql"

	pq "github.com/lib/pq"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

// SurfaceRepo persiste qué mensaje muestra cada superficie (canal + rol).
type SurfaceRepo struct{ db *sql.DB }

func NewSurfaceRepo(db *sql.DB) *SurfaceRepo { return &SurfaceRepo{db: db} }

func (r *SurfaceRepo) LoadSurfaces(ctx context.Context) ([]domain.SurfaceRef, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT channel_id, role, message_id, updated_at
  FROM surface_refs
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SurfaceRef
	for rows.Next() {
		var ref domain.SurfaceRef
		if err := rows.Scan(&ref.ChannelID, &ref.Role, &ref.MessageID, &ref.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *SurfaceRepo) SaveSurface(ctx context.Context, ref domain.SurfaceRef) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO surface_refs (channel_id, role, message_id)
VALUES ($1,$2,$3)
ON CONFLICT (channel_id, role) DO UPDATE SET
  message_id = EXCLUDED.message_id,
  updated_at = now()
`, ref.ChannelID, ref.Role, ref.MessageID)
	return err
}

func (r *SurfaceRepo) DeleteSurface(ctx context.Context, key domain.SurfaceKey) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM surface_refs
 WHERE channel_id = $1 AND role = $2
`, key.ChannelID, key.Role)
	return err
}

// ForgetChannels borra todas las refs de esos canales (p.ej. después de un purge).
func (r *SurfaceRepo) ForgetChannels(ctx context.Context, channelIDs []string) error {
	if len(channelIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
DELETE FROM surface_refs
 WHERE channel_id = ANY($1)
`, pq.Array(channelIDs))
	return err
}
