package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	pq "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

func newMock(t *testing.T) (*SurfaceRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSurfaceRepo(db), mock
}

func TestSurfaceRepoLoad(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT channel_id, role, message_id, updated_at")).
		WillReturnRows(sqlmock.NewRows([]string{"channel_id", "role", "message_id", "updated_at"}).
			AddRow("c1", "Infinity Music Nodes", "m1", now).
			AddRow("c2", "Infinity Music Nodes", "m2", now))

	refs, err := repo.LoadSurfaces(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, domain.SurfaceKey{ChannelID: "c1", Role: "Infinity Music Nodes"}, refs[0].SurfaceKey)
	assert.Equal(t, "m2", refs[1].MessageID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurfaceRepoSaveAndDelete(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()
	key := domain.SurfaceKey{ChannelID: "c1", Role: "r"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO surface_refs")).
		WithArgs("c1", "r", "m9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SaveSurface(ctx, domain.SurfaceRef{SurfaceKey: key, MessageID: "m9"}))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM surface_refs")).
		WithArgs("c1", "r").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteSurface(ctx, key))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurfaceRepoForgetChannels(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	require.NoError(t, repo.ForgetChannels(ctx, nil))

	mock.ExpectExec(regexp.QuoteMeta("WHERE channel_id = ANY($1)")).
		WithArgs(pq.Array([]string{"c1", "c2"})).
		WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, repo.ForgetChannels(ctx, []string{"c1", "c2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
