package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/repositories"
	tmocks "github.com/avatarctic/plate-checker/go/test/mocks"
)

func TestCachedResultRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	backing := tmocks.NewMapCache()
	repo := repositories.NewCachedResultRepository(backing, 5*time.Minute)
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	want := plate.Result{Status: plate.StatusTaken, Message: plate.MessageTaken}

	require.NoError(t, repo.Put(ctx, "AB1", want, t0))
	require.Equal(t, 5*time.Minute+time.Second, backing.TTLs["plate:result:AB1"])

	got, ok, err := repo.Get(ctx, "AB1", t0.Add(299_999*time.Millisecond))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, *got)

	_, ok, err = repo.Get(ctx, "AB1", t0.Add(300_001*time.Millisecond))
	require.NoError(t, err)
	require.False(t, ok)
	_, present := backing.Data["plate:result:AB1"]
	require.False(t, present, "expired entry must be evicted")
}

func TestCachedResultRepository_BackingErrorsSurface(t *testing.T) {
	boom := errors.New("connection refused")
	backing := &tmocks.CacheMock{
		GetFn: func(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, boom },
		SetFn: func(ctx context.Context, key string, value []byte, ttl time.Duration) error { return boom },
	}
	repo := repositories.NewCachedResultRepository(backing, time.Minute)

	_, _, err := repo.Get(context.Background(), "AB1", time.Now())
	require.ErrorIs(t, err, boom)
	err = repo.Put(context.Background(), "AB1", plate.Result{Status: plate.StatusAvailable}, time.Now())
	require.ErrorIs(t, err, boom)
}

func TestCachedResultRepository_CorruptEntryIsDropped(t *testing.T) {
	backing := tmocks.NewMapCache()
	backing.Data["plate:result:AB1"] = []byte("{not json")
	repo := repositories.NewCachedResultRepository(backing, time.Minute)

	_, ok, err := repo.Get(context.Background(), "AB1", time.Now())
	require.Error(t, err)
	require.False(t, ok)
	_, present := backing.Data["plate:result:AB1"]
	require.False(t, present)
}
