package redisrepo_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/jrsteele09/go-jwt-server/token/refresh/redisrepo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, ttl time.Duration) (*redisrepo.Repo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisrepo.New(client, "test:refresh:", ttl), mr
}

func TestRepo_GetPut(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t, 0)

	_, err := repo.Get(ctx, "anton")
	require.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, repo.Put(ctx, "anton", "R1"))
	require.NoError(t, repo.Put(ctx, "anton", "R2"))

	got, err := repo.Get(ctx, "anton")
	require.NoError(t, err)
	require.Equal(t, "R2", got)

	stored, err := mr.Get("test:refresh:anton")
	require.NoError(t, err)
	require.Equal(t, "R2", stored)
}

func TestRepo_EntriesExpireWithToken(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t, time.Hour)

	require.NoError(t, repo.Put(ctx, "anton", "R1"))
	require.Equal(t, time.Hour, mr.TTL("test:refresh:anton"))

	swapped, err := repo.CompareAndSwap(ctx, "anton", "R1", "R2")
	require.NoError(t, err)
	require.True(t, swapped)
	require.Equal(t, time.Hour, mr.TTL("test:refresh:anton"), "rotation restarts the expiry")

	mr.FastForward(time.Hour + time.Second)
	_, err = repo.Get(ctx, "anton")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRepo_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t, 0)

	swapped, err := repo.CompareAndSwap(ctx, "anton", "R1", "R2")
	require.NoError(t, err)
	require.False(t, swapped)

	require.NoError(t, repo.Put(ctx, "anton", "R1"))

	swapped, err = repo.CompareAndSwap(ctx, "anton", "stale", "R2")
	require.NoError(t, err)
	require.False(t, swapped)

	swapped, err = repo.CompareAndSwap(ctx, "anton", "R1", "R2")
	require.NoError(t, err)
	require.True(t, swapped)

	got, err := repo.Get(ctx, "anton")
	require.NoError(t, err)
	require.Equal(t, "R2", got)
}

func TestRepo_CompareAndSwapRace(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t, time.Hour)
	require.NoError(t, repo.Put(ctx, "anton", "R1"))

	const workers = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			swapped, err := repo.CompareAndSwap(ctx, "anton", "R1", fmt.Sprintf("R2-%d", i))
			if err == nil && swapped {
				wins.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

func TestRepo_Unavailable(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t, 0)
	mr.Close()

	_, err := repo.Get(ctx, "anton")
	require.ErrorIs(t, err, errors.ErrStoreUnavailable)

	require.ErrorIs(t, repo.Put(ctx, "anton", "R1"), errors.ErrStoreUnavailable)

	_, err = repo.CompareAndSwap(ctx, "anton", "R1", "R2")
	require.ErrorIs(t, err, errors.ErrStoreUnavailable)
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	repo, err := redisrepo.Dial(context.Background(), redisrepo.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, repo.Put(context.Background(), "ivan", "R1"))
	require.True(t, mr.Exists(redisrepo.DefaultKeyPrefix+"ivan"))
	require.NoError(t, repo.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = redisrepo.Dial(context.Background(), redisrepo.Config{Addr: addr})
	require.ErrorIs(t, err, errors.ErrStoreUnavailable)
}
