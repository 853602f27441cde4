package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-agent/internal/core/domain"
)

type countingSource struct {
	activity domain.UserActivity
	err      error
	calls    int
}

func (s *countingSource) Fetch(ctx context.Context, username string, limit int) (domain.UserActivity, error) {
	s.calls++
	if s.err != nil {
		return domain.UserActivity{Username: username}, s.err
	}
	return s.activity, nil
}

func newCache(t *testing.T, next *countingSource) (*CachedSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCachedSource(next, client, time.Minute, nil), mr
}

func TestCachedSource_HitsCache(t *testing.T) {
	next := &countingSource{activity: domain.UserActivity{
		Username: "u1",
		Posts:    []domain.ActivityRecord{{Kind: domain.KindPost, ID: "p1", Subreddit: "test", Title: "Hello"}},
	}}
	cache, mr := newCache(t, next)
	ctx := context.Background()

	first, err := cache.Fetch(ctx, "u1", 10)
	require.NoError(t, err)
	second, err := cache.Fetch(ctx, "u1", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("persona:activity:u1:10"))

	mr.FastForward(2 * time.Minute)
	_, err = cache.Fetch(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedSource_LimitIsPartOfKey(t *testing.T) {
	next := &countingSource{activity: domain.UserActivity{Username: "u1"}}
	cache, _ := newCache(t, next)

	_, _ = cache.Fetch(context.Background(), "u1", 1)
	_, _ = cache.Fetch(context.Background(), "u1", 2)
	assert.Equal(t, 2, next.calls)
}

func TestCachedSource_ErrorsNotCached(t *testing.T) {
	next := &countingSource{err: domain.NewFetchError(domain.ErrRateLimited, "u1", nil)}
	cache, mr := newCache(t, next)

	_, err := cache.Fetch(context.Background(), "u1", 10)
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.False(t, mr.Exists("persona:activity:u1:10"))
}

func TestCachedSource_RedisDownFallsThrough(t *testing.T) {
	next := &countingSource{activity: domain.UserActivity{Username: "u1"}}
	cache, mr := newCache(t, next)
	mr.Close()

	got, err := cache.Fetch(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.Username)
	assert.Equal(t, 1, next.calls)
}
