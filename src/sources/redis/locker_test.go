package redis

import (
	"context"
	"os"
	"testing"
	"time"

	redigolib "github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a live server: REDIS_HOST=localhost go test ./src/sources/redis
func TestLockerExcludesSecondHolder(t *testing.T) {
	pool := testPool(t)
	defer pool.Close()
	locker := NewLocker(pool, 30*time.Second)
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	unlock, err := locker.Lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, key)
	assert.Error(t, err)

	unlock()
	unlock2, err := locker.Lock(context.Background(), key)
	require.NoError(t, err)
	unlock2()
}

func testPool(t *testing.T) *redigolib.Pool {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	return NewPool(host, port, os.Getenv("REDIS_PASSWORD"))
}

func TestLockOutlivesExpiryWhileHeld(t *testing.T) {
	pool := testPool(t)
	defer pool.Close()
	locker := NewLocker(pool, time.Second)
	key := "test:extend:" + time.Now().Format(time.RFC3339Nano)

	unlock, err := locker.Lock(context.Background(), key)
	require.NoError(t, err)
	time.Sleep(2500 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, key)
	assert.Error(t, err)
	unlock()
	unlock()
}

func TestNonceStoreClaimsOnce(t *testing.T) {
	pool := testPool(t)
	defer pool.Close()
	nonces := NewNonceStore(pool)
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	ok, err := nonces.Claim(context.Background(), key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = nonces.Claim(context.Background(), key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
