package redis

import (
	"context"
	"time"

	redigolib "github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

const noncePrefix = "delegate_vault:nonce:"

// NonceStore shares claimed request signatures between service instances.
type NonceStore struct {
	pool *redigolib.Pool
}

func NewNonceStore(pool *redigolib.Pool) *NonceStore {
	return &NonceStore{pool: pool}
}

func (n *NonceStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	conn := n.pool.Get()
	defer conn.Close()
	_, err := redigolib.String(conn.Do("SET", noncePrefix+key, 1, "PX", ttl.Milliseconds(), "NX"))
	if err == redigolib.ErrNil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "claim nonce")
	}
	return true, nil
}
