package interfaces

import (
	"context"
	"time"
)

// INonceStore remembers request signatures so a signed request is accepted once.
type INonceStore interface {
	// Claim records key for ttl. It reports false when key is already recorded.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
