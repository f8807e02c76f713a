package memory

import (
	"context"
	"sync"
	"time"
)

// Nonces is a single-process INonceStore. Expired keys are dropped on the next Claim.
type Nonces struct {
	mu    sync.Mutex
	until map[string]time.Time
	Now   func() time.Time
}

func NewNonces() *Nonces {
	return &Nonces{until: map[string]time.Time{}, Now: time.Now}
}

func (n *Nonces) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.Now()
	for k, t := range n.until {
		if !now.Before(t) {
			delete(n.until, k)
		}
	}
	if _, seen := n.until[key]; seen {
		return false, nil
	}
	n.until[key] = now.Add(ttl)
	return true, nil
}
