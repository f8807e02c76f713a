package interfaces

import "context"

// ILocker serializes operations per key. The returned func releases the lock.
type ILocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
