// Package redis serializes operations per manager across service instances with redsync.
package redis

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/redigo"
	redigolib "github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var log *zap.Logger

func init() {
	log, _ = zap.NewProduction()
	log = log.With(zap.String("logger", "srcRedis"))
}

const (
	keyPrefix     = "delegate_vault:lock:"
	defaultExpiry = 8 * time.Second
)

// NewPool builds a redigo pool for host:port.
func NewPool(host, port, password string) *redigolib.Pool {
	addr := net.JoinHostPort(host, port)
	return &redigolib.Pool{
		MaxIdle:     8,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redigolib.Conn, error) {
			var opts []redigolib.DialOption
			if password != "" {
				opts = append(opts, redigolib.DialPassword(password))
			}
			return redigolib.Dial("tcp", addr, opts...)
		},
	}
}

type Locker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

func NewLocker(pool *redigolib.Pool, expiry time.Duration) *Locker {
	if expiry == 0 {
		expiry = defaultExpiry
	}
	return &Locker{rs: redsync.New(redigo.NewPool(pool)), expiry: expiry}
}

// Lock takes the mutex for key and keeps extending it until the returned func is called,
// so a slow settlement never outlives the lock. The key still expires after the configured
// expiry if the holder dies.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(keyPrefix+key, redsync.WithExpiry(l.expiry))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Wrapf(err, "redsync lock %s", key)
	}
	stop, stopped := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(stopped)
		l.keepAlive(mutex, key, stop)
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-stopped
			if ok, err := mutex.Unlock(); !ok || err != nil {
				log.Warn("redsync unlock",
					zap.String("key", key),
					zap.Bool("released", ok),
					zap.Error(err),
				)
			}
		})
	}, nil
}

func (l *Locker) keepAlive(mutex *redsync.Mutex, key string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.expiry / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if ok, err := mutex.Extend(); !ok || err != nil {
				log.Error("redsync extend",
					zap.String("key", key),
					zap.Bool("extended", ok),
					zap.Error(err),
				)
			}
		}
	}
}
