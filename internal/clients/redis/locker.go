package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lecturegate-backend/internal/platform/envutil"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

var ErrLockTimeout = errors.New("redis lock: timed out waiting for key")

// releaseScript deletes the key only if the caller still owns it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type LockerOptions struct {
	Addr      string
	Prefix    string
	TTL       time.Duration
	RetryWait time.Duration
}

// Locker is a keylock.Locker backed by SET NX PX so that several API replicas
// serialize submissions for the same key.
type Locker struct {
	log       *logger.Logger
	rdb       *goredis.Client
	prefix    string
	ttl       time.Duration
	retryWait time.Duration
}

func NewLocker(log *logger.Logger, opts LockerOptions) (*Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = "lecturegate:lock:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	wait := opts.RetryWait
	if wait <= 0 {
		wait = 25 * time.Millisecond
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Locker{
		log:       log.With("service", "RedisLocker"),
		rdb:       rdb,
		prefix:    prefix,
		ttl:       ttl,
		retryWait: wait,
	}, nil
}

func NewLockerFromEnv(log *logger.Logger) (*Locker, error) {
	return NewLocker(log, LockerOptions{
		Addr:   envutil.String("REDIS_ADDR", ""),
		Prefix: envutil.String("REDIS_LOCK_PREFIX", ""),
		TTL:    time.Duration(envutil.Int("REDIS_LOCK_TTL_SECONDS", 30)) * time.Second,
	})
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("redis locker not initialized")
	}
	full := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, full, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrLockTimeout
			}
			return nil, ctx.Err()
		case <-time.After(l.retryWait):
		}
	}

	return func() {
		// Release must survive a canceled request context.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{full}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			l.log.Warn("redis unlock failed", "key", key, "error", err)
		}
	}, nil
}

func (l *Locker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
