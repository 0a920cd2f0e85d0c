package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noticeworks/lienclock/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// unlockScript releases the lock only when this owner still holds it, so a
// holder whose TTL expired cannot release somebody else's acquisition.
var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Lock is a single-holder distributed mutex. The sync command takes one per
// store so two operators cannot interleave seed runs.
type Lock struct {
	client *Client
	key    string
	token  string
	ttl    time.Duration
}

// NewLock builds a lock on key with the given TTL. The TTL bounds how long
// a crashed holder can block others; holders of long operations call Extend.
func NewLock(client *Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Lock{
		client: client,
		key:    key,
		token:  uuid.New().String(),
		ttl:    ttl,
	}
}

// TryAcquire attempts to take the lock once, without waiting.
func (l *Lock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire lock")
	}
	return ok, nil
}

// Acquire takes the lock, polling until it succeeds or ctx is done.
func (l *Lock) Acquire(ctx context.Context, retryDelay time.Duration) error {
	if retryDelay <= 0 {
		retryDelay = 100 * time.Millisecond
	}
	for {
		ok, err := l.TryAcquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrCodeConflict, "gave up waiting for lock")
		case <-time.After(retryDelay):
		}
	}
}

// Release drops the lock if this owner still holds it.
func (l *Lock) Release(ctx context.Context) error {
	res, err := unlockScript.Run(ctx, l.client.Scripter(), []string{l.key}, l.token).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if res.(int64) == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend pushes the TTL out again. Returns false when the lock was lost.
func (l *Lock) Extend(ctx context.Context) (bool, error) {
	res, err := extendScript.Run(ctx, l.client.Scripter(), []string{l.key}, l.token, l.ttl.Milliseconds()).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to extend lock")
	}
	return res.(int64) == 1, nil
}

// TTL reports the remaining hold time.
func (l *Lock) TTL(ctx context.Context) (time.Duration, error) {
	d, err := l.client.PTTL(ctx, l.key).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read lock TTL")
	}
	return d, nil
}
