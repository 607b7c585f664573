package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/pkg/logger"
)

// Pinger checks that Redis answers
type Pinger func(ctx context.Context) error

// DistributedLock is a redlock-backed ItemLock. Recomputations are short,
// so the lock is never renewed; the TTL bounds a crashed holder.
type DistributedLock struct {
	lockManager *redlock.RedLock
	ping        Pinger
	key         string
	ttl         time.Duration
	locked      bool
}

// NewDistributedLock creates a lock for one item. ping tells a held lock
// apart from an unreachable Redis; nil treats every refusal as held.
func NewDistributedLock(lockManager *redlock.RedLock, itemID int64, ttl time.Duration, ping Pinger) *DistributedLock {
	return &DistributedLock{
		lockManager: lockManager,
		ping:        ping,
		key:         ItemLockKey(itemID),
		ttl:         ttl,
	}
}

// ItemLockKey returns the redis resource name for an item's score lock
func ItemLockKey(itemID int64) string {
	return fmt.Sprintf("score:lock:%d", itemID)
}

// TryAcquire attempts to take the lock. It reports false without error only
// when another holder has it; an unreachable Redis is an error.
func (dl *DistributedLock) TryAcquire(ctx context.Context) (bool, error) {
	expiry, err := dl.lockManager.Lock(ctx, dl.key, dl.ttl)
	if err != nil {
		if !errors.Is(err, redlock.ErrAcquireLock) {
			return false, fmt.Errorf("failed to acquire lock %s: %w", dl.key, err)
		}
		// redlock reports unreachable instances as a refused lock too
		if dl.ping != nil {
			if pingErr := dl.ping(ctx); pingErr != nil {
				return false, fmt.Errorf("failed to acquire lock %s: %w", dl.key, pingErr)
			}
		}
		logger.Debug("score lock held elsewhere", zap.String("lock_name", dl.key))
		return false, nil
	}

	if expiry <= 0 {
		return false, fmt.Errorf("failed to acquire lock %s: invalid expiry %v", dl.key, expiry)
	}

	dl.locked = true

	logger.Debug("score lock acquired",
		zap.String("lock_name", dl.key),
		zap.Duration("expiry", expiry),
	)

	return true, nil
}

// Release releases the lock if held. An expired lock is not an error.
func (dl *DistributedLock) Release(ctx context.Context) error {
	if !dl.locked {
		return nil
	}
	dl.locked = false

	if err := dl.lockManager.UnLock(ctx, dl.key); err != nil {
		logger.Warn("failed to release score lock (may have already expired)",
			zap.String("lock_name", dl.key),
			zap.Error(err),
		)
	}

	return nil
}

// Key returns the lock resource name
func (dl *DistributedLock) Key() string {
	return dl.key
}
