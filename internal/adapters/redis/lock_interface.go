package redis

import "context"

// ItemLock guards recomputation of one item's score across processes
type ItemLock interface {
	// TryAcquire returns false without error when another process holds the lock
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
	Key() string
}

// LockFactory creates item locks
type LockFactory interface {
	ItemLock(itemID int64) ItemLock
}
