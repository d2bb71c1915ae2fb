package roster

import (
	"context"
	"sync"
)

// Locker serializes roster mutations per key.
type Locker interface {
	// Lock blocks until key is held or ctx ends. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

// KeyedMutex is an in-process Locker holding one mutex per active key.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch      chan struct{}
	waiters int
}

// NewKeyedMutex constructs an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires key. Entries are dropped once no goroutine holds or waits on them.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &keyedLock{ch: make(chan struct{}, 1)}
		k.locks[key] = lock
	}
	lock.waiters++
	k.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, lock, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { k.release(key, lock, true) })
	}, nil
}

func (k *KeyedMutex) release(key string, lock *keyedLock, held bool) {
	if held {
		<-lock.ch
	}
	k.mu.Lock()
	lock.waiters--
	if lock.waiters == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}

// Len reports how many keys are currently tracked.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
