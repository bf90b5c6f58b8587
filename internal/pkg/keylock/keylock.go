// Package keylock provides per-key mutual exclusion without a global lock.
package keylock

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// Striped maps keys onto a fixed set of mutexes by hash. Operations on the same key are
// serialised; different keys only contend when they share a stripe.
type Striped struct {
	stripes []sync.Mutex
}

// New returns a Striped lock with n stripes. If n <= 0, defaultStripes is used.
func New(n int) *Striped {
	if n <= 0 {
		n = defaultStripes
	}
	return &Striped{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for key and returns its unlock func.
func (s *Striped) Lock(key string) func() {
	m := &s.stripes[s.index(key)]
	m.Lock()
	return m.Unlock
}

func (s *Striped) index(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.stripes)))
}
