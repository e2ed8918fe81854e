// Package rxpool provides a small generic wrapper over sync.Pool for the
// per-engine scratch state a Program leases out for the duration of one
// search and returns on every exit path.
package rxpool

import "sync"

// Pool caches pre-allocated instances of T. It is safe for concurrent use.
type Pool[T any] struct {
	pool sync.Pool
}

// New returns a Pool that manufactures new instances with factory whenever
// it is empty.
func New[T any](factory func() T) *Pool[T] {
	p := &Pool[T]{}
	p.pool.New = func() any { return factory() }
	return p
}

// Get leases an instance, creating one via the factory if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns a leased instance to the pool. Callers must return every
// leased instance exactly once, on every exit path (match, no-match, or
// error).
func (p *Pool[T]) Put(v T) {
	p.pool.Put(v)
}
