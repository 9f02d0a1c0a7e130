// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package volatile

import (
	"sync"
	"sync/atomic"
)

// Sync marks a type whose values may be used from several goroutines at
// once without any locking beyond what the type does itself.
//
// Register value types opt in by declaring the method, e.g. a counter the
// hardware only ever increments:
//
//	type Ticks uint32
//
//	func (Ticks) Sync() {}
type Sync interface {
	Sync()
}

// SyncValue is a register value type that is certified Sync.
type SyncValue interface {
	Value
	Sync
}

// CellOf is the set of qualified registers holding a T.
type CellOf[T Value] interface {
	ReadOnly[T] | WriteOnly[T] | ReadWrite[T]
}

// ReadableCell is the set of qualified registers that can be loaded.
type ReadableCell[T Value] interface {
	ReadOnly[T] | ReadWrite[T]
}

// Unique holds exclusive title to one payload, usually a register or a
// register block. Mutation goes through With or Acquire, which serialize
// callers. ViewCell admits concurrent readers of a register payload but
// hands them only its read capability.
//
// A Unique is owned by the goroutine that created it. The only sanctioned
// way to give it to another goroutine is a Shared, obtained from Share or
// ShareCell, both of which require the payload to be certified Sync.
type Unique[V any] struct {
	mu sync.RWMutex
	v  V
}

func NewUnique[V any](v V) *Unique[V] { return &Unique[V]{v: v} }

// With runs fn holding exclusive access. Access is released when fn
// returns, panics, or calls runtime.Goexit.
func (u *Unique[V]) With(fn func(v V)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(u.v)
}

// TryWith is With that gives up instead of waiting. It reports whether fn ran.
func (u *Unique[V]) TryWith(fn func(v V)) bool {
	if !u.mu.TryLock() {
		return false
	}
	defer u.mu.Unlock()
	fn(u.v)
	return true
}

// ViewCell runs fn alongside other readers of u. fn sees the register
// read-only even when u holds a ReadWrite, so a store from fn does not
// compile:
//
//	volatile.ViewCell(u, func(r volatile.ReadOnly[uint32]) { log(r.Read()) })
func ViewCell[T Value, C ReadableCell[T]](u *Unique[C], fn func(r ReadOnly[T])) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	fn(ReadOnly[T](u.v))
}

// Acquire takes exclusive access until the returned guard is released.
// Callers should defer the release:
//
//	g := u.Acquire()
//	defer g.Release()
func (u *Unique[V]) Acquire() *Guard[V] {
	u.mu.Lock()
	return &Guard[V]{u: u}
}

// Guard is a held exclusive access to a Unique.
type Guard[V any] struct {
	u        *Unique[V]
	released atomic.Bool
}

// Value returns the payload. It panics once the guard is released.
func (g *Guard[V]) Value() V {
	if g.released.Load() {
		panic("volatile: use of released guard")
	}
	return g.u.v
}

// Release gives up exclusive access. Only the first call has an effect.
func (g *Guard[V]) Release() {
	if g.released.CompareAndSwap(false, true) {
		g.u.mu.Unlock()
	}
}

// Shared is a handle to a Unique that may cross goroutines. It is certified
// Sync because it can only be made for a certified payload, so wrapping a
// Shared in another Unique keeps the certification without inventing it.
type Shared[V any] struct {
	u *Unique[V]
}

func (Shared[V]) Sync() {}

// Share certifies u for use from several goroutines. V must itself be Sync.
func Share[V Sync](u *Unique[V]) Shared[V] { return Shared[V]{u: u} }

// ShareCell certifies a register for use from several goroutines. The
// certification comes from the register's value type T, which must be Sync:
//
//	s := volatile.ShareCell[Ticks](u)
func ShareCell[T SyncValue, C CellOf[T]](u *Unique[C]) Shared[C] { return Shared[C]{u: u} }

// With runs fn holding exclusive access; see Unique.With.
func (s Shared[V]) With(fn func(v V)) { s.u.With(fn) }

// ViewShared runs fn alongside other readers; see ViewCell.
func ViewShared[T Value, C ReadableCell[T]](s Shared[C], fn func(r ReadOnly[T])) {
	ViewCell(s.u, fn)
}

// Acquire takes exclusive access; see Unique.Acquire.
func (s Shared[V]) Acquire() *Guard[V] { return s.u.Acquire() }

// Peek returns the payload without taking the lock. This is allowed only
// because the payload is certified Sync.
func (s Shared[V]) Peek() V { return s.u.v }
