// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package volatile

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrAddressInUse = errors.New("register address already claimed")

// Named is a register as it appears in a register table: a name plus
// accessors for whichever capabilities the register really has. Read or
// Write is nil when the register lacks that capability.
type Named struct {
	Name  string
	Reg   Register
	Read  func() uint64
	Write func(v uint64)
}

// Describe builds the table entry for reg. The accessors are derived from
// the capabilities reg's type implements, so a table can never grant more
// than the wiring did. It panics if T is not reg's value type, since the
// entry would otherwise silently lose a capability.
func Describe[T Value](name string, reg Register) Named {
	n := Named{Name: name, Reg: reg}
	q := reg.Qualifier()
	if r, ok := reg.(Readable[T]); ok {
		n.Read = func() uint64 { return uint64(r.Read()) }
	} else if q.CanRead() {
		panic(fmt.Sprintf("volatile: %s: %v is not a register of %T", name, reg, *new(T)))
	}
	if w, ok := reg.(Writeable[T]); ok {
		n.Write = func(v uint64) { w.Write(T(v)) }
	} else if q.CanWrite() {
		panic(fmt.Sprintf("volatile: %s: %v is not a register of %T", name, reg, *new(T)))
	}
	return n
}

func (n Named) String() string {
	return fmt.Sprintf("%-16s %v", n.Name, n.Reg)
}

type claim struct {
	owner string
	Named
}

func (c claim) end() Addr { return c.Reg.Addr() + Addr(c.Reg.Size()) }

// Registry records which driver owns which register addresses. Two owners
// claiming overlapping registers is refused with ErrAddressInUse.
type Registry struct {
	mu     sync.Mutex
	claims []claim // sorted by address
}

// Claim registers regs under owner. Either all of regs are claimed or none.
func (r *Registry) Claim(owner string, regs ...Named) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := make([]claim, 0, len(regs))
	for _, n := range regs {
		c := claim{owner: owner, Named: n}
		if other, ok := r.overlap(c); ok {
			return fmt.Errorf("%s %s at %v: %w by %s %s",
				owner, n.Name, n.Reg.Addr(), ErrAddressInUse, other.owner, other.Name)
		}
		for _, a := range added {
			if c.Reg.Addr() < a.end() && a.Reg.Addr() < c.end() {
				return fmt.Errorf("%s %s at %v: %w by %s %s",
					owner, n.Name, n.Reg.Addr(), ErrAddressInUse, owner, a.Name)
			}
		}
		added = append(added, c)
	}
	r.claims = append(r.claims, added...)
	slices.SortFunc(r.claims, func(a, b claim) int {
		switch {
		case a.Reg.Addr() < b.Reg.Addr():
			return -1
		case a.Reg.Addr() > b.Reg.Addr():
			return 1
		}
		return 0
	})
	return nil
}

func (r *Registry) overlap(c claim) (claim, bool) {
	for _, o := range r.claims {
		if c.Reg.Addr() < o.end() && o.Reg.Addr() < c.end() {
			return o, true
		}
	}
	return claim{}, false
}

// Release drops every claim held by owner.
func (r *Registry) Release(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims = slices.DeleteFunc(r.claims, func(c claim) bool { return c.owner == owner })
}

// Lookup finds a register by name.
func (r *Registry) Lookup(name string) (Named, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.claims {
		if c.Name == name {
			return c.Named, true
		}
	}
	return Named{}, false
}

// Entries returns every claimed register in address order.
func (r *Registry) Entries() []Named {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Named, len(r.claims))
	for i, c := range r.claims {
		out[i] = c.Named
	}
	return out
}

// Owner reports who claimed the register at addr.
func (r *Registry) Owner(addr Addr) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.claims {
		if addr >= c.Reg.Addr() && addr < c.end() {
			return c.owner, true
		}
	}
	return "", false
}
