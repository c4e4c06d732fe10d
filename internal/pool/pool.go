// Package pool provides scratch-buffer reuse for argument slices built and
// discarded while walking application spines. internal/inductive's
// builders borrow from it; the elaborator owns the pool and resets it
// between items. The elaboration session is single-threaded (see the
// concurrency model), so this is a plain stack rather than a sync.Pool.
package pool

import "github.com/kibi-lang/kibi/internal/term"

// Stats tracks pool efficiency, mirroring the counters a production
// object pool reports for monitoring.
type Stats struct {
	Hits      int64 // Get served from a previously returned buffer
	Misses    int64 // Get had to allocate fresh
	Returns   int64 // Put accepted a buffer back
	Evictions int64 // Put discarded a buffer because the pool was full
}

// ArgPool hands out []term.Term scratch buffers of varying capacity for
// spine-argument construction, and reclaims them once the caller is done —
// the same role sti::arena_pool::ArenaPool::tls_get_temp() plays in the
// original, minus the arena (Go's GC already reclaims the backing array
// once nothing references it).
type ArgPool struct {
	free    [][]term.Term
	maxSize int
	Stats   Stats
}

// New returns a pool that retains at most maxSize returned buffers. A
// maxSize of 0 means unlimited.
func New(maxSize int) *ArgPool {
	return &ArgPool{maxSize: maxSize}
}

// Get returns a zero-length buffer with at least the requested capacity.
func (p *ArgPool) Get(capacity int) []term.Term {
	for i := len(p.free) - 1; i >= 0; i-- {
		if cap(p.free[i]) >= capacity {
			buf := p.free[i]
			p.free = append(p.free[:i], p.free[i+1:]...)
			p.Stats.Hits++
			return buf[:0]
		}
	}
	p.Stats.Misses++
	return make([]term.Term, 0, capacity)
}

// Put returns buf to the pool for reuse. The caller must not use buf again
// after calling Put.
func (p *ArgPool) Put(buf []term.Term) {
	if p.maxSize > 0 && len(p.free) >= p.maxSize {
		p.Stats.Evictions++
		return
	}
	p.free = append(p.free, buf[:0])
	p.Stats.Returns++
}

// Reset discards every retained buffer — called between top-level
// declarations, the per-item boundary at which the original's inner arena
// pool is released deterministically.
func (p *ArgPool) Reset() {
	p.free = nil
}
