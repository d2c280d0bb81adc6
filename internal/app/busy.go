package app

import (
	"sync"
	"sync/atomic"
)

// Busy counts coordinator passes in progress. It is shared by every
// coordinator of a registry; the status bar shows a spinner while it is
// non-zero.
type Busy struct {
	n atomic.Int64
}

// NewBusy returns an idle counter.
func NewBusy() *Busy {
	return &Busy{}
}

// Begin implements contentview.Busy. The returned function may be called
// more than once; only the first call counts.
func (b *Busy) Begin() func() {
	b.n.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { b.n.Add(-1) })
	}
}

// Active reports whether any pass is running.
func (b *Busy) Active() bool {
	return b != nil && b.n.Load() > 0
}
