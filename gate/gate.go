// Package gate implements a binary gate that goroutines park on until
// another goroutine opens it.
package gate

import "sync"

// A Gate is a manually opened and closed barrier.
//
// While the gate is open, Wait returns immediately. Open releases every
// goroutine that started waiting before it, even when a Close follows right
// away: a waiter parks on the generation of the gate it observed, not on the
// current state.
//
// The zero value is a closed gate.
// A Gate must not be copied after first use.
type Gate struct {
	mu   sync.Mutex
	ch   chan struct{} // closed while the gate is open
	open bool
}

func (g *Gate) chLocked() chan struct{} {
	if g.ch == nil {
		g.ch = make(chan struct{})
	}
	return g.ch
}

// Open opens g and wakes all goroutines blocked in Wait.
// It reports whether g was closed before the call.
func (g *Gate) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.open {
		return false
	}
	close(g.chLocked())
	g.open = true
	return true
}

// Close closes g so that subsequent calls to Wait block.
// It reports whether g was open before the call.
func (g *Gate) Close() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.open {
		return false
	}
	g.ch = make(chan struct{})
	g.open = false
	return true
}

// Ready returns a channel that is closed once g is open. The channel belongs
// to the current generation of g: a later Close does not affect it.
func (g *Gate) Ready() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chLocked()
}

// Wait blocks until g is open.
func (g *Gate) Wait() {
	<-g.Ready()
}

// WaitLocked is Wait for callers inside a critical section guarded by l.
//
// It must be called with l held. The state of g is sampled before l is
// released, so an Open performed by the next holder of l is never missed.
// l is reacquired before WaitLocked returns. As with sync.Cond, the caller
// has to re-check its predicate afterwards.
func (g *Gate) WaitLocked(l sync.Locker) {
	ready := g.Ready()
	l.Unlock()
	<-ready
	l.Lock()
}

// IsOpen reports whether g is open at the moment of the call.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}
