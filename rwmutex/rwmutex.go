package rwmutex

import (
	"sync"
	"sync/atomic"

	"gitlab.com/slon/wprw/gate"
)

// A RWMutex is a reader/writer mutual exclusion lock with writer priority.
// The lock can be held by an arbitrary number of readers or a single writer.
// The zero value for a RWMutex is an unlocked mutex.
//
// Once a goroutine calls Lock, no new reader is admitted until that writer
// and every writer queued behind it have called Unlock. Readers admitted
// before the writer announced itself keep running; the writer waits for
// them to drain. Under a continuous stream of writers readers may starve.
//
// If a goroutine holds a RWMutex for reading and another goroutine might
// call Lock, no goroutine should expect to be able to acquire a read lock
// until the initial read lock is released. In particular, this prohibits
// recursive read locking.
//
// A RWMutex must not be copied after first use.
type RWMutex struct {
	// admission guards writerPending, readersParked and every gate
	// transition that depends on them.
	admission sync.Mutex
	// write serializes writer bodies.
	write sync.Mutex

	readers        atomic.Int64
	writersWaiting atomic.Int64
	writing        atomic.Bool

	writerPending bool
	readersParked int

	readerGate gate.Gate
	writerGate gate.Gate

	obs Observer

	// testHookReaderParked runs in RLock every time a reader parks, after
	// it has sampled the reader gate and released admission.
	testHookReaderParked func()
}

// New creates *RWMutex.
func New(opts ...Option) *RWMutex {
	rw := &RWMutex{}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// RLock locks rw for reading.
//
// RLock blocks while a writer is pending. It should not be used for
// recursive read locking; see the documentation on the RWMutex type.
func (rw *RWMutex) RLock() {
	rw.admission.Lock()
	for rw.writerPending {
		rw.readersParked++
		ready := rw.readerGate.Ready()
		rw.admission.Unlock()
		if rw.testHookReaderParked != nil {
			rw.testHookReaderParked()
		}
		<-ready
		rw.admission.Lock()
		rw.readersParked--
	}
	n := rw.readers.Add(1)
	rw.admission.Unlock()

	if rw.obs != nil {
		rw.obs.ReaderAdmitted(n)
	}
}

// RUnlock undoes a single RLock call;
// it does not affect other simultaneous readers.
// It is a run-time error if rw is not locked for reading
// on entry to RUnlock.
func (rw *RWMutex) RUnlock() {
	// Lock-free on purpose: the last reader out may open the writer gate
	// after a writer has already let itself in. Writers re-check the reader
	// count after every wake-up, so a redundant open is harmless.
	n := rw.readers.Add(-1)
	if n < 0 {
		panic("rwmutex: RUnlock of unlocked RWMutex")
	}
	if rw.obs != nil {
		rw.obs.ReaderReleased(n)
	}
	if n != 0 {
		return
	}

	rw.readerGate.Close()
	if rw.writersWaiting.Load() > 0 && rw.writerGate.Open() {
		rw.gateOpened(WriterGate)
	}
}

// Lock locks rw for writing.
// If the lock is already locked for reading or writing,
// Lock blocks until the lock is available.
// New readers are held back from the moment Lock is called.
func (rw *RWMutex) Lock() {
	w := rw.writersWaiting.Add(1)
	if rw.obs != nil {
		rw.obs.WriterAnnounced(w)
	}

	rw.admission.Lock()
	rw.writerPending = true
	rw.readerGate.Close()
	var opened bool
	for {
		// Close before looking at the reader count: a reader that drains
		// right after the check opens the gate again.
		rw.writerGate.Close()
		if rw.readers.Load() == 0 {
			opened = rw.writerGate.Open()
			break
		}
		rw.writerGate.WaitLocked(&rw.admission)
	}
	rw.admission.Unlock()
	if opened {
		rw.gateOpened(WriterGate)
	}

	rw.write.Lock()
	w = rw.writersWaiting.Add(-1)
	rw.writing.Store(true)

	if rw.obs != nil {
		rw.obs.WriterAdmitted(w)
	}
}

// Unlock unlocks rw for writing. It is a run-time error if rw is
// not locked for writing on entry to Unlock.
//
// When no other writer is queued, Unlock lets the parked readers in.
// Otherwise the next writer goes first.
func (rw *RWMutex) Unlock() {
	if !rw.writing.CompareAndSwap(true, false) {
		panic("rwmutex: Unlock of unlocked RWMutex")
	}

	rw.admission.Lock()
	var opened bool
	if rw.writersWaiting.Load() == 0 {
		rw.writerPending = false
		if rw.readersParked > 0 {
			opened = rw.readerGate.Open()
		}
		rw.writerGate.Close()
	}
	rw.admission.Unlock()
	rw.write.Unlock()

	if opened {
		rw.gateOpened(ReaderGate)
	}
	if rw.obs != nil {
		rw.obs.WriterReleased()
	}
}

// Read runs fn while holding rw for reading.
// The read lock is released even if fn panics.
func (rw *RWMutex) Read(fn func()) {
	rw.RLock()
	defer rw.RUnlock()
	fn()
}

// Write runs fn while holding rw for writing.
// The write lock is released even if fn panics.
func (rw *RWMutex) Write(fn func()) {
	rw.Lock()
	defer rw.Unlock()
	fn()
}

// RLocker returns a sync.Locker interface that implements
// the Lock and Unlock methods by calling rw.RLock and rw.RUnlock.
func (rw *RWMutex) RLocker() sync.Locker {
	return (*rlocker)(rw)
}

type rlocker RWMutex

func (r *rlocker) Lock()   { (*RWMutex)(r).RLock() }
func (r *rlocker) Unlock() { (*RWMutex)(r).RUnlock() }

func (rw *RWMutex) gateOpened(name GateName) {
	if rw.obs != nil {
		rw.obs.GateOpened(name)
	}
}
