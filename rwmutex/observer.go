package rwmutex

// GateName identifies one of the two gates of a RWMutex.
type GateName string

const (
	ReaderGate GateName = "reader"
	WriterGate GateName = "writer"
)

// Observer receives admission events of a RWMutex.
//
// Methods are called synchronously from the goroutine that caused the
// event, after the admission mutex is released. They must be fast. They may
// call Stats, but must not lock or unlock the observed RWMutex.
type Observer interface {
	// ReaderAdmitted is called after a reader is admitted; active is the
	// number of readers holding the lock, including this one.
	ReaderAdmitted(active int64)
	// ReaderReleased is called when a reader leaves; active excludes it.
	ReaderReleased(active int64)
	// WriterAnnounced is called when Lock is entered.
	WriterAnnounced(waiting int64)
	// WriterAdmitted is called when a writer starts its exclusive section;
	// waiting is the number of writers still queued behind it.
	WriterAdmitted(waiting int64)
	WriterReleased()
	// GateOpened is called when a gate goes from closed to open.
	GateOpened(name GateName)
}

// Option configures a RWMutex created by New.
type Option func(*RWMutex)

// WithObserver attaches o to the lock. A nil o is ignored.
func WithObserver(o Observer) Option {
	return func(rw *RWMutex) {
		if o != nil {
			rw.obs = o
		}
	}
}

// Tee returns an Observer that forwards every event to each of obs in order.
func Tee(obs ...Observer) Observer {
	var t tee
	for _, o := range obs {
		if o != nil {
			t = append(t, o)
		}
	}
	return t
}

type tee []Observer

func (t tee) ReaderAdmitted(active int64) {
	for _, o := range t {
		o.ReaderAdmitted(active)
	}
}

func (t tee) ReaderReleased(active int64) {
	for _, o := range t {
		o.ReaderReleased(active)
	}
}

func (t tee) WriterAnnounced(waiting int64) {
	for _, o := range t {
		o.WriterAnnounced(waiting)
	}
}

func (t tee) WriterAdmitted(waiting int64) {
	for _, o := range t {
		o.WriterAdmitted(waiting)
	}
}

func (t tee) WriterReleased() {
	for _, o := range t {
		o.WriterReleased()
	}
}

func (t tee) GateOpened(name GateName) {
	for _, o := range t {
		o.GateOpened(name)
	}
}
