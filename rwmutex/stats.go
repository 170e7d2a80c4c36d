package rwmutex

// Phase is the state of a RWMutex as a whole.
type Phase int

const (
	// Idle: no reader or writer holds the lock.
	Idle Phase = iota
	// Reading: at least one reader holds the lock.
	Reading
	// Writing: a writer holds the lock.
	Writing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Reading:
		return "reading"
	case Writing:
		return "writing"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Stats is a point-in-time snapshot of the admission state of a RWMutex.
type Stats struct {
	Phase          Phase `json:"phase"`
	Readers        int64 `json:"readers"`
	ReadersParked  int   `json:"readers_parked"`
	WritersWaiting int64 `json:"writers_waiting"`
	WriterPending  bool  `json:"writer_pending"`
	ReaderGateOpen bool  `json:"reader_gate_open"`
	WriterGateOpen bool  `json:"writer_gate_open"`
}

// Stats returns a snapshot of rw. Fields that are updated without the
// admission lock (Readers, WritersWaiting) may already be stale on return.
func (rw *RWMutex) Stats() Stats {
	rw.admission.Lock()
	defer rw.admission.Unlock()

	s := Stats{
		Readers:        rw.readers.Load(),
		ReadersParked:  rw.readersParked,
		WritersWaiting: rw.writersWaiting.Load(),
		WriterPending:  rw.writerPending,
		ReaderGateOpen: rw.readerGate.IsOpen(),
		WriterGateOpen: rw.writerGate.IsOpen(),
	}
	switch {
	case rw.writing.Load():
		s.Phase = Writing
	case s.Readers > 0:
		s.Phase = Reading
	}
	return s
}
