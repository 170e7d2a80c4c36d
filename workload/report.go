package workload

import (
	"sort"
	"time"
)

// Span is the interval during which a worker held the lock.
type Span struct {
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (s Span) overlaps(o Span) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Report is the result of a Runner.Run.
type Report struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// Spans are ordered by Start.
	Spans []Span `json:"spans"`
}

func (r *Report) sort() {
	sort.SliceStable(r.Spans, func(i, j int) bool {
		return r.Spans[i].Start.Before(r.Spans[j].Start)
	})
}

func (r *Report) Elapsed() time.Duration {
	return r.End.Sub(r.Start)
}

// Count returns the number of workers of the given role that ran.
func (r *Report) Count(role Role) int {
	n := 0
	for _, s := range r.Spans {
		if s.Role == role {
			n++
		}
	}
	return n
}

// MaxConcurrentReaders returns the largest number of readers that held the
// lock at the same instant.
func (r *Report) MaxConcurrentReaders() int {
	type event struct {
		at    time.Time
		delta int
	}
	var events []event
	for _, s := range r.Spans {
		if s.Role != RoleReader {
			continue
		}
		events = append(events, event{s.Start, 1}, event{s.End, -1})
	}
	// Закрытие раньше открытия в один и тот же момент: касание не пересечение.
	sort.Slice(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			return events[i].delta < events[j].delta
		}
		return events[i].at.Before(events[j].at)
	})

	cur, best := 0, 0
	for _, e := range events {
		cur += e.delta
		best = max(best, cur)
	}
	return best
}

// WritersOverlap reports whether two writers ever held the lock at once.
func (r *Report) WritersOverlap() bool {
	return r.overlap(RoleWriter, RoleWriter)
}

// ReaderWriterOverlap reports whether a reader and a writer ever held the
// lock at once.
func (r *Report) ReaderWriterOverlap() bool {
	return r.overlap(RoleReader, RoleWriter)
}

func (r *Report) overlap(a, b Role) bool {
	for i, x := range r.Spans {
		for _, y := range r.Spans[i+1:] {
			if (x.Role == a && y.Role == b || x.Role == b && y.Role == a) && x.overlaps(y) {
				return true
			}
		}
	}
	return false
}
