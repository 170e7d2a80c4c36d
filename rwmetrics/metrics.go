// Package rwmetrics exports admission events of a rwmutex.RWMutex as
// prometheus metrics.
package rwmetrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/slon/wprw/rwmutex"
)

const namespace = "rwlock"

// Collector is a rwmutex.Observer backed by prometheus metrics.
type Collector struct {
	readerAdmissions prometheus.Counter
	writerAdmissions prometheus.Counter
	gateOpens        *prometheus.CounterVec
	activeReaders    prometheus.Gauge
	writersWaiting   prometheus.Gauge
}

var _ rwmutex.Observer = (*Collector)(nil)

// New creates a Collector and registers its metrics on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		readerAdmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reader_admissions_total",
			Help:      "Number of readers admitted to the lock.",
		}),
		writerAdmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writer_admissions_total",
			Help:      "Number of writers admitted to the lock.",
		}),
		gateOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_opens_total",
			Help:      "Number of closed to open transitions per gate.",
		}, []string{"gate"}),
		activeReaders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_readers",
			Help:      "Readers currently holding the lock.",
		}),
		writersWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "writers_waiting",
			Help:      "Writers that announced intent and are not yet admitted.",
		}),
	}

	for _, m := range []prometheus.Collector{
		c.readerAdmissions,
		c.writerAdmissions,
		c.gateOpens,
		c.activeReaders,
		c.writersWaiting,
	} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("register rwlock metrics: %w", err)
		}
	}
	return c, nil
}

// ReaderAdmitted and the other callbacks move the gauges by one instead of
// copying the reported count: callbacks run outside the lock and may arrive
// out of order.
func (c *Collector) ReaderAdmitted(int64) {
	c.readerAdmissions.Inc()
	c.activeReaders.Inc()
}

func (c *Collector) ReaderReleased(int64) {
	c.activeReaders.Dec()
}

func (c *Collector) WriterAnnounced(int64) {
	c.writersWaiting.Inc()
}

func (c *Collector) WriterAdmitted(int64) {
	c.writerAdmissions.Inc()
	c.writersWaiting.Dec()
}

func (c *Collector) WriterReleased() {}

func (c *Collector) GateOpened(name rwmutex.GateName) {
	c.gateOpens.WithLabelValues(string(name)).Inc()
}
