package workload

import (
	"go.uber.org/zap"

	"gitlab.com/slon/wprw/rwmutex"
)

// LogObserver writes lock admission events to a zap logger at debug level.
type LogObserver struct {
	logger *zap.Logger
}

var _ rwmutex.Observer = (*LogObserver)(nil)

func NewLogObserver(l *zap.Logger) *LogObserver {
	return &LogObserver{logger: l.Named("rwmutex")}
}

func (o *LogObserver) ReaderAdmitted(active int64) {
	o.logger.Debug("reader admitted", zap.Int64("active_readers", active))
}

func (o *LogObserver) ReaderReleased(active int64) {
	o.logger.Debug("reader released", zap.Int64("active_readers", active))
}

func (o *LogObserver) WriterAnnounced(waiting int64) {
	o.logger.Debug("writer announced", zap.Int64("writers_waiting", waiting))
}

func (o *LogObserver) WriterAdmitted(waiting int64) {
	o.logger.Debug("writer admitted", zap.Int64("writers_waiting", waiting))
}

func (o *LogObserver) WriterReleased() {
	o.logger.Debug("writer released")
}

func (o *LogObserver) GateOpened(name rwmutex.GateName) {
	o.logger.Debug("gate opened", zap.String("gate", string(name)))
}
