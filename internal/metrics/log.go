package metrics

import (
	"context"

	"github.com/san-kum/glide/internal/logging"
)

// LogObserver writes a ledger line every interval seconds of simulated time.
// The first sample is always logged; interval <= 0 logs every sample.
type LogObserver struct {
	log      logging.Logger
	interval float64
	next     float64
	started  bool
}

func NewLogObserver(log logging.Logger, interval float64) *LogObserver {
	if log == nil {
		log = logging.Noop()
	}
	return &LogObserver{log: log, interval: interval}
}

func (o *LogObserver) OnSample(s Sample) {
	if o.started && s.Time+1e-12 < o.next {
		return
	}
	o.started = true
	o.next = s.Time + o.interval

	o.log.Info(context.Background(), "energy",
		logging.Float("t", s.Time),
		logging.Float("e_kin", s.Kinetic),
		logging.Float("e_elastic", s.Elastic),
		logging.Float("e_grav", s.Gravitational),
		logging.Float("e_batt", s.Battery),
		logging.Float("e_total", s.Total),
		logging.Float("soc", s.SoC),
		logging.Float("power", s.Power),
	)
}
