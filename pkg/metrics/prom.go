// Package metrics exposes fuel log activity as Prometheus collectors.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records fuel log events in Prometheus metrics. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	records     *prometheus.CounterVec
	cycles      *prometheus.CounterVec
	latestL100  prometheus.Gauge
	regressions prometheus.Counter
}

// NewRecorder registers the collectors on reg, or on the default registerer
// when reg is nil. Collectors that are already registered are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fuellog_records_added_total",
		Help: "Fuel records added, by fill type",
	}, []string{"full_fill"})
	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fuellog_cycles_closed_total",
		Help: "Tank-to-tank cycles closed by a new full fill",
	}, []string{"rate_available"})
	latest := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fuellog_latest_cycle_liters_per_100km",
		Help: "Consumption of the most recently closed cycle",
	})
	regressions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fuellog_odometer_regressions_total",
		Help: "Cycles closed with an odometer reading below their start",
	})

	var err error
	if records, err = register(reg, records); err != nil {
		return nil, err
	}
	if cycles, err = register(reg, cycles); err != nil {
		return nil, err
	}
	if latest, err = register(reg, latest); err != nil {
		return nil, err
	}
	if regressions, err = register(reg, regressions); err != nil {
		return nil, err
	}

	return &Recorder{
		records:     records,
		cycles:      cycles,
		latestL100:  latest,
		regressions: regressions,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordAdded counts a stored record.
func (r *Recorder) RecordAdded(fullFill bool) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(strconv.FormatBool(fullFill)).Inc()
}

// CycleClosed counts a closed cycle. l100 is only used when available.
func (r *Recorder) CycleClosed(l100 float64, available, regression bool) {
	if r == nil {
		return
	}
	r.cycles.WithLabelValues(strconv.FormatBool(available)).Inc()
	if available {
		r.latestL100.Set(l100)
	}
	if regression {
		r.regressions.Inc()
	}
}
