// Package prometheus exports pool statistics as Prometheus metrics.
//
// The exporter is pull-based: it snapshots the pool on every scrape instead
// of requiring the pool to push observations, so wiring it up is a single
// registration call:
//
//	exp, err := prometheus.NewExporter("mypool", prom.DefaultRegisterer, p)
package prometheus

import (
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/utkarsh5026/taskpool/pool"
)

// Source is anything that can snapshot pool statistics. *pool.Pool[T, R]
// satisfies it for any T and R.
type Source interface {
	Stats() pool.Stats
}

// Exporter is a prometheus.Collector reading a Source on each scrape.
type Exporter struct {
	source Source

	submitted  *prom.Desc
	outcomes   *prom.Desc
	retries    *prom.Desc
	queueDepth *prom.Desc
	active     *prom.Desc
	workers    *prom.Desc
	state      *prom.Desc
}

var _ prom.Collector = (*Exporter)(nil)

// NewExporter builds an exporter over the given source and registers it.
// An empty namespace defaults to "taskpool"; a nil registerer defaults to
// the global one.
func NewExporter(namespace string, reg prom.Registerer, source Source) (*Exporter, error) {
	if source == nil {
		return nil, fmt.Errorf("exporter source must not be nil")
	}
	if namespace == "" {
		namespace = "taskpool"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	e := &Exporter{
		source: source,
		submitted: prom.NewDesc(
			prom.BuildFQName(namespace, "", "tasks_submitted_total"),
			"Total number of tasks accepted by Submit.",
			nil, nil,
		),
		outcomes: prom.NewDesc(
			prom.BuildFQName(namespace, "", "task_outcomes_total"),
			"Total number of terminal task outcomes, by kind.",
			[]string{"kind"}, nil,
		),
		retries: prom.NewDesc(
			prom.BuildFQName(namespace, "", "task_retries_total"),
			"Total number of task re-executions.",
			nil, nil,
		),
		queueDepth: prom.NewDesc(
			prom.BuildFQName(namespace, "", "queue_depth"),
			"Approximate number of tasks waiting in the queue.",
			nil, nil,
		),
		active: prom.NewDesc(
			prom.BuildFQName(namespace, "", "active_workers"),
			"Number of tasks currently executing.",
			nil, nil,
		),
		workers: prom.NewDesc(
			prom.BuildFQName(namespace, "", "worker_count"),
			"Configured number of workers.",
			nil, nil,
		),
		state: prom.NewDesc(
			prom.BuildFQName(namespace, "", "state"),
			"Pool lifecycle phase (0=created, 1=running, 2=draining, 3=terminated).",
			nil, nil,
		),
	}

	return registerCollector(reg, e)
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prom.Desc) {
	ch <- e.submitted
	ch <- e.outcomes
	ch <- e.retries
	ch <- e.queueDepth
	ch <- e.active
	ch <- e.workers
	ch <- e.state
}

// Collect implements prometheus.Collector by snapshotting the source.
func (e *Exporter) Collect(ch chan<- prom.Metric) {
	s := e.source.Stats()

	ch <- prom.MustNewConstMetric(e.submitted, prom.CounterValue, float64(s.Submitted))
	ch <- prom.MustNewConstMetric(e.outcomes, prom.CounterValue, float64(s.Succeeded), pool.OutcomeSuccess.String())
	ch <- prom.MustNewConstMetric(e.outcomes, prom.CounterValue, float64(s.Failed), pool.OutcomeFailure.String())
	ch <- prom.MustNewConstMetric(e.outcomes, prom.CounterValue, float64(s.Panicked), pool.OutcomePanic.String())
	ch <- prom.MustNewConstMetric(e.outcomes, prom.CounterValue, float64(s.Cancelled), pool.OutcomeCancelled.String())
	ch <- prom.MustNewConstMetric(e.retries, prom.CounterValue, float64(s.Retries))
	ch <- prom.MustNewConstMetric(e.queueDepth, prom.GaugeValue, float64(s.QueueDepth))
	ch <- prom.MustNewConstMetric(e.active, prom.GaugeValue, float64(s.Active))
	ch <- prom.MustNewConstMetric(e.workers, prom.GaugeValue, float64(s.Workers))
	ch <- prom.MustNewConstMetric(e.state, prom.GaugeValue, float64(s.State))
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
