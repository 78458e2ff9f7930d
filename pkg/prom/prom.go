package prom

import (
	"fmt"
	"sync"

	"github.com/nimasrn/order-import/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	SystemImport = "import"
	SystemClean  = "clean"
	SystemCheck  = "check"
	SystemRun    = "run"
)

const (
	MetricCustomersImported = "customers_total"
	MetricOrdersImported    = "orders_total"
	MetricOrphanOrders      = "orphan_orders_total"
	MetricRowsDeleted       = "rows_deleted_total"
	MetricCreditViolations  = "credit_violations"
	MetricCommandDuration   = "command_duration_seconds"
)

const (
	TypeCounter      = "counter"
	TypeCounterVec   = "counterVec"
	TypeGauge        = "gauge"
	TypeHistogramVec = "histogramVec"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var registry = prometheus.NewRegistry()

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionGauges = make(map[string]prometheus.Gauge)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers the run metrics in a fresh registry. Calling it again
// discards everything collected so far.
func Create(host string, env string, nameSpace string) error {
	lockCreateMetricLock.Lock()
	registry = prometheus.NewRegistry()
	MetricCollectionCounters = make(map[string]prometheus.Counter)
	MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
	MetricCollectionGauges = make(map[string]prometheus.Gauge)
	MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	namespace = nameSpace
	lockCreateMetricLock.Unlock()

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(CreateMetric(TypeCounter, SystemImport, MetricCustomersImported))
	hasError(CreateMetric(TypeCounter, SystemImport, MetricOrdersImported))
	hasError(CreateMetric(TypeCounter, SystemImport, MetricOrphanOrders))
	hasError(CreateMetric(TypeCounterVec, SystemClean, MetricRowsDeleted, "table"))
	hasError(CreateMetric(TypeGauge, SystemCheck, MetricCreditViolations))
	hasError(CreateMetric(TypeHistogramVec, SystemRun, MetricCommandDuration, "command", "status"))

	MetricSystemEnabled = err == nil
	return err
}

func CreateMetric(metricType, metricSubsystem, metricName string, labelsValues ...string) error {
	switch metricType {
	case TypeCounter:
		return createCounter(metricSubsystem, metricName)
	case TypeCounterVec:
		return createCounterVec(metricSubsystem, metricName, labelsValues)
	case TypeGauge:
		return createGauge(metricSubsystem, metricName)
	case TypeHistogramVec:
		return createHistogramVec(metricSubsystem, metricName, labelsValues)
	}
	return fmt.Errorf("metric type %s is not defined", metricType)
}

// Registry is the registry of the current run.
func Registry() *prometheus.Registry {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	return registry
}

// Push sends everything collected in this run to a Prometheus Pushgateway.
func Push(url string, job string) error {
	if !MetricSystemEnabled {
		return nil
	}
	if err := push.New(url, job).Gatherer(Registry()).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	logger.Info("[metrics] pushed", "url", url, "job", job)
	return nil
}

func createCounter(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	})
	return registry.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return registry.Register(MetricCollectionCounterVec[subsystem+name])
}

func createGauge(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionGauges[subsystem+name] = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	})
	return registry.Register(MetricCollectionGauges[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	return registry.Register(MetricCollectionHistogramVec[subsystem+name])
}

func AddCounter(subsystem, name string, number float64) {
	if MetricSystemEnabled == false {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Add(number)
		return
	}
	logger.Warn("[metrics] counter not found", "subsystem", subsystem, "name", name)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if MetricSystemEnabled == false {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics] counter vec not found", "subsystem", subsystem, "name", name)
}

func SetGauge(subsystem, name string, value float64) {
	if MetricSystemEnabled == false {
		return
	}
	if v, ok := MetricCollectionGauges[subsystem+name]; ok {
		v.Set(value)
		return
	}
	logger.Warn("[metrics] gauge not found", "subsystem", subsystem, "name", name)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if MetricSystemEnabled == false {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics] histogram vec not found", "subsystem", subsystem, "name", name)
}

func AddImported(customers, orders, orphans int) {
	AddCounter(SystemImport, MetricCustomersImported, float64(customers))
	AddCounter(SystemImport, MetricOrdersImported, float64(orders))
	AddCounter(SystemImport, MetricOrphanOrders, float64(orphans))
}

func AddDeleted(table string, rows int64) {
	AddCounterVec(SystemClean, MetricRowsDeleted, float64(rows), table)
}

func SetCreditViolations(n int) {
	SetGauge(SystemCheck, MetricCreditViolations, float64(n))
}

func AddCommandDuration(seconds float64, command string, status string) {
	AddHistogramVec(SystemRun, MetricCommandDuration, seconds, command, status)
}
