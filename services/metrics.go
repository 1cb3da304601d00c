package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bündelt die Zähler der Collector.
type Metrics struct {
	RowsRead       *prometheus.CounterVec
	RowsIncomplete *prometheus.CounterVec
	RowsExisting   *prometheus.CounterVec
	RowsInserted   *prometheus.CounterVec
	Runs           *prometheus.CounterVec
}

// NewMetrics legt die Zähler an und registriert sie bei reg, sofern reg nicht nil ist.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cellcommdb_collect_rows_read_total",
			Help: "Total number of CSV data rows read per collection.",
		}, []string{"collection"}),
		RowsIncomplete: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cellcommdb_collect_rows_incomplete_total",
			Help: "Total number of rows dropped because a referenced key could not be resolved.",
		}, []string{"collection"}),
		RowsExisting: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cellcommdb_collect_rows_existing_total",
			Help: "Total number of rows skipped because their key already exists or repeats in the file.",
		}, []string{"collection"}),
		RowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cellcommdb_collect_rows_inserted_total",
			Help: "Total number of rows appended per table.",
		}, []string{"table"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cellcommdb_collect_runs_total",
			Help: "Total number of collector runs by outcome.",
		}, []string{"collection", "status"}),
	}
	if reg != nil {
		reg.MustRegister(m.RowsRead, m.RowsIncomplete, m.RowsExisting, m.RowsInserted, m.Runs)
	}
	return m
}

func (m *Metrics) observe(collection string, res *LoadResult) {
	m.RowsRead.WithLabelValues(collection).Add(float64(res.RowsRead))
	m.RowsIncomplete.WithLabelValues(collection).Add(float64(res.Incomplete))
	m.RowsExisting.WithLabelValues(collection).Add(float64(res.Existing + res.Duplicates))
	m.RowsInserted.WithLabelValues("multidata").Add(float64(res.Inserted))
	m.RowsInserted.WithLabelValues("complex").Add(float64(res.Complexes))
	m.RowsInserted.WithLabelValues("complex_composition").Add(float64(res.Compositions))
	m.RowsInserted.WithLabelValues("protein").Add(float64(res.Proteins))
}

func (m *Metrics) run(collection string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.Runs.WithLabelValues(collection, status).Inc()
}
