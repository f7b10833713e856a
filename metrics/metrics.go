package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/notargets/cutcell/types"
)

// Collectors provides observability for the setup pass.
// One instance is shared by all partitions of an in-process run.
type Collectors struct {
	SetupRuns       prometheus.Counter
	ClustersBuilt   *prometheus.CounterVec
	SetsDeactivated *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
}

// New registers the setup collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collectors{
		SetupRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "cutcell_setup_runs_total",
			Help: "Total number of completed partition setup passes",
		}),
		ClustersBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cutcell_clusters_built_total",
			Help: "Clusters added to the registry arenas, by category and trivial flag",
		}, []string{"category", "trivial"}),
		SetsDeactivated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cutcell_sets_deactivated_total",
			Help: "Sets removed because they are empty on every partition",
		}, []string{"category"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cutcell_setup_stage_duration_seconds",
			Help:    "Duration of each setup stage on one partition",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),
	}
}

// ObserveStage records the duration of a setup stage.
// Call with time.Now() at the start of the stage.
func (c *Collectors) ObserveStage(stage string, start time.Time) {
	if c == nil {
		return
	}
	c.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (c *Collectors) AddClusters(cat types.SetCategory, trivial bool, n int) {
	if c == nil || n == 0 {
		return
	}
	c.ClustersBuilt.WithLabelValues(cat.String(), strconv.FormatBool(trivial)).Add(float64(n))
}

func (c *Collectors) AddDeactivated(cat types.SetCategory, n int) {
	if c == nil || n == 0 {
		return
	}
	c.SetsDeactivated.WithLabelValues(cat.String()).Add(float64(n))
}

func (c *Collectors) IncrementRuns() {
	if c == nil {
		return
	}
	c.SetupRuns.Inc()
}
