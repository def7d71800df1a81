package prometheus

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// Collector holds the live counters of one monitoring process and
// exposes them on a private registry.
type Collector struct {
	FramesRead    atomic.Uint64
	FramesSampled atomic.Uint64
	FramesDropped atomic.Uint64
	Depth         atomic.Int64

	skipped *prometheus.CounterVec
	labels  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates a Collector with its collectors registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mclass_classification_skipped_total",
			Help: "Sampled frames whose classification failed, by stage",
		}, []string{"stage"}),
		labels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mclass_label_events_total",
			Help: "Label events recorded in the running session",
		}, []string{"label"}),
	}
	c.register()
	return c
}

func (c *Collector) register() {
	c.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "mclass_frames_read_total",
			Help: "Total frames read from the frame source",
		},
		func() float64 { return float64(c.FramesRead.Load()) },
	))

	c.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "mclass_frames_sampled_total",
			Help: "Total frames accepted by the sampler",
		},
		func() float64 { return float64(c.FramesSampled.Load()) },
	))

	c.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "mclass_frames_dropped_total",
			Help: "Sampled frames dropped because the classification queue was full",
		},
		func() float64 { return float64(c.FramesDropped.Load()) },
	))

	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "mclass_queue_depth",
			Help: "Frames waiting for classification",
		},
		func() float64 { return float64(c.Depth.Load()) },
	))

	c.registry.MustRegister(c.skipped, c.labels)

	for _, l := range domain.Labels {
		c.labels.WithLabelValues(l.String())
	}
}

func (c *Collector) FrameRead()    { c.FramesRead.Add(1) }
func (c *Collector) FrameSampled() { c.FramesSampled.Add(1) }
func (c *Collector) FrameDropped() { c.FramesDropped.Add(1) }
func (c *Collector) QueueDepth(n int) {
	c.Depth.Store(int64(n))
}

func (c *Collector) ClassificationSkipped(stage string) {
	c.skipped.WithLabelValues(stage).Inc()
}

func (c *Collector) LabelRecorded(l domain.Label) {
	c.labels.WithLabelValues(l.String()).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
