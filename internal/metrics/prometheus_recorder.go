package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	postsIndexed  prom.Gauge
	dateSources   *prom.CounterVec
	sitemapURLs   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitekeeper",
			Name:      "stage_duration_seconds",
			Help:      "Duration of index and sitemap runs",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitekeeper",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.postsIndexed = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitekeeper",
			Name:      "posts_indexed",
			Help:      "Number of posts written by the last successful index run",
		})
		pr.dateSources = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitekeeper",
			Name:      "post_date_sources_total",
			Help:      "Sort dates resolved, by the attempt that produced them",
		}, []string{"source"})
		pr.sitemapURLs = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitekeeper",
			Name:      "sitemap_urls",
			Help:      "Number of URLs written by the last successful sitemap run",
		})
		reg.MustRegister(pr.stageDuration, pr.stageResults, pr.postsIndexed, pr.dateSources, pr.sitemapURLs)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) SetPostsIndexed(n int) {
	if p == nil || p.postsIndexed == nil {
		return
	}
	p.postsIndexed.Set(float64(n))
}

func (p *PrometheusRecorder) IncDateSource(source string) {
	if p == nil || p.dateSources == nil {
		return
	}
	p.dateSources.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) SetSitemapURLs(n int) {
	if p == nil || p.sitemapURLs == nil {
		return
	}
	p.sitemapURLs.Set(float64(n))
}
