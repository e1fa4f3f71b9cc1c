package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Stage names shared by the recorders and the components reporting to them.
const (
	StageIndex   = "index"
	StageSitemap = "sitemap"
)

// Recorder defines observability hooks for indexer and sitemap runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	SetPostsIndexed(n int)
	IncDateSource(source string)
	SetSitemapURLs(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) SetPostsIndexed(int)                        {}
func (NoopRecorder) IncDateSource(string)                       {}
func (NoopRecorder) SetSitemapURLs(int)                         {}
