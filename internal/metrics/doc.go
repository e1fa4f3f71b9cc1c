// Package metrics provides run metrics for sitekeeper.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so one-shot CLI runs carry no metrics overhead. The long-running
// watch command swaps in a PrometheusRecorder and serves it with HTTPHandler:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	indexer := postindex.New(cfg, postindex.WithRecorder(recorder))
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
