// Package metrics records build and stage metrics.
//
// Components receive a Recorder through injection and default to NoopRecorder,
// so the pipeline never checks whether metrics are enabled:
//
//	gen := generator.New(fsys, opts)                 // NoopRecorder
//	gen := generator.New(fsys, opts, generator.WithRecorder(rec))
//
// PrometheusRecorder keeps the metrics in a Prometheus registry. A one-shot
// build exports them with WriteTextfile for the node_exporter textfile
// collector; watch mode can also serve them over HTTP with HTTPHandler.
package metrics
