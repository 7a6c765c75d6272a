// Package metrics exports generation and streaming metrics to Prometheus.
//
// The [Collector] keeps its own registry so that embedding applications
// are not forced to share the global default registry. Mount
// [Collector.Handler] wherever metrics should be scraped.
package metrics
