/*
Package observability turns runner lifecycle hooks into Prometheus metrics.

Metrics are registered on a caller-supplied prometheus.Registerer so that tests
and embedding applications can keep them off the global registry.
*/
package observability
