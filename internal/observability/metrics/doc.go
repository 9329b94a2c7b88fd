// Package metrics holds the business counters of newsdesk.
//
// All metrics are registered with the Prometheus default registry and exposed
// via the /metrics endpoint. HTTP, feed and notifier metrics live next to the
// code that records them.
package metrics
