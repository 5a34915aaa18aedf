// Package services sits between the HTTP handlers and the analytics engines.
//
// # Available Services
//
//	- AnalyticsService: loads and caches the normalized dataset behind an
//	  ingest.Source and runs the engines over filtered views of it
//	- HealthService: liveness, readiness and version reporting
//
// # Dataset cache
//
// AnalyticsService keeps one normalized dataset per source ID together with
// the source fingerprint it was built from. Every call first asks the source
// for its current fingerprint; a mismatch triggers a reload. Concurrent
// reloads of the same fingerprint are collapsed with singleflight, and the
// cache map is guarded by a sync.RWMutex.
//
// Cached datasets are shared between requests and must be treated as
// read-only. The engines never mutate their input.
//
// # Observability
//
// Loads and engine runs open OpenTelemetry spans and record into
// infrastructure.AnalyticsMetrics when one is supplied with WithMetrics.
package services
