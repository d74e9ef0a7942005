// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Outcome labels shared by the recorders.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Model serving
	IncPrediction(model, outcome string)
	IncPredictionPersisted()
	IncModelReload(outcome string)

	// Accounts
	IncRegistration()
	IncLogin(outcome string)

	// Generative API
	IncGeneration(kind, outcome string)
	IncGenerationCacheHit()
	IncGenerationCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
