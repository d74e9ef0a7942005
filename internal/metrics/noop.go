package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPrediction is a no-op.
func (n *NoopRecorder) IncPrediction(model, outcome string) {}

// IncPredictionPersisted is a no-op.
func (n *NoopRecorder) IncPredictionPersisted() {}

// IncModelReload is a no-op.
func (n *NoopRecorder) IncModelReload(outcome string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(outcome string) {}

// IncGeneration is a no-op.
func (n *NoopRecorder) IncGeneration(kind, outcome string) {}

// IncGenerationCacheHit is a no-op.
func (n *NoopRecorder) IncGenerationCacheHit() {}

// IncGenerationCacheMiss is a no-op.
func (n *NoopRecorder) IncGenerationCacheMiss() {}
