package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
)

// LabeledCount is a counter value with its label pair.
type LabeledCount struct {
	Labels [2]string
	Value  uint64
}

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Predictions          []LabeledCount // model, outcome
	PredictionsPersisted uint64
	ModelReloads         []LabeledCount // outcome, ""
	Registrations        uint64
	Logins               []LabeledCount // outcome, ""
	Generations          []LabeledCount // kind, outcome
	GenerationCacheHits  uint64
	GenerationCacheMiss  uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	predictionsPersisted uint64
	registrations        uint64
	generationCacheHits  uint64
	generationCacheMiss  uint64

	predictions  labeledCounter
	modelReloads labeledCounter
	logins       labeledCounter
	generations  labeledCounter
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Predictions:          m.predictions.snapshot(),
		PredictionsPersisted: atomic.LoadUint64(&m.predictionsPersisted),
		ModelReloads:         m.modelReloads.snapshot(),
		Registrations:        atomic.LoadUint64(&m.registrations),
		Logins:               m.logins.snapshot(),
		Generations:          m.generations.snapshot(),
		GenerationCacheHits:  atomic.LoadUint64(&m.generationCacheHits),
		GenerationCacheMiss:  atomic.LoadUint64(&m.generationCacheMiss),
	}
}

// IncPrediction increments the prediction counter for a model and outcome.
func (m *InMemoryRecorder) IncPrediction(model, outcome string) {
	m.predictions.inc(model, outcome)
}

// IncPredictionPersisted increments the persisted prediction counter.
func (m *InMemoryRecorder) IncPredictionPersisted() {
	atomic.AddUint64(&m.predictionsPersisted, 1)
}

// IncModelReload increments the model reload counter.
func (m *InMemoryRecorder) IncModelReload(outcome string) {
	m.modelReloads.inc(outcome, "")
}

// IncRegistration increments the registration counter.
func (m *InMemoryRecorder) IncRegistration() {
	atomic.AddUint64(&m.registrations, 1)
}

// IncLogin increments the login counter.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.logins.inc(outcome, "")
}

// IncGeneration increments the generation counter for a prompt kind and outcome.
func (m *InMemoryRecorder) IncGeneration(kind, outcome string) {
	m.generations.inc(kind, outcome)
}

// IncGenerationCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncGenerationCacheHit() {
	atomic.AddUint64(&m.generationCacheHits, 1)
}

// IncGenerationCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncGenerationCacheMiss() {
	atomic.AddUint64(&m.generationCacheMiss, 1)
}

type labeledCounter struct {
	mu     sync.Mutex
	counts map[[2]string]uint64
}

func (c *labeledCounter) inc(a, b string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[[2]string]uint64)
	}
	c.counts[[2]string{a, b}]++
}

func (c *labeledCounter) snapshot() []LabeledCount {
	c.mu.Lock()
	out := make([]LabeledCount, 0, len(c.counts))
	for k, v := range c.counts {
		out = append(out, LabeledCount{Labels: k, Value: v})
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Labels[0] != out[j].Labels[0] {
			return out[i].Labels[0] < out[j].Labels[0]
		}
		return out[i].Labels[1] < out[j].Labels[1]
	})
	return out
}
