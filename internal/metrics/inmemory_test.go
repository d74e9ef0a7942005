package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	m := NewInMemory()

	m.IncPrediction("heart", OutcomeSuccess)
	m.IncPrediction("heart", OutcomeSuccess)
	m.IncPrediction("stress", OutcomeFailure)
	m.IncPredictionPersisted()
	m.IncRegistration()
	m.IncLogin(OutcomeFailure)
	m.IncGeneration("chat", OutcomeSuccess)
	m.IncGenerationCacheHit()
	m.IncGenerationCacheMiss()
	m.IncGenerationCacheMiss()

	snap := m.Snapshot()

	if len(snap.Predictions) != 2 {
		t.Fatalf("expected 2 prediction series, got %d", len(snap.Predictions))
	}
	if snap.Predictions[0].Labels != [2]string{"heart", OutcomeSuccess} || snap.Predictions[0].Value != 2 {
		t.Errorf("unexpected first series: %+v", snap.Predictions[0])
	}
	if snap.PredictionsPersisted != 1 || snap.Registrations != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.GenerationCacheHits != 1 || snap.GenerationCacheMiss != 2 {
		t.Errorf("unexpected cache counters: hits=%d misses=%d", snap.GenerationCacheHits, snap.GenerationCacheMiss)
	}
	if len(snap.Logins) != 1 || snap.Logins[0].Labels[0] != OutcomeFailure {
		t.Errorf("unexpected logins: %+v", snap.Logins)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncGeneration("chat", OutcomeSuccess)
			m.IncRegistration()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.Registrations != 50 {
		t.Errorf("expected 50 registrations, got %d", snap.Registrations)
	}
	if len(snap.Generations) != 1 || snap.Generations[0].Value != 50 {
		t.Errorf("unexpected generations: %+v", snap.Generations)
	}
}
