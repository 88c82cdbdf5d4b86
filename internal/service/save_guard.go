package service

import (
	"context"
	"sync"
)

// saveTracker admits one save per scene and lets shutdown wait for the
// saves still writing. Each admitted save owns a channel that closes when
// it finishes.
type saveTracker struct {
	mu       sync.Mutex
	inFlight map[string]chan struct{}
}

// begin admits a save of sceneID. The returned finish must be called once
// the repository returned; ok is false while another save of the scene is
// still writing.
func (t *saveTracker) begin(sceneID string) (finish func(), ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inFlight == nil {
		t.inFlight = make(map[string]chan struct{})
	}
	if _, busy := t.inFlight[sceneID]; busy {
		return nil, false
	}
	done := make(chan struct{})
	t.inFlight[sceneID] = done
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.inFlight, sceneID)
			t.mu.Unlock()
			close(done)
		})
	}, true
}

// writing reports whether a save of sceneID has been admitted and not
// finished.
func (t *saveTracker) writing(sceneID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, busy := t.inFlight[sceneID]
	return busy
}

// wait blocks until the saves running at call time finish or ctx ends.
// Saves admitted afterwards are not waited for.
func (t *saveTracker) wait(ctx context.Context) {
	t.mu.Lock()
	pending := make([]chan struct{}, 0, len(t.inFlight))
	for _, done := range t.inFlight {
		pending = append(pending, done)
	}
	t.mu.Unlock()

	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
	}
}
