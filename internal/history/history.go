// Package history keeps a bounded, linear undo/redo list of scene snapshots.
package history

import (
	"time"

	"moodboard/internal/domain"
)

// MaxHistory is the number of snapshots kept; older ones fall off the front.
const MaxHistory = 50

// Snapshot is a deep copy of a scene taken after one user action.
type Snapshot struct {
	Label     string       `json:"label"`
	Scene     domain.Scene `json:"scene"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Entry describes a snapshot without its scene.
type Entry struct {
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
	Current   bool      `json:"current"`
}

// History is not safe for concurrent use; the composer store serialises access.
type History struct {
	snapshots []Snapshot
	index     int
	limit     int
}

// New starts a history whose only snapshot is initial.
func New(initial domain.Scene) *History {
	return newWithLimit(initial, MaxHistory)
}

func newWithLimit(initial domain.Scene, limit int) *History {
	h := &History{limit: limit}
	h.Reset(initial)
	return h
}

// Reset drops every snapshot and starts over from s.
func (h *History) Reset(s domain.Scene) {
	h.snapshots = []Snapshot{{Label: "open", Scene: s.Clone(), CreatedAt: time.Now()}}
	h.index = 0
}

// Push discards the redo branch, appends a snapshot of s and evicts from the
// front past the limit. The index always ends on the new snapshot.
func (h *History) Push(label string, s domain.Scene) {
	h.snapshots = append(h.snapshots[:h.index+1], Snapshot{
		Label:     label,
		Scene:     s.Clone(),
		CreatedAt: time.Now(),
	})
	if over := len(h.snapshots) - h.limit; over > 0 {
		// copy so the evicted snapshots can be collected
		h.snapshots = append([]Snapshot(nil), h.snapshots[over:]...)
	}
	h.index = len(h.snapshots) - 1
}

// Undo steps back one snapshot and returns a copy of it. It reports false at
// the oldest snapshot.
func (h *History) Undo() (domain.Scene, bool) {
	if !h.CanUndo() {
		return domain.Scene{}, false
	}
	h.index--
	return h.snapshots[h.index].Scene.Clone(), true
}

// Redo steps forward one snapshot. It reports false at the tip.
func (h *History) Redo() (domain.Scene, bool) {
	if !h.CanRedo() {
		return domain.Scene{}, false
	}
	h.index++
	return h.snapshots[h.index].Scene.Clone(), true
}

func (h *History) CanUndo() bool { return h.index > 0 }

func (h *History) CanRedo() bool { return h.index < len(h.snapshots)-1 }

func (h *History) Len() int { return len(h.snapshots) }

func (h *History) Index() int { return h.index }

// Current returns a copy of the snapshot at the index.
func (h *History) Current() domain.Scene {
	return h.snapshots[h.index].Scene.Clone()
}

// Entries lists labels oldest first, marking the current one.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = Entry{Label: s.Label, CreatedAt: s.CreatedAt, Current: i == h.index}
	}
	return out
}
