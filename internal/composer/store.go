// Package composer holds the live state of one open moodboard: the scene,
// its undo history, the selection, the viewport and the save flags. Every
// change to the document goes through a Store method.
package composer

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"moodboard/internal/domain"
	"moodboard/internal/history"
	"moodboard/internal/layout"
)

// ChangeKind tells listeners which part of the state moved.
type ChangeKind string

const (
	ChangeScene     ChangeKind = "scene"
	ChangeSelection ChangeKind = "selection"
	ChangeViewport  ChangeKind = "viewport"
	ChangePage      ChangeKind = "page"
	ChangeStatus    ChangeKind = "status"
)

// Change is sent to listeners after the store lock is released.
type Change struct {
	Kind    ChangeKind
	SceneID string
}

type Listener func(Change)

// Store is safe for concurrent use. Reads return copies.
type Store struct {
	mu sync.RWMutex

	scene       domain.Scene
	history     *history.History
	selection   map[string]struct{}
	viewport    Viewport
	currentPage int

	dirty       bool
	saving      bool
	lastSavedAt time.Time
	editing     bool
	// version counts scene changes; a save only cleans the store when
	// nothing moved since its copy was taken
	version uint64

	newID     func() string
	log       *zap.Logger
	layout    *layout.Engine
	listeners map[int]Listener
	nextLis   int
}

type Option func(*Store)

// WithIDGenerator replaces the uuid generator used for new nodes.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New opens doc in a fresh store. An empty document id gets a generated one.
func New(doc domain.Document, opts ...Option) *Store {
	s := &Store{
		newID:     uuid.NewString,
		log:       zap.NewNop(),
		layout:    layout.NewEngine(),
		listeners: make(map[int]Listener),
	}
	for _, o := range opts {
		o(s)
	}
	s.initScene(doc)
	return s
}

// InitScene replaces the open document with doc and starts a new history.
// The store is clean afterwards.
func (s *Store) InitScene(doc domain.Document) {
	s.mu.Lock()
	s.initScene(doc)
	id := s.scene.ID
	s.mu.Unlock()
	s.emit(ChangeScene, id)
}

func (s *Store) initScene(doc domain.Document) {
	if doc.ID == "" {
		doc.ID = s.newID()
	}
	s.scene = domain.NewScene(doc)
	s.history = history.New(s.scene)
	s.selection = make(map[string]struct{})
	s.viewport = DefaultViewport()
	s.currentPage = 0
	s.dirty = false
	s.saving = false
	s.editing = false
	s.version++
	s.log.Debug("scene initialised",
		zap.String("scene", s.scene.ID),
		zap.Int("nodes", len(s.scene.Nodes)),
		zap.Int("pages", s.scene.TotalPages),
	)
}

// LoadDocument decodes a persisted scene and opens it.
func (s *Store) LoadDocument(data []byte) error {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	s.InitScene(doc)
	return nil
}

// ToJSON encodes the scene in its persisted shape.
func (s *Store) ToJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.scene)
}

// Scene returns a copy of the live scene.
func (s *Store) Scene() domain.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.Clone()
}

// VersionedScene returns a copy of the live scene and the change counter
// it belongs to. Pass the version to MarkSaved once the copy is stored.
func (s *Store) VersionedScene() (domain.Scene, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.Clone(), s.version
}

func (s *Store) SceneID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.ID
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextLis
	s.nextLis++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(kind ChangeKind, sceneID string) {
	s.mu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.RUnlock()
	for _, l := range ls {
		l(Change{Kind: kind, SceneID: sceneID})
	}
}

// mutate runs fn under the write lock and notifies listeners when fn
// reports a change.
func (s *Store) mutate(kind ChangeKind, fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	id := s.scene.ID
	s.mu.Unlock()
	if changed {
		s.emit(kind, id)
	}
	return changed
}

// commit installs next as the live scene and records one history step.
// Any live edit in progress is folded into this step.
func (s *Store) commit(label string, next domain.Scene) {
	if next.Nodes == nil {
		next.Nodes = []domain.Node{}
	}
	s.scene = next
	s.editing = false
	s.touch()
	s.pruneSelection()
	s.history.Push(label, s.scene)
	s.log.Debug("commit", zap.String("scene", s.scene.ID), zap.String("action", label))
}

// touch marks the scene changed.
func (s *Store) touch() {
	s.dirty = true
	s.version++
}

// withNodes returns a copy of the scene header carrying nodes.
func (s *Store) withNodes(nodes []domain.Node) domain.Scene {
	next := s.scene
	next.Nodes = nodes
	return next
}

// ── Transient edits ────────────────────────────────────────

// BeginTransientEdit opens a gesture. UpdateNode calls until CommitEdit,
// CancelEdit or UpdateNodeWithHistory do not touch history. UpdateNode
// opens a gesture itself when none is open.
func (s *Store) BeginTransientEdit() {
	s.mu.Lock()
	s.editing = true
	s.mu.Unlock()
}

func (s *Store) InTransientEdit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editing
}

// CommitEdit ends the open gesture with a single history step, or none
// when the scene is back where the gesture started. Without an open
// gesture it does nothing.
func (s *Store) CommitEdit(label string) bool {
	return s.mutate(ChangeScene, func() bool {
		if !s.editing {
			return false
		}
		s.editing = false
		return s.commitIfMoved(label)
	})
}

// commitIfMoved records the live scene when it differs from the last
// history step.
func (s *Store) commitIfMoved(label string) bool {
	if reflect.DeepEqual(s.scene, s.history.Current()) {
		return false
	}
	s.commit(label, s.scene)
	return true
}

// CancelEdit drops every live update of the open gesture.
func (s *Store) CancelEdit() bool {
	return s.mutate(ChangeScene, func() bool {
		if !s.editing {
			return false
		}
		s.editing = false
		base := s.history.Current()
		if reflect.DeepEqual(s.scene, base) {
			return false
		}
		s.scene = base
		s.touch()
		s.pruneSelection()
		s.clampPage()
		return true
	})
}

// ── History ────────────────────────────────────────────────

// Undo restores the previous snapshot. Selection is cleared, the viewport
// is kept and the document becomes dirty.
func (s *Store) Undo() bool {
	return s.mutate(ChangeScene, func() bool {
		return s.restore(s.history.Undo())
	})
}

func (s *Store) Redo() bool {
	return s.mutate(ChangeScene, func() bool {
		return s.restore(s.history.Redo())
	})
}

func (s *Store) restore(scene domain.Scene, ok bool) bool {
	if !ok {
		return false
	}
	s.scene = scene
	s.editing = false
	s.selection = make(map[string]struct{})
	s.touch()
	s.clampPage()
	return true
}

// ReplaceScene swaps in another version of the open scene as one undoable
// step. The scene id is kept.
func (s *Store) ReplaceScene(next domain.Scene, label string) {
	s.mutate(ChangeScene, func() bool {
		next = next.Clone()
		next.ID = s.scene.ID
		s.commit(label, next)
		s.clampPage()
		return true
	})
}

func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// HistoryLabels lists history steps oldest first.
func (s *Store) HistoryLabels() []history.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Entries()
}

// ── Save status ────────────────────────────────────────────

// MarkSaved records a successful save of the scene taken at version (see
// VersionedScene). The store only becomes clean when no change landed
// after that copy; it reports whether it did.
func (s *Store) MarkSaved(at time.Time, version uint64) bool {
	var clean bool
	s.mutate(ChangeStatus, func() bool {
		s.lastSavedAt = at
		if s.version == version {
			s.dirty = false
		}
		clean = !s.dirty
		return true
	})
	return clean
}

func (s *Store) SetSaving(saving bool) {
	s.mutate(ChangeStatus, func() bool {
		changed := s.saving != saving
		s.saving = saving
		return changed
	})
}

func (s *Store) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Store) IsSaving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saving
}

func (s *Store) LastSavedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSavedAt
}

// Status is a one-shot view of the flags shown next to the save button.
type Status struct {
	SceneID     string    `json:"sceneId"`
	Dirty       bool      `json:"dirty"`
	Saving      bool      `json:"saving"`
	LastSavedAt time.Time `json:"lastSavedAt"`
	CanUndo     bool      `json:"canUndo"`
	CanRedo     bool      `json:"canRedo"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	Selection   []string  `json:"selection"`
	Viewport    Viewport  `json:"viewport"`
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		SceneID:     s.scene.ID,
		Dirty:       s.dirty,
		Saving:      s.saving,
		LastSavedAt: s.lastSavedAt,
		CanUndo:     s.history.CanUndo(),
		CanRedo:     s.history.CanRedo(),
		CurrentPage: s.currentPage,
		TotalPages:  s.scene.TotalPages,
		Selection:   s.selectedIDs(),
		Viewport:    s.viewport,
	}
}
