package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"moodboard/internal/composer"
	"moodboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Scene Service: open documents and their persistence
// ─────────────────────────────────────────────────────────────

// SceneService keeps one composer Store per open scene and moves scenes
// to and from the repositories.
type SceneService struct {
	scenes    domain.SceneRepository
	revisions domain.RevisionRepository
	emitter   EventEmitter
	log       *zap.Logger
	saves     saveTracker
	now       func() time.Time

	mu   sync.Mutex
	open map[string]*openScene
}

type openScene struct {
	store       *composer.Store
	unsubscribe func()
}

// SaveResult is the payload of EventSceneSaved.
type SaveResult struct {
	SceneID  string           `json:"sceneId"`
	SavedAt  time.Time        `json:"savedAt"`
	Revision *domain.Revision `json:"revision,omitempty"`
	// Pending is set when the scene changed while it was being written;
	// the store stays dirty and the next save picks the change up.
	Pending bool `json:"pending,omitempty"`
}

// NewSceneService creates a SceneService. revisions may be nil, in which
// case saves keep no history.
func NewSceneService(scenes domain.SceneRepository, revisions domain.RevisionRepository, emitter EventEmitter, log *zap.Logger) *SceneService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SceneService{
		scenes:    scenes,
		revisions: revisions,
		emitter:   emitter,
		log:       log.Named("scenes"),
		now:       time.Now,
		open:      make(map[string]*openScene),
	}
}

// Create starts a new scene from doc, stores it and opens it.
func (s *SceneService) Create(ctx context.Context, doc domain.Document) (*composer.Store, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.Get(doc.ID); ok {
		return nil, fmt.Errorf("create scene %s: already open", doc.ID)
	}
	store := s.register(composer.New(doc, composer.WithLogger(s.log)))
	if _, err := s.save(ctx, store, "create"); err != nil {
		s.Close(doc.ID)
		return nil, err
	}
	return store, nil
}

// Open returns the open store for id, loading the scene from the
// repository on first use.
func (s *SceneService) Open(ctx context.Context, id string) (*composer.Store, error) {
	if store, ok := s.Get(id); ok {
		return store, nil
	}
	scene, err := s.scenes.GetScene(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	store := s.register(composer.New(scene.Document(), composer.WithLogger(s.log)))
	s.log.Info("scene opened", zap.String("scene", id), zap.Int("nodes", len(scene.Nodes)))
	return store, nil
}

// register adds store to the open set, or returns the store that won a
// concurrent Open of the same id.
func (s *SceneService) register(store *composer.Store) *composer.Store {
	id := store.SceneID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.open[id]; ok {
		return existing.store
	}
	unsub := store.Subscribe(func(c composer.Change) {
		s.emitter.Emit(context.Background(), EventSceneChanged, c)
	})
	s.open[id] = &openScene{store: store, unsubscribe: unsub}
	return store
}

// Get returns an already open store.
func (s *SceneService) Get(id string) (*composer.Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.open[id]
	if !ok {
		return nil, false
	}
	return o.store, true
}

// OpenIDs lists the open scene ids, sorted.
func (s *SceneService) OpenIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close drops an open scene without saving it.
func (s *SceneService) Close(id string) bool {
	s.mu.Lock()
	o, ok := s.open[id]
	delete(s.open, id)
	s.mu.Unlock()
	if ok {
		o.unsubscribe()
	}
	return ok
}

func (s *SceneService) List(ctx context.Context) ([]domain.SceneSummary, error) {
	return s.scenes.ListScenes(ctx)
}

// Delete closes and removes a scene with its revisions.
func (s *SceneService) Delete(ctx context.Context, id string) error {
	s.Close(id)
	if err := s.scenes.DeleteScene(ctx, id); err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	s.emitter.Emit(ctx, EventSceneDeleted, id)
	s.log.Info("scene deleted", zap.String("scene", id))
	return nil
}

// ── Saving ─────────────────────────────────────────────────

// Save persists the open scene id. A save already running for the same
// scene makes this call fail with domain.ErrSaveInProgress.
func (s *SceneService) Save(ctx context.Context, id string) (*SaveResult, error) {
	store, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("save scene %s: %w", id, domain.ErrNotFound)
	}
	return s.save(ctx, store, "save")
}

func (s *SceneService) save(ctx context.Context, store *composer.Store, label string) (*SaveResult, error) {
	id := store.SceneID()
	finish, ok := s.saves.begin(id)
	if !ok {
		return nil, fmt.Errorf("save scene %s: %w", id, domain.ErrSaveInProgress)
	}
	defer finish()

	store.SetSaving(true)
	defer store.SetSaving(false)

	scene, version := store.VersionedScene()
	if err := s.scenes.SaveScene(ctx, &scene); err != nil {
		s.emitter.Emit(ctx, EventSceneSaveFailed, id)
		s.log.Error("save failed", zap.String("scene", id), zap.Error(err))
		return nil, fmt.Errorf("save scene: %w", err)
	}

	res := &SaveResult{SceneID: id, SavedAt: s.now().UTC()}
	if s.revisions != nil {
		rev, err := s.revisions.RecordRevision(ctx, label, &scene)
		if err != nil {
			// the scene itself is stored; only the history entry is missing
			s.log.Warn("record revision failed", zap.String("scene", id), zap.Error(err))
		} else {
			res.Revision = rev
		}
	}

	res.Pending = !store.MarkSaved(res.SavedAt, version)
	s.emitter.Emit(ctx, EventSceneSaved, res)
	s.log.Info("scene saved",
		zap.String("scene", id),
		zap.String("label", label),
		zap.Int("nodes", len(scene.Nodes)),
		zap.Bool("pending", res.Pending),
	)
	return res, nil
}

// SaveDirty saves every open scene that has unsaved changes and is not
// already being saved. It returns how many were stored.
func (s *SceneService) SaveDirty(ctx context.Context) int {
	s.mu.Lock()
	stores := make([]*composer.Store, 0, len(s.open))
	for _, o := range s.open {
		stores = append(stores, o.store)
	}
	s.mu.Unlock()

	saved := 0
	for _, store := range stores {
		if !store.IsDirty() || s.saves.writing(store.SceneID()) {
			continue
		}
		_, err := s.save(ctx, store, "autosave")
		switch {
		case err == nil:
			saved++
		case errors.Is(err, domain.ErrSaveInProgress):
		default:
			s.log.Warn("autosave failed", zap.String("scene", store.SceneID()), zap.Error(err))
		}
	}
	return saved
}

// WaitSaves blocks until in-flight saves finish or ctx is done.
func (s *SceneService) WaitSaves(ctx context.Context) {
	s.saves.wait(ctx)
}

// ── Revisions ──────────────────────────────────────────────

func (s *SceneService) Revisions(ctx context.Context, sceneID string) ([]domain.Revision, error) {
	if s.revisions == nil {
		return []domain.Revision{}, nil
	}
	return s.revisions.ListRevisions(ctx, sceneID)
}

// RestoreRevision loads a saved revision into the open scene as one
// undoable step. The restored scene still needs saving.
func (s *SceneService) RestoreRevision(ctx context.Context, sceneID, revisionID string) (*composer.Store, error) {
	if s.revisions == nil {
		return nil, fmt.Errorf("revision %s: %w", revisionID, domain.ErrNotFound)
	}
	scene, err := s.revisions.GetRevision(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("restore revision: %w", err)
	}
	if scene.ID != sceneID {
		return nil, fmt.Errorf("revision %s of scene %s: %w", revisionID, sceneID, domain.ErrNotFound)
	}
	store, err := s.Open(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	store.ReplaceScene(*scene, "restore revision")
	return store, nil
}

// Shutdown saves dirty scenes, waits for running saves and closes every
// open scene.
func (s *SceneService) Shutdown(ctx context.Context) {
	if n := s.SaveDirty(ctx); n > 0 {
		s.log.Info("saved on shutdown", zap.Int("scenes", n))
	}
	s.WaitSaves(ctx)
	for _, id := range s.OpenIDs() {
		s.Close(id)
	}
}
