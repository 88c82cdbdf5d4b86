package domain

import (
	"context"
	"time"
)

// SceneRepository persists scenes. Implementations return ErrNotFound
// (wrapped) for unknown ids.
type SceneRepository interface {
	SaveScene(ctx context.Context, s *Scene) error
	GetScene(ctx context.Context, id string) (*Scene, error)
	ListScenes(ctx context.Context) ([]SceneSummary, error)
	DeleteScene(ctx context.Context, id string) error
	Close() error
}

// Revision is one saved version of a scene. Seq grows per scene.
type Revision struct {
	ID        string    `json:"id" bson:"_id"`
	SceneID   string    `json:"sceneId" bson:"sceneId"`
	Seq       int       `json:"seq" bson:"seq"`
	Label     string    `json:"label" bson:"label"`
	NodeCount int       `json:"nodeCount" bson:"nodeCount"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// RevisionRepository keeps a bounded list of saved versions per scene.
type RevisionRepository interface {
	RecordRevision(ctx context.Context, label string, s *Scene) (*Revision, error)
	ListRevisions(ctx context.Context, sceneID string) ([]Revision, error)
	GetRevision(ctx context.Context, id string) (*Scene, error)
}
