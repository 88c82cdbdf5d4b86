package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"moodboard/internal/domain"
)

// SceneStore keeps one row per scene with the persisted document as JSON.
type SceneStore struct {
	db *DB
}

var _ domain.SceneRepository = (*SceneStore)(nil)

func NewSceneStore(db *DB) *SceneStore {
	return &SceneStore{db: db}
}

func (s *SceneStore) SaveScene(ctx context.Context, scene *domain.Scene) error {
	doc, err := json.Marshal(scene)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	q := s.db.upsert("scenes", "id", []string{"id", "name", "total_pages", "node_count", "document", "updated_at"})
	_, err = s.db.conn.ExecContext(ctx, s.db.rebind(q),
		scene.ID, scene.Name, scene.TotalPages, len(scene.Nodes), string(doc), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}

func (s *SceneStore) GetScene(ctx context.Context, id string) (*domain.Scene, error) {
	var doc string
	err := s.db.conn.QueryRowContext(ctx,
		s.db.rebind(`SELECT document FROM scenes WHERE id = ?`), id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scene %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return decodeScene(doc)
}

// ListScenes returns scene summaries, most recently saved first.
func (s *SceneStore) ListScenes(ctx context.Context) ([]domain.SceneSummary, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, total_pages, node_count, updated_at FROM scenes ORDER BY updated_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	out := []domain.SceneSummary{}
	for rows.Next() {
		var sum domain.SceneSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.TotalPages, &sum.NodeCount, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteScene removes a scene and its revisions.
func (s *SceneStore) DeleteScene(ctx context.Context, id string) error {
	res, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM scenes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scene %s: %w", id, domain.ErrNotFound)
	}
	if _, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM scene_revisions WHERE scene_id = ?`), id); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return nil
}

func (s *SceneStore) Close() error {
	return s.db.Close()
}

// decodeScene turns a stored document back into a scene, applying the same
// defaults as a freshly loaded one.
func decodeScene(doc string) (*domain.Scene, error) {
	var d domain.Document
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	scene := domain.NewScene(d)
	return &scene, nil
}
