package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moodboard/internal/domain"
)

// MaxRevisions is how many saved versions are kept per scene.
const MaxRevisions = 40

// RevisionStore records a copy of the scene on every save and prunes the
// oldest ones past its limit.
type RevisionStore struct {
	db   *DB
	keep int
}

var _ domain.RevisionRepository = (*RevisionStore)(nil)

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db, keep: MaxRevisions}
}

func (s *RevisionStore) RecordRevision(ctx context.Context, label string, scene *domain.Scene) (*domain.Revision, error) {
	doc, err := json.Marshal(scene)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}

	var last sql.NullInt64
	if err := s.db.conn.QueryRowContext(ctx,
		s.db.rebind(`SELECT MAX(seq) FROM scene_revisions WHERE scene_id = ?`), scene.ID,
	).Scan(&last); err != nil {
		return nil, fmt.Errorf("read revision seq: %w", err)
	}

	rev := &domain.Revision{
		ID:        uuid.NewString(),
		SceneID:   scene.ID,
		Seq:       int(last.Int64) + 1,
		Label:     label,
		NodeCount: len(scene.Nodes),
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.conn.ExecContext(ctx, s.db.rebind(
		`INSERT INTO scene_revisions (id, scene_id, seq, label, node_count, document, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		rev.ID, rev.SceneID, rev.Seq, rev.Label, rev.NodeCount, string(doc), rev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}

	if err := s.prune(ctx, scene.ID, rev.Seq); err != nil {
		return nil, err
	}
	return rev, nil
}

// prune drops every revision older than the newest keep.
func (s *RevisionStore) prune(ctx context.Context, sceneID string, newest int) error {
	cutoff := newest - s.keep
	if cutoff <= 0 {
		return nil
	}
	_, err := s.db.conn.ExecContext(ctx,
		s.db.rebind(`DELETE FROM scene_revisions WHERE scene_id = ? AND seq <= ?`), sceneID, cutoff,
	)
	if err != nil {
		return fmt.Errorf("prune revisions: %w", err)
	}
	return nil
}

// ListRevisions returns a scene's revisions, newest first.
func (s *RevisionStore) ListRevisions(ctx context.Context, sceneID string) ([]domain.Revision, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.db.rebind(
		`SELECT id, scene_id, seq, label, node_count, created_at
		 FROM scene_revisions WHERE scene_id = ? ORDER BY seq DESC`), sceneID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	out := []domain.Revision{}
	for rows.Next() {
		var r domain.Revision
		if err := rows.Scan(&r.ID, &r.SceneID, &r.Seq, &r.Label, &r.NodeCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRevision returns the scene stored in revision id.
func (s *RevisionStore) GetRevision(ctx context.Context, id string) (*domain.Scene, error) {
	var doc string
	err := s.db.conn.QueryRowContext(ctx,
		s.db.rebind(`SELECT document FROM scene_revisions WHERE id = ?`), id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return decodeScene(doc)
}
