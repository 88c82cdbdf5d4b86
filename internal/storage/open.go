package storage

import (
	"context"
	"io"

	"moodboard/internal/domain"
)

// Repositories is the scene and revision store pair of one backend.
type Repositories struct {
	Scenes    domain.SceneRepository
	Revisions domain.RevisionRepository
	closer    io.Closer
}

func (r *Repositories) Close() error {
	return r.closer.Close()
}

// OpenRepositories opens the backend named by driver: "mongo" or one of
// the SQL dialects.
func OpenRepositories(ctx context.Context, driver, dsn string) (*Repositories, error) {
	if driver == "mongo" {
		m, err := OpenMongo(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Repositories{Scenes: m, Revisions: m, closer: m}, nil
	}
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return &Repositories{Scenes: NewSceneStore(db), Revisions: NewRevisionStore(db), closer: db}, nil
}
