package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"moodboard/internal/domain"
)

const defaultMongoDatabase = "moodboard"

// MongoStore keeps scenes and their revisions as documents. The scene
// itself is stored as its JSON document so the variant tags survive as-is.
type MongoStore struct {
	client    *mongo.Client
	scenes    *mongo.Collection
	revisions *mongo.Collection
	keep      int
}

var (
	_ domain.SceneRepository    = (*MongoStore)(nil)
	_ domain.RevisionRepository = (*MongoStore)(nil)
)

type mongoScene struct {
	domain.SceneSummary `bson:",inline"`
	Document            string `bson:"document"`
}

type mongoRevision struct {
	domain.Revision `bson:",inline"`
	Document        string `bson:"document"`
}

// OpenMongo connects to uri. The database is taken from the uri path and
// defaults to "moodboard".
func OpenMongo(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(mongoDatabaseName(uri))
	s := &MongoStore{
		client:    client,
		scenes:    db.Collection("scenes"),
		revisions: db.Collection("scene_revisions"),
		keep:      MaxRevisions,
	}
	_, err = s.revisions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sceneId", Value: 1}, {Key: "seq", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create revision index: %w", err)
	}
	return s, nil
}

// mongoDatabaseName extracts the database from a mongodb:// or
// mongodb+srv:// uri path.
func mongoDatabaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultMongoDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDatabase
}

func (s *MongoStore) SaveScene(ctx context.Context, scene *domain.Scene) error {
	doc, err := json.Marshal(scene)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	row := mongoScene{
		SceneSummary: domain.SceneSummary{
			ID:         scene.ID,
			Name:       scene.Name,
			TotalPages: scene.TotalPages,
			NodeCount:  len(scene.Nodes),
			UpdatedAt:  time.Now().UTC(),
		},
		Document: string(doc),
	}
	_, err = s.scenes.ReplaceOne(ctx, bson.D{{Key: "_id", Value: scene.ID}}, row, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}

func (s *MongoStore) GetScene(ctx context.Context, id string) (*domain.Scene, error) {
	var row mongoScene
	err := s.scenes.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("scene %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return decodeScene(row.Document)
}

func (s *MongoStore) ListScenes(ctx context.Context) ([]domain.SceneSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.D{{Key: "document", Value: 0}})
	cur, err := s.scenes.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	out := []domain.SceneSummary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode scenes: %w", err)
	}
	return out, nil
}

func (s *MongoStore) DeleteScene(ctx context.Context, id string) error {
	res, err := s.scenes.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("scene %s: %w", id, domain.ErrNotFound)
	}
	if _, err := s.revisions.DeleteMany(ctx, bson.D{{Key: "sceneId", Value: id}}); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return nil
}

func (s *MongoStore) RecordRevision(ctx context.Context, label string, scene *domain.Scene) (*domain.Revision, error) {
	doc, err := json.Marshal(scene)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}

	var last domain.Revision
	err = s.revisions.FindOne(ctx,
		bson.D{{Key: "sceneId", Value: scene.ID}},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}).SetProjection(bson.D{{Key: "seq", Value: 1}}),
	).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("read revision seq: %w", err)
	}

	rev := domain.Revision{
		ID:        uuid.NewString(),
		SceneID:   scene.ID,
		Seq:       last.Seq + 1,
		Label:     label,
		NodeCount: len(scene.Nodes),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.revisions.InsertOne(ctx, mongoRevision{Revision: rev, Document: string(doc)}); err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}

	if cutoff := rev.Seq - s.keep; cutoff > 0 {
		_, err := s.revisions.DeleteMany(ctx, bson.D{
			{Key: "sceneId", Value: scene.ID},
			{Key: "seq", Value: bson.D{{Key: "$lte", Value: cutoff}}},
		})
		if err != nil {
			return nil, fmt.Errorf("prune revisions: %w", err)
		}
	}
	return &rev, nil
}

func (s *MongoStore) ListRevisions(ctx context.Context, sceneID string) ([]domain.Revision, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetProjection(bson.D{{Key: "document", Value: 0}})
	cur, err := s.revisions.Find(ctx, bson.D{{Key: "sceneId", Value: sceneID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	out := []domain.Revision{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode revisions: %w", err)
	}
	return out, nil
}

func (s *MongoStore) GetRevision(ctx context.Context, id string) (*domain.Scene, error) {
	var row mongoRevision
	err := s.revisions.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("revision %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return decodeScene(row.Document)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
