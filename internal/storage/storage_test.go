package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "moodboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testScene(id string) *domain.Scene {
	s := domain.NewScene(domain.Document{ID: id, Name: "Spring wedding"})
	s.TotalPages = 2
	s.Background = domain.GradientBackground([]string{"#fef3c7", "#fde68a"}, "to bottom")
	s.Nodes = []domain.Node{
		{
			ID: "n1", X: 20, Y: 20, Width: 160, Height: 160, Opacity: 1, Visible: true, ZIndex: 0,
			Content: &domain.DecorItem{ProductID: "p1", ProductName: "Arch", Quantity: 1, DisplayMode: domain.DisplayModeCard},
		},
		{
			ID: "n2", X: 40, Y: 300, Width: 240, Height: 60, Opacity: 0.8, Visible: false, ZIndex: 1, PageIndex: 1,
			Content: &domain.TextContent{Content: "Ceremony", FontSize: 24, FontFamily: "Inter"},
		},
	}
	return &s
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	assert.Error(t, err)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	db, err := Open("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open("sqlite", path)
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, db.Dialect())
	db.Close()
}

func TestSceneStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSceneStore(openTestDB(t))
	want := testScene("s1")

	require.NoError(t, store.SaveScene(ctx, want))
	got, err := store.GetScene(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Name = "Renamed"
	require.NoError(t, store.SaveScene(ctx, want))
	got, err = store.GetScene(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestSceneStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewSceneStore(db)
	revs := NewRevisionStore(db)

	require.NoError(t, store.SaveScene(ctx, testScene("a")))
	require.NoError(t, store.SaveScene(ctx, testScene("b")))
	_, err := revs.RecordRevision(ctx, "save", testScene("a"))
	require.NoError(t, err)

	list, err := store.ListScenes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].NodeCount)
	assert.Equal(t, 2, list[0].TotalPages)
	assert.False(t, list[0].UpdatedAt.IsZero())

	require.NoError(t, store.DeleteScene(ctx, "a"))
	_, err = store.GetScene(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.DeleteScene(ctx, "a"), domain.ErrNotFound)

	left, err := revs.ListRevisions(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, left, "revisions go with the scene")
}

func TestRevisionStore_PrunesOldest(t *testing.T) {
	ctx := context.Background()
	revs := NewRevisionStore(openTestDB(t))
	revs.keep = 3

	scene := testScene("s1")
	var last *domain.Revision
	for i := 0; i < 5; i++ {
		r, err := revs.RecordRevision(ctx, "save", scene)
		require.NoError(t, err)
		last = r
	}

	list, err := revs.ListRevisions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{5, 4, 3}, []int{list[0].Seq, list[1].Seq, list[2].Seq})

	got, err := revs.GetRevision(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, scene, got)

	_, err = revs.GetRevision(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: DialectPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &DB{dialect: DialectSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestUpsert(t *testing.T) {
	lite := &DB{dialect: DialectSQLite}
	assert.Equal(t,
		"INSERT INTO t (id, a) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET a = excluded.a",
		lite.upsert("t", "id", []string{"id", "a"}))

	my := &DB{dialect: DialectMySQL}
	assert.Equal(t,
		"INSERT INTO t (id, a) VALUES (?, ?) ON DUPLICATE KEY UPDATE a = VALUES(a)",
		my.upsert("t", "id", []string{"id", "a"}))
}

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t, "u:p@tcp(h:3306)/db?parseTime=true", mysqlDSN("u:p@tcp(h:3306)/db"))
	assert.Equal(t, "u:p@tcp(h)/db?charset=utf8mb4&parseTime=true", mysqlDSN("u:p@tcp(h)/db?charset=utf8mb4"))
	assert.Equal(t, "x?parseTime=false", mysqlDSN("x?parseTime=false"))
}

func TestMongoDatabaseName(t *testing.T) {
	assert.Equal(t, "boards", mongoDatabaseName("mongodb://localhost:27017/boards"))
	assert.Equal(t, "boards", mongoDatabaseName("mongodb+srv://u:p@cluster.example.net/boards?retryWrites=true"))
	assert.Equal(t, defaultMongoDatabase, mongoDatabaseName("mongodb://localhost:27017"))
}

func TestOpenRepositories_SQLite(t *testing.T) {
	ctx := context.Background()
	repos, err := OpenRepositories(ctx, "sqlite", filepath.Join(t.TempDir(), "repos.db"))
	require.NoError(t, err)
	defer repos.Close()

	require.NoError(t, repos.Scenes.SaveScene(ctx, testScene("s1")))
	rev, err := repos.Revisions.RecordRevision(ctx, "save", testScene("s1"))
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Seq)
}
