package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/domain"
	"moodboard/internal/service"
	"moodboard/internal/storage"
	"moodboard/internal/templates"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.Open("sqlite", filepath.Join(t.TempDir(), "moodboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	scenes := service.NewSceneService(storage.NewSceneStore(db), storage.NewRevisionStore(db), nil, nil)
	return New(Deps{Scenes: scenes, Templates: templates.NewRegistry(nil)})
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &v))
	return v
}

func createScene(t *testing.T, s *Server) string {
	t.Helper()
	res, err := s.handleCreateScene(context.Background(), call(map[string]any{"name": "Garden party", "width": 800.0, "height": 600.0}))
	require.NoError(t, err)
	status := decode[map[string]any](t, res)
	return status["sceneId"].(string)
}

func TestResolveScene_NeedsActiveScene(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleAddText(context.Background(), call(map[string]any{"content": "hi"}))
	assert.Error(t, err)
}

func TestAddAndMoveText(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	createScene(t, s)

	res, err := s.handleAddText(ctx, call(map[string]any{"content": "Welcome", "x": 100.0, "y": 50.0}))
	require.NoError(t, err)
	added := decode[nodeSummary](t, res)
	assert.Equal(t, "text", added.Type)
	assert.Equal(t, 100.0, added.X)

	res, err = s.handleMoveNode(ctx, call(map[string]any{"nodeId": added.ID, "x": 300.0, "y": 200.0}))
	require.NoError(t, err)
	moved := decode[nodeSummary](t, res)
	assert.Equal(t, 300.0, moved.X)
	assert.Equal(t, 200.0, moved.Y)

	_, err = s.handleMoveNode(ctx, call(map[string]any{"nodeId": "ghost", "x": 1.0, "y": 1.0}))
	assert.Error(t, err)

	_, err = s.handleUndo(ctx, call(nil))
	require.NoError(t, err)
	res, err = s.handleListNodes(ctx, call(nil))
	require.NoError(t, err)
	nodes := decode[[]nodeSummary](t, res)
	require.Len(t, nodes, 1)
	assert.Equal(t, 100.0, nodes[0].X)
}

func TestUpdateNode_Patch(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	createScene(t, s)

	res, err := s.handleAddText(ctx, call(map[string]any{"content": "Title"}))
	require.NoError(t, err)
	id := decode[nodeSummary](t, res).ID

	_, err = s.handleUpdateNode(ctx, call(map[string]any{"nodeId": id, "patch": `{"text":{"content":"Spring"},"width":5}`}))
	require.NoError(t, err)

	store, ok := s.scenes.Get(s.active())
	require.True(t, ok)
	n, _ := store.Node(id)
	assert.Equal(t, "Spring", n.Text().Content)
	assert.Equal(t, domain.MinNodeSize, n.Width)

	_, err = s.handleUpdateNode(ctx, call(map[string]any{"nodeId": id, "patch": `{}`}))
	assert.Error(t, err)
	_, err = s.handleUpdateNode(ctx, call(map[string]any{"nodeId": id, "patch": `not json`}))
	assert.Error(t, err)
}

func TestImportCatalogAndApplyTemplate(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	createScene(t, s)

	csvPath := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"productId,name,quantity\np1,Arch,1\np2,Vase,4\np3,Lantern,2\np4,Table,1\np5,Chair,12\n,Nameless,1\n",
	), 0o644))

	cfg, _ := json.Marshal(map[string]string{"filePath": csvPath})
	res, err := s.handleImportCatalog(ctx, call(map[string]any{"type": "csv_file", "config": string(cfg)}))
	require.NoError(t, err)
	imported := decode[struct {
		Items    []domain.CatalogItem `json:"items"`
		Rejected []any                `json:"rejected"`
	}](t, res)
	assert.Len(t, imported.Items, 5)
	assert.Len(t, imported.Rejected, 1)

	res, err = s.handleApplyTemplate(ctx, call(map[string]any{"templateId": "grid-2x2"}))
	require.NoError(t, err)
	result := decode[domain.TemplateResult](t, res)
	assert.Len(t, result.Created, 4)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, "p5", result.Dropped[0].ProductID)

	_, err = s.handleApplyTemplate(ctx, call(map[string]any{"templateId": "grid-2x2", "productIds": "p1,zzz"}))
	assert.Error(t, err)
	_, err = s.handleApplyTemplate(ctx, call(map[string]any{"templateId": "nope"}))
	assert.ErrorIs(t, err, domain.ErrUnknownTemplate)
}

func TestAddDecorItem_AdHocProduct(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	createScene(t, s)

	_, err := s.handleAddDecorItem(ctx, call(map[string]any{"productId": "p9"}))
	assert.Error(t, err, "unknown product without a name")

	res, err := s.handleAddDecorItem(ctx, call(map[string]any{"productId": "p9", "name": "Candles"}))
	require.NoError(t, err)
	n := decode[nodeSummary](t, res)
	assert.Equal(t, "decorItem", n.Type)
	assert.Equal(t, "Candles", n.Label)
}

func TestPagesAndBackground(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	createScene(t, s)

	res, err := s.handleAddPage(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"page": 1, "totalPages": 2}, decode[map[string]int](t, res))

	_, err = s.handleSetCurrentPage(ctx, call(map[string]any{"page": 7.0}))
	assert.Error(t, err)

	_, err = s.handleSetBackground(ctx, call(map[string]any{"type": "gradient", "colors": "#fff,#000", "direction": "to right"}))
	require.NoError(t, err)
	_, err = s.handleSetBackground(ctx, call(map[string]any{"type": "gradient", "colors": "#fff"}))
	assert.Error(t, err)

	res, err = s.handleGetPageState(ctx, call(map[string]any{"page": 0.0}))
	require.NoError(t, err)
	state := decode[domain.PageState](t, res)
	assert.Equal(t, domain.BackgroundTypeGradient, state.Background.Type())
	assert.Equal(t, 2, state.TotalPages)

	_, err = s.handleRemovePage(ctx, call(map[string]any{"page": 0.0}))
	require.NoError(t, err)
	_, err = s.handleRemovePage(ctx, call(map[string]any{"page": 0.0}))
	assert.Error(t, err, "last page stays")
}

func TestSaveAndRevisions(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	id := createScene(t, s)

	_, err := s.handleAddText(ctx, call(map[string]any{"content": "v1"}))
	require.NoError(t, err)
	_, err = s.handleSaveScene(ctx, call(nil))
	require.NoError(t, err)

	res, err := s.handleListRevisions(ctx, call(map[string]any{"sceneId": id}))
	require.NoError(t, err)
	revs := decode[[]domain.Revision](t, res)
	require.Len(t, revs, 2)

	res, err = s.handleListScenes(ctx, call(nil))
	require.NoError(t, err)
	assert.Len(t, decode[[]domain.SceneSummary](t, res), 1)

	_, err = s.handleDeleteScene(ctx, call(map[string]any{"sceneId": id}))
	require.NoError(t, err)
	assert.Empty(t, s.active())
}

func TestExportPNG(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	createScene(t, s)
	_, err := s.handleAddText(ctx, call(map[string]any{"content": "Preview"}))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "page.png")
	_, err = s.handleExportPNG(ctx, call(map[string]any{"path": out, "scale": 0.5}))
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestParsePageURI(t *testing.T) {
	id, page, err := parsePageURI("moodboard://scene/abc-123/page/2")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
	assert.Equal(t, 2, page)

	_, _, err = parsePageURI("moodboard://scene/abc/page/x")
	assert.Error(t, err)
	_, _, err = parsePageURI("notes://page/abc/blocks")
	assert.Error(t, err)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIDs(" a, ,b,"))
	assert.Nil(t, splitIDs(""))
}
