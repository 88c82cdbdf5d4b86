package composer

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/domain"
	"moodboard/internal/nodeops"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newStore(t *testing.T, doc domain.Document) *Store {
	t.Helper()
	if doc.ID == "" {
		doc.ID = "scene-1"
	}
	return New(doc, WithIDGenerator(seqIDs()))
}

func sized(w, h float64) domain.Document {
	return domain.Document{ID: "scene-1", Width: &w, Height: &h}
}

func textAt(id string, page, z int) domain.Node {
	return domain.Node{
		ID: id, X: 10, Y: 10, Width: 100, Height: 40,
		Opacity: 1, Visible: true, ZIndex: z, PageIndex: page,
		Content: &domain.TextContent{Content: id},
	}
}

func pageIDs(s *Store, page int) []string {
	var out []string
	for _, n := range s.NodesForPage(page) {
		out = append(out, n.ID)
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	s := New(domain.Document{})
	scene := s.Scene()

	assert.NotEmpty(t, scene.ID, "missing id is generated")
	assert.Equal(t, domain.DefaultSceneWidth, scene.Width)
	assert.Equal(t, domain.DefaultSceneHeight, scene.Height)
	assert.Equal(t, 1, scene.TotalPages)
	assert.Empty(t, scene.Nodes)
	assert.False(t, s.IsDirty())
	assert.False(t, s.CanUndo())
	assert.Equal(t, 1.0, s.Viewport().Zoom)
}

func TestAddDecorItem_PlacesOnTopAndSelects(t *testing.T) {
	s := newStore(t, domain.Document{})
	item := domain.CatalogItem{ProductID: "p1", Name: "Velvet chair", SKU: "CH-1", Quantity: 0}

	first := s.AddDecorItem(item, nil)
	second := s.AddDecorItem(item, &Point{X: 300, Y: 400})

	a, ok := s.Node(first)
	require.True(t, ok)
	b, _ := s.Node(second)

	assert.Equal(t, domain.NodeTypeDecorItem, a.Type())
	assert.Equal(t, 1, a.Decor().Quantity)
	assert.Equal(t, domain.DisplayModeCard, a.Decor().DisplayMode)
	assert.Equal(t, DefaultDecorSize, a.Width)
	assert.Equal(t, 300.0, b.X)
	assert.Equal(t, 400.0, b.Y)
	assert.Greater(t, b.ZIndex, a.ZIndex)
	assert.Equal(t, []string{second}, s.Selection())
	assert.True(t, s.IsDirty())
	assert.Len(t, s.HistoryLabels(), 3)
}

func TestAddDecorItem_FreeSlotAvoidsOverlap(t *testing.T) {
	s := newStore(t, domain.Document{})
	item := domain.CatalogItem{ProductID: "p", Name: "Lamp"}
	a, _ := s.Node(s.AddDecorItem(item, nil))
	b, _ := s.Node(s.AddDecorItem(item, nil))

	overlapX := a.X < b.X+b.Width && b.X < a.X+a.Width
	overlapY := a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
	assert.False(t, overlapX && overlapY)
}

func TestAddText_UsesDefaultStyle(t *testing.T) {
	s := newStore(t, domain.Document{})
	n, ok := s.Node(s.AddText("Living room", nil))
	require.True(t, ok)

	txt := n.Text()
	require.NotNil(t, txt)
	assert.Equal(t, "Living room", txt.Content)
	assert.Equal(t, 24.0, txt.FontSize)
	assert.Equal(t, "Inter", txt.FontFamily)
	assert.Equal(t, DefaultTextWidth, n.Width)
	assert.Equal(t, "Living room", n.Text().Content)
	assert.Empty(t, DefaultTextStyle.Content, "default style must not be mutated")
}

func TestUndoRedo_RestoresSceneAndClearsSelection(t *testing.T) {
	s := newStore(t, domain.Document{})
	before := s.Scene()
	id := s.AddText("hello", nil)
	after := s.Scene()
	s.SetZoom(2)
	_, v := s.VersionedScene()
	require.True(t, s.MarkSaved(time.Now(), v))

	require.True(t, s.Undo())
	assert.Equal(t, before, s.Scene())
	assert.Empty(t, s.Selection())
	assert.True(t, s.IsDirty(), "undo is a pending change")
	assert.Equal(t, 2.0, s.Viewport().Zoom, "viewport is not history")

	require.True(t, s.Redo())
	assert.Equal(t, after, s.Scene())
	_, ok := s.Node(id)
	assert.True(t, ok)

	assert.False(t, s.Redo())
}

func TestTransientEdit_OneGestureOneStep(t *testing.T) {
	s := newStore(t, domain.Document{})
	id := s.AddText("drag me", &Point{X: 0, Y: 0})
	steps := len(s.HistoryLabels())

	s.BeginTransientEdit()
	for i := 1; i <= 10; i++ {
		require.True(t, s.UpdateNode(id, nodeops.Move(float64(i*10), 0)))
	}
	assert.Len(t, s.HistoryLabels(), steps, "live updates do not push")
	assert.True(t, s.CommitEdit("move node"))
	assert.False(t, s.InTransientEdit())
	assert.Len(t, s.HistoryLabels(), steps+1)

	require.True(t, s.Undo())
	n, _ := s.Node(id)
	assert.Equal(t, 0.0, n.X, "one undo reverses the whole drag")
}

func TestTransientEdit_CommitWithoutChangeDoesNotPush(t *testing.T) {
	s := newStore(t, domain.Document{})
	id := s.AddText("x", &Point{X: 5, Y: 5})
	steps := len(s.HistoryLabels())

	s.BeginTransientEdit()
	s.UpdateNode(id, nodeops.Move(50, 50))
	s.UpdateNode(id, nodeops.Move(5, 5))
	assert.False(t, s.CommitEdit("move node"))
	assert.Len(t, s.HistoryLabels(), steps)
}

func TestCancelEdit_RestoresPreGestureScene(t *testing.T) {
	s := newStore(t, domain.Document{})
	id := s.AddText("x", &Point{X: 5, Y: 5})

	s.BeginTransientEdit()
	s.UpdateNode(id, nodeops.Geometry(90, 90, 300, 300))
	require.True(t, s.CancelEdit())

	n, _ := s.Node(id)
	assert.Equal(t, 5.0, n.X)
	assert.Equal(t, DefaultTextWidth, n.Width)
}

func TestUpdateNodeWithHistory(t *testing.T) {
	s := newStore(t, domain.Document{})
	id := s.AddText("x", nil)

	assert.True(t, s.UpdateNodeWithHistory(id, nodeops.Geometry(1, 2, 1, 1), ""))
	n, _ := s.Node(id)
	assert.Equal(t, domain.MinNodeSize, n.Width)
	assert.Equal(t, "update node", s.HistoryLabels()[2].Label)

	assert.False(t, s.UpdateNodeWithHistory("ghost", nodeops.Move(1, 1), ""))
}

func TestUpdateNodeWithHistory_AfterLiveDrag(t *testing.T) {
	s := newStore(t, domain.Document{})
	id := s.AddText("drag me", &Point{X: 0, Y: 0})
	steps := len(s.HistoryLabels())

	require.True(t, s.UpdateNode(id, nodeops.Move(50, 50)))
	require.True(t, s.UpdateNode(id, nodeops.Move(100, 100)))
	assert.True(t, s.UpdateNodeWithHistory(id, nodeops.Move(100, 100), "move node"))

	labels := s.HistoryLabels()
	require.Len(t, labels, steps+1)
	assert.Equal(t, "move node", labels[len(labels)-1].Label)
	assert.True(t, s.CanUndo())
	assert.False(t, s.InTransientEdit())

	require.True(t, s.Undo())
	n, _ := s.Node(id)
	assert.Equal(t, 0.0, n.X, "undo goes back to before the drag")
	assert.Equal(t, 0.0, n.Y)

	require.True(t, s.Redo())
	n, _ = s.Node(id)
	assert.Equal(t, 100.0, n.X)
}

func TestUpdateNodeWithHistory_BackToStartRecordsNothing(t *testing.T) {
	s := newStore(t, domain.Document{})
	id := s.AddText("x", &Point{X: 5, Y: 5})
	steps := len(s.HistoryLabels())

	s.UpdateNode(id, nodeops.Move(80, 80))
	assert.False(t, s.UpdateNodeWithHistory(id, nodeops.Move(5, 5), "move node"))
	assert.Len(t, s.HistoryLabels(), steps)
	assert.False(t, s.InTransientEdit())
	n, _ := s.Node(id)
	assert.Equal(t, 5.0, n.X)
}

func TestUpdateNode_OpensGesture(t *testing.T) {
	s := newStore(t, domain.Document{})
	id := s.AddText("x", &Point{X: 5, Y: 5})
	steps := len(s.HistoryLabels())

	assert.False(t, s.CommitEdit("nothing open"))
	assert.False(t, s.CancelEdit())
	assert.False(t, s.InTransientEdit())

	require.True(t, s.UpdateNode(id, nodeops.Move(30, 30)))
	assert.True(t, s.InTransientEdit())
	assert.True(t, s.CommitEdit("move node"))
	assert.False(t, s.InTransientEdit())
	assert.False(t, s.CommitEdit("move node"), "the gesture is closed")
	assert.Len(t, s.HistoryLabels(), steps+1)

	// another committing action closes an open gesture and folds it in
	require.True(t, s.UpdateNode(id, nodeops.Move(60, 60)))
	s.AddText("y", nil)
	assert.False(t, s.InTransientEdit())
	assert.False(t, s.CancelEdit())
	n, _ := s.Node(id)
	assert.Equal(t, 60.0, n.X)
}

func TestMarkSaved_ChangeAfterCopyKeepsDirty(t *testing.T) {
	s := newStore(t, domain.Document{})
	s.AddText("a", nil)

	saved, v := s.VersionedScene()
	s.AddText("b", nil)
	assert.False(t, s.MarkSaved(time.Now(), v))
	assert.True(t, s.IsDirty(), "b was never stored")
	assert.Len(t, saved.Nodes, 1)

	_, v = s.VersionedScene()
	s.UpdateNode(s.Selection()[0], nodeops.Move(3, 3))
	assert.False(t, s.MarkSaved(time.Now(), v), "live updates count as changes")

	_, v = s.VersionedScene()
	s.SetZoom(2)
	s.SelectAll()
	assert.True(t, s.MarkSaved(time.Now(), v), "viewport and selection are not scene changes")
	assert.False(t, s.IsDirty())
}

func TestRemoveNode_PrunesSelection(t *testing.T) {
	s := newStore(t, domain.Document{})
	a := s.AddText("a", nil)
	b := s.AddText("b", nil)
	s.SelectMany([]string{a, b, "ghost"})
	require.Equal(t, []string{a, b}, s.Selection())

	require.True(t, s.RemoveNode(a))
	assert.Equal(t, []string{b}, s.Selection())

	assert.False(t, s.RemoveNode("ghost"))
}

func TestRemoveSelected(t *testing.T) {
	s := newStore(t, domain.Document{})
	a := s.AddText("a", nil)
	b := s.AddText("b", nil)
	c := s.AddText("c", nil)
	s.SelectMany([]string{a, c})

	steps := len(s.HistoryLabels())
	require.True(t, s.RemoveSelected())
	assert.Equal(t, []string{b}, pageIDs(s, 0))
	assert.Empty(t, s.Selection())
	assert.Len(t, s.HistoryLabels(), steps+1)
}

func TestDuplicateSelected_SelectsCopies(t *testing.T) {
	s := newStore(t, domain.Document{})
	a := s.AddText("a", &Point{X: 10, Y: 10})
	b := s.AddText("b", &Point{X: 200, Y: 10})
	s.SelectMany([]string{a, b})

	copies := s.DuplicateSelected()
	require.Len(t, copies, 2)
	assert.ElementsMatch(t, copies, s.Selection())

	c, _ := s.Node(copies[0])
	assert.Equal(t, 30.0, c.X)
	assert.Equal(t, 30.0, c.Y)

	assert.Empty(t, s.DuplicateNode("ghost"))
}

func TestSelect_AdditiveToggles(t *testing.T) {
	s := newStore(t, domain.Document{})
	a := s.AddText("a", nil)
	b := s.AddText("b", nil)

	s.Select(a, false)
	s.Select(b, true)
	assert.Equal(t, []string{a, b}, s.Selection())
	s.Select(a, true)
	assert.Equal(t, []string{b}, s.Selection())
	assert.False(t, s.Select("ghost", false))

	s.ClearSelection()
	assert.Empty(t, s.Selection())
}

func TestReorderAndToggles(t *testing.T) {
	s := newStore(t, domain.Document{})
	a := s.AddText("a", nil)
	b := s.AddText("b", nil)

	require.True(t, s.BringToFront(a))
	sorted := s.SortedNodes()
	assert.Equal(t, a, sorted[len(sorted)-1].ID)

	require.True(t, s.SendBackward(a))
	assert.Equal(t, b, s.SortedNodes()[1].ID)

	require.True(t, s.ToggleLock(a))
	n, _ := s.Node(a)
	assert.True(t, n.Locked)

	require.True(t, s.ToggleVisibility(b))
	assert.Equal(t, []string{a}, func() []string {
		var ids []string
		for _, n := range s.CurrentPageState().Nodes {
			ids = append(ids, n.ID)
		}
		return ids
	}(), "hidden nodes leave the paint list")
	assert.Len(t, s.SortedNodes(), 2, "but stay in the model")

	assert.False(t, s.BringToFront("ghost"))
}

func TestRemovePage_Reindexes(t *testing.T) {
	tp := 3
	s := newStore(t, domain.Document{
		ID:         "scene-1",
		TotalPages: &tp,
		Nodes: []domain.Node{
			textAt("p0", 0, 0),
			textAt("p1", 1, 0),
			textAt("p2a", 2, 0),
			textAt("p2b", 2, 1),
		},
	})
	p0Before, _ := s.Node("p0")

	require.True(t, s.RemovePage(1))

	assert.Equal(t, 2, s.TotalPages())
	assert.Equal(t, []string{"p2a", "p2b"}, pageIDs(s, 1))
	assert.Empty(t, pageIDs(s, 2))
	_, ok := s.Node("p1")
	assert.False(t, ok)
	p0After, _ := s.Node("p0")
	assert.Equal(t, p0Before, p0After)
}

func TestRemovePage_ClampsCurrentPage(t *testing.T) {
	s := newStore(t, domain.Document{})
	s.AddPage()
	last := s.AddPage()
	require.Equal(t, 2, last)
	require.Equal(t, 2, s.CurrentPage())

	require.True(t, s.RemovePage(2))
	assert.Equal(t, 1, s.CurrentPage())

	assert.False(t, s.RemovePage(7))
}

func TestRemovePage_FloorOfOnePage(t *testing.T) {
	s := newStore(t, domain.Document{})
	steps := len(s.HistoryLabels())

	assert.False(t, s.RemovePage(0))
	assert.Equal(t, 1, s.TotalPages())
	assert.Len(t, s.HistoryLabels(), steps)
	assert.False(t, s.IsDirty())
}

func TestSetCurrentPage(t *testing.T) {
	s := newStore(t, domain.Document{})
	s.AddPage()
	id := s.AddText("on page 1", nil)
	require.Equal(t, []string{id}, s.Selection())

	assert.True(t, s.SetCurrentPage(0))
	assert.Empty(t, s.Selection())
	assert.False(t, s.SetCurrentPage(2))
	assert.False(t, s.SetCurrentPage(-1))
	assert.Equal(t, 0, s.CurrentPage())
}

func TestUndo_ClampsCurrentPage(t *testing.T) {
	s := newStore(t, domain.Document{})
	s.AddPage()
	require.Equal(t, 1, s.CurrentPage())

	require.True(t, s.Undo())
	assert.Equal(t, 1, s.TotalPages())
	assert.Equal(t, 0, s.CurrentPage())
}

func TestApplyTemplate_ScalesCellsAndReportsDropped(t *testing.T) {
	s := newStore(t, sized(800, 600))
	s.AddText("replaced", nil)
	s.AddPage()
	keep := s.AddText("other page", nil)
	s.SetCurrentPage(0)

	tpl := domain.Template{ID: "half", Cells: []domain.TemplateCell{{X: 0, Y: 0, Width: 50, Height: 50}}}
	items := []domain.CatalogItem{{ProductID: "a", Name: "A"}, {ProductID: "b", Name: "B"}}

	res := s.ApplyTemplate(tpl, items)

	require.Len(t, res.Created, 1)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, "b", res.Dropped[0].ProductID)

	nodes := s.NodesForPage(0)
	require.Len(t, nodes, 1)
	n := nodes[0]
	assert.Equal(t, [4]float64{0, 0, 400, 300}, [4]float64{n.X, n.Y, n.Width, n.Height})
	_, ok := s.Node(keep)
	assert.True(t, ok, "other pages are untouched")
}

func TestApplyTemplate_NoItemsIsNoop(t *testing.T) {
	s := newStore(t, domain.Document{})
	id := s.AddText("stay", nil)
	res := s.ApplyTemplate(domain.Template{Cells: make([]domain.TemplateCell, 2)}, nil)
	assert.Empty(t, res.Created)
	_, ok := s.Node(id)
	assert.True(t, ok)
}

func TestApplyLayoutTemplate(t *testing.T) {
	s := newStore(t, sized(800, 600))
	assert.Equal(t, 0, s.ApplyLayoutTemplate(domain.Template{Cells: make([]domain.TemplateCell, 1)}), "empty page is a no-op")

	a := s.AddText("a", &Point{X: 1, Y: 1})
	b := s.AddText("b", &Point{X: 2, Y: 2})
	tpl := domain.Template{ID: "one", Cells: []domain.TemplateCell{{X: 50, Y: 0, Width: 50, Height: 100}}}

	assert.Equal(t, 1, s.ApplyLayoutTemplate(tpl))
	na, _ := s.Node(a)
	nb, _ := s.Node(b)
	assert.Equal(t, [4]float64{400, 0, 400, 600}, [4]float64{na.X, na.Y, na.Width, na.Height})
	assert.Equal(t, 2.0, nb.X, "nodes past the cells keep their geometry")
}

func TestArrangePage(t *testing.T) {
	s := newStore(t, domain.Document{})
	s.AddText("a", &Point{X: 0, Y: 0})
	s.AddText("b", &Point{X: 0, Y: 0})
	require.True(t, s.ArrangePage())

	nodes := s.SortedNodes()
	assert.NotEqual(t, nodes[0].X, nodes[1].X)
	assert.False(t, s.ArrangePage(), "already arranged")
}

func TestBackgroundSetters(t *testing.T) {
	s := newStore(t, domain.Document{})
	assert.Equal(t, domain.BackgroundTypeColor, s.Background().Type())

	require.True(t, s.SetBackgroundGradient([]string{"#fff", "#000"}, "to bottom"))
	assert.Equal(t, domain.BackgroundTypeGradient, s.Background().Type())

	require.True(t, s.SetBackgroundImage("https://cdn.example.com/bg.jpg", domain.ImageFitCover, 0.5))
	assert.Equal(t, domain.BackgroundTypeImage, s.Background().Type())

	require.True(t, s.Undo())
	assert.Equal(t, domain.BackgroundTypeGradient, s.Background().Type())
	assert.False(t, s.SetBackground(domain.Background{}))
}

func TestViewport(t *testing.T) {
	s := newStore(t, domain.Document{})
	assert.Equal(t, MaxZoom, s.SetZoom(10))
	assert.Equal(t, MinZoom, s.SetZoom(0))
	s.SetZoom(1)
	assert.InDelta(t, 1.2, s.ZoomIn(), 1e-9)
	assert.InDelta(t, 1.0, s.ZoomOut(), 1e-9)

	s.SetPan(15, -4)
	assert.Equal(t, Point{X: 15, Y: -4}, s.Viewport().Pan)
	s.ResetViewport()
	assert.Equal(t, DefaultViewport(), s.Viewport())
}

func TestZoomToFit(t *testing.T) {
	s := newStore(t, sized(800, 600))
	vp := s.ZoomToFit(880, 1000)

	assert.InDelta(t, 1.0, vp.Zoom, 1e-9)
	assert.InDelta(t, 40.0, vp.Pan.X, 1e-9)
	assert.InDelta(t, 200.0, vp.Pan.Y, 1e-9)

	assert.Equal(t, vp, s.ZoomToFit(0, 100))
}

func TestMarkSavedAndSaving(t *testing.T) {
	s := newStore(t, domain.Document{})
	s.AddText("x", nil)
	require.True(t, s.IsDirty())

	s.SetSaving(true)
	assert.True(t, s.IsSaving())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, v := s.VersionedScene()
	assert.True(t, s.MarkSaved(at, v))
	s.SetSaving(false)

	st := s.Status()
	assert.False(t, st.Dirty)
	assert.False(t, st.Saving)
	assert.Equal(t, at, st.LastSavedAt)
	assert.True(t, st.CanUndo)
}

func TestToJSONLoadDocument_RoundTrip(t *testing.T) {
	s := newStore(t, domain.Document{})
	s.AddDecorItem(domain.CatalogItem{ProductID: "p", Name: "Rug", Quantity: 3}, nil)
	s.AddText("caption", nil)
	s.SetBackgroundGradient([]string{"#fde68a", "#fca5a5"}, "to right")
	want := s.Scene()

	data, err := s.ToJSON()
	require.NoError(t, err)

	other := New(domain.Document{ID: "tmp"})
	require.NoError(t, other.LoadDocument(data))
	assert.Equal(t, want, other.Scene())
	assert.False(t, other.IsDirty())
	assert.False(t, other.CanUndo())
}

func TestLoadDocument_Invalid(t *testing.T) {
	s := newStore(t, domain.Document{})
	assert.Error(t, s.LoadDocument([]byte("{")))
	assert.ErrorIs(t, s.LoadDocument([]byte(`{"name":"no id"}`)), domain.ErrInvalidDocument)
	assert.Error(t, s.LoadDocument([]byte(`{"id":"x","nodes":[{"id":"n","type":"circle"}]}`)))
}

func TestSubscribe(t *testing.T) {
	s := newStore(t, domain.Document{})
	var got []ChangeKind
	unsubscribe := s.Subscribe(func(c Change) {
		got = append(got, c.Kind)
		assert.Equal(t, "scene-1", c.SceneID)
	})

	s.AddText("x", nil)
	s.SetZoom(2)
	s.SetCurrentPage(0)
	unsubscribe()
	s.AddText("y", nil)

	assert.Equal(t, []ChangeKind{ChangeScene, ChangeViewport, ChangePage}, got)
}

func TestReplaceScene_IsOneUndoableStep(t *testing.T) {
	s := newStore(t, domain.Document{ID: "scene-1", TotalPages: ptrInt(3)})
	s.AddText("before", nil)
	require.True(t, s.SetCurrentPage(2))

	other := domain.NewScene(domain.Document{ID: "elsewhere"})
	other.Nodes = []domain.Node{textAt("restored", 0, 0)}
	s.ReplaceScene(other, "restore revision")

	got := s.Scene()
	assert.Equal(t, "scene-1", got.ID)
	assert.Equal(t, 1, got.TotalPages)
	assert.Equal(t, 0, s.CurrentPage())
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "restored", got.Nodes[0].ID)
	assert.True(t, s.IsDirty())

	require.True(t, s.Undo())
	assert.Equal(t, "before", s.Scene().Nodes[0].Text().Content)
}

func ptrInt(v int) *int { return &v }
