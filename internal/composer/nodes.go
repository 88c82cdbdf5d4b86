package composer

import (
	"reflect"

	"moodboard/internal/domain"
	"moodboard/internal/nodeops"
)

// Defaults for nodes created without explicit geometry.
const (
	DefaultDecorSize  = 160.0
	DefaultTextWidth  = 240.0
	DefaultTextHeight = 60.0
)

// DefaultTextStyle is applied to new text nodes.
var DefaultTextStyle = domain.TextContent{
	FontSize:        24,
	FontFamily:      "Inter",
	FontWeight:      "normal",
	TextAlign:       "left",
	Fill:            "#1f2937",
	BackgroundColor: "transparent",
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AddDecorItem drops a catalog product on the current page and selects it.
// A nil pos picks the first free slot.
func (s *Store) AddDecorItem(item domain.CatalogItem, pos *Point) string {
	return s.addNode("add decor item", item.DecorContent(domain.DisplayModeCard), DefaultDecorSize, DefaultDecorSize, pos)
}

// AddText places a text label on the current page and selects it.
func (s *Store) AddText(content string, pos *Point) string {
	style := DefaultTextStyle
	style.Content = content
	return s.addNode("add text", &style, DefaultTextWidth, DefaultTextHeight, pos)
}

func (s *Store) addNode(label string, content domain.NodeContent, w, h float64, pos *Point) string {
	var id string
	s.mutate(ChangeScene, func() bool {
		page := s.currentPage
		var x, y float64
		if pos != nil {
			x, y = pos.X, pos.Y
		} else {
			x, y = s.layout.NextPosition(nodeops.ForPage(s.scene.Nodes, page), w, h, s.scene.Width, s.scene.Height)
		}
		id = s.newID()
		n := domain.Node{
			ID:        id,
			X:         x,
			Y:         y,
			Width:     w,
			Height:    h,
			Opacity:   1,
			Visible:   true,
			ZIndex:    nodeops.MaxZIndex(s.scene.Nodes, page) + 1,
			PageIndex: page,
			Content:   content,
		}
		s.commit(label, s.withNodes(nodeops.Insert(s.scene.Nodes, n)))
		s.selection = map[string]struct{}{id: {}}
		return true
	})
	return id
}

// Node returns a copy of the node with id.
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nodeops.Find(s.scene.Nodes, id)
}

// UpdateNode applies a live patch without recording history and opens a
// gesture when none is open. The gesture ends with UpdateNodeWithHistory or
// CommitEdit (one undo step) or CancelEdit.
func (s *Store) UpdateNode(id string, p nodeops.NodePatch) bool {
	return s.mutate(ChangeScene, func() bool {
		if !s.has(id) || p.IsEmpty() {
			return false
		}
		s.editing = true
		s.scene = s.withNodes(nodeops.Patch(s.scene.Nodes, id, p))
		s.touch()
		return true
	})
}

// UpdateNodeWithHistory applies p and records one undo step covering it and
// every live update before it, so a drag that already reached its final
// geometry still undoes back to where it started. It returns false when
// id is unknown or the scene equals the last history step.
func (s *Store) UpdateNodeWithHistory(id string, p nodeops.NodePatch, label string) bool {
	if label == "" {
		label = "update node"
	}
	var committed bool
	s.mutate(ChangeScene, func() bool {
		if !s.has(id) {
			return false
		}
		s.editing = false
		prev := s.scene.Nodes
		s.scene = s.withNodes(nodeops.Patch(prev, id, p))
		if committed = s.commitIfMoved(label); committed {
			return true
		}
		// back at the last step: nothing to record, but the live scene moved
		if reflect.DeepEqual(prev, s.scene.Nodes) {
			return false
		}
		s.touch()
		return true
	})
	return committed
}

// nodeAction commits op when id exists and op changed something.
func (s *Store) nodeAction(label, id string, op func([]domain.Node) []domain.Node) bool {
	return s.mutate(ChangeScene, func() bool {
		if !s.has(id) {
			return false
		}
		next := op(s.scene.Nodes)
		if s.sameNodes(next) {
			return false
		}
		s.commit(label, s.withNodes(next))
		return true
	})
}

func (s *Store) RemoveNode(id string) bool {
	return s.RemoveNodes([]string{id})
}

// RemoveNodes deletes the given nodes in one step. Removed ids leave the
// selection.
func (s *Store) RemoveNodes(ids []string) bool {
	return s.mutate(ChangeScene, func() bool {
		next := nodeops.RemoveMany(s.scene.Nodes, ids)
		if len(next) == len(s.scene.Nodes) {
			return false
		}
		label := "remove node"
		if len(s.scene.Nodes)-len(next) > 1 {
			label = "remove nodes"
		}
		s.commit(label, s.withNodes(next))
		return true
	})
}

// DuplicateNode copies a node next to itself and selects the copy. It
// returns "" when id is unknown.
func (s *Store) DuplicateNode(id string) string {
	ids := s.duplicate([]string{id})
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (s *Store) duplicate(ids []string) []string {
	var created []string
	s.mutate(ChangeScene, func() bool {
		nodes := s.scene.Nodes
		for _, id := range ids {
			if !s.has(id) {
				continue
			}
			newID := s.newID()
			nodes = nodeops.Duplicate(nodes, id, newID, nodeops.DefaultDuplicateOffset)
			created = append(created, newID)
		}
		if len(created) == 0 {
			return false
		}
		s.commit("duplicate", s.withNodes(nodes))
		s.selection = make(map[string]struct{}, len(created))
		for _, id := range created {
			s.selection[id] = struct{}{}
		}
		return true
	})
	return created
}

func (s *Store) BringToFront(id string) bool {
	return s.nodeAction("bring to front", id, func(n []domain.Node) []domain.Node {
		return nodeops.BringToFront(n, id)
	})
}

func (s *Store) SendToBack(id string) bool {
	return s.nodeAction("send to back", id, func(n []domain.Node) []domain.Node {
		return nodeops.SendToBack(n, id)
	})
}

func (s *Store) BringForward(id string) bool {
	return s.nodeAction("bring forward", id, func(n []domain.Node) []domain.Node {
		return nodeops.BringForward(n, id)
	})
}

func (s *Store) SendBackward(id string) bool {
	return s.nodeAction("send backward", id, func(n []domain.Node) []domain.Node {
		return nodeops.SendBackward(n, id)
	})
}

func (s *Store) ToggleLock(id string) bool {
	return s.nodeAction("toggle lock", id, func(n []domain.Node) []domain.Node {
		return nodeops.ToggleLock(n, id)
	})
}

func (s *Store) ToggleVisibility(id string) bool {
	return s.nodeAction("toggle visibility", id, func(n []domain.Node) []domain.Node {
		return nodeops.ToggleVisibility(n, id)
	})
}

func (s *Store) has(id string) bool {
	for i := range s.scene.Nodes {
		if s.scene.Nodes[i].ID == id {
			return true
		}
	}
	return false
}

func (s *Store) sameNodes(next []domain.Node) bool {
	return len(next) == len(s.scene.Nodes) && reflect.DeepEqual(next, s.scene.Nodes)
}
