// Package nodeops holds pure transforms over a node collection. Every
// function returns a new slice and leaves its input untouched. Unknown ids
// are a no-op.
package nodeops

import (
	"sort"

	"moodboard/internal/domain"
)

// DefaultDuplicateOffset shifts a duplicate down and right.
var DefaultDuplicateOffset = Offset{X: 20, Y: 20}

type Offset struct {
	X, Y float64
}

// Insert appends n. The caller assigns id, page and a z above the page maximum.
func Insert(nodes []domain.Node, n domain.Node) []domain.Node {
	out := domain.CloneNodes(nodes)
	n = n.Clone()
	n.ClampSize()
	return append(out, n)
}

// Patch applies p to the node with id. Width and height are clamped to
// domain.MinNodeSize. Id, type and page cannot change through a patch.
func Patch(nodes []domain.Node, id string, p NodePatch) []domain.Node {
	out := domain.CloneNodes(nodes)
	for i := range out {
		if out[i].ID == id {
			p.apply(&out[i])
			break
		}
	}
	return out
}

// Remove drops the node with id.
func Remove(nodes []domain.Node, id string) []domain.Node {
	return RemoveMany(nodes, []string{id})
}

// RemoveMany drops every node whose id is in ids.
func RemoveMany(nodes []domain.Node, ids []string) []domain.Node {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := drop[n.ID]; ok {
			continue
		}
		out = append(out, n.Clone())
	}
	return out
}

// Duplicate appends a copy of the node with id, shifted by off, with
// newID and a z above every node on its page. The clone is the last element.
func Duplicate(nodes []domain.Node, id, newID string, off Offset) []domain.Node {
	idx := indexOf(nodes, id)
	if idx < 0 {
		return domain.CloneNodes(nodes)
	}
	clone := nodes[idx].Clone()
	clone.ID = newID
	clone.X += off.X
	clone.Y += off.Y
	clone.ZIndex = MaxZIndex(nodes, clone.PageIndex) + 1
	return append(domain.CloneNodes(nodes), clone)
}

// BringToFront moves the node above every other node on its page.
func BringToFront(nodes []domain.Node, id string) []domain.Node {
	idx := indexOf(nodes, id)
	if idx < 0 {
		return domain.CloneNodes(nodes)
	}
	out := domain.CloneNodes(nodes)
	out[idx].ZIndex = MaxZIndex(nodes, nodes[idx].PageIndex) + 1
	return out
}

// SendToBack moves the node below every other node on its page.
func SendToBack(nodes []domain.Node, id string) []domain.Node {
	idx := indexOf(nodes, id)
	if idx < 0 {
		return domain.CloneNodes(nodes)
	}
	out := domain.CloneNodes(nodes)
	out[idx].ZIndex = MinZIndex(nodes, nodes[idx].PageIndex) - 1
	return out
}

// BringForward swaps z with the next node above on the same page.
func BringForward(nodes []domain.Node, id string) []domain.Node {
	return swapWithNeighbour(nodes, id, 1)
}

// SendBackward swaps z with the next node below on the same page.
func SendBackward(nodes []domain.Node, id string) []domain.Node {
	return swapWithNeighbour(nodes, id, -1)
}

func swapWithNeighbour(nodes []domain.Node, id string, dir int) []domain.Node {
	out := domain.CloneNodes(nodes)
	idx := indexOf(out, id)
	if idx < 0 {
		return out
	}
	page := SortByZIndex(ForPage(out, out[idx].PageIndex))
	pos := -1
	for i, n := range page {
		if n.ID == id {
			pos = i
			break
		}
	}
	next := pos + dir
	if next < 0 || next >= len(page) {
		return out
	}
	if page[pos].ZIndex == page[next].ZIndex {
		// equal keys sort by insertion order; give the page distinct,
		// consecutive z values first so the swap moves exactly one step
		renumber(out, page)
		page = SortByZIndex(ForPage(out, out[idx].PageIndex))
	}
	other := indexOf(out, page[next].ID)
	out[idx].ZIndex, out[other].ZIndex = out[other].ZIndex, out[idx].ZIndex
	return out
}

// renumber rewrites the z of every node in sorted, starting at its lowest
// z and counting up by one, keeping their order.
func renumber(out []domain.Node, sorted []domain.Node) {
	base := sorted[0].ZIndex
	for i, n := range sorted {
		out[indexOf(out, n.ID)].ZIndex = base + i
	}
}

// ToggleLock flips Locked on the node with id.
func ToggleLock(nodes []domain.Node, id string) []domain.Node {
	out := domain.CloneNodes(nodes)
	if idx := indexOf(out, id); idx >= 0 {
		out[idx].Locked = !out[idx].Locked
	}
	return out
}

// ToggleVisibility flips Visible on the node with id.
func ToggleVisibility(nodes []domain.Node, id string) []domain.Node {
	out := domain.CloneNodes(nodes)
	if idx := indexOf(out, id); idx >= 0 {
		out[idx].Visible = !out[idx].Visible
	}
	return out
}

// SortByZIndex returns the nodes ordered by ascending z. Ties keep their
// input order, so sorting twice gives the same result.
func SortByZIndex(nodes []domain.Node) []domain.Node {
	out := domain.CloneNodes(nodes)
	if out == nil {
		out = []domain.Node{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// ForPage returns the nodes on page in collection order.
func ForPage(nodes []domain.Node, page int) []domain.Node {
	out := []domain.Node{}
	for _, n := range nodes {
		if n.PageIndex == page {
			out = append(out, n.Clone())
		}
	}
	return out
}

// PaintList is the authoritative render order of a page: visible nodes
// sorted by z.
func PaintList(nodes []domain.Node, page int) []domain.Node {
	var visible []domain.Node
	for _, n := range ForPage(nodes, page) {
		if n.Visible {
			visible = append(visible, n)
		}
	}
	return SortByZIndex(visible)
}

// MaxZIndex is the highest z on page, or -1 for an empty page.
func MaxZIndex(nodes []domain.Node, page int) int {
	max, found := 0, false
	for _, n := range nodes {
		if n.PageIndex != page {
			continue
		}
		if !found || n.ZIndex > max {
			max, found = n.ZIndex, true
		}
	}
	if !found {
		return -1
	}
	return max
}

// MinZIndex is the lowest z on page, or 1 for an empty page.
func MinZIndex(nodes []domain.Node, page int) int {
	min, found := 0, false
	for _, n := range nodes {
		if n.PageIndex != page {
			continue
		}
		if !found || n.ZIndex < min {
			min, found = n.ZIndex, true
		}
	}
	if !found {
		return 1
	}
	return min
}

// Find returns the node with id.
func Find(nodes []domain.Node, id string) (domain.Node, bool) {
	if idx := indexOf(nodes, id); idx >= 0 {
		return nodes[idx].Clone(), true
	}
	return domain.Node{}, false
}

func indexOf(nodes []domain.Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}
