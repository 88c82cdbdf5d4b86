package layout

import "moodboard/internal/domain"

// CellRect scales a percentage cell to page pixels.
func CellRect(c domain.TemplateCell, pageW, pageH float64) Rect {
	return Rect{
		X: c.X * pageW / 100,
		Y: c.Y * pageH / 100,
		W: c.Width * pageW / 100,
		H: c.Height * pageH / 100,
	}
}

// Populate creates one decor node per (cell, item) pair on page, stacking
// z upward from baseZ. Pairs stop at the shorter list; items with no cell
// are returned as dropped.
func Populate(
	t domain.Template,
	items []domain.CatalogItem,
	page, baseZ int,
	pageW, pageH float64,
	newID func() string,
) ([]domain.Node, []domain.CatalogItem) {
	n := min(len(t.Cells), len(items))
	nodes := make([]domain.Node, 0, n)
	for i := 0; i < n; i++ {
		r := CellRect(t.Cells[i], pageW, pageH)
		node := domain.Node{
			ID:        newID(),
			X:         r.X,
			Y:         r.Y,
			Width:     r.W,
			Height:    r.H,
			Opacity:   1,
			Visible:   true,
			ZIndex:    baseZ + i,
			PageIndex: page,
			Content:   items[i].DecorContent(domain.DisplayModeCard),
		}
		node.ClampSize()
		nodes = append(nodes, node)
	}

	var dropped []domain.CatalogItem
	if len(items) > n {
		dropped = append(dropped, items[n:]...)
	}
	return nodes, dropped
}

// Relayout overwrites the geometry of the first len(cells) nodes, in the
// given order, to match the cells. Identity and every other field is kept;
// nodes past the cell count are returned unchanged.
func Relayout(t domain.Template, nodes []domain.Node, pageW, pageH float64) []domain.Node {
	out := domain.CloneNodes(nodes)
	for i := range out {
		if i >= len(t.Cells) {
			break
		}
		r := CellRect(t.Cells[i], pageW, pageH)
		out[i].X, out[i].Y, out[i].Width, out[i].Height = r.X, r.Y, r.W, r.H
		out[i].ClampSize()
	}
	return out
}
