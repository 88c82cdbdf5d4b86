package composer

import (
	"go.uber.org/zap"

	"moodboard/internal/domain"
	"moodboard/internal/layout"
	"moodboard/internal/nodeops"
)

// ApplyTemplate replaces the current page's nodes with one decor item per
// (cell, item) pair. Items left over after the last cell are returned in
// Dropped. No items means nothing changes.
func (s *Store) ApplyTemplate(t domain.Template, items []domain.CatalogItem) domain.TemplateResult {
	res := domain.TemplateResult{Created: []string{}}
	s.mutate(ChangeScene, func() bool {
		if len(items) == 0 || len(t.Cells) == 0 {
			return false
		}
		page := s.currentPage
		kept := make([]domain.Node, 0, len(s.scene.Nodes))
		for _, n := range s.scene.Nodes {
			if n.PageIndex != page {
				kept = append(kept, n.Clone())
			}
		}
		created, dropped := layout.Populate(t, items, page, 0, s.scene.Width, s.scene.Height, s.newID)
		for _, n := range created {
			res.Created = append(res.Created, n.ID)
		}
		res.Dropped = dropped
		if len(dropped) > 0 {
			s.log.Warn("template has fewer cells than items",
				zap.String("template", t.ID),
				zap.Int("cells", len(t.Cells)),
				zap.Int("dropped", len(dropped)),
			)
		}
		s.commit("apply template "+t.ID, s.withNodes(append(kept, created...)))
		return true
	})
	return res
}

// ApplyLayoutTemplate moves the current page's nodes, in collection order,
// into the template's cells. Nodes past the last cell keep their geometry.
// It returns how many nodes were placed.
func (s *Store) ApplyLayoutTemplate(t domain.Template) int {
	var placed int
	s.mutate(ChangeScene, func() bool {
		page := nodeops.ForPage(s.scene.Nodes, s.currentPage)
		if len(page) == 0 || len(t.Cells) == 0 {
			return false
		}
		placed = min(len(page), len(t.Cells))
		next := s.replaceNodes(layout.Relayout(t, page, s.scene.Width, s.scene.Height))
		if s.sameNodes(next) {
			return false
		}
		s.commit("layout "+t.ID, s.withNodes(next))
		return true
	})
	return placed
}

// ArrangePage lines the current page's nodes up in rows, bottom layer first.
func (s *Store) ArrangePage() bool {
	return s.mutate(ChangeScene, func() bool {
		page := nodeops.SortByZIndex(nodeops.ForPage(s.scene.Nodes, s.currentPage))
		if len(page) == 0 {
			return false
		}
		next := s.replaceNodes(s.layout.ArrangeGroup(page, s.scene.Width))
		if s.sameNodes(next) {
			return false
		}
		s.commit("arrange page", s.withNodes(next))
		return true
	})
}

// replaceNodes swaps in the given versions of nodes by id, keeping the
// collection order.
func (s *Store) replaceNodes(updated []domain.Node) []domain.Node {
	byID := make(map[string]domain.Node, len(updated))
	for _, n := range updated {
		byID[n.ID] = n
	}
	out := make([]domain.Node, len(s.scene.Nodes))
	for i, n := range s.scene.Nodes {
		if u, ok := byID[n.ID]; ok {
			out[i] = u.Clone()
			continue
		}
		out[i] = n.Clone()
	}
	return out
}

// ── Background ─────────────────────────────────────────────

func (s *Store) SetBackground(bg domain.Background) bool {
	return s.mutate(ChangeScene, func() bool {
		if bg.Fill == nil {
			return false
		}
		next := s.scene
		next.Nodes = domain.CloneNodes(s.scene.Nodes)
		next.Background = bg.Clone()
		s.commit("set background", next)
		return true
	})
}

func (s *Store) SetBackgroundColor(value string) bool {
	return s.SetBackground(domain.ColorBackground(value))
}

func (s *Store) SetBackgroundGradient(colors []string, direction string) bool {
	return s.SetBackground(domain.GradientBackground(colors, direction))
}

func (s *Store) SetBackgroundImage(url string, fit domain.ImageFit, opacity float64) bool {
	return s.SetBackground(domain.ImageBackground(url, fit, opacity))
}

func (s *Store) Background() domain.Background {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.Background.Clone()
}
