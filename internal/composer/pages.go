package composer

import (
	"moodboard/internal/domain"
	"moodboard/internal/nodeops"
)

// AddPage appends an empty page and makes it current.
func (s *Store) AddPage() int {
	var page int
	s.mutate(ChangeScene, func() bool {
		next := s.scene.Clone()
		next.TotalPages++
		s.commit("add page", next)
		s.currentPage = next.TotalPages - 1
		s.selection = make(map[string]struct{})
		page = s.currentPage
		return true
	})
	return page
}

// RemovePage deletes a page and its nodes, shifting later pages down by one.
// The last remaining page cannot be removed.
func (s *Store) RemovePage(page int) bool {
	return s.mutate(ChangeScene, func() bool {
		if s.scene.TotalPages <= 1 || page < 0 || page >= s.scene.TotalPages {
			return false
		}
		nodes := make([]domain.Node, 0, len(s.scene.Nodes))
		for _, n := range s.scene.Nodes {
			if n.PageIndex == page {
				continue
			}
			n = n.Clone()
			if n.PageIndex > page {
				n.PageIndex--
			}
			nodes = append(nodes, n)
		}
		next := s.withNodes(nodes)
		next.TotalPages--
		s.commit("remove page", next)
		s.clampPage()
		return true
	})
}

// SetCurrentPage switches pages and clears the selection. Out of range
// pages are refused.
func (s *Store) SetCurrentPage(page int) bool {
	return s.mutate(ChangePage, func() bool {
		if page < 0 || page >= s.scene.TotalPages {
			return false
		}
		s.currentPage = page
		s.selection = make(map[string]struct{})
		return true
	})
}

func (s *Store) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage
}

func (s *Store) TotalPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.TotalPages
}

// NodesForPage returns the nodes of page in collection order.
func (s *Store) NodesForPage(page int) []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nodeops.ForPage(s.scene.Nodes, page)
}

// SortedNodes returns the current page's nodes bottom to top, hidden ones
// included.
func (s *Store) SortedNodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nodeops.SortByZIndex(nodeops.ForPage(s.scene.Nodes, s.currentPage))
}

// PageState is the render snapshot of page.
func (s *Store) PageState(page int) (domain.PageState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if page < 0 || page >= s.scene.TotalPages {
		return domain.PageState{}, false
	}
	return PageStateOf(s.scene, page), true
}

// CurrentPageState is PageState for the current page.
func (s *Store) CurrentPageState() domain.PageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return PageStateOf(s.scene, s.currentPage)
}

// PageStateOf builds the render snapshot of one page of scene: the
// background plus visible nodes bottom to top.
func PageStateOf(scene domain.Scene, page int) domain.PageState {
	return domain.PageState{
		SceneID:    scene.ID,
		PageIndex:  page,
		TotalPages: scene.TotalPages,
		Width:      scene.Width,
		Height:     scene.Height,
		Background: scene.Background.Clone(),
		Nodes:      nodeops.PaintList(scene.Nodes, page),
	}
}

func (s *Store) clampPage() {
	if s.currentPage >= s.scene.TotalPages {
		s.currentPage = s.scene.TotalPages - 1
	}
	if s.currentPage < 0 {
		s.currentPage = 0
	}
}
