package composer

import "sort"

// Select selects id. Without additive the previous selection is replaced;
// with it, id is toggled.
func (s *Store) Select(id string, additive bool) bool {
	return s.mutate(ChangeSelection, func() bool {
		if !s.has(id) {
			return false
		}
		if !additive {
			s.selection = map[string]struct{}{id: {}}
			return true
		}
		if _, ok := s.selection[id]; ok {
			delete(s.selection, id)
		} else {
			s.selection[id] = struct{}{}
		}
		return true
	})
}

// SelectMany replaces the selection with the known ids among ids.
func (s *Store) SelectMany(ids []string) {
	s.mutate(ChangeSelection, func() bool {
		s.selection = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if s.has(id) {
				s.selection[id] = struct{}{}
			}
		}
		return true
	})
}

// SelectAll selects every node on the current page.
func (s *Store) SelectAll() {
	s.mutate(ChangeSelection, func() bool {
		s.selection = make(map[string]struct{})
		for _, n := range s.scene.Nodes {
			if n.PageIndex == s.currentPage {
				s.selection[n.ID] = struct{}{}
			}
		}
		return true
	})
}

func (s *Store) ClearSelection() {
	s.mutate(ChangeSelection, func() bool {
		if len(s.selection) == 0 {
			return false
		}
		s.selection = make(map[string]struct{})
		return true
	})
}

// Selection returns the selected ids, sorted.
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedIDs()
}

func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selection[id]
	return ok
}

// RemoveSelected deletes every selected node in one step.
func (s *Store) RemoveSelected() bool {
	return s.RemoveNodes(s.Selection())
}

// DuplicateSelected copies every selected node; the copies become the
// selection.
func (s *Store) DuplicateSelected() []string {
	return s.duplicate(s.Selection())
}

func (s *Store) selectedIDs() []string {
	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// pruneSelection drops ids that no longer exist in the scene.
func (s *Store) pruneSelection() {
	if len(s.selection) == 0 {
		return
	}
	live := make(map[string]struct{}, len(s.scene.Nodes))
	for _, n := range s.scene.Nodes {
		live[n.ID] = struct{}{}
	}
	for id := range s.selection {
		if _, ok := live[id]; !ok {
			delete(s.selection, id)
		}
	}
}
