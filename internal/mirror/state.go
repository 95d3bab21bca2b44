package mirror

import (
	"sort"

	models "dataroom/internal/domain/models/dataroom"
)

// Selection is the multi-select state for bulk actions. Nodes are
// unselected unless set.
type Selection struct {
	ids map[string]bool
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]bool)}
}

func (s *Selection) Toggle(id string) {
	if s.ids[id] {
		delete(s.ids, id)
		return
	}
	s.ids[id] = true
}

func (s *Selection) Set(id string, selected bool) {
	if selected {
		s.ids[id] = true
		return
	}
	delete(s.ids, id)
}

func (s *Selection) IsSelected(id string) bool { return s.ids[id] }
func (s *Selection) Count() int               { return len(s.ids) }
func (s *Selection) Clear()                   { clear(s.ids) }

// IDs returns the selected ids, sorted
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Prune drops ids that no longer exist after a reload
func (s *Selection) Prune(a *Arena) {
	for id := range s.ids {
		if _, ok := a.Get(id); !ok {
			delete(s.ids, id)
		}
	}
}

// Expansion tracks which folders are open in the sidebar tree.
// Folders start collapsed; the virtual root starts expanded.
type Expansion struct {
	open map[string]bool
}

func NewExpansion() *Expansion {
	return &Expansion{open: map[string]bool{models.RootID: true}}
}

func (e *Expansion) Toggle(id string)          { e.open[id] = !e.open[id] }
func (e *Expansion) Set(id string, open bool)  { e.open[id] = open }
func (e *Expansion) IsExpanded(id string) bool { return e.open[id] }

// ExpandTo opens every folder on the path to id so it becomes visible
func (e *Expansion) ExpandTo(a *Arena, id string) {
	for _, crumb := range a.Breadcrumbs(id) {
		e.open[crumb.ID] = true
	}
}
