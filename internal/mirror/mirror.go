// Package mirror is the client-side cache of a data room tree. An Arena is
// rebuilt wholesale from the flat node list after every fetch and is never
// patched incrementally.
package mirror

import (
	"net/url"
	"sort"
	"strings"

	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/tree"
)

// Mode says whether the arena was loaded for the owner or through a share link
type Mode int

const (
	ModeOwner Mode = iota
	ModeShared
)

// Arena holds nodes keyed by id plus the derived children index.
// The local root is the virtual root in owner mode and the share anchor in
// shared mode (the virtual root again when a whole room is shared).
type Arena struct {
	mode     Mode
	rootID   string
	rootName string
	nodes    map[string]models.Node
	children map[string][]string
}

// Load builds an owner-mode arena with a synthetic root
func Load(nodes []models.Node, ownerEmail string) *Arena {
	root := tree.VirtualRoot(models.RootLabel(ownerEmail))
	a := newArena(ModeOwner, root.ID, root.Name, nodes)
	a.nodes[root.ID] = root
	return a
}

// LoadShared builds a shared-mode arena. With an anchor the anchor folder is
// the local root; without one the room's top level is, labelled roomName.
func LoadShared(nodes []models.Node, anchorID *string, roomName string) *Arena {
	if anchorID == nil {
		a := newArena(ModeShared, models.RootID, roomName, nodes)
		a.nodes[models.RootID] = tree.VirtualRoot(roomName)
		return a
	}

	name := roomName
	for _, n := range nodes {
		if n.ID == *anchorID {
			name = n.Name
			break
		}
	}
	return newArena(ModeShared, *anchorID, name, nodes)
}

// newArena groups nodes by parent in a single pass. Top-level nodes hang
// off the virtual root id.
func newArena(mode Mode, rootID, rootName string, nodes []models.Node) *Arena {
	a := &Arena{
		mode:     mode,
		rootID:   rootID,
		rootName: rootName,
		nodes:    make(map[string]models.Node, len(nodes)+1),
		children: make(map[string][]string),
	}
	for _, n := range nodes {
		a.nodes[n.ID] = n
		parent := models.RootID
		if n.ParentID != nil {
			parent = *n.ParentID
		}
		a.children[parent] = append(a.children[parent], n.ID)
	}
	for parent, ids := range a.children {
		sort.Slice(ids, func(i, j int) bool {
			return tree.Less(a.nodes[ids[i]], a.nodes[ids[j]])
		})
		a.children[parent] = ids
	}
	return a
}

func (a *Arena) Mode() Mode     { return a.mode }
func (a *Arena) RootID() string { return a.rootID }

// Root returns the local root node
func (a *Arena) Root() models.Node {
	return a.nodes[a.rootID]
}

// Len counts persisted nodes (the virtual root is excluded)
func (a *Arena) Len() int {
	if _, ok := a.nodes[models.RootID]; ok {
		return len(a.nodes) - 1
	}
	return len(a.nodes)
}

// Get returns a node by id
func (a *Arena) Get(id string) (models.Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

// Children returns the ordered child ids of a folder
func (a *Arena) Children(id string) []string {
	return a.children[id]
}

// ChildrenOf returns the ordered children of a folder
func (a *Arena) ChildrenOf(id string) []models.Node {
	ids := a.children[id]
	out := make([]models.Node, 0, len(ids))
	for _, childID := range ids {
		out = append(out, a.nodes[childID])
	}
	return out
}

// ancestry returns the nodes from the local root down to id, or nil when
// id is not under the local root
func (a *Arena) ancestry(id string) []models.Node {
	var reversed []models.Node
	current := id
	for steps := 0; steps <= len(a.nodes); steps++ {
		n, ok := a.nodes[current]
		if !ok {
			return nil
		}
		reversed = append(reversed, n)
		if current == a.rootID {
			out := make([]models.Node, len(reversed))
			for i, n := range reversed {
				out[len(reversed)-1-i] = n
			}
			return out
		}
		if n.ParentID == nil {
			current = models.RootID
		} else {
			current = *n.ParentID
		}
	}
	return nil
}

// Contains reports whether id lies under the local root
func (a *Arena) Contains(id string) bool {
	return a.ancestry(id) != nil
}

// Breadcrumbs returns the crumbs from the local root to id. The root crumb
// has path "" and each further crumb extends it with "/<escaped name>".
func (a *Arena) Breadcrumbs(id string) []models.Breadcrumb {
	chain := a.ancestry(id)
	if chain == nil {
		return nil
	}

	crumbs := make([]models.Breadcrumb, 0, len(chain))
	path := ""
	for i, n := range chain {
		name := n.Name
		if i == 0 {
			name = a.rootName
		} else {
			path += "/" + url.PathEscape(n.Name)
		}
		crumbs = append(crumbs, models.Breadcrumb{ID: n.ID, Name: name, Path: path})
	}
	return crumbs
}

// PathSegments returns the escaped names below the local root down to id
func (a *Arena) PathSegments(id string) []string {
	chain := a.ancestry(id)
	if chain == nil {
		return nil
	}
	segments := make([]string, 0, len(chain)-1)
	for _, n := range chain[1:] {
		segments = append(segments, url.PathEscape(n.Name))
	}
	return segments
}

// FolderByPath resolves "/a/b" relative to the local root through folder
// children, decoding and matching names case-insensitively
func (a *Arena) FolderByPath(path string) (models.Node, bool) {
	current := a.rootID
	for _, raw := range tree.SplitPath(path) {
		name, err := url.PathUnescape(raw)
		if err != nil {
			return models.Node{}, false
		}
		next := ""
		for _, childID := range a.children[current] {
			child := a.nodes[childID]
			if !child.IsFolder() {
				continue
			}
			if child.Name == name {
				next = childID
				break
			}
			if next == "" && strings.EqualFold(child.Name, name) {
				next = childID
			}
		}
		if next == "" {
			return models.Node{}, false
		}
		current = next
	}
	return a.nodes[current], true
}

// Search returns nodes under the local root whose name contains query,
// ignoring case, in display order
func (a *Arena) Search(query string) []models.Node {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []models.Node
	for id, n := range a.nodes {
		if id == a.rootID || id == models.RootID {
			continue
		}
		if strings.Contains(strings.ToLower(n.Name), query) && a.Contains(id) {
			matches = append(matches, n)
		}
	}
	tree.Sort(matches)
	return matches
}
