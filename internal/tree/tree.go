// Package tree answers structural questions about a data room from an
// immutable snapshot of its nodes. Nothing here touches storage.
//
// Parent ids are plain strings: "" (or the virtual root id "root") means
// the top level of the data room.
package tree

import (
	"net/url"
	"sort"
	"strings"

	models "dataroom/internal/domain/models/dataroom"
)

// Snapshot is a read-only view of one data room's nodes with a derived
// children index. Build a new one after every mutation.
type Snapshot struct {
	nodes    map[string]models.Node
	children map[string][]string // parent id ("" = top level) -> sorted child ids
}

// NewSnapshot indexes nodes. Children are ordered folders first, then by
// case-insensitive name, then exact name, then id.
func NewSnapshot(nodes []models.Node) *Snapshot {
	s := &Snapshot{
		nodes:    make(map[string]models.Node, len(nodes)),
		children: make(map[string][]string),
	}
	for _, n := range nodes {
		s.nodes[n.ID] = n
	}
	for _, n := range s.nodes {
		parent := n.ParentKey()
		s.children[parent] = append(s.children[parent], n.ID)
	}
	for parent, ids := range s.children {
		sort.Slice(ids, func(i, j int) bool {
			return Less(s.nodes[ids[i]], s.nodes[ids[j]])
		})
		s.children[parent] = ids
	}
	return s
}

// Less is the display order of siblings
func Less(a, b models.Node) bool {
	if a.IsFolder() != b.IsFolder() {
		return a.IsFolder()
	}
	la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if la != lb {
		return la < lb
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// Sort orders nodes in place by Less
func Sort(nodes []models.Node) {
	sort.Slice(nodes, func(i, j int) bool { return Less(nodes[i], nodes[j]) })
}

func normalize(id string) string {
	if id == models.RootID {
		return ""
	}
	return id
}

// Len returns the number of nodes in the snapshot
func (s *Snapshot) Len() int { return len(s.nodes) }

// Get returns a node by id
func (s *Snapshot) Get(id string) (models.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns every node in display order (depth first)
func (s *Snapshot) Nodes() []models.Node {
	out := make([]models.Node, 0, len(s.nodes))
	s.walk("", func(n models.Node) { out = append(out, n) })
	return out
}

// ChildrenOf returns the ordered children of parentID
func (s *Snapshot) ChildrenOf(parentID string) []models.Node {
	ids := s.children[normalize(parentID)]
	out := make([]models.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.nodes[id])
	}
	return out
}

// PathTo returns the nodes from the top level down to nodeID inclusive.
// Returns nil if nodeID or any ancestor is missing from the snapshot, or if
// the parent chain does not end within Len() steps.
func (s *Snapshot) PathTo(nodeID string) []models.Node {
	var reversed []models.Node
	current := normalize(nodeID)
	for steps := 0; current != ""; steps++ {
		if steps >= len(s.nodes) {
			return nil
		}
		n, ok := s.nodes[current]
		if !ok {
			return nil
		}
		reversed = append(reversed, n)
		current = n.ParentKey()
	}

	path := make([]models.Node, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path
}

// OwnerPathTo is PathTo with the virtual root prepended. The virtual root
// alone is returned for "" and "root".
func (s *Snapshot) OwnerPathTo(nodeID, rootName string) []models.Node {
	root := VirtualRoot(rootName)
	if normalize(nodeID) == "" {
		return []models.Node{root}
	}
	path := s.PathTo(nodeID)
	if path == nil {
		return nil
	}
	return append([]models.Node{root}, path...)
}

// VirtualRoot synthesises the never-persisted root folder
func VirtualRoot(name string) models.Node {
	return models.Node{ID: models.RootID, Name: name, Type: models.NodeTypeFolder}
}

// IsAncestor reports whether candidateID is nodeID itself or lies on the
// path from nodeID to the top level. The top level ("" or "root") is an
// ancestor of every node in the snapshot.
func (s *Snapshot) IsAncestor(candidateID, nodeID string) bool {
	candidate, current := normalize(candidateID), normalize(nodeID)
	if candidate == current {
		return candidate == "" || s.has(current)
	}
	if candidate == "" {
		return s.PathTo(current) != nil
	}
	for steps := 0; current != ""; steps++ {
		if steps >= len(s.nodes) {
			return false
		}
		n, ok := s.nodes[current]
		if !ok {
			return false
		}
		if n.ID == candidate {
			return true
		}
		current = n.ParentKey()
	}
	return false
}

func (s *Snapshot) has(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Descendants returns every node below nodeID (excluding it), depth first
func (s *Snapshot) Descendants(nodeID string) []models.Node {
	var out []models.Node
	s.walk(normalize(nodeID), func(n models.Node) { out = append(out, n) })
	return out
}

// VisibleFrom returns the nodes a session anchored at anchorID can see:
// the anchor itself followed by its descendants. An empty anchor sees everything.
func (s *Snapshot) VisibleFrom(anchorID string) []models.Node {
	anchor := normalize(anchorID)
	if anchor == "" {
		return s.Nodes()
	}
	n, ok := s.nodes[anchor]
	if !ok {
		return nil
	}
	return append([]models.Node{n}, s.Descendants(anchor)...)
}

// Depth returns the number of ancestors of nodeID, or -1 if it cannot be resolved
func (s *Snapshot) Depth(nodeID string) int {
	path := s.PathTo(nodeID)
	if path == nil {
		return -1
	}
	return len(path) - 1
}

// walk visits the subtree under parent in display order. Each node is
// visited at most once, so a corrupted cycle cannot loop forever.
func (s *Snapshot) walk(parent string, visit func(models.Node)) {
	seen := make(map[string]bool)
	var rec func(string)
	rec = func(id string) {
		for _, child := range s.children[id] {
			if seen[child] {
				continue
			}
			seen[child] = true
			visit(s.nodes[child])
			rec(child)
		}
	}
	rec(parent)
}

// ResolvePath walks segments from startID through Folder children.
// Each segment is URL path-decoded and matched case-insensitively; an
// exact match wins if several fold to the same name. An empty segment list
// resolves to the start itself. The returned node is nil when the result is
// the top level. ok is false as soon as a segment does not resolve.
func (s *Snapshot) ResolvePath(segments []string, startID string) (*models.Node, bool) {
	current := normalize(startID)
	if current != "" && !s.has(current) {
		return nil, false
	}

	for _, raw := range segments {
		name, err := url.PathUnescape(raw)
		if err != nil {
			return nil, false
		}
		next, ok := s.folderChild(current, name)
		if !ok {
			return nil, false
		}
		current = next
	}

	if current == "" {
		return nil, true
	}
	n := s.nodes[current]
	return &n, true
}

func (s *Snapshot) folderChild(parent, name string) (string, bool) {
	match := ""
	for _, id := range s.children[parent] {
		n := s.nodes[id]
		if !n.IsFolder() {
			continue
		}
		if n.Name == name {
			return id, true
		}
		if match == "" && strings.EqualFold(n.Name, name) {
			match = id
		}
	}
	return match, match != ""
}

// SplitPath splits a slash separated path into raw segments, dropping
// empty ones. Segments are decoded by ResolvePath, not here.
func SplitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// PathSegments returns the escaped names from the node below startID down
// to nodeID. ok is false if startID is not an ancestor of nodeID.
func (s *Snapshot) PathSegments(nodeID, startID string) ([]string, bool) {
	start := normalize(startID)
	path := s.PathTo(nodeID)
	if path == nil && normalize(nodeID) != "" {
		return nil, false
	}

	from := 0
	if start != "" {
		from = -1
		for i, n := range path {
			if n.ID == start {
				from = i + 1
				break
			}
		}
		if from < 0 {
			return nil, false
		}
	}

	segments := make([]string, 0, len(path)-from)
	for _, n := range path[from:] {
		segments = append(segments, url.PathEscape(n.Name))
	}
	return segments, true
}

// Breadcrumbs returns one crumb per node on the path from the local root
// (startID, or the virtual root named rootName when startID is empty)
// down to nodeID. Paths are relative to the local root, "" for the root.
func (s *Snapshot) Breadcrumbs(nodeID, startID, rootName string) []models.Breadcrumb {
	start := normalize(startID)

	var head models.Breadcrumb
	if start == "" {
		head = models.Breadcrumb{ID: models.RootID, Name: rootName, Path: ""}
	} else {
		n, ok := s.nodes[start]
		if !ok {
			return nil
		}
		head = models.Breadcrumb{ID: n.ID, Name: n.Name, Path: ""}
	}

	crumbs := []models.Breadcrumb{head}
	if normalize(nodeID) == start {
		return crumbs
	}

	segments, ok := s.PathSegments(nodeID, start)
	if !ok {
		return nil
	}
	path := s.PathTo(nodeID)
	below := path[len(path)-len(segments):]
	prefix := ""
	for i, n := range below {
		prefix += "/" + segments[i]
		crumbs = append(crumbs, models.Breadcrumb{ID: n.ID, Name: n.Name, Path: prefix})
	}
	return crumbs
}
