// Package memory keeps data room metadata in process memory. It backs the
// server when no database is configured and the service tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
)

// siblingKey is the unique index (dataroom, parent, lower(name))
type siblingKey struct {
	dataroomID string
	parentID   string
	name       string
}

func keyOf(dataroomID string, parentID *string, name string) siblingKey {
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	return siblingKey{
		dataroomID: dataroomID,
		parentID:   parent,
		name:       strings.ToLower(strings.TrimSpace(name)),
	}
}

// Store holds all tables. Reads are lock-free; writes are serialised by mu
// so that index checks and inserts happen atomically.
type Store struct {
	mu         sync.Mutex
	datarooms  *xsync.Map[string, models.Dataroom]
	nodes      *xsync.Map[string, models.Node]
	siblings   *xsync.Map[siblingKey, string]
	shareLinks *xsync.Map[string, models.ShareLink]
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		datarooms:  xsync.NewMap[string, models.Dataroom](),
		nodes:      xsync.NewMap[string, models.Node](),
		siblings:   xsync.NewMap[siblingKey, string](),
		shareLinks: xsync.NewMap[string, models.ShareLink](),
	}
}

// Nodes returns the node repository view of the store
func (s *Store) Nodes() *NodeRepository { return &NodeRepository{s: s} }

// Datarooms returns the data room repository view of the store
func (s *Store) Datarooms() *DataroomRepository { return &DataroomRepository{s: s} }

// ShareLinks returns the share link repository view of the store
func (s *Store) ShareLinks() *ShareLinkRepository { return &ShareLinkRepository{s: s} }

// TransactionManager returns a manager that runs fn directly.
// Each repository write is atomic on its own; there is no rollback.
func (s *Store) TransactionManager() repositories.TransactionManager { return txManager{} }

type txManager struct{}

func (txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

// childIndex groups every node id by parent id. Caller must hold mu
// or accept a racy view.
func (s *Store) childIndex() map[string][]string {
	index := make(map[string][]string)
	s.nodes.Range(func(id string, n models.Node) bool {
		if n.ParentID != nil {
			index[*n.ParentID] = append(index[*n.ParentID], id)
		}
		return true
	})
	return index
}

// subtree returns rootID and all its descendants (breadth first)
func subtree(rootID string, index map[string][]string) []string {
	ids := []string{rootID}
	seen := map[string]bool{rootID: true}
	for i := 0; i < len(ids); i++ {
		for _, child := range index[ids[i]] {
			if !seen[child] {
				seen[child] = true
				ids = append(ids, child)
			}
		}
	}
	return ids
}

// removeNodes deletes nodes and their index entries and the share links
// anchored on them. Caller must hold mu.
func (s *Store) removeNodes(ids []string) {
	removed := make(map[string]bool, len(ids))
	for _, id := range ids {
		n, ok := s.nodes.LoadAndDelete(id)
		if !ok {
			continue
		}
		removed[id] = true
		key := keyOf(n.DataroomID, n.ParentID, n.Name)
		if owner, ok := s.siblings.Load(key); ok && owner == id {
			s.siblings.Delete(key)
		}
	}

	s.shareLinks.Range(func(token string, link models.ShareLink) bool {
		if link.SharedFolderID != nil && removed[*link.SharedFolderID] {
			s.shareLinks.Delete(token)
		}
		return true
	})
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
