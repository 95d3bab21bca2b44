package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
)

// NodeRepository implements the NodeRepository interface over a Store
type NodeRepository struct {
	s *Store
}

func (r *NodeRepository) Create(ctx context.Context, node *models.Node) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.datarooms.Load(node.DataroomID); !ok {
		return fmt.Errorf("dataroom %s: %w", node.DataroomID, domain.ErrNotFound)
	}
	if node.ParentID != nil {
		parent, ok := r.s.nodes.Load(*node.ParentID)
		if !ok || parent.DataroomID != node.DataroomID {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
	}

	key := keyOf(node.DataroomID, node.ParentID, node.Name)
	if existingID, taken := r.s.siblings.Load(key); taken {
		return r.conflict(node.Name, existingID)
	}

	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	node.CreatedAt = timeOrNow(node.CreatedAt)
	node.UpdatedAt = timeOrNow(node.UpdatedAt)

	r.s.nodes.Store(node.ID, *node)
	r.s.siblings.Store(key, node.ID)
	return nil
}

func (r *NodeRepository) GetByID(ctx context.Context, id, userID string) (*models.Node, error) {
	n, ok := r.s.nodes.Load(id)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	room, ok := r.s.datarooms.Load(n.DataroomID)
	if !ok || room.UserID != userID {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return &n, nil
}

func (r *NodeRepository) GetByIDOnly(ctx context.Context, id string) (*models.Node, error) {
	n, ok := r.s.nodes.Load(id)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return &n, nil
}

func (r *NodeRepository) UpdateName(ctx context.Context, node *models.Node) error {
	return r.update(node, false)
}

func (r *NodeRepository) UpdateParent(ctx context.Context, node *models.Node) error {
	return r.update(node, true)
}

// update rewrites name (and parent when move is set) under the unique index
func (r *NodeRepository) update(node *models.Node, move bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.nodes.Load(node.ID)
	if !ok || current.DataroomID != node.DataroomID {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrNotFound)
	}

	next := current
	next.Name = node.Name
	next.UpdatedAt = timeOrNow(node.UpdatedAt)
	if move {
		next.ParentID = node.ParentID
		if next.ParentID != nil {
			parent, ok := r.s.nodes.Load(*next.ParentID)
			if !ok || parent.DataroomID != next.DataroomID {
				return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
			}
		}
	}

	oldKey := keyOf(current.DataroomID, current.ParentID, current.Name)
	newKey := keyOf(next.DataroomID, next.ParentID, next.Name)
	if existingID, taken := r.s.siblings.Load(newKey); taken && existingID != node.ID {
		return r.conflict(node.Name, existingID)
	}

	r.s.siblings.Delete(oldKey)
	r.s.siblings.Store(newKey, next.ID)
	r.s.nodes.Store(next.ID, next)
	*node = next
	return nil
}

func (r *NodeRepository) FindByParentAndName(ctx context.Context, dataroomID string, parentID *string, name string) (*models.Node, error) {
	id, ok := r.s.siblings.Load(keyOf(dataroomID, parentID, name))
	if !ok {
		return nil, fmt.Errorf("node %q: %w", name, domain.ErrNotFound)
	}
	n, ok := r.s.nodes.Load(id)
	if !ok {
		return nil, fmt.Errorf("node %q: %w", name, domain.ErrNotFound)
	}
	return &n, nil
}

func (r *NodeRepository) ListChildren(ctx context.Context, dataroomID string, parentID *string) ([]models.Node, error) {
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	return r.filter(func(n models.Node) bool {
		return n.DataroomID == dataroomID && n.ParentKey() == parent
	}), nil
}

func (r *NodeRepository) ListByDataroom(ctx context.Context, dataroomID string) ([]models.Node, error) {
	return r.filter(func(n models.Node) bool { return n.DataroomID == dataroomID }), nil
}

// ListDescendants scans a children index built from the data room's nodes
func (r *NodeRepository) ListDescendants(ctx context.Context, nodeID, dataroomID string) ([]models.Node, error) {
	root, ok := r.s.nodes.Load(nodeID)
	if !ok || root.DataroomID != dataroomID {
		return []models.Node{}, nil
	}

	nodes := []models.Node{}
	for _, id := range subtree(nodeID, r.s.childIndex()) {
		if n, ok := r.s.nodes.Load(id); ok && n.DataroomID == dataroomID {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func (r *NodeRepository) ListByIDs(ctx context.Context, ids []string, userID string) ([]models.Node, error) {
	nodes := []models.Node{}
	for _, id := range ids {
		n, err := r.GetByID(ctx, id, userID)
		if err != nil {
			continue
		}
		nodes = append(nodes, *n)
	}
	return nodes, nil
}

// DeleteCascade removes the nodes and everything below them.
// Returns how many of ids existed.
func (r *NodeRepository) DeleteCascade(ctx context.Context, ids []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	index := r.s.childIndex()
	deleted := 0
	var closure []string
	for _, id := range ids {
		if _, ok := r.s.nodes.Load(id); !ok {
			continue
		}
		deleted++
		closure = append(closure, subtree(id, index)...)
	}
	r.s.removeNodes(closure)
	return deleted, nil
}

func (r *NodeRepository) filter(keep func(models.Node) bool) []models.Node {
	nodes := []models.Node{}
	r.s.nodes.Range(func(_ string, n models.Node) bool {
		if keep(n) {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

func (r *NodeRepository) conflict(name, existingID string) error {
	resourceType := "node"
	if existing, ok := r.s.nodes.Load(existingID); ok {
		resourceType = strings.ToLower(string(existing.Type))
	}
	return domain.NewNameConflict(name, resourceType, existingID)
}
