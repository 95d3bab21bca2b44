package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
)

// DataroomRepository implements the DataroomRepository interface over a Store
type DataroomRepository struct {
	s *Store
}

func (r *DataroomRepository) Create(ctx context.Context, room *models.Dataroom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if room.ShareToken != nil {
		taken := false
		r.s.datarooms.Range(func(_ string, other models.Dataroom) bool {
			taken = other.ShareToken != nil && *other.ShareToken == *room.ShareToken
			return !taken
		})
		if taken {
			return fmt.Errorf("share token: %w", domain.ErrConflict)
		}
	}

	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	room.CreatedAt = timeOrNow(room.CreatedAt)
	room.UpdatedAt = timeOrNow(room.UpdatedAt)
	r.s.datarooms.Store(room.ID, *room)
	return nil
}

func (r *DataroomRepository) GetByID(ctx context.Context, id, userID string) (*models.Dataroom, error) {
	room, ok := r.s.datarooms.Load(id)
	if !ok || room.UserID != userID {
		return nil, fmt.Errorf("dataroom %s: %w", id, domain.ErrNotFound)
	}
	return &room, nil
}

func (r *DataroomRepository) GetByIDOnly(ctx context.Context, id string) (*models.Dataroom, error) {
	room, ok := r.s.datarooms.Load(id)
	if !ok {
		return nil, fmt.Errorf("dataroom %s: %w", id, domain.ErrNotFound)
	}
	return &room, nil
}

func (r *DataroomRepository) ListByUser(ctx context.Context, userID string) ([]models.Dataroom, error) {
	rooms := []models.Dataroom{}
	r.s.datarooms.Range(func(_ string, room models.Dataroom) bool {
		if room.UserID == userID {
			rooms = append(rooms, room)
		}
		return true
	})
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}

func (r *DataroomRepository) GetByShareToken(ctx context.Context, token string) (*models.Dataroom, error) {
	var found *models.Dataroom
	r.s.datarooms.Range(func(_ string, room models.Dataroom) bool {
		if room.ShareToken != nil && *room.ShareToken == token {
			found = &room
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("dataroom with share token: %w", domain.ErrNotFound)
	}
	return found, nil
}

// Delete removes the room with its nodes and share links
func (r *DataroomRepository) Delete(ctx context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.datarooms.Load(id)
	if !ok || room.UserID != userID {
		return fmt.Errorf("dataroom %s: %w", id, domain.ErrNotFound)
	}

	var ids []string
	r.s.nodes.Range(func(nodeID string, n models.Node) bool {
		if n.DataroomID == id {
			ids = append(ids, nodeID)
		}
		return true
	})
	r.s.removeNodes(ids)

	r.s.shareLinks.Range(func(token string, link models.ShareLink) bool {
		if link.DataroomID == id {
			r.s.shareLinks.Delete(token)
		}
		return true
	})
	r.s.datarooms.Delete(id)
	return nil
}
