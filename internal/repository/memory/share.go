package memory

import (
	"context"
	"fmt"
	"sort"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
)

// ShareLinkRepository implements the ShareLinkRepository interface over a Store
type ShareLinkRepository struct {
	s *Store
}

func (r *ShareLinkRepository) Create(ctx context.Context, link *models.ShareLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.datarooms.Load(link.DataroomID); !ok {
		return fmt.Errorf("dataroom %s: %w", link.DataroomID, domain.ErrNotFound)
	}
	if _, taken := r.s.shareLinks.Load(link.Token); taken {
		return fmt.Errorf("share token: %w", domain.ErrConflict)
	}
	link.CreatedAt = timeOrNow(link.CreatedAt)
	r.s.shareLinks.Store(link.Token, *link)
	return nil
}

func (r *ShareLinkRepository) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	link, ok := r.s.shareLinks.Load(token)
	if !ok {
		return nil, domain.ErrShareNotFound
	}
	return &link, nil
}

func (r *ShareLinkRepository) ListByDataroom(ctx context.Context, dataroomID string) ([]models.ShareLink, error) {
	links := []models.ShareLink{}
	r.s.shareLinks.Range(func(_ string, link models.ShareLink) bool {
		if link.DataroomID == dataroomID {
			links = append(links, link)
		}
		return true
	})
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (r *ShareLinkRepository) Delete(ctx context.Context, token, dataroomID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	link, ok := r.s.shareLinks.Load(token)
	if !ok || link.DataroomID != dataroomID {
		return domain.ErrShareNotFound
	}
	r.s.shareLinks.Delete(token)
	return nil
}
