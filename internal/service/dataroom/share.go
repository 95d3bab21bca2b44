package dataroom

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dataroom/internal/cache"
	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/domain/services"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/metrics"
	"dataroom/internal/tree"
)

const shareTokenBytes = 32

type shareService struct {
	shareRepo    dataroomRepo.ShareLinkRepository
	dataroomRepo dataroomRepo.DataroomRepository
	nodeRepo     dataroomRepo.NodeRepository
	blobs        repositories.BlobStore
	cache        cache.ShareCache
	authorizer   services.ResourceAuthorizer
	baseURL      string
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewShareService creates the share link service. A nil cache disables caching.
func NewShareService(
	shareRepo dataroomRepo.ShareLinkRepository,
	dataroomRepo dataroomRepo.DataroomRepository,
	nodeRepo dataroomRepo.NodeRepository,
	blobs repositories.BlobStore,
	shareCache cache.ShareCache,
	authorizer services.ResourceAuthorizer,
	baseURL string,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) dataroomSvc.ShareService {
	if shareCache == nil {
		shareCache = cache.NoopShareCache{}
	}
	return &shareService{
		shareRepo:    shareRepo,
		dataroomRepo: dataroomRepo,
		nodeRepo:     nodeRepo,
		blobs:        blobs,
		cache:        shareCache,
		authorizer:   authorizer,
		baseURL:      baseURL,
		metrics:      metrics,
		logger:       logger,
	}
}

// CreateShareLink shares a whole data room, or the subtree under FolderID
func (s *shareService) CreateShareLink(ctx context.Context, req *dataroomSvc.CreateShareLinkRequest) (*dataroomSvc.ShareLinkResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.DataroomID, validation.Required),
	); err != nil {
		return nil, validationError(err)
	}
	folderID := normalizeParentID(req.FolderID)

	if err := s.authorizer.CanAccessDataroom(ctx, req.UserID, req.DataroomID); err != nil {
		return nil, err
	}
	if folderID != nil {
		folder, err := s.nodeRepo.GetByID(ctx, *folderID, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("shared folder: %w", err)
		}
		if folder.DataroomID != req.DataroomID || !folder.IsFolder() {
			return nil, fmt.Errorf("shared folder %s: %w", *folderID, domain.ErrNotFound)
		}
	}

	token, err := newShareToken()
	if err != nil {
		return nil, err
	}

	link := &models.ShareLink{
		Token:          token,
		DataroomID:     req.DataroomID,
		SharedFolderID: folderID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.shareRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("share link created",
		"dataroom_id", link.DataroomID,
		"shared_folder_id", link.SharedFolderID,
	)

	return &dataroomSvc.ShareLinkResult{
		Token:          token,
		ShareURL:       s.baseURL + "/share/" + token,
		SharedFolderID: folderID,
	}, nil
}

func (s *shareService) ListShareLinks(ctx context.Context, userID, dataroomID string) ([]models.ShareLink, error) {
	if err := s.authorizer.CanAccessDataroom(ctx, userID, dataroomID); err != nil {
		return nil, err
	}
	return s.shareRepo.ListByDataroom(ctx, dataroomID)
}

// RevokeShareLink deletes a share link owned by userID
func (s *shareService) RevokeShareLink(ctx context.Context, userID, token string) error {
	link, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if err := s.authorizer.CanAccessDataroom(ctx, userID, link.DataroomID); err != nil {
		return err
	}
	if err := s.shareRepo.Delete(ctx, token, link.DataroomID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, token)

	s.logger.Info("share link revoked", "dataroom_id", link.DataroomID)
	return nil
}

// GetShared resolves token to its anchor, filters the room to the anchor's
// subtree and navigates path from the anchor
func (s *shareService) GetShared(ctx context.Context, token, path string) (*models.SharedView, error) {
	segments := tree.SplitPath(path)
	if len(segments) > config.MaxPathDepth {
		return nil, fmt.Errorf("%w: path is deeper than %d folders", domain.ErrValidation, config.MaxPathDepth)
	}

	scope, err := s.resolveScope(ctx, token)
	if err != nil {
		return nil, err
	}

	current, ok := scope.snapshot.ResolvePath(segments, scope.anchor)
	if !ok {
		s.metrics.ShareView("out_of_scope")
		return nil, domain.ErrFolderNotFoundInScope
	}

	var currentID *string
	if current != nil {
		currentID = &current.ID
	}

	visible := scope.snapshot.VisibleFrom(scope.anchor)
	s.metrics.ShareView("ok")

	return &models.SharedView{
		Dataroom: models.SharedDataroom{
			ID:    scope.room.ID,
			Name:  scope.room.Name,
			Owner: models.SharedOwner{Email: scope.room.OwnerEmail},
			Nodes: visible,
		},
		SharedFolderID:  scope.link.SharedFolderID,
		CurrentFolderID: currentID,
		Breadcrumbs:     scope.snapshot.Breadcrumbs(derefOr(currentID, ""), scope.anchor, scope.room.Name),
	}, nil
}

// OpenSharedFile checks the file's own id against the link's scope before
// reading; client supplied paths play no part
func (s *shareService) OpenSharedFile(ctx context.Context, token, fileID string) (*dataroomSvc.FileContent, error) {
	scope, err := s.resolveScope(ctx, token)
	if err != nil {
		return nil, err
	}

	node, ok := scope.snapshot.Get(fileID)
	if !ok || node.DataroomID != scope.room.ID || !scope.snapshot.IsAncestor(scope.anchor, fileID) {
		s.metrics.ShareView("out_of_scope")
		return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}

	return openBlob(ctx, s.blobs, &node, s.metrics, s.logger)
}

// shareScope is a resolved share link with a snapshot of its data room
type shareScope struct {
	link     *models.ShareLink
	room     *models.Dataroom
	snapshot *tree.Snapshot
	anchor   string // "" when the whole room is shared
}

func (s *shareService) resolveScope(ctx context.Context, token string) (*shareScope, error) {
	link, err := s.lookup(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.ShareView("not_found")
		}
		return nil, err
	}

	room, err := s.dataroomRepo.GetByIDOnly(ctx, link.DataroomID)
	if err != nil {
		if isNotFound(err) {
			s.cache.Invalidate(ctx, token)
			return nil, domain.ErrShareNotFound
		}
		return nil, err
	}

	nodes, err := s.nodeRepo.ListByDataroom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	snapshot := tree.NewSnapshot(nodes)

	anchor := derefOr(link.SharedFolderID, "")
	if anchor != "" {
		if n, ok := snapshot.Get(anchor); !ok || !n.IsFolder() {
			// Anchor deleted after the link was cached
			s.cache.Invalidate(ctx, token)
			return nil, domain.ErrShareNotFound
		}
	}

	return &shareScope{link: link, room: room, snapshot: snapshot, anchor: anchor}, nil
}

// lookup finds a share link by token: cache, then share link table, then
// the legacy per-room token
func (s *shareService) lookup(ctx context.Context, token string) (*models.ShareLink, error) {
	if token == "" {
		return nil, domain.ErrShareNotFound
	}
	if link, ok := s.cache.Get(ctx, token); ok {
		return link, nil
	}

	link, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		room, legacyErr := s.dataroomRepo.GetByShareToken(ctx, token)
		if legacyErr != nil {
			if isNotFound(legacyErr) {
				return nil, domain.ErrShareNotFound
			}
			return nil, legacyErr
		}
		link = &models.ShareLink{Token: token, DataroomID: room.ID, CreatedAt: room.CreatedAt}
	}

	s.cache.Set(ctx, link)
	return link, nil
}

// newShareToken returns 32 random bytes, base64url encoded
func newShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
