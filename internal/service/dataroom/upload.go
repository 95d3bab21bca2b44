package dataroom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
)

// UploadFiles stores each file of the batch independently.
//
// Sibling names are read once before the batch starts. Two files of the same
// batch sharing a name both pass that check; the second is then rejected by
// the store's unique index, reported as a conflict and its blob removed.
// Failed files never leave metadata or blobs behind.
func (s *nodeService) UploadFiles(ctx context.Context, req *dataroomSvc.UploadRequest) (*dataroomSvc.UploadResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.DataroomID, validation.Required),
		validation.Field(&req.Files, validation.Required.Error("no files provided")),
	); err != nil {
		return nil, validationError(err)
	}
	parentID := normalizeParentID(req.ParentID)

	if err := s.authorizer.CanAccessDataroom(ctx, req.UserID, req.DataroomID); err != nil {
		return nil, err
	}
	if err := s.requireFolder(ctx, req.UserID, req.DataroomID, parentID); err != nil {
		return nil, err
	}

	// Mutations run to completion even if the client goes away
	ctx = context.WithoutCancel(ctx)

	siblings, err := s.nodeRepo.ListChildren(ctx, req.DataroomID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list existing names: %w", err)
	}
	existing := make(map[string]models.Node, len(siblings))
	taken := make(map[string]bool, len(siblings)+len(req.Files))
	for _, n := range siblings {
		key := strings.ToLower(n.Name)
		existing[key] = n
		taken[key] = true
	}

	result := &dataroomSvc.UploadResult{
		Uploaded:  []models.Node{},
		Conflicts: []dataroomSvc.UploadConflict{},
	}
	reject := func(c dataroomSvc.UploadConflict, reason string) {
		result.Conflicts = append(result.Conflicts, c)
		s.metrics.UploadRejected(reason)
	}

	for _, file := range req.Files {
		name, err := checkName(file.Name)
		if err != nil {
			reject(dataroomSvc.UploadConflict{Name: file.Name, Reason: err.Error()}, "invalid")
			continue
		}

		if file.Size > config.MaxFileSize {
			reject(dataroomSvc.UploadConflict{Name: name, Reason: sizeLimitReason(file.Size)}, "size")
			continue
		}

		if sibling, ok := existing[strings.ToLower(name)]; ok {
			reject(dataroomSvc.UploadConflict{
				Name:          name,
				Reason:        nameConflictReason,
				ExistingID:    sibling.ID,
				SuggestedName: suggestName(name, taken),
			}, "conflict")
			continue
		}

		node, conflict, kind := s.storeFile(ctx, req, parentID, name, file)
		if conflict != nil {
			if kind == "conflict" {
				conflict.SuggestedName = suggestName(name, taken)
			}
			reject(*conflict, kind)
			continue
		}

		taken[strings.ToLower(name)] = true
		result.Uploaded = append(result.Uploaded, *node)
		s.metrics.NodeCreated(string(models.NodeTypeFile))
	}

	s.logger.Info("files uploaded",
		"dataroom_id", req.DataroomID,
		"parent_id", parentID,
		"uploaded", len(result.Uploaded),
		"conflicts", len(result.Conflicts),
	)

	return result, nil
}

// storeFile reads one file, saves the blob and creates its node. On any
// failure it cleans up and returns the conflict to report instead, with its
// kind ("size", "conflict" or "storage").
func (s *nodeService) storeFile(
	ctx context.Context,
	req *dataroomSvc.UploadRequest,
	parentID *string,
	name string,
	file dataroomSvc.UploadFile,
) (*models.Node, *dataroomSvc.UploadConflict, string) {
	data, err := readUpload(file)
	if err != nil {
		s.logger.Warn("read upload failed", "name", name, "error", err)
		return nil, &dataroomSvc.UploadConflict{Name: name, Reason: "Failed to read file"}, "storage"
	}
	if int64(len(data)) > config.MaxFileSize {
		return nil, &dataroomSvc.UploadConflict{Name: name, Reason: sizeLimitReason(int64(len(data)))}, "size"
	}

	handle, err := s.blobs.Save(ctx, data, req.UserID, req.DataroomID, name)
	if err != nil {
		s.metrics.BlobFailure("save")
		s.logger.Error("save blob failed", "name", name, "error", err)
		return nil, &dataroomSvc.UploadConflict{Name: name, Reason: "Failed to store file"}, "storage"
	}

	now := time.Now().UTC()
	node := &models.Node{
		DataroomID: req.DataroomID,
		ParentID:   parentID,
		Name:       name,
		Type:       models.NodeTypeFile,
		FilePath:   handle,
		MimeType:   detectMimeType(file.MimeType, data),
		Size:       int64(len(data)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.nodeRepo.Create(ctx, node); err != nil {
		if delErr := s.blobs.Delete(ctx, handle); delErr != nil {
			s.metrics.BlobFailure("delete")
			s.logger.Warn("cleanup blob failed", "handle", handle, "error", delErr)
		}
		if conflict, ok := asConflict(err); ok {
			return nil, &dataroomSvc.UploadConflict{Name: name, Reason: nameConflictReason, ExistingID: conflict.ResourceID}, "conflict"
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, &dataroomSvc.UploadConflict{Name: name, Reason: nameConflictReason}, "conflict"
		}
		s.logger.Error("create file node failed", "name", name, "error", err)
		return nil, &dataroomSvc.UploadConflict{Name: name, Reason: "Failed to save file"}, "storage"
	}

	return node, nil, ""
}

// readUpload reads at most one byte past the size limit so oversized
// bodies with a wrong declared size are still caught
func readUpload(file dataroomSvc.UploadFile) ([]byte, error) {
	if file.Open == nil {
		return nil, fmt.Errorf("no content for %q", file.Name)
	}
	r, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(io.LimitReader(r, config.MaxFileSize+1))
}

// detectMimeType keeps the client's type unless it is missing or generic
func detectMimeType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(data).String()
}
