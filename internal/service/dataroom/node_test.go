package dataroom

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
)

func strPtr(s string) *string { return &s }

func TestCreateFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("top level", func(t *testing.T) {
		f, err := env.nodes.CreateFolder(ctx, &dataroomSvc.CreateFolderRequest{
			UserID: owner, DataroomID: env.dataroom.ID, Name: "  Finance  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "Finance", f.Name)
		assert.Nil(t, f.ParentID)
		assert.True(t, f.IsFolder())
		assert.NotEmpty(t, f.ID)
	})

	t.Run("root alias is top level", func(t *testing.T) {
		f, err := env.nodes.CreateFolder(ctx, &dataroomSvc.CreateFolderRequest{
			UserID: owner, DataroomID: env.dataroom.ID, Name: "Legal", ParentID: strPtr(models.RootID),
		})
		require.NoError(t, err)
		assert.Nil(t, f.ParentID)
	})

	t.Run("duplicate name ignores case", func(t *testing.T) {
		_, err := env.nodes.CreateFolder(ctx, &dataroomSvc.CreateFolderRequest{
			UserID: owner, DataroomID: env.dataroom.ID, Name: "FINANCE",
		})
		require.ErrorIs(t, err, domain.ErrConflict)
		conflict, ok := asConflict(err)
		require.True(t, ok)
		assert.Equal(t, "folder", conflict.ResourceType)
		assert.NotEmpty(t, conflict.ResourceID)
	})

	t.Run("same name in another folder", func(t *testing.T) {
		parent := env.mkdir(t, "Archive", nil)
		f := env.mkdir(t, "Finance", parent)
		assert.Equal(t, parent.ID, *f.ParentID)
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"", "   ", "a/b", `a\b`, ".", "..", strings.Repeat("x", 256)} {
			_, err := env.nodes.CreateFolder(ctx, &dataroomSvc.CreateFolderRequest{
				UserID: owner, DataroomID: env.dataroom.ID, Name: name,
			})
			assert.ErrorIs(t, err, domain.ErrValidation, "name %q", name)
		}
	})

	t.Run("parent must be a folder", func(t *testing.T) {
		file := env.uploadOne(t, "notes.txt", nil)
		_, err := env.nodes.CreateFolder(ctx, &dataroomSvc.CreateFolderRequest{
			UserID: owner, DataroomID: env.dataroom.ID, Name: "Inside", ParentID: &file.ID,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := env.nodes.CreateFolder(ctx, &dataroomSvc.CreateFolderRequest{
			UserID: owner, DataroomID: env.dataroom.ID, Name: "Inside", ParentID: strPtr("missing-id"),
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("other user's data room", func(t *testing.T) {
		_, err := env.nodes.CreateFolder(ctx, &dataroomSvc.CreateFolderRequest{
			UserID: owner, DataroomID: env.otherRoom.ID, Name: "Sneaky",
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestRenameNode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	docs := env.mkdir(t, "Docs", nil)
	env.mkdir(t, "Other", nil)

	t.Run("rename to own name is allowed", func(t *testing.T) {
		n, err := env.nodes.UpdateNode(ctx, docs.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Name: strPtr("Docs")})
		require.NoError(t, err)
		assert.Equal(t, "Docs", n.Name)
	})

	t.Run("case-only rename of self is allowed", func(t *testing.T) {
		n, err := env.nodes.UpdateNode(ctx, docs.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Name: strPtr("DOCS")})
		require.NoError(t, err)
		assert.Equal(t, "DOCS", n.Name)
	})

	t.Run("collision with sibling", func(t *testing.T) {
		_, err := env.nodes.UpdateNode(ctx, docs.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Name: strPtr("other")})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := env.nodes.UpdateNode(ctx, docs.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Name: strPtr("a/b")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("nothing to change", func(t *testing.T) {
		_, err := env.nodes.UpdateNode(ctx, docs.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("stranger cannot rename", func(t *testing.T) {
		_, err := env.nodes.UpdateNode(ctx, docs.ID, &dataroomSvc.UpdateNodeRequest{UserID: stranger, Name: strPtr("Mine")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rename frees the old name", func(t *testing.T) {
		_, err := env.nodes.UpdateNode(ctx, docs.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Name: strPtr("Documents")})
		require.NoError(t, err)
		env.mkdir(t, "Docs", nil)
	})
}

func TestMoveNode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.mkdir(t, "A", nil)
	b := env.mkdir(t, "B", a)
	c := env.mkdir(t, "C", b)
	report := env.uploadOne(t, "report.pdf", a)

	t.Run("into own descendant is rejected", func(t *testing.T) {
		_, err := env.nodes.UpdateNode(ctx, a.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Move: true, ParentID: &c.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("into itself is rejected", func(t *testing.T) {
		_, err := env.nodes.UpdateNode(ctx, a.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Move: true, ParentID: &a.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("into a file is rejected", func(t *testing.T) {
		_, err := env.nodes.UpdateNode(ctx, c.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Move: true, ParentID: &report.ID})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("to the top level", func(t *testing.T) {
		n, err := env.nodes.UpdateNode(ctx, c.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Move: true})
		require.NoError(t, err)
		assert.Nil(t, n.ParentID)
	})

	t.Run("move with rename", func(t *testing.T) {
		n, err := env.nodes.UpdateNode(ctx, report.ID, &dataroomSvc.UpdateNodeRequest{
			UserID: owner, Move: true, ParentID: &b.ID, Name: strPtr("final.pdf"),
		})
		require.NoError(t, err)
		assert.Equal(t, "final.pdf", n.Name)
		assert.Equal(t, b.ID, *n.ParentID)
	})

	t.Run("collision at destination", func(t *testing.T) {
		env.mkdir(t, "C", a)
		_, err := env.nodes.UpdateNode(ctx, c.ID, &dataroomSvc.UpdateNodeRequest{UserID: owner, Move: true, ParentID: &a.ID})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}
