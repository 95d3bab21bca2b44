package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
)

func seedRoom(t *testing.T, s *Store) *models.Dataroom {
	t.Helper()
	room := &models.Dataroom{UserID: "u1", Name: "Room"}
	require.NoError(t, s.Datarooms().Create(context.Background(), room))
	return room
}

func addNode(t *testing.T, s *Store, room *models.Dataroom, parent *models.Node, name string, typ models.NodeType) *models.Node {
	t.Helper()
	n := &models.Node{DataroomID: room.ID, Name: name, Type: typ}
	if parent != nil {
		n.ParentID = &parent.ID
	}
	require.NoError(t, s.Nodes().Create(context.Background(), n))
	return n
}

func TestNodeRepository_UniqueSiblingNames(t *testing.T) {
	s := NewStore()
	room := seedRoom(t, s)
	ctx := context.Background()

	docs := addNode(t, s, room, nil, "Docs", models.NodeTypeFolder)

	err := s.Nodes().Create(ctx, &models.Node{DataroomID: room.ID, Name: "docs", Type: models.NodeTypeFile})
	require.ErrorIs(t, err, domain.ErrConflict)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, docs.ID, conflict.ResourceID)
	assert.Equal(t, "folder", conflict.ResourceType)

	// same name one level down is fine
	addNode(t, s, room, docs, "Docs", models.NodeTypeFolder)

	found, err := s.Nodes().FindByParentAndName(ctx, room.ID, nil, "DOCS")
	require.NoError(t, err)
	assert.Equal(t, docs.ID, found.ID)
}

func TestNodeRepository_CreateChecksReferences(t *testing.T) {
	s := NewStore()
	room := seedRoom(t, s)
	ctx := context.Background()

	err := s.Nodes().Create(ctx, &models.Node{DataroomID: "nope", Name: "a", Type: models.NodeTypeFolder})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	missing := "missing"
	err = s.Nodes().Create(ctx, &models.Node{DataroomID: room.ID, ParentID: &missing, Name: "a", Type: models.NodeTypeFolder})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNodeRepository_ConcurrentCreatesKeepNamesUnique(t *testing.T) {
	s := NewStore()
	room := seedRoom(t, s)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Nodes().Create(context.Background(), &models.Node{DataroomID: room.ID, Name: "same.txt", Type: models.NodeTypeFile})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestNodeRepository_UpdateMovesIndexEntry(t *testing.T) {
	s := NewStore()
	room := seedRoom(t, s)
	ctx := context.Background()

	a := addNode(t, s, room, nil, "A", models.NodeTypeFolder)
	b := addNode(t, s, room, nil, "B", models.NodeTypeFolder)
	f := addNode(t, s, room, nil, "f.txt", models.NodeTypeFile)

	f.ParentID = &a.ID
	require.NoError(t, s.Nodes().UpdateParent(ctx, f))

	// old slot is free again
	addNode(t, s, room, nil, "f.txt", models.NodeTypeFile)

	b.Name = "a"
	assert.ErrorIs(t, s.Nodes().UpdateName(ctx, b), domain.ErrConflict)

	children, err := s.Nodes().ListChildren(ctx, room.ID, &a.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, f.ID, children[0].ID)
}

func TestNodeRepository_DeleteCascade(t *testing.T) {
	s := NewStore()
	room := seedRoom(t, s)
	ctx := context.Background()

	a := addNode(t, s, room, nil, "A", models.NodeTypeFolder)
	b := addNode(t, s, room, a, "B", models.NodeTypeFolder)
	addNode(t, s, room, b, "deep.txt", models.NodeTypeFile)
	keep := addNode(t, s, room, nil, "keep.txt", models.NodeTypeFile)

	closure, err := s.Nodes().ListDescendants(ctx, a.ID, room.ID)
	require.NoError(t, err)
	assert.Len(t, closure, 3)
	assert.Equal(t, a.ID, closure[0].ID)

	require.NoError(t, s.ShareLinks().Create(ctx, &models.ShareLink{Token: "t1", DataroomID: room.ID, SharedFolderID: &b.ID}))

	n, err := s.Nodes().DeleteCascade(ctx, []string{a.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	nodes, err := s.Nodes().ListByDataroom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, keep.ID, nodes[0].ID)

	_, err = s.ShareLinks().GetByToken(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrShareNotFound)

	// A's name is reusable
	addNode(t, s, room, nil, "A", models.NodeTypeFolder)
}

func TestNodeRepository_OwnerScopedReads(t *testing.T) {
	s := NewStore()
	room := seedRoom(t, s)
	ctx := context.Background()
	n := addNode(t, s, room, nil, "A", models.NodeTypeFolder)

	_, err := s.Nodes().GetByID(ctx, n.ID, "someone-else")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	nodes, err := s.Nodes().ListByIDs(ctx, []string{n.ID, "missing"}, "u1")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	nodes, err = s.Nodes().ListByIDs(ctx, []string{n.ID}, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestDataroomRepository(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first := seedRoom(t, s)
	second := &models.Dataroom{UserID: "u1", Name: "Second", CreatedAt: first.CreatedAt.Add(1)}
	require.NoError(t, s.Datarooms().Create(ctx, second))

	rooms, err := s.Datarooms().ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, first.ID, rooms[0].ID)

	addNode(t, s, first, nil, "A", models.NodeTypeFolder)
	require.NoError(t, s.ShareLinks().Create(ctx, &models.ShareLink{Token: "t1", DataroomID: first.ID}))

	assert.ErrorIs(t, s.Datarooms().Delete(ctx, first.ID, "u2"), domain.ErrNotFound)
	require.NoError(t, s.Datarooms().Delete(ctx, first.ID, "u1"))

	nodes, err := s.Nodes().ListByDataroom(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, nodes)
	links, err := s.ShareLinks().ListByDataroom(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestShareLinkRepository(t *testing.T) {
	s := NewStore()
	room := seedRoom(t, s)
	ctx := context.Background()

	require.NoError(t, s.ShareLinks().Create(ctx, &models.ShareLink{Token: "t1", DataroomID: room.ID}))
	assert.ErrorIs(t, s.ShareLinks().Create(ctx, &models.ShareLink{Token: "t1", DataroomID: room.ID}), domain.ErrConflict)
	assert.ErrorIs(t, s.ShareLinks().Create(ctx, &models.ShareLink{Token: "t2", DataroomID: "nope"}), domain.ErrNotFound)

	assert.ErrorIs(t, s.ShareLinks().Delete(ctx, "t1", "other-room"), domain.ErrNotFound)
	require.NoError(t, s.ShareLinks().Delete(ctx, "t1", room.ID))
	_, err := s.ShareLinks().GetByToken(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
