package dataroom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/metrics"
	"dataroom/internal/repository/memory"
	"dataroom/internal/service/auth"
)

// fakeBlobs is an in-memory BlobStore that records deletes
type fakeBlobs struct {
	mu       sync.Mutex
	next     int
	blobs    map[string][]byte
	deleted    []string
	failSave   bool
	failDelete bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: make(map[string][]byte)}
}

func (f *fakeBlobs) Save(ctx context.Context, data []byte, ownerID, dataroomID, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return "", fmt.Errorf("disk full")
	}
	f.next++
	key := fmt.Sprintf("%s/%s/%d-%s", ownerID, dataroomID, f.next, filename)
	f.blobs[key] = append([]byte(nil), data...)
	return key, nil
}

func (f *fakeBlobs) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.failDelete {
		return fmt.Errorf("bucket unavailable")
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeBlobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

func (f *fakeBlobs) deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

const (
	owner    = "user-1"
	stranger = "user-2"
)

type testEnv struct {
	store     *memory.Store
	blobs     *fakeBlobs
	metrics   *metrics.Metrics
	rooms     dataroomSvc.DataroomService
	nodes     dataroomSvc.NodeService
	files     dataroomSvc.FileService
	shares    dataroomSvc.ShareService
	dataroom  *models.Dataroom
	otherRoom *models.Dataroom
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	blobs := newFakeBlobs()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	authorizer := auth.NewOwnerBasedAuthorizer(store.Datarooms(), store.Nodes())

	env := &testEnv{
		store:   store,
		blobs:   blobs,
		metrics: m,
		rooms:   NewDataroomService(store.Datarooms(), store.Nodes(), blobs, m, logger),
		nodes:   NewNodeService(store.Nodes(), blobs, store.TransactionManager(), authorizer, m, logger),
		files:   NewFileService(store.Nodes(), blobs, m, logger),
		shares:  NewShareService(store.ShareLinks(), store.Datarooms(), store.Nodes(), blobs,
			nil, authorizer, "http://localhost:3000", m, logger),
	}

	ctx := context.Background()
	room, err := env.rooms.CreateDataroom(ctx, &dataroomSvc.CreateDataroomRequest{
		UserID: owner, OwnerEmail: "owner@example.com", Name: "Deal Room",
	})
	require.NoError(t, err)
	env.dataroom = room

	other, err := env.rooms.CreateDataroom(ctx, &dataroomSvc.CreateDataroomRequest{
		UserID: stranger, OwnerEmail: "other@example.com", Name: "Other",
	})
	require.NoError(t, err)
	env.otherRoom = other

	return env
}

// scrapeMetrics returns the Prometheus text exposition of the env's registry
func (e *testEnv) scrapeMetrics(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func (e *testEnv) mkdir(t *testing.T, name string, parent *models.Node) *models.Node {
	t.Helper()
	req := &dataroomSvc.CreateFolderRequest{UserID: owner, DataroomID: e.dataroom.ID, Name: name}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	n, err := e.nodes.CreateFolder(context.Background(), req)
	require.NoError(t, err)
	return n
}

func (e *testEnv) upload(t *testing.T, parent *models.Node, files ...dataroomSvc.UploadFile) *dataroomSvc.UploadResult {
	t.Helper()
	req := &dataroomSvc.UploadRequest{UserID: owner, DataroomID: e.dataroom.ID, Files: files}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	res, err := e.nodes.UploadFiles(context.Background(), req)
	require.NoError(t, err)
	return res
}

func (e *testEnv) uploadOne(t *testing.T, name string, parent *models.Node) *models.Node {
	t.Helper()
	res := e.upload(t, parent, textFile(name, "content of "+name))
	require.Len(t, res.Uploaded, 1, "conflicts: %+v", res.Conflicts)
	return &res.Uploaded[0]
}

func textFile(name, content string) dataroomSvc.UploadFile {
	return dataroomSvc.UploadFile{
		Name:     name,
		MimeType: "text/plain",
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func sizedFile(name string, size int) dataroomSvc.UploadFile {
	return dataroomSvc.UploadFile{
		Name:     name,
		MimeType: "application/pdf",
		Size:     int64(size),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(make([]byte, size))), nil
		},
	}
}

func (e *testEnv) allNodes(t *testing.T) []models.Node {
	t.Helper()
	nodes, err := e.store.Nodes().ListByDataroom(context.Background(), e.dataroom.ID)
	require.NoError(t, err)
	return nodes
}

func nodeIDs(nodes []models.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
