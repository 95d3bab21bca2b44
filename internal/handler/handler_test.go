package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/auth"
	models "dataroom/internal/domain/models/dataroom"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/metrics"
	"dataroom/internal/middleware"
	"dataroom/internal/repository/memory"
	authSvc "dataroom/internal/service/auth"
	service "dataroom/internal/service/dataroom"
	"dataroom/internal/storage"
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	tokens map[string]string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	m := metrics.New()
	authorizer := authSvc.NewOwnerBasedAuthorizer(store.Datarooms(), store.Nodes())

	rooms := service.NewDataroomService(store.Datarooms(), store.Nodes(), blobs, m, logger)
	nodes := service.NewNodeService(store.Nodes(), blobs, store.TransactionManager(), authorizer, m, logger)
	files := service.NewFileService(store.Nodes(), blobs, m, logger)
	shares := service.NewShareService(store.ShareLinks(), store.Datarooms(), store.Nodes(), blobs,
		nil, authorizer, "http://app.test", m, logger)

	handlers := &Handlers{
		Datarooms: NewDataroomHandler(rooms, logger),
		Nodes:     NewNodeHandler(nodes, logger),
		Uploads:   NewUploadHandler(nodes, logger),
		Files:     NewFileHandler(files, shares, logger),
		Shares:    NewShareHandler(shares, logger),
	}
	mux := http.NewServeMux()
	handlers.Register(mux, func(pattern string, next http.Handler) http.Handler {
		return middleware.Instrument(m, pattern, next)
	})

	verifier, err := auth.NewSecretVerifier(strings.Repeat("s", 32), logger)
	require.NoError(t, err)

	server := httptest.NewServer(middleware.Auth(verifier, logger)(mux))
	t.Cleanup(server.Close)

	tokens := map[string]string{}
	for _, user := range []string{"alice", "bob"} {
		token, err := verifier.IssueToken(user, user+"@example.com", time.Hour)
		require.NoError(t, err)
		tokens[user] = token
	}

	return &apiClient{t: t, server: server, tokens: tokens}
}

func (c *apiClient) do(user, method, path string, body io.Reader, contentType string) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(c.t, err)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+c.tokens[user])
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *apiClient) json(user, method, path string, body any, out any) int {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(payload)
	}
	resp := c.do(user, method, path, r, "application/json")
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *apiClient) upload(user, dataroomID, parentID string, files map[string][]byte, order ...string) (int, dataroomSvc.UploadResult) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(c.t, mw.WriteField("dataroom_id", dataroomID))
	if parentID != "" {
		require.NoError(c.t, mw.WriteField("parent_id", parentID))
	}
	for _, name := range order {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(c.t, err)
		_, err = part.Write(files[name])
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	resp := c.do(user, http.MethodPost, "/api/files/upload", &buf, mw.FormDataContentType())
	var result dataroomSvc.UploadResult
	if resp.StatusCode == http.StatusOK {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&result))
	}
	return resp.StatusCode, result
}

func (c *apiClient) defaultRoom(user string) models.DataroomWithNodes {
	c.t.Helper()
	var room models.DataroomWithNodes
	require.Equal(c.t, http.StatusOK, c.json(user, http.MethodGet, "/api/datarooms/default", nil, &room))
	return room
}

func (c *apiClient) mkdir(user, dataroomID, name string, parentID *string) models.Node {
	c.t.Helper()
	var node models.Node
	status := c.json(user, http.MethodPost, "/api/folders", map[string]any{
		"dataroom_id": dataroomID, "name": name, "parent_id": parentID,
	}, &node)
	require.Equal(c.t, http.StatusCreated, status)
	return node
}

func TestAPI_RequiresAuth(t *testing.T) {
	api := newAPI(t)

	resp := api.do("", http.MethodGet, "/api/datarooms", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do("", http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_DefaultDataroom(t *testing.T) {
	api := newAPI(t)

	room := api.defaultRoom("alice")
	assert.Equal(t, models.DefaultDataroomName, room.Name)
	assert.Equal(t, "alice@example.com", room.OwnerEmail)
	assert.Equal(t, room.ID, api.defaultRoom("alice").ID)

	var rooms []models.Dataroom
	require.Equal(t, http.StatusOK, api.json("alice", http.MethodGet, "/api/datarooms", nil, &rooms))
	assert.Len(t, rooms, 1)

	// bob cannot see alice's room; same response as a missing room
	var problem map[string]any
	assert.Equal(t, http.StatusNotFound, api.json("bob", http.MethodGet, "/api/datarooms/"+room.ID, nil, &problem))
	assert.Equal(t, float64(404), problem["status"])
}

func TestAPI_FolderLifecycle(t *testing.T) {
	api := newAPI(t)
	room := api.defaultRoom("alice")

	finance := api.mkdir("alice", room.ID, "Finance", nil)
	q1 := api.mkdir("alice", room.ID, "Q1", &finance.ID)

	t.Run("duplicate returns 409 with existing id", func(t *testing.T) {
		var problem map[string]any
		status := api.json("alice", http.MethodPost, "/api/folders", map[string]any{
			"dataroom_id": room.ID, "name": "finance",
		}, &problem)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, finance.ID, problem["existing_id"])
	})

	t.Run("invalid name is 400", func(t *testing.T) {
		status := api.json("alice", http.MethodPost, "/api/folders", map[string]any{
			"dataroom_id": room.ID, "name": "a/b",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("rename", func(t *testing.T) {
		var node models.Node
		status := api.json("alice", http.MethodPatch, "/api/nodes/"+q1.ID, map[string]any{"name": "Q1 2024"}, &node)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Q1 2024", node.Name)
		assert.Equal(t, finance.ID, *node.ParentID)
	})

	t.Run("move to top level with null parent", func(t *testing.T) {
		var node models.Node
		status := api.json("alice", http.MethodPatch, "/api/nodes/"+q1.ID, map[string]any{"parent_id": nil}, &node)
		require.Equal(t, http.StatusOK, status)
		assert.Nil(t, node.ParentID)
	})

	t.Run("move into descendant is 400", func(t *testing.T) {
		api.json("alice", http.MethodPatch, "/api/nodes/"+q1.ID, map[string]any{"parent_id": finance.ID}, nil)
		status := api.json("alice", http.MethodPatch, "/api/nodes/"+finance.ID, map[string]any{"parent_id": q1.ID}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("resolve path", func(t *testing.T) {
		var view dataroomSvc.FolderView
		status := api.json("alice", http.MethodGet, "/api/datarooms/"+room.ID+"/resolve?path=finance/q1%25202024", nil, &view)
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, view.Folder)
		assert.Equal(t, q1.ID, view.Folder.ID)
		assert.Equal(t, "Data Room (alice@example.com)", view.Breadcrumbs[0].Name)
	})

	t.Run("tree", func(t *testing.T) {
		var tree models.TreeNode
		require.Equal(t, http.StatusOK, api.json("alice", http.MethodGet, "/api/datarooms/"+room.ID+"/tree", nil, &tree))
		require.Len(t, tree.Folders, 1)
		assert.Len(t, tree.Folders[0].Folders, 1)
	})

	t.Run("delete", func(t *testing.T) {
		resp := api.do("bob", http.MethodDelete, "/api/nodes/"+finance.ID, nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = api.do("alice", http.MethodDelete, "/api/nodes/"+finance.ID, nil, "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		var got models.DataroomWithNodes
		api.json("alice", http.MethodGet, "/api/datarooms/"+room.ID, nil, &got)
		assert.Empty(t, got.Nodes)
	})
}

func TestAPI_UploadAndDownload(t *testing.T) {
	api := newAPI(t)
	room := api.defaultRoom("alice")

	status, result := api.upload("alice", room.ID, "", map[string][]byte{
		"small.txt": []byte("hello"),
		"huge.bin":  make([]byte, 6_000_000),
		"page.html": []byte("<html><body>hi</body></html>"),
	}, "small.txt", "huge.bin", "page.html")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, result.Uploaded, 2)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "huge.bin", result.Conflicts[0].Name)
	assert.Contains(t, result.Conflicts[0].Reason, "5MB")

	small := result.Uploaded[0]

	t.Run("conflict on re-upload", func(t *testing.T) {
		status, result := api.upload("alice", room.ID, "", map[string][]byte{"small.txt": []byte("again")}, "small.txt")
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, result.Uploaded)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, small.ID, result.Conflicts[0].ExistingID)
		assert.Equal(t, "small (1).txt", result.Conflicts[0].SuggestedName)
	})

	t.Run("download", func(t *testing.T) {
		resp := api.do("alice", http.MethodGet, "/api/files/"+small.ID+"/download", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "hello", string(body))
		assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename=small.txt`, resp.Header.Get("Content-Disposition"))
	})

	t.Run("preview", func(t *testing.T) {
		resp := api.do("alice", http.MethodGet, "/api/files/"+small.ID+"/preview", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
		assert.Equal(t, `inline; filename=small.txt`, resp.Header.Get("Content-Disposition"))
		assert.Equal(t, "private, max-age=3600", resp.Header.Get("Cache-Control"))
	})

	t.Run("preview of html downloads instead", func(t *testing.T) {
		page := result.Uploaded[1]
		require.Equal(t, "page.html", page.Name)

		resp := api.do("alice", http.MethodGet, "/api/files/"+page.ID+"/preview", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename=page.html`, resp.Header.Get("Content-Disposition"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("other user", func(t *testing.T) {
		resp := api.do("bob", http.MethodGet, "/api/files/"+small.ID+"/download", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("upload into someone else's room", func(t *testing.T) {
		status, _ := api.upload("bob", room.ID, "", map[string][]byte{"x.txt": []byte("x")}, "x.txt")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("bulk delete", func(t *testing.T) {
		var problem map[string]any
		status := api.json("alice", http.MethodPost, "/api/nodes/bulk-delete", map[string]any{
			"node_ids": []string{small.ID, "missing-id"},
		}, &problem)
		assert.Equal(t, http.StatusNotFound, status)

		var out map[string]int
		status = api.json("alice", http.MethodPost, "/api/nodes/bulk-delete", map[string]any{
			"node_ids": []string{small.ID, result.Uploaded[1].ID},
		}, &out)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2, out["deleted_count"])
	})
}

func TestAPI_ShareLinks(t *testing.T) {
	api := newAPI(t)
	room := api.defaultRoom("alice")
	deals := api.mkdir("alice", room.ID, "Deals", nil)
	hr := api.mkdir("alice", room.ID, "HR", nil)
	api.mkdir("alice", room.ID, "2024", &deals.ID)

	_, inside := api.upload("alice", room.ID, deals.ID, map[string][]byte{"memo.txt": []byte("memo")}, "memo.txt")
	_, outside := api.upload("alice", room.ID, hr.ID, map[string][]byte{"pay.txt": []byte("pay")}, "pay.txt")

	var link dataroomSvc.ShareLinkResult
	status := api.json("alice", http.MethodPost, "/api/shares", map[string]any{
		"dataroom_id": room.ID, "folder_id": deals.ID,
	}, &link)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "http://app.test/share/"+link.Token, link.ShareURL)

	t.Run("public view", func(t *testing.T) {
		var view models.SharedView
		require.Equal(t, http.StatusOK, api.json("", http.MethodGet, "/api/share/"+link.Token, nil, &view))
		assert.Len(t, view.Dataroom.Nodes, 3)
		assert.Equal(t, "alice@example.com", view.Dataroom.Owner.Email)

		require.Equal(t, http.StatusOK, api.json("", http.MethodGet, "/api/share/"+link.Token+"?path=2024", nil, &view))
		assert.Len(t, view.Breadcrumbs, 2)

		assert.Equal(t, http.StatusNotFound, api.json("", http.MethodGet, "/api/share/"+link.Token+"?path=HR", nil, nil))
		assert.Equal(t, http.StatusNotFound, api.json("", http.MethodGet, "/api/share/unknown", nil, nil))
	})

	t.Run("files through the link", func(t *testing.T) {
		resp := api.do("", http.MethodGet, "/api/files/"+inside.Uploaded[0].ID+"/preview?token="+link.Token, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "memo", string(body))
		assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

		resp = api.do("", http.MethodGet, "/api/files/"+outside.Uploaded[0].ID+"/download?token="+link.Token, nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("list and revoke", func(t *testing.T) {
		var links []models.ShareLink
		require.Equal(t, http.StatusOK, api.json("alice", http.MethodGet, "/api/datarooms/"+room.ID+"/shares", nil, &links))
		assert.Len(t, links, 1)

		resp := api.do("bob", http.MethodDelete, "/api/shares/"+link.Token, nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = api.do("alice", http.MethodDelete, "/api/shares/"+link.Token, nil, "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		assert.Equal(t, http.StatusNotFound, api.json("", http.MethodGet, "/api/share/"+link.Token, nil, nil))
	})
}
