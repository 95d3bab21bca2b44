package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/httputil"
)

func TestClientDefaultDataroom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/datarooms/default", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		httputil.RespondJSON(w, http.StatusOK, models.DataroomWithNodes{
			Dataroom: models.Dataroom{ID: "room-1", Name: "Data Room"},
			Nodes:    []models.Node{{ID: "n1", Name: "Legal", Type: models.NodeTypeFolder}},
		})
	}))
	defer server.Close()

	room, err := New(server.URL+"/", "secret-token").DefaultDataroom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "room-1", room.ID)
	require.Len(t, room.Nodes, 1)
	assert.Equal(t, "Legal", room.Nodes[0].Name)
}

func TestClientSharedSendsPathWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/share/tok", r.URL.Path)
		assert.Equal(t, "/Legal/Q1 docs", r.URL.Query().Get("path"))
		assert.Empty(t, r.Header.Get("Authorization"))
		httputil.RespondJSON(w, http.StatusOK, models.SharedView{
			Dataroom: models.SharedDataroom{ID: "room-1", Name: "Deal"},
		})
	}))
	defer server.Close()

	view, err := New(server.URL, "").Shared(context.Background(), "tok", "/Legal/Q1 docs")
	require.NoError(t, err)
	assert.Equal(t, "Deal", view.Dataroom.Name)
}

func TestClientProblemErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusNotFound, "share link not found")
	}))
	defer server.Close()

	_, err := New(server.URL, "").Shared(context.Background(), "missing", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "share link not found", apiErr.Detail)
}

func TestClientPlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, "").ListDatarooms(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Detail)
	assert.Equal(t, "502 Bad Gateway: upstream down", err.Error())
}
