package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stackdock/internal/model"
)

func setupTestServer(t *testing.T, opts ...ServerOption) (*Server, *HTTPClient) {
	t.Helper()
	srv := NewServer(append([]ServerOption{WithServerLogger(discardLogger())}, opts...)...)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, NewHTTPClient(ts.URL+"/", ts.Client())
}

func TestHTTPClient_StackLifecycle(t *testing.T) {
	srv, client := setupTestServer(t)
	ctx := context.Background()

	st := model.Stack{ID: "s1", Name: "Reading", Cover: "#fff", CoverType: model.CoverColor, CreatedAt: 1, UpdatedAt: 1}
	got, err := client.CreateStack(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	st.Name = "Books"
	got, err = client.UpdateStack(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, "Books", got.Name)

	_, err = client.CreateCard(ctx, model.Card{ID: "c1", Name: "Dune", StackID: "s1"})
	require.NoError(t, err)

	require.NoError(t, client.DeleteStack(ctx, "s1"))

	snap := srv.Snapshot()
	assert.Empty(t, snap.Stacks)
	assert.Empty(t, snap.Cards, "deleting a stack cascades to its cards")
}

func TestHTTPClient_CardLifecycle(t *testing.T) {
	srv, client := setupTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2"} {
		_, err := client.CreateStack(ctx, model.Stack{ID: id, Name: id, CoverType: model.CoverColor})
		require.NoError(t, err)
	}

	c := model.Card{ID: "c1", Name: "Dune", StackID: "s1"}
	_, err := client.CreateCard(ctx, c)
	require.NoError(t, err)

	c.Description = "spice"
	got, err := client.UpdateCard(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "spice", got.Description)

	moved, err := client.MoveCard(ctx, "c1", "s2")
	require.NoError(t, err)
	assert.Equal(t, "s2", moved.StackID)
	assert.Equal(t, "spice", moved.Description)

	require.NoError(t, client.DeleteCard(ctx, "c1"))
	assert.Empty(t, srv.Snapshot().Cards)
}

func TestHTTPClient_Rejections(t *testing.T) {
	_, client := setupTestServer(t)
	ctx := context.Background()

	_, err := client.UpdateStack(ctx, model.Stack{ID: "missing", Name: "X"})
	require.Error(t, err)
	assert.Equal(t, "Stack not found.", err.Error())
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	_, err = client.CreateCard(ctx, model.Card{ID: "c1", Name: "X", StackID: "missing"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(err))

	_, err = client.CreateStack(ctx, model.Stack{ID: "s1", Name: "A"})
	require.NoError(t, err)
	_, err = client.CreateStack(ctx, model.Stack{ID: "s1", Name: "A"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusCode(err))

	_, err = client.MoveCard(ctx, "missing", "s1")
	require.Error(t, err)
	assert.True(t, IsError(err))
}

func TestHTTPClient_InjectedFaults(t *testing.T) {
	_, client := setupTestServer(t, WithFailureRate(1, 7))

	err := client.DeleteCard(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, "Failed to delete card. Please try again.", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
}

func TestHTTPClient_NetworkError(t *testing.T) {
	ts := httptest.NewServer(NewServer(WithServerLogger(discardLogger())))
	client := NewHTTPClient(ts.URL, ts.Client())
	ts.Close()

	err := client.DeleteStack(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, "Network error", err.Error())
}

func TestServer_MalformedBody(t *testing.T) {
	srv := NewServer(WithServerLogger(discardLogger()))

	req := httptest.NewRequest(http.MethodPost, "/stacks", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Malformed request body.")
}

func TestServer_WithRecords(t *testing.T) {
	snap := &model.Snapshot{
		Stacks: []model.Stack{{ID: "s1", Name: "Reading", Cover: "#fff", CoverType: model.CoverColor, CreatedAt: 1, UpdatedAt: 1}},
		Cards:  []model.Card{{ID: "c1", Name: "Dune", Cover: "a.jpg", StackID: "s1", CreatedAt: 1, UpdatedAt: 1}},
	}
	srv, client := setupTestServer(t, WithRecords(snap))
	ctx := context.Background()

	assert.True(t, srv.Snapshot().Equal(snap))

	c := snap.Cards[0]
	c.Name = "Dune Messiah"
	_, err := client.UpdateCard(ctx, c)
	require.NoError(t, err)
	require.NoError(t, client.DeleteStack(ctx, "s1"))
	assert.Empty(t, srv.Snapshot().Stacks)
}
