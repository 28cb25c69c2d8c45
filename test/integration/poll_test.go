package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

func TestCreateAndGetPoll(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	poll := app.createPoll(t, map[string]any{
		"reference":   "stack",
		"question":    "Favourite database?",
		"description": "be honest",
		"choices":     []map[string]string{{"choice": "Postgres", "code": "pg"}, {"choice": "MySQL", "code": "my"}},
	})
	require.NotZero(t, poll.ID)

	for _, ref := range []string{"stack", fmt.Sprint(poll.ID)} {
		resp := app.do(t, http.MethodGet, "/api/polls/"+ref, nil, "", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got domain.Poll
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, poll.ID, got.ID)
		assert.Equal(t, "be honest", got.Description)
		require.Len(t, got.Choices, 2)
		assert.Equal(t, "MySQL", got.Choices[0].Text)
	}

	resp := app.do(t, http.MethodPost, "/api/polls", map[string]any{"reference": "stack", "question": "Again?"}, createToken(t, app, true), "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/polls/stack/choices", map[string]string{"choice": "Another", "code": "pg"}, createToken(t, app, true), "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/polls/missing", nil, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateAndListPolls(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	app.createPoll(t, map[string]any{"reference": "one", "question": "First?"})
	app.createPoll(t, map[string]any{"reference": "two", "question": "Second?"})

	resp := app.do(t, http.MethodPut, "/api/polls/one", map[string]any{"question": "First, renamed?", "is_closed": true}, createToken(t, app, true), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/polls?q=renamed", nil, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var polls []domain.Poll
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&polls))
	require.Len(t, polls, 1)
	assert.Equal(t, "one", polls[0].Reference)
	assert.True(t, polls[0].IsClosed)

	resp = app.do(t, http.MethodGet, "/api/polls", nil, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	polls = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&polls))
	assert.Len(t, polls, 2)
}
