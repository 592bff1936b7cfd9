package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
)

func TestParseItems(t *testing.T) {
	got := parseItems([]string{"[x] draft", "[ ] review", "ship"})
	assert.Equal(t, []task.ChecklistItemInput{
		{Text: "draft", Completed: true},
		{Text: "review"},
		{Text: "ship"},
	}, got)
}

func TestBearerTransport(t *testing.T) {
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := newClient(srv.URL+"/", "tok")
	res, err := c.httpClient.Get(srv.URL)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "Bearer tok", header)
	assert.Equal(t, srv.URL, c.baseURL)
}
