package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	config "github.com/mwantia/screener/internal/config/server"
	"github.com/mwantia/screener/pkg/db/store"
	"github.com/mwantia/screener/pkg/explorer"
	"github.com/mwantia/screener/pkg/log"
	"github.com/mwantia/screener/pkg/record"
	"github.com/mwantia/screener/pkg/savedquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(newServer(t).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newServer(t *testing.T) *Server {
	t.Helper()

	logger := log.NewNopLoggerService()
	kv := store.NewMemoryStore()
	src := record.StaticSource{
		record.Of("S.No", 1, "Name", "Alpha", "P/E", 12),
		record.Of("S.No", 2, "Name", "Beta", "P/E", 30),
	}
	e := explorer.New(record.NewStore(logger), src, savedquery.NewRepository(kv, logger), nil, logger, explorer.Options{
		Now: func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	})

	return NewServer(config.HTTPServerConfig{Address: "127.0.0.1:0"}, e, kv, logger)
}

func metrics(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// brokenWriter fails every body write, like a client that hung up.
type brokenWriter struct {
	header  http.Header
	headers int
}

func (b *brokenWriter) Header() http.Header {
	return b.header
}

func (b *brokenWriter) WriteHeader(status int) {
	b.headers++
}

func (b *brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func call(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type viewData struct {
	Rows        []record.Record `json:"rows"`
	ResultCount int             `json:"resultCount"`
	TotalCount  int             `json:"totalCount"`
	Location    string          `json:"location"`
}

func rowNames(rows []record.Record) []string {
	result := make([]string, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.Get("Name").String())
	}
	return result
}

func TestViewBeforeOpen(t *testing.T) {
	ts := newTestServer(t)

	resp, env := call(t, ts, http.MethodGet, "/api/view", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, explorer.ErrLoading.Error(), env.Message)
}

func TestViewFilterAndSort(t *testing.T) {
	ts := newTestServer(t)

	resp, env := call(t, ts, http.MethodPut, "/api/view?Name=a", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decodeData[viewData](t, env)
	assert.Equal(t, []string{"Alpha", "Beta"}, rowNames(view.Rows))
	assert.Equal(t, "/query-result?Name=a", view.Location)

	resp, env = call(t, ts, http.MethodPut, "/api/view/filters/Name", filterRequest{Value: "al"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decodeData[viewData](t, env)
	assert.Equal(t, []string{"Alpha"}, rowNames(view.Rows))
	assert.Equal(t, 1, view.ResultCount)
	assert.Equal(t, 2, view.TotalCount)

	call(t, ts, http.MethodDelete, "/api/view/filters", nil)
	call(t, ts, http.MethodPost, "/api/view/sort/P%2FE", nil)
	_, env = call(t, ts, http.MethodPost, "/api/view/sort/P%2FE", nil)
	view = decodeData[viewData](t, env)
	assert.Equal(t, []string{"Beta", "Alpha"}, rowNames(view.Rows))
	assert.Equal(t, "/query-result", view.Location)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	call(t, ts, http.MethodPut, "/api/view", nil)

	resp, err := ts.Client().Get(ts.URL + "/api/view/export")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv;charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "stock-query-results-2025-06-01.csv")
	assert.Equal(t, "S.No,Name,P/E\n1,Alpha,12\n2,Beta,30", string(body))

	call(t, ts, http.MethodPut, "/api/view?Name=nobody", nil)
	resp, err = ts.Client().Get(ts.URL + "/api/view/export")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "No data to export", resp.Header.Get(noticeHeader))
}

func TestExportInterrupted(t *testing.T) {
	srv := newServer(t)
	require.NoError(t, srv.explorer.Open(context.Background(), "/query-result"))

	w := &brokenWriter{header: http.Header{}}
	srv.handleExport(w, httptest.NewRequest(http.MethodGet, "/api/view/export", nil))

	assert.Equal(t, 1, w.headers)
	assert.Equal(t, "text/csv;charset=utf-8", w.header.Get("Content-Type"))
	assert.Empty(t, w.header.Get(noticeHeader))
}

func TestSaveLoadDeleteQuery(t *testing.T) {
	ts := newTestServer(t)
	call(t, ts, http.MethodPut, "/api/view?Name=al", nil)

	_, env := call(t, ts, http.MethodGet, "/api/view/snapshot", nil)
	snapshot := decodeData[locationResponse](t, env)
	require.True(t, strings.HasPrefix(snapshot.Location, "/save-query?data="))

	_, env = call(t, ts, http.MethodGet, "/api/queries/draft?"+strings.TrimPrefix(snapshot.Location, "/save-query?"), nil)
	draft := decodeData[explorer.Draft](t, env)
	assert.Equal(t, "Query with Name", draft.Name)

	resp, env := call(t, ts, http.MethodPost, "/api/queries", explorer.SaveForm{Transfer: snapshot.Location, Name: " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = call(t, ts, http.MethodPost, "/api/queries", explorer.SaveForm{
		Transfer: snapshot.Location,
		Name:     draft.Name,
		Tags:     []string{"a1"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved := decodeData[savedquery.SavedQuery](t, env)
	assert.Equal(t, 1, saved.ResultCount)
	assert.Contains(t, metrics(t, ts), "screener_saved_queries 1\n")

	_, env = call(t, ts, http.MethodGet, "/api/queries", nil)
	assert.Len(t, decodeData[[]savedquery.SavedQuery](t, env), 1)

	call(t, ts, http.MethodDelete, "/api/view/filters", nil)
	resp, env = call(t, ts, http.MethodPost, "/api/queries/"+saved.ID+"/load", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/query-result?Name=al", decodeData[locationResponse](t, env).Location)

	resp, _ = call(t, ts, http.MethodDelete, "/api/queries/"+saved.ID, nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)

	resp, _ = call(t, ts, http.MethodDelete, "/api/queries/"+saved.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, metrics(t, ts), "screener_saved_queries 0\n")

	_, env = call(t, ts, http.MethodGet, "/api/queries/recent", nil)
	assert.Empty(t, decodeData[[]savedquery.SavedQuery](t, env))

	resp, _ = call(t, ts, http.MethodPost, "/api/queries/missing/load", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := call(t, ts, http.MethodPost, "/api/search", searchRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env := call(t, ts, http.MethodPost, "/api/search", searchRequest{Company: "Alpha"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/query-result?Name=Alpha", decodeData[locationResponse](t, env).Location)
}

func TestTagsHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	_, env := call(t, ts, http.MethodGet, "/api/tags", nil)
	assert.Len(t, decodeData[[]string](t, env), 30)

	resp, _ := call(t, ts, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, metrics(t, ts), `screener_http_requests_total{code="200",route="GET /api/tags"} 1`)
}

func TestServeShutsDown(t *testing.T) {
	logger := log.NewNopLoggerService()
	e := explorer.New(record.NewStore(logger), record.StaticSource{}, savedquery.NewRepository(store.NewMemoryStore(), logger), nil, logger, explorer.Options{})
	srv := NewServer(config.HTTPServerConfig{Address: "127.0.0.1:0"}, e, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, time.Second) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
