package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flooring-cli/internal/remote"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*httptest.Server, *remote.Memory) {
	t.Helper()
	mem := remote.NewMemory()
	srv := httptest.NewServer(NewHandler(mem, nil, prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv, mem
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(b)
}

func post(t *testing.T, url, body string) remote.Response {
	t.Helper()
	res, err := http.Post(url, "text/plain;charset=utf-8", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var resp remote.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	return resp
}

func TestPing(t *testing.T) {
	srv, _ := newServer(t)
	code, body := get(t, srv.URL+"/exec?action=ping")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","message":"`+PingMessage+`"}`, body)
}

func TestFetchDefaultsToReportsAndEmptyArray(t *testing.T) {
	srv, _ := newServer(t)
	_, body := get(t, srv.URL+"/")
	assert.JSONEq(t, `[]`, body)

	_, body = get(t, srv.URL+"/?action=fetchForemen")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Admin", rows[0]["Name"])
}

func TestPostLifecycle(t *testing.T) {
	srv, mem := newServer(t)

	resp := post(t, srv.URL, `{"action":"insert","data":{"id":"1700000000000","vessel":"CVN74","weekStart":"2024-03-04","compartments":[]}}`)
	require.True(t, resp.Success, resp.Error)

	resp = post(t, srv.URL, `{"action":"delete","data":{"id":"1700000000000"}}`)
	require.True(t, resp.Success, resp.Error)

	_, body := get(t, srv.URL+"/?action=fetchDeleted")
	assert.Contains(t, body, "1700000000000")

	resp = post(t, srv.URL, `{"action":"delete","data":{"id":"1700000000000"}}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "ID 1700000000000 not found", resp.Error)

	resp = post(t, srv.URL, `{"action":"restore","data":{"id":1700000000000}}`)
	require.True(t, resp.Success, resp.Error)

	reports, err := mem.Rows(t.Context(), remote.ActionFetchReports)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestPostErrors(t *testing.T) {
	srv, mem := newServer(t)

	assert.Equal(t, "Invalid JSON", post(t, srv.URL, `{not json`).Error)
	assert.Equal(t, "Unknown action: explode", post(t, srv.URL, `{"action":"explode","data":{}}`).Error)

	mem.FailOn(remote.ActionInsertAuditLog, errors.New("quota exceeded"))
	assert.Equal(t, "quota exceeded", post(t, srv.URL, `{"action":"insertAuditLog","data":{"id":"x"}}`).Error)

	mem.FailOn(remote.ActionFetchPTPs, errors.New("sheet locked"))
	_, body := get(t, srv.URL+"/?action=fetchPTPs")
	assert.JSONEq(t, `{"error":"sheet locked"}`, body)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t)
	get(t, srv.URL+"/?action=ping")
	post(t, srv.URL, `{"action":"deleteForeman","data":{"name":"Nobody"}}`)

	code, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `flooring_remote_calls_total{action="ping",status="ok"} 1`)
	assert.Contains(t, body, `flooring_remote_calls_total{action="deleteForeman",status="error"} 1`)

	code, _ = get(t, srv.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, code)
}
