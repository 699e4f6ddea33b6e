package backup

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"flooring-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportTime = time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)

func fixtureSnapshot() model.Snapshot {
	return model.Snapshot{
		Reports: []model.Report{{ID: "1", Vessel: "CVN74", WeekStart: "2024-03-04"}},
		PTPs:    []model.PreTaskPlan{{ID: "p1", Location: "Deck 2"}},
		Foremen: []model.Foreman{{Name: "Joe", PIN: "1111"}},
	}
}

func TestParseTarget(t *testing.T) {
	tg, err := ParseTarget("s3://crew-backups/weekly/march/")
	require.NoError(t, err)
	assert.True(t, tg.IsS3())
	assert.Equal(t, "crew-backups", tg.Bucket)
	assert.Equal(t, "weekly/march", tg.Prefix)

	tg, err = ParseTarget("./out")
	require.NoError(t, err)
	assert.False(t, tg.IsS3())
	assert.Equal(t, "./out", tg.Dir)

	_, err = ParseTarget("s3:///nobucket")
	assert.Error(t, err)
	_, err = ParseTarget("  ")
	assert.Error(t, err)
}

func TestExport_LocalDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := Exporter{Now: func() time.Time { return exportTime }}

	loc, err := e.Export(context.Background(), fixtureSnapshot(), "Joe", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flooring-snapshot-20240304T150000Z.json"), loc)

	b, err := os.ReadFile(loc)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "Joe", doc.ExportedBy)
	assert.True(t, doc.ExportedAt.Equal(exportTime))
	require.Len(t, doc.Snapshot.Reports, 1)
	assert.Equal(t, "CVN74", doc.Snapshot.Reports[0].Vessel)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestExport_S3(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		gotURL string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method = r.Method
		gotURL = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))

	e := Exporter{
		S3: S3Options{
			Endpoint:        srv.URL,
			AccessKeyID:     "test",
			SecretAccessKey: "test",
			PathStyle:       true,
		},
		Now: func() time.Time { return exportTime },
	}
	loc, err := e.Export(context.Background(), fixtureSnapshot(), "Admin", "s3://crew-backups/weekly")
	require.NoError(t, err)
	assert.Equal(t, "s3://crew-backups/weekly/flooring-snapshot-20240304T150000Z.json", loc)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/crew-backups/weekly/flooring-snapshot-20240304T150000Z.json", gotURL)
	var doc Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "Admin", doc.ExportedBy)
	assert.Len(t, doc.Snapshot.Foremen, 1)
}

func TestExport_S3Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	}))
	defer srv.Close()
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	e := Exporter{S3: S3Options{Endpoint: srv.URL, AccessKeyID: "k", SecretAccessKey: "s", PathStyle: true}}
	_, err := e.Export(context.Background(), model.Snapshot{}, "", "s3://b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object")
}
