package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/gdsstream/pkg/catalog"
	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
)

const testAPIKey = "test-key"

var testTime = time.Date(2022, time.February, 3, 4, 5, 6, 0, time.UTC)

// setupTestServer creates a router backed by a catalog in a temporary directory
func setupTestServer(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	return NewRouter(cat, ServerConfig{APIKey: testAPIKey}, prometheus.NewRegistry())
}

func libraryStream(t *testing.T, names ...string) []byte {
	t.Helper()
	lib := schema.NewLibrary("API.DB", schema.DefaultUserUnits, schema.DefaultDBUnits, testTime)
	for _, name := range names {
		str := schema.NewStructure(name, testTime)
		schema.AddElement(str, schema.NewBoundary(1, 0, []int32{0, 0, 0, 5, 5, 5, 5, 0, 0, 0}))
		schema.AddElement(str, schema.NewText(2, 0, 1, 1, name))
		schema.AddStructure(lib, str)
	}
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, grammar.Serialize(w, lib))
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) APIResponse {
	t.Helper()
	resp := APIResponse{Data: data}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	h := setupTestServer(t)

	w := do(t, h, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var data map[string]string
	resp := decode(t, w, &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", data["status"])

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_ImportListGet(t *testing.T) {
	h := setupTestServer(t)

	w := do(t, h, "POST", "/api/v1/import", libraryStream(t, "inv", "nand"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res catalog.ImportResult
	decode(t, w, &res)
	assert.Equal(t, "API.DB", res.Library)
	assert.Equal(t, 2, res.Structures)

	w = do(t, h, "GET", "/api/v1/structures", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []catalog.Entry
	decode(t, w, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "inv", entries[0].Name)
	assert.Equal(t, "nand", entries[1].Name)

	w = do(t, h, "GET", "/api/v1/structures/nand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dump StructureDump
	decode(t, w, &dump)
	assert.Equal(t, "nand", dump.Name)
	assert.Equal(t, 2, dump.Elements)
	assert.Equal(t, entries[1].ID, dump.ID)
	require.NotEmpty(t, dump.Records)
	assert.Equal(t, "BGNSTR", dump.Records[0].Type)
	assert.Equal(t, int64(0), dump.Records[0].Offset)
	assert.Equal(t, "STRNAME", dump.Records[1].Type)
	assert.Equal(t, int64(28), dump.Records[1].Offset)
	assert.Equal(t, `STRNAME "nand"`, dump.Records[1].Value)
	assert.Equal(t, "ENDSTR", dump.Records[len(dump.Records)-1].Type)
}

func TestServer_DownloadStructure(t *testing.T) {
	h := setupTestServer(t)
	require.Equal(t, http.StatusOK, do(t, h, "POST", "/api/v1/import", libraryStream(t, "a", "b")).Code)

	w := do(t, h, "GET", "/api/v1/structures/b/gds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, libraryStream(t, "b"), w.Body.Bytes())

	lib, err := grammar.Parse(codec.NewReader(w.Body), schema.Library)
	require.NoError(t, err)
	assert.Equal(t, "API.DB", schema.Name(lib))
	require.Len(t, schema.Structures(lib), 1)

	w = do(t, h, "GET", "/api/v1/structures/zzz/gds", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_DeleteStructure(t *testing.T) {
	h := setupTestServer(t)
	require.Equal(t, http.StatusOK, do(t, h, "POST", "/api/v1/import", libraryStream(t, "a")).Code)

	w := do(t, h, "DELETE", "/api/v1/structures/a", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "DELETE", "/api/v1/structures/a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w, nil)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "structure not found")

	w = do(t, h, "GET", "/api/v1/structures/a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ImportRejectsBadStreams(t *testing.T) {
	h := setupTestServer(t)

	tests := []struct {
		name string
		body []byte
	}{
		{"empty body", []byte{}},
		{"not a library", []byte{0x00, 0x04, 0x04, 0x00}},
		{"negative length", []byte{0x00, 0x02, 0x03, 0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/api/v1/import", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestServer_FailedImportChangesNothing(t *testing.T) {
	h := setupTestServer(t)
	require.Equal(t, http.StatusOK, do(t, h, "POST", "/api/v1/import", libraryStream(t, "keep")).Code)

	bad := libraryStream(t, "leaked", "second")
	cut := bytes.Index(bad, []byte("second")) + len("second")
	w := do(t, h, "POST", "/api/v1/import", bad[:cut])
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = do(t, h, "GET", "/api/v1/structures", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []catalog.Entry
	decode(t, w, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].Name)

	w = do(t, h, "GET", "/api/v1/structures/leaked", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, "GET", "/api/v1/structures/keep/gds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, libraryStream(t, "keep"), w.Body.Bytes())
}

func TestServer_ImportTooLarge(t *testing.T) {
	cat, err := catalog.Open(t.TempDir())
	require.NoError(t, err)
	defer cat.Close()
	h := NewRouter(cat, ServerConfig{APIKey: testAPIKey, MaxImportBytes: 10}, prometheus.NewRegistry())

	w := do(t, h, "POST", "/api/v1/import", libraryStream(t, "a"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	h := setupTestServer(t)
	require.Equal(t, http.StatusOK, do(t, h, "POST", "/api/v1/import", libraryStream(t, "a")).Code)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `gdsii_records_total{op="read",type="BGNSTR"} 1`)
	assert.Contains(t, body, `gdsii_catalog_operations_total{operation="import",status="success"} 1`)
	assert.Contains(t, body, `gdsii_http_requests_total{endpoint="/api/v1/import",method="POST",status_code="200"} 1`)
}

func TestServer_Swagger(t *testing.T) {
	h := setupTestServer(t)

	req := httptest.NewRequest("GET", "/swagger/swagger.json", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Contains(t, doc["paths"], "/structures/{name}/gds")

	req = httptest.NewRequest("GET", "/swagger/index.html", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
