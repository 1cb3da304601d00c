package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gotest.tools/assert"

	"cellcommdb/config"
	"cellcommdb/services"
	"cellcommdb/storage"
)

const (
	testProteins = "uniprot,receptor\nP1,1\nP2,0\n"
	testComplex  = "uniprot,protein_1_id,protein_2_id,receptor,receptor_highlight,adhesion,other,transporter,secreted_highlight\n" +
		"C1,P1,P2,1,0,0,0,0,0\n" +
		"C2,P1,P9,1,0,0,0,0,0\n"
)

func newTestRouter(t *testing.T, apiKey string) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "protein.csv"), []byte(testProteins), 0o644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "complex.csv"), []byte(testComplex), 0o644))

	cfg := &config.Config{
		DBDriver:     "sqlite",
		SQLitePath:   filepath.Join(dir, "api.db"),
		DataDir:      dir,
		BatchSize:    50,
		APISecretKey: apiKey,
	}
	db, err := storage.OpenDB(cfg)
	assert.NilError(t, err)
	assert.NilError(t, storage.Migrate(db))

	collector := services.NewCollectService(cfg, db, nil, zap.NewNop(), services.NewMetrics(prometheus.NewRegistry()))
	return newRouter(cfg, collector, db, zap.NewNop()), dir
}

func do(router http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCollectionRoutes(t *testing.T) {
	router, _ := newTestRouter(t, "")

	w := do(router, http.MethodPost, "/collections/protein", "", nil)
	assert.Equal(t, w.Code, http.StatusOK)

	w = do(router, http.MethodPost, "/collections/complex", "", nil)
	assert.Equal(t, w.Code, http.StatusOK)
	var res services.LoadResult
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, res.RowsRead, 2)
	assert.Equal(t, res.Incomplete, 1)
	assert.Equal(t, res.Complexes, 1)
	assert.Equal(t, res.Compositions, 2)

	w = do(router, http.MethodGet, "/complexes", "", nil)
	assert.Equal(t, w.Code, http.StatusOK)
	var list []services.ComplexView
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, len(list), 1)
	assert.Equal(t, list[0].Uniprot, "C1")
	assert.DeepEqual(t, list[0].Proteins, []string{"P1", "P2"})

	w = do(router, http.MethodGet, "/complexes/C1", "", nil)
	assert.Equal(t, w.Code, http.StatusOK)

	w = do(router, http.MethodGet, "/complexes/C2", "", nil)
	assert.Equal(t, w.Code, http.StatusNotFound)
}

func TestCollectionRoutes_FileOverrideAndErrors(t *testing.T) {
	router, dir := newTestRouter(t, "")

	bad := filepath.Join(dir, "bad.csv")
	assert.NilError(t, os.WriteFile(bad, []byte("uniprot\nC1\n"), 0o644))

	body, _ := json.Marshal(map[string]string{"file": bad})
	w := do(router, http.MethodPost, "/collections/complex", string(body), nil)
	assert.Equal(t, w.Code, http.StatusUnprocessableEntity)
	assert.Assert(t, strings.Contains(w.Body.String(), "missing required columns"))

	w = do(router, http.MethodPost, "/collections/complex", "{not json", nil)
	assert.Equal(t, w.Code, http.StatusBadRequest)

	body, _ = json.Marshal(map[string]string{"file": filepath.Join(dir, "missing.csv")})
	w = do(router, http.MethodPost, "/collections/complex", string(body), nil)
	assert.Equal(t, w.Code, http.StatusInternalServerError)
}

func TestAPIKeyMiddleware(t *testing.T) {
	router, _ := newTestRouter(t, "s3cret")

	w := do(router, http.MethodGet, "/complexes", "", nil)
	assert.Equal(t, w.Code, http.StatusUnauthorized)

	w = do(router, http.MethodGet, "/complexes", "", map[string]string{"X-API-KEY": "s3cret"})
	assert.Equal(t, w.Code, http.StatusOK)

	w = do(router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, w.Code, http.StatusOK)
}
