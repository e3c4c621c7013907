package bench

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, paramsFile string) *fiber.App {
	t.Helper()
	svc, _ := newService(t, 1)
	h := NewHandler(svc, paramsFile)

	app := fiber.New()
	h.RegisterRoutes(app)
	return app
}

func TestHandleRun(t *testing.T) {
	app := newTestApp(t, "")

	p := validParams()
	p.RowCount = 20
	body, err := json.Marshal(runRequest{ParameterSets: []ParameterSet{p}})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/bench/runs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Reports []Report `json:"reports"`
	}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Reports, 1)
	assert.Equal(t, "completed", payload.Reports[0].Status)
	assert.NotEmpty(t, payload.Reports[0].RunID)
}

func TestHandleRun_BadRequest(t *testing.T) {
	app := newTestApp(t, "")

	t.Run("Empty Body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/bench/runs", bytes.NewReader([]byte("{}")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Invalid Set", func(t *testing.T) {
		p := validParams()
		p.ChangeFraction = 5
		body, err := json.Marshal(runRequest{ParameterSets: []ParameterSet{p}})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/bench/runs", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yml")
	content := `
parameter_sets:
  - name: from-file
    row_count: 20
    source_type: parquet
    destination_type: delta
    update_strategy: Full Refresh
    change_fraction: 0.2
    new_fraction: 0.1
    delete_fraction: 0.1
    seed: 9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	app := newTestApp(t, path)

	resp, err := app.Test(httptest.NewRequest("POST", "/bench/runs/file", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleRunFile_MissingFile(t *testing.T) {
	app := newTestApp(t, "/nonexistent/params.yml")

	resp, err := app.Test(httptest.NewRequest("POST", "/bench/runs/file", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
