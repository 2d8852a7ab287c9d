package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smarttransit/subway-routing/internal/models"
	"github.com/smarttransit/subway-routing/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminToken(t *testing.T, jwtService *jwt.Service, roles ...string) string {
	t.Helper()
	token, err := jwtService.GenerateAccessToken("ops", roles)
	require.NoError(t, err)
	return token
}

func TestAdminReload(t *testing.T) {
	jwtService := jwt.NewService(testSecret, time.Hour)
	subway := newSubwayService(t, fixturePath, false)
	router := setupRouter(subway, disabledSearchLog(), jwtService)

	w := perform(router, http.MethodPost, "/api/v1/admin/reload", adminToken(t, jwtService, jwt.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.DataStatus `json:"data"`
	}
	decode(t, w, &body)
	assert.True(t, body.Data.Loaded)
	assert.Equal(t, uint64(1), body.Data.Generation)
	assert.Equal(t, 3, body.Data.Routes)

	// a second reload advances the generation
	w = perform(router, http.MethodPost, "/api/v1/admin/reload", adminToken(t, jwtService, jwt.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.Equal(t, uint64(2), body.Data.Generation)
}

func TestAdminReload_FailureKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subway.yaml")
	content, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	jwtService := jwt.NewService(testSecret, time.Hour)
	subway := newSubwayService(t, path, true)
	router := setupRouter(subway, disabledSearchLog(), jwtService)

	require.NoError(t, os.Remove(path))

	w := perform(router, http.MethodPost, "/api/v1/admin/reload", adminToken(t, jwtService, jwt.RoleAdmin))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "LOAD_FAILED")

	w = perform(router, http.MethodGet, "/api/v1/routes", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(1), subway.Status().Generation)
}

func TestAdminStatus(t *testing.T) {
	jwtService := jwt.NewService(testSecret, time.Hour)
	router := setupRouter(newSubwayService(t, fixturePath, true), disabledSearchLog(), jwtService)

	w := perform(router, http.MethodGet, "/api/v1/admin/status", adminToken(t, jwtService, jwt.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.DataStatus `json:"data"`
	}
	decode(t, w, &body)
	assert.True(t, body.Data.Loaded)
	assert.Equal(t, 21, body.Data.Stations)
	assert.Equal(t, "file:"+fixturePath, body.Data.Source)
}

func TestAdminEndpoints_RequireAdmin(t *testing.T) {
	jwtService := jwt.NewService(testSecret, time.Hour)
	router := setupRouter(newSubwayService(t, fixturePath, true), disabledSearchLog(), jwtService)

	w := perform(router, http.MethodPost, "/api/v1/admin/reload", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(router, http.MethodPost, "/api/v1/admin/reload", adminToken(t, jwtService, "viewer"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/admin/status", adminToken(t, jwtService))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
