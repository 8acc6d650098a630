package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickgpt/internal/bootstrap"
	"quickgpt/internal/config"
	"quickgpt/internal/platform/sqlite"
)

func TestHealthHandler_OptionalDependenciesDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{App: config.AppConfig{Name: "quickgpt", Env: "test"}}
	h := NewHealthHandler(&bootstrap.App{Config: cfg, DB: db, StartedAt: time.Now()})

	r := gin.New()
	r.GET("/healthz", h.Check)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success      bool                        `json:"success"`
		App          string                      `json:"app"`
		Dependencies map[string]dependencyStatus `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "quickgpt", body.App)
	assert.True(t, body.Dependencies["database"].OK)
	assert.True(t, body.Dependencies["redis"].Disabled)
	assert.True(t, body.Dependencies["rabbitmq"].Disabled)
}
