package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/culturesphere-go/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 3001, FrontendURL: "http://localhost:5173"},
		Qloo: config.QlooConfig{
			BaseURL: "http://127.0.0.1:1",
			Timeout: time.Second,
		},
	}
}

func TestBuildWithoutKeysUsesFallback(t *testing.T) {
	c, err := Build(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, c.ModelManager)
	assert.False(t, c.Recommender.HasGenerator())
	assert.Contains(t, c.Profiles.Domains(), "music")

	srv, err := c.NewServer()
	require.NoError(t, err)
	assert.Equal(t, ":3001", srv.Addr)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations",
		strings.NewReader(`{"userInput":"jazz","domain":"music"}`))
	rec := httptest.NewRecorder()
	c.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Qloo API key not configured.")
}

func TestBuildRejectsNilInputs(t *testing.T) {
	_, err := Build(context.Background(), nil, zap.NewNop())
	assert.Error(t, err)

	_, err = Build(context.Background(), testConfig(), nil)
	assert.Error(t, err)
}
