package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-simpler.org/env"
	"go.uber.org/zap"

	"quote-api/internal/config"
	"quote-api/internal/httpapi"
)

func loadConfig(t *testing.T, vars env.Map) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(vars)
	require.NoError(t, err)
	return cfg
}

func TestBuild_MemoryBackend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := loadConfig(t, env.Map{"APP_ENV": "test", "BURST_RPS": "100", "METRICS_ENABLED": "true"})
	app, err := build(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.close()

	assert.NotNil(t, app.deps.Burst)
	assert.NotNil(t, app.deps.Metrics)

	api, err := httpapi.New(app.deps)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	w := httptest.NewRecorder()
	api.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	assert.EqualValues(t, 1, app.local.Total().Allowed)
}

func TestBuild_QuotesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.txt")
	require.NoError(t, os.WriteFile(path, []byte("only one\n"), 0o600))

	cfg := loadConfig(t, env.Map{"QUOTES_FILE": path})
	app, err := build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, app.deps.Quotes.All())
}

func TestBuild_MissingQuotesFile(t *testing.T) {
	cfg := loadConfig(t, env.Map{"QUOTES_FILE": filepath.Join(t.TempDir(), "missing.txt")})
	_, err := build(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuild_SecureCookieFlag(t *testing.T) {
	cfg := loadConfig(t, env.Map{"SESSION_SECURE_COOKIE": "true", "SESSION_SECRET": "0123456789abcdef"})
	app, err := build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, app.deps.Sessions.Options.Secure)
}

func TestVersionCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "quote-api dev"), out.String())
}

func TestRootCommand_HasPortFlag(t *testing.T) {
	root := newRootCommand()
	assert.NotNil(t, root.Flags().Lookup("port"))

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("port"))
}
