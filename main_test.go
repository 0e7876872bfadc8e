package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eartalk/internal/config"
)

type discardMailer struct{}

func (discardMailer) SendTemporaryPassword(context.Context, string, string) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppPort:            ":0",
		DatabaseURL:        "sqlite:" + filepath.Join(dir, "eartalk.db"),
		SecretKey:          "test_jwt_secret",
		AccessTokenTTL:     time.Hour,
		AIRequestURL:       "http://127.0.0.1:1",
		AIRequestTimeout:   time.Second,
		MediaDir:           filepath.Join(dir, "media"),
		MediaURL:           "/media",
		DefaultRefAudioDir: filepath.Join(dir, "ref"),
		MaxUploadBytes:     1 << 20,
		CORSOrigins:        "*",
	}
}

func setupTestApp(t *testing.T) (*config.Config, func(*http.Request) *http.Response) {
	t.Helper()
	cfg := testConfig(t)

	db, err := openDatabase(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	app := newApp(cfg, zerolog.Nop(), io.Discard, dependencies{
		db:        db,
		mailer:    discardMailer{},
		providers: oauthProviders(cfg),
	})
	return cfg, func(req *http.Request) *http.Response {
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}
}

func TestOpenDatabase_SQLite(t *testing.T) {
	cfg := testConfig(t)

	db, err := openDatabase(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("audios"))
	_, err = os.Stat(cfg.SQLitePath())
	assert.NoError(t, err)
}

func TestApp_Health(t *testing.T) {
	_, do := setupTestApp(t)

	resp := do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestApp_Metrics(t *testing.T) {
	_, do := setupTestApp(t)

	// Produce at least one sample for the submission counter.
	do(httptest.NewRequest(http.MethodPost, "/audio", nil))

	resp := do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "eartalk_audio_submissions_total")
}

func TestApp_StaticMedia(t *testing.T) {
	cfg, do := setupTestApp(t)

	dir := filepath.Join(cfg.MediaDir, "2024", "05", "01")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_processed.wav"), []byte("RIFFdata"), 0o644))

	resp := do(httptest.NewRequest(http.MethodGet, "/media/2024/05/01/a_processed.wav", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "RIFFdata", string(raw))
}

func TestApp_CORS(t *testing.T) {
	_, do := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := do(req)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestApp_UnreachableModelServer(t *testing.T) {
	cfg, do := setupTestApp(t)
	require.NoError(t, os.MkdirAll(cfg.DefaultRefAudioDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DefaultRefAudioDir, "REF_default.wav"), []byte("RIFF"), 0o644))

	req := httptest.NewRequest(http.MethodPost, "/audio", strings.NewReader("input_text=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := do(req)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "audio processing failed", body["message"])
}
