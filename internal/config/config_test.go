package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"eartalk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_RequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := config.LoadFile("")
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.AppPort)
	assert.Equal(t, 365*24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, 120*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, "/media", cfg.MediaURL)
	assert.Equal(t, 50*1024*1024, cfg.MaxUploadBytes)
	assert.True(t, cfg.UsesSQLite())
	assert.Equal(t, "eartalk.db", cfg.SQLitePath())
}

func TestLoadFile_EnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "SECRET_KEY=from-file\n" +
		"AI_REQUEST_URL=http://ai.internal:8080/\n" +
		"DATABASE_URL=postgres://app:pw@db:5432/eartalk\n" +
		"KAKAO_CLIENT_ID=kakao-id\n" +
		"ACCESS_TOKEN_EXPIRE_MINUTES=30\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("KAKAO_CLIENT_ID", "kakao-env")

	cfg, err := config.LoadFile(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.SecretKey)
	assert.Equal(t, "http://ai.internal:8080", cfg.AIRequestURL)
	assert.Equal(t, "kakao-env", cfg.Kakao.ClientID)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.False(t, cfg.UsesSQLite())
}

func TestValidate_MediaURL(t *testing.T) {
	cfg := &config.Config{SecretKey: "x", AccessTokenTTL: time.Minute, MediaDir: "m", MediaURL: "media"}
	assert.Error(t, cfg.Validate())

	cfg.MediaURL = "/media"
	assert.NoError(t, cfg.Validate())
}
