package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/imoveis/internal/pkg/config"
)

func setStorageEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IMOVEIS_STORAGE_ACCESS_KEY", "minio")
	t.Setenv("IMOVEIS_STORAGE_SECRET_KEY", "minio-secret")
	t.Setenv("IMOVEIS_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
}

func TestLoad_Defaults(t *testing.T) {
	setStorageEnv(t)

	cfg, err := config.Load("imoveis-test")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, config.DefaultDatabaseURL, cfg.Database.URL)
	assert.Equal(t, "shazam_imoveis", cfg.Storage.UploadFolder)
	assert.Equal(t, "imoveis", cfg.Storage.Bucket)
	assert.Equal(t, "imoveis-test", cfg.Telemetry.ServiceName)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "minio", cfg.Storage.AccessKey)
}

func TestLoad_DatabaseURLFromPlatformEnv(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db.render.com/prod")

	cfg, err := config.Load("imoveis-test")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db.render.com/prod", cfg.Database.URL)
}

func TestLoad_PrefixedDatabaseURLWins(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("IMOVEIS_DATABASE_URL", "postgres://prefixed/db")
	t.Setenv("DATABASE_URL", "postgres://bare/db")

	cfg, err := config.Load("imoveis-test")
	require.NoError(t, err)
	assert.Equal(t, "postgres://prefixed/db", cfg.Database.URL)
}

func TestLoad_EnvOverridesFolder(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("IMOVEIS_STORAGE_UPLOAD_FOLDER", "fotos")
	t.Setenv("IMOVEIS_SERVER_PORT", "9090")

	cfg, err := config.Load("imoveis-test")
	require.NoError(t, err)
	assert.Equal(t, "fotos", cfg.Storage.UploadFolder)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("IMOVEIS_STORAGE_ACCESS_KEY", "")
	t.Setenv("IMOVEIS_STORAGE_SECRET_KEY", "")

	_, err := config.Load("imoveis-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.access_key is required")
	assert.Contains(t, err.Error(), "storage.secret_key is required")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"server.port must be 1-65535",
		"database.url is required",
		"storage.endpoint is required",
		"storage.upload_folder is required",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
