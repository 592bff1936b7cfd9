package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "secret")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "3100", env.HTTPPort)
	assert.Equal(t, "local", env.StorageEnv.Type)
	assert.Equal(t, 2, env.OverloadThreshold)
	assert.Equal(t, 24*time.Hour, env.TokenTTL)
	assert.Equal(t, slog.LevelDebug, env.SlogLevel())
}

func TestLoadEnvRequiresSecret(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "")

	_, err := LoadEnv()
	require.Error(t, err)
}

func TestLoadEnvRejectsBadValues(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "secret")

	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("TASKBOARD_STORAGE_TYPE", "mongo")
		_, err := LoadEnv()
		require.Error(t, err)
	})
	t.Run("s3 without bucket", func(t *testing.T) {
		t.Setenv("TASKBOARD_STORAGE_TYPE", "s3")
		_, err := LoadEnv()
		require.Error(t, err)
	})
	t.Run("zero threshold", func(t *testing.T) {
		t.Setenv("TASKBOARD_OVERLOAD_THRESHOLD", "0")
		_, err := LoadEnv()
		require.Error(t, err)
	})
}

func TestSlogLevel(t *testing.T) {
	env := &BaseEnv{LogLevel: "warn"}
	assert.Equal(t, slog.LevelWarn, env.SlogLevel())

	env.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelDebug, env.SlogLevel())
}
