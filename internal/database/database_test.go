package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/status-plane/internal/config"
	"github.com/statuswatch/status-plane/internal/database"
	"github.com/statuswatch/status-plane/internal/health"
)

func unreachableConfig() config.Database {
	// Port 1 is never listening, so the ping fails fast with a refused
	// connection instead of waiting out the timeout.
	return config.Database{
		Enabled:            true,
		Host:               "127.0.0.1",
		Port:               1,
		User:               "postgres",
		Database:           "postgres",
		SSLMode:            "disable",
		PingTimeoutSeconds: 1,
	}
}

func TestConnect(t *testing.T) {
	t.Run("pool creation is lazy", func(t *testing.T) {
		db, err := database.Connect(context.Background(), unreachableConfig())
		require.NoError(t, err)
		defer db.Close()
	})

	t.Run("invalid conn string fails", func(t *testing.T) {
		cfg := unreachableConfig()
		cfg.SSLMode = "no such mode"
		_, err := database.Connect(context.Background(), cfg)
		assert.ErrorContains(t, err, "failed to parse database config")
	})
}

func TestDatabaseCheck(t *testing.T) {
	db, err := database.Connect(context.Background(), unreachableConfig())
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "database", db.Name())

	result := db.Check(context.Background())
	assert.Equal(t, "database", result.Name)
	assert.Equal(t, health.StatusDown, result.Status)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, "127.0.0.1", result.Details["host"])
	assert.Equal(t, "postgres", result.Details["database"])
}
