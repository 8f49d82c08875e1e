package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PENALTY_PER_DAY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.True(t, cfg.PenaltyPerDay.Equal(decimal.RequireFromString("5.00")))
}

func TestLoadPenaltyOverride(t *testing.T) {
	t.Setenv("PENALTY_PER_DAY", "7.50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.PenaltyPerDay.Equal(decimal.RequireFromString("7.50")))
}

func TestLoadRejectsBadPenalty(t *testing.T) {
	t.Setenv("PENALTY_PER_DAY", "cheap")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PENALTY_PER_DAY", "-1.00")
	_, err = Load()
	assert.Error(t, err)
}
