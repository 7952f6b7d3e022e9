package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/campus")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 168*time.Hour, cfg.JWTExpiration)
		assert.Equal(t, "IIT Kanpur", cfg.DefaultCampus)
		assert.False(t, cfg.PaymentsEnabled())
	})

	t.Run("missing secret fails", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/campus")
		t.Setenv("JWT_SECRET", "")
		require.NoError(t, os.Unsetenv("JWT_SECRET"))

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("lists and durations parse", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/campus")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")
		t.Setenv("JWT_EXPIRES_IN", "2h")
		t.Setenv("OMISE_PUBLIC_KEY", "pkey_test")
		t.Setenv("OMISE_SECRET_KEY", "skey_test")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
		assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
		assert.True(t, cfg.PaymentsEnabled())
	})
}
