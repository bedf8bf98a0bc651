package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SellerPlaceholders(t *testing.T) {
	for _, key := range []string{"SELLER_TIN", "SELLER_NAME", "SELLER_BRANCH", "SELLER_CITY", "SELLER_STATE", "SELLER_COUNTRY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123456789012", cfg.Seller.TIN)
	assert.Equal(t, "Your Company Name", cfg.Seller.Name)
	assert.Equal(t, "000", cfg.Seller.Branch)
	assert.Equal(t, "Kuala Lumpur", cfg.Seller.City)
	assert.Equal(t, "WP Kuala Lumpur", cfg.Seller.State)
	assert.Equal(t, "MY", cfg.Seller.Country)
}

func TestLoad_ClientCredentialsAliases(t *testing.T) {
	t.Setenv("CLIENT_ID", "")
	t.Setenv("CLIENT_SECRET", "")
	t.Setenv("MYINVOIS_CLIENT_ID", "legacy-id")
	t.Setenv("MYINVOIS_CLIENT_SECRET", "legacy-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-id", cfg.MyInvois.ClientID)
	assert.Equal(t, "legacy-secret", cfg.MyInvois.ClientSecret)

	t.Setenv("CLIENT_ID", "primary-id")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "primary-id", cfg.MyInvois.ClientID)
}

func TestLoad_Timeouts(t *testing.T) {
	t.Setenv("MYINVOIS_SUBMIT_TIMEOUT", "20s")
	t.Setenv("MYINVOIS_AUTH_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.MyInvois.SubmitTimeout)
	assert.Equal(t, 10*time.Second, cfg.MyInvois.AuthTimeout)
}

func TestConfig_Helpers(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Env: "production"},
		Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"},
		Redis:    RedisConfig{Host: "cache", Port: "6380"},
	}

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDSN())
	assert.Equal(t, "cache:6380", cfg.GetRedisAddr())
	assert.False(t, cfg.ArchiveEnabled())
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://erp.example.com, ,http://localhost:5173 ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://erp.example.com", "http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, []string{"x"}, getEnvAsSlice("UNSET_SLICE_KEY_FOR_TEST", []string{"x"}))
}
