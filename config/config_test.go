package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
env:
  env: production
  serviceName: slynk
  log:
    level: info
http:
  port: 8080
postgres:
  master:
    host: localhost
    port: "5432"
    userName: slynk
  dbName: slynk
  sslMode: disable
auth:
  accessTokenTTL: 10m
secretKey:
  access: from-yaml
`

func TestLoadWithEnv_YAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfigYAML), 0o600))
	t.Chdir(dir)
	t.Setenv("SECRETKEY_ACCESS", "from-env")
	t.Setenv("POSTGRES_SSLMODE", "require")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "slynk", cfg.Env.ServiceName)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "from-env", cfg.SecretKey.Access)
	assert.Equal(t, "require", cfg.Postgres.SSLMode)
	assert.Equal(t, "slynk", cfg.Postgres.Master.UserName)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.True(t, cfg.IsProduction())
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml not found")
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Auth = &AuthConfig{AccessTokenTTL: 5 * time.Minute}

	applyDefaults(cfg)

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.OTPTTL)
	assert.Equal(t, 60*time.Second, cfg.Auth.ResendCooldown)
	assert.Equal(t, 5, cfg.Auth.MaxOTPAttempts)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "token", cfg.Cookie.AccessName)
	assert.Equal(t, "refreshToken", cfg.Cookie.RefreshName)
	assert.Equal(t, "/", cfg.Cookie.Path)
	assert.Equal(t, "pending-signup:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "Slynk", cfg.Mail.AppName)
	assert.False(t, cfg.IsProduction())
}

func TestBuildReplicasFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_REPLICAS_0_HOST", "replica-0")
	t.Setenv("POSTGRES_REPLICAS_0_PORT", "5433")
	t.Setenv("POSTGRES_REPLICAS_0_USERNAME", "reader")
	t.Setenv("POSTGRES_REPLICAS_1_HOST", "replica-1")

	replicas := buildReplicasFromEnv()

	require.Len(t, replicas, 1)
	assert.Equal(t, ConnectionConfig{Host: "replica-0", Port: "5433", UserName: "reader"}, replicas[0])
}
