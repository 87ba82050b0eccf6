package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg := InitConfig("")

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "", cfg.Redis.Host)
	assert.Equal(t, "fleet.location.update", cfg.NATS.Subject)
	assert.Equal(t, 16, cfg.Tracking.SendBuffer)
	assert.Equal(t, models.PolicyCoalesce, cfg.Tracking.SlowConsumerPolicy)
	assert.Equal(t, 15*time.Minute, cfg.Tracking.StalenessWindow)
	assert.Equal(t, 30*time.Second, cfg.Tracking.EvictionInterval)
	assert.True(t, cfg.Tracking.ReportValidationErrors)
	assert.False(t, cfg.Tracking.AuthEnabled)
	assert.Equal(t, uint(12), cfg.Tracking.GeohashPrecision)
}

func TestInitConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("TRACKING_SEND_BUFFER", "4")
	t.Setenv("TRACKING_SLOW_CONSUMER_POLICY", "DISCONNECT")
	t.Setenv("TRACKING_STALENESS_WINDOW", "0")
	t.Setenv("TRACKING_PONG_WAIT", "10s")
	t.Setenv("TRACKING_PING_PERIOD", "20s")

	cfg := InitConfig("")

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "redis.internal", cfg.Redis.Host)
	assert.Equal(t, 4, cfg.Tracking.SendBuffer)
	assert.Equal(t, models.PolicyDisconnect, cfg.Tracking.SlowConsumerPolicy)
	assert.Equal(t, time.Duration(0), cfg.Tracking.StalenessWindow)
	assert.Equal(t, 9*time.Second, cfg.Tracking.PingPeriod)
}

func TestInitConfig_LoadsDotenvForLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracking.env")
	require.NoError(t, os.WriteFile(path, []byte("NATS_URL=nats://127.0.0.1:4222\n"), 0o600))

	t.Setenv("APP_ENV", "local")
	t.Setenv("NATS_URL", "")
	require.NoError(t, os.Unsetenv("NATS_URL"))

	cfg := InitConfig(path)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, models.PolicyCoalesce, parsePolicy("coalesce"))
	assert.Equal(t, models.PolicyDisconnect, parsePolicy(" disconnect "))
	assert.Equal(t, models.PolicyCoalesce, parsePolicy("drop-everything"))
}

func TestNormalize(t *testing.T) {
	cfg := &models.Config{}
	cfg.Tracking.PongWait = time.Minute
	cfg.Tracking.PingPeriod = time.Minute

	normalize(cfg)

	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 1, cfg.Tracking.SendBuffer)
	assert.Equal(t, 54*time.Second, cfg.Tracking.PingPeriod)
	assert.Equal(t, 30*time.Second, cfg.Tracking.EvictionInterval)
	assert.Equal(t, 1, cfg.Tracking.MirrorBuffer)
	assert.Equal(t, uint(12), cfg.Tracking.GeohashPrecision)
}
