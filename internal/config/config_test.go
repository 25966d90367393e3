package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsWithoutConfigFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(1_000_000), cfg.Motion.Threshold)
	assert.Equal(t, uint8(15), cfg.Motion.DiffThreshold)
	assert.Equal(t, 30, cfg.Motion.WindowCapacity)
	assert.Equal(t, 5*time.Second, cfg.Motion.EvalInterval)
	assert.Equal(t, 5*time.Second, cfg.Motion.DebounceInterval)
	assert.Equal(t, 4*time.Minute, cfg.Motion.IdleTimeout)
	assert.Equal(t, 30, cfg.Motion.GraceEvaluations)

	assert.Equal(t, 5045, cfg.Kinect.Port)
	assert.Equal(t, "kinect/motion", cfg.MQTT.Topic)
	assert.Equal(t, 5, cfg.MQTT.ConnectAttempts)
	assert.Equal(t, -15.0, cfg.Tilt.InitialAngle)
	assert.False(t, cfg.Redis.Enabled)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := chdirTemp(t)

	content := `{
		"motion": {
			"threshold": 500000,
			"graceEvaluations": 10
		},
		"mqtt": {
			"broker": "broker.example",
			"topic": "casa/kinect"
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(500_000), cfg.Motion.Threshold)
	assert.Equal(t, 10, cfg.Motion.GraceEvaluations)
	assert.Equal(t, "broker.example", cfg.MQTT.Broker)
	assert.Equal(t, "casa/kinect", cfg.MQTT.Topic)

	// O restante continua com os padrões
	assert.Equal(t, uint8(15), cfg.Motion.DiffThreshold)
	assert.Equal(t, 5045, cfg.Kinect.Port)
}

func TestEnvironmentOverrides(t *testing.T) {
	chdirTemp(t)

	t.Setenv("MQTT_BROKER", "10.0.0.5")
	t.Setenv("MQTT_USER", "kinect")
	t.Setenv("MQTT_PASS", "segredo")
	t.Setenv("KINECT_HOST", "sensor.local")
	t.Setenv("KINECT_PORT", "6000")
	t.Setenv("MOTION_THRESHOLD", "2000000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.MQTT.Broker)
	assert.Equal(t, "kinect", cfg.MQTT.Username)
	assert.Equal(t, "segredo", cfg.MQTT.Password)
	assert.Equal(t, "sensor.local", cfg.Kinect.Host)
	assert.Equal(t, 6000, cfg.Kinect.Port)
	assert.Equal(t, int64(2_000_000), cfg.Motion.Threshold)
}

func TestInvalidEnvironmentValuesAreIgnored(t *testing.T) {
	chdirTemp(t)

	t.Setenv("KINECT_PORT", "não-é-número")
	t.Setenv("MOTION_THRESHOLD", "xyz")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5045, cfg.Kinect.Port)
	assert.Equal(t, int64(1_000_000), cfg.Motion.Threshold)
}

func TestMalformedConfigFileFails(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{não json"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

// chdirTemp muda para um diretório temporário para isolar o config.json
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })

	return dir
}
