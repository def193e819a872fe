package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServerParam(t *testing.T) {
	param := DefaultServerParam()

	assert.Equal(t, ":5555", param.Listen)
	assert.Equal(t, time.Second, param.PollInterval.Duration())
	assert.Equal(t, 300*time.Second, param.Backlight.Timeout.Duration())
	assert.Equal(t, time.Second, param.Backlight.CheckInterval.Duration())
	assert.Equal(t, ColorParam{R: 86, G: 142, B: 215, A: 200}, param.IconBarColor)
	assert.Equal(t, BackendST7789, param.Backend)
	assert.Equal(t, 270, param.ST7789.Rotation)
	assert.Equal(t, "GPIO13", param.ST7789.BacklightPin)
}

func TestParseServerParam_KeepsDefaults(t *testing.T) {
	param, err := ParseServerParam([]byte(`
backend: file
backlight:
  timeout: 90s
`))
	require.NoError(t, err)

	assert.Equal(t, BackendFile, param.Backend)
	assert.Equal(t, 90*time.Second, param.Backlight.Timeout.Duration())
	assert.Equal(t, time.Second, param.Backlight.CheckInterval.Duration())
	assert.Equal(t, ":5555", param.Listen)
}

func TestParseServerParam_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown backend", "backend: hdmi"},
		{"bad duration", "poll_interval: soon"},
		{"negative timeout", "backlight:\n  timeout: -1s"},
		{"bad rotation", "st7789:\n  rotation: 45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseServerParam([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestNewServerConfig_WritesDefaultParamFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "piratedisplay")

	serverConfig := NewServerConfig(dir, false, true)

	assert.Equal(t, BackendWindow, serverConfig.Backend)
	assert.Empty(t, serverConfig.Buttons)
	raw, err := os.ReadFile(filepath.Join(dir, paramFilename))
	require.NoError(t, err)

	// The simulation flag is not persisted
	saved, err := ParseServerParam(raw)
	require.NoError(t, err)
	assert.Equal(t, BackendST7789, saved.Backend)
	assert.Equal(t, []string{"GPIO5", "GPIO6", "GPIO16", "GPIO24"}, saved.Buttons)
	assert.Equal(t, 300*time.Second, saved.Backlight.Timeout.Duration())
}

func TestServerConfig_Paths(t *testing.T) {
	serverConfig := &ServerConfig{ConfigDir: "/etc/piratedisplay", ServerParam: DefaultServerParam()}

	assert.Equal(t, "", serverConfig.GetCompleteAssetsDir())
	assert.Equal(t, "/etc/piratedisplay/screen-update.png", serverConfig.GetCompleteFramePath())
	assert.Equal(t, "localhost:5555", serverConfig.ClientAddress())

	serverConfig.AssetsDir = "/opt/assets"
	serverConfig.Listen = "192.168.1.20:6000"
	assert.Equal(t, "/opt/assets", serverConfig.GetCompleteAssetsDir())
	assert.Equal(t, "192.168.1.20:6000", serverConfig.ClientAddress())
}
