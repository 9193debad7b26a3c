package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model2450.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOverridesDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
port = " /dev/ttyACM0 "
command_timeout = "2s"
text_wait = "500ms"
sequence_check = true

[log]
level = "debug"
timestamp = false

[nats]
url = "nats://localhost:4222"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Port = "/dev/ttyACM0"
	want.CommandTimeout = 2 * time.Second
	want.TextWait = 500 * time.Millisecond
	want.SequenceCheck = true
	want.Log.Level = "debug"
	want.Log.Timestamp = false
	want.NATS.URL = "nats://localhost:4222"
	assert.Equal(t, want, cfg)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad duration", `read_timeout = "soon"`, "parse read_timeout"},
		{"unknown key", `parity = "even"`, `unknown key "parity"`},
		{"bad toml", `port = `, "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPort, "COM3")
	t.Setenv(EnvBaud, "9600")
	t.Setenv(EnvNATSURL, "nats://broker:4222")

	cfg := Default()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, "COM3", cfg.Port)
	assert.Equal(t, 9600, cfg.BaudRate)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)

	t.Setenv(EnvBaud, "fast")
	assert.Error(t, ApplyEnv(&cfg))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port is required")

	cfg.Port = "/dev/ttyACM0"
	assert.NoError(t, cfg.Validate())

	cfg.BaudRate = 0
	cfg.ReadTimeout = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baud_rate")
	assert.Contains(t, err.Error(), "read_timeout")
}

func TestSerial(t *testing.T) {
	cfg := Default()
	cfg.Port = "/dev/ttyUSB1"
	cfg.BaudRate = 57600

	sc := cfg.Serial()
	assert.Equal(t, "/dev/ttyUSB1", sc.Port)
	assert.Equal(t, 57600, sc.BaudRate)
	assert.Equal(t, time.Second, sc.ReadTimeout)
}
