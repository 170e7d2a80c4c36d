package workload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
readers: 10
writers: 2
read_duration: 150ms
stagger: 5ms
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Config{
		Readers:       10,
		Writers:       2,
		ReadDuration:  150 * time.Millisecond,
		WriteDuration: 2 * time.Second,
		Stagger:       5 * time.Millisecond,
	}, cfg)
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "syntax", content: "readers: [1"},
		{name: "unknown key", content: "threads: 5"},
		{name: "bad duration", content: "read_duration: soon"},
		{name: "negative", content: "writers: -1", invalid: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			require.Error(t, err)
			if tc.invalid {
				require.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	for _, tc := range []struct {
		name  string
		cfg   Config
		isErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "zero", cfg: Config{}},
		{name: "readers", cfg: Config{Readers: -1}, isErr: true},
		{name: "writers", cfg: Config{Writers: -1}, isErr: true},
		{name: "read duration", cfg: Config{ReadDuration: -time.Second}, isErr: true},
		{name: "write duration", cfg: Config{WriteDuration: -time.Second}, isErr: true},
		{name: "stagger", cfg: Config{Stagger: -time.Second}, isErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.isErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
