package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"gitlab.com/slon/wprw/rwmetrics"
	"gitlab.com/slon/wprw/rwmutex"
	"gitlab.com/slon/wprw/workload"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("readers: 7\nwriters: 3\nread_duration: 1s\n"), 0o644))

	f := &runFlags{cfg: workload.DefaultConfig()}
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	f.bind(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--writers", "1", "--stagger", "5ms"}))

	cfg, err := resolveConfig(f, fs)
	require.NoError(t, err)
	require.Equal(t, workload.Config{
		Readers:       7,
		Writers:       1,
		ReadDuration:  time.Second,
		WriteDuration: 2 * time.Second,
		Stagger:       5 * time.Millisecond,
	}, cfg)
}

func TestResolveConfig_NoFile(t *testing.T) {
	f := &runFlags{cfg: workload.Config{Readers: -1}}
	_, err := resolveConfig(f, newRunCmd().Flags())
	require.ErrorIs(t, err, workload.ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	require.NoError(t, err)

	_, err = newLogger("loud")
	require.Error(t, err)
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := rwmetrics.New(reg)
	require.NoError(t, err)

	lock := rwmutex.New(rwmutex.WithObserver(metrics))
	lock.Read(func() {})
	lock.RLock()
	defer lock.RUnlock()

	h := newRouter(reg, lock)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, "reading", stats["phase"])
	require.Equal(t, 1.0, stats["readers"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "rwlock_reader_admissions_total 2")
}

func TestRun(t *testing.T) {
	cfg := workload.Config{
		Readers:       5,
		Writers:       2,
		ReadDuration:  5 * time.Millisecond,
		WriteDuration: 5 * time.Millisecond,
	}
	require.NoError(t, run(context.Background(), cfg, "127.0.0.1:0", zap.NewNop()))
}
