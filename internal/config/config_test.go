package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROCM_PATH", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultROCmPath, cfg.ROCmPath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ".", cfg.Runner.ResultsDir)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("ROCM_PATH", "")
	path := filepath.Join(t.TempDir(), "rocdecode-tool.yml")
	content := `rocm_path: /opt/rocm-6.2.0
logging:
  level: debug
runner:
  results_dir: /tmp/results
  device_id: 1
  archive: zstd
setup:
  update_index: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/rocm-6.2.0", cfg.ROCmPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 1, cfg.Runner.DeviceID)
	assert.Equal(t, "zstd", cfg.Runner.Archive)
	assert.True(t, cfg.Setup.UpdateIndex)
	assert.Equal(t, ".", cfg.Setup.ReportDir)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())
	t.Setenv("ROCM_PATH", "/opt/rocm-env")
	t.Setenv("ROCDECODE_TOOL_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/rocm-env", cfg.ROCmPath)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("ROCM_PATH", "")
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "bad level", content: "logging:\n  level: loud\n", want: "invalid logging level"},
		{name: "bad archive", content: "runner:\n  archive: rar\n", want: "invalid archive format"},
		{name: "negative device", content: "runner:\n  device_id: -1\n", want: "invalid device id"},
		{name: "malformed yaml", content: "logging: [\n", want: "failed to read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}

func TestConfigHelpers(t *testing.T) {
	base := t.TempDir()
	cfg := DefaultConfig()
	cfg.Runner.ResultsDir = filepath.Join(base, "results")
	cfg.Setup.ReportDir = filepath.Join(base, "reports")
	cfg.Runner.SDKDir = "rocDecode"
	cfg.Logging.Level = "debug"
	h := NewConfigHelpers(cfg)

	dir, err := h.ResultsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "results"), dir)
	assert.NoDirExists(t, dir)

	dir, err = h.CreateReportDir()
	require.NoError(t, err)
	assert.DirExists(t, dir)

	wd, err := os.Getwd()
	require.NoError(t, err)
	dir, err = h.SDKDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "rocDecode"), dir)

	assert.Equal(t, "debug", h.LogLevel())
}

func TestGlobal(t *testing.T) {
	original := Global()
	defer SetGlobal(original)

	cfg := DefaultConfig()
	cfg.ROCmPath = "/custom"
	SetGlobal(cfg)
	assert.Equal(t, "/custom", Global().ROCmPath)
}
