package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFileName(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		params map[string]string
		want   string
	}{
		{"all placeholders", "billcheck_{timestamp}_{uuid}.{format}", map[string]string{"format": "json"}, "billcheck_20240115_143022_abc.json"},
		{"text maps to txt", "report_{date}", map[string]string{"format": "text"}, "report_20240115.txt"},
		{"text placeholder uses the extension", "billcheck_{timestamp}_{uuid}.{format}", map[string]string{"format": "text"}, "billcheck_20240115_143022_abc.txt"},
		{"extension already present", "r_{time}.xlsx", map[string]string{"format": "xlsx"}, "r_143022.xlsx"},
		{"no format", "plain", nil, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateFileName(tt.format, tt.params, now, "abc"))
		})
	}
}

func TestGenerateOutputFileName_Unique(t *testing.T) {
	a := GenerateOutputFileName("{uuid}", map[string]string{"format": "json"})
	b := GenerateOutputFileName("{uuid}", map[string]string{"format": "json"})
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".json"))
}

func TestResolveOutputPath(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "report.json")
	assert.Equal(t, file, ResolveOutputPath(file, "{uuid}", "json"))

	generated := ResolveOutputPath(dir, "bills_{format}", "yaml")
	assert.Equal(t, filepath.Join(dir, "bills_yaml.yaml"), generated)

	trailing := ResolveOutputPath(filepath.Join(dir, "new")+"/", "out", "xlsx")
	assert.Equal(t, filepath.Join(dir, "new", "out.xlsx"), trailing)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, IsDir(dir))
	assert.True(t, FileExists(dir))
	assert.NoError(t, EnsureDir("."))
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "billcheck.log")

	logger, err := NewLogger(LoggerConfig{Level: "info", OutputPath: path, Format: "json"})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	quiet, err := NewLogger(LoggerConfig{Level: "bogus", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(-1), "unknown level falls back to warn")
}
