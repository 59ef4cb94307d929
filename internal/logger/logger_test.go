package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogFilePathDefaultsToWorkdirLogs(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	require.NoError(t, os.Chdir(tmpDir))

	got, err := logFilePath(Options{})
	require.NoError(t, err)

	realTmp, err := filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)
	realDir, err := filepath.EvalSymlinks(filepath.Dir(got))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realTmp, defaults.Dir), realDir)
	assert.Equal(t, defaults.Filename, filepath.Base(got))
}

func TestReleaseModeWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	l := New("release", Options{Dir: dir, Filename: "release.log"})
	l.Sugar().Infow("checkout_order_created", "order_no", "SF0001")
	_ = l.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "release.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"checkout_order_created"`)
	assert.Contains(t, string(content), `"order_no":"SF0001"`)
}

func TestDebugModeSkipsFile(t *testing.T) {
	dir := t.TempDir()
	l := New("debug", Options{Dir: dir, Filename: "debug.log"})
	l.Info("debug-log-test")
	_ = l.Sync()

	_, err := os.Stat(filepath.Join(dir, "debug.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestLevelOverride(t *testing.T) {
	dir := t.TempDir()
	l := New("release", Options{Level: "warn", Dir: dir, Filename: "warn.log"})
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	l = New("debug", Options{Level: "bogus"})
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestInitReplacesCurrent(t *testing.T) {
	l := Init("debug", Options{})
	assert.Same(t, l, Z())
	assert.Same(t, l, L)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 7, orDefault(0, 7))
	assert.Equal(t, 3, orDefault(3, 7))
}
