package embed

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBuilder is a test double that doesn't shell out to the real go
// toolchain.
type mockBuilder struct {
	called bool
	err    error
}

func (m *mockBuilder) Build(outputPath string) error {
	m.called = true
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(outputPath, []byte("fake binary"), 0755)
}

// withTempHome points HOME at a fresh temp dir for the duration of a
// test, so EnsureBinaryInstalled's well-known install path resolves
// somewhere disposable.
func withTempHome(t *testing.T) string {
	t.Helper()
	tmpHome := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() {
		_ = os.Setenv("HOME", oldHome)
	})
	require.NoError(t, os.Setenv("HOME", tmpHome))
	return tmpHome
}

// withClearedPath neutralizes PATH so exec.LookPath never finds a
// real cortex-embed binary some other test or dev machine installed.
func withClearedPath(t *testing.T) {
	t.Helper()
	oldPath := os.Getenv("PATH")
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	require.NoError(t, os.Setenv("PATH", ""))
}

func TestEnsureBinaryInstalled_EnvOverride(t *testing.T) {
	// Not parallel: mutates a process-wide env var.
	tmpDir := t.TempDir()
	binaryPath := filepath.Join(tmpDir, "my-cortex-embed")
	require.NoError(t, os.WriteFile(binaryPath, []byte("fake binary"), 0755))

	oldOverride := os.Getenv(embedBinaryEnvVar)
	t.Cleanup(func() { _ = os.Setenv(embedBinaryEnvVar, oldOverride) })
	require.NoError(t, os.Setenv(embedBinaryEnvVar, binaryPath))

	path, err := EnsureBinaryInstalled(nil)
	require.NoError(t, err)
	assert.Equal(t, binaryPath, path)
}

func TestEnsureBinaryInstalled_EnvOverrideMissing(t *testing.T) {
	oldOverride := os.Getenv(embedBinaryEnvVar)
	t.Cleanup(func() { _ = os.Setenv(embedBinaryEnvVar, oldOverride) })
	require.NoError(t, os.Setenv(embedBinaryEnvVar, filepath.Join(t.TempDir(), "does-not-exist")))

	_, err := EnsureBinaryInstalled(nil)
	assert.Error(t, err)
}

func TestEnsureBinaryInstalled_ExistingCachedBinary(t *testing.T) {
	// Not parallel: mutates HOME and PATH.
	tmpHome := withTempHome(t)
	withClearedPath(t)

	binDir := filepath.Join(tmpHome, ".cortex", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))

	binaryPath := filepath.Join(binDir, embedBinaryName)
	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}
	require.NoError(t, os.WriteFile(binaryPath, []byte("fake binary"), 0755))

	path, err := EnsureBinaryInstalled(nil)
	require.NoError(t, err)
	assert.Equal(t, binaryPath, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake binary", string(data))
}

func TestEnsureBinaryInstalled_BuildsWhenMissing(t *testing.T) {
	// Not parallel: mutates HOME and PATH.
	tmpHome := withTempHome(t)
	withClearedPath(t)

	expectedBinary := filepath.Join(tmpHome, ".cortex", "bin", embedBinaryName)
	if runtime.GOOS == "windows" {
		expectedBinary += ".exe"
	}

	mock := &mockBuilder{}
	path, err := EnsureBinaryInstalled(mock)

	require.NoError(t, err)
	assert.True(t, mock.called, "builder should have been invoked")
	assert.Equal(t, expectedBinary, path)
	assert.FileExists(t, path)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.Mode()&0111 != 0, "binary should be executable")
	}
}

func TestEnsureBinaryInstalled_BuildFailure(t *testing.T) {
	// Not parallel: mutates HOME and PATH.
	withTempHome(t)
	withClearedPath(t)

	mock := &mockBuilder{err: fmt.Errorf("compile error")}
	_, err := EnsureBinaryInstalled(mock)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be built")
	assert.Contains(t, err.Error(), "compile error")
	assert.True(t, mock.called, "builder should have been invoked despite the error")
}
