package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, p string) string {
	t.Helper()
	out, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return out
}

func TestFindProjectRoot_WalksUpToGoMod(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindProjectRoot(nested)

	require.NoError(t, err)
	assert.Equal(t, resolved(t, root), resolved(t, got))
}

func TestFindProjectRoot_NoGoMod(t *testing.T) {
	_, err := FindProjectRoot(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEnv_MissingImplicitFilesAreFine(t *testing.T) {
	t.Setenv(EnvFileVar, "")
	t.Chdir(t.TempDir())

	loaded, err := LoadEnv()

	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadEnv_ReadsWorkingDirAndProjectRoot(t *testing.T) {
	t.Setenv(EnvFileVar, "")
	t.Setenv("LLMCHAT_TEST_FROM_WD", "")
	os.Unsetenv("LLMCHAT_TEST_FROM_WD")
	t.Setenv("LLMCHAT_TEST_FROM_ROOT", "")
	os.Unsetenv("LLMCHAT_TEST_FROM_ROOT")

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("LLMCHAT_TEST_FROM_ROOT=root\nLLMCHAT_TEST_FROM_WD=root\n"), 0o644))
	wd := filepath.Join(root, "cmd")
	require.NoError(t, os.MkdirAll(wd, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(wd, ".env"), []byte("LLMCHAT_TEST_FROM_WD=wd\n"), 0o644))
	t.Chdir(wd)

	loaded, err := LoadEnv()

	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, "wd", os.Getenv("LLMCHAT_TEST_FROM_WD"))
	assert.Equal(t, "root", os.Getenv("LLMCHAT_TEST_FROM_ROOT"))
}

func TestLoadEnv_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("LLMCHAT_TEST_EXPLICIT=yes\n"), 0o644))
	t.Setenv(EnvFileVar, path)
	t.Setenv("LLMCHAT_TEST_EXPLICIT", "")
	os.Unsetenv("LLMCHAT_TEST_EXPLICIT")

	loaded, err := LoadEnv()

	require.NoError(t, err)
	assert.Equal(t, []string{path}, loaded)
	assert.Equal(t, "yes", os.Getenv("LLMCHAT_TEST_EXPLICIT"))
}

func TestLoadEnv_MissingExplicitFileFails(t *testing.T) {
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "absent.env"))

	_, err := LoadEnv()

	assert.Error(t, err)
}
