package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noTempLeft(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."+name+".tmp-"), "临时文件未清理：%q", e.Name())
	}
}

func TestWriteFileAtomicReplace_SuccessAndNoTempLeft(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	require.NoError(t, WriteFileAtomicReplace(dir, "a.txt", []byte("hello")))
	require.NoError(t, WriteFileAtomicReplace(dir, "a.txt", []byte("again")))

	b, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "again", string(b))
	noTempLeft(t, dir, "a.txt")
}

func TestWriteFileAtomic_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	err := WriteFileAtomicReplace(dir, "a.txt", []byte("hello"))
	require.ErrorIs(t, err, os.ErrPermission)

	noTempLeft(t, dir, "a.txt")
	_, err = os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(err), "不应写出最终文件")
}

func TestWriteFileAtomicNoOverwrite(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteFileAtomicNoOverwrite(dir, "a.txt", []byte("one")))
	err := WriteFileAtomicNoOverwrite(dir, "a.txt", []byte("two"))
	require.True(t, errors.Is(err, os.ErrExist))
	assert.True(t, IsTargetConflict(err))

	b, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(b), "不允许覆盖")
}

func TestWriteFile_TargetConflictDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a.txt"), 0o755))

	for _, overwrite := range []bool{false, true} {
		err := WriteFile(dir, "a.txt", []byte("hello"), overwrite)
		require.Error(t, err)
		assert.True(t, IsPathTypeConflict(err), "overwrite=%v 期望 PathTypeConflictError，实际：%T %v", overwrite, err, err)
		assert.True(t, IsTargetConflict(err))
	}
}
