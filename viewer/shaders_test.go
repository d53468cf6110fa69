package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeShaders(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vert.spv"), []byte{1, 2, 3, 4}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frag.spv"), []byte{5, 6, 7, 8}, 0o644))
	return dir
}

func TestLoadAssets(t *testing.T) {
	dir := writeShaders(t)
	cachePath := filepath.Join(dir, "cache.bin")
	require.NoError(t, os.WriteFile(cachePath, []byte("cache"), 0o644))

	a, err := loadAssets(dir, cachePath)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, a.vertexShader)
	require.Equal(t, []byte{5, 6, 7, 8}, a.fragmentShader)
	require.Equal(t, []byte("cache"), a.pipelineCache)
}

func TestLoadAssets_MissingCacheIsIgnored(t *testing.T) {
	dir := writeShaders(t)

	a, err := loadAssets(dir, filepath.Join(dir, "missing.bin"))
	require.NoError(t, err)
	require.Nil(t, a.pipelineCache)

	a, err = loadAssets(dir, "")
	require.NoError(t, err)
	require.Nil(t, a.pipelineCache)
}

func TestLoadAssets_MissingShader(t *testing.T) {
	dir := writeShaders(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "frag.spv")))

	_, err := loadAssets(dir, "")
	require.ErrorContains(t, err, "failed to read fragment shader")
}
