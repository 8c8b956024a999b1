package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexStale(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "reflections.json")
	index := filepath.Join(dir, "index.db")

	assert.True(t, indexStale(data, index), "missing index")

	require.NoError(t, os.WriteFile(index, nil, 0o644))
	assert.False(t, indexStale(data, index), "missing data file")

	require.NoError(t, os.WriteFile(data, []byte("[]"), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(index, old, old))
	assert.True(t, indexStale(data, index), "data newer than index")

	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(index, newer, newer))
	assert.False(t, indexStale(data, index))
}
