//go:build linux

package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLinuxMaxThreads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads-max")
	require.NoError(t, os.WriteFile(path, []byte("126465\n"), 0o644))

	n, err := readLinuxMaxThreads(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(126465), n)

	require.NoError(t, os.WriteFile(path, []byte("lots"), 0o644))
	_, err = readLinuxMaxThreads(path)
	assert.Error(t, err)

	_, err = readLinuxMaxThreads(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
