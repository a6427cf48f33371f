package docker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDetectUnixSocket verifies the first existing path wins and is
// returned as a unix:// host URI. Detection only checks existence, so a
// plain file stands in for the socket.
func TestDetectUnixSocket(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "docker.sock")
	require.NoError(t, os.WriteFile(sock, nil, 0o644))

	host, err := detectUnixSocket([]string{
		filepath.Join(dir, "missing.sock"),
		sock,
	})
	require.NoError(t, err)
	assert.Equal(t, "unix://"+sock, host)
}

// TestDetectUnixSocket_NoneFound verifies the error names the probed
// paths so the user knows where Docker was expected.
func TestDetectUnixSocket_NoneFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "docker.sock")

	_, err := detectUnixSocket([]string{missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
}

// TestDetectDockerHost_Windows verifies the Windows path resolves to the
// default named pipe without any filesystem probe; reachability is
// Ping's job there.
func TestDetectDockerHost_Windows(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("named pipe detection only applies on Windows")
	}

	host, err := detectDockerHost()
	require.NoError(t, err)
	assert.Equal(t, "npipe:////./pipe/docker_engine", host)
}
