package tool

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTlsCertificate(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key.pem")
	certFile := filepath.Join(dir, "cert.pem")

	created, err := EnsureTlsCertificate("jypelle", "Test", keyFile, certFile, []string{"localhost", "127.0.0.1"})
	require.NoError(t, err)
	assert.True(t, created)

	_, err = tls.LoadX509KeyPair(certFile, keyFile)
	require.NoError(t, err)

	created, err = EnsureTlsCertificate("jypelle", "Test", keyFile, certFile, nil)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestIsFileExists(t *testing.T) {
	exists, err := IsFileExists(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = IsFileExists(t.TempDir())
	require.NoError(t, err)
	assert.True(t, exists)
}
