package main

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHosts(t *testing.T) {
	assert.Equal(t, []string{"localhost", "127.0.0.1", "api.local"},
		splitHosts(" localhost, 127.0.0.1,,api.local "))
	assert.Nil(t, splitHosts(""))
}

func TestRun_WritesTrustedServerCert(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	require.NoError(t, run(dir, []string{"localhost", "127.0.0.1"}))

	for _, name := range []string{"ca.crt", "ca.key", "server.crt", "server.key"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"))
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	require.NoError(t, err)

	caPEM, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	require.NoError(t, err)
	roots := x509.NewCertPool()
	require.True(t, roots.AppendCertsFromPEM(caPEM))

	_, err = leaf.Verify(x509.VerifyOptions{DNSName: "localhost", Roots: roots})
	assert.NoError(t, err)
}

func TestRun_ReusesExistingCA(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(dir, []string{"localhost"}))
	before, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	require.NoError(t, err)
	firstServer, err := os.ReadFile(filepath.Join(dir, "server.crt"))
	require.NoError(t, err)

	require.NoError(t, run(dir, []string{"localhost"}))
	after, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	require.NoError(t, err)
	secondServer, err := os.ReadFile(filepath.Join(dir, "server.crt"))
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.NotEqual(t, firstServer, secondServer)
}

func TestRun_NoHosts(t *testing.T) {
	assert.Error(t, run(t.TempDir(), nil))
}
