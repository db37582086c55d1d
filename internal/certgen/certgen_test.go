package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCA(t *testing.T, dir string) (string, string, Bundle) {
	t.Helper()
	_, _, b, err := GenerateCA("Test CA", 24*time.Hour)
	require.NoError(t, err)

	certPath := filepath.Join(dir, "ca.crt")
	keyPath := filepath.Join(dir, "ca.key")
	require.NoError(t, WriteBundle(certPath, keyPath, b))
	return certPath, keyPath, b
}

func TestGenerateCA(t *testing.T) {
	cert, key, b, err := GenerateCA("JobTracker Dev CA", time.Hour)
	require.NoError(t, err)

	assert.True(t, cert.IsCA)
	assert.Equal(t, "JobTracker Dev CA", cert.Subject.CommonName)
	assert.NotNil(t, key)

	block, _ := pem.Decode(b.CertPEM)
	require.NotNil(t, block)
	assert.Equal(t, "CERTIFICATE", block.Type)

	block, _ = pem.Decode(b.KeyPEM)
	require.NotNil(t, block)
	assert.Equal(t, "EC PRIVATE KEY", block.Type)
}

func TestLoadCACredentials_Success(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath, _ := writeCA(t, dir)

	cert, key, err := LoadCACredentials(certPath, keyPath)
	require.NoError(t, err)
	assert.True(t, cert.IsCA)
	assert.Equal(t, "Test CA", cert.Subject.CommonName)
	assert.NotNil(t, key)

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadCACredentials_Errors(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath, _ := writeCA(t, dir)

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not pem"), 0o600))

	_, _, err := LoadCACredentials(filepath.Join(dir, "missing.crt"), keyPath)
	assert.Error(t, err)

	_, _, err = LoadCACredentials(certPath, filepath.Join(dir, "missing.key"))
	assert.Error(t, err)

	_, _, err = LoadCACredentials(garbage, keyPath)
	assert.ErrorContains(t, err, "invalid CA cert PEM")

	_, _, err = LoadCACredentials(certPath, garbage)
	assert.ErrorContains(t, err, "invalid CA key PEM")
}

func TestLoadCACredentials_NotCA(t *testing.T) {
	dir := t.TempDir()
	caCert, caKey, _, err := GenerateCA("Test CA", time.Hour)
	require.NoError(t, err)

	leaf, err := GenerateServerCertificate([]string{"localhost"}, caCert, caKey, time.Hour)
	require.NoError(t, err)
	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	require.NoError(t, WriteBundle(certPath, keyPath, leaf))

	_, _, err = LoadCACredentials(certPath, keyPath)
	assert.ErrorContains(t, err, "not a CA")
}

func TestGenerateServerCertificate(t *testing.T) {
	caCert, caKey, caBundle, err := GenerateCA("Test CA", time.Hour)
	require.NoError(t, err)

	b, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1"}, caCert, caKey, time.Hour)
	require.NoError(t, err)

	pair, err := tls.X509KeyPair(b.CertPEM, b.KeyPEM)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	require.NoError(t, err)

	assert.Equal(t, "localhost", leaf.Subject.CommonName)
	assert.Equal(t, []string{"localhost"}, leaf.DNSNames)
	require.Len(t, leaf.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", leaf.IPAddresses[0].String())
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}, leaf.ExtKeyUsage)
	assert.False(t, leaf.IsCA)

	roots := x509.NewCertPool()
	require.True(t, roots.AppendCertsFromPEM(caBundle.CertPEM))
	for _, host := range []string{"localhost", "127.0.0.1"} {
		_, err := leaf.Verify(x509.VerifyOptions{
			DNSName:   host,
			Roots:     roots,
			KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		})
		assert.NoError(t, err, host)
	}
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	caCert, caKey, _, err := GenerateCA("Test CA", time.Hour)
	require.NoError(t, err)

	_, err = GenerateServerCertificate(nil, caCert, caKey, time.Hour)
	assert.Error(t, err)
}
