// Package main generates a development Certificate Authority and a server
// certificate for the JobTracker API, writing them under the "certs" directory.
//
// An existing ca.crt/ca.key pair in the output directory is reused so that
// clients already trusting the CA keep working after the server certificate
// is reissued.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/JobTracker/internal/certgen"
)

const (
	caValidity     = 10 * 365 * 24 * time.Hour
	serverValidity = 365 * 24 * time.Hour
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := run(*dir, splitHosts(*hosts)); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
	fmt.Printf("  server: TLS_CERT=%s TLS_KEY=%s\n",
		filepath.Join(*dir, "server.crt"), filepath.Join(*dir, "server.key"))
	fmt.Printf("  client: -ca %s\n", filepath.Join(*dir, "ca.crt"))
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// run writes ca.crt, ca.key, server.crt and server.key into dir.
func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	caCertPath := filepath.Join(dir, "ca.crt")
	caKeyPath := filepath.Join(dir, "ca.key")

	caCert, caKey, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
	if errors.Is(err, os.ErrNotExist) {
		cert, key, bundle, genErr := certgen.GenerateCA("JobTracker Dev CA", caValidity)
		if genErr != nil {
			return genErr
		}
		if err := certgen.WriteBundle(caCertPath, caKeyPath, bundle); err != nil {
			return err
		}
		caCert, caKey, err = cert, key, nil
	}
	if err != nil {
		return err
	}

	server, err := certgen.GenerateServerCertificate(hosts, caCert, caKey, serverValidity)
	if err != nil {
		return err
	}
	return certgen.WriteBundle(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"), server)
}
