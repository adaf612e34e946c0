package common

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// --------------------------------------------------------------------------
// TLS helpers
// --------------------------------------------------------------------------

// BuildServerTLSConfig builds the tls.Config wrapping accepted server
// connections. The server always presents a certificate; when CAFile is
// set, clients must present one too (mutual authentication).
func BuildServerTLSConfig(conf TLSConf) (*tls.Config, error) {
	if conf.CertFile == "" || conf.KeyFile == "" {
		return nil, fmt.Errorf("tls: server requires cert and key files")
	}

	cert, err := tls.LoadX509KeyPair(conf.CertFile, conf.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("tls: load server key pair: %w", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if conf.CAFile != "" {
		pool, err := loadCertPool(conf.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return cfg, nil
}

// BuildClientTLSConfig builds the tls.Config wrapping dialed client
// connections. CAFile overrides the system root pool; setting CertFile
// and KeyFile makes the client present a certificate for mutual
// authentication.
func BuildClientTLSConfig(conf TLSConf) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: conf.ServerName,
	}

	if conf.CAFile != "" {
		pool, err := loadCertPool(conf.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	if conf.CertFile != "" || conf.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(conf.CertFile, conf.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tls: load client key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// loadCertPool reads a PEM bundle into a certificate pool.
func loadCertPool(caFile string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tls: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("tls: no certificates found in %s", caFile)
	}
	return pool, nil
}
