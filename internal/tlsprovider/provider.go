// Package tlsprovider implements C1: load PEM cert+key material from
// disk, or generate and persist a self-signed pair, and build a
// TLS 1.3-only server config offering the h3 ALPN.
//
// Grounded on cmd/aether-gateway/main.go's generateSelfSignedCert and
// CertificateLoader from the teacher repo, generalized from one hardcoded
// gateway cert into a per-server-name load-or-generate contract and
// switched from RSA to ECDSA P-256 for faster generation.
package tlsprovider

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// GeneratedCertDir is the well-known directory generated self-signed
// material is persisted under, per spec.md §4.1 rule 2. Declared as a
// var (not const) so tests can redirect it into a temp directory.
var GeneratedCertDir = "/etc/motmot/ssl/generated"

// LoadOrGenerate implements the C1 contract:
//
//  1. If both certPath and keyPath are non-empty, load and parse them.
//  2. Otherwise, derive the generated-cert path for serverName; if both
//     files already exist there, load them; else generate, persist, and
//     load the freshly written pair.
//
// The returned *tls.Config requires TLS 1.3 and advertises ALPN ["h3"]
// only, with no client certificate authentication.
func LoadOrGenerate(serverName, certPath, keyPath string, logger *zap.Logger) (*tls.Config, error) {
	if certPath != "" && keyPath != "" {
		return buildConfig(certPath, keyPath)
	}

	genCert := filepath.Join(GeneratedCertDir, serverName+".cert")
	genKey := filepath.Join(GeneratedCertDir, serverName+".key")

	if fileExists(genCert) && fileExists(genKey) {
		if cfg, err := buildConfig(genCert, genKey); err == nil {
			return cfg, nil
		}
		// Fall through to regenerate if the existing generated pair is
		// unreadable or corrupt.
	}

	if logger != nil {
		logger.Warn("generating self-signed certificate; not safe for production",
			zap.String("server", serverName),
			zap.Bool("production_unsafe", true),
			zap.String("cert_path", genCert))
	}

	if err := generateAndPersist(serverName, genCert, genKey); err != nil {
		return nil, err
	}
	return buildConfig(genCert, genKey)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func buildConfig(certPath, keyPath string) (*tls.Config, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCertUnreadable, certPath, err)
	}
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("%w: %s: no CERTIFICATE PEM block", ErrCertParseFailed, certPath)
	}

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKeyUnreadable, keyPath, err)
	}
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, fmt.Errorf("%w: %s: no PEM block found", ErrKeyParseFailed, keyPath)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyParseFailed, err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"h3"},
		MinVersion:   tls.VersionTLS13,
		MaxVersion:   tls.VersionTLS13,
		ClientAuth:   tls.NoClientCert,
	}
	return cfg, nil
}

func generateAndPersist(serverName, certPath, keyPath string) error {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: serverName, Organization: []string{"motmot self-signed"}},
		DNSNames:     []string{serverName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().AddDate(1, 0, 0),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IsCA:         true,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(certPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	certOut, err := os.OpenFile(certPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer certOut.Close()
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	keyOut, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer keyOut.Close()
	if err := pem.Encode(keyOut, &pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes}); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}
