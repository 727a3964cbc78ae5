package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// certExpiryWarning is how close to NotAfter a certificate starts logging
// at warn level.
const certExpiryWarning = 30 * 24 * time.Hour

// certReloader serves the key pair at certFile/keyFile and picks up renewed
// files without a restart. A renewal that fails to load keeps the previous
// pair in service.
type certReloader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu      sync.RWMutex
	cert    *tls.Certificate
	modTime time.Time
}

func newCertReloader(certFile, keyFile string, logger *slog.Logger) (*certReloader, error) {
	r := &certReloader{certFile: certFile, keyFile: keyFile, logger: logger}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *certReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// watch checks the files every interval until ctx is done.
func (r *certReloader) watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.changed() {
				continue
			}
			if err := r.load(); err != nil {
				r.logger.Error("failed to reload TLS certificate",
					"error", err,
					"cert_file", r.certFile,
				)
			}
		}
	}
}

// changed reports whether either file is newer than the loaded pair.
func (r *certReloader) changed() bool {
	latest, err := r.latestModTime()
	if err != nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return latest.After(r.modTime)
}

func (r *certReloader) latestModTime() (time.Time, error) {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return time.Time{}, err
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return time.Time{}, err
	}
	if keyInfo.ModTime().After(certInfo.ModTime()) {
		return keyInfo.ModTime(), nil
	}
	return certInfo.ModTime(), nil
}

func (r *certReloader) load() error {
	modTime, err := r.latestModTime()
	if err != nil {
		return fmt.Errorf("TLS certificate not readable: %w", err)
	}

	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse TLS certificate: %w", err)
	}
	if time.Now().After(leaf.NotAfter) {
		return errors.New("TLS certificate has expired")
	}
	cert.Leaf = leaf

	r.mu.Lock()
	r.cert = &cert
	r.modTime = modTime
	r.mu.Unlock()

	remaining := time.Until(leaf.NotAfter)
	attrs := []any{
		"subject", leaf.Subject.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
		"expires_in_days", int(remaining.Hours() / 24),
	}
	if remaining < certExpiryWarning {
		r.logger.Warn("TLS certificate expiring soon", attrs...)
	} else {
		r.logger.Info("TLS certificate loaded", attrs...)
	}
	return nil
}
