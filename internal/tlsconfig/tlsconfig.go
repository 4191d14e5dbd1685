// Package tlsconfig builds client TLS configuration for the syslog
// transport: peer verification, CA material, and certificate revocation
// checking against CRL bundles.
package tlsconfig

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Options describes the trust material for one syslog peer.
type Options struct {
	// ServerName is the hostname used for server identity indication.
	ServerName string
	// Verify enables peer certificate verification. When false the
	// handshake accepts any certificate.
	Verify bool
	// CACert is a PEM bundle file or a directory of PEM files with the
	// trusted roots. Empty means the system pool.
	CACert string
	// CRL is a PEM bundle of certificate revocation lists.
	CRL string
	// CRLCheckAll checks every certificate in the verified chain against
	// the CRLs instead of the leaf only.
	CRLCheckAll bool
}

// Context holds a ready-to-use client TLS configuration and can rebuild
// it from the underlying files on demand.
type Context struct {
	opts Options

	mu  sync.RWMutex
	cfg *tls.Config

	reloads atomic.Int64
}

// New builds a trust context from the given options. The trust files are
// read once; call Reload to pick up changes.
func New(opts Options) (*Context, error) {
	cfg, err := build(opts)
	if err != nil {
		return nil, err
	}
	return &Context{opts: opts, cfg: cfg}, nil
}

// Config returns the current TLS configuration. The returned value must
// be treated as read-only.
func (c *Context) Config() *tls.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Reload rebuilds the TLS configuration from the trust files. On error
// the previous configuration stays in effect.
func (c *Context) Reload() error {
	cfg, err := build(c.opts)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	c.reloads.Add(1)
	return nil
}

func build(opts Options) (*tls.Config, error) {
	cfg := &tls.Config{
		ServerName: opts.ServerName,
		MinVersion: tls.VersionTLS12,
	}
	if !opts.Verify {
		cfg.InsecureSkipVerify = true
		return cfg, nil
	}

	var pool *x509.CertPool
	if opts.CACert != "" {
		var err error
		pool, err = loadPool(opts.CACert)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		pool, err = x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: system pool: %w", err)
		}
	}
	cfg.RootCAs = pool

	if opts.CRL == "" {
		return cfg, nil
	}

	crls, err := loadCRLs(opts.CRL)
	if err != nil {
		return nil, err
	}
	// Chain building happens in VerifyConnection so the verified chains
	// are available for revocation checks.
	cfg.InsecureSkipVerify = true
	cfg.VerifyConnection = func(cs tls.ConnectionState) error {
		return verifyWithCRLs(cs, pool, opts, crls)
	}
	return cfg, nil
}

func verifyWithCRLs(cs tls.ConnectionState, pool *x509.CertPool, opts Options, crls []*x509.RevocationList) error {
	if len(cs.PeerCertificates) == 0 {
		return fmt.Errorf("tlsconfig: peer presented no certificate")
	}

	vo := x509.VerifyOptions{
		Roots:         pool,
		DNSName:       opts.ServerName,
		Intermediates: x509.NewCertPool(),
		CurrentTime:   time.Now(),
	}
	for _, ic := range cs.PeerCertificates[1:] {
		vo.Intermediates.AddCert(ic)
	}
	chains, err := cs.PeerCertificates[0].Verify(vo)
	if err != nil {
		return err
	}

	chain := chains[0]
	if !opts.CRLCheckAll {
		chain = chain[:1]
	}
	for _, cert := range chain {
		if Revoked(cert, crls) {
			return fmt.Errorf("tlsconfig: certificate %q is revoked", cert.Subject.CommonName)
		}
	}
	return nil
}

// Revoked reports whether the certificate's serial appears on a CRL
// issued by the certificate's issuer.
func Revoked(cert *x509.Certificate, crls []*x509.RevocationList) bool {
	for _, crl := range crls {
		if !bytes.Equal(crl.RawIssuer, cert.RawIssuer) {
			continue
		}
		for _, entry := range crl.RevokedCertificateEntries {
			if entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
				return true
			}
		}
	}
	return false
}

// loadPool reads trusted roots from a PEM bundle file or, when path is a
// directory, from every file in it.
func loadPool(path string) (*x509.CertPool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: ca cert: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: ca dir: %w", err)
		}
		files = files[:0]
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}

	pool := x509.NewCertPool()
	loaded := false
	for _, f := range files {
		pemData, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: read %s: %w", f, err)
		}
		if pool.AppendCertsFromPEM(pemData) {
			loaded = true
		}
	}
	if !loaded {
		return nil, fmt.Errorf("tlsconfig: no certificates found in %s", path)
	}
	return pool, nil
}

// loadCRLs parses every X509 CRL PEM block in the bundle file.
func loadCRLs(path string) ([]*x509.RevocationList, error) {
	pemData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: read crl: %w", err)
	}

	var crls []*x509.RevocationList
	for {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "X509 CRL" {
			continue
		}
		crl, err := x509.ParseRevocationList(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: parse crl: %w", err)
		}
		crls = append(crls, crl)
	}
	if len(crls) == 0 {
		return nil, fmt.Errorf("tlsconfig: no CRLs found in %s", path)
	}
	return crls, nil
}
