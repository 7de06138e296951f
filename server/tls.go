package server

import (
	"crypto/tls"
	"fmt"

	"github.com/ProphetRu/NovaChatServer/config"
)

// BuildTLSConfig loads the certificate chain and private key named by cfg
// and returns a hardened server tls.Config.
//
// crypto/tls has no notion of a standalone DH-params file: ECDHE key
// exchange parameters are negotiated per-curve, not loaded from disk, and
// the legacy SSLv2/SSLv3/single-DH-use workarounds don't apply once
// MinVersion excludes those protocol versions outright. DHParamsFile is
// accepted in config for compatibility with externally produced cert
// bundles but is a no-op here.
func BuildTLSConfig(cfg config.SSL) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertificateFile, cfg.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("server: load TLS key pair: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   []string{"h2", "http/1.1"},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
			tls.CurveP384,
		},
	}, nil
}
