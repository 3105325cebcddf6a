// Package tls terminates HTTPS with certificates obtained automatically
// through ACME. Challenges run over DNS-01 so the service can sit behind a
// firewall with no public port 80.
package tls

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/libdns/azure"
)

// Config selects the certificate setup.
type Config struct {
	Enabled  bool
	Domains  []string
	Email    string
	CacheDir string
	Staging  bool
	DNS      DNSConfig
}

// DNSConfig identifies the Azure DNS zone used to answer DNS-01
// challenges. An empty ClientID selects the system-assigned managed
// identity.
type DNSConfig struct {
	SubscriptionID    string
	ResourceGroupName string
	ClientID          string
}

func (c Config) validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("TLS enabled but no domains configured")
	}
	if c.Email == "" {
		return fmt.Errorf("TLS enabled but no ACME account email configured")
	}
	return nil
}

// Server serves the wrapped handler over HTTPS when enabled, plain HTTP
// otherwise.
type Server struct {
	config  Config
	handler http.Handler
	logger  *slog.Logger
	server  *http.Server
}

// NewServer prepares certificate management for the configured domains.
// Certificates are obtained on first use and renewed in the background.
func NewServer(cfg Config, handler http.Handler, logger *slog.Logger) (*Server, error) {
	s := &Server{config: cfg, handler: handler, logger: logger}
	if !cfg.Enabled {
		return s, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = cfg.Email
	if cfg.Staging {
		certmagic.DefaultACME.CA = certmagic.LetsEncryptStagingCA
	}
	if cfg.CacheDir != "" {
		certmagic.Default.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	}
	certmagic.DefaultACME.DNS01Solver = &certmagic.DNS01Solver{
		DNSManager: certmagic.DNSManager{
			DNSProvider: &azure.Provider{
				SubscriptionId:    cfg.DNS.SubscriptionID,
				ResourceGroupName: cfg.DNS.ResourceGroupName,
				ClientId:          cfg.DNS.ClientID,
			},
		},
	}

	tlsConfig, err := certmagic.TLS(cfg.Domains)
	if err != nil {
		return nil, fmt.Errorf("certificate setup for %v: %w", cfg.Domains, err)
	}

	s.server = &http.Server{
		Handler:           handler,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// ListenAndServe serves on addr, over TLS when enabled.
func (s *Server) ListenAndServe(addr string) error {
	if s.server == nil {
		s.logger.Info("serving plain HTTP, TLS disabled", "address", addr)
		plain := &http.Server{
			Addr:              addr,
			Handler:           s.handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		return plain.ListenAndServe()
	}

	s.logger.Info("serving HTTPS",
		"address", addr,
		"domains", s.config.Domains,
		"staging", s.config.Staging,
	)
	s.server.Addr = addr
	return s.server.ListenAndServeTLS("", "")
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
