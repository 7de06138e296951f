package config

import (
	"fmt"
	"os"
)

var allowedLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true,
	"warning": true, "error": true, "fatal": true,
}

// Validate checks the entire configuration document for correctness,
// returning the first per-section failure found.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateSSL(&cfg.SSL); err != nil {
		return fmt.Errorf("ssl config validation failed: %w", err)
	}
	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database config validation failed: %w", err)
	}
	if err := validateJWT(&cfg.JWT); err != nil {
		return fmt.Errorf("jwt config validation failed: %w", err)
	}
	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}
	return nil
}

func validateServer(s *Server) error {
	if s.Address == "" {
		return fmt.Errorf("server.address cannot be empty")
	}
	// Half-open range [1,65535): port 65535 itself is out of range.
	if s.Port < 1 || s.Port > 65534 {
		return fmt.Errorf("server.port must be between 1 and 65534, got %d", s.Port)
	}
	if s.Threads < 1 || s.Threads > 1024 {
		return fmt.Errorf("server.threads must be between 1 and 1024, got %d", s.Threads)
	}
	return nil
}

func validateSSL(s *SSL) error {
	if s.CertificateFile == "" {
		return fmt.Errorf("ssl.certificate_file cannot be empty")
	}
	if s.PrivateKeyFile == "" {
		return fmt.Errorf("ssl.private_key_file cannot be empty")
	}
	if _, err := os.Stat(s.CertificateFile); err != nil {
		return fmt.Errorf("ssl.certificate_file %q: %w", s.CertificateFile, err)
	}
	if _, err := os.Stat(s.PrivateKeyFile); err != nil {
		return fmt.Errorf("ssl.private_key_file %q: %w", s.PrivateKeyFile, err)
	}
	// dh_params_file is optional; validated only when present.
	if s.DHParamsFile != "" {
		if _, err := os.Stat(s.DHParamsFile); err != nil {
			return fmt.Errorf("ssl.dh_params_file %q: %w", s.DHParamsFile, err)
		}
	}
	return nil
}

func validateDatabase(d *Database) error {
	if d.Address == "" {
		return fmt.Errorf("database.address cannot be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535, got %d", d.Port)
	}
	if d.DBName == "" {
		return fmt.Errorf("database.db_name cannot be empty")
	}
	if d.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be >= 1, got %d", d.MaxConnections)
	}
	if d.ConnectionTimeout < 1 {
		return fmt.Errorf("database.connection_timeout must be >= 1 second, got %d", d.ConnectionTimeout)
	}
	return nil
}

// MinRecommendedSecretLength is the HS256 strength floor; a shorter secret
// is a logged warning, not a validation failure.
const MinRecommendedSecretLength = 32

// MaxAccessTokenExpiryMinutes caps access-token lifetime at one year.
const MaxAccessTokenExpiryMinutes = 525600

func validateJWT(j *JWT) error {
	if j.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key cannot be empty")
	}
	if j.AccessTokenExpiryMinutes < 1 || j.AccessTokenExpiryMinutes > MaxAccessTokenExpiryMinutes {
		return fmt.Errorf("jwt.access_token_expiry_minutes must be between 1 and %d, got %d",
			MaxAccessTokenExpiryMinutes, j.AccessTokenExpiryMinutes)
	}
	if j.RefreshTokenExpiryDays < 1 {
		return fmt.Errorf("jwt.refresh_token_expiry_days must be >= 1, got %d", j.RefreshTokenExpiryDays)
	}
	return nil
}

func validateLogging(l *Logging) error {
	if !allowedLogLevels[l.Level] {
		return fmt.Errorf("logging.level %q is not one of trace,debug,info,warning,error,fatal", l.Level)
	}
	if l.LogAccess && l.AccessLog == "" {
		return fmt.Errorf("logging.access_log cannot be empty when logging.log_access is true")
	}
	if l.ErrorLog == "" {
		return fmt.Errorf("logging.error_log cannot be empty")
	}
	return nil
}
