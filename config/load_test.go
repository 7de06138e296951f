package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Success(t *testing.T) {
	dir := t.TempDir()
	cert, key := writeTempCertFiles(t)

	doc := validConfig(t, cert, key)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != path {
		t.Errorf("cfg.Source = %q, want %q", cfg.Source, path)
	}
	if cfg.Server.Port != doc.Server.Port {
		t.Errorf("cfg.Server.Port = %d, want %d", cfg.Server.Port, doc.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load() with a missing file error = nil, want an error")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with malformed JSON error = nil, want an error")
	}
}

func TestLoad_FailsValidation(t *testing.T) {
	dir := t.TempDir()
	cert, key := writeTempCertFiles(t)
	doc := validConfig(t, cert, key)
	doc.Server.Port = 0 // invalid
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with a config that fails validation error = nil, want an error")
	}
}
