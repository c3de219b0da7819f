package config

import (
	"testing"
)

func devConfig() *Config {
	return &Config{
		Env:         "development",
		DatabaseURL: "postgres://localhost/medledger",
		BlobBackend: "memory",
	}
}

func TestResolvedAuthMode_Development(t *testing.T) {
	cfg := devConfig()
	if mode := cfg.ResolvedAuthMode(); mode != "development" {
		t.Errorf("expected development, got %s", mode)
	}
}

func TestResolvedAuthMode_Standalone(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"
	if mode := cfg.ResolvedAuthMode(); mode != "standalone" {
		t.Errorf("expected standalone, got %s", mode)
	}
}

func TestResolvedAuthMode_Explicit(t *testing.T) {
	cfg := devConfig()
	cfg.AuthMode = "standalone"
	if mode := cfg.ResolvedAuthMode(); mode != "standalone" {
		t.Errorf("expected standalone, got %s", mode)
	}
}

func TestValidate_StandaloneRequiresSecret(t *testing.T) {
	cfg := devConfig()
	cfg.AuthMode = "standalone"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing AUTH_SECRET")
	}
	cfg.AuthSecret = "test-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_AuditorAddress(t *testing.T) {
	cfg := devConfig()
	cfg.AuditorAddress = "not-an-address"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for malformed auditor address")
	}
	cfg.AuditorAddress = "0x5D4281e40bEf3E5944144C87095a6E7C8bBD28E6"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ProductionRequiresAuditor(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"
	cfg.AuthSecret = "test-secret"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing AUDITOR_ADDRESS in production")
	}
}

func TestValidate_BlobBackend(t *testing.T) {
	cfg := devConfig()
	cfg.BlobBackend = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown blob backend")
	}
	cfg.BlobBackend = "leveldb"
	cfg.BlobPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing BLOB_PATH")
	}
	cfg.BlobPath = "/tmp/blobs"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
