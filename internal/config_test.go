package internal

import (
	"strings"
	"testing"

	"github.com/asapfoodtrailer/dealerd/internal/store"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStoreConfig_EmptyModeDefaultsLocal(t *testing.T) {
	cfg := StoreConfig{DataFile: "./data/seed.json"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to local: %v", err)
	}
	if cfg.Mode != store.ModeLocal {
		t.Errorf("mode = %q, want %q", cfg.Mode, store.ModeLocal)
	}
}

func TestStoreConfig_RemoteRequiresMongo(t *testing.T) {
	cfg := StoreConfig{Mode: store.ModeRemote, DataFile: "./data/seed.json"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("remote mode without mongo settings should fail")
	}
	cfg.Mongo = MongoConfig{URI: "mongodb://localhost:27017", Database: "dealerd"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("remote mode with mongo settings should pass: %v", err)
	}
}

func TestStoreConfig_InvalidMode(t *testing.T) {
	cfg := StoreConfig{Mode: "firebase", DataFile: "./data/seed.json"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestSMTPConfig_EmptyHostDisabled(t *testing.T) {
	cfg := SMTPConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unconfigured smtp should pass: %v", err)
	}
	if cfg.Enabled() {
		t.Error("unconfigured smtp should be disabled")
	}
}

func TestSMTPConfig_HostRequiresAddresses(t *testing.T) {
	cfg := SMTPConfig{Host: "smtp.gmail.com", Port: 465}
	if err := cfg.Validate(); err == nil {
		t.Fatal("smtp host without addresses should fail")
	}
	cfg.From = "dealer@example.com"
	cfg.NotifyTo = "sales@example.com"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("complete smtp config should pass: %v", err)
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
