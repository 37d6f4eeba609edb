package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadConfig_LocalMode(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: debug
database:
  host: ""
jwt:
  secret: short
  expire_hours: 72
ai:
  base_url: https://api.openai.com/v1
  model: gpt-4o-mini
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.LocalMode() {
		t.Error("LocalMode() = false with no database host")
	}
	if cfg.JWT.ExpireTime != 72*time.Hour {
		t.Errorf("ExpireTime = %v; want 72h", cfg.JWT.ExpireTime)
	}
	if cfg.Projects.LocalPath != "data/projects.json" {
		t.Errorf("Projects.LocalPath = %q; want the default", cfg.Projects.LocalPath)
	}
}

func TestLoadConfig_ReleaseModeRequiresLongSecret(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: release
database:
  host: mysql.internal
  port: 3306
jwt:
  secret: too-short
  expire_hours: 24
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("LoadConfig() accepted a short JWT secret in release mode")
	}
}

func TestLoadConfig_LocalModeSkipsSecretCheck(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: release
database:
  host: ""
jwt:
  secret: short
  expire_hours: 24
`)

	if _, err := LoadConfig(dir); err != nil {
		t.Fatalf("LoadConfig() error = %v; the secret check must not apply without a database", err)
	}
}
