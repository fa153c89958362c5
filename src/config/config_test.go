package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() returned %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() returned %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, expected %+v", cfg, Default())
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "liftbank.yaml", `
http_addr: "127.0.0.1:9000"
quic_addr: ""
log_level: debug
step_interval: 1500ms
elevators: 4
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned %v", err)
	}
	want := Config{
		HTTPAddr:     "127.0.0.1:9000",
		QUICAddr:     "",
		LogLevel:     "debug",
		StepInterval: 1500 * time.Millisecond,
		Elevators:    4,
	}
	if cfg != want {
		t.Errorf("Load() = %+v, expected %+v", cfg, want)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeFile(t, "liftbank.yaml", "floors: 12\n")
	if _, err := Load(path, ""); err == nil {
		t.Errorf("Load() accepted an unknown field")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Errorf("Load() accepted a missing config file")
	}
	if _, err := Load("", filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("Load() with missing .env returned %v", err)
	}
}

func TestDefaultConfigFileIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(DefaultConfigFile, "")
	if err != nil {
		t.Fatalf("Load(%s) without the file returned %v", DefaultConfigFile, err)
	}
	if cfg != Default() {
		t.Errorf("Load(%s) = %+v, expected %+v", DefaultConfigFile, cfg, Default())
	}

	if err := os.WriteFile(DefaultConfigFile, []byte("elevators: 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() returned %v", err)
	}
	cfg, err = Load(DefaultConfigFile, "")
	if err != nil || cfg.Elevators != 3 {
		t.Errorf("Load(%s) = %+v, %v, expected elevators 3 from the file", DefaultConfigFile, cfg, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "liftbank.yaml", "elevators: 2\nlog_level: warn\n")
	envFile := writeFile(t, ".env", "LIFTBANK_ELEVATORS=6\nLIFTBANK_QUIC_ADDR=:9443\nLIFTBANK_STEP_INTERVAL=2s\n")
	t.Setenv(EnvQUICAddr, ":7443")

	cfg, err := Load(path, envFile)
	if err != nil {
		t.Fatalf("Load() returned %v", err)
	}
	if cfg.Elevators != 6 {
		t.Errorf("Elevators = %d, expected 6 from .env", cfg.Elevators)
	}
	if cfg.QUICAddr != ":7443" {
		t.Errorf("QUICAddr = %s, expected the process environment to win", cfg.QUICAddr)
	}
	if cfg.StepInterval != 2*time.Second || cfg.LogLevel != "warn" {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestEnvParseErrors(t *testing.T) {
	t.Setenv(EnvElevators, "many")
	if _, err := Load("", ""); err == nil {
		t.Errorf("Load() accepted %s=many", EnvElevators)
	}
	t.Setenv(EnvElevators, "1")
	t.Setenv(EnvStepInterval, "soon")
	if _, err := Load("", ""); err == nil {
		t.Errorf("Load() accepted %s=soon", EnvStepInterval)
	}
}

func TestValidate(t *testing.T) {
	bad := []Config{
		{LogLevel: "info"},
		{HTTPAddr: ":1", LogLevel: "shouty"},
		{HTTPAddr: ":1", LogLevel: "info", StepInterval: -time.Second},
		{HTTPAddr: ":1", LogLevel: "info", Elevators: -1},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, expected an error", cfg)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}
