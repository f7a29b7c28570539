package deploy

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestInstallConfig_ApplyDefaults(t *testing.T) {
	cfg := InstallConfig{}
	cfg.ApplyDefaults()

	if cfg.SourceDir != "dist" {
		t.Errorf("SourceDir = %q, want %q", cfg.SourceDir, "dist")
	}
	if cfg.ConfigDir != "/etc/pi-peer-healthcheck" {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, "/etc/pi-peer-healthcheck")
	}
	if cfg.BinaryPath != "/usr/local/bin/pi-peer-healthcheck" {
		t.Errorf("BinaryPath = %q, want %q", cfg.BinaryPath, "/usr/local/bin/pi-peer-healthcheck")
	}
	if cfg.UnitFilePath != "/etc/systemd/system/pi-peer-healthcheck.service" {
		t.Errorf("UnitFilePath = %q, want %q", cfg.UnitFilePath, "/etc/systemd/system/pi-peer-healthcheck.service")
	}
	if cfg.LogrotateDir != "/etc/logrotate.d" {
		t.Errorf("LogrotateDir = %q, want %q", cfg.LogrotateDir, "/etc/logrotate.d")
	}
	if cfg.ServiceName != "pi-peer-healthcheck" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "pi-peer-healthcheck")
	}
}

func TestInstallConfig_CustomValuesPreserved(t *testing.T) {
	cfg := InstallConfig{
		SourceDir:    "/opt/release",
		ConfigDir:    "/opt/etc",
		BinaryPath:   "/opt/bin/pi-peer-healthcheck",
		UnitFilePath: "/usr/lib/systemd/system/pi-peer-healthcheck.service",
		LogrotateDir: "/opt/logrotate.d",
		ServiceName:  "peer-check",
	}
	want := cfg
	cfg.ApplyDefaults()

	if cfg != want {
		t.Errorf("ApplyDefaults() changed explicit values: got %+v, want %+v", cfg, want)
	}
}

func TestInstallConfig_Artifacts(t *testing.T) {
	cfg := InstallConfig{}
	cfg.ApplyDefaults()

	artifacts := cfg.Artifacts()
	wantNames := []string{"config", "executable", "unit", "logrotate"}
	if len(artifacts) != len(wantNames) {
		t.Fatalf("Artifacts() returned %d entries, want %d", len(artifacts), len(wantNames))
	}
	for i, want := range wantNames {
		if artifacts[i].Name != want {
			t.Errorf("artifact %d = %q, want %q", i, artifacts[i].Name, want)
		}
	}

	if artifacts[0].Source != filepath.Join("dist", "pi-peer-healthcheck.conf") {
		t.Errorf("config source = %q", artifacts[0].Source)
	}
	if artifacts[0].Dest != "/etc/pi-peer-healthcheck/pi-peer-healthcheck.conf" {
		t.Errorf("config dest = %q", artifacts[0].Dest)
	}
	if artifacts[3].Dest != "/etc/logrotate.d/pi-peer-healthcheck" {
		t.Errorf("logrotate dest = %q", artifacts[3].Dest)
	}
}

func TestInstallConfig_LoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.yaml")
	content := "unit_file_path: /usr/lib/systemd/system/pi-peer-healthcheck.service\nlogrotate_dir: /opt/logrotate.d\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) = %v", path, err)
	}

	cfg := InstallConfig{}
	if err := cfg.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides() = %v", err)
	}
	cfg.ApplyDefaults()

	if cfg.UnitFilePath != "/usr/lib/systemd/system/pi-peer-healthcheck.service" {
		t.Errorf("UnitFilePath = %q, want override applied", cfg.UnitFilePath)
	}
	if cfg.LogrotateDir != "/opt/logrotate.d" {
		t.Errorf("LogrotateDir = %q, want override applied", cfg.LogrotateDir)
	}
	// Fields absent from the file fall back to defaults.
	if cfg.BinaryPath != DefaultBinaryPath {
		t.Errorf("BinaryPath = %q, want default %q", cfg.BinaryPath, DefaultBinaryPath)
	}
}

func TestInstallConfig_LoadOverrides_MissingFile(t *testing.T) {
	cfg := InstallConfig{}
	if err := cfg.LoadOverrides(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadOverrides() = nil, want error for missing file")
	}
}

func TestSplitPeers_Verbatim(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single", "10.0.0.1", []string{"10.0.0.1"}},
		{"multiple", "10.0.0.1,10.0.0.2", []string{"10.0.0.1", "10.0.0.2"}},
		{"whitespace kept verbatim", " a ,b", []string{" a ", "b"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPeers(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitPeers(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParams_PeerLine(t *testing.T) {
	p := Params{Peers: []string{"10.0.0.1", "10.0.0.2"}}
	if got := p.PeerLine(); got != "10.0.0.1 10.0.0.2" {
		t.Errorf("PeerLine() = %q, want %q", got, "10.0.0.1 10.0.0.2")
	}
}

func validParams() Params {
	return Params{
		Peers:      []string{"10.0.0.1", "10.0.0.2"},
		Interval:   30,
		Email:      "a@b.com",
		LogFile:    "/var/log/x.log",
		Timeout:    5,
		SMTPServer: "smtp.example.com",
	}
}

func TestParams_Validate(t *testing.T) {
	if err := validParams().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestParams_Validate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no peers", func(p *Params) { p.Peers = nil }},
		{"empty peer entry", func(p *Params) { p.Peers = []string{"a", ""} }},
		{"zero interval", func(p *Params) { p.Interval = 0 }},
		{"negative interval", func(p *Params) { p.Interval = -1 }},
		{"empty email", func(p *Params) { p.Email = "" }},
		{"empty logfile", func(p *Params) { p.LogFile = "" }},
		{"zero timeout", func(p *Params) { p.Timeout = 0 }},
		{"empty smtp server", func(p *Params) { p.SMTPServer = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}
