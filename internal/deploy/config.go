// Package deploy installs, activates, and removes the
// pi-peer-healthcheck agent on the local host. All privileged host
// mutations go through the SystemInstaller boundary and escalate per
// operation via sudo; the deploy tool itself must run unprivileged.
package deploy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSourceDir is the default directory holding the local artifacts.
const DefaultSourceDir = "dist"

// DefaultConfigDir is the system configuration directory.
const DefaultConfigDir = "/etc/pi-peer-healthcheck"

// DefaultBinaryPath is the install path of the monitoring executable.
const DefaultBinaryPath = "/usr/local/bin/pi-peer-healthcheck"

// DefaultUnitFilePath is the install path of the systemd unit file.
const DefaultUnitFilePath = "/etc/systemd/system/pi-peer-healthcheck.service"

// DefaultLogrotateDir is the logrotate policy directory.
const DefaultLogrotateDir = "/etc/logrotate.d"

// DefaultServiceName is the systemd service name.
const DefaultServiceName = "pi-peer-healthcheck"

// DefaultLogFile is the log path shipped in the logrotate policy before
// rendering.
const DefaultLogFile = "/var/log/pi-peer-healthcheck.log"

// Params holds the user-supplied healthcheck parameters rendered into
// the deployed configuration file. All six fields are required.
// Constructed once per invocation from CLI input and never mutated.
type Params struct {
	// Peers are the monitored hostnames or IP addresses, in CLI order.
	Peers []string

	// Interval is the number of seconds between healthcheck cycles.
	Interval int

	// Email is the alert recipient address.
	Email string

	// LogFile is the absolute path of the agent log file.
	LogFile string

	// Timeout is the per-check timeout in seconds.
	Timeout int

	// SMTPServer is the SMTP relay for alert delivery.
	SMTPServer string
}

// SplitPeers splits a comma-separated peer list into individual peers.
// Values are taken verbatim: no whitespace trimming is performed.
func SplitPeers(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// PeerLine returns the space-separated peer list written to the
// configuration file.
func (p Params) PeerLine() string {
	return strings.Join(p.Peers, " ")
}

// Validate checks that all six required parameters are present and
// that the numeric ones are positive.
func (p Params) Validate() error {
	if len(p.Peers) == 0 {
		return errors.New("deploy: params: at least one peer is required")
	}
	for _, peer := range p.Peers {
		if peer == "" {
			return errors.New("deploy: params: peer list contains an empty entry")
		}
	}
	if p.Interval <= 0 {
		return errors.New("deploy: params: interval must be a positive number of seconds")
	}
	if p.Email == "" {
		return errors.New("deploy: params: email is required")
	}
	if p.LogFile == "" {
		return errors.New("deploy: params: logfile is required")
	}
	if p.Timeout <= 0 {
		return errors.New("deploy: params: timeout must be a positive number of seconds")
	}
	if p.SMTPServer == "" {
		return errors.New("deploy: params: smtp server is required")
	}
	return nil
}

// InstallConfig holds the source and destination layout of a
// deployment. Zero values are filled by ApplyDefaults; non-standard
// hosts can override individual paths through a YAML file loaded with
// LoadOverrides.
type InstallConfig struct {
	// SourceDir is the local directory holding the artifacts to install.
	// Default: dist
	SourceDir string `yaml:"source_dir"`

	// ConfigDir is the system configuration directory.
	// Default: /etc/pi-peer-healthcheck
	ConfigDir string `yaml:"config_dir"`

	// BinaryPath is the install path of the monitoring executable.
	// Default: /usr/local/bin/pi-peer-healthcheck
	BinaryPath string `yaml:"binary_path"`

	// UnitFilePath is the install path of the systemd unit file.
	// Default: /etc/systemd/system/pi-peer-healthcheck.service
	UnitFilePath string `yaml:"unit_file_path"`

	// LogrotateDir is the logrotate policy directory.
	// Default: /etc/logrotate.d
	LogrotateDir string `yaml:"logrotate_dir"`

	// ServiceName is the systemd service name.
	// Default: pi-peer-healthcheck
	ServiceName string `yaml:"service_name"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *InstallConfig) ApplyDefaults() {
	if c.SourceDir == "" {
		c.SourceDir = DefaultSourceDir
	}
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir
	}
	if c.BinaryPath == "" {
		c.BinaryPath = DefaultBinaryPath
	}
	if c.UnitFilePath == "" {
		c.UnitFilePath = DefaultUnitFilePath
	}
	if c.LogrotateDir == "" {
		c.LogrotateDir = DefaultLogrotateDir
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
}

// Validate checks that required fields are set.
func (c *InstallConfig) Validate() error {
	if c.SourceDir == "" {
		return errors.New("deploy: config: SourceDir is required")
	}
	if c.ConfigDir == "" {
		return errors.New("deploy: config: ConfigDir is required")
	}
	if c.BinaryPath == "" {
		return errors.New("deploy: config: BinaryPath is required")
	}
	if c.UnitFilePath == "" {
		return errors.New("deploy: config: UnitFilePath is required")
	}
	if c.LogrotateDir == "" {
		return errors.New("deploy: config: LogrotateDir is required")
	}
	if c.ServiceName == "" {
		return errors.New("deploy: config: ServiceName is required")
	}
	return nil
}

// LoadOverrides reads a YAML path-overrides file into c. Fields absent
// from the file keep their current values.
func (c *InstallConfig) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("deploy: config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("deploy: config: parse %s: %w", path, err)
	}
	return nil
}

// Artifact pairs a local source file with its system destination.
type Artifact struct {
	Name   string
	Source string
	Dest   string
}

// ConfigSource returns the local path of the configuration template.
func (c InstallConfig) ConfigSource() string {
	return filepath.Join(c.SourceDir, DefaultServiceName+".conf")
}

// ConfigDest returns the installed path of the configuration file.
func (c InstallConfig) ConfigDest() string {
	return filepath.Join(c.ConfigDir, DefaultServiceName+".conf")
}

// ExecutableSource returns the local path of the monitoring executable.
func (c InstallConfig) ExecutableSource() string {
	return filepath.Join(c.SourceDir, DefaultServiceName)
}

// UnitSource returns the local path of the systemd unit file.
func (c InstallConfig) UnitSource() string {
	return filepath.Join(c.SourceDir, DefaultServiceName+".service")
}

// LogrotateSource returns the local path of the logrotate policy.
func (c InstallConfig) LogrotateSource() string {
	return filepath.Join(c.SourceDir, DefaultServiceName+".logrotate")
}

// LogrotateDest returns the installed path of the logrotate policy.
func (c InstallConfig) LogrotateDest() string {
	return filepath.Join(c.LogrotateDir, c.ServiceName)
}

// Artifacts returns the deployable artifact set in install order.
// The logrotate policy comes last; it is the only optional artifact.
func (c InstallConfig) Artifacts() []Artifact {
	return []Artifact{
		{Name: "config", Source: c.ConfigSource(), Dest: c.ConfigDest()},
		{Name: "executable", Source: c.ExecutableSource(), Dest: c.BinaryPath},
		{Name: "unit", Source: c.UnitSource(), Dest: c.UnitFilePath},
		{Name: "logrotate", Source: c.LogrotateSource(), Dest: c.LogrotateDest()},
	}
}
