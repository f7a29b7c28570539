package deploy

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// sudoInstaller implements SystemInstaller by shelling out to sudo for
// every operation. Each call blocks until the sub-process exits and its
// status is checked synchronously; no timeout is applied.
type sudoInstaller struct {
	// runCommand executes a command and returns its combined output.
	// Replaceable in tests.
	runCommand func(name string, args ...string) ([]byte, error)
}

// NewSystemInstaller returns a SystemInstaller that escalates through
// the real sudo binary.
func NewSystemInstaller() SystemInstaller {
	return &sudoInstaller{runCommand: runCombined}
}

func runCombined(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

func (s *sudoInstaller) run(args ...string) error {
	output, err := s.runCommand("sudo", args...)
	if err != nil {
		return fmt.Errorf("deploy: sudo %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(output)), err)
	}
	return nil
}

func (s *sudoInstaller) CreateDir(path string) error {
	return s.run("mkdir", "-p", path)
}

func (s *sudoInstaller) CopyFile(src, dst string) error {
	return s.run("cp", src, dst)
}

func (s *sudoInstaller) SetExecutable(path string) error {
	return s.run("chmod", "+x", path)
}

func (s *sudoInstaller) ReloadUnits() error {
	return s.run("systemctl", "daemon-reload")
}

func (s *sudoInstaller) StartService(service string) error {
	return s.run("systemctl", "start", service)
}

func (s *sudoInstaller) EnableService(service string) error {
	return s.run("systemctl", "enable", service)
}

func (s *sudoInstaller) StopService(service string) error {
	return s.run("systemctl", "stop", service)
}

func (s *sudoInstaller) DisableService(service string) error {
	return s.run("systemctl", "disable", service)
}

func (s *sudoInstaller) RemovePath(path string) error {
	return s.run("rm", "-f", path)
}

func (s *sudoInstaller) RemoveTree(path string) error {
	return s.run("rm", "-rf", path)
}

// euidChecker implements PrivilegeChecker using the effective UID.
type euidChecker struct{}

// NewPrivilegeChecker returns a PrivilegeChecker that inspects the real
// process identity.
func NewPrivilegeChecker() PrivilegeChecker {
	return euidChecker{}
}

func (euidChecker) IsRoot() bool {
	return unix.Geteuid() == 0
}
