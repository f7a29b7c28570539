package deploy

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/kevindeangelesjr/pi-peer-healthcheck/internal/render"
)

var errRunAsRoot = errors.New("deploy: refusing to run as root: deployed files would end up owned by the wrong identity; run as an unprivileged user and sudo is invoked per operation")

// Deployer runs the ordered deployment pipeline for the
// pi-peer-healthcheck agent: render the local configuration template,
// install the artifact set, then activate the service. Stages run
// strictly top to bottom and the first failure aborts the run; stages
// already applied are not rolled back, so a re-run after fixing the
// root cause is the recovery path. Every install step overwrites in
// place, which makes re-running safe.
type Deployer struct {
	cfg    InstallConfig
	params Params
	system SystemInstaller
	priv   PrivilegeChecker
	logger *slog.Logger

	// lookPath probes for the optional logrotate subsystem.
	// Replaceable in tests.
	lookPath func(file string) (string, error)
}

// NewDeployer creates a Deployer with defaults applied.
func NewDeployer(cfg InstallConfig, params Params, system SystemInstaller, priv PrivilegeChecker, logger *slog.Logger) *Deployer {
	cfg.ApplyDefaults()
	return &Deployer{
		cfg:      cfg,
		params:   params,
		system:   system,
		priv:     priv,
		logger:   logger.With("component", "deploy"),
		lookPath: exec.LookPath,
	}
}

// stage is one step of the deployment pipeline.
type stage struct {
	name string
	run  func() error
}

func (d *Deployer) stages() []stage {
	return []stage{
		{"guard", d.checkPrivileges},
		{"render-config", d.renderConfig},
		{"create-config-dir", d.createConfigDir},
		{"install-config", d.installConfig},
		{"install-executable", d.installExecutable},
		{"install-unit", d.installUnit},
		{"activate-service", d.activateService},
	}
}

// Run executes the deployment pipeline. The log rotation stage runs
// after the mandatory stages and never fails the run: a host without
// logrotate gets a warning and a successful exit.
func (d *Deployer) Run() error {
	for _, st := range d.stages() {
		if err := st.run(); err != nil {
			return fmt.Errorf("deploy: stage %s: %w", st.name, err)
		}
		d.logger.Info("stage completed", "stage", st.name)
	}

	d.configureLogrotate()

	d.logger.Info("deployment complete", "service", d.cfg.ServiceName)
	return nil
}

// checkPrivileges refuses execution under the superuser identity.
// This guard is unconditional and runs before any mutation.
func (d *Deployer) checkPrivileges() error {
	if d.priv.IsRoot() {
		return errRunAsRoot
	}
	return nil
}

// renderConfig rewrites the six recognized keys of the local
// configuration template in place. A missing or unwritable template is
// fatal.
func (d *Deployer) renderConfig() error {
	assignments := []render.Assignment{
		{Key: render.KeyPeers, Value: d.params.PeerLine()},
		{Key: render.KeyInterval, Value: strconv.Itoa(d.params.Interval)},
		{Key: render.KeyEmail, Value: d.params.Email},
		{Key: render.KeyLogFile, Value: d.params.LogFile},
		{Key: render.KeyTimeout, Value: strconv.Itoa(d.params.Timeout)},
		{Key: render.KeySMTP, Value: d.params.SMTPServer},
	}
	return render.RenderFile(d.cfg.ConfigSource(), assignments)
}

func (d *Deployer) createConfigDir() error {
	if err := d.system.CreateDir(d.cfg.ConfigDir); err != nil {
		return fmt.Errorf("create directory %s: %w", d.cfg.ConfigDir, err)
	}
	return nil
}

func (d *Deployer) installConfig() error {
	if err := d.system.CopyFile(d.cfg.ConfigSource(), d.cfg.ConfigDest()); err != nil {
		return fmt.Errorf("copy to %s: %w", d.cfg.ConfigDest(), err)
	}
	return nil
}

// installExecutable copies the monitoring executable and grants execute
// permission. A failed permission grant is as fatal as a failed copy.
func (d *Deployer) installExecutable() error {
	if err := d.system.CopyFile(d.cfg.ExecutableSource(), d.cfg.BinaryPath); err != nil {
		return fmt.Errorf("copy to %s: %w", d.cfg.BinaryPath, err)
	}
	if err := d.system.SetExecutable(d.cfg.BinaryPath); err != nil {
		return fmt.Errorf("set execute permission on %s: %w", d.cfg.BinaryPath, err)
	}
	return nil
}

func (d *Deployer) installUnit() error {
	if err := d.system.CopyFile(d.cfg.UnitSource(), d.cfg.UnitFilePath); err != nil {
		return fmt.Errorf("copy to %s: %w", d.cfg.UnitFilePath, err)
	}
	return nil
}

// activateService reloads unit definitions, starts the service, then
// enables it for boot. Each step is a precondition for the next; there
// is no retry, a transient failure is surfaced to the operator.
func (d *Deployer) activateService() error {
	if err := d.system.ReloadUnits(); err != nil {
		return fmt.Errorf("reload units for service %s: %w", d.cfg.ServiceName, err)
	}
	if err := d.system.StartService(d.cfg.ServiceName); err != nil {
		return fmt.Errorf("start service %s: %w", d.cfg.ServiceName, err)
	}
	if err := d.system.EnableService(d.cfg.ServiceName); err != nil {
		return fmt.Errorf("enable service %s: %w", d.cfg.ServiceName, err)
	}
	return nil
}

// configureLogrotate patches the log path inside the local rotation
// policy and installs it. Log rotation is an optional enhancement:
// every failure here is a warning, never a fatal error.
func (d *Deployer) configureLogrotate() {
	if _, err := d.lookPath("logrotate"); err != nil {
		d.logger.Warn("logrotate not found on this host, skipping log rotation setup")
		return
	}

	src := d.cfg.LogrotateSource()
	if err := render.RenderPathLine(src, DefaultLogFile, d.params.LogFile); err != nil {
		d.logger.Warn("failed to render log rotation policy", "path", src, "error", err)
		return
	}

	dst := d.cfg.LogrotateDest()
	if err := d.system.CopyFile(src, dst); err != nil {
		d.logger.Warn("failed to install log rotation policy", "path", dst, "error", err)
		return
	}

	d.logger.Info("log rotation policy installed", "path", dst)
}

// Uninstall removes the deployed service from the host. Stop and
// disable failures are logged and ignored so that a partially deployed
// host can still be cleaned up. If purge is true the configuration
// directory is removed as well.
func (d *Deployer) Uninstall(purge bool) error {
	if d.priv.IsRoot() {
		return errRunAsRoot
	}

	if err := d.system.StopService(d.cfg.ServiceName); err != nil {
		d.logger.Info("stop service", "error", err)
	}
	if err := d.system.DisableService(d.cfg.ServiceName); err != nil {
		d.logger.Info("disable service", "error", err)
	}

	if err := d.system.RemovePath(d.cfg.UnitFilePath); err != nil {
		return fmt.Errorf("deploy: remove unit file %s: %w", d.cfg.UnitFilePath, err)
	}
	if err := d.system.ReloadUnits(); err != nil {
		return fmt.Errorf("deploy: reload units for service %s: %w", d.cfg.ServiceName, err)
	}
	if err := d.system.RemovePath(d.cfg.BinaryPath); err != nil {
		return fmt.Errorf("deploy: remove binary %s: %w", d.cfg.BinaryPath, err)
	}
	if err := d.system.RemovePath(d.cfg.LogrotateDest()); err != nil {
		return fmt.Errorf("deploy: remove log rotation policy %s: %w", d.cfg.LogrotateDest(), err)
	}

	if purge {
		if err := d.system.RemoveTree(d.cfg.ConfigDir); err != nil {
			return fmt.Errorf("deploy: remove directory %s: %w", d.cfg.ConfigDir, err)
		}
		d.logger.Info("configuration directory removed", "path", d.cfg.ConfigDir)
	}

	d.logger.Info("service removed", "service", d.cfg.ServiceName)
	return nil
}
