// Package cmd implements the deploy CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevindeangelesjr/pi-peer-healthcheck/internal/deploy"
)

var (
	flagPeers    string
	flagInterval int
	flagEmail    string
	flagLogFile  string
	flagTimeout  int
	flagSMTP     string

	sourceDir string
	pathsFile string
	logLevel  string
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("deploy version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Install and start the pi-peer-healthcheck agent on this host",
	Long: "deploy provisions the pi-peer-healthcheck monitoring agent on the local host.\n" +
		"It renders the configuration template from the supplied parameters, installs\n" +
		"the configuration, executable, systemd unit, and logrotate policy to their\n" +
		"system locations through sudo, then starts and enables the service.",
	RunE: runDeploy,
}

func init() {
	rootCmd.Flags().StringVarP(&flagPeers, "peers", "p", "", "comma-separated peer hostnames or IPs")
	rootCmd.Flags().IntVarP(&flagInterval, "interval", "i", 0, "seconds between healthcheck cycles")
	rootCmd.Flags().StringVarP(&flagEmail, "email", "e", "", "alert recipient email address")
	rootCmd.Flags().StringVarP(&flagLogFile, "logfile", "l", "", "absolute log file path")
	rootCmd.Flags().IntVarP(&flagTimeout, "timeout", "t", 0, "per-check timeout in seconds")
	rootCmd.Flags().StringVarP(&flagSMTP, "smtpserver", "s", "", "SMTP server for alert delivery")

	for _, name := range []string{"peers", "interval", "email", "logfile", "timeout", "smtpserver"} {
		cobra.CheckErr(rootCmd.MarkFlagRequired(name))
	}

	rootCmd.PersistentFlags().StringVar(&sourceDir, "source-dir", "", "directory holding the local artifacts (default \"dist\")")
	rootCmd.PersistentFlags().StringVar(&pathsFile, "paths", "", "YAML file overriding destination paths")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("deploy version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(logLevel)

	params := deploy.Params{
		Peers:      deploy.SplitPeers(flagPeers),
		Interval:   flagInterval,
		Email:      flagEmail,
		LogFile:    flagLogFile,
		Timeout:    flagTimeout,
		SMTPServer: flagSMTP,
	}
	if err := params.Validate(); err != nil {
		return err
	}

	cfg, err := loadInstallConfig()
	if err != nil {
		return err
	}

	deployer := deploy.NewDeployer(cfg, params, deploy.NewSystemInstaller(), deploy.NewPrivilegeChecker(), logger)
	if err := deployer.Run(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "pi-peer-healthcheck deployed successfully")
	return nil
}

// loadInstallConfig builds the install layout from defaults, the
// optional paths override file, and the --source-dir flag.
func loadInstallConfig() (deploy.InstallConfig, error) {
	cfg := deploy.InstallConfig{}
	if pathsFile != "" {
		if err := cfg.LoadOverrides(pathsFile); err != nil {
			return cfg, err
		}
	}
	if sourceDir != "" {
		cfg.SourceDir = sourceDir
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
