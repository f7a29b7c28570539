package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevindeangelesjr/pi-peer-healthcheck/internal/deploy"
)

var uninstallPurge bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the pi-peer-healthcheck service from this host",
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallPurge, "purge", false, "also remove the configuration directory")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(logLevel)

	cfg, err := loadInstallConfig()
	if err != nil {
		return err
	}

	deployer := deploy.NewDeployer(cfg, deploy.Params{}, deploy.NewSystemInstaller(), deploy.NewPrivilegeChecker(), logger)
	if err := deployer.Uninstall(uninstallPurge); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "pi-peer-healthcheck removed")
	return nil
}
