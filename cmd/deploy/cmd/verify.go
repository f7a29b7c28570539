package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevindeangelesjr/pi-peer-healthcheck/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check installed artifacts against their local sources",
	Long: "verify hashes each local artifact and its installed copy and reports\n" +
		"any divergence. A missing logrotate policy is reported but tolerated,\n" +
		"matching the deploy behavior on hosts without logrotate.",
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	cfg, err := loadInstallConfig()
	if err != nil {
		return err
	}

	mismatched := 0
	for _, artifact := range cfg.Artifacts() {
		if artifact.Name == "logrotate" {
			if _, err := os.Stat(artifact.Dest); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s not installed (optional)\n", artifact.Name)
				continue
			}
		}

		result, err := verify.CompareFiles(artifact.Name, artifact.Source, artifact.Dest)
		if err != nil {
			return err
		}
		if result.Match {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s ok %s\n", result.Name, result.InstalledSum)
		} else {
			mismatched++
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s MISMATCH source=%s installed=%s\n", result.Name, result.SourceSum, result.InstalledSum)
		}
	}

	if mismatched > 0 {
		return fmt.Errorf("verify: %d artifact(s) diverge from their sources", mismatched)
	}
	return nil
}
