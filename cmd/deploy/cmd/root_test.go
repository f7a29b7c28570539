package cmd

import (
	"bytes"
	"strings"
	"testing"
)

// resetFlags clears flag values and their changed state so each test
// case sees a fresh command; cobra's required-flag tracking would
// otherwise leak between Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()
	for _, name := range []string{"peers", "interval", "email", "logfile", "timeout", "smtpserver"} {
		f := rootCmd.Flags().Lookup(name)
		if f == nil {
			t.Fatalf("flag %q not registered", name)
		}
		if err := f.Value.Set(f.DefValue); err != nil {
			t.Fatalf("reset flag %q: %v", name, err)
		}
		f.Changed = false
	}
	// cobra auto-registers help and version flags on first Execute;
	// reset them too so a prior --help/--version run doesn't leak in.
	for _, name := range []string{"help", "version"} {
		f := rootCmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := f.Value.Set(f.DefValue); err != nil {
			t.Fatalf("reset flag %q: %v", name, err)
		}
		f.Changed = false
	}
}

// execute runs the root command with args and returns its combined
// output and error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("Execute(--help) = %v", err)
	}
	if !strings.Contains(output, "pi-peer-healthcheck") {
		t.Errorf("help output should name the agent, got: %s", output)
	}
	for _, flag := range []string{"-p", "-i", "-e", "-l", "-t", "-s"} {
		if !strings.Contains(output, flag+",") {
			t.Errorf("help output should document %s, got: %s", flag, output)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	output, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("Execute(--version) = %v", err)
	}
	if !strings.Contains(output, "1.2.3") {
		t.Errorf("version output should contain '1.2.3', got: %s", output)
	}
	if !strings.Contains(output, "abc123") {
		t.Errorf("version output should contain 'abc123', got: %s", output)
	}
}

func TestRootCommand_MissingRequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "all missing",
			args: []string{},
			want: "required flag",
		},
		{
			name: "peers missing",
			args: []string{"-i", "30", "-e", "a@b.com", "-l", "/var/log/x.log", "-t", "5", "-s", "smtp.example.com"},
			want: "peers",
		},
		{
			name: "smtpserver missing",
			args: []string{"-p", "a,b", "-i", "30", "-e", "a@b.com", "-l", "/var/log/x.log", "-t", "5"},
			want: "smtpserver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("Execute() = nil, want required-flag error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Execute() error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestRootCommand_UnknownFlag(t *testing.T) {
	_, err := execute(t, "--definitely-not-a-flag")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if !strings.Contains(err.Error(), "unknown flag") {
		t.Errorf("Execute() error = %q, want unknown-flag error", err)
	}
}

func TestRootCommand_NonNumericInterval(t *testing.T) {
	_, err := execute(t,
		"-p", "a", "-i", "soon", "-e", "a@b.com", "-l", "/l", "-t", "5", "-s", "smtp")
	if err == nil {
		t.Fatal("Execute() = nil, want error for non-numeric interval")
	}
}

func TestLoadInstallConfig_SourceDirFlagWins(t *testing.T) {
	sourceDir = "/tmp/release"
	defer func() { sourceDir = "" }()

	cfg, err := loadInstallConfig()
	if err != nil {
		t.Fatalf("loadInstallConfig() = %v", err)
	}
	if cfg.SourceDir != "/tmp/release" {
		t.Errorf("SourceDir = %q, want flag value", cfg.SourceDir)
	}
}
