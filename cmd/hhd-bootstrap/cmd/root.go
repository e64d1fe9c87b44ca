package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hhd-dev/hhd-bootstrap/internal/logger"
	"github.com/hhd-dev/hhd-bootstrap/internal/service/installer"
	"github.com/hhd-dev/hhd-bootstrap/internal/service/status"
	"github.com/hhd-dev/hhd-bootstrap/internal/service/uninstaller"
	"github.com/hhd-dev/hhd-bootstrap/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel selects the minimum log level.
	logLevel string
	// skipVerify disables checksum verification of downloaded system files.
	skipVerify bool

	// rootCmd represents the base command for managing the daemon deployment.
	// A bare invocation runs the installation sequence, matching the
	// one-command behavior of the original install script.
	rootCmd = &cobra.Command{
		Use:   "hhd-bootstrap",
		Short: "Install, inspect or remove the per-user deployment of the Handheld Daemon.",
		Long: `Manages the per-user deployment of the Handheld Daemon (hhd):
a Python virtual environment under ~/.local/share/hhd, the hhd package
inside it, the udev rule and systemd unit template under /etc, a symlink
in ~/.local/bin, and the per-user systemd service instance.

Invoked without a subcommand, the full installation sequence runs.
The tool must run unprivileged; the three operations that touch system
state escalate individually via sudo.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if lvl, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLogger(logger.New(nil, logger.WithLevel(lvl)))
			}
		},
		RunE: runInstall,
	}

	// installCmd performs the full installation sequence explicitly.
	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Provision the environment, install the package and register the service.",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}

	// uninstallCmd removes every artifact the installer created.
	uninstallCmd = &cobra.Command{
		Use:   "uninstall",
		Short: "Disable the service and remove every installed artifact.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return uninstaller.Run(ctx, &uninstaller.Options{ConfigPath: configPath})
		},
	}

	// statusCmd reports the state of every artifact without mutating anything.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Report the state of the installation.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return status.Run(ctx, &status.Options{ConfigPath: configPath})
		},
	}
)

// runInstall executes the installation sequence. It backs both the bare
// root invocation and the explicit install subcommand.
func runInstall(_ *cobra.Command, _ []string) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return installer.Run(ctx, &installer.Options{
		ConfigPath: configPath,
		SkipVerify: skipVerify,
	})
}

// Execute runs the hhd-bootstrap CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to configuration file (default: XDG config dir)")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")

	// The verify opt-out binds to both install entry points, not to
	// uninstall/status, so it stays a local flag rather than persistent.
	for _, c := range []*cobra.Command{rootCmd, installCmd} {
		c.Flags().
			BoolVar(&skipVerify, "insecure-skip-verify", false, "install downloaded system files without checksum verification")
	}

	rootCmd.AddCommand(installCmd, uninstallCmd, statusCmd)
}
