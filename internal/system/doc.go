// Package system wraps the host interactions the bootstrapper needs:
// running external commands, escalating single operations with sudo,
// create-or-replace symlinks, and the systemd service manager. All
// command execution flows through the Runner interface for testability.
package system
