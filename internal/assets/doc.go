// Package assets fetches the static system-integration files (udev rule,
// systemd unit template) over HTTPS and verifies them against a published
// SHA-512 manifest before they are handed to a privileged install step.
package assets
