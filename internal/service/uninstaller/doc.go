// Package uninstaller reverses the installer: disables the service
// instance, removes the privileged system files, the path symlink and
// the install root. Missing artifacts are skipped, not errors.
package uninstaller
