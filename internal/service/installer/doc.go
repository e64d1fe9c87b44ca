// Package installer provisions the per-user deployment of the daemon:
// install root, Python virtual environment, package installation, the
// two privileged system files, the path symlink, and the systemd service
// instance. Steps run in strict sequence; the first failure aborts the
// run and the report states what completed and what never ran.
package installer
