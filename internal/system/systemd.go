package system

import (
	"context"
)

// Systemd drives the service manager. Enable and disable require
// privilege and go through the escalator; queries run unprivileged.
type Systemd struct {
	runner    Runner
	escalator *Escalator
}

// NewSystemd wraps the runner for service-manager operations.
func NewSystemd(runner Runner, escalator *Escalator) *Systemd {
	return &Systemd{
		runner:    runner,
		escalator: escalator,
	}
}

// EnableUnit marks the unit to start on boot. It does not start it now;
// the daemon expects a fresh session, so a reboot (or manual start) is
// left to the user. systemctl enable is idempotent.
func (s *Systemd) EnableUnit(ctx context.Context, unit string) error {
	return s.escalator.Run(ctx, "systemctl", "enable", unit)
}

// DisableUnit removes the unit from boot activation.
func (s *Systemd) DisableUnit(ctx context.Context, unit string) error {
	return s.escalator.Run(ctx, "systemctl", "disable", unit)
}

// IsUnitEnabled reports whether the unit is enabled. systemctl exits
// non-zero for disabled or unknown units, so errors map to false.
func (s *Systemd) IsUnitEnabled(ctx context.Context, unit string) bool {
	out, err := s.runner.Output(ctx, "systemctl", "is-enabled", unit)

	return err == nil && out == "enabled"
}

// ServiceInstance expands a systemd template name (ending in '@') into
// a concrete instance for the given user, e.g. hhd_local@alice.service.
func ServiceInstance(template, username string) string {
	return template + username + ".service"
}
