// Package status inspects the installation artifacts (install root,
// environment, symlink, system files, service state, running daemon)
// without mutating anything.
package status
