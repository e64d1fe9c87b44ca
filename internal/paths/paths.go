// Package paths resolves the user-level directories touched by the
// bootstrapper. It follows the XDG Base Directory specification via
// github.com/adrg/xdg, so overrides through XDG_DATA_HOME and friends
// behave the same way they do for the daemon itself.
package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// AppDirName is the directory name used for the daemon's install root.
	AppDirName = "hhd"

	// venvDirName is the virtual environment directory inside the install root.
	venvDirName = "venv"

	// configFileName is the optional bootstrapper settings file.
	configFileName = "bootstrap.yaml"
)

// DataDir returns the install root, by default ~/.local/share/hhd.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppDirName)
}

// BinDir returns the user-local binary directory, by default ~/.local/bin.
func BinDir() string {
	return filepath.Join(xdg.Home, ".local", "bin")
}

// ConfigFile returns the default location of the bootstrapper settings,
// by default ~/.config/hhd/bootstrap.yaml.
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppDirName, configFileName)
}

// VenvDir returns the virtual environment directory inside the install root.
func VenvDir(dataDir string) string {
	return filepath.Join(dataDir, venvDirName)
}
