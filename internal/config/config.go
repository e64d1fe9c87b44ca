package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hhd-dev/hhd-bootstrap/internal/paths"
)

// Config holds every path and endpoint the bootstrapper touches. All
// mutating steps receive these values explicitly instead of relying on
// the working directory or process environment.
type Config struct {
	// DataDir is the install root holding the virtual environment.
	DataDir string `yaml:"data_dir"`
	// BinDir is the user-local binary directory receiving the symlink.
	BinDir string `yaml:"bin_dir"`
	// PackageName is the package installed from the package index.
	PackageName string `yaml:"package"`
	// PythonInterpreter creates the virtual environment.
	PythonInterpreter string `yaml:"python"`
	// AssetBaseURL is the HTTPS location of the static system files.
	AssetBaseURL string `yaml:"asset_base_url"`
	// ManifestName is the checksum manifest fetched from AssetBaseURL.
	ManifestName string `yaml:"manifest"`
	// UdevRulePath is the privileged destination of the udev rule.
	UdevRulePath string `yaml:"udev_rule_path"`
	// UnitPath is the privileged destination of the systemd unit template.
	UnitPath string `yaml:"unit_path"`
	// ServiceTemplate is the systemd template name, instantiated with the
	// invoking username (e.g. hhd_local@alice.service).
	ServiceTemplate string `yaml:"service_template"`
	// Timeout bounds network operations and spawned commands.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultPackageName is the package installed into the environment.
	DefaultPackageName = "hhd"

	// DefaultPythonInterpreter creates the virtual environment.
	DefaultPythonInterpreter = "python3"

	// DefaultAssetBaseURL hosts the udev rule and unit template shipped
	// with the daemon sources.
	DefaultAssetBaseURL = "https://raw.githubusercontent.com/hhd-dev/hhd/master/usr/"

	// DefaultManifestName is the checksum manifest published next to the assets.
	DefaultManifestName = "manifest.yaml"

	// DefaultUdevRulePath grants unprivileged access to the handheld's hidraw nodes.
	DefaultUdevRulePath = "/etc/udev/rules.d/83-hhd.rules"

	// DefaultUnitPath is where the systemd unit template is installed.
	DefaultUnitPath = "/etc/systemd/system/hhd_local@.service"

	// DefaultServiceTemplate is the systemd template the installer enables.
	DefaultServiceTemplate = "hhd_local@"

	// DefaultTimeout bounds network fetches and spawned commands.
	// Package installation can pull large wheels, so it is generous.
	DefaultTimeout = 10 * time.Minute

	// DefaultFilePermissions is the permission for the persisted settings file.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadAssetURL is returned when the asset base URL cannot be parsed.
	errBadAssetURL = errors.New("asset base URL must be a valid http(s) URL")
	// errRelativePath is returned when a privileged destination is not absolute.
	errRelativePath = errors.New("privileged destination must be an absolute path")
	// errBadServiceTemplate is returned for template names without the '@' instance marker.
	errBadServiceTemplate = errors.New("service template must end with '@'")
)

// Default returns a configuration filled with the stock hhd deployment values.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// An empty path selects the default location, and a missing file there is
// not an error: the stock configuration is returned instead.
func Load(path string) (*Config, error) {
	usingDefaultPath := path == ""
	if usingDefaultPath {
		path = paths.ConfigFile()
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if usingDefaultPath && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = paths.ConfigFile()
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills unset fields with defaults and checks the rest for sanity.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	parsed, err := url.Parse(cfg.AssetBaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return fmt.Errorf("%q: %w", cfg.AssetBaseURL, errBadAssetURL)
	}

	for _, p := range []string{cfg.UdevRulePath, cfg.UnitPath} {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("%q: %w", p, errRelativePath)
		}
	}

	if !strings.HasSuffix(cfg.ServiceTemplate, "@") {
		return fmt.Errorf("%q: %w", cfg.ServiceTemplate, errBadServiceTemplate)
	}

	return nil
}

// applyDefaults replaces zero values with the stock deployment values.
func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = paths.DataDir()
	}

	if cfg.BinDir == "" {
		cfg.BinDir = paths.BinDir()
	}

	if cfg.PackageName == "" {
		cfg.PackageName = DefaultPackageName
	}

	if cfg.PythonInterpreter == "" {
		cfg.PythonInterpreter = DefaultPythonInterpreter
	}

	if cfg.AssetBaseURL == "" {
		cfg.AssetBaseURL = DefaultAssetBaseURL
	}

	if cfg.ManifestName == "" {
		cfg.ManifestName = DefaultManifestName
	}

	if cfg.UdevRulePath == "" {
		cfg.UdevRulePath = DefaultUdevRulePath
	}

	if cfg.UnitPath == "" {
		cfg.UnitPath = DefaultUnitPath
	}

	if cfg.ServiceTemplate == "" {
		cfg.ServiceTemplate = DefaultServiceTemplate
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
}
