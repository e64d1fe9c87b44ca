package installer

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/hhd-dev/hhd-bootstrap/internal/assets"
	"github.com/hhd-dev/hhd-bootstrap/internal/config"
	"github.com/hhd-dev/hhd-bootstrap/internal/logger"
	"github.com/hhd-dev/hhd-bootstrap/internal/paths"
	"github.com/hhd-dev/hhd-bootstrap/internal/pyenv"
	"github.com/hhd-dev/hhd-bootstrap/internal/system"
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// SkipVerify disables checksum verification of the downloaded
	// system files. Intended for asset hosts without a manifest.
	SkipVerify bool
	// Runner executes host commands; nil selects the real one.
	Runner system.Runner
}

// runner holds the resolved dependencies for a single installation.
// Every step receives explicit paths from the configuration; neither the
// working directory nor the process environment is mutated.
type runner struct {
	cfg        *config.Config
	skipVerify bool

	exec      system.Runner
	escalator *system.Escalator
	systemd   *system.Systemd
	fetcher   *assets.Fetcher
	env       *pyenv.Env

	username   string
	stagingDir string
	results    []StepResult
}

// Run executes the installation and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "install")

	// The guard runs before any mutation, configuration loading included.
	if err := guardNotRoot(os.Geteuid()); err != nil {
		logger.Error(ctx, err.Error())

		return err
	}

	r, err := newRunner(opts)
	if err != nil {
		return err
	}

	defer r.cleanup()

	if err = r.Run(ctx); err != nil {
		logReport(ctx, r.results)

		return err
	}

	logger.Info(ctx, "Installer completed")

	return nil
}

// newRunner loads settings and wires the step dependencies.
func newRunner(opts *Options) (*runner, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	exec := opts.Runner
	if exec == nil {
		exec = system.ExecRunner{}
	}

	escalator := system.NewEscalator(exec)

	return &runner{
		cfg:        cfg,
		skipVerify: opts.SkipVerify,
		exec:       exec,
		escalator:  escalator,
		systemd:    system.NewSystemd(exec, escalator),
		fetcher:    assets.NewFetcher(cfg.AssetBaseURL, cfg.Timeout),
		env:        pyenv.New(paths.VenvDir(cfg.DataDir), cfg.PythonInterpreter, exec),
		username:   currentUser.Username,
	}, nil
}

// step couples a report label with its implementation.
type step struct {
	name string
	fn   func(ctx context.Context) error
}

// Run executes the steps in strict sequence, aborting on the first
// failure. The report then lists which steps completed, which failed and
// which never ran.
func (r *runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	steps := []step{
		{stepProvisionDirs, r.provisionDirectories},
		{stepProvisionEnv, r.provisionEnvironment},
		{stepInstallPackage, r.installPackage},
		{stepInstallSystemFiles, r.installSystemFiles},
		{stepExposeExecutable, r.exposeExecutable},
		{stepEnableService, r.enableService},
	}

	for i, s := range steps {
		logger.InfoKV(ctx, "Running step", "step", s.name)

		if err := s.fn(ctx); err != nil {
			r.results = append(r.results, StepResult{Name: s.name, Status: StepFailed, Err: err})
			for _, rest := range steps[i+1:] {
				r.results = append(r.results, StepResult{Name: rest.name, Status: StepSkipped})
			}

			return fmt.Errorf("%s: %w", s.name, err)
		}

		r.results = append(r.results, StepResult{Name: s.name, Status: StepCompleted})
	}

	fmt.Println(completionNotice(r.serviceInstance(), r.linkPath())) //nolint:forbidigo // Final notice goes to stdout.

	return nil
}

// provisionDirectories creates the install root and the user binary
// directory, keeping whatever is already there.
func (r *runner) provisionDirectories(_ context.Context) error {
	for _, dir := range []string{r.cfg.DataDir, r.cfg.BinDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return nil
}

// provisionEnvironment creates the virtual environment unless a usable
// one already exists from a previous run.
func (r *runner) provisionEnvironment(ctx context.Context) error {
	if r.env.Exists() {
		logger.InfoKV(ctx, "Reusing existing environment", "dir", r.env.Dir)

		return nil
	}

	return r.env.EnsureCreated(ctx)
}

// installPackage installs or upgrades the daemon package inside the
// environment. An already-running daemon keeps the old code until restart.
func (r *runner) installPackage(ctx context.Context) error {
	if running, err := system.ProcessRunning(r.cfg.PackageName); err == nil && running {
		logger.WarnKV(ctx, "Daemon is currently running; the upgrade takes effect after restart",
			"process", r.cfg.PackageName)
	}

	return r.env.InstallPackage(ctx, r.cfg.PackageName)
}

// installSystemFiles fetches, verifies and installs the udev rule and the
// systemd unit template. Verification happens in an unprivileged staging
// directory; only verified content reaches the privileged paths.
func (r *runner) installSystemFiles(ctx context.Context) error {
	stagingDir, err := os.MkdirTemp("", "hhd-bootstrap-")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}

	r.stagingDir = stagingDir

	var manifest *assets.Manifest
	if !r.skipVerify {
		manifest, err = r.fetcher.Manifest(ctx, r.cfg.ManifestName)
		if err != nil {
			return fmt.Errorf("fetch manifest: %w", err)
		}
	}

	for _, asset := range r.systemAssets() {
		staged, err := r.fetcher.Stage(ctx, asset, manifest, stagingDir)
		if err != nil {
			return err
		}

		if err := r.escalator.InstallFile(ctx, staged, asset.TargetPath, asset.Mode); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Installed system file", "path", asset.TargetPath)
	}

	return nil
}

// exposeExecutable links the environment's executable into the user's path.
func (r *runner) exposeExecutable(_ context.Context) error {
	return system.ReplaceSymlink(r.env.BinPath(r.cfg.PackageName), r.linkPath())
}

// enableService enables (without starting) the per-user service instance.
func (r *runner) enableService(ctx context.Context) error {
	return r.systemd.EnableUnit(ctx, r.serviceInstance())
}

// systemAssets lists the static files destined for privileged paths.
func (r *runner) systemAssets() []assets.Asset {
	return []assets.Asset{
		{
			RemotePath: assets.UdevRuleRemotePath,
			TargetPath: r.cfg.UdevRulePath,
			Mode:       assets.SystemFileMode,
		},
		{
			RemotePath: assets.UnitRemotePath,
			TargetPath: r.cfg.UnitPath,
			Mode:       assets.SystemFileMode,
		},
	}
}

// linkPath is the user-facing location of the daemon executable.
func (r *runner) linkPath() string {
	return filepath.Join(r.cfg.BinDir, r.cfg.PackageName)
}

// serviceInstance is the systemd unit instantiated for the invoking user.
func (r *runner) serviceInstance() string {
	return system.ServiceInstance(r.cfg.ServiceTemplate, r.username)
}

// cleanup removes the staging directory.
func (r *runner) cleanup() {
	if r.stagingDir != "" {
		_ = os.RemoveAll(r.stagingDir)
	}
}
