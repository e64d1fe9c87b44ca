package assets

import (
	"bytes"
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	"github.com/hhd-dev/hhd-bootstrap/internal/logger"

	// Ensure SHA512 is available for checksum verification.
	_ "crypto/sha512"
)

const (
	// UdevRuleRemotePath locates the udev rule inside the daemon's source tree.
	UdevRuleRemotePath = "lib/udev/rules.d/83-hhd.rules"

	// UnitRemotePath locates the systemd unit template inside the daemon's source tree.
	UnitRemotePath = "lib/systemd/system/hhd_local@.service"

	// ChecksumFunction hashes assets for manifest verification.
	ChecksumFunction crypto.Hash = crypto.SHA512

	// SystemFileMode is the permission of the staged and installed system files.
	SystemFileMode os.FileMode = 0o644

	// maxFetchRetries bounds transient-failure retries per request.
	maxFetchRetries = 4
)

var (
	errBadHTTPStatus = errors.New("unexpected http status")
	errNoChecksum    = errors.New("checksum missing for asset")
)

// Asset describes one remote file destined for a privileged system path.
type Asset struct {
	// RemotePath is the path of the file relative to the asset base URL.
	RemotePath string
	// TargetPath is the privileged destination on the local system.
	TargetPath string
	// Mode is the permission of the installed file.
	Mode os.FileMode
}

// Manifest carries the published checksums for the static assets,
// keyed by remote path with base64-encoded SHA-512 values.
type Manifest struct {
	// Version is the release the checksums belong to.
	Version string `yaml:"version"`
	// Files maps remote paths to base64-encoded checksums.
	Files map[string]string `yaml:"files"`
}

// Checksum returns the decoded checksum for the given remote path.
func (m *Manifest) Checksum(remotePath string) ([]byte, error) {
	encoded, ok := m.Files[remotePath]
	if !ok {
		return nil, fmt.Errorf("%s: %w", remotePath, errNoChecksum)
	}

	sum, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode checksum for %s: %w", remotePath, err)
	}

	return sum, nil
}

// Fetcher retrieves assets over HTTPS with retries for transient failures.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher builds a fetcher for the given base URL. The timeout bounds
// each individual request, not the whole retry sequence; the caller's
// context bounds that.
func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch downloads one file relative to the base URL. Transient errors are
// retried with exponential backoff; HTTP 4xx responses abort immediately
// since a missing asset will not appear by waiting.
func (f *Fetcher) Fetch(ctx context.Context, remotePath string) ([]byte, error) {
	finalURL, err := f.resolve(remotePath)
	if err != nil {
		return nil, err
	}

	var body []byte

	operation := func() error {
		var fetchErr error

		body, fetchErr = f.fetchOnce(ctx, finalURL)
		if fetchErr != nil {
			var permanent *permanentStatusError
			if errors.As(fetchErr, &permanent) {
				return backoff.Permanent(fetchErr)
			}

			logger.WarnKV(ctx, "Fetch failed, retrying", "url", finalURL, "error", fetchErr)
		}

		return fetchErr
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxFetchRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", finalURL, err)
	}

	return body, nil
}

// Manifest downloads and parses the checksum manifest.
func (f *Fetcher) Manifest(ctx context.Context, name string) (*Manifest, error) {
	data, err := f.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Stage downloads the asset into stagingDir and verifies it against the
// manifest before anything is handed to a privileged install. A nil
// manifest skips verification; callers opt into that explicitly.
// The staged file path is returned.
func (f *Fetcher) Stage(ctx context.Context, asset Asset, manifest *Manifest, stagingDir string) (string, error) {
	data, err := f.Fetch(ctx, asset.RemotePath)
	if err != nil {
		return "", err
	}

	staged := filepath.Join(stagingDir, path.Base(asset.RemotePath))

	if manifest == nil {
		logger.WarnKV(ctx, "Checksum verification disabled, installing unverified content",
			"asset", asset.RemotePath)

		if err := os.WriteFile(staged, data, asset.Mode); err != nil {
			return "", fmt.Errorf("stage %s: %w", asset.RemotePath, err)
		}

		return staged, nil
	}

	sum, err := manifest.Checksum(asset.RemotePath)
	if err != nil {
		return "", err
	}

	// go-update refuses to create the target, so seed an empty file.
	if _, err := os.Stat(staged); err != nil && os.IsNotExist(err) {
		if err := os.WriteFile(staged, nil, asset.Mode); err != nil {
			return "", fmt.Errorf("stage %s: %w", asset.RemotePath, err)
		}
	}

	options := goupdate.Options{
		TargetPath: staged,
		TargetMode: asset.Mode,
		Checksum:   sum,
		Hash:       ChecksumFunction,
	}
	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("verify %s: %w", asset.RemotePath, err)
	}

	// go-update keeps the previous content around for rollback.
	oldFile := staged + ".old"
	if _, err := os.Stat(oldFile); err == nil {
		_ = os.Remove(oldFile)
	}

	return staged, nil
}

// resolve joins the remote path onto the base URL, normalising slashes.
func (f *Fetcher) resolve(remotePath string) (string, error) {
	base, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	base.Path = path.Join(base.Path, remotePath)

	return base.String(), nil
}

// fetchOnce performs a single GET and reads the body.
func (f *Fetcher) fetchOnce(ctx context.Context, finalURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("%s: %w", response.Status, errBadHTTPStatus)
		if response.StatusCode >= http.StatusBadRequest && response.StatusCode < http.StatusInternalServerError {
			return nil, &permanentStatusError{err: statusErr}
		}

		return nil, statusErr
	}

	return io.ReadAll(response.Body)
}

// permanentStatusError marks HTTP statuses that retrying cannot fix.
type permanentStatusError struct {
	err error
}

func (e *permanentStatusError) Error() string {
	return e.err.Error()
}

func (e *permanentStatusError) Unwrap() error {
	return e.err
}
