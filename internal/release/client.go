// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package release downloads the prebuilt analytical database from a GitHub
// release asset or a direct pre-signed URL.
//
// The fetcher resolves a release manifest (latest or tagged), scans its asset
// list for an exact name match, and streams the asset body to disk in 1 MiB
// chunks through a temp file that is renamed into place on success, so a
// failed transfer never leaves a plausible-looking partial database at the
// destination path. No checksum is verified; the caller applies a
// minimum-size sanity check after the fetch.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/BDepanfilis/olist-analytics-public/internal/logging"
	"github.com/BDepanfilis/olist-analytics-public/internal/metrics"
)

const (
	// DefaultAPIBaseURL is the GitHub REST API endpoint.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultManifestTimeout bounds release manifest calls.
	DefaultManifestTimeout = 60 * time.Second

	// DefaultTransferTimeout bounds the binary download. The database is a
	// few hundred MB on slow links.
	DefaultTransferTimeout = 10 * time.Minute

	// TagLatest is the sentinel tag resolving to the newest release.
	TagLatest = "latest"

	apiVersionHeader = "2022-11-28"
	acceptJSON       = "application/vnd.github+json"
	acceptOctet      = "application/octet-stream"

	// chunkSize keeps transfer memory use independent of asset size.
	chunkSize = 1 << 20
)

// Sentinel errors. Callers distinguish missing configuration (fatal for a
// strategy before any network I/O), a present release without the named
// asset, and transfer failures.
var (
	ErrMissingCoordinates = errors.New("missing release coordinates")
	ErrAssetNotFound      = errors.New("release asset not found")
	ErrTransfer           = errors.New("asset transfer failed")
)

// Coordinates identify one release asset in one repository. Token must have
// read access when the repository is private. Coordinates are used only
// during acquisition and never persisted.
type Coordinates struct {
	Owner string
	Repo  string
	Tag   string
	Asset string
	Token string
}

// Asset is one entry of a release manifest.
type Asset struct {
	Name               string `json:"name"`
	ID                 int64  `json:"id"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Manifest is the subset of the release payload the fetcher needs.
type Manifest struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Client fetches release manifests and asset bodies. The manifest and
// transfer clients carry different timeouts: manifest calls are small JSON
// exchanges, transfers can run for minutes.
type Client struct {
	baseURL        string
	manifestClient *http.Client
	transferClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternative API endpoint (tests, GitHub
// Enterprise).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeouts overrides the manifest and transfer timeouts.
func WithTimeouts(manifest, transfer time.Duration) Option {
	return func(c *Client) {
		c.manifestClient = &http.Client{Timeout: manifest}
		c.transferClient = &http.Client{Timeout: transfer}
	}
}

// NewClient creates a release client with default endpoint and timeouts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultAPIBaseURL,
		manifestClient: &http.Client{Timeout: DefaultManifestTimeout},
		transferClient: &http.Client{Timeout: DefaultTransferTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAsset resolves the release named by coords and downloads the matching
// asset to dest.
//
// Errors: ErrMissingCoordinates when owner, repo, or token is absent;
// ErrAssetNotFound when the release exists but carries no asset with the
// requested name; ErrTransfer on any network or status failure.
func (c *Client) FetchAsset(ctx context.Context, coords Coordinates, dest string) error {
	if coords.Owner == "" || coords.Repo == "" || coords.Token == "" {
		return fmt.Errorf("%w: gh.owner, gh.repo, and gh.token are required", ErrMissingCoordinates)
	}
	tag := coords.Tag
	if tag == "" {
		tag = TagLatest
	}

	manifest, err := c.resolveManifest(ctx, coords, tag)
	if err != nil {
		return err
	}

	asset, err := findAsset(manifest, coords.Asset)
	if err != nil {
		return fmt.Errorf("%w: %q not in release %q of %s/%s (available: %v)",
			ErrAssetNotFound, coords.Asset, tag, coords.Owner, coords.Repo, assetNames(manifest))
	}

	logging.Info().
		Str("asset", asset.Name).
		Int64("asset_id", asset.ID).
		Str("repo", coords.Owner+"/"+coords.Repo).
		Str("tag", tag).
		Msg("Downloading release asset")

	// The asset-ID endpoint with an octet-stream Accept header serves the
	// raw bytes for private repositories where browser_download_url does not.
	url := fmt.Sprintf("%s/repos/%s/%s/releases/assets/%d", c.baseURL, coords.Owner, coords.Repo, asset.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	req.Header.Set("Accept", acceptOctet)
	req.Header.Set("Authorization", "Bearer "+coords.Token)
	req.Header.Set("X-GitHub-Api-Version", apiVersionHeader)

	return c.download(req, dest)
}

// FetchURL downloads raw bytes from a direct (typically pre-signed) URL to
// dest. No auth header is sent.
func (c *Client) FetchURL(ctx context.Context, url, dest string) error {
	if url == "" {
		return fmt.Errorf("%w: download.url is required", ErrMissingCoordinates)
	}

	logging.Info().Str("url", redactQuery(url)).Msg("Downloading database from direct URL")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	return c.download(req, dest)
}

// resolveManifest fetches the release manifest for a tag, or the latest
// release when tag is the sentinel.
func (c *Client) resolveManifest(ctx context.Context, coords Coordinates, tag string) (*Manifest, error) {
	var url string
	if tag == TagLatest {
		url = fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, coords.Owner, coords.Repo)
	} else {
		url = fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, coords.Owner, coords.Repo, tag)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("Authorization", "Bearer "+coords.Token)
	req.Header.Set("X-GitHub-Api-Version", apiVersionHeader)

	resp, err := c.manifestClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving release manifest: %v", ErrTransfer, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close manifest response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: release manifest returned status %d", ErrTransfer, resp.StatusCode)
	}

	manifest := &Manifest{}
	if err := json.NewDecoder(resp.Body).Decode(manifest); err != nil {
		return nil, fmt.Errorf("%w: decoding release manifest: %v", ErrTransfer, err)
	}

	return manifest, nil
}

// download executes req on the transfer client and streams the body to dest
// through a sibling temp file.
func (c *Client) download(req *http.Request, dest string) error {
	resp, err := c.transferClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close transfer response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: transfer returned status %d", ErrTransfer, resp.StatusCode)
	}

	dir := filepath.Dir(dest)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: creating destination directory: %v", ErrTransfer, err)
		}
	}

	// Stream into a temp file next to the destination so the rename stays on
	// one filesystem and a crash never leaves a truncated file at dest.
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".download-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrTransfer, err)
	}
	tmpName := tmp.Name()

	written, err := io.CopyBuffer(tmp, resp.Body, make([]byte, chunkSize))
	if err != nil {
		closeQuietly(tmp)
		removeQuietly(tmpName)
		return fmt.Errorf("%w: streaming asset body: %v", ErrTransfer, err)
	}
	if err := tmp.Close(); err != nil {
		removeQuietly(tmpName)
		return fmt.Errorf("%w: finishing temp file: %v", ErrTransfer, err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		removeQuietly(tmpName)
		return fmt.Errorf("%w: moving download into place: %v", ErrTransfer, err)
	}

	metrics.AcquisitionBytes.Add(float64(written))
	logging.Info().Int64("bytes", written).Str("dest", dest).Msg("Download complete")

	return nil
}

// findAsset linear-scans the manifest for an exact name match.
func findAsset(m *Manifest, name string) (*Asset, error) {
	for i := range m.Assets {
		if m.Assets[i].Name == name {
			return &m.Assets[i], nil
		}
	}
	return nil, ErrAssetNotFound
}

// assetNames lists the manifest's asset names for error messages.
func assetNames(m *Manifest) []string {
	names := make([]string, 0, len(m.Assets))
	for _, a := range m.Assets {
		names = append(names, a.Name)
	}
	return names
}

// redactQuery strips the query string from a URL before logging; pre-signed
// URLs carry credentials there.
func redactQuery(url string) string {
	for i := 0; i < len(url); i++ {
		if url[i] == '?' {
			return url[:i] + "?..."
		}
	}
	return url
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}

func removeQuietly(name string) {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Str("file", name).Msg("Failed to remove temp file")
	}
}
