// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package acquire

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BDepanfilis/olist-analytics-public/internal/config"
	"github.com/BDepanfilis/olist-analytics-public/internal/release"
)

// fakeFetcher records calls and writes canned bytes to the destination.
type fakeFetcher struct {
	assetCalls int
	urlCalls   int
	assetErr   error
	urlErr     error
	payload    []byte

	lastCoords release.Coordinates
}

func (f *fakeFetcher) FetchAsset(_ context.Context, coords release.Coordinates, dest string) error {
	f.assetCalls++
	f.lastCoords = coords
	if f.assetErr != nil {
		return f.assetErr
	}
	return os.WriteFile(dest, f.payload, 0o600)
}

func (f *fakeFetcher) FetchURL(_ context.Context, _ string, dest string) error {
	f.urlCalls++
	if f.urlErr != nil {
		return f.urlErr
	}
	return os.WriteFile(dest, f.payload, 0o600)
}

// validPayload comfortably clears the minimum-size threshold.
var validPayload = bytes.Repeat([]byte("x"), MinDatabaseSize+1)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(t.TempDir(), "olist.duckdb")
	cfg.Database.Schema = "analytics_marts"
	cfg.GitHub.Tag = "latest"
	cfg.GitHub.Asset = "olist.duckdb"
	return cfg
}

func TestIsPresentThreshold(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		size int
		want bool
	}{
		{"missing", -1, false},
		{"empty", 0, false},
		{"at threshold", MinDatabaseSize, false},
		{"above threshold", MinDatabaseSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if tt.size >= 0 {
				if err := os.WriteFile(path, bytes.Repeat([]byte("a"), tt.size), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			if got := IsPresent(Location{Path: path}); got != tt.want {
				t.Errorf("IsPresent(size=%d) = %v, want %v", tt.size, got, tt.want)
			}
		})
	}
}

func TestEnsureNoopWhenPresent(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.Database.Path, validPayload, 0o600); err != nil {
		t.Fatal(err)
	}

	f := &fakeFetcher{payload: validPayload}
	e := NewEnsurer(cfg, f)

	if err := e.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if f.assetCalls != 0 || f.urlCalls != 0 {
		t.Errorf("expected no fetch calls for present database, got asset=%d url=%d", f.assetCalls, f.urlCalls)
	}
}

func TestEnsureIdempotent(t *testing.T) {
	cfg := testConfig(t)
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "marts"
	cfg.GitHub.Token = "tok"

	f := &fakeFetcher{payload: validPayload}
	e := NewEnsurer(cfg, f)

	if err := e.Ensure(context.Background()); err != nil {
		t.Fatalf("first Ensure failed: %v", err)
	}
	if err := e.Ensure(context.Background()); err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}

	if f.assetCalls != 1 {
		t.Errorf("expected exactly one fetch across repeated Ensure calls, got %d", f.assetCalls)
	}
}

func TestEnsureReleaseStrategyFirst(t *testing.T) {
	cfg := testConfig(t)
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "marts"
	cfg.GitHub.Token = "tok"
	cfg.Download.URL = "https://cdn.example/olist.duckdb"

	f := &fakeFetcher{payload: validPayload}
	e := NewEnsurer(cfg, f)

	if err := e.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if f.assetCalls != 1 || f.urlCalls != 0 {
		t.Errorf("expected release strategy to win, got asset=%d url=%d", f.assetCalls, f.urlCalls)
	}
	if f.lastCoords.Tag != "latest" || f.lastCoords.Asset != "olist.duckdb" {
		t.Errorf("unexpected coordinates passed to fetcher: %+v", f.lastCoords)
	}
}

func TestEnsureFallsThroughToDirectURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "marts"
	cfg.GitHub.Token = "tok"
	cfg.Download.URL = "https://cdn.example/olist.duckdb"

	f := &fakeFetcher{payload: validPayload, assetErr: release.ErrAssetNotFound}
	e := NewEnsurer(cfg, f)

	if err := e.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if f.assetCalls != 1 || f.urlCalls != 1 {
		t.Errorf("expected fall-through to direct URL, got asset=%d url=%d", f.assetCalls, f.urlCalls)
	}
}

func TestEnsureSkipsStrategyWithoutPrerequisites(t *testing.T) {
	cfg := testConfig(t)
	// Only the direct URL is configured; the release strategy must be
	// skipped without a fetch attempt.
	cfg.Download.URL = "https://cdn.example/olist.duckdb"

	f := &fakeFetcher{payload: validPayload}
	e := NewEnsurer(cfg, f)

	if err := e.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if f.assetCalls != 0 {
		t.Errorf("release strategy attempted without prerequisites: %d calls", f.assetCalls)
	}
	if f.urlCalls != 1 {
		t.Errorf("expected one direct-URL fetch, got %d", f.urlCalls)
	}
}

func TestEnsureNoStrategyConfigured(t *testing.T) {
	cfg := testConfig(t)

	f := &fakeFetcher{payload: validPayload}
	err := NewEnsurer(cfg, f).Ensure(context.Background())

	if !errors.Is(err, ErrAcquisition) {
		t.Fatalf("expected ErrAcquisition, got %v", err)
	}
	if !errors.Is(err, ErrMissingConfig) {
		t.Errorf("expected ErrMissingConfig in chain, got %v", err)
	}
	if f.assetCalls != 0 || f.urlCalls != 0 {
		t.Error("expected no fetch attempts without prerequisites")
	}
}

func TestEnsureRetriesCorruptFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "marts"
	cfg.GitHub.Token = "tok"

	// A 50-byte placeholder must be treated as absent.
	if err := os.WriteFile(cfg.Database.Path, bytes.Repeat([]byte("x"), 50), 0o600); err != nil {
		t.Fatal(err)
	}

	f := &fakeFetcher{payload: validPayload}
	if err := NewEnsurer(cfg, f).Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if f.assetCalls != 1 {
		t.Errorf("expected re-acquisition of corrupt file, got %d calls", f.assetCalls)
	}
}

func TestEnsureRejectsTooSmallDownload(t *testing.T) {
	cfg := testConfig(t)
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "marts"
	cfg.GitHub.Token = "tok"

	f := &fakeFetcher{payload: []byte("tiny")}
	err := NewEnsurer(cfg, f).Ensure(context.Background())

	if !errors.Is(err, ErrAcquisition) {
		t.Fatalf("expected ErrAcquisition for undersized download, got %v", err)
	}
}
