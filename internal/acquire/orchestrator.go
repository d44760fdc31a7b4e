// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package acquire

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BDepanfilis/olist-analytics-public/internal/config"
	"github.com/BDepanfilis/olist-analytics-public/internal/logging"
	"github.com/BDepanfilis/olist-analytics-public/internal/metrics"
	"github.com/BDepanfilis/olist-analytics-public/internal/release"
)

var (
	// ErrAcquisition means the database was absent and no configured strategy
	// produced it. It aborts startup; the dashboard cannot render without data.
	ErrAcquisition = errors.New("database acquisition failed")

	// ErrMissingConfig means the database was absent and no strategy had the
	// configuration it needs to even try.
	ErrMissingConfig = errors.New("missing acquisition configuration")
)

// Fetcher is the transfer surface the orchestrator needs from the release
// client. Narrowed to an interface so strategy ordering and prerequisite
// logic are testable without network.
type Fetcher interface {
	FetchAsset(ctx context.Context, coords release.Coordinates, dest string) error
	FetchURL(ctx context.Context, url string, dest string) error
}

// strategy is one way of obtaining the database file. Ready reports whether
// the strategy's required configuration is fully present; Attempt performs
// the fetch. Strategies whose prerequisites are not met are skipped, not
// failed.
type strategy struct {
	name    string
	needs   string // human-readable prerequisites, for the aggregate error
	ready   func() bool
	attempt func(ctx context.Context) error
}

// Ensurer acquires the database at most once per process. The first Ensure
// call does the work; every later call returns the remembered outcome, even
// if the file is deleted externally afterwards.
type Ensurer struct {
	cfg     *config.Config
	fetcher Fetcher
	loc     Location

	once sync.Once
	err  error
}

// NewEnsurer builds an Ensurer for the configured location.
func NewEnsurer(cfg *config.Config, fetcher Fetcher) *Ensurer {
	return &Ensurer{
		cfg:     cfg,
		fetcher: fetcher,
		loc:     Locate(cfg.Database.Path, cfg.Database.Schema),
	}
}

// Location returns the resolved database location.
func (e *Ensurer) Location() Location {
	return e.loc
}

// Ensure makes the database present, downloading it if absent or too small.
// Idempotent: repeat calls perform no I/O and return the first outcome.
func (e *Ensurer) Ensure(ctx context.Context) error {
	e.once.Do(func() {
		e.err = e.ensure(ctx)
	})
	return e.err
}

func (e *Ensurer) ensure(ctx context.Context) error {
	if IsPresent(e.loc) {
		logging.Info().Str("path", e.loc.Path).Msg("Using local database")
		return nil
	}

	var attempted []error
	skipped := make([]string, 0, 2)

	for _, s := range e.strategies() {
		if !s.ready() {
			skipped = append(skipped, s.needs)
			continue
		}

		logging.Info().Str("strategy", s.name).Str("path", e.loc.Path).Msg("Acquiring database")

		if err := s.attempt(ctx); err != nil {
			metrics.AcquisitionAttempts.WithLabelValues(s.name, "failure").Inc()
			logging.Warn().Err(err).Str("strategy", s.name).Msg("Acquisition strategy failed")
			attempted = append(attempted, fmt.Errorf("%s: %w", s.name, err))
			continue
		}

		// A successful fetch can still produce junk (empty body, error page);
		// re-validate against the size floor before trusting it.
		if !IsPresent(e.loc) {
			metrics.AcquisitionAttempts.WithLabelValues(s.name, "failure").Inc()
			err := fmt.Errorf("%s: downloaded file at %s is missing or at most %d bytes", s.name, e.loc.Path, MinDatabaseSize)
			logging.Warn().Str("strategy", s.name).Msg("Downloaded file failed size validation")
			attempted = append(attempted, err)
			continue
		}

		metrics.AcquisitionAttempts.WithLabelValues(s.name, "success").Inc()
		logging.Info().Str("strategy", s.name).Str("path", e.loc.Path).Msg("Database acquired")
		return nil
	}

	if len(attempted) == 0 {
		return fmt.Errorf("%w: %w: %s not found (provide %s)",
			ErrAcquisition, ErrMissingConfig, e.loc.Path, joinNeeds(skipped))
	}
	return fmt.Errorf("%w: %w", ErrAcquisition, errors.Join(attempted...))
}

// strategies returns the fixed-priority strategy list: the private release
// asset first, the direct URL second.
func (e *Ensurer) strategies() []strategy {
	gh := e.cfg.GitHub
	dl := e.cfg.Download

	return []strategy{
		{
			name:  "github-release",
			needs: "GH_OWNER, GH_REPO, and GH_TOKEN",
			ready: func() bool {
				return gh.Owner != "" && gh.Repo != "" && gh.Token != ""
			},
			attempt: func(ctx context.Context) error {
				return e.fetcher.FetchAsset(ctx, release.Coordinates{
					Owner: gh.Owner,
					Repo:  gh.Repo,
					Tag:   gh.Tag,
					Asset: gh.Asset,
					Token: gh.Token,
				}, e.loc.Path)
			},
		},
		{
			name:  "direct-url",
			needs: "DB_DOWNLOAD_URL",
			ready: func() bool {
				return dl.URL != ""
			},
			attempt: func(ctx context.Context) error {
				return e.fetcher.FetchURL(ctx, dl.URL, e.loc.Path)
			},
		},
	}
}

func joinNeeds(needs []string) string {
	switch len(needs) {
	case 0:
		return "acquisition settings"
	case 1:
		return needs[0]
	default:
		out := needs[0]
		for _, n := range needs[1:] {
			out += ", or " + n
		}
		return out
	}
}
