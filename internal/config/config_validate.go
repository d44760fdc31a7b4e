// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared across calls; validator caches struct metadata.
var validate = validator.New()

// Validate checks the configuration for structural errors. Struct tags cover
// required fields, ranges, and enums; the handful of rules tags cannot
// express are checked by hand.
//
// GitHub owner/repo/token may legitimately be absent when the database is
// already on disk or a direct download URL is configured, so they are not
// required here. The acquisition orchestrator decides at runtime whether
// missing acquisition settings are fatal.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("invalid value for %s (rule %q)", fe.Namespace(), fe.Tag())
		}
		return err
	}

	if c.Database.QueryTTL < 0 {
		return errors.New("db.query_ttl must not be negative")
	}
	if c.Server.Timeout <= 0 {
		return errors.New("server.timeout must be positive")
	}

	return nil
}
