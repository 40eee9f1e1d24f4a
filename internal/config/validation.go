// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator. It is safe for concurrent use.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate validates the configuration using struct tags and cross-field rules.
func Validate(cfg AppConfig) error {
	if err := Validator().Struct(cfg); err != nil {
		return formatValidationErrors(err)
	}

	if cfg.Tracing.Enabled && strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		return errors.New("tracing.endpoint: required when tracing is enabled")
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("rateLimit.requestsPerMinute: must be > 0 when rate limiting is enabled")
	}
	if cfg.MetricsListenAddr != "" && cfg.MetricsListenAddr == cfg.APIListenAddr {
		return errors.New("metricsListenAddr: must differ from listenAddr")
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

func formatSingleValidationError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "AppConfig.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", field)
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, e.Param())
	case "http_url":
		return fmt.Sprintf("%s: must be an http(s) URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s: must be host:port (got %q)", field, e.Value())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("%s: must be %s %s", field, e.Tag(), e.Param())
	default:
		return fmt.Sprintf("%s: failed %q validation", field, e.Tag())
	}
}
