package service

import (
	"errors"
	"strings"
)

// ErrAlreadyPublished is returned when publishing a draft twice.
var ErrAlreadyPublished = errors.New("draft has already been published")

// ValidationError reports unacceptable caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConfigurationError reports credentials or settings missing at request
// time. It is raised before any network I/O.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return "suggestion service is not configured"
	}
	return "suggestion service is not configured: missing " + strings.Join(e.Missing, ", ")
}
