/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolerr defines the error taxonomy shared by every tool.
//
// Each tool invocation either returns a fully populated result or exactly one
// of these errors (possibly wrapped). Callers classify with errors.As.
package toolerr

import (
	"errors"
	"fmt"
)

// ValidationError reports a request that was rejected before any external
// call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for a ValidationError on a single field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports a missing process-level setting, such as the
// completion API key.
type ConfigurationError struct {
	Setting string
	Purpose string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s environment variable is required for %s", e.Setting, e.Purpose)
}

// AuthenticationError reports a GitHub operation that requires a credential
// when none is configured.
type AuthenticationError struct {
	Operation string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("a GitHub credential (GITHUB_TOKEN or GitHub App) is required to %s", e.Operation)
}

// RemoteAPIError reports a non-2xx response from GitHub or a completion
// provider. Message is taken from the remote body when one was present.
type RemoteAPIError struct {
	Service    string
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteAPIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %s", e.Service, e.Operation, msg)
	}
	return fmt.Sprintf("%s %s HTTP %d: %s", e.Service, e.Operation, e.StatusCode, msg)
}

func (e *RemoteAPIError) Unwrap() error { return e.Err }

// NotFoundError reports a repository, path, issue or file that does not exist.
type NotFoundError struct {
	Resource string
	Message  string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Message)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// MalformedResponseError reports completion output that is not valid JSON of
// the expected shape. No repair is attempted.
type MalformedResponseError struct {
	Expected string
	Reason   string
	Raw      string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("completion output is not a valid %s: %s", e.Expected, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// RemoteWriteError reports a failed file write. Files written before Path
// remain committed; files after it were not attempted.
type RemoteWriteError struct {
	Path    string
	Written int
	Err     error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("writing %s (after %d committed files): %v", e.Path, e.Written, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Kind names the taxonomy entry of err, for metrics and audit records.
func Kind(err error) string {
	var (
		ve  *ValidationError
		ce  *ConfigurationError
		ae  *AuthenticationError
		nf  *NotFoundError
		me  *MalformedResponseError
		we  *RemoteWriteError
		rae *RemoteAPIError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &ce):
		return "configuration"
	case errors.As(err, &ae):
		return "authentication"
	case errors.As(err, &we):
		return "remote_write"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &me):
		return "malformed_response"
	case errors.As(err, &rae):
		return "remote_api"
	default:
		return "internal"
	}
}
