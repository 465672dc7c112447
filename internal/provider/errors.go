// Package provider holds the error taxonomy shared by the three external
// service clients. The orchestrator only needs the binary worked/failed
// distinction; the kinds survive into logs for diagnosis.
package provider

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// UpstreamError covers non-2xx responses and transport failures.
	UpstreamError ErrorKind = iota
	// MalformedResponse covers success statuses with undecodable or
	// schema-violating payloads.
	MalformedResponse
	// Timeout covers deadline expiry on the outbound call or on an
	// asynchronous operation poll.
	Timeout
)

func (k ErrorKind) String() string {
	switch k {
	case UpstreamError:
		return "upstream_error"
	case MalformedResponse:
		return "malformed_response"
	case Timeout:
		return "timeout"
	}
	return "unknown"
}

// StageError is the failure signal returned by a provider client.
type StageError struct {
	Stage string
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func NewStageError(stage string, kind ErrorKind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// KindOf extracts the error kind from err, defaulting to UpstreamError
// for errors that did not originate at a provider boundary.
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return UpstreamError
}
