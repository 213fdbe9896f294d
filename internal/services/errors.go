package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidDocument     = errors.New("invalid document")
	ErrEmptyDocument       = errors.New("document contains no extractable text")
	ErrNoPriorExtraction   = errors.New("no extraction stored for document")
	ErrUpstreamUnavailable = errors.New("reasoning service unavailable")
	ErrUpstreamMalformed   = errors.New("reasoning service returned a malformed response")
	ErrStoreFailure        = errors.New("store failure")
	ErrAnalysisInProgress  = errors.New("analysis already in progress for document")
	ErrIndexDisabled       = errors.New("skill index is not configured")
)

// FailureKind names the stage at which a reasoning call failed.
type FailureKind string

const (
	TransportFailure  FailureKind = "transport_failure"
	UpstreamError     FailureKind = "upstream_error"
	EnvelopeMalformed FailureKind = "envelope_malformed"
	PayloadMissing    FailureKind = "payload_missing"
	PayloadNotJSON    FailureKind = "payload_not_json"
)

// UpstreamFailure carries the diagnostics of a failed reasoning call.
// Body holds the raw upstream body, Text the payload text when one was located.
type UpstreamFailure struct {
	Kind       FailureKind
	StatusCode int
	Body       []byte
	Text       string
	Err        error
}

func (f *UpstreamFailure) Error() string {
	msg := string(f.Kind)
	if f.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, f.StatusCode)
	}
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, f.Err)
	}
	return "reasoning call failed: " + msg
}

func (f *UpstreamFailure) Unwrap() error {
	return f.Err
}

// Is maps failure kinds onto the two upstream categories.
func (f *UpstreamFailure) Is(target error) bool {
	switch target {
	case ErrUpstreamUnavailable:
		return f.Kind == TransportFailure || f.Kind == UpstreamError
	case ErrUpstreamMalformed:
		return f.Kind == EnvelopeMalformed || f.Kind == PayloadMissing || f.Kind == PayloadNotJSON
	}
	return false
}

// AsUpstreamFailure returns the UpstreamFailure in err's chain, if any.
func AsUpstreamFailure(err error) (*UpstreamFailure, bool) {
	var f *UpstreamFailure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
