package errors

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. Every error produced by the pipeline is marked with exactly
// one of these so the CLI can decide whether to abort the run or skip a client.
var (
	// ErrConfiguration covers unknown client profiles, unsupported currencies,
	// missing bank accounts and a missing or corrupt invoice counter.
	// It is fatal for the whole run.
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstreamFetch covers time-tracking or exchange-rate services that are
	// unreachable or respond with an error.
	ErrUpstreamFetch = errors.New("upstream fetch error")

	// ErrDataShape covers malformed records such as an unparsable duration
	// or a project without an hourly rate.
	ErrDataShape = errors.New("data shape error")
)

// Is reports whether err carries the reference mark anywhere in its chain.
// The standard library errors.Is does not see cockroachdb marks.
func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsUpstreamFetch(err error) bool {
	return errors.Is(err, ErrUpstreamFetch)
}

func IsDataShape(err error) bool {
	return errors.Is(err, ErrDataShape)
}

// Kind returns a short machine-readable name for the error kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsConfiguration(err):
		return "configuration"
	case IsUpstreamFetch(err):
		return "upstream_fetch"
	case IsDataShape(err):
		return "data_shape"
	default:
		return "unknown"
	}
}

// Hint returns the operator-facing hints attached to err, joined by newlines.
func Hint(err error) string {
	return errors.FlattenHints(err)
}
