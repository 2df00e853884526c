// Package strategy selects and sequences the analysis backends: remote LLM
// APIs, local models and the rule-based extractor.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/resume"
)

// Strategy names. They double as the analysis source tag.
const (
	API      = "api"
	LlamaCpp = "llama_cpp"
	Offline  = "offline"
	Regex    = "regex"
)

// Strategy is one interchangeable analysis backend. Attempt never returns an
// error: failures are reported inside the Outcome.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, text string) Outcome
}

// Checker is implemented by strategies that can tell whether they are
// usable without analysing anything.
type Checker interface {
	Check(ctx context.Context) error
}

// FailureKind classifies why a strategy failed.
type FailureKind string

const (
	FailureNotConfigured     FailureKind = "not_configured"
	FailureTimeout           FailureKind = "timeout"
	FailureTransport         FailureKind = "transport"
	FailureAuth              FailureKind = "auth"
	FailureRateLimit         FailureKind = "rate_limit"
	FailureMalformedResponse FailureKind = "malformed_response"
	FailureModelUnavailable  FailureKind = "model_unavailable"
	FailureInternal          FailureKind = "internal"
)

// Failure is the error side of an Outcome.
type Failure struct {
	Strategy string
	Kind     FailureKind
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Strategy, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Outcome is either a record with its source, or a Failure.
type Outcome struct {
	Record  resume.Record
	Source  string
	Failure *Failure
}

// Success builds a successful outcome.
func Success(rec resume.Record, source string) Outcome {
	return Outcome{Record: rec, Source: source}
}

// Fail builds a failed outcome.
func Fail(strategy string, kind FailureKind, err error) Outcome {
	return Outcome{Failure: &Failure{Strategy: strategy, Kind: kind, Err: err}}
}

func (o Outcome) Succeeded() bool {
	return o.Failure == nil
}

// Classify maps a provider error onto a FailureKind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, ai.ErrNotConfigured):
		return FailureNotConfigured
	case errors.Is(err, ai.ErrUnauthorized):
		return FailureAuth
	case errors.Is(err, ai.ErrRateLimited):
		return FailureRateLimit
	case errors.Is(err, ai.ErrMalformedResponse), errors.Is(err, ai.ErrEmptyResponse):
		return FailureMalformedResponse
	case errors.Is(err, ai.ErrUnavailable):
		return FailureModelUnavailable
	default:
		return FailureTransport
	}
}
