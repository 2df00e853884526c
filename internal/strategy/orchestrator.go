package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/logger"
	"github.com/spigell/resumatch/internal/resume"
)

// FatalError is returned when analysis cannot produce a record: the pinned
// strategy failed, or every strategy in the plan did.
type FatalError struct {
	Mode     Mode
	Failures []*Failure
}

func (e *FatalError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("resume analysis failed in %s mode: %s", e.Mode, strings.Join(parts, "; "))
}

func (e *FatalError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

// Orchestrator runs the strategies of its mode's plan in order.
type Orchestrator struct {
	mode       Mode
	strategies map[string]Strategy
	logger     *zap.Logger
}

// New builds an orchestrator. Strategies are matched to the plan by name;
// plan entries without a strategy count as not configured.
func New(mode Mode, log *zap.Logger, strategies ...Strategy) *Orchestrator {
	byName := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		if s != nil {
			byName[s.Name()] = s
		}
	}

	return &Orchestrator{
		mode:       mode,
		strategies: byName,
		logger:     logger.WithFields(log, zap.String("mode", string(mode))),
	}
}

func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// Analyze returns the first successful analysis. In auto mode a failure moves
// on to the next strategy; in a pinned mode it is returned as a FatalError.
func (o *Orchestrator) Analyze(ctx context.Context, text string) (resume.Analysis, error) {
	var failures []*Failure

	for i, name := range o.mode.Plan() {
		log := o.logger.With(o.fields(name)...)

		s, ok := o.strategies[name]
		var out Outcome
		if !ok {
			out = Fail(name, FailureNotConfigured, errors.New("strategy is not configured"))
		} else {
			log.Debug("strategy attempt", zap.Int("position", i))
			out = s.Attempt(ctx, text)
		}

		if out.Succeeded() {
			log.Info("strategy succeeded", zap.Bool("using_fallback", i > 0))
			return resume.Analysis{Record: out.Record, Source: out.Source}, nil
		}

		failures = append(failures, out.Failure)
		level := log.Warn
		if out.Failure.Kind == FailureInternal {
			level = log.Error
		}
		level("strategy failed",
			zap.String(logger.FieldFailureKind, string(out.Failure.Kind)),
			zap.Error(out.Failure.Err),
		)

		if o.mode.Pinned() {
			break
		}
	}

	return resume.Analysis{}, &FatalError{Mode: o.mode, Failures: failures}
}

// Status describes which strategy would serve the next analysis.
type Status struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Mode          string `json:"mode"`
	UsingFallback bool   `json:"usingFallback"`
}

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Status checks the plan in order and reports the first usable strategy.
func (o *Orchestrator) Status(ctx context.Context) Status {
	var lastErr error
	plan := o.mode.Plan()

	for i, name := range plan {
		s, ok := o.strategies[name]
		if !ok {
			lastErr = fmt.Errorf("%s strategy is not configured", name)
			continue
		}

		if checker, ok := s.(Checker); ok {
			if err := checker.Check(ctx); err != nil {
				o.logger.Debug("strategy unavailable",
					append(o.fields(name), zap.String(logger.FieldFailureKind, string(Classify(err))), zap.Error(err))...,
				)
				lastErr = err
				continue
			}
		}

		return Status{
			Status:        StatusAvailable,
			Message:       availableMessage(name),
			Mode:          name,
			UsingFallback: i > 0,
		}
	}

	msg := "No suitable AI model available"
	if lastErr != nil {
		msg = fmt.Sprintf("%s: %v", msg, lastErr)
	}
	return Status{
		Status:  StatusUnavailable,
		Message: msg,
		Mode:    string(o.mode),
	}
}

func (o *Orchestrator) fields(name string) []zap.Field {
	provider, model := "", ""
	if d, ok := o.strategies[name].(interface {
		Provider() string
		Model() string
	}); ok {
		provider, model = d.Provider(), d.Model()
	}
	return logger.StrategyFields(name, provider, model)
}

func availableMessage(name string) string {
	switch name {
	case API:
		return "Remote API model is available"
	case LlamaCpp:
		return "Local llama.cpp model is available"
	case Offline:
		return "Offline model is available"
	case Regex:
		return "Using regex-based analysis (no LLM)"
	default:
		return name + " strategy is available"
	}
}
