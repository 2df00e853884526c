package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/resume"
)

// DefaultTimeout bounds a single provider attempt.
const DefaultTimeout = 30 * time.Second

type analyzerSource func(ctx context.Context) (ai.Analyzer, error)

// provider adapts an ai.Analyzer to Strategy. Each attempt is a single call
// bounded by timeout.
type provider struct {
	name     string
	get      analyzerSource
	probe    func(ctx context.Context) error
	timeout  time.Duration
	provider string
	model    string
}

// NewRemote wraps a remote analyzer.
func NewRemote(name string, analyzer ai.Analyzer, timeout time.Duration) Strategy {
	p := &provider{
		name:     name,
		get:      func(context.Context) (ai.Analyzer, error) { return analyzer, nil },
		timeout:  timeout,
		provider: analyzer.Provider(),
		model:    analyzer.Model(),
	}
	if prober, ok := analyzer.(ai.Prober); ok {
		p.probe = prober.Probe
	}
	return p
}

// NewLocal wraps a local model behind its handle. The model is loaded on
// the first attempt or check.
func NewLocal(name string, model LocalModel, timeout time.Duration) Strategy {
	handle := HandleFor(model)
	return &provider{
		name:     name,
		get:      handle.Get,
		probe:    func(ctx context.Context) error { _, err := handle.Get(ctx); return err },
		timeout:  timeout,
		provider: model.Provider(),
		model:    model.Model(),
	}
}

func (p *provider) Name() string     { return p.name }
func (p *provider) Provider() string { return p.provider }
func (p *provider) Model() string    { return p.model }

func (p *provider) Attempt(ctx context.Context, text string) Outcome {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	analyzer, err := p.get(ctx)
	if err != nil {
		return p.fail(err, FailureModelUnavailable)
	}

	rec, err := analyzer.Analyze(ctx, text)
	if err != nil {
		return p.fail(err, "")
	}
	if rec == nil {
		return Fail(p.name, FailureMalformedResponse, ai.ErrEmptyResponse)
	}

	return Success(resume.Sanitize(*rec), p.name)
}

func (p *provider) Check(ctx context.Context) error {
	if p.probe == nil {
		return nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.probe(ctx)
}

func (p *provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// fail classifies err. Errors that carry no known class get fallback, when
// given, instead of transport.
func (p *provider) fail(err error, fallback FailureKind) Outcome {
	kind := Classify(err)
	if kind == FailureTransport && fallback != "" {
		kind = fallback
	}
	return Fail(p.name, kind, err)
}

// Extractor is the rule-based analysis backend.
type Extractor interface {
	Extract(text string) resume.Record
}

type rules struct {
	extractor Extractor
}

// NewRules wraps the rule-based extractor. It is expected never to fail; a
// panic is reported as an internal failure.
func NewRules(extractor Extractor) Strategy {
	return &rules{extractor: extractor}
}

func (r *rules) Name() string { return Regex }

func (r *rules) Attempt(_ context.Context, text string) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = Fail(Regex, FailureInternal, fmt.Errorf("rule-based extraction panicked: %v", p))
		}
	}()

	if r.extractor == nil {
		return Fail(Regex, FailureInternal, errors.New("rule-based extractor is nil"))
	}
	return Success(r.extractor.Extract(text), Regex)
}
