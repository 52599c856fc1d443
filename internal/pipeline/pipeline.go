package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/document"
	"github.com/nao1215/shopaudit/internal/fetcher"
	"github.com/nao1215/shopaudit/internal/metrics"
	"github.com/nao1215/shopaudit/internal/model"
	"github.com/nao1215/shopaudit/internal/rules"
)

// tracerName identifies spans created by this package.
const tracerName = "github.com/nao1215/shopaudit/internal/pipeline"

// ErrNoResult is returned by Run when every step succeeded but none produced a result.
var ErrNoResult = errors.New("pipeline produced no result")

// State carries one audit through the steps. Each step fills in the
// fields the next one needs.
type State struct {
	// Input is the URL as given by the caller.
	Input string

	// URL is the normalized URL.
	URL string

	// Page is the fetched page.
	Page *fetcher.Page

	// Document is the parsed page.
	Document document.Document

	// Issues are the aggregated findings in rule order.
	Issues []model.SEOIssue

	// Result is the assembled audit result.
	Result *model.AuditResult
}

// Step is one stage of an audit.
type Step interface {
	// Do executes the step. A returned error aborts the audit.
	Do(ctx context.Context, state *State) error

	// Name returns the step's name for logging, tracing and metrics.
	Name() string
}

// Pipeline runs steps in order. It holds no per-audit state, so one
// Pipeline may run many audits concurrently.
type Pipeline struct {
	steps      []Step
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *metrics.Collector
	clock      func() time.Time
	rules      []rules.Rule
	thresholds config.Thresholds
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		if tp != nil {
			p.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithMetrics records step durations and audit outcomes.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) {
		p.metrics = c
	}
}

// WithClock sets the source of result timestamps.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithRules replaces the rule table used by the evaluate step.
func WithRules(table []rules.Rule) Option {
	return func(p *Pipeline) {
		p.rules = table
	}
}

// WithThresholds sets the thresholds used to evaluate and score.
func WithThresholds(t config.Thresholds) Option {
	return func(p *Pipeline) {
		p.thresholds = t
	}
}

// New creates an empty Pipeline. Steps are added with AddStep.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:      make([]Step, 0),
		clock:      time.Now,
		rules:      rules.Default(),
		thresholds: config.DefaultThresholds(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.tracer == nil {
		p.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return p
}

// DefaultPipeline creates the audit pipeline:
// validate, fetch, parse, evaluate, assemble.
func DefaultPipeline(f *fetcher.Fetcher, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewValidateStep(),
		NewFetchStep(f, p.metrics),
		NewParseStep(),
		NewEvaluateStep(p.rules, p.thresholds),
		NewAssembleStep(p.thresholds, p.clock),
	)
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and stops at the first error.
// Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	ctx, span := p.tracer.Start(ctx, "audit", trace.WithAttributes(attribute.String("audit.input", state.Input)))
	defer span.End()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			span.SetStatus(codes.Error, "cancelled")
			return ctx.Err()
		default:
		}

		if err := p.runStep(ctx, step, state); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	if state.Result != nil {
		span.SetAttributes(
			attribute.Int("audit.score", state.Result.Score),
			attribute.Int("audit.issues", len(state.Result.Issues)),
		)
	}
	return nil
}

func (p *Pipeline) runStep(ctx context.Context, step Step, state *State) error {
	ctx, span := p.tracer.Start(ctx, "audit."+step.Name())
	defer span.End()

	p.logger.Info("executing step",
		"step", step.Name(),
		"url", state.Input,
	)

	start := time.Now()
	err := step.Do(ctx, state)
	p.metrics.ObserveStep(step.Name(), time.Since(start))

	if err != nil {
		p.logger.Error("step failed",
			"step", step.Name(),
			"url", state.Input,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	p.logger.Debug("step completed",
		"step", step.Name(),
		"url", state.Input,
	)
	return nil
}

// Run audits one URL. On failure no result is returned; the error is one
// of the fetcher error types, a cancellation, or a step's own error.
func (p *Pipeline) Run(ctx context.Context, url string) (*model.AuditResult, error) {
	state := &State{Input: url}
	if err := p.Execute(ctx, state); err != nil {
		p.metrics.RecordAuditFailure(fetcher.Kind(err))
		return nil, err
	}
	if state.Result == nil {
		p.metrics.RecordAuditFailure(fetcher.KindOther)
		return nil, ErrNoResult
	}
	p.metrics.RecordAudit(state.Result)
	return state.Result, nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
