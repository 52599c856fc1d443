package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/shopaudit/internal/audit"
	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/document"
	"github.com/nao1215/shopaudit/internal/fetcher"
	"github.com/nao1215/shopaudit/internal/metrics"
	"github.com/nao1215/shopaudit/internal/rules"
)

// Step names.
const (
	StepValidate = "validate"
	StepFetch    = "fetch"
	StepParse    = "parse"
	StepEvaluate = "evaluate"
	StepAssemble = "assemble"
)

// ValidateStep normalizes the input URL. Invalid input stops the audit
// before anything is sent over the network.
type ValidateStep struct{}

// NewValidateStep creates a ValidateStep.
func NewValidateStep() *ValidateStep {
	return &ValidateStep{}
}

// Name returns the step name.
func (s *ValidateStep) Name() string { return StepValidate }

// Do normalizes state.Input into state.URL.
func (s *ValidateStep) Do(_ context.Context, state *State) error {
	normalized, err := fetcher.Normalize(state.Input)
	if err != nil {
		return err
	}
	state.URL = normalized
	return nil
}

// FetchStep retrieves the page.
type FetchStep struct {
	fetcher *fetcher.Fetcher
	metrics *metrics.Collector
}

// NewFetchStep creates a FetchStep. m may be nil.
func NewFetchStep(f *fetcher.Fetcher, m *metrics.Collector) *FetchStep {
	return &FetchStep{fetcher: f, metrics: m}
}

// Name returns the step name.
func (s *FetchStep) Name() string { return StepFetch }

// Do fetches state.URL into state.Page.
func (s *FetchStep) Do(ctx context.Context, state *State) error {
	page, err := s.fetcher.Fetch(ctx, state.URL)
	if err != nil {
		return err
	}
	s.metrics.ObserveFetch(page.LoadTime)
	state.Page = page
	return nil
}

// ParseStep builds the queryable document.
type ParseStep struct{}

// NewParseStep creates a ParseStep.
func NewParseStep() *ParseStep {
	return &ParseStep{}
}

// Name returns the step name.
func (s *ParseStep) Name() string { return StepParse }

// Do parses state.Page into state.Document.
func (s *ParseStep) Do(_ context.Context, state *State) error {
	if state.Page == nil {
		return fmt.Errorf("%s: no page fetched", StepParse)
	}
	state.Document = document.Parse(state.Page.HTML)
	return nil
}

// EvaluateStep runs the rule table and aggregates the findings.
type EvaluateStep struct {
	rules      []rules.Rule
	thresholds config.Thresholds
}

// NewEvaluateStep creates an EvaluateStep.
func NewEvaluateStep(table []rules.Rule, t config.Thresholds) *EvaluateStep {
	return &EvaluateStep{rules: table, thresholds: t}
}

// Name returns the step name.
func (s *EvaluateStep) Name() string { return StepEvaluate }

// Do evaluates every rule into state.Issues.
func (s *EvaluateStep) Do(_ context.Context, state *State) error {
	if state.Document == nil || state.Page == nil {
		return fmt.Errorf("%s: no document parsed", StepEvaluate)
	}
	in := &rules.Input{
		Document:   state.Document,
		Page:       pageMeta(state),
		Thresholds: s.thresholds,
	}
	state.Issues = audit.Aggregate(rules.Evaluate(s.rules, in))
	return nil
}

// AssembleStep builds the final result.
type AssembleStep struct {
	thresholds config.Thresholds
	clock      func() time.Time
}

// NewAssembleStep creates an AssembleStep. clock supplies the result timestamp.
func NewAssembleStep(t config.Thresholds, clock func() time.Time) *AssembleStep {
	if clock == nil {
		clock = time.Now
	}
	return &AssembleStep{thresholds: t, clock: clock}
}

// Name returns the step name.
func (s *AssembleStep) Name() string { return StepAssemble }

// Do assembles state.Result.
func (s *AssembleStep) Do(_ context.Context, state *State) error {
	if state.Document == nil {
		return fmt.Errorf("%s: no document parsed", StepAssemble)
	}
	state.Result = audit.Assemble(state.URL, s.clock().UTC(), state.Document, state.Issues, s.thresholds)
	return nil
}

func pageMeta(state *State) rules.PageMeta {
	return rules.PageMeta{
		URL:        state.URL,
		StatusCode: state.Page.StatusCode,
		LoadTime:   state.Page.LoadTime,
		Headers:    state.Page.Headers,
	}
}
