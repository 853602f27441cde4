// Package pipeline drives profiles one at a time through extraction, fetch,
// prompt building, generation, formatting and persistence.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
	"persona-agent/internal/identity"
	"persona-agent/internal/persona"
	"persona-agent/internal/prompt"
)

const DefaultLimit = 10

type Runner struct {
	source   ports.ActivitySource
	brain    ports.Brain
	sink     ports.PersonaSink
	reporter ports.Reporter
	logger   *zap.Logger
	limit    int
}

type Option func(*Runner)

func WithReporter(r ports.Reporter) Option { return func(rn *Runner) { rn.reporter = r } }

func WithLogger(l *zap.Logger) Option { return func(rn *Runner) { rn.logger = l } }

// WithLimit caps the posts and the comments fetched per user.
func WithLimit(n int) Option { return func(rn *Runner) { rn.limit = n } }

func NewRunner(source ports.ActivitySource, brain ports.Brain, sink ports.PersonaSink, opts ...Option) *Runner {
	r := &Runner{
		source: source,
		brain:  brain,
		sink:   sink,
		logger: zap.NewNop(),
		limit:  DefaultLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes inputs sequentially. A failure for one input never stops the
// batch; only cancellation of ctx does.
func (r *Runner) Run(ctx context.Context, inputs []string) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(inputs))
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, domain.Outcome{
				Input:  input,
				Status: domain.OutcomeSkipped,
				Stage:  domain.StageIdentify,
				Err:    err,
			})
			continue
		}
		outcomes = append(outcomes, r.Process(ctx, input))
	}
	return outcomes
}

// Process carries one profile URL through the whole pipeline.
func (r *Runner) Process(ctx context.Context, input string) domain.Outcome {
	outcome := r.process(ctx, input)

	fields := []zap.Field{
		zap.String("input", input),
		zap.String("username", outcome.Username),
		zap.String("status", string(outcome.Status)),
		zap.String("stage", string(outcome.Stage)),
	}
	switch {
	case outcome.Err != nil && outcome.OK():
		r.logger.Warn("Persona degraded", append(fields, zap.Error(outcome.Err))...)
	case outcome.Err != nil:
		r.logger.Error("Profile skipped", append(fields, zap.Error(outcome.Err))...)
	default:
		r.logger.Info("Profile processed", append(fields, zap.Int("anomalies", outcome.Anomalies))...)
	}

	if r.reporter != nil {
		if err := r.reporter.Report(ctx, outcome); err != nil {
			r.logger.Warn("Report failed", zap.String("username", outcome.Username), zap.Error(err))
		}
	}
	return outcome
}

func (r *Runner) process(ctx context.Context, input string) domain.Outcome {
	out := domain.Outcome{Input: input, Stage: domain.StageIdentify}

	username, err := identity.ExtractUsername(input)
	if err != nil {
		out.Status, out.Err = domain.OutcomeSkipped, err
		return out
	}
	out.Username = username

	out.Stage = domain.StageFetch
	r.logger.Debug("Fetching activity", zap.String("username", username), zap.Int("limit", r.limit))
	activity, err := r.source.Fetch(ctx, username, r.limit)
	if err != nil {
		out.Status, out.Err = domain.OutcomeSkipped, err
		return out
	}

	out.Stage = domain.StageGenerate
	doc, genErr := r.Persona(ctx, username, activity)
	out.Anomalies = len(doc.Anomalies)
	for _, a := range doc.Anomalies {
		r.logger.Debug("Validation anomaly",
			zap.String("username", username), zap.String("kind", string(a.Kind)), zap.String("line", a.Line))
	}

	out.Stage = domain.StageSave
	if err := r.sink.Save(ctx, doc, username); err != nil {
		out.Status, out.Err = domain.OutcomeSinkFailed, errors.Join(genErr, err)
		return out
	}

	switch {
	case genErr != nil:
		out.Status, out.Stage, out.Err = domain.OutcomeDegraded, domain.StageGenerate, genErr
	case doc.Status == domain.StatusEmpty:
		out.Status = domain.OutcomeEmpty
	default:
		out.Status = domain.OutcomeSaved
	}
	return out
}

// Persona builds the document for already fetched activity. Users without
// activity get the empty persona and the brain is not called. A generation
// failure yields the failed persona together with the error.
func (r *Runner) Persona(ctx context.Context, username string, activity domain.UserActivity) (domain.PersonaDocument, error) {
	text, err := prompt.Build(activity, username)
	if errors.Is(err, prompt.ErrNoActivity) {
		return domain.EmptyPersona(username), nil
	}
	if err != nil {
		return domain.FailedPersona(username), err
	}

	raw, err := r.brain.Generate(ctx, text)
	if err != nil {
		return domain.FailedPersona(username), err
	}
	return persona.Format(raw, username, activity), nil
}
