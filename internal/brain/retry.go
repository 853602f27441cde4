package brain

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

// RetryPolicy hands out a fresh backoff schedule for each generation call.
type RetryPolicy interface {
	NewBackOff() backoff.BackOff
}

// NoRetry makes exactly one attempt.
type NoRetry struct{}

func (NoRetry) NewBackOff() backoff.BackOff { return &backoff.StopBackOff{} }

// ExponentialRetry retries up to MaxRetries times with jittered exponential waits.
type ExponentialRetry struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (p ExponentialRetry) NewBackOff() backoff.BackOff {
	if p.MaxRetries == 0 {
		return &backoff.StopBackOff{}
	}
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithMaxRetries(exp, p.MaxRetries)
}

// Retrying wraps a brain and retries transient failures under a policy.
type Retrying struct {
	next   ports.Brain
	policy RetryPolicy
	logger *zap.Logger
}

var _ ports.Brain = (*Retrying)(nil)

func NewRetrying(next ports.Brain, policy RetryPolicy, logger *zap.Logger) *Retrying {
	if policy == nil {
		policy = NoRetry{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{next: next, policy: policy, logger: logger}
}

func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	op := func() error {
		var err error
		text, err = r.next.Generate(ctx, prompt)
		if err != nil && !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Generation failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(r.policy.NewBackOff(), ctx), notify); err != nil {
		// cancellation while waiting between attempts surfaces as a bare ctx error
		var genErr *domain.GenerationError
		if !errors.As(err, &genErr) {
			err = domain.NewGenerationError(domain.ErrTimeout, "", err)
		}
		return "", err
	}
	return text, nil
}
