package storage

import (
	"context"

	"go.uber.org/multierr"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

// MultiSink saves to every sink, even after one fails.
type MultiSink []ports.PersonaSink

var _ ports.PersonaSink = MultiSink(nil)

func (m MultiSink) Save(ctx context.Context, doc domain.PersonaDocument, username string) error {
	var errs error
	for _, s := range m {
		errs = multierr.Append(errs, s.Save(ctx, doc, username))
	}
	return errs
}
