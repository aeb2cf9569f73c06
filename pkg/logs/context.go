package logs

import (
	"context"
	"log/slog"

	"github.com/Alijeyrad/caseservice/pkg/reqctx"
)

// contextHandler adds request_id, user_id and lab_id to records logged with
// a request context.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if p, ok := reqctx.PrincipalFromContext(ctx); ok {
		r.AddAttrs(slog.String("user_id", p.UserID))
		if p.LabID != "" {
			r.AddAttrs(slog.String("lab_id", p.LabID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}
