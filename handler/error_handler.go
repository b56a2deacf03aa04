package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/requestid"
)

// NewErrorHandler logs the failure and renders it with JSONError.
// Client errors are logged at warn, server errors at error.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		r := ctx.Request()
		status, _ := ClassifyError(err)

		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Component("http"),
			logger.Error(err),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
