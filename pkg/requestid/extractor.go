package requestid

import (
	"context"
	"log/slog"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

// LogExtractor returns a logger.ContextExtractor for the request id.
func LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
