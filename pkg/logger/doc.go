// Package logger builds the service's *slog.Logger and keeps attribute naming
// consistent across packages.
//
// New returns a logger configured with functional options: output format,
// minimum level, static attributes and context extractors. Extractors run on
// every Handle call, so request-scoped values such as the request id end up
// on every record written while serving that request.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "ledgerd"),
//		logger.WithContextExtractors(requestid.LogExtractor()),
//	)
//	log.InfoContext(ctx, "payment captured",
//		logger.PaymentID(p.ID),
//		logger.UserID(p.UserID),
//	)
//
// The helpers in attr.go (UserID, PaymentID, SubscriptionID, PlanID, Error
// and so on) return empty attributes for empty values, which slog drops.
package logger
