package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakthiswaran2705/NallaAngadi/modules/billing"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/async"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/checkout"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/entitlement"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/httpserver"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/jwt"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/metrics"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/reconciler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/redis"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/requestid"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/scheduler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/sweeper"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/users"
)

const serviceName = "ledgerd"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("ledgerd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.App.Env, serviceName),
		logger.WithContextExtractors(requestid.LogExtractor()),
	)
	logger.SetAsDefault(log)

	db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	mongoClient := db.Client()

	indexes := ledger.Indexes()
	for coll, models := range notifications.Indexes() {
		indexes[coll] = append(indexes[coll], models...)
	}
	if err := mongo.EnsureIndexes(ctx, db, indexes); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	source := catalog.NewDefaultSource()
	if cfg.App.CatalogFile != "" {
		source = catalog.NewFileSource(cfg.App.CatalogFile)
	}
	cat, err := catalog.New(ctx, source)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.NewLedgerMetrics(reg)
	jobMetrics := metrics.NewJobMetrics(reg)

	sender, err := mailSender(cfg.Email, cfg.App.DevMode)
	if err != nil {
		return err
	}
	notifier := notifications.NewManager(notifications.NewMongoStorage(db),
		notifications.LogDeliverer{Logger: log}, notifications.WithManagerLogger(log))

	dispatcher := async.NewDispatcher(
		async.WithLogger(log),
		async.WithConcurrency(cfg.App.EffectWorkers),
		async.WithTimeout(cfg.App.EffectTimeout),
	)
	fx := effects.New(dispatcher,
		effects.WithDirectory(users.NewMongoDirectory(db)),
		effects.WithMailer(email.NewMailer(sender, email.WithBrand(cfg.Email.Brand))),
		effects.WithNotifier(notifier),
		effects.WithMetrics(ledgerMetrics),
		effects.WithLogger(log),
	)

	store := ledger.NewMongoStore(db)
	gateway, err := razorpay.NewClient(cfg.Razorpay)
	if err != nil {
		return err
	}
	rec, err := reconciler.New(cat, store, cfg.Razorpay.WebhookSecret,
		reconciler.WithEffects(fx),
		reconciler.WithMetrics(ledgerMetrics),
		reconciler.WithLogger(log),
	)
	if err != nil {
		return err
	}
	checkoutSvc := checkout.New(cat, gateway, store, rec,
		checkout.WithEffects(fx),
		checkout.WithLogger(log),
	)
	evaluator := entitlement.New(cat, store, entitlement.NewMongoCounter(db), entitlement.WithLogger(log))

	tokens, err := jwt.New(cfg.JWT)
	if err != nil {
		return err
	}

	sw := sweeper.New(store, cat, sweeper.NewMongoLocker(db),
		sweeper.WithEffects(fx),
		sweeper.WithMetrics(ledgerMetrics),
		sweeper.WithLogger(log),
		sweeper.WithBatchSize(cfg.App.SweepBatchSize),
	)
	jobs, err := newScheduler(cfg.App, sw, redis.NewLocker(rdb, cfg.Redis.LockPrefix), jobMetrics, log)
	if err != nil {
		return err
	}

	schedCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := jobs.Start(schedCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("scheduler stopped", logger.Error(err))
		}
	}()

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.RealIP, middleware.Recoverer)
	r.Get("/health/live", httpserver.Health(log))
	r.Get("/health/ready", httpserver.Health(log,
		httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(mongoClient)},
		httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
	))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Mount("/", billing.New(rec, checkoutSvc, evaluator,
		billing.WithAuth(jwt.Middleware(tokens)),
		billing.WithNotifications(notifier),
		billing.WithPublicKey(cfg.Razorpay.KeyID),
		billing.WithLogger(log),
	).Handle())

	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.OnStop(func(ctx context.Context) {
			stopJobs()
			<-schedDone
			if err := dispatcher.Close(ctx); err != nil {
				log.Warn("side effects still running at shutdown", logger.Error(err))
			}
			if err := rdb.Close(); err != nil {
				log.Warn("redis close", logger.Error(err))
			}
			if err := mongoClient.Disconnect(ctx); err != nil {
				log.Warn("mongo disconnect", logger.Error(err))
			}
		}),
	)
	return server.Run(ctx, r)
}

func mailSender(cfg email.Config, devMode bool) (email.Sender, error) {
	if devMode || !cfg.Enabled() {
		return email.NewDevSender(cfg.DevDir), nil
	}
	return email.NewPostmarkSender(cfg)
}

func newScheduler(app AppConfig, sw *sweeper.Sweeper, locker scheduler.Locker, m *metrics.JobMetrics, log *slog.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(
		scheduler.WithLocker(locker),
		scheduler.WithMetrics(m),
		scheduler.WithLogger(log),
	)

	// The sweeper logs its own results.
	sweep := func(ctx context.Context, now time.Time) error {
		_, err := sw.Sweep(ctx, now)
		return err
	}
	remind := func(ctx context.Context, now time.Time) error {
		_, err := sw.Reminders(ctx, now)
		return err
	}

	if err := s.Add("expiry_sweep", scheduler.Every(app.SweepInterval), sweep); err != nil {
		return nil, err
	}
	if err := s.Add("expiry_reminders", scheduler.Every(app.ReminderInterval), remind); err != nil {
		return nil, err
	}
	return s, nil
}
