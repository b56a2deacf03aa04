package main

import (
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/config"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/httpserver"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/jwt"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/redis"
)

// AppConfig holds the process-level settings.
type AppConfig struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	CatalogFile      string        `env:"CATALOG_FILE"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	ReminderInterval time.Duration `env:"REMINDER_INTERVAL" envDefault:"1h"`
	SweepBatchSize   int           `env:"SWEEP_BATCH_SIZE" envDefault:"500"`
	EffectWorkers    int           `env:"EFFECT_WORKERS" envDefault:"8"`
	EffectTimeout    time.Duration `env:"EFFECT_TIMEOUT" envDefault:"30s"`
	DevMode          bool          `env:"DEV_MODE" envDefault:"false"`
}

type settings struct {
	App      AppConfig
	Mongo    mongo.Config
	Redis    redis.Config
	Razorpay razorpay.Config
	Email    email.Config
	HTTP     httpserver.Config
	JWT      jwt.Config
}

func loadSettings() (settings, error) {
	var s settings
	for _, load := range []func() error{
		func() error { return config.Load(&s.App) },
		func() error { return config.Load(&s.Mongo) },
		func() error { return config.Load(&s.Redis) },
		func() error { return config.Load(&s.Razorpay) },
		func() error { return config.Load(&s.Email) },
		func() error { return config.Load(&s.HTTP) },
		func() error { return config.Load(&s.JWT) },
	} {
		if err := load(); err != nil {
			return settings{}, err
		}
	}
	if err := s.Razorpay.Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}
