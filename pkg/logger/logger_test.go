package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with static attrs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "ledgerd")),
		)
		log.Info("hello", logger.PaymentID("pay_1"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "ledgerd", rec["service"])
		assert.Equal(t, "pay_1", rec["payment_id"])
	})

	t.Run("context value is injected", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", ctxKey{}),
		)
		ctx := context.WithValue(context.Background(), ctxKey{}, "req-42")
		log.InfoContext(ctx, "handled")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "req-42", rec["request_id"])
	})

	t.Run("explicit attr wins over context value", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", ctxKey{}),
		)
		ctx := context.WithValue(context.Background(), ctxKey{}, "from-ctx")
		log.InfoContext(ctx, "handled", slog.String("request_id", "explicit"))

		assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"request_id"`)))
		assert.Contains(t, buf.String(), `"request_id":"explicit"`)
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Zero(t, buf.Len())
	})

	t.Run("development environment uses text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithEnvironment("dev", "ledgerd"))
		log.Debug("visible")
		assert.Contains(t, buf.String(), "msg=visible")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.UserID("").Equal(slog.Attr{}))
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.Equal(t, "user_id", logger.UserID("u1").Key)
	assert.Equal(t, "boom", logger.Error(errors.New("boom")).Value.Any().(error).Error())
	assert.Equal(t, "plan_id", logger.PlanID("silver").Key)
}
