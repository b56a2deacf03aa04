package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthiswaran2705/NallaAngadi/handler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/binder"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

type planRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handler.JSONResponse {
	t.Helper()
	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestWrap(t *testing.T) {
	t.Parallel()

	echo := func(_ handler.Context, req planRequest) handler.Response {
		return handler.JSON(map[string]string{"plan_id": req.PlanID})
	}
	h := handler.Wrap(echo,
		handler.WithBinders[handler.Context, planRequest](binder.JSON(), binder.Validate()),
		handler.WithErrorHandler[handler.Context, planRequest](handler.NewErrorHandler(logger.Nop())),
	)

	t.Run("binds and renders", func(t *testing.T) {
		t.Parallel()
		rec := post(h, `{"plan_id":"gold"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, map[string]any{"plan_id": "gold"}, decode(t, rec).Data)
	})

	t.Run("validation failure", func(t *testing.T) {
		t.Parallel()
		rec := post(h, `{"plan_id":""}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode(t, rec)
		require.NotNil(t, body.Error)
		assert.Equal(t, "validation_error", body.Error.Code)
		assert.Equal(t, []string{"is required"}, body.Error.Details["plan_id"])
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		rec := post(h, `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decode(t, rec).Error.Code)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		nilHandler := handler.Wrap(func(handler.Context, planRequest) handler.Response { return nil })
		rec := post(nilHandler, `{}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()
		var order []string
		mark := func(name string) handler.Decorator[handler.Context, planRequest] {
			return func(next handler.HandlerFunc[handler.Context, planRequest]) handler.HandlerFunc[handler.Context, planRequest] {
				return func(ctx handler.Context, req planRequest) handler.Response {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}
		d := handler.Wrap(func(handler.Context, planRequest) handler.Response { return handler.Empty() },
			handler.WithDecorators(mark("outer"), mark("inner")),
		)
		rec := post(d, `{}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{"outer", "inner"}, order)
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	errDomain := errors.New("checkout.errors.same_plan")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"http error", handler.ErrNotFound, http.StatusNotFound, "not_found"},
		{"joined http error", errors.Join(handler.ErrConflict, errDomain), http.StatusConflict, "conflict"},
		{"custom key", handler.NewHTTPError(http.StatusBadRequest, "invalid_signature"), http.StatusBadRequest, "invalid_signature"},
		{"validation", binder.ValidationError{"plan_id": {"is required"}}, http.StatusUnprocessableEntity, "validation_error"},
		{"media type", binder.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"unknown", errDomain, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, detail := handler.ClassifyError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}

	t.Run("internal errors do not leak", func(t *testing.T) {
		t.Parallel()
		_, detail := handler.ClassifyError(errors.New("mongo: connection refused"))
		assert.NotContains(t, detail.Message, "mongo")
	})
}

func TestJSONOptions(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	resp := handler.JSON("ok", handler.WithJSONStatus(http.StatusAccepted), handler.WithJSONMeta(map[string]any{"outcome": "applied"}))
	require.NoError(t, resp.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body.Data)
	assert.Equal(t, "applied", body.Meta["outcome"])
}
