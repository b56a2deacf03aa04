package billing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/reconciler"
)

const maxWebhookSize = 1 << 20

type webhookAck struct {
	Status string `json:"status"`
}

// webhook acks every verified delivery. Only a bad signature (400) or a
// ledger failure (500, so the gateway retries) is reported as an error.
func (m *Module) webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookSize))
	if err != nil {
		writeAck(w, http.StatusBadRequest, "unreadable_body")
		return
	}

	out, err := m.ledger.HandleWebhook(ctx, raw, r.Header.Get(razorpay.SignatureHeader))
	switch {
	case errors.Is(err, reconciler.ErrInvalidSignature):
		m.logger.WarnContext(ctx, "webhook signature rejected", logger.Error(err))
		writeAck(w, http.StatusBadRequest, "invalid_signature")
	case err != nil:
		m.logger.ErrorContext(ctx, "webhook processing failed", logger.Error(err))
		writeAck(w, http.StatusInternalServerError, "error")
	case out == reconciler.OutcomeIgnored:
		writeAck(w, http.StatusOK, "ignored")
	default:
		writeAck(w, http.StatusOK, "ok")
	}
}

func writeAck(w http.ResponseWriter, status int, ack string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(webhookAck{Status: ack})
}
