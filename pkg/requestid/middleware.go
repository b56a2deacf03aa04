package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header = "X-Request-ID"
	// EventHeader is the webhook delivery id set by the payment gateway.
	EventHeader = "X-Razorpay-Event-Id"
	maxIDLength = 128
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := pick(r.Header.Get(Header), r.Header.Get(EventHeader))
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

func pick(candidates ...string) string {
	for _, c := range candidates {
		if valid(c) {
			return c
		}
	}
	return uuid.NewString()
}

func valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
