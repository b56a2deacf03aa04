package logger

import (
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under the key "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func UserID(id string) slog.Attr { return optionalString("user_id", id) }

func RequestID(id string) slog.Attr { return optionalString("request_id", id) }

func PaymentID(id string) slog.Attr { return optionalString("payment_id", id) }

func OrderID(id string) slog.Attr { return optionalString("order_id", id) }

func SubscriptionID(id string) slog.Attr { return optionalString("subscription_id", id) }

func InvoiceID(id string) slog.Attr { return optionalString("invoice_id", id) }

func PlanID(id string) slog.Attr { return optionalString("plan_id", id) }

func AddonID(id string) slog.Attr { return optionalString("addon_id", id) }

// EventType records the gateway event discriminator.
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Job(name string) slog.Attr {
	return slog.String("job", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func optionalString(key, v string) slog.Attr {
	if v == "" {
		return slog.Attr{}
	}
	return slog.String(key, v)
}
