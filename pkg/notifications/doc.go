// Package notifications stores and delivers in-app notifications about plan
// and payment events.
//
// The package is split in three layers:
//
//   - Storage: persistence (MemoryStorage, MongoStorage)
//   - Deliverer: optional real-time push, best effort
//   - Manager: stores first, then attempts delivery
//
// # Basic Usage
//
//	manager := notifications.NewManager(notifications.NewMongoStorage(db), nil)
//
//	err := manager.Send(ctx, notifications.Notification{
//		UserID:    "665f...",
//		Kind:      notifications.KindPaymentSuccess,
//		Title:     "Payment Successful",
//		Message:   "Your SILVER plan is active.",
//		RelatedID: "pay_123",
//	})
//
// A stored notification is never rolled back by a delivery failure; the
// failure is logged and the notification remains listable.
package notifications
