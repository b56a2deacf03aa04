package ledger

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. All operations hold one mutex, which
// gives the same per-key atomicity the Mongo conditional updates give.
type MemoryStore struct {
	mu       sync.Mutex
	payments map[string]*PaymentRecord
	subs     map[string]string // subscription id -> payment id
	addons   map[string]*AddonPurchase
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		payments: make(map[string]*PaymentRecord),
		subs:     make(map[string]string),
		addons:   make(map[string]*AddonPurchase),
	}
}

func (s *MemoryStore) UpsertPayment(_ context.Context, w PaymentWrite) (PaymentRecord, error) {
	if err := w.Validate(); err != nil {
		return PaymentRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[w.PaymentID]
	if !ok {
		rec = &PaymentRecord{
			PaymentID: w.PaymentID,
			CreatedAt: w.Now,
		}
		s.payments[w.PaymentID] = rec
	} else if !slices.Contains(allowedFrom(w.Status), rec.Status) {
		return *rec, rejectReason(rec.Status, w.Status)
	}

	rec.UserID = w.UserID
	rec.OrderID = w.OrderID
	rec.PlanID = w.PlanID
	rec.Amount = w.Amount
	rec.Currency = w.Currency
	rec.Status = w.Status
	rec.Message = w.Message
	rec.ExpiryDate = cloneTime(w.ExpiryDate)
	rec.UpdatedAt = w.Now
	return clonePayment(rec), nil
}

func (s *MemoryStore) ClaimPaymentMail(_ context.Context, paymentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[paymentID]
	if !ok {
		return false, ErrNotFound
	}
	if rec.MailSent {
		return false, nil
	}
	rec.MailSent = true
	return true, nil
}

func (s *MemoryStore) FindPayment(_ context.Context, paymentID string) (PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[paymentID]
	if !ok {
		return PaymentRecord{}, ErrNotFound
	}
	return clonePayment(rec), nil
}

func (s *MemoryStore) CreateSubscription(_ context.Context, rec PaymentRecord) error {
	if rec.SubscriptionID == "" || rec.UserID == "" {
		return errorf("subscription id and user id are required")
	}
	if rec.PaymentID == "" {
		rec.PaymentID = rec.SubscriptionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.subs[rec.SubscriptionID]; dup {
		return ErrDuplicate
	}
	if _, dup := s.payments[rec.PaymentID]; dup {
		return ErrDuplicate
	}
	c := clonePayment(&rec)
	s.payments[rec.PaymentID] = &c
	s.subs[rec.SubscriptionID] = rec.PaymentID
	return nil
}

func (s *MemoryStore) FindSubscription(_ context.Context, subscriptionID string) (PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.subscription(subscriptionID)
	if err != nil {
		return PaymentRecord{}, err
	}
	return clonePayment(rec), nil
}

func (s *MemoryStore) FindActiveSubscription(_ context.Context, userID string) (PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *PaymentRecord
	for _, rec := range s.payments {
		if rec.UserID != userID || !rec.Autopay || rec.SubscriptionStatus != SubscriptionActive {
			continue
		}
		if best == nil || rec.UpdatedAt.After(best.UpdatedAt) {
			best = rec
		}
	}
	if best == nil {
		return PaymentRecord{}, ErrNotFound
	}
	return clonePayment(best), nil
}

func (s *MemoryStore) ActivateSubscription(_ context.Context, subscriptionID string, expiry *time.Time, now time.Time) (PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.subscription(subscriptionID)
	if err != nil {
		return PaymentRecord{}, err
	}
	switch rec.SubscriptionStatus {
	case SubscriptionActive:
		return clonePayment(rec), ErrAlreadyApplied
	case SubscriptionCancelled:
		return clonePayment(rec), ErrTransitionRejected
	}
	rec.Autopay = true
	rec.SubscriptionStatus = SubscriptionActive
	rec.ExpiryDate = cloneTime(expiry)
	rec.UpdatedAt = now
	return clonePayment(rec), nil
}

func (s *MemoryStore) RenewSubscription(_ context.Context, subscriptionID, invoiceID string, period time.Duration, now time.Time) (PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.subscription(subscriptionID)
	if err != nil {
		return PaymentRecord{}, err
	}
	if rec.LastInvoiceID == invoiceID {
		return clonePayment(rec), ErrAlreadyApplied
	}
	if rec.Status == StatusExpired {
		return clonePayment(rec), ErrTransitionRejected
	}

	anchor := now
	if rec.ExpiryDate != nil && rec.ExpiryDate.After(now) {
		anchor = *rec.ExpiryDate
	}
	next := anchor.Add(period)
	rec.ExpiryDate = &next
	rec.Status = StatusSuccess
	rec.LastInvoiceID = invoiceID
	rec.UpdatedAt = now
	return clonePayment(rec), nil
}

func (s *MemoryStore) CancelSubscription(_ context.Context, subscriptionID string, now time.Time) (PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.subscription(subscriptionID)
	if err != nil {
		return PaymentRecord{}, err
	}
	if rec.SubscriptionStatus == SubscriptionCancelled {
		return clonePayment(rec), ErrAlreadyApplied
	}
	rec.Autopay = false
	rec.SubscriptionStatus = SubscriptionCancelled
	rec.UpdatedAt = now
	return clonePayment(rec), nil
}

func (s *MemoryStore) InsertAddon(_ context.Context, a AddonPurchase) error {
	if a.Autopay {
		return ErrAddonAutopay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.addons[a.PaymentID]; dup {
		return ErrDuplicate
	}
	c := a
	s.addons[a.PaymentID] = &c
	return nil
}

func (s *MemoryStore) ClaimAddonMail(_ context.Context, paymentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.addons[paymentID]
	if !ok {
		return false, ErrNotFound
	}
	if a.MailSent {
		return false, nil
	}
	a.MailSent = true
	return true, nil
}

func (s *MemoryStore) FindAddon(_ context.Context, paymentID string) (AddonPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.addons[paymentID]
	if !ok {
		return AddonPurchase{}, ErrNotFound
	}
	return *a, nil
}

func (s *MemoryStore) ActivePayment(_ context.Context, userID string, now time.Time) (PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *PaymentRecord
	for _, rec := range s.payments {
		if rec.UserID != userID || !rec.Entitles(now) {
			continue
		}
		if best == nil || rec.UpdatedAt.After(best.UpdatedAt) {
			best = rec
		}
	}
	if best == nil {
		return PaymentRecord{}, ErrNotFound
	}
	return clonePayment(best), nil
}

func (s *MemoryStore) AddonUnits(_ context.Context, userID, sku string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, a := range s.addons {
		if a.UserID == userID && a.SKU == sku && a.Counts(now) {
			total += a.Quantity
		}
	}
	return total, nil
}

func (s *MemoryStore) ExpiryCandidates(_ context.Context, now time.Time, limit int) ([]PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PaymentRecord
	for _, rec := range s.payments {
		if rec.UserID != "" && rec.ExpiryDue(now) {
			out = append(out, clonePayment(rec))
		}
	}
	sortByExpiry(out)
	return truncate(out, limit), nil
}

func (s *MemoryStore) MarkExpired(_ context.Context, paymentID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[paymentID]
	if !ok {
		return false, ErrNotFound
	}
	if rec.Status != StatusSuccess || rec.ExpiredAt != nil {
		return false, nil
	}
	rec.Status = StatusExpired
	rec.ExpiredAt = &now
	return true, nil
}

func (s *MemoryStore) ReminderCandidates(_ context.Context, m Reminder, from, to time.Time, limit int) ([]PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PaymentRecord
	for _, rec := range s.payments {
		if rec.Status != StatusSuccess || rec.Autopay || rec.ExpiryDate == nil || rec.Reminded(m) {
			continue
		}
		if rec.ExpiryDate.Before(from) || !rec.ExpiryDate.Before(to) {
			continue
		}
		out = append(out, clonePayment(rec))
	}
	sortByExpiry(out)
	return truncate(out, limit), nil
}

func (s *MemoryStore) ClaimReminder(_ context.Context, paymentID string, m Reminder) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[paymentID]
	if !ok {
		return false, ErrNotFound
	}
	if rec.Reminded(m) {
		return false, nil
	}
	if m == ReminderTwoDays {
		rec.TwoDayMailSent = true
	} else {
		rec.TodayMailSent = true
	}
	return true, nil
}

func (s *MemoryStore) subscription(subscriptionID string) (*PaymentRecord, error) {
	id, ok := s.subs[subscriptionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.payments[id], nil
}

func clonePayment(r *PaymentRecord) PaymentRecord {
	c := *r
	c.ExpiryDate = cloneTime(r.ExpiryDate)
	c.ExpiredAt = cloneTime(r.ExpiredAt)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func sortByExpiry(recs []PaymentRecord) {
	slices.SortFunc(recs, func(a, b PaymentRecord) int {
		return a.ExpiryDate.Compare(*b.ExpiryDate)
	})
}

func truncate(recs []PaymentRecord, limit int) []PaymentRecord {
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
