package subscription

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

const (
	// subscribed is the profile status after a reconciled COMPLETE payment.
	statusSubscribed = "subscribed"

	// subscriptionMonths is the fixed window granted per payment.
	subscriptionMonths = 3

	billingDateLayout = "2006-01-02"
)

// Service reconciles gateway payment notifications against subscriber
// profiles.
type Service struct {
	profiles   ProfileRepository
	replay     ReplayGuard
	passphrase string
}

// NewService creates a new reconciler. The passphrase is the shared secret
// the gateway signs notifications with.
func NewService(profiles ProfileRepository, replay ReplayGuard, passphrase string) *Service {
	return &Service{
		profiles:   profiles,
		replay:     replay,
		passphrase: passphrase,
	}
}

// VerifySignature checks the notification signature: HMAC-MD5 over the exact
// raw body with the shared passphrase, hex-encoded. MD5 is what the gateway
// signs with; the compare is constant time.
func (s *Service) VerifySignature(rawBody []byte, providedSig string) bool {
	mac := hmac.New(md5.New, []byte(s.passphrase))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(providedSig))
}

// addMonthsClamped advances by whole calendar months, clamping to the last
// day of the target month instead of normalizing past it. Jan 31 plus three
// months is Apr 30, not May 1.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// ComputeWindow derives the subscription window from the billing date: start
// on the billing date, end three calendar months later with month-end
// clamping.
func ComputeWindow(billingDate time.Time) (start, end time.Time) {
	start = time.Date(billingDate.Year(), billingDate.Month(), billingDate.Day(), 0, 0, 0, 0, time.UTC)
	end = addMonthsClamped(start, subscriptionMonths)
	return start, end
}

// ApplyPayment reconciles one validated notification. Non-COMPLETE statuses
// are acknowledged without touching state. A redelivered payment id is a
// no-op success.
func (s *Service) ApplyPayment(ctx context.Context, n *PaymentNotification) error {
	if n.PaymentStatus != StatusComplete {
		slog.Info("Ignoring payment notification", "status", n.PaymentStatus, "paymentId", n.PfPaymentID)
		return nil
	}

	first, err := s.replay.MarkSeen(ctx, n.PfPaymentID)
	if err != nil {
		return fmt.Errorf("replay guard failed: %w", err)
	}
	if !first {
		slog.Info("Duplicate payment notification", "paymentId", n.PfPaymentID)
		return nil
	}

	if err := s.reconcile(ctx, n); err != nil {
		// Release the id so a gateway redelivery is not treated as a
		// duplicate of a payment that was never applied.
		if forgetErr := s.replay.Forget(ctx, n.PfPaymentID); forgetErr != nil {
			slog.Error("Failed releasing payment id after reconcile failure", "paymentId", n.PfPaymentID, "err", forgetErr)
		}
		return err
	}
	return nil
}

func (s *Service) reconcile(ctx context.Context, n *PaymentNotification) error {
	billingDate := time.Now().UTC()
	if n.BillingDate != "" {
		parsed, err := time.Parse(billingDateLayout, n.BillingDate)
		if err != nil {
			return fmt.Errorf("%w: bad billing_date %q", ErrMalformedNotification, n.BillingDate)
		}
		billingDate = parsed
	}

	start, end := ComputeWindow(billingDate)

	err := s.profiles.UpdateSubscription(ctx, n.EmailAddress, statusSubscribed, start, end, n.PfPaymentID)
	if err != nil {
		return err
	}

	slog.Info("Subscription reconciled",
		"email", n.EmailAddress,
		"paymentId", n.PfPaymentID,
		"start", start.Format(billingDateLayout),
		"end", end.Format(billingDateLayout))
	return nil
}
