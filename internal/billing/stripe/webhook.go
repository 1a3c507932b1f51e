package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mentorlane/mentorlane/internal/billing/domain"
)

// Verifier checks Stripe-Signature headers against the webhook secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &Verifier{
		secret:    strings.TrimSpace(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Verify validates the v1 HMAC-SHA256 signature and rejects stale
// timestamps outside the tolerance window.
func (v *Verifier) Verify(payload []byte, sigHeader string) error {
	sigHeader = strings.TrimSpace(sigHeader)
	if sigHeader == "" {
		return domain.ErrMissingSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	if delta := v.now().UTC().Sub(time.Unix(ts, 0)); delta > v.tolerance || delta < -v.tolerance {
		return domain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(v.secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return domain.ErrInvalidSignature
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" && value != "" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("malformed signature header")
	}
	return timestamp, signatures, nil
}

type stripeEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type stripeSubscription struct {
	ID                 string            `json:"id"`
	Status             string            `json:"status"`
	Customer           string            `json:"customer"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	TrialEnd           int64             `json:"trial_end"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	CanceledAt         int64             `json:"canceled_at"`
	Metadata           map[string]string `json:"metadata"`
}

type stripeInvoice struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
}

// ParseEvent decodes a webhook payload into a tagged domain event.
// Unrecognized event types map to Kind Other, which callers acknowledge
// without acting.
func ParseEvent(payload []byte) (*domain.Event, error) {
	var raw stripeEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, domain.ErrMalformedEvent
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, domain.ErrMalformedEvent
	}

	event := &domain.Event{
		ID:      raw.ID,
		RawType: strings.TrimSpace(raw.Type),
		Created: epochToTime(raw.Created),
	}

	switch event.RawType {
	case string(domain.CheckoutCompleted):
		var session domain.CheckoutSession
		if err := json.Unmarshal(raw.Data.Object, &session); err != nil {
			return nil, domain.ErrMalformedEvent
		}
		event.Kind = domain.CheckoutCompleted
		event.CheckoutSession = &session

	case string(domain.SubscriptionCreated), string(domain.SubscriptionUpdated), string(domain.SubscriptionDeleted):
		var sub stripeSubscription
		if err := json.Unmarshal(raw.Data.Object, &sub); err != nil {
			return nil, domain.ErrMalformedEvent
		}
		event.Kind = domain.EventKind(event.RawType)
		event.Subscription = subscriptionSnapshot(sub)

	case string(domain.InvoicePaid), string(domain.InvoiceFailed):
		var invoice stripeInvoice
		if err := json.Unmarshal(raw.Data.Object, &invoice); err != nil {
			return nil, domain.ErrMalformedEvent
		}
		event.Kind = domain.EventKind(event.RawType)
		event.Invoice = &domain.InvoiceSnapshot{
			ID:           invoice.ID,
			Subscription: invoice.Subscription,
		}

	default:
		event.Kind = domain.Other
	}

	return event, nil
}

func subscriptionSnapshot(sub stripeSubscription) *domain.SubscriptionSnapshot {
	return &domain.SubscriptionSnapshot{
		ID:                 sub.ID,
		Status:             sub.Status,
		Customer:           sub.Customer,
		CurrentPeriodStart: epochToTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   epochToTime(sub.CurrentPeriodEnd),
		TrialEnd:           epochToTime(sub.TrialEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CanceledAt:         epochToTime(sub.CanceledAt),
		Metadata:           sub.Metadata,
	}
}

// epochToTime maps provider epoch seconds to UTC time. Zero means the
// provider omitted the field; it never defaults to now.
func epochToTime(epoch int64) *time.Time {
	if epoch == 0 {
		return nil
	}
	t := time.Unix(epoch, 0).UTC()
	return &t
}
