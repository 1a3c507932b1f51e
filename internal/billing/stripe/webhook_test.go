package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mentorlane/mentorlane/internal/billing/domain"
)

func buildSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{}}}`)
	timestamp := time.Now().Unix()

	verifier := NewVerifier(secret, 5*time.Minute)
	if err := verifier.Verify(payload, buildSignatureHeader(secret, payload, timestamp)); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	if err := verifier.Verify(payload, buildSignatureHeader("wrong", payload, timestamp)); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	if err := verifier.Verify(payload, ""); !errors.Is(err, domain.ErrMissingSignature) {
		t.Fatalf("expected missing signature, got %v", err)
	}

	if err := verifier.Verify(payload, "t=,v1="); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature for empty pieces, got %v", err)
	}
}

func TestVerifySignatureTolerance(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{}}}`)

	verifier := NewVerifier(secret, 5*time.Minute)

	stale := time.Now().Add(-10 * time.Minute).Unix()
	if err := verifier.Verify(payload, buildSignatureHeader(secret, payload, stale)); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected stale timestamp rejection, got %v", err)
	}

	recent := time.Now().Add(-1 * time.Minute).Unix()
	if err := verifier.Verify(payload, buildSignatureHeader(secret, payload, recent)); err != nil {
		t.Fatalf("expected recent timestamp accepted, got %v", err)
	}
}

func TestVerifyAcceptsSecondSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{}`)
	timestamp := time.Now().Unix()

	valid := buildSignatureHeader(secret, payload, timestamp)
	// Stripe sends multiple v1 entries during secret rotation.
	header := fmt.Sprintf("t=%d,v1=deadbeef,%s", timestamp, valid[len(fmt.Sprintf("t=%d,", timestamp)):])

	verifier := NewVerifier(secret, 5*time.Minute)
	if err := verifier.Verify(payload, header); err != nil {
		t.Fatalf("expected one matching signature to pass, got %v", err)
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestParseEventCheckoutCompleted(t *testing.T) {
	payload := mustMarshal(t, map[string]any{
		"id":      "evt_checkout",
		"type":    "checkout.session.completed",
		"created": time.Now().Unix(),
		"data": map[string]any{
			"object": map[string]any{
				"id":           "cs_1",
				"mode":         "subscription",
				"subscription": "sub_1",
				"metadata": map[string]any{
					"subscription_id": "123456",
				},
			},
		},
	})

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Kind != domain.CheckoutCompleted {
		t.Fatalf("expected checkout kind, got %s", event.Kind)
	}
	if event.CheckoutSession == nil || event.CheckoutSession.Subscription != "sub_1" {
		t.Fatalf("checkout session not populated: %+v", event.CheckoutSession)
	}
	if event.CheckoutSession.Metadata["subscription_id"] != "123456" {
		t.Fatalf("metadata not carried: %+v", event.CheckoutSession.Metadata)
	}
}

func TestParseEventSubscriptionTimestamps(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	payload := mustMarshal(t, map[string]any{
		"id":   "evt_sub",
		"type": "customer.subscription.updated",
		"data": map[string]any{
			"object": map[string]any{
				"id":                   "sub_1",
				"status":               "past_due",
				"customer":             "cus_1",
				"current_period_start": start.Unix(),
				"cancel_at_period_end": true,
				// trial_end and canceled_at intentionally absent
			},
		},
	})

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sub := event.Subscription
	if sub == nil {
		t.Fatalf("subscription not populated")
	}
	if sub.CurrentPeriodStart == nil || !sub.CurrentPeriodStart.Equal(start) {
		t.Fatalf("period start mismatch: %v", sub.CurrentPeriodStart)
	}
	if sub.TrialEnd != nil {
		t.Fatalf("absent trial_end should stay nil, got %v", sub.TrialEnd)
	}
	if sub.CanceledAt != nil {
		t.Fatalf("absent canceled_at should stay nil, got %v", sub.CanceledAt)
	}
	if !sub.CancelAtPeriodEnd {
		t.Fatalf("cancel_at_period_end lost")
	}
}

func TestParseEventUnknownTypes(t *testing.T) {
	for _, eventType := range []string{"product.created", "price.updated", "plan.deleted", "charge.refunded"} {
		payload := mustMarshal(t, map[string]any{
			"id":   "evt_other",
			"type": eventType,
			"data": map[string]any{"object": map[string]any{}},
		})
		event, err := ParseEvent(payload)
		if err != nil {
			t.Fatalf("%s: parse: %v", eventType, err)
		}
		if event.Kind != domain.Other {
			t.Fatalf("%s: expected Other kind, got %s", eventType, event.Kind)
		}
	}
}

func TestParseEventMalformed(t *testing.T) {
	if _, err := ParseEvent([]byte("not json")); !errors.Is(err, domain.ErrMalformedEvent) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if _, err := ParseEvent([]byte(`{"type":"invoice.payment_failed"}`)); !errors.Is(err, domain.ErrMalformedEvent) {
		t.Fatalf("expected malformed error for missing id, got %v", err)
	}
}
