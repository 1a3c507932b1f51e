package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap/zaptest"

	billingdomain "github.com/mentorlane/mentorlane/internal/billing/domain"
	"github.com/mentorlane/mentorlane/internal/billing/reconcile"
	"github.com/mentorlane/mentorlane/internal/config"
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
)

const testSecret = "whsec_dispatch"

func signPayload(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	return signPayloadAt(payload, secret, time.Now().Unix())
}

func signPayloadAt(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

type fakeSubscriptions struct {
	subscriptiondomain.Service

	byProviderRef map[string]*subscriptiondomain.Subscription
	findErr       error
	applied       int
}

func (f *fakeSubscriptions) FindByProviderRef(ctx context.Context, ref string) (*subscriptiondomain.Subscription, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byProviderRef[ref], nil
}

func (f *fakeSubscriptions) ApplyReconcile(ctx context.Context, id snowflake.ID, update subscriptiondomain.ReconcileUpdate) error {
	f.applied++
	return nil
}

type fakeMentorships struct {
	mentorshipdomain.Service
}

func (f *fakeMentorships) EnsureForSubscription(ctx context.Context, mentorID, menteeID, subscriptionID snowflake.ID) (mentorshipdomain.Mentorship, error) {
	return mentorshipdomain.Mentorship{}, nil
}

func newTestDispatcher(t *testing.T, subs *fakeSubscriptions) *Dispatcher {
	t.Helper()
	log := zaptest.NewLogger(t)
	return &Dispatcher{
		log:     log,
		secret:  testSecret,
		billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
		reconciler: reconcile.New(reconcile.Params{
			Log:           log,
			Subscriptions: subs,
			Mentorships:   &fakeMentorships{},
		}),
	}
}

func TestHandleRejectsBadSignature(t *testing.T) {
	subs := &fakeSubscriptions{}
	d := newTestDispatcher(t, subs)
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_failed","data":{"object":{}}}`)

	if err := d.Handle(context.Background(), payload, ""); !errors.Is(err, billingdomain.ErrMissingSignature) {
		t.Fatalf("expected missing signature error, got %v", err)
	}
	if err := d.Handle(context.Background(), payload, signPayload(t, payload, "whsec_other")); !errors.Is(err, billingdomain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature error, got %v", err)
	}
	if subs.applied != 0 {
		t.Fatalf("unverified payloads must not reach the reconciler")
	}
}

func TestHandleAcksMalformedPayload(t *testing.T) {
	d := newTestDispatcher(t, &fakeSubscriptions{})
	payload := []byte(`{"id":`)

	if err := d.Handle(context.Background(), payload, signPayload(t, payload, testSecret)); err != nil {
		t.Fatalf("malformed payloads are acknowledged, got %v", err)
	}
}

func TestHandleRoutesInvoiceFailed(t *testing.T) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	subs := &fakeSubscriptions{
		byProviderRef: map[string]*subscriptiondomain.Subscription{
			"sub_42": {ID: node.Generate(), Status: subscriptiondomain.StatusActive},
		},
	}
	d := newTestDispatcher(t, subs)
	payload := []byte(`{"id":"evt_2","type":"invoice.payment_failed","data":{"object":{"id":"in_1","subscription":"sub_42"}}}`)

	if err := d.Handle(context.Background(), payload, signPayload(t, payload, testSecret)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if subs.applied != 1 {
		t.Fatalf("expected one reconcile update, got %d", subs.applied)
	}
}

func TestHandleAcksProcessingFailure(t *testing.T) {
	subs := &fakeSubscriptions{findErr: errors.New("database down")}
	d := newTestDispatcher(t, subs)
	payload := []byte(`{"id":"evt_3","type":"invoice.payment_failed","data":{"object":{"id":"in_1","subscription":"sub_42"}}}`)

	if err := d.Handle(context.Background(), payload, signPayload(t, payload, testSecret)); err != nil {
		t.Fatalf("processing failures are acknowledged, got %v", err)
	}
}

func TestHandleToleranceFollowsConfigReload(t *testing.T) {
	subs := &fakeSubscriptions{}
	d := newTestDispatcher(t, subs)
	payload := []byte(`{"id":"evt_5","type":"price.created","data":{"object":{"id":"price_1"}}}`)
	sig := signPayloadAt(payload, testSecret, time.Now().Add(-30*time.Minute).Unix())

	if err := d.Handle(context.Background(), payload, sig); !errors.Is(err, billingdomain.ErrInvalidSignature) {
		t.Fatalf("expected stale timestamp rejected, got %v", err)
	}

	cfg := config.DefaultBillingConfig()
	cfg.SigningToleranceSecs = 3600
	d.billing.Store(cfg)

	if err := d.Handle(context.Background(), payload, sig); err != nil {
		t.Fatalf("widened tolerance should accept the delivery, got %v", err)
	}
}

func TestHandleAcksCatalogEvents(t *testing.T) {
	subs := &fakeSubscriptions{}
	d := newTestDispatcher(t, subs)
	payload := []byte(`{"id":"evt_4","type":"product.updated","data":{"object":{"id":"prod_1"}}}`)

	if err := d.Handle(context.Background(), payload, signPayload(t, payload, testSecret)); err != nil {
		t.Fatalf("catalog events are acknowledged, got %v", err)
	}
	if subs.applied != 0 {
		t.Fatalf("catalog events must not mutate subscriptions")
	}
}
