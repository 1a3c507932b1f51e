package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/mentorlane/mentorlane/internal/billing/reconcile"
	"github.com/mentorlane/mentorlane/internal/billing/webhook"
	"github.com/mentorlane/mentorlane/internal/config"
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
)

const webhookTestSecret = "whsec_server"

type stubSubscriptions struct {
	subscriptiondomain.Service

	applied int
}

func (s *stubSubscriptions) FindByProviderRef(ctx context.Context, ref string) (*subscriptiondomain.Subscription, error) {
	return &subscriptiondomain.Subscription{ID: snowflake.ID(1), Status: subscriptiondomain.StatusActive}, nil
}

func (s *stubSubscriptions) ApplyReconcile(ctx context.Context, id snowflake.ID, update subscriptiondomain.ReconcileUpdate) error {
	s.applied++
	return nil
}

type stubMentorships struct {
	mentorshipdomain.Service
}

func (s *stubMentorships) EnsureForSubscription(ctx context.Context, mentorID, menteeID, subscriptionID snowflake.ID) (mentorshipdomain.Mentorship, error) {
	return mentorshipdomain.Mentorship{}, nil
}

func newWebhookTestServer(t *testing.T) (*gin.Engine, *stubSubscriptions) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zaptest.NewLogger(t)
	subs := &stubSubscriptions{}
	dispatcher := webhook.New(webhook.Params{
		Log:     log,
		Config:  config.Config{StripeWebhookSecret: webhookTestSecret},
		Billing: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
		Reconciler: reconcile.New(reconcile.Params{
			Log:           log,
			Subscriptions: subs,
			Mentorships:   &stubMentorships{},
		}),
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	srv := &Server{engine: engine, webhooks: dispatcher}
	srv.registerWebhookRoutes()
	return engine, subs
}

func signWebhookPayload(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(engine *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhookEndpointRejectsBadSignature(t *testing.T) {
	engine, subs := newWebhookTestServer(t)
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_failed","data":{"object":{"id":"in_1","subscription":"sub_1"}}}`)

	rec := postWebhook(engine, payload, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing signature: expected 400, got %d", rec.Code)
	}

	rec = postWebhook(engine, payload, "t=123,v1=deadbeef")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad signature: expected 400, got %d", rec.Code)
	}
	if subs.applied != 0 {
		t.Fatalf("unverified requests must not reach reconciliation")
	}
}

func TestWebhookEndpointAcknowledgesEvents(t *testing.T) {
	engine, subs := newWebhookTestServer(t)
	payload := []byte(`{"id":"evt_2","type":"invoice.payment_failed","data":{"object":{"id":"in_1","subscription":"sub_1"}}}`)

	rec := postWebhook(engine, payload, signWebhookPayload(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Fatalf("expected acknowledgment body, got %s", rec.Body.String())
	}
	if subs.applied != 1 {
		t.Fatalf("expected one reconcile update, got %d", subs.applied)
	}
}

func TestWebhookEndpointAcknowledgesUnhandledTypes(t *testing.T) {
	engine, subs := newWebhookTestServer(t)
	payload := []byte(`{"id":"evt_3","type":"price.created","data":{"object":{"id":"price_1"}}}`)

	rec := postWebhook(engine, payload, signWebhookPayload(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if subs.applied != 0 {
		t.Fatalf("catalog events must not mutate state")
	}
}

func TestWebhookEndpointLiveness(t *testing.T) {
	engine, _ := newWebhookTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/webhooks/stripe", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
