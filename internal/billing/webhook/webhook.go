package webhook

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mentorlane/mentorlane/internal/billing/domain"
	"github.com/mentorlane/mentorlane/internal/billing/reconcile"
	"github.com/mentorlane/mentorlane/internal/billing/stripe"
	"github.com/mentorlane/mentorlane/internal/config"
	"github.com/mentorlane/mentorlane/internal/observability/metrics"
)

const providerLabel = "stripe"

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     config.Config
	Billing    *config.BillingConfigHolder
	Reconciler *reconcile.Reconciler
	Metrics    *metrics.Metrics
}

// Dispatcher verifies, parses, and routes incoming provider webhooks.
// Signature failures are the only errors surfaced to the transport;
// processing failures are logged and acknowledged so the provider does
// not retry events that will fail the same way again.
type Dispatcher struct {
	log        *zap.Logger
	secret     string
	billing    *config.BillingConfigHolder
	reconciler *reconcile.Reconciler
	metrics    *metrics.Metrics
}

func New(p Params) *Dispatcher {
	return &Dispatcher{
		log:        p.Log.Named("billing.webhook"),
		secret:     p.Config.StripeWebhookSecret,
		billing:    p.Billing,
		reconciler: p.Reconciler,
		metrics:    p.Metrics,
	}
}

// Handle processes one webhook delivery. It returns an error only for
// signature problems; callers map those to 400 and everything else to
// an acknowledgment. The signing tolerance is read from the config
// holder per delivery so hot reloads apply without a restart.
func (d *Dispatcher) Handle(ctx context.Context, payload []byte, sigHeader string) error {
	verifier := stripe.NewVerifier(d.secret, d.billing.Get().SigningTolerance())
	if err := verifier.Verify(payload, sigHeader); err != nil {
		d.metrics.RecordWebhookEvent(ctx, providerLabel, "unknown", "bad_signature")
		return err
	}

	event, err := stripe.ParseEvent(payload)
	if err != nil {
		// The payload authenticated, so a decode failure is ours to debug,
		// not the provider's to retry.
		d.metrics.RecordWebhookEvent(ctx, providerLabel, "unknown", "malformed")
		d.log.Error("webhook payload failed to parse", zap.Error(err))
		return nil
	}

	log := d.log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.RawType),
	)

	if err := d.route(ctx, event); err != nil {
		d.metrics.RecordWebhookEvent(ctx, providerLabel, event.RawType, "error")
		log.Error("webhook processing failed", zap.Error(err))
		return nil
	}

	d.metrics.RecordWebhookEvent(ctx, providerLabel, event.RawType, "ok")
	log.Debug("webhook processed")
	return nil
}

func (d *Dispatcher) route(ctx context.Context, event *domain.Event) error {
	switch event.Kind {
	case domain.CheckoutCompleted:
		return d.reconciler.HandleCheckoutCompleted(ctx, event.CheckoutSession)
	case domain.SubscriptionCreated:
		return d.reconciler.HandleSubscriptionCreated(ctx, event.Subscription)
	case domain.SubscriptionUpdated:
		return d.reconciler.HandleSubscriptionUpdated(ctx, event.Subscription)
	case domain.SubscriptionDeleted:
		return d.reconciler.HandleSubscriptionDeleted(ctx, event.Subscription)
	case domain.InvoiceFailed:
		return d.reconciler.HandleInvoiceFailed(ctx, event.Invoice)
	case domain.InvoicePaid:
		return d.reconciler.HandleInvoicePaid(ctx, event.Invoice)
	default:
		// Catalog events (product.*, price.*, plan.*) and anything newer
		// than this build arrive here. Acknowledge and move on.
		return nil
	}
}
