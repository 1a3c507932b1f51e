package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	billingdomain "github.com/mentorlane/mentorlane/internal/billing/domain"
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	"github.com/mentorlane/mentorlane/internal/observability/metrics"
	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
)

// metadataSubscriptionKey is the metadata key carrying the local
// subscription id on provider objects created at checkout time.
const metadataSubscriptionKey = "subscription_id"

type Params struct {
	fx.In

	Log           *zap.Logger
	Subscriptions subscriptiondomain.Service
	Mentorships   mentorshipdomain.Service
	Provider      billingdomain.ProviderClient
	Metrics       *metrics.Metrics
}

// Reconciler applies provider webhook events to local subscription
// state and provisions mentorships when subscriptions go active. Every
// handler is idempotent: replaying an event converges on the same row.
type Reconciler struct {
	log           *zap.Logger
	subscriptions subscriptiondomain.Service
	mentorships   mentorshipdomain.Service
	provider      billingdomain.ProviderClient
	metrics       *metrics.Metrics
}

func New(p Params) *Reconciler {
	return &Reconciler{
		log:           p.Log.Named("billing.reconcile"),
		subscriptions: p.Subscriptions,
		mentorships:   p.Mentorships,
		provider:      p.Provider,
		metrics:       p.Metrics,
	}
}

// mapProviderStatus folds the provider's status vocabulary onto the
// local one. Anything unrecognized is treated as active rather than
// guessed at, matching the provider's own "in good standing" default.
func mapProviderStatus(providerStatus string) subscriptiondomain.Status {
	switch providerStatus {
	case "canceled", "unpaid":
		return subscriptiondomain.StatusCanceled
	case "past_due":
		return subscriptiondomain.StatusPastDue
	case "paused":
		return subscriptiondomain.StatusPaused
	default:
		return subscriptiondomain.StatusActive
	}
}

// HandleCheckoutCompleted activates the subscription referenced by the
// checkout session's metadata. Payment-mode sessions and sessions
// without the metadata key are skipped without error.
func (r *Reconciler) HandleCheckoutCompleted(ctx context.Context, session *billingdomain.CheckoutSession) error {
	if session == nil || session.Mode != "subscription" {
		return nil
	}

	subscription, err := r.lookupByMetadata(ctx, session.Metadata)
	if err != nil || subscription == nil {
		return err
	}

	update := subscriptiondomain.ReconcileUpdate{
		Status: statusPtr(subscriptiondomain.StatusActive),
	}
	if session.Subscription != "" {
		update.ProviderSubscriptionID = strPtr(session.Subscription)

		// The checkout object does not carry period bounds, so fetch the
		// subscription it produced. A retrieval failure still activates the
		// row; the next subscription-updated event fills the gaps.
		if snapshot, retrieveErr := r.provider.RetrieveSubscription(ctx, session.Subscription); retrieveErr == nil {
			update.ProviderCustomerID = strPtr(snapshot.Customer)
			update.CurrentPeriodStart = snapshot.CurrentPeriodStart
			update.CurrentPeriodEnd = snapshot.CurrentPeriodEnd
			update.TrialEnd = snapshot.TrialEnd
		} else {
			r.log.Warn("subscription retrieval after checkout failed",
				zap.String("subscription_id", subscription.ID.String()),
				zap.Error(retrieveErr),
			)
		}
	}

	if err := r.subscriptions.ApplyReconcile(ctx, subscription.ID, update); err != nil {
		return err
	}
	r.recordTransition(ctx, subscription.Status, subscriptiondomain.StatusActive)
	r.log.Info("subscription activated from checkout",
		zap.String("subscription_id", subscription.ID.String()),
	)
	return nil
}

// HandleSubscriptionCreated activates the metadata-referenced
// subscription and provisions its mentorship.
func (r *Reconciler) HandleSubscriptionCreated(ctx context.Context, snapshot *billingdomain.SubscriptionSnapshot) error {
	if snapshot == nil {
		return nil
	}

	subscription, err := r.lookupByMetadata(ctx, snapshot.Metadata)
	if err != nil || subscription == nil {
		return err
	}

	update := subscriptiondomain.ReconcileUpdate{
		Status:                 statusPtr(subscriptiondomain.StatusActive),
		ProviderSubscriptionID: strPtr(snapshot.ID),
		ProviderCustomerID:     strPtr(snapshot.Customer),
		CurrentPeriodStart:     snapshot.CurrentPeriodStart,
		CurrentPeriodEnd:       snapshot.CurrentPeriodEnd,
		TrialEnd:               snapshot.TrialEnd,
	}
	if err := r.subscriptions.ApplyReconcile(ctx, subscription.ID, update); err != nil {
		return err
	}
	r.recordTransition(ctx, subscription.Status, subscriptiondomain.StatusActive)

	r.provisionMentorship(ctx, subscription)
	return nil
}

// HandleSubscriptionUpdated maps the provider status onto the stored
// row, keyed by the stored provider reference. Unknown references are
// skipped: the subscription belongs to another system or predates this
// one.
func (r *Reconciler) HandleSubscriptionUpdated(ctx context.Context, snapshot *billingdomain.SubscriptionSnapshot) error {
	if snapshot == nil {
		return nil
	}

	subscription, err := r.lookupByProviderRef(ctx, snapshot.ID)
	if err != nil || subscription == nil {
		return err
	}

	status := mapProviderStatus(snapshot.Status)
	// The updated event carries the subscription's full timestamp state,
	// so absent fields clear the stored value. A reactivated subscription
	// must not keep its old canceled_at.
	update := subscriptiondomain.ReconcileUpdate{
		Status:                  statusPtr(status),
		CurrentPeriodStart:      snapshot.CurrentPeriodStart,
		CurrentPeriodEnd:        snapshot.CurrentPeriodEnd,
		TrialEnd:                snapshot.TrialEnd,
		CancelAtPeriodEnd:       boolPtr(snapshot.CancelAtPeriodEnd),
		CanceledAt:              snapshot.CanceledAt,
		AuthoritativeTimestamps: true,
	}
	if err := r.subscriptions.ApplyReconcile(ctx, subscription.ID, update); err != nil {
		return err
	}
	r.recordTransition(ctx, subscription.Status, status)

	if status == subscriptiondomain.StatusActive {
		r.provisionMentorship(ctx, subscription)
	}
	return nil
}

// HandleSubscriptionDeleted marks the row cancelled. The provider's
// canceled_at is preferred; a missing one falls back to now.
func (r *Reconciler) HandleSubscriptionDeleted(ctx context.Context, snapshot *billingdomain.SubscriptionSnapshot) error {
	if snapshot == nil {
		return nil
	}

	subscription, err := r.lookupByProviderRef(ctx, snapshot.ID)
	if err != nil || subscription == nil {
		return err
	}

	canceledAt := snapshot.CanceledAt
	if canceledAt == nil {
		now := time.Now().UTC()
		canceledAt = &now
	}

	update := subscriptiondomain.ReconcileUpdate{
		Status:     statusPtr(subscriptiondomain.StatusCanceled),
		CanceledAt: canceledAt,
	}
	if err := r.subscriptions.ApplyReconcile(ctx, subscription.ID, update); err != nil {
		return err
	}
	r.recordTransition(ctx, subscription.Status, subscriptiondomain.StatusCanceled)
	return nil
}

// HandleInvoiceFailed flips the subscription to past_due so the UI can
// prompt for a new payment method.
func (r *Reconciler) HandleInvoiceFailed(ctx context.Context, invoice *billingdomain.InvoiceSnapshot) error {
	if invoice == nil || invoice.Subscription == "" {
		return nil
	}

	subscription, err := r.lookupByProviderRef(ctx, invoice.Subscription)
	if err != nil || subscription == nil {
		return err
	}

	update := subscriptiondomain.ReconcileUpdate{
		Status: statusPtr(subscriptiondomain.StatusPastDue),
	}
	if err := r.subscriptions.ApplyReconcile(ctx, subscription.ID, update); err != nil {
		return err
	}
	r.recordTransition(ctx, subscription.Status, subscriptiondomain.StatusPastDue)
	return nil
}

// HandleInvoicePaid is informational. Renewal state arrives through
// subscription-updated, so nothing is mutated here.
func (r *Reconciler) HandleInvoicePaid(ctx context.Context, invoice *billingdomain.InvoiceSnapshot) error {
	if invoice == nil || invoice.Subscription == "" {
		return nil
	}

	subscription, err := r.lookupByProviderRef(ctx, invoice.Subscription)
	if err != nil || subscription == nil {
		return err
	}

	r.log.Info("invoice paid",
		zap.String("subscription_id", subscription.ID.String()),
		zap.String("invoice_id", invoice.ID),
	)
	return nil
}

func (r *Reconciler) lookupByMetadata(ctx context.Context, metadata map[string]string) (*subscriptiondomain.Subscription, error) {
	raw := strings.TrimSpace(metadata[metadataSubscriptionKey])
	if raw == "" {
		r.log.Debug("event carries no subscription metadata, skipping")
		return nil, nil
	}

	id, err := snowflake.ParseString(raw)
	if err != nil {
		r.log.Warn("unparseable subscription id in event metadata", zap.String("value", raw))
		return nil, nil
	}

	subscription, err := r.subscriptions.FindForReconcile(ctx, id)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		r.log.Warn("event references unknown subscription", zap.String("subscription_id", raw))
	}
	return subscription, nil
}

func (r *Reconciler) lookupByProviderRef(ctx context.Context, providerRef string) (*subscriptiondomain.Subscription, error) {
	providerRef = strings.TrimSpace(providerRef)
	if providerRef == "" {
		return nil, nil
	}

	subscription, err := r.subscriptions.FindByProviderRef(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		r.log.Debug("no subscription for provider reference, skipping")
	}
	return subscription, nil
}

// provisionMentorship is best-effort. A failure leaves the subscription
// active and is retried implicitly on the next activating event.
func (r *Reconciler) provisionMentorship(ctx context.Context, subscription *subscriptiondomain.Subscription) {
	_, err := r.mentorships.EnsureForSubscription(ctx, subscription.MentorID, subscription.MenteeID, subscription.ID)
	if err != nil {
		r.metrics.RecordMentorshipProvisioned(ctx, "error")
		r.log.Error("mentorship provisioning failed",
			zap.String("subscription_id", subscription.ID.String()),
			zap.Error(err),
		)
		return
	}
	r.metrics.RecordMentorshipProvisioned(ctx, "ok")
}

func (r *Reconciler) recordTransition(ctx context.Context, from, to subscriptiondomain.Status) {
	r.metrics.RecordReconcileTransition(ctx, string(from), string(to))
}

func statusPtr(s subscriptiondomain.Status) *subscriptiondomain.Status { return &s }
func strPtr(s string) *string                                         { return &s }
func boolPtr(b bool) *bool                                            { return &b }
