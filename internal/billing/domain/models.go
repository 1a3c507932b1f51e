package domain

import (
	"context"
	"errors"
	"time"
)

// EventKind classifies the provider webhook events the service reacts to.
type EventKind string

const (
	CheckoutCompleted   EventKind = "checkout.session.completed"
	SubscriptionCreated EventKind = "customer.subscription.created"
	SubscriptionUpdated EventKind = "customer.subscription.updated"
	SubscriptionDeleted EventKind = "customer.subscription.deleted"
	InvoicePaid         EventKind = "invoice.payment_succeeded"
	InvoiceFailed       EventKind = "invoice.payment_failed"
	Other               EventKind = "other"
)

// Event is the parsed webhook envelope. Exactly one of the object fields
// is populated, matching Kind.
type Event struct {
	ID      string
	Kind    EventKind
	RawType string
	Created *time.Time

	CheckoutSession *CheckoutSession
	Subscription    *SubscriptionSnapshot
	Invoice         *InvoiceSnapshot
}

// CheckoutSession is the subset of the provider checkout object the
// reconciler needs.
type CheckoutSession struct {
	ID           string            `json:"id"`
	Mode         string            `json:"mode"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

// SubscriptionSnapshot is the provider's view of a subscription. Timestamps
// are nil when the provider omits them.
type SubscriptionSnapshot struct {
	ID                 string
	Status             string
	Customer           string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	TrialEnd           *time.Time
	CancelAtPeriodEnd  bool
	CanceledAt         *time.Time
	Metadata           map[string]string
}

// InvoiceSnapshot is the subset of the provider invoice object the
// reconciler needs.
type InvoiceSnapshot struct {
	ID           string
	Subscription string
}

type CheckoutSessionParams struct {
	Mode          string
	PriceID       string
	Currency      string
	UnitAmount    int64
	ProductName   string
	ProductDesc   string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
	// SubscriptionMetadata is copied onto the provider subscription so the
	// webhook reconciler can key events back to the local record.
	SubscriptionMetadata map[string]string
	IdempotencyKey       string
}

type CheckoutSessionResult struct {
	ID  string
	URL string
}

type ProductParams struct {
	Name        string
	Description string
	Metadata    map[string]string
}

type PriceParams struct {
	ProductID  string
	UnitAmount int64
	Currency   string
	// Interval is the recurring billing interval, e.g. "month". Empty
	// means a one-time price.
	Interval string
	Metadata map[string]string
}

// ProviderClient is the outbound payment-provider boundary. Checkout and
// reconcile services depend on this interface so tests can substitute
// fakes.
type ProviderClient interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSessionResult, error)
	RetrieveSubscription(ctx context.Context, id string) (*SubscriptionSnapshot, error)
	UpdateSubscription(ctx context.Context, id string, cancelAtPeriodEnd bool) (*SubscriptionSnapshot, error)
	CreateProduct(ctx context.Context, params ProductParams) (string, error)
	CreatePrice(ctx context.Context, params PriceParams) (string, error)
}

var (
	ErrMissingSignature = errors.New("missing_signature")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrMalformedEvent   = errors.New("malformed_event")
	ErrProviderFailure  = errors.New("provider_failure")
)
