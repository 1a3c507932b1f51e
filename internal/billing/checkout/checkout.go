package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	billingdomain "github.com/mentorlane/mentorlane/internal/billing/domain"
	"github.com/mentorlane/mentorlane/internal/config"
	"github.com/mentorlane/mentorlane/internal/observability/metrics"
	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/ratelimit"
	sessiondomain "github.com/mentorlane/mentorlane/internal/session/domain"
	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
	"github.com/mentorlane/mentorlane/internal/usercontext"
)

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrRateLimited   = errors.New("rate_limited")
	ErrAlreadyBilled = errors.New("already_billed")
)

type Params struct {
	fx.In

	Log           *zap.Logger
	Config        config.Config
	Billing       *config.BillingConfigHolder
	Provider      billingdomain.ProviderClient
	Profiles      profiledomain.Service
	Sessions      sessiondomain.Service
	Subscriptions subscriptiondomain.Service
	Limiter       *ratelimit.CheckoutLimiter
	Metrics       *metrics.Metrics
}

// Service builds provider checkout sessions for one-time session
// payments and recurring mentorship subscriptions.
type Service struct {
	log           *zap.Logger
	cfg           config.Config
	billing       *config.BillingConfigHolder
	provider      billingdomain.ProviderClient
	profiles      profiledomain.Service
	sessions      sessiondomain.Service
	subscriptions subscriptiondomain.Service
	limiter       *ratelimit.CheckoutLimiter
	metrics       *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:           p.Log.Named("billing.checkout"),
		cfg:           p.Config,
		billing:       p.Billing,
		provider:      p.Provider,
		profiles:      p.Profiles,
		sessions:      p.Sessions,
		subscriptions: p.Subscriptions,
		limiter:       p.Limiter,
		metrics:       p.Metrics,
	}
}

// amountInCents converts a decimal rate to the provider's integer
// minor-unit amount.
func amountInCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ForSession creates a one-time payment checkout for a booked session.
// Only the mentee who booked it may pay for it.
func (s *Service) ForSession(ctx context.Context, rawSessionID string) (*billingdomain.CheckoutSessionResult, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, ErrForbidden
	}

	sessionID, err := snowflake.ParseString(strings.TrimSpace(rawSessionID))
	if err != nil {
		return nil, ErrInvalidID
	}

	if err := s.allow(ctx, userID, "session"); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessiondomain.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, sessiondomain.ErrForbidden) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if session.MenteeID != userID {
		return nil, ErrForbidden
	}

	cents := amountInCents(session.PricePaid)
	if cents <= 0 {
		return nil, ErrInvalidAmount
	}

	mentor, err := s.profiles.GetByID(ctx, session.MentorID)
	if err != nil {
		return nil, err
	}

	billingCfg := s.billing.Get()
	currency := session.Currency
	if currency == "" {
		currency = billingCfg.DefaultCurrency
	}

	title := session.Title
	if title == "" {
		title = "Mentorship Session"
	}

	result, err := s.provider.CreateCheckoutSession(ctx, billingdomain.CheckoutSessionParams{
		Mode:        "payment",
		Currency:    currency,
		UnitAmount:  cents,
		ProductName: title,
		ProductDesc: fmt.Sprintf("%d minute %s session with %s", session.DurationMinutes, session.SessionType, mentor.FullName),
		SuccessURL:  s.cfg.BaseURL + billingCfg.SuccessPath,
		CancelURL:   s.cfg.BaseURL + fmt.Sprintf(billingCfg.CancelPath, mentor.Slug),
		Metadata: map[string]string{
			"session_id": session.ID.String(),
			"mentor_id":  session.MentorID.String(),
			"mentee_id":  session.MenteeID.String(),
		},
		IdempotencyKey: "checkout-session-" + session.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.SaveCheckoutRef(ctx, session.ID, result.ID); err != nil {
		s.log.Warn("failed to store checkout reference",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
	}

	s.metrics.RecordCheckoutSession(ctx, "payment")
	return result, nil
}

// ForSubscription creates a recurring checkout for a pending
// subscription, lazily provisioning the mentor's provider product and
// monthly price on first use.
func (s *Service) ForSubscription(ctx context.Context, rawSubscriptionID string) (*billingdomain.CheckoutSessionResult, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, ErrForbidden
	}

	subscriptionID, err := snowflake.ParseString(strings.TrimSpace(rawSubscriptionID))
	if err != nil {
		return nil, ErrInvalidID
	}

	if err := s.allow(ctx, userID, "subscription"); err != nil {
		return nil, err
	}

	subscription, err := s.subscriptions.FindForReconcile(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, ErrNotFound
	}
	if subscription.MenteeID != userID {
		return nil, ErrForbidden
	}
	if subscription.Status == subscriptiondomain.StatusActive {
		return nil, ErrAlreadyBilled
	}

	cents := amountInCents(subscription.MonthlyPrice)
	if cents <= 0 {
		return nil, ErrInvalidAmount
	}

	mentor, err := s.profiles.GetByID(ctx, subscription.MentorID)
	if err != nil {
		return nil, err
	}

	priceID, err := s.ensureMonthlyPrice(ctx, &mentor, cents, subscription.Currency)
	if err != nil {
		return nil, err
	}

	billingCfg := s.billing.Get()
	metadata := map[string]string{
		"subscription_id": subscription.ID.String(),
		"mentor_id":       subscription.MentorID.String(),
		"mentee_id":       subscription.MenteeID.String(),
	}

	result, err := s.provider.CreateCheckoutSession(ctx, billingdomain.CheckoutSessionParams{
		Mode:       "subscription",
		PriceID:    priceID,
		SuccessURL: s.cfg.BaseURL + billingCfg.SubscriptionSuccess,
		CancelURL:  s.cfg.BaseURL + fmt.Sprintf(billingCfg.CancelPath, mentor.Slug),
		Metadata:   metadata,
		// Copied to the provider subscription so every later webhook can
		// be keyed back here.
		SubscriptionMetadata: metadata,
		IdempotencyKey:       "checkout-subscription-" + subscription.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.subscriptions.SaveCheckoutRef(ctx, subscription.ID, result.ID); err != nil {
		s.log.Warn("failed to store checkout reference",
			zap.String("subscription_id", subscription.ID.String()),
			zap.Error(err),
		)
	}

	s.metrics.RecordCheckoutSession(ctx, "subscription")
	return result, nil
}

// ensureMonthlyPrice returns the mentor's cached recurring price,
// creating the provider product and price on first checkout. Rate
// changes clear the cached price id, so a fresh price is minted here
// the next time someone checks out.
func (s *Service) ensureMonthlyPrice(ctx context.Context, mentor *profiledomain.Profile, cents int64, currency string) (string, error) {
	if currency == "" {
		currency = s.billing.Get().DefaultCurrency
	}

	if mentor.ProviderPriceID != "" {
		return mentor.ProviderPriceID, nil
	}

	productID := mentor.ProviderProductID
	if productID == "" {
		created, err := s.provider.CreateProduct(ctx, billingdomain.ProductParams{
			Name:        "Monthly Mentorship with " + mentor.FullName,
			Description: "Recurring monthly mentorship subscription",
			Metadata:    map[string]string{"mentor_id": mentor.ID.String()},
		})
		if err != nil {
			return "", err
		}
		productID = created
	}

	priceID, err := s.provider.CreatePrice(ctx, billingdomain.PriceParams{
		ProductID:  productID,
		UnitAmount: cents,
		Currency:   currency,
		Interval:   "month",
		Metadata:   map[string]string{"mentor_id": mentor.ID.String()},
	})
	if err != nil {
		return "", err
	}

	if err := s.profiles.SaveBillingRefs(ctx, mentor.ID, productID, priceID); err != nil {
		s.log.Warn("failed to cache billing references",
			zap.String("mentor_id", mentor.ID.String()),
			zap.Error(err),
		)
	}

	mentor.ProviderProductID = productID
	mentor.ProviderPriceID = priceID
	return priceID, nil
}

func (s *Service) allow(ctx context.Context, userID snowflake.ID, endpoint string) error {
	result, err := s.limiter.Allow(ctx, userID.String(), endpoint)
	if err != nil {
		// Redis trouble should not block payments.
		s.log.Warn("checkout rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !result.Allowed {
		s.metrics.RecordRateLimitDenied(ctx, endpoint, "token_bucket")
		return ErrRateLimited
	}
	return nil
}
