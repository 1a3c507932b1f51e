package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/mentorlane/mentorlane/internal/billing/domain"
	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/subscription/domain"
	"github.com/mentorlane/mentorlane/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Profiles profiledomain.Service
	Provider billingdomain.ProviderClient
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	profiles profiledomain.Service
	provider billingdomain.ProviderClient
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("subscription.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		profiles: p.Profiles,
		provider: p.Provider,
	}
}

func (s *Service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (domain.Subscription, error) {
	menteeID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || menteeID == 0 {
		return domain.Subscription{}, domain.ErrForbidden
	}

	mentorID, err := snowflake.ParseString(strings.TrimSpace(req.MentorID))
	if err != nil {
		return domain.Subscription{}, domain.ErrInvalidMentor
	}
	if mentorID == menteeID {
		return domain.Subscription{}, domain.ErrSelfSubscribe
	}

	mentor, err := s.profiles.GetByID(ctx, mentorID)
	if err != nil {
		if err == profiledomain.ErrNotFound {
			return domain.Subscription{}, domain.ErrInvalidMentor
		}
		return domain.Subscription{}, err
	}
	if !mentor.Role.CanMentor() {
		return domain.Subscription{}, domain.ErrInvalidMentor
	}
	if mentor.MonthlyRate <= 0 {
		return domain.Subscription{}, domain.ErrMentorNotPriced
	}

	existing, err := s.repo.FindActiveByPair(ctx, s.db, mentorID, menteeID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if existing != nil {
		return domain.Subscription{}, domain.ErrAlreadySubscribed
	}

	currency := mentor.Currency
	if currency == "" {
		currency = "usd"
	}

	now := time.Now().UTC()
	subscription := domain.Subscription{
		ID:           s.genID.Generate(),
		MentorID:     mentorID,
		MenteeID:     menteeID,
		Status:       domain.StatusPending,
		MonthlyPrice: mentor.MonthlyRate,
		Currency:     currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &subscription); err != nil {
		return domain.Subscription{}, err
	}

	return subscription, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSubscriptionRequest) (domain.ListSubscriptionResponse, error) {
	menteeID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || menteeID == 0 {
		return domain.ListSubscriptionResponse{}, domain.ErrForbidden
	}

	items, err := s.repo.ListByMentee(ctx, s.db, menteeID, req.Statuses)
	if err != nil {
		return domain.ListSubscriptionResponse{}, err
	}

	subscriptions := make([]domain.Subscription, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		subscriptions = append(subscriptions, *item)
	}
	return domain.ListSubscriptionResponse{Subscriptions: subscriptions}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Subscription, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Subscription{}, domain.ErrForbidden
	}
	if id == 0 {
		return domain.Subscription{}, domain.ErrInvalidID
	}

	subscription, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if subscription == nil {
		return domain.Subscription{}, domain.ErrNotFound
	}
	if subscription.MenteeID != userID && subscription.MentorID != userID {
		return domain.Subscription{}, domain.ErrForbidden
	}
	return *subscription, nil
}

// Cancel schedules cancellation at period end so access survives until the
// current billing period closes. The status flip to cancelled arrives later
// through the webhook reconciler.
func (s *Service) Cancel(ctx context.Context, req domain.CancelRequest) (domain.Subscription, error) {
	subscription, err := s.ownedSubscription(ctx, req.SubscriptionID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if subscription.Status != domain.StatusActive {
		return domain.Subscription{}, domain.ErrNotActive
	}
	if subscription.ProviderSubscriptionID == nil || *subscription.ProviderSubscriptionID == "" {
		return domain.Subscription{}, domain.ErrNoProviderRef
	}

	if _, err := s.provider.UpdateSubscription(ctx, *subscription.ProviderSubscriptionID, true); err != nil {
		return domain.Subscription{}, err
	}

	if err := s.repo.UpdateFields(ctx, s.db, subscription.ID, map[string]any{
		"cancel_at_period_end": true,
		"updated_at":           time.Now().UTC(),
	}); err != nil {
		return domain.Subscription{}, err
	}

	subscription.CancelAtPeriodEnd = true
	return *subscription, nil
}

func (s *Service) Reactivate(ctx context.Context, req domain.ReactivateRequest) (domain.Subscription, error) {
	subscription, err := s.ownedSubscription(ctx, req.SubscriptionID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if !subscription.CancelAtPeriodEnd {
		return domain.Subscription{}, domain.ErrNotCancelling
	}
	if subscription.ProviderSubscriptionID == nil || *subscription.ProviderSubscriptionID == "" {
		return domain.Subscription{}, domain.ErrNoProviderRef
	}

	if _, err := s.provider.UpdateSubscription(ctx, *subscription.ProviderSubscriptionID, false); err != nil {
		return domain.Subscription{}, err
	}

	if err := s.repo.UpdateFields(ctx, s.db, subscription.ID, map[string]any{
		"cancel_at_period_end": false,
		"updated_at":           time.Now().UTC(),
	}); err != nil {
		return domain.Subscription{}, err
	}

	subscription.CancelAtPeriodEnd = false
	return *subscription, nil
}

func (s *Service) FindForReconcile(ctx context.Context, id snowflake.ID) (*domain.Subscription, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) FindByProviderRef(ctx context.Context, providerSubscriptionID string) (*domain.Subscription, error) {
	providerSubscriptionID = strings.TrimSpace(providerSubscriptionID)
	if providerSubscriptionID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.FindByProviderSubscriptionID(ctx, s.db, providerSubscriptionID)
}

func (s *Service) ApplyReconcile(ctx context.Context, id snowflake.ID, update domain.ReconcileUpdate) error {
	if id == 0 {
		return domain.ErrInvalidID
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.ProviderSubscriptionID != nil {
		fields["provider_subscription_id"] = *update.ProviderSubscriptionID
	}
	if update.ProviderCustomerID != nil {
		fields["provider_customer_id"] = *update.ProviderCustomerID
	}
	setTimestamp := func(column string, value *time.Time) {
		if value != nil {
			fields[column] = *value
		} else if update.AuthoritativeTimestamps {
			fields[column] = nil
		}
	}
	setTimestamp("current_period_start", update.CurrentPeriodStart)
	setTimestamp("current_period_end", update.CurrentPeriodEnd)
	setTimestamp("trial_end", update.TrialEnd)
	setTimestamp("canceled_at", update.CanceledAt)
	if update.CancelAtPeriodEnd != nil {
		fields["cancel_at_period_end"] = *update.CancelAtPeriodEnd
	}

	return s.repo.UpdateFields(ctx, s.db, id, fields)
}

func (s *Service) SaveCheckoutRef(ctx context.Context, id snowflake.ID, checkoutID string) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	return s.repo.UpdateFields(ctx, s.db, id, map[string]any{
		"provider_checkout_id": strings.TrimSpace(checkoutID),
		"updated_at":           time.Now().UTC(),
	})
}

func (s *Service) ownedSubscription(ctx context.Context, rawID string) (*domain.Subscription, error) {
	menteeID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || menteeID == 0 {
		return nil, domain.ErrForbidden
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	subscription, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if subscription == nil || subscription.MenteeID != menteeID {
		return nil, domain.ErrNotFound
	}
	return subscription, nil
}
