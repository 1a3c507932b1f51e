package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	billingdomain "github.com/mentorlane/mentorlane/internal/billing/domain"
	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/subscription/domain"
	"github.com/mentorlane/mentorlane/internal/subscription/repository"
	"github.com/mentorlane/mentorlane/internal/usercontext"
)

type fakeProfiles struct {
	profiledomain.Service

	byID map[snowflake.ID]profiledomain.Profile
}

func (f *fakeProfiles) GetByID(ctx context.Context, id snowflake.ID) (profiledomain.Profile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return profiledomain.Profile{}, profiledomain.ErrNotFound
	}
	return profile, nil
}

type fakeProvider struct {
	billingdomain.ProviderClient

	updates []bool
}

func (f *fakeProvider) UpdateSubscription(ctx context.Context, id string, cancelAtPeriodEnd bool) (*billingdomain.SubscriptionSnapshot, error) {
	f.updates = append(f.updates, cancelAtPeriodEnd)
	return &billingdomain.SubscriptionSnapshot{ID: id}, nil
}

func newTestService(t *testing.T, profiles *fakeProfiles, provider *fakeProvider) (*Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Subscription{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		repo:     repository.Provide(),
		profiles: profiles,
		provider: provider,
	}
	return svc, node
}

func mentorProfile(id snowflake.ID, rate float64) profiledomain.Profile {
	return profiledomain.Profile{
		ID:          id,
		FullName:    "Ada Mentor",
		Role:        profiledomain.RoleMentor,
		MonthlyRate: rate,
		Currency:    "usd",
	}
}

func TestSubscribeCreatesPending(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	svc, node := newTestService(t, profiles, &fakeProvider{})

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID, 150)
	ctx := usercontext.WithUserID(context.Background(), menteeID)

	subscription, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: mentorID.String()})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if subscription.Status != domain.StatusPending {
		t.Fatalf("new subscriptions start pending, got %s", subscription.Status)
	}
	if subscription.MonthlyPrice != 150 || subscription.Currency != "usd" {
		t.Fatalf("price snapshot mismatch: %+v", subscription)
	}
}

func TestSubscribeGuards(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	svc, node := newTestService(t, profiles, &fakeProvider{})

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID, 150)
	ctx := usercontext.WithUserID(context.Background(), menteeID)

	if _, err := svc.Subscribe(context.Background(), domain.SubscribeRequest{MentorID: mentorID.String()}); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden without user, got %v", err)
	}
	if _, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: "nope"}); err != domain.ErrInvalidMentor {
		t.Fatalf("expected invalid mentor, got %v", err)
	}
	if _, err := svc.Subscribe(usercontext.WithUserID(context.Background(), mentorID), domain.SubscribeRequest{MentorID: mentorID.String()}); err != domain.ErrSelfSubscribe {
		t.Fatalf("expected self-subscribe rejected, got %v", err)
	}
	if _, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: node.Generate().String()}); err != domain.ErrInvalidMentor {
		t.Fatalf("expected unknown mentor rejected, got %v", err)
	}

	menteeOnlyID := node.Generate()
	profiles.byID[menteeOnlyID] = profiledomain.Profile{ID: menteeOnlyID, Role: profiledomain.RoleMentee, MonthlyRate: 150}
	if _, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: menteeOnlyID.String()}); err != domain.ErrInvalidMentor {
		t.Fatalf("expected non-mentor rejected, got %v", err)
	}

	unpricedID := node.Generate()
	profiles.byID[unpricedID] = mentorProfile(unpricedID, 0)
	if _, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: unpricedID.String()}); err != domain.ErrMentorNotPriced {
		t.Fatalf("expected unpriced mentor rejected, got %v", err)
	}
}

func TestSubscribeRejectsDuplicateActive(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	svc, node := newTestService(t, profiles, &fakeProvider{})

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID, 150)
	ctx := usercontext.WithUserID(context.Background(), menteeID)

	first, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: mentorID.String()})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	active := domain.StatusActive
	if err := svc.ApplyReconcile(ctx, first.ID, domain.ReconcileUpdate{Status: &active}); err != nil {
		t.Fatalf("apply reconcile: %v", err)
	}

	// An active subscription to the same mentor blocks a second one.
	if _, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: mentorID.String()}); err != domain.ErrAlreadySubscribed {
		t.Fatalf("expected duplicate rejected, got %v", err)
	}

	// Cancelled rows free the pair up again.
	cancelled := domain.StatusCanceled
	if err := svc.ApplyReconcile(ctx, first.ID, domain.ReconcileUpdate{Status: &cancelled}); err != nil {
		t.Fatalf("apply reconcile: %v", err)
	}
	if _, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: mentorID.String()}); err != nil {
		t.Fatalf("expected resubscribe after cancel, got %v", err)
	}
}

func TestCancelAndReactivate(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	provider := &fakeProvider{}
	svc, node := newTestService(t, profiles, provider)

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID, 150)
	ctx := usercontext.WithUserID(context.Background(), menteeID)

	subscription, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: mentorID.String()})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Pending rows cannot be cancelled.
	if _, err := svc.Cancel(ctx, domain.CancelRequest{SubscriptionID: subscription.ID.String()}); err != domain.ErrNotActive {
		t.Fatalf("expected not-active rejection, got %v", err)
	}

	status := domain.StatusActive
	ref := "sub_live"
	if err := svc.ApplyReconcile(ctx, subscription.ID, domain.ReconcileUpdate{
		Status:                 &status,
		ProviderSubscriptionID: &ref,
	}); err != nil {
		t.Fatalf("apply reconcile: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, domain.CancelRequest{SubscriptionID: subscription.ID.String()})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !cancelled.CancelAtPeriodEnd {
		t.Fatalf("cancel should schedule period-end cancellation")
	}
	if cancelled.Status != domain.StatusActive {
		t.Fatalf("row stays active until the provider confirms, got %s", cancelled.Status)
	}

	reactivated, err := svc.Reactivate(ctx, domain.ReactivateRequest{SubscriptionID: subscription.ID.String()})
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if reactivated.CancelAtPeriodEnd {
		t.Fatalf("reactivate should clear the scheduled cancellation")
	}

	if len(provider.updates) != 2 || provider.updates[0] != true || provider.updates[1] != false {
		t.Fatalf("provider should see cancel then resume, got %v", provider.updates)
	}

	// Nothing scheduled means nothing to reactivate.
	if _, err := svc.Reactivate(ctx, domain.ReactivateRequest{SubscriptionID: subscription.ID.String()}); err != domain.ErrNotCancelling {
		t.Fatalf("expected not-cancelling rejection, got %v", err)
	}
}

func TestGetByIDRequiresParticipant(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	svc, node := newTestService(t, profiles, &fakeProvider{})

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID, 150)

	subscription, err := svc.Subscribe(usercontext.WithUserID(context.Background(), menteeID), domain.SubscribeRequest{MentorID: mentorID.String()})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := svc.GetByID(usercontext.WithUserID(context.Background(), mentorID), subscription.ID); err != nil {
		t.Fatalf("mentor should see the subscription: %v", err)
	}
	if _, err := svc.GetByID(usercontext.WithUserID(context.Background(), node.Generate()), subscription.ID); err != domain.ErrForbidden {
		t.Fatalf("outsider should be rejected, got %v", err)
	}
}

func TestReconcileClearsProviderNulledTimestamps(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	svc, node := newTestService(t, profiles, &fakeProvider{})

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID, 150)
	ctx := usercontext.WithUserID(context.Background(), menteeID)

	subscription, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: mentorID.String()})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	active := domain.StatusActive
	canceledAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := canceledAt.Add(30 * 24 * time.Hour)
	scheduled := true
	if err := svc.ApplyReconcile(ctx, subscription.ID, domain.ReconcileUpdate{
		Status:                  &active,
		CurrentPeriodEnd:        &periodEnd,
		CancelAtPeriodEnd:       &scheduled,
		CanceledAt:              &canceledAt,
		AuthoritativeTimestamps: true,
	}); err != nil {
		t.Fatalf("apply cancel state: %v", err)
	}

	// Reactivation: the provider reports cancel_at_period_end false and a
	// null canceled_at. The stored timestamp must not survive.
	resumed := false
	if err := svc.ApplyReconcile(ctx, subscription.ID, domain.ReconcileUpdate{
		Status:                  &active,
		CurrentPeriodEnd:        &periodEnd,
		CancelAtPeriodEnd:       &resumed,
		AuthoritativeTimestamps: true,
	}); err != nil {
		t.Fatalf("apply reactivation: %v", err)
	}

	row, err := svc.FindForReconcile(ctx, subscription.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if row.CanceledAt != nil {
		t.Fatalf("canceled_at should be cleared on reactivation, still %v", *row.CanceledAt)
	}
	if row.CancelAtPeriodEnd {
		t.Fatalf("cancel_at_period_end should be false after reactivation")
	}
	if row.CurrentPeriodEnd == nil || !row.CurrentPeriodEnd.Equal(periodEnd) {
		t.Fatalf("supplied period end should survive, got %v", row.CurrentPeriodEnd)
	}
}

func TestReconcileBackfillKeepsStoredTimestamps(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	svc, node := newTestService(t, profiles, &fakeProvider{})

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID, 150)
	ctx := usercontext.WithUserID(context.Background(), menteeID)

	subscription, err := svc.Subscribe(ctx, domain.SubscribeRequest{MentorID: mentorID.String()})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	active := domain.StatusActive
	periodEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.ApplyReconcile(ctx, subscription.ID, domain.ReconcileUpdate{
		Status:           &active,
		CurrentPeriodEnd: &periodEnd,
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	// A non-authoritative update with absent timestamps leaves them alone.
	if err := svc.ApplyReconcile(ctx, subscription.ID, domain.ReconcileUpdate{Status: &active}); err != nil {
		t.Fatalf("apply partial: %v", err)
	}

	row, err := svc.FindForReconcile(ctx, subscription.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if row.CurrentPeriodEnd == nil || !row.CurrentPeriodEnd.Equal(periodEnd) {
		t.Fatalf("partial update should keep stored period end, got %v", row.CurrentPeriodEnd)
	}
}
