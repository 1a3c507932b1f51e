package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/profile/repository"
	"github.com/mentorlane/mentorlane/internal/usercontext"
)

func newTestService(t *testing.T) (*Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Profile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		genID: node,
		repo:  repository.Provide(),
	}
	return svc, node
}

func createProfile(t *testing.T, svc *Service, userID snowflake.ID, req domain.CreateProfileRequest) domain.Profile {
	t.Helper()
	profile, err := svc.Create(usercontext.WithUserID(context.Background(), userID), req)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func TestCreateProfileValidation(t *testing.T) {
	svc, node := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), node.Generate())

	if _, err := svc.Create(ctx, domain.CreateProfileRequest{Email: "a@b.c"}); err != domain.ErrInvalidName {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateProfileRequest{FullName: "Ada", Email: "nope"}); err != domain.ErrInvalidEmail {
		t.Fatalf("expected invalid email, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateProfileRequest{FullName: "Ada", Email: "a@b.c", Role: "admin"}); err != domain.ErrInvalidRole {
		t.Fatalf("expected invalid role, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateProfileRequest{FullName: "Ada", Email: "a@b.c", MonthlyRate: -1}); err != domain.ErrInvalidRate {
		t.Fatalf("expected invalid rate, got %v", err)
	}
	if _, err := svc.Create(context.Background(), domain.CreateProfileRequest{FullName: "Ada", Email: "a@b.c"}); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden without user, got %v", err)
	}
}

func TestCreateProfileSlugCollision(t *testing.T) {
	svc, node := newTestService(t)

	first := createProfile(t, svc, node.Generate(), domain.CreateProfileRequest{
		FullName: "Ada Mentor",
		Email:    "ada1@example.com",
		Role:     domain.RoleMentor,
	})
	if first.Slug != "ada-mentor" {
		t.Fatalf("expected slug ada-mentor, got %q", first.Slug)
	}

	secondID := node.Generate()
	second := createProfile(t, svc, secondID, domain.CreateProfileRequest{
		FullName: "Ada Mentor",
		Email:    "ada2@example.com",
		Role:     domain.RoleMentor,
	})
	if second.Slug != "ada-mentor-"+secondID.String() {
		t.Fatalf("expected disambiguated slug, got %q", second.Slug)
	}
}

func TestUpdateRateClearsCachedPrice(t *testing.T) {
	svc, node := newTestService(t)
	userID := node.Generate()

	createProfile(t, svc, userID, domain.CreateProfileRequest{
		FullName:    "Ada Mentor",
		Email:       "ada@example.com",
		Role:        domain.RoleMentor,
		MonthlyRate: 100,
	})
	if err := svc.SaveBillingRefs(context.Background(), userID, "prod_1", "price_1"); err != nil {
		t.Fatalf("save refs: %v", err)
	}

	newRate := 200.0
	updated, err := svc.Update(usercontext.WithUserID(context.Background(), userID), domain.UpdateProfileRequest{
		ID:          userID.String(),
		MonthlyRate: &newRate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ProviderPriceID != "" {
		t.Fatalf("rate change should clear cached price, got %q", updated.ProviderPriceID)
	}
	if updated.ProviderProductID != "prod_1" {
		t.Fatalf("product cache should survive, got %q", updated.ProviderProductID)
	}
}

func TestBecomingMentorBackfillsSlug(t *testing.T) {
	svc, node := newTestService(t)
	userID := node.Generate()

	createProfile(t, svc, userID, domain.CreateProfileRequest{
		FullName: "Sam Learner",
		Email:    "sam@example.com",
		Role:     domain.RoleMentee,
	})
	// wipe the slug to simulate a legacy mentee row
	if err := svc.repo.UpdateFields(context.Background(), svc.db, userID, map[string]any{"slug": ""}); err != nil {
		t.Fatalf("clear slug: %v", err)
	}

	role := domain.RoleMentor
	updated, err := svc.Update(usercontext.WithUserID(context.Background(), userID), domain.UpdateProfileRequest{
		ID:   userID.String(),
		Role: &role,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "sam-learner" {
		t.Fatalf("expected backfilled slug, got %q", updated.Slug)
	}
}

func TestListMentorsFilters(t *testing.T) {
	svc, node := newTestService(t)

	createProfile(t, svc, node.Generate(), domain.CreateProfileRequest{
		FullName:    "Ada Mentor",
		Email:       "ada@example.com",
		Role:        domain.RoleMentor,
		Topics:      []string{"go", "distributed-systems"},
		IsAvailable: true,
	})
	createProfile(t, svc, node.Generate(), domain.CreateProfileRequest{
		FullName:    "Bo Both",
		Email:       "bo@example.com",
		Role:        domain.RoleBoth,
		Topics:      []string{"design"},
		IsAvailable: false,
	})
	createProfile(t, svc, node.Generate(), domain.CreateProfileRequest{
		FullName: "Mia Mentee",
		Email:    "mia@example.com",
		Role:     domain.RoleMentee,
	})

	all, err := svc.ListMentors(context.Background(), domain.ListMentorRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Mentors) != 2 {
		t.Fatalf("expected both mentor roles listed, got %d", len(all.Mentors))
	}

	byTopic, err := svc.ListMentors(context.Background(), domain.ListMentorRequest{Topics: []string{"go"}})
	if err != nil {
		t.Fatalf("list by topic: %v", err)
	}
	if len(byTopic.Mentors) != 1 || byTopic.Mentors[0].FullName != "Ada Mentor" {
		t.Fatalf("topic filter mismatch: %+v", byTopic.Mentors)
	}

	available := true
	byAvailability, err := svc.ListMentors(context.Background(), domain.ListMentorRequest{IsAvailable: &available})
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(byAvailability.Mentors) != 1 || byAvailability.Mentors[0].FullName != "Ada Mentor" {
		t.Fatalf("availability filter mismatch: %+v", byAvailability.Mentors)
	}

	bySearch, err := svc.ListMentors(context.Background(), domain.ListMentorRequest{Search: "bo"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(bySearch.Mentors) != 1 || bySearch.Mentors[0].FullName != "Bo Both" {
		t.Fatalf("search mismatch: %+v", bySearch.Mentors)
	}
}
