package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/internal/mentorship/domain"
	"github.com/mentorlane/mentorlane/internal/usercontext"
	"github.com/mentorlane/mentorlane/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("mentorship.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) EnsureForSubscription(ctx context.Context, mentorID, menteeID, subscriptionID snowflake.ID) (domain.Mentorship, error) {
	if mentorID == 0 || menteeID == 0 || subscriptionID == 0 {
		return domain.Mentorship{}, domain.ErrInvalidReference
	}

	now := time.Now().UTC()
	subID := subscriptionID
	mentorship := domain.Mentorship{
		ID:             s.genID.Generate(),
		SubscriptionID: &subID,
		MentorID:       mentorID,
		MenteeID:       menteeID,
		Status:         domain.StatusActive,
		Title:          domain.DefaultTitle,
		Notes:          datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.repo.Insert(ctx, s.db, &mentorship)
	if err == nil {
		s.log.Info("mentorship provisioned",
			zap.String("mentorship_id", mentorship.ID.String()),
			zap.String("subscription_id", subscriptionID.String()),
		)
		return mentorship, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return domain.Mentorship{}, err
	}

	// Already provisioned by an earlier delivery of the same event.
	existing, findErr := s.repo.FindBySubscriptionID(ctx, s.db, subscriptionID)
	if findErr != nil {
		return domain.Mentorship{}, findErr
	}
	if existing == nil {
		return domain.Mentorship{}, err
	}
	return *existing, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Mentorship, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Mentorship{}, domain.ErrForbidden
	}
	if id == 0 {
		return domain.Mentorship{}, domain.ErrInvalidID
	}

	mentorship, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Mentorship{}, err
	}
	if mentorship == nil {
		return domain.Mentorship{}, domain.ErrNotFound
	}
	if mentorship.MentorID != userID && mentorship.MenteeID != userID {
		return domain.Mentorship{}, domain.ErrForbidden
	}
	return *mentorship, nil
}

func (s *Service) ListAsMentor(ctx context.Context) (domain.ListMentorshipResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListMentorshipResponse{}, domain.ErrForbidden
	}
	items, err := s.repo.ListByMentor(ctx, s.db, userID)
	if err != nil {
		return domain.ListMentorshipResponse{}, err
	}
	return collect(items), nil
}

func (s *Service) ListAsMentee(ctx context.Context) (domain.ListMentorshipResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListMentorshipResponse{}, domain.ErrForbidden
	}
	items, err := s.repo.ListByMentee(ctx, s.db, userID)
	if err != nil {
		return domain.ListMentorshipResponse{}, err
	}
	return collect(items), nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateMentorshipRequest) (domain.Mentorship, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Mentorship{}, domain.ErrForbidden
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Mentorship{}, domain.ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Mentorship{}, err
	}
	if existing == nil {
		return domain.Mentorship{}, domain.ErrNotFound
	}
	if existing.MentorID != userID && existing.MenteeID != userID {
		return domain.Mentorship{}, domain.ErrForbidden
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Goals != nil {
		fields["goals"] = strings.TrimSpace(*req.Goals)
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.StatusActive, domain.StatusPaused, domain.StatusEnded:
			fields["status"] = *req.Status
		default:
			return domain.Mentorship{}, domain.ErrInvalidID
		}
	}
	if req.Notes != nil {
		fields["notes"] = datatypes.JSONMap(req.Notes)
	}
	if req.NextSessionAt != nil {
		fields["next_session_at"] = *req.NextSessionAt
	}

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return domain.Mentorship{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Mentorship{}, err
	}
	if updated == nil {
		return domain.Mentorship{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) TouchLastInteraction(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	now := time.Now().UTC()
	return s.repo.UpdateFields(ctx, s.db, id, map[string]any{
		"last_interaction_at": now,
		"updated_at":          now,
	})
}

func (s *Service) SetNextSession(ctx context.Context, id snowflake.ID, at *time.Time) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	return s.repo.UpdateFields(ctx, s.db, id, map[string]any{
		"next_session_at": at,
		"updated_at":      time.Now().UTC(),
	})
}

func collect(items []*domain.Mentorship) domain.ListMentorshipResponse {
	mentorships := make([]domain.Mentorship, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		mentorships = append(mentorships, *item)
	}
	return domain.ListMentorshipResponse{Mentorships: mentorships}
}
