package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/session/domain"
	"github.com/mentorlane/mentorlane/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Profiles    profiledomain.Service
	Mentorships mentorshipdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	profiles    profiledomain.Service
	mentorships mentorshipdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("session.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		profiles:    p.Profiles,
		mentorships: p.Mentorships,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSessionRequest) (domain.Session, error) {
	menteeID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || menteeID == 0 {
		return domain.Session{}, domain.ErrForbidden
	}

	mentorID, err := snowflake.ParseString(strings.TrimSpace(req.MentorID))
	if err != nil || mentorID == menteeID {
		return domain.Session{}, domain.ErrInvalidMentor
	}

	mentor, err := s.profiles.GetByID(ctx, mentorID)
	if err != nil {
		if err == profiledomain.ErrNotFound {
			return domain.Session{}, domain.ErrInvalidMentor
		}
		return domain.Session{}, err
	}
	if !mentor.Role.CanMentor() {
		return domain.Session{}, domain.ErrInvalidMentor
	}

	if req.ScheduledAt.IsZero() || req.ScheduledAt.Before(time.Now().UTC()) {
		return domain.Session{}, domain.ErrInvalidSchedule
	}

	var mentorshipID *snowflake.ID
	if raw := strings.TrimSpace(req.MentorshipID); raw != "" {
		parsed, parseErr := snowflake.ParseString(raw)
		if parseErr != nil {
			return domain.Session{}, domain.ErrInvalidID
		}
		mentorship, mErr := s.mentorships.GetByID(ctx, parsed)
		if mErr != nil {
			return domain.Session{}, mErr
		}
		if mentorship.MentorID != mentorID {
			return domain.Session{}, domain.ErrInvalidMentor
		}
		mentorshipID = &parsed
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	sessionType := strings.TrimSpace(req.SessionType)
	if sessionType == "" {
		sessionType = "video"
	}
	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "usd"
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:              s.genID.Generate(),
		MentorshipID:    mentorshipID,
		MentorID:        mentorID,
		MenteeID:        menteeID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		SessionType:     sessionType,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Timezone:        timezone,
		Status:          domain.StatusPending,
		PricePaid:       req.Price,
		Currency:        currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if session.Title == "" {
		session.Title = "Mentorship Session"
	}

	if err := s.repo.Insert(ctx, s.db, &session); err != nil {
		return domain.Session{}, err
	}

	if mentorshipID != nil {
		// Best-effort bookkeeping on the parent mentorship.
		if err := s.mentorships.SetNextSession(ctx, *mentorshipID, &session.ScheduledAt); err != nil {
			s.log.Warn("failed to set next session on mentorship",
				zap.String("mentorship_id", mentorshipID.String()),
				zap.Error(err),
			)
		}
	}

	return session, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Session, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Session{}, domain.ErrForbidden
	}
	if id == 0 {
		return domain.Session{}, domain.ErrInvalidID
	}

	session, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Session{}, err
	}
	if session == nil {
		return domain.Session{}, domain.ErrNotFound
	}
	if session.MentorID != userID && session.MenteeID != userID {
		return domain.Session{}, domain.ErrForbidden
	}
	return *session, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSessionRequest) (domain.ListSessionResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListSessionResponse{}, domain.ErrForbidden
	}

	column := "mentee_id"
	if req.AsMentor {
		column = "mentor_id"
	}
	items, err := s.repo.ListByParticipant(ctx, s.db, column, userID)
	if err != nil {
		return domain.ListSessionResponse{}, err
	}

	sessions := make([]domain.Session, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		sessions = append(sessions, *item)
	}
	return domain.ListSessionResponse{Sessions: sessions}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSessionRequest) (domain.Session, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Session{}, domain.ErrForbidden
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Session{}, domain.ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Session{}, err
	}
	if existing == nil {
		return domain.Session{}, domain.ErrNotFound
	}
	if existing.MentorID != userID && existing.MenteeID != userID {
		return domain.Session{}, domain.ErrForbidden
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Status != nil {
		switch *req.Status {
		case domain.StatusPending, domain.StatusConfirmed, domain.StatusCompleted, domain.StatusCancelled:
			fields["status"] = *req.Status
		default:
			return domain.Session{}, domain.ErrInvalidStatus
		}
	}
	if req.MeetingURL != nil {
		fields["meeting_url"] = strings.TrimSpace(*req.MeetingURL)
	}

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return domain.Session{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Session{}, err
	}
	if updated == nil {
		return domain.Session{}, domain.ErrNotFound
	}
	return *updated, nil
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

func (s *Service) NextForMentorship(ctx context.Context, mentorshipID snowflake.ID) (*domain.Session, error) {
	if mentorshipID == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.NextForMentorship(ctx, s.db, mentorshipID, time.Now().UTC())
}
