package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/usercontext"
	"github.com/mentorlane/mentorlane/pkg/db"
	"github.com/mentorlane/mentorlane/pkg/db/pagination"
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
		log:   p.Log.Named("profile.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProfileRequest) (domain.Profile, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Profile{}, domain.ErrForbidden
	}

	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return domain.Profile{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Profile{}, domain.ErrInvalidEmail
	}

	role := req.Role
	switch role {
	case domain.RoleMentor, domain.RoleMentee, domain.RoleBoth:
	case "":
		role = domain.RoleMentee
	default:
		return domain.Profile{}, domain.ErrInvalidRole
	}

	if req.MonthlyRate < 0 {
		return domain.Profile{}, domain.ErrInvalidRate
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "usd"
	}

	now := time.Now().UTC()
	profile := domain.Profile{
		ID:              userID,
		FullName:        name,
		Email:           email,
		Bio:             strings.TrimSpace(req.Bio),
		Role:            role,
		AvatarURL:       strings.TrimSpace(req.AvatarURL),
		ExperienceLevel: strings.TrimSpace(req.ExperienceLevel),
		Topics:          datatypes.NewJSONSlice(cleanList(req.Topics)),
		LanguagesSpoken: datatypes.NewJSONSlice(cleanList(req.LanguagesSpoken)),
		MonthlyRate:     req.MonthlyRate,
		Currency:        currency,
		IsAvailable:     req.IsAvailable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	profile.Slug = slug.Make(name)

	if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
		if db.IsDuplicateKeyErr(err) && profile.Slug != "" {
			// Disambiguate the slug and retry once.
			profile.Slug = fmt.Sprintf("%s-%s", profile.Slug, userID.String())
			if retryErr := s.repo.Insert(ctx, s.db, &profile); retryErr != nil {
				return domain.Profile{}, retryErr
			}
			return profile, nil
		}
		return domain.Profile{}, err
	}

	return profile, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Profile, error) {
	if id == 0 {
		return domain.Profile{}, domain.ErrInvalidID
	}
	profile, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) GetMentorBySlug(ctx context.Context, slugValue string) (domain.Profile, error) {
	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		return domain.Profile{}, domain.ErrInvalidID
	}
	profile, err := s.repo.FindMentorBySlug(ctx, s.db, slugValue)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProfileRequest) (domain.Profile, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Profile{}, domain.ErrForbidden
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Profile{}, domain.ErrInvalidID
	}
	if id != userID {
		return domain.Profile{}, domain.ErrForbidden
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if existing == nil {
		return domain.Profile{}, domain.ErrNotFound
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return domain.Profile{}, domain.ErrInvalidName
		}
		fields["full_name"] = name
	}
	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}
	role := existing.Role
	if req.Role != nil {
		switch *req.Role {
		case domain.RoleMentor, domain.RoleMentee, domain.RoleBoth:
			role = *req.Role
			fields["role"] = role
		default:
			return domain.Profile{}, domain.ErrInvalidRole
		}
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if req.ExperienceLevel != nil {
		fields["experience_level"] = strings.TrimSpace(*req.ExperienceLevel)
	}
	if req.Topics != nil {
		fields["topics"] = datatypes.NewJSONSlice(cleanList(req.Topics))
	}
	if req.LanguagesSpoken != nil {
		fields["languages_spoken"] = datatypes.NewJSONSlice(cleanList(req.LanguagesSpoken))
	}
	if req.MonthlyRate != nil {
		if *req.MonthlyRate < 0 {
			return domain.Profile{}, domain.ErrInvalidRate
		}
		fields["monthly_rate"] = *req.MonthlyRate
		if *req.MonthlyRate != existing.MonthlyRate {
			// Cached provider price no longer matches the rate; it will be
			// re-provisioned on the next checkout.
			fields["provider_price_id"] = ""
		}
	}
	if req.IsAvailable != nil {
		fields["is_available"] = *req.IsAvailable
	}

	// Becoming a mentor without a slug generates one from the name.
	if role.CanMentor() && existing.Slug == "" {
		name := existing.FullName
		if v, ok := fields["full_name"].(string); ok && v != "" {
			name = v
		}
		fields["slug"] = s.uniqueSlug(ctx, name, id)
	}

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return domain.Profile{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if updated == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) ListMentors(ctx context.Context, req domain.ListMentorRequest) (domain.ListMentorResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListMentors(ctx, s.db, domain.ListMentorFilter{
		Search:          strings.TrimSpace(req.Search),
		Topics:          cleanList(req.Topics),
		ExperienceLevel: strings.TrimSpace(req.ExperienceLevel),
		IsAvailable:     req.IsAvailable,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListMentorResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(profile *domain.Profile) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        profile.ID.String(),
			CreatedAt: profile.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	mentors := make([]domain.Profile, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		mentors = append(mentors, *item)
	}

	resp := domain.ListMentorResponse{Mentors: mentors}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) SaveBillingRefs(ctx context.Context, id snowflake.ID, productID, priceID string) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	return s.repo.UpdateFields(ctx, s.db, id, map[string]any{
		"provider_product_id": strings.TrimSpace(productID),
		"provider_price_id":   strings.TrimSpace(priceID),
		"updated_at":          time.Now().UTC(),
	})
}

func (s *Service) uniqueSlug(ctx context.Context, name string, id snowflake.ID) string {
	base := slug.Make(name)
	if base == "" {
		base = "mentor"
	}
	existing, err := s.repo.FindMentorBySlug(ctx, s.db, base)
	if err != nil || existing == nil || existing.ID == id {
		return base
	}
	return fmt.Sprintf("%s-%s", base, id.String())
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
