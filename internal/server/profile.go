package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/usercontext"
	"github.com/mentorlane/mentorlane/pkg/db/pagination"
)

type createProfileRequest struct {
	FullName        string   `json:"full_name"`
	Email           string   `json:"email"`
	Bio             string   `json:"bio"`
	Role            string   `json:"role"`
	AvatarURL       string   `json:"avatar_url"`
	ExperienceLevel string   `json:"experience_level"`
	Topics          []string `json:"topics"`
	LanguagesSpoken []string `json:"languages_spoken"`
	MonthlyRate     float64  `json:"monthly_rate"`
	Currency        string   `json:"currency"`
	IsAvailable     bool     `json:"is_available"`
}

func (s *Server) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.profileSvc.Create(c.Request.Context(), profiledomain.CreateProfileRequest{
		FullName:        strings.TrimSpace(req.FullName),
		Email:           strings.TrimSpace(req.Email),
		Bio:             strings.TrimSpace(req.Bio),
		Role:            profiledomain.Role(strings.TrimSpace(req.Role)),
		AvatarURL:       strings.TrimSpace(req.AvatarURL),
		ExperienceLevel: strings.TrimSpace(req.ExperienceLevel),
		Topics:          req.Topics,
		LanguagesSpoken: req.LanguagesSpoken,
		MonthlyRate:     req.MonthlyRate,
		Currency:        strings.TrimSpace(req.Currency),
		IsAvailable:     req.IsAvailable,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProfile(c *gin.Context) {
	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.profileSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateProfileRequest struct {
	FullName        *string  `json:"full_name"`
	Bio             *string  `json:"bio"`
	Role            *string  `json:"role"`
	AvatarURL       *string  `json:"avatar_url"`
	ExperienceLevel *string  `json:"experience_level"`
	Topics          []string `json:"topics"`
	LanguagesSpoken []string `json:"languages_spoken"`
	MonthlyRate     *float64 `json:"monthly_rate"`
	IsAvailable     *bool    `json:"is_available"`
}

func (s *Server) UpdateProfile(c *gin.Context) {
	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := profiledomain.UpdateProfileRequest{
		ID:              userID.String(),
		FullName:        req.FullName,
		Bio:             req.Bio,
		AvatarURL:       req.AvatarURL,
		ExperienceLevel: req.ExperienceLevel,
		Topics:          req.Topics,
		LanguagesSpoken: req.LanguagesSpoken,
		MonthlyRate:     req.MonthlyRate,
		IsAvailable:     req.IsAvailable,
	}
	if req.Role != nil {
		role := profiledomain.Role(strings.TrimSpace(*req.Role))
		update.Role = &role
	}

	resp, err := s.profileSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMentors(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search          string `form:"search"`
		Topic           string `form:"topic"`
		ExperienceLevel string `form:"experience_level"`
		Available       string `form:"available"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := profiledomain.ListMentorRequest{
		PageToken:       query.PageToken,
		PageSize:        int32(query.PageSize),
		Search:          strings.TrimSpace(query.Search),
		ExperienceLevel: strings.TrimSpace(query.ExperienceLevel),
	}
	if topic := strings.TrimSpace(query.Topic); topic != "" {
		req.Topics = []string{topic}
	}
	if raw := strings.TrimSpace(query.Available); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		req.IsAvailable = &available
	}

	resp, err := s.profileSvc.ListMentors(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMentorBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	resp, err := s.profileSvc.GetMentorBySlug(c.Request.Context(), slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
