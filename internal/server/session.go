package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	sessiondomain "github.com/mentorlane/mentorlane/internal/session/domain"
)

type createSessionRequest struct {
	MentorID        string    `json:"mentor_id"`
	MentorshipID    string    `json:"mentorship_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	SessionType     string    `json:"session_type"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Timezone        string    `json:"timezone"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
}

func (s *Server) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessionSvc.Create(c.Request.Context(), sessiondomain.CreateSessionRequest{
		MentorID:        strings.TrimSpace(req.MentorID),
		MentorshipID:    strings.TrimSpace(req.MentorshipID),
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		SessionType:     strings.TrimSpace(req.SessionType),
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Timezone:        strings.TrimSpace(req.Timezone),
		Price:           req.Price,
		Currency:        strings.TrimSpace(req.Currency),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSessions(c *gin.Context) {
	var query struct {
		As string `form:"as"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessionSvc.List(c.Request.Context(), sessiondomain.ListSessionRequest{
		AsMentor: strings.EqualFold(strings.TrimSpace(query.As), "mentor"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSessionByID(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, sessiondomain.ErrInvalidID)
		return
	}

	resp, err := s.sessionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateSessionRequest struct {
	Status     *string `json:"status"`
	MeetingURL *string `json:"meeting_url"`
}

func (s *Server) UpdateSession(c *gin.Context) {
	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := sessiondomain.UpdateSessionRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		MeetingURL: req.MeetingURL,
	}
	if req.Status != nil {
		status := sessiondomain.Status(strings.TrimSpace(*req.Status))
		update.Status = &status
	}

	resp, err := s.sessionSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
