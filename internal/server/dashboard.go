package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	sessiondomain "github.com/mentorlane/mentorlane/internal/session/domain"
	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
)

type dashboardResponse struct {
	ActiveSubscriptions int                     `json:"active_subscriptions"`
	MentorshipsAsMentee int                     `json:"mentorships_as_mentee"`
	MentorshipsAsMentor int                     `json:"mentorships_as_mentor"`
	UpcomingSessions    []sessiondomain.Session `json:"upcoming_sessions"`
	UnreadMessages      int64                   `json:"unread_messages"`
}

// GetDashboard aggregates the caller's account overview in one call so
// the landing page needs a single round trip.
func (s *Server) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	subscriptions, err := s.subscriptionSvc.List(ctx, subscriptiondomain.ListSubscriptionRequest{
		Statuses: []subscriptiondomain.Status{subscriptiondomain.StatusActive},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	asMentee, err := s.mentorshipSvc.ListAsMentee(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	asMentor, err := s.mentorshipSvc.ListAsMentor(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sessions, err := s.sessionSvc.List(ctx, sessiondomain.ListSessionRequest{})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	unread, err := s.messageSvc.UnreadCount(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	upcoming := make([]sessiondomain.Session, 0)
	for _, sess := range sessions.Sessions {
		if sess.Status == sessiondomain.StatusCancelled {
			continue
		}
		if sess.ScheduledAt.After(now) {
			upcoming = append(upcoming, sess)
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboardResponse{
		ActiveSubscriptions: len(subscriptions.Subscriptions),
		MentorshipsAsMentee: len(asMentee.Mentorships),
		MentorshipsAsMentor: len(asMentor.Mentorships),
		UpcomingSessions:    upcoming,
		UnreadMessages:      unread,
	}})
}
