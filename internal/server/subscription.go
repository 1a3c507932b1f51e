package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
)

type createSubscriptionRequest struct {
	MentorID string `json:"mentor_id"`
}

// CreateSubscription records a pending subscription and points the
// client at the checkout endpoint that will collect payment for it.
func (s *Server) CreateSubscription(c *gin.Context) {
	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.Subscribe(c.Request.Context(), subscriptiondomain.SubscribeRequest{
		MentorID: strings.TrimSpace(req.MentorID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         resp,
		"checkout_url": "/api/checkout/subscription?subscriptionId=" + resp.ID.String(),
	})
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := subscriptiondomain.ListSubscriptionRequest{}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		req.Statuses = []subscriptiondomain.Status{subscriptiondomain.Status(raw)}
	}

	resp, err := s.subscriptionSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubscriptionByID(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, subscriptiondomain.ErrInvalidID)
		return
	}

	resp, err := s.subscriptionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelSubscription(c *gin.Context) {
	resp, err := s.subscriptionSvc.Cancel(c.Request.Context(), subscriptiondomain.CancelRequest{
		SubscriptionID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReactivateSubscription(c *gin.Context) {
	resp, err := s.subscriptionSvc.Reactivate(c.Request.Context(), subscriptiondomain.ReactivateRequest{
		SubscriptionID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
