package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	messagedomain "github.com/mentorlane/mentorlane/internal/message/domain"
)

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

func (s *Server) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.messageSvc.Send(c.Request.Context(), messagedomain.SendMessageRequest{
		RecipientID: strings.TrimSpace(req.RecipientID),
		Content:     req.Content,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMessageThread(c *gin.Context) {
	resp, err := s.messageSvc.Thread(c.Request.Context(), messagedomain.ThreadRequest{
		OtherUserID: strings.TrimSpace(c.Param("userId")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetUnreadCount(c *gin.Context) {
	count, err := s.messageSvc.UnreadCount(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"unread_count": count}})
}
