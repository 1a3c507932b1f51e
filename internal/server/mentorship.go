package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	filedomain "github.com/mentorlane/mentorlane/internal/mentorshipfile/domain"
	qnadomain "github.com/mentorlane/mentorlane/internal/qna/domain"
)

func (s *Server) ListMentorships(c *gin.Context) {
	var query struct {
		As string `form:"as"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var (
		resp mentorshipdomain.ListMentorshipResponse
		err  error
	)
	if strings.EqualFold(strings.TrimSpace(query.As), "mentor") {
		resp, err = s.mentorshipSvc.ListAsMentor(c.Request.Context())
	} else {
		resp, err = s.mentorshipSvc.ListAsMentee(c.Request.Context())
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMentorshipByID(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, mentorshipdomain.ErrInvalidID)
		return
	}

	resp, err := s.mentorshipSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateMentorshipRequest struct {
	Title         *string        `json:"title"`
	Goals         *string        `json:"goals"`
	Status        *string        `json:"status"`
	Notes         map[string]any `json:"notes"`
	NextSessionAt *time.Time     `json:"next_session_at"`
}

func (s *Server) UpdateMentorship(c *gin.Context) {
	var req updateMentorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := mentorshipdomain.UpdateMentorshipRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		Title:         req.Title,
		Goals:         req.Goals,
		Notes:         req.Notes,
		NextSessionAt: req.NextSessionAt,
	}
	if req.Status != nil {
		status := mentorshipdomain.Status(strings.TrimSpace(*req.Status))
		update.Status = &status
	}

	resp, err := s.mentorshipSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// -------- QnA board --------

type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	PostType string `json:"post_type"`
	IsPinned bool   `json:"is_pinned"`
}

func (s *Server) CreateMentorshipPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.qnaSvc.CreatePost(c.Request.Context(), qnadomain.CreatePostRequest{
		MentorshipID: strings.TrimSpace(c.Param("id")),
		Title:        strings.TrimSpace(req.Title),
		Content:      req.Content,
		PostType:     strings.TrimSpace(req.PostType),
		IsPinned:     req.IsPinned,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMentorshipPosts(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, qnadomain.ErrInvalidID)
		return
	}

	resp, err := s.qnaSvc.ListPosts(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createReplyRequest struct {
	Content          string `json:"content"`
	IsAcceptedAnswer bool   `json:"is_accepted_answer"`
}

func (s *Server) CreatePostReply(c *gin.Context) {
	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.qnaSvc.CreateReply(c.Request.Context(), qnadomain.CreateReplyRequest{
		PostID:           strings.TrimSpace(c.Param("id")),
		Content:          req.Content,
		IsAcceptedAnswer: req.IsAcceptedAnswer,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// -------- Shared files --------

type createFileRequest struct {
	Filename    string `json:"filename"`
	FileSize    int64  `json:"file_size"`
	FileType    string `json:"file_type"`
	Description string `json:"description"`
}

func (s *Server) CreateMentorshipFile(c *gin.Context) {
	var req createFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fileSvc.Create(c.Request.Context(), filedomain.CreateFileRequest{
		MentorshipID: strings.TrimSpace(c.Param("id")),
		Filename:     strings.TrimSpace(req.Filename),
		FileSize:     req.FileSize,
		FileType:     strings.TrimSpace(req.FileType),
		Description:  strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMentorshipFiles(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, filedomain.ErrInvalidID)
		return
	}

	resp, err := s.fileSvc.List(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
