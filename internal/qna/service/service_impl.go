package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	"github.com/mentorlane/mentorlane/internal/qna/domain"
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
	Mentorships mentorshipdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	mentorships mentorshipdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("qna.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		mentorships: p.Mentorships,
	}
}

func (s *Service) CreatePost(ctx context.Context, req domain.CreatePostRequest) (domain.Post, error) {
	authorID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || authorID == 0 {
		return domain.Post{}, domain.ErrForbidden
	}

	mentorshipID, err := snowflake.ParseString(strings.TrimSpace(req.MentorshipID))
	if err != nil {
		return domain.Post{}, domain.ErrInvalidID
	}

	// Membership check; GetByID rejects outsiders.
	if _, err := s.mentorships.GetByID(ctx, mentorshipID); err != nil {
		return domain.Post{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Post{}, domain.ErrInvalidTitle
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return domain.Post{}, domain.ErrEmptyContent
	}
	postType := strings.TrimSpace(req.PostType)
	if postType == "" {
		postType = "question"
	}

	now := time.Now().UTC()
	post := domain.Post{
		ID:           s.genID.Generate(),
		MentorshipID: mentorshipID,
		AuthorID:     authorID,
		Title:        title,
		Content:      content,
		PostType:     postType,
		IsPinned:     req.IsPinned,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertPost(ctx, s.db, &post); err != nil {
		return domain.Post{}, err
	}

	if err := s.mentorships.TouchLastInteraction(ctx, mentorshipID); err != nil {
		s.log.Warn("failed to touch mentorship interaction",
			zap.String("mentorship_id", mentorshipID.String()),
			zap.Error(err),
		)
	}

	return post, nil
}

func (s *Service) CreateReply(ctx context.Context, req domain.CreateReplyRequest) (domain.Reply, error) {
	authorID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || authorID == 0 {
		return domain.Reply{}, domain.ErrForbidden
	}

	postID, err := snowflake.ParseString(strings.TrimSpace(req.PostID))
	if err != nil {
		return domain.Reply{}, domain.ErrInvalidID
	}

	post, err := s.repo.FindPostByID(ctx, s.db, postID)
	if err != nil {
		return domain.Reply{}, err
	}
	if post == nil {
		return domain.Reply{}, domain.ErrNotFound
	}
	if _, err := s.mentorships.GetByID(ctx, post.MentorshipID); err != nil {
		return domain.Reply{}, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return domain.Reply{}, domain.ErrEmptyContent
	}

	now := time.Now().UTC()
	reply := domain.Reply{
		ID:               s.genID.Generate(),
		PostID:           postID,
		AuthorID:         authorID,
		Content:          content,
		IsAcceptedAnswer: req.IsAcceptedAnswer,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.InsertReply(ctx, s.db, &reply); err != nil {
		return domain.Reply{}, err
	}

	if req.IsAcceptedAnswer {
		if err := s.repo.MarkPostAnswered(ctx, s.db, postID); err != nil {
			s.log.Warn("failed to mark post answered",
				zap.String("post_id", postID.String()),
				zap.Error(err),
			)
		}
	}

	return reply, nil
}

func (s *Service) ListPosts(ctx context.Context, mentorshipID snowflake.ID) (domain.ListPostsResponse, error) {
	if _, err := s.mentorships.GetByID(ctx, mentorshipID); err != nil {
		return domain.ListPostsResponse{}, err
	}

	items, err := s.repo.ListPosts(ctx, s.db, mentorshipID)
	if err != nil {
		return domain.ListPostsResponse{}, err
	}

	postIDs := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		if item != nil {
			postIDs = append(postIDs, item.ID)
		}
	}

	replies, err := s.repo.ListReplies(ctx, s.db, postIDs)
	if err != nil {
		return domain.ListPostsResponse{}, err
	}
	byPost := make(map[snowflake.ID][]domain.Reply, len(postIDs))
	for _, reply := range replies {
		if reply == nil {
			continue
		}
		byPost[reply.PostID] = append(byPost[reply.PostID], *reply)
	}

	posts := make([]domain.Post, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		post := *item
		post.Replies = byPost[post.ID]
		posts = append(posts, post)
	}
	return domain.ListPostsResponse{Posts: posts}, nil
}
