package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/internal/message/domain"
	"github.com/mentorlane/mentorlane/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:   p.Log.Named("message.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Send(ctx context.Context, req domain.SendMessageRequest) (domain.Message, error) {
	senderID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || senderID == 0 {
		return domain.Message{}, domain.ErrForbidden
	}

	recipientID, err := snowflake.ParseString(strings.TrimSpace(req.RecipientID))
	if err != nil || recipientID == senderID {
		return domain.Message{}, domain.ErrInvalidRecipient
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return domain.Message{}, domain.ErrEmptyContent
	}

	message := domain.Message{
		ID:          s.genID.Generate(),
		ThreadID:    domain.ThreadID(senderID, recipientID),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &message); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

func (s *Service) Thread(ctx context.Context, req domain.ThreadRequest) (domain.ThreadResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ThreadResponse{}, domain.ErrForbidden
	}

	otherID, err := snowflake.ParseString(strings.TrimSpace(req.OtherUserID))
	if err != nil {
		return domain.ThreadResponse{}, domain.ErrInvalidRecipient
	}

	threadID := domain.ThreadID(userID, otherID)
	items, err := s.repo.ListThread(ctx, s.db, threadID, userID)
	if err != nil {
		return domain.ThreadResponse{}, err
	}

	// Marking read is best-effort: a failure never hides the thread.
	if err := s.repo.MarkRead(ctx, s.db, threadID, userID); err != nil {
		s.log.Warn("failed to mark thread read",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
	}

	messages := make([]domain.Message, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		messages = append(messages, *item)
	}
	return domain.ThreadResponse{ThreadID: threadID, Messages: messages}, nil
}

func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return 0, domain.ErrForbidden
	}
	return s.repo.CountUnread(ctx, s.db, userID)
}
