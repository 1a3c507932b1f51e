package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	"github.com/mentorlane/mentorlane/internal/mentorshipfile/domain"
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
		log:         p.Log.Named("mentorshipfile.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		mentorships: p.Mentorships,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateFileRequest) (domain.File, error) {
	uploaderID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || uploaderID == 0 {
		return domain.File{}, domain.ErrForbidden
	}

	mentorshipID, err := snowflake.ParseString(strings.TrimSpace(req.MentorshipID))
	if err != nil {
		return domain.File{}, domain.ErrInvalidID
	}
	if _, err := s.mentorships.GetByID(ctx, mentorshipID); err != nil {
		return domain.File{}, err
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return domain.File{}, domain.ErrInvalidFilename
	}
	fileType := strings.TrimSpace(req.FileType)
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	storagePath := fmt.Sprintf("mentorships/%s/%s", mentorshipID.String(), uuid.NewString())

	file := domain.File{
		ID:           s.genID.Generate(),
		MentorshipID: mentorshipID,
		UploadedBy:   uploaderID,
		Filename:     filename,
		FileSize:     req.FileSize,
		FileType:     fileType,
		StoragePath:  storagePath,
		Description:  strings.TrimSpace(req.Description),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &file); err != nil {
		return domain.File{}, err
	}

	if err := s.mentorships.TouchLastInteraction(ctx, mentorshipID); err != nil {
		s.log.Warn("failed to touch mentorship interaction",
			zap.String("mentorship_id", mentorshipID.String()),
			zap.Error(err),
		)
	}

	return file, nil
}

func (s *Service) List(ctx context.Context, mentorshipID snowflake.ID) (domain.ListFilesResponse, error) {
	if _, err := s.mentorships.GetByID(ctx, mentorshipID); err != nil {
		return domain.ListFilesResponse{}, err
	}

	items, err := s.repo.ListByMentorship(ctx, s.db, mentorshipID)
	if err != nil {
		return domain.ListFilesResponse{}, err
	}

	files := make([]domain.File, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		files = append(files, *item)
	}
	return domain.ListFilesResponse{Files: files}, nil
}
