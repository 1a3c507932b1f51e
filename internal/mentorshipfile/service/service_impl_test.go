package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	"github.com/mentorlane/mentorlane/internal/mentorshipfile/domain"
	"github.com/mentorlane/mentorlane/internal/mentorshipfile/repository"
	"github.com/mentorlane/mentorlane/internal/usercontext"
)

type fakeMentorships struct {
	mentorshipdomain.Service

	known map[snowflake.ID]bool
}

func (f *fakeMentorships) GetByID(ctx context.Context, id snowflake.ID) (mentorshipdomain.Mentorship, error) {
	if !f.known[id] {
		return mentorshipdomain.Mentorship{}, mentorshipdomain.ErrForbidden
	}
	return mentorshipdomain.Mentorship{ID: id}, nil
}

func (f *fakeMentorships) TouchLastInteraction(ctx context.Context, id snowflake.ID) error {
	return nil
}

func newTestService(t *testing.T, mentorships *fakeMentorships) (*Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.File{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := &Service{
		db:          db,
		log:         zaptest.NewLogger(t),
		genID:       node,
		repo:        repository.Provide(),
		mentorships: mentorships,
	}
	return svc, node
}

func TestCreateFileAllocatesStoragePath(t *testing.T) {
	mentorships := &fakeMentorships{known: map[snowflake.ID]bool{}}
	svc, node := newTestService(t, mentorships)

	mentorshipID := node.Generate()
	mentorships.known[mentorshipID] = true
	ctx := usercontext.WithUserID(context.Background(), node.Generate())

	file, err := svc.Create(ctx, domain.CreateFileRequest{
		MentorshipID: mentorshipID.String(),
		Filename:     "roadmap.pdf",
		FileSize:     2048,
	})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.StoragePath, "mentorships/"+mentorshipID.String()+"/"))
	assert.Equal(t, "application/octet-stream", file.FileType)

	second, err := svc.Create(ctx, domain.CreateFileRequest{
		MentorshipID: mentorshipID.String(),
		Filename:     "roadmap.pdf",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, file.StoragePath, second.StoragePath)
}

func TestCreateFileValidation(t *testing.T) {
	mentorships := &fakeMentorships{known: map[snowflake.ID]bool{}}
	svc, node := newTestService(t, mentorships)

	mentorshipID := node.Generate()
	mentorships.known[mentorshipID] = true
	ctx := usercontext.WithUserID(context.Background(), node.Generate())

	_, err := svc.Create(context.Background(), domain.CreateFileRequest{MentorshipID: mentorshipID.String(), Filename: "a.txt"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Create(ctx, domain.CreateFileRequest{MentorshipID: "nope", Filename: "a.txt"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Create(ctx, domain.CreateFileRequest{MentorshipID: node.Generate().String(), Filename: "a.txt"})
	assert.ErrorIs(t, err, mentorshipdomain.ErrForbidden)

	_, err = svc.Create(ctx, domain.CreateFileRequest{MentorshipID: mentorshipID.String(), Filename: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidFilename)
}

func TestListFilesGatedByMembership(t *testing.T) {
	mentorships := &fakeMentorships{known: map[snowflake.ID]bool{}}
	svc, node := newTestService(t, mentorships)

	mentorshipID := node.Generate()
	mentorships.known[mentorshipID] = true
	ctx := usercontext.WithUserID(context.Background(), node.Generate())

	_, err := svc.Create(ctx, domain.CreateFileRequest{MentorshipID: mentorshipID.String(), Filename: "notes.md"})
	assert.NoError(t, err)

	listed, err := svc.List(ctx, mentorshipID)
	assert.NoError(t, err)
	assert.Len(t, listed.Files, 1)

	_, err = svc.List(ctx, node.Generate())
	assert.ErrorIs(t, err, mentorshipdomain.ErrForbidden)
}
