package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/session/domain"
	"github.com/mentorlane/mentorlane/internal/session/repository"
	"github.com/mentorlane/mentorlane/internal/usercontext"
)

type fakeProfiles struct {
	profiledomain.Service

	byID map[snowflake.ID]profiledomain.Profile
}

func (f *fakeProfiles) GetByID(ctx context.Context, id snowflake.ID) (profiledomain.Profile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return profiledomain.Profile{}, profiledomain.ErrNotFound
	}
	return profile, nil
}

type fakeMentorships struct {
	mentorshipdomain.Service

	byID        map[snowflake.ID]mentorshipdomain.Mentorship
	nextSession []snowflake.ID
}

func (f *fakeMentorships) GetByID(ctx context.Context, id snowflake.ID) (mentorshipdomain.Mentorship, error) {
	mentorship, ok := f.byID[id]
	if !ok {
		return mentorshipdomain.Mentorship{}, mentorshipdomain.ErrForbidden
	}
	return mentorship, nil
}

func (f *fakeMentorships) SetNextSession(ctx context.Context, id snowflake.ID, at *time.Time) error {
	f.nextSession = append(f.nextSession, id)
	return nil
}

func newTestService(t *testing.T, profiles *fakeProfiles, mentorships *fakeMentorships) (*Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Session{}); err != nil {
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
		profiles:    profiles,
		mentorships: mentorships,
	}
	return svc, node
}

func mentorProfile(id snowflake.ID) profiledomain.Profile {
	return profiledomain.Profile{ID: id, FullName: "Ada Mentor", Role: profiledomain.RoleMentor}
}

func TestCreateSessionDefaults(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	mentorships := &fakeMentorships{byID: map[snowflake.ID]mentorshipdomain.Mentorship{}}
	svc, node := newTestService(t, profiles, mentorships)

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID)
	ctx := usercontext.WithUserID(context.Background(), menteeID)

	session, err := svc.Create(ctx, domain.CreateSessionRequest{
		MentorID:    mentorID.String(),
		ScheduledAt: time.Now().UTC().Add(48 * time.Hour),
		Price:       49.99,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPending, session.Status)
	assert.Equal(t, 60, session.DurationMinutes)
	assert.Equal(t, "video", session.SessionType)
	assert.Equal(t, "UTC", session.Timezone)
	assert.Equal(t, "usd", session.Currency)
	assert.Equal(t, "Mentorship Session", session.Title)
	assert.Empty(t, mentorships.nextSession)
}

func TestCreateSessionValidation(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	mentorships := &fakeMentorships{byID: map[snowflake.ID]mentorshipdomain.Mentorship{}}
	svc, node := newTestService(t, profiles, mentorships)

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID)
	ctx := usercontext.WithUserID(context.Background(), menteeID)
	future := time.Now().UTC().Add(time.Hour)

	_, err := svc.Create(context.Background(), domain.CreateSessionRequest{MentorID: mentorID.String(), ScheduledAt: future})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Create(usercontext.WithUserID(context.Background(), mentorID), domain.CreateSessionRequest{MentorID: mentorID.String(), ScheduledAt: future})
	assert.ErrorIs(t, err, domain.ErrInvalidMentor)

	_, err = svc.Create(ctx, domain.CreateSessionRequest{MentorID: node.Generate().String(), ScheduledAt: future})
	assert.ErrorIs(t, err, domain.ErrInvalidMentor)

	_, err = svc.Create(ctx, domain.CreateSessionRequest{MentorID: mentorID.String(), ScheduledAt: time.Now().UTC().Add(-time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)

	_, err = svc.Create(ctx, domain.CreateSessionRequest{MentorID: mentorID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
}

func TestCreateSessionLinksMentorship(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	mentorships := &fakeMentorships{byID: map[snowflake.ID]mentorshipdomain.Mentorship{}}
	svc, node := newTestService(t, profiles, mentorships)

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID)
	mentorshipID := node.Generate()
	mentorships.byID[mentorshipID] = mentorshipdomain.Mentorship{ID: mentorshipID, MentorID: mentorID, MenteeID: menteeID}
	ctx := usercontext.WithUserID(context.Background(), menteeID)

	session, err := svc.Create(ctx, domain.CreateSessionRequest{
		MentorID:     mentorID.String(),
		MentorshipID: mentorshipID.String(),
		ScheduledAt:  time.Now().UTC().Add(time.Hour),
	})
	assert.NoError(t, err)
	if assert.NotNil(t, session.MentorshipID) {
		assert.Equal(t, mentorshipID, *session.MentorshipID)
	}
	assert.Equal(t, []snowflake.ID{mentorshipID}, mentorships.nextSession)

	// A mentorship belonging to a different mentor cannot host the session.
	otherMentorship := node.Generate()
	mentorships.byID[otherMentorship] = mentorshipdomain.Mentorship{ID: otherMentorship, MentorID: node.Generate(), MenteeID: menteeID}
	_, err = svc.Create(ctx, domain.CreateSessionRequest{
		MentorID:     mentorID.String(),
		MentorshipID: otherMentorship.String(),
		ScheduledAt:  time.Now().UTC().Add(time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMentor)
}

func TestUpdateSessionStatus(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	mentorships := &fakeMentorships{byID: map[snowflake.ID]mentorshipdomain.Mentorship{}}
	svc, node := newTestService(t, profiles, mentorships)

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID)
	menteeCtx := usercontext.WithUserID(context.Background(), menteeID)

	session, err := svc.Create(menteeCtx, domain.CreateSessionRequest{
		MentorID:    mentorID.String(),
		ScheduledAt: time.Now().UTC().Add(time.Hour),
	})
	assert.NoError(t, err)

	confirmed := domain.StatusConfirmed
	meetingURL := "https://meet.example.com/abc"
	updated, err := svc.Update(usercontext.WithUserID(context.Background(), mentorID), domain.UpdateSessionRequest{
		ID:         session.ID.String(),
		Status:     &confirmed,
		MeetingURL: &meetingURL,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, meetingURL, updated.MeetingURL)

	bogus := domain.Status("rescheduled")
	_, err = svc.Update(menteeCtx, domain.UpdateSessionRequest{ID: session.ID.String(), Status: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.Update(usercontext.WithUserID(context.Background(), node.Generate()), domain.UpdateSessionRequest{ID: session.ID.String(), Status: &confirmed})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListSplitsByRole(t *testing.T) {
	profiles := &fakeProfiles{byID: map[snowflake.ID]profiledomain.Profile{}}
	mentorships := &fakeMentorships{byID: map[snowflake.ID]mentorshipdomain.Mentorship{}}
	svc, node := newTestService(t, profiles, mentorships)

	mentorID := node.Generate()
	menteeID := node.Generate()
	profiles.byID[mentorID] = mentorProfile(mentorID)
	menteeCtx := usercontext.WithUserID(context.Background(), menteeID)

	_, err := svc.Create(menteeCtx, domain.CreateSessionRequest{
		MentorID:    mentorID.String(),
		ScheduledAt: time.Now().UTC().Add(time.Hour),
	})
	assert.NoError(t, err)

	asMentee, err := svc.List(menteeCtx, domain.ListSessionRequest{})
	assert.NoError(t, err)
	assert.Len(t, asMentee.Sessions, 1)

	asMentor, err := svc.List(usercontext.WithUserID(context.Background(), mentorID), domain.ListSessionRequest{AsMentor: true})
	assert.NoError(t, err)
	assert.Len(t, asMentor.Sessions, 1)

	empty, err := svc.List(usercontext.WithUserID(context.Background(), mentorID), domain.ListSessionRequest{})
	assert.NoError(t, err)
	assert.Empty(t, empty.Sessions)
}
