package migration

import (
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	filedomain "github.com/mentorlane/mentorlane/internal/mentorshipfile/domain"
	messagedomain "github.com/mentorlane/mentorlane/internal/message/domain"
	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	qnadomain "github.com/mentorlane/mentorlane/internal/qna/domain"
	sessiondomain "github.com/mentorlane/mentorlane/internal/session/domain"
	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
)

// models lists every persisted type for the AutoMigrate path. Ordered
// so referenced tables exist before their dependents.
func models() []any {
	return []any{
		&profiledomain.Profile{},
		&subscriptiondomain.Subscription{},
		&mentorshipdomain.Mentorship{},
		&sessiondomain.Session{},
		&messagedomain.Message{},
		&qnadomain.Post{},
		&qnadomain.Reply{},
		&filedomain.File{},
	}
}
