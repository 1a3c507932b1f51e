package mentorshipfile

import (
	"github.com/mentorlane/mentorlane/internal/mentorshipfile/repository"
	"github.com/mentorlane/mentorlane/internal/mentorshipfile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mentorshipfile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
