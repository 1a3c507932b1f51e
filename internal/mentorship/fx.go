package mentorship

import (
	"github.com/mentorlane/mentorlane/internal/mentorship/repository"
	"github.com/mentorlane/mentorlane/internal/mentorship/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mentorship.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
