package profile

import (
	"github.com/mentorlane/mentorlane/internal/profile/repository"
	"github.com/mentorlane/mentorlane/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
