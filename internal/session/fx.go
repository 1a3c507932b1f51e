package session

import (
	"github.com/mentorlane/mentorlane/internal/session/repository"
	"github.com/mentorlane/mentorlane/internal/session/service"
	"go.uber.org/fx"
)

var Module = fx.Module("session.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
