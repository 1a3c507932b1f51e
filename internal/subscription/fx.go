package subscription

import (
	"github.com/mentorlane/mentorlane/internal/subscription/repository"
	"github.com/mentorlane/mentorlane/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
