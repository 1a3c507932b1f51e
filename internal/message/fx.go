package message

import (
	"github.com/mentorlane/mentorlane/internal/message/repository"
	"github.com/mentorlane/mentorlane/internal/message/service"
	"go.uber.org/fx"
)

var Module = fx.Module("message.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
