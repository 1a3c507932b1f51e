package qna

import (
	"github.com/mentorlane/mentorlane/internal/qna/repository"
	"github.com/mentorlane/mentorlane/internal/qna/service"
	"go.uber.org/fx"
)

var Module = fx.Module("qna.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
