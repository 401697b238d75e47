package notification

import (
	"github.com/moimlab/moim/internal/notification/repository"
	"github.com/moimlab/moim/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
