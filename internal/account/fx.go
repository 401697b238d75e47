package account

import (
	"github.com/moimlab/moim/internal/account/repository"
	"github.com/moimlab/moim/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
