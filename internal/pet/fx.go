package pet

import (
	"github.com/moimlab/moim/internal/cache"
	"github.com/moimlab/moim/internal/pet/repository"
	"github.com/moimlab/moim/internal/pet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pet.service",
	fx.Provide(
		cache.NewCatalogCache,
		repository.Provide,
		service.New,
	),
)
