package donation

import (
	"github.com/moimlab/moim/internal/donation/repository"
	"github.com/moimlab/moim/internal/donation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("donation.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
