package submission

import (
	"github.com/moimlab/moim/internal/submission/repository"
	"github.com/moimlab/moim/internal/submission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("submission.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
