package meeting

import (
	"github.com/moimlab/moim/internal/meeting/repository"
	"github.com/moimlab/moim/internal/meeting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meeting.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
