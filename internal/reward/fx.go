package reward

import (
	"github.com/moimlab/moim/internal/reward/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reward.engine",
	fx.Provide(service.New),
)
