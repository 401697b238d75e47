package media

import (
	"github.com/moimlab/moim/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.media",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	return NewDisk(Config{RootDir: cfg.Media.RootDir})
}
